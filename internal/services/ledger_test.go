package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"colabora/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastVoteIncrementsCounterOnce(t *testing.T) {
	conn := newTestDB(t)
	listener := &recordingListener{}
	ledger := NewVoteLedger(conn, listener, zerolog.Nop())
	p := insertProposal(t, conn, "Espacios Verdes", 0, time.Now())

	res, err := ledger.CastVote(context.Background(), p.ID, Principal{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.VoteCount)
	assert.True(t, res.HasVoted)
	assert.Equal(t, []string{p.ID}, listener.votes)

	voted, err := ledger.HasVoted(context.Background(), p.ID, Principal{UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, voted)

	var vote models.Vote
	require.NoError(t, conn.Where("proposal_id = ? AND user_id = ?", p.ID, "u1").Take(&vote).Error)
	assert.False(t, vote.VotedAt.IsZero())
}

func TestCastVoteDoubleTapRejected(t *testing.T) {
	conn := newTestDB(t)
	listener := &recordingListener{}
	ledger := NewVoteLedger(conn, listener, zerolog.Nop())
	p := insertProposal(t, conn, "Digitalización de Trámites", 0, time.Now())
	u1 := Principal{UserID: "u1"}

	_, err := ledger.CastVote(context.Background(), p.ID, u1)
	require.NoError(t, err)

	res, err := ledger.CastVote(context.Background(), p.ID, u1)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrAlreadyVoted))

	counter, records, err := ledger.Audit(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counter)
	assert.Equal(t, int64(1), records)
	assert.Len(t, listener.votes, 1, "rejected vote must not notify")
}

func TestAnonymousVoteRejected(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewVoteLedger(conn, nil, zerolog.Nop())
	p := insertProposal(t, conn, "Becas IA", 4, time.Now())

	res, err := ledger.CastVote(context.Background(), p.ID, Anonymous)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	var n int64
	require.NoError(t, conn.Model(&models.Vote{}).Count(&n).Error)
	assert.Zero(t, n)

	var reloaded models.Proposal
	require.NoError(t, conn.Where("id = ?", p.ID).Take(&reloaded).Error)
	assert.Equal(t, int64(4), reloaded.VoteCount)

	voted, err := ledger.HasVoted(context.Background(), p.ID, Anonymous)
	require.NoError(t, err)
	assert.False(t, voted)
}

func TestVoteOnMissingProposal(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewVoteLedger(conn, nil, zerolog.Nop())

	_, err := ledger.CastVote(context.Background(), "does-not-exist", Principal{UserID: "u1"})
	assert.True(t, errors.Is(err, ErrNotFound))

	var n int64
	require.NoError(t, conn.Model(&models.Vote{}).Count(&n).Error)
	assert.Zero(t, n)

	_, _, err = ledger.Audit(context.Background(), "does-not-exist")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestConcurrentVotesSameUserAtMostOne(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewVoteLedger(conn, nil, zerolog.Nop())
	p := insertProposal(t, conn, "Red de Startups", 0, time.Now())
	u := Principal{UserID: "racer"}

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.CastVote(context.Background(), p.ID, u)
		}(i)
	}
	wg.Wait()

	var ok, already int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAlreadyVoted):
			already++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, already)

	counter, records, err := ledger.Audit(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counter)
	assert.Equal(t, int64(1), records)
}

func TestConcurrentVotesDifferentUsersAllCount(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewVoteLedger(conn, nil, zerolog.Nop())
	p := insertProposal(t, conn, "Laboratorios Ciudadanos", 0, time.Now())

	const voters = 12
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ledger.CastVote(context.Background(), p.ID, Principal{UserID: fmt.Sprintf("user-%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	counter, records, err := ledger.Audit(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(voters), counter)
	assert.Equal(t, counter, records)
}

func TestVotesAreScopedPerProposal(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewVoteLedger(conn, nil, zerolog.Nop())
	a := insertProposal(t, conn, "A", 0, time.Now())
	b := insertProposal(t, conn, "B", 0, time.Now())
	u := Principal{UserID: "u1"}

	_, err := ledger.CastVote(context.Background(), a.ID, u)
	require.NoError(t, err)
	res, err := ledger.CastVote(context.Background(), b.ID, u)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.VoteCount)

	voted, err := ledger.HasVoted(context.Background(), b.ID, Principal{UserID: "u2"})
	require.NoError(t, err)
	assert.False(t, voted)
}
