package services

import (
	"context"
	"errors"
	"time"

	"colabora/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteListener is told about every accepted vote after it commits.
type VoteListener interface {
	VoteAccepted(proposalID string)
}

// VoteResult is returned by a successful CastVote.
type VoteResult struct {
	ProposalID string `json:"proposal_id"`
	VoteCount  int64  `json:"votes"`
	HasVoted   bool   `json:"has_voted"`
}

// VoteLedger enforces one vote per user per proposal and keeps
// proposals.vote_count equal to the number of vote records.
//
// The vote row and the counter increment are written in one transaction.
// The (proposal_id, user_id) primary key is the write-once guard: if two
// requests from the same user race past the existence check, the second
// insert fails and its transaction rolls back before touching the counter.
type VoteLedger struct {
	db       *gorm.DB
	listener VoteListener
	log      zerolog.Logger
	now      func() time.Time
}

func NewVoteLedger(db *gorm.DB, listener VoteListener, log zerolog.Logger) *VoteLedger {
	return &VoteLedger{
		db:       db,
		listener: listener,
		log:      log.With().Str("component", "ledger").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CastVote records who's vote on proposalID and returns the new counter.
func (l *VoteLedger) CastVote(ctx context.Context, proposalID string, who Principal) (*VoteResult, error) {
	if who.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	result := &VoteResult{ProposalID: proposalID}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Proposal{}).Where("id = ?", proposalID).Count(&exists).Error; err != nil {
			return transient(err, "failed loading proposal")
		}
		if exists == 0 {
			return ErrNotFound
		}

		voted, err := voteExists(tx, proposalID, who.UserID)
		if err != nil {
			return err
		}
		if voted {
			return ErrAlreadyVoted
		}

		vote := models.Vote{
			ProposalID: proposalID,
			UserID:     who.UserID,
			VotedAt:    l.now(),
		}
		if err := tx.Omit(clause.Associations).Create(&vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyVoted
			}
			return transient(err, "failed recording vote")
		}

		if err := tx.Model(&models.Proposal{}).
			Where("id = ?", proposalID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + ?", 1)).
			Error; err != nil {
			return transient(err, "failed incrementing vote count")
		}

		var counts []int64
		if err := tx.Model(&models.Proposal{}).Where("id = ?", proposalID).Pluck("vote_count", &counts).Error; err != nil {
			return transient(err, "failed reading vote count")
		}
		if len(counts) == 1 {
			result.VoteCount = counts[0]
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTransient) {
			l.log.Error().Err(err).Str("proposal", proposalID).Str("user", who.UserID).Msg("vote failed")
		}
		return nil, err
	}

	result.HasVoted = true
	l.log.Info().Str("proposal", proposalID).Str("user", who.UserID).Int64("votes", result.VoteCount).Msg("vote accepted")

	if l.listener != nil {
		l.listener.VoteAccepted(proposalID)
	}
	return result, nil
}

// HasVoted answers with the same existence check CastVote uses, so the
// client's button state and the ledger agree.
func (l *VoteLedger) HasVoted(ctx context.Context, proposalID string, who Principal) (bool, error) {
	if who.IsAnonymous() {
		return false, nil
	}
	return voteExists(l.db.WithContext(ctx), proposalID, who.UserID)
}

// Audit returns the denormalized counter next to the number of vote records.
// Normal reads trust the counter; this is for consistency checks.
func (l *VoteLedger) Audit(ctx context.Context, proposalID string) (counter int64, records int64, err error) {
	conn := l.db.WithContext(ctx)

	var counts []int64
	if err := conn.Model(&models.Proposal{}).Where("id = ?", proposalID).Pluck("vote_count", &counts).Error; err != nil {
		return 0, 0, transient(err, "failed reading vote count")
	}
	if len(counts) == 0 {
		return 0, 0, ErrNotFound
	}

	if err := conn.Model(&models.Vote{}).Where("proposal_id = ?", proposalID).Count(&records).Error; err != nil {
		return 0, 0, transient(err, "failed counting votes")
	}
	return counts[0], records, nil
}

func voteExists(tx *gorm.DB, proposalID, userID string) (bool, error) {
	var n int64
	err := tx.Model(&models.Vote{}).
		Where("proposal_id = ? AND user_id = ?", proposalID, userID).
		Count(&n).Error
	if err != nil {
		return false, transient(err, "failed checking existing vote")
	}
	return n > 0, nil
}
