package live

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return snap
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
	}
	return Snapshot{}
}

func TestPublishDeliversToTopicOnly(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ranking := hub.Subscribe(TopicRanking)
	feed := hub.Subscribe(TopicFeed)
	defer ranking.Cancel()
	defer feed.Cancel()

	require.NoError(t, hub.Publish(TopicRanking, []int{1, 2, 3}))

	snap := receive(t, ranking)
	assert.Equal(t, TopicRanking, snap.Topic)
	assert.JSONEq(t, `[1,2,3]`, string(snap.Data))

	select {
	case <-feed.C:
		t.Fatal("feed subscriber got a ranking snapshot")
	default:
	}
}

func TestSlowSubscriberSeesLatestSnapshot(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	sub := hub.Subscribe(TopicFeed)
	defer sub.Cancel()

	for i := 1; i <= 5; i++ {
		require.NoError(t, hub.Publish(TopicFeed, i))
	}

	snap := receive(t, sub)
	var n int
	require.NoError(t, json.Unmarshal(snap.Data, &n))
	assert.Equal(t, 5, n)
}

func TestCancelIsIdempotentAndClosesChannel(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	sub := hub.Subscribe(CommentsTopic("p1"))
	assert.Equal(t, 1, hub.Subscribers(CommentsTopic("p1")))

	sub.Cancel()
	sub.Cancel()

	_, ok := <-sub.C
	assert.False(t, ok)
	assert.Zero(t, hub.Subscribers(CommentsTopic("p1")))

	// publishing after cancel must not panic
	require.NoError(t, hub.Publish(CommentsTopic("p1"), "x"))
}

func TestCloseEndsAllSubscriptions(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	a := hub.Subscribe(TopicRanking)
	b := hub.Subscribe(TopicFeed)

	hub.Close()

	_, ok := <-a.C
	assert.False(t, ok)
	_, ok = <-b.C
	assert.False(t, ok)
	a.Cancel()

	late := hub.Subscribe(TopicRanking)
	_, ok = <-late.C
	assert.False(t, ok)
	late.Cancel()
}

func TestConcurrentPublishAndCancel(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		sub := hub.Subscribe(TopicRanking)
		go func() {
			defer wg.Done()
			_ = hub.Publish(TopicRanking, "snapshot")
		}()
		go func() {
			defer wg.Done()
			sub.Cancel()
		}()
	}
	wg.Wait()
	assert.Zero(t, hub.Subscribers(TopicRanking))
}
