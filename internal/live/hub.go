package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Topics published by the services.
const (
	TopicRanking = "ranking"
	TopicFeed    = "feed"
)

// CommentsTopic is the live topic for one proposal's comment list.
func CommentsTopic(proposalID string) string {
	return "comments:" + proposalID
}

// Snapshot is one full state of a live query. Consumers render the latest
// snapshot they receive; nothing is diffed.
type Snapshot struct {
	Topic     string          `json:"topic"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewSnapshot marshals payload into a snapshot of topic.
func NewSnapshot(topic string, payload interface{}) (Snapshot, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Topic: topic, Data: data, Timestamp: time.Now()}, nil
}

// Subscription is a cancellable stream of snapshots for one topic.
type Subscription struct {
	C <-chan Snapshot

	topic string
	ch    chan Snapshot
	hub   *Hub
}

// Cancel releases the subscription and closes C. Calls after the first are
// no-ops.
func (s *Subscription) Cancel() {
	s.hub.remove(s)
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string {
	return s.topic
}

// Hub fans snapshots out to subscribers. Each subscriber buffers one snapshot;
// a newer snapshot replaces an unread older one, so slow readers skip ahead
// instead of blocking publishers.
type Hub struct {
	mu     sync.Mutex
	topics map[string]map[*Subscription]struct{}
	closed bool
	log    zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		topics: make(map[string]map[*Subscription]struct{}),
		log:    log.With().Str("component", "live").Logger(),
	}
}

// Subscribe registers a new subscriber. On a closed hub the returned
// subscription's channel is already closed.
func (h *Hub) Subscribe(topic string) *Subscription {
	ch := make(chan Snapshot, 1)
	sub := &Subscription{C: ch, topic: topic, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(ch)
		return sub
	}
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Subscription]struct{})
	}
	h.topics[topic][sub] = struct{}{}
	return sub
}

// Publish marshals payload and delivers it to every subscriber of topic in
// publish order.
func (h *Hub) Publish(topic string, payload interface{}) error {
	snap, err := NewSnapshot(topic, payload)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.topics[topic] {
		select {
		case <-sub.ch:
			h.log.Debug().Str("topic", topic).Msg("dropping stale snapshot for slow subscriber")
		default:
		}
		sub.ch <- snap
	}
	return nil
}

// Subscribers returns the number of live subscribers of topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}

// Close cancels every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for topic, subs := range h.topics {
		for sub := range subs {
			close(sub.ch)
		}
		delete(h.topics, topic)
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[s.topic]
	if !ok {
		return
	}
	if _, ok := subs[s]; !ok {
		return
	}
	delete(subs, s)
	close(s.ch)
	if len(subs) == 0 {
		delete(h.topics, s.topic)
	}
}
