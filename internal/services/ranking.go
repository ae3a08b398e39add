package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"colabora/internal/live"
	"colabora/internal/models"
	"colabora/internal/utils"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	DefaultLeaderboardSize = 50
	MaxLeaderboardSize     = 100

	rankingCachePrefix = "ranking:limit:"
)

// RefreshFunc is run after each batch of changes, e.g. to push the feed.
type RefreshFunc func(ctx context.Context) error

// RankingService serves the leaderboard and keeps it fresh: cached reads,
// cache invalidation on every accepted vote or new proposal, and an
// asynchronous worker that pushes new snapshots to live subscribers.
type RankingService struct {
	db    *gorm.DB
	cache *utils.Cache
	hub   *live.Hub
	ttl   time.Duration
	log   zerolog.Logger

	queue     chan string // proposal ids waiting to be rebroadcast
	pending   map[string]bool
	mu        sync.Mutex
	refreshes []RefreshFunc

	// cacheMu guards generation, which changes on every invalidation. A
	// leaderboard read only fills the cache if no invalidation ran while it
	// was querying.
	cacheMu    sync.Mutex
	generation uint64
}

func NewRankingService(db *gorm.DB, cache *utils.Cache, hub *live.Hub, ttl time.Duration, log zerolog.Logger) *RankingService {
	return &RankingService{
		db:      db,
		cache:   cache,
		hub:     hub,
		ttl:     ttl,
		log:     log.With().Str("component", "ranking").Logger(),
		queue:   make(chan string, 1000),
		pending: make(map[string]bool),
	}
}

// OnRefresh adds a hook run by the worker after each batch. Call before Start.
func (s *RankingService) OnRefresh(fn RefreshFunc) {
	s.refreshes = append(s.refreshes, fn)
}

// Leaderboard returns at most limit proposals ranked by votes. Storage does
// the ordering and the row limit; utils.Rank assigns positions and medals.
func (s *RankingService) Leaderboard(ctx context.Context, limit int) ([]utils.RankedProposal, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	if limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}

	key := fmt.Sprintf("%s%d", rankingCachePrefix, limit)
	if cached := s.cache.Get(key); cached != nil {
		if ranked, ok := cached.([]utils.RankedProposal); ok {
			return ranked, nil
		}
	}

	s.cacheMu.Lock()
	gen := s.generation
	s.cacheMu.Unlock()

	var proposals []models.Proposal
	err := s.db.WithContext(ctx).
		Order("vote_count DESC, created_at ASC, id ASC").
		Limit(limit).
		Find(&proposals).Error
	if err != nil {
		return nil, transient(err, "failed loading leaderboard")
	}

	ranked := utils.Rank(proposals, limit)

	s.cacheMu.Lock()
	if s.generation == gen {
		s.cache.Set(key, ranked, s.ttl)
	}
	s.cacheMu.Unlock()
	return ranked, nil
}

// invalidate drops every cached leaderboard and fences off reads already in
// flight.
func (s *RankingService) invalidate() {
	s.cacheMu.Lock()
	s.generation++
	s.cache.DeletePrefix(rankingCachePrefix)
	s.cacheMu.Unlock()
}

// VoteAccepted implements VoteListener.
func (s *RankingService) VoteAccepted(proposalID string) {
	s.ScheduleUpdate(proposalID)
}

// ProposalCreated is called after a new proposal is stored.
func (s *RankingService) ProposalCreated(proposalID string) {
	s.ScheduleUpdate(proposalID)
}

// ScheduleUpdate drops cached leaderboards right away and queues a
// rebroadcast. A proposal already waiting in the queue is not queued twice.
func (s *RankingService) ScheduleUpdate(proposalID string) {
	s.invalidate()

	s.mu.Lock()
	if s.pending[proposalID] {
		s.mu.Unlock()
		return
	}
	s.pending[proposalID] = true
	s.mu.Unlock()

	select {
	case s.queue <- proposalID:
	default:
		s.mu.Lock()
		delete(s.pending, proposalID)
		s.mu.Unlock()
		s.log.Warn().Str("proposal", proposalID).Msg("ranking update queue full, skipping")
	}
}

// Start runs the broadcast worker until ctx is cancelled.
func (s *RankingService) Start(ctx context.Context) {
	go s.worker(ctx)
}

func (s *RankingService) worker(ctx context.Context) {
	batch := make([]string, 0, 50)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case id := <-s.queue:
			batch = append(batch, id)
			if len(batch) >= 50 {
				s.processBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.processBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ctx.Done():
			return
		}
	}
}

// processBatch publishes one fresh leaderboard for the whole batch, however
// many votes it contains.
func (s *RankingService) processBatch(ctx context.Context, ids []string) {
	s.mu.Lock()
	for _, id := range ids {
		delete(s.pending, id)
	}
	s.mu.Unlock()

	s.invalidate()

	if s.hub.Subscribers(live.TopicRanking) > 0 {
		ranked, err := s.Leaderboard(ctx, DefaultLeaderboardSize)
		if err != nil {
			s.log.Error().Err(err).Msg("failed recomputing leaderboard")
		} else if err := s.hub.Publish(live.TopicRanking, ranked); err != nil {
			s.log.Error().Err(err).Msg("failed publishing leaderboard")
		}
	}

	for _, fn := range s.refreshes {
		if err := fn(ctx); err != nil {
			s.log.Error().Err(err).Msg("refresh hook failed")
		}
	}
	s.log.Debug().Int("changes", len(ids)).Msg("ranking batch processed")
}
