package services

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"colabora/internal/live"
	"colabora/internal/models"
	"colabora/internal/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MaxCommentLength    = 500
	DefaultCommentLimit = 50
	MaxCommentLimit     = 200
)

type CommentService struct {
	db  *gorm.DB
	hub *live.Hub
	log zerolog.Logger
	now func() time.Time

	// publishMu orders reload+publish so the last snapshot sent is never
	// older than one sent before it.
	publishMu sync.Mutex
}

func NewCommentService(db *gorm.DB, hub *live.Hub, log zerolog.Logger) *CommentService {
	return &CommentService{
		db:  db,
		hub: hub,
		log: log.With().Str("component", "comments").Logger(),
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Add appends a comment to a proposal and pushes the updated list to the
// proposal's live topic.
func (s *CommentService) Add(ctx context.Context, proposalID string, who Principal, text string) (*models.Comment, error) {
	if who.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	text = utils.PlainText(text)
	if text == "" {
		return nil, invalid("comment is empty")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return nil, invalid(fmt.Sprintf("comment exceeds %d characters", MaxCommentLength))
	}

	if err := s.ensureProposal(ctx, proposalID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:         uuid.NewString(),
		ProposalID: proposalID,
		UserID:     who.UserID,
		Text:       text,
		CreatedAt:  s.now(),
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		s.log.Error().Err(err).Str("proposal", proposalID).Msg("failed creating comment")
		return nil, transient(err, "failed creating comment")
	}

	s.publish(ctx, proposalID)
	return comment, nil
}

// publish pushes the proposal's current comment list to live subscribers.
// Each reload happens under publishMu, so whoever publishes last also read
// last and saw every committed comment.
func (s *CommentService) publish(ctx context.Context, proposalID string) {
	topic := live.CommentsTopic(proposalID)

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	if s.hub.Subscribers(topic) == 0 {
		return
	}
	comments, err := s.List(ctx, proposalID, DefaultCommentLimit)
	if err != nil {
		s.log.Error().Err(err).Str("proposal", proposalID).Msg("failed reloading comments")
		return
	}
	if err := s.hub.Publish(topic, comments); err != nil {
		s.log.Error().Err(err).Str("proposal", proposalID).Msg("failed publishing comments")
	}
}

// List returns a proposal's comments, newest first.
func (s *CommentService) List(ctx context.Context, proposalID string, limit int) ([]models.Comment, error) {
	if limit <= 0 {
		limit = DefaultCommentLimit
	}
	if limit > MaxCommentLimit {
		limit = MaxCommentLimit
	}
	if err := s.ensureProposal(ctx, proposalID); err != nil {
		return nil, err
	}

	comments := []models.Comment{}
	err := s.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, transient(err, "failed listing comments")
	}
	return comments, nil
}

func (s *CommentService) ensureProposal(ctx context.Context, proposalID string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Proposal{}).Where("id = ?", proposalID).Count(&n).Error; err != nil {
		return transient(err, "failed loading proposal")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
