package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"colabora/internal/live"
	"colabora/internal/models"
	"colabora/internal/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxImagesPerProposal = 5

	DefaultPageSize = 20
	MaxPageSize     = 50

	pageLoadTimeout = 10 * time.Second
)

// ProposalListener is told about new proposals after they are stored.
type ProposalListener interface {
	ProposalCreated(proposalID string)
}

// NewProposal is the submission form.
type NewProposal struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    models.Category  `json:"category"`
	ImageURLs   []string         `json:"image_urls"`
	Location    *models.Location `json:"location"`
}

// ListQuery selects one page of the reverse-chronological feed.
type ListQuery struct {
	Category models.Category
	Cursor   string
	Limit    int
}

// Page is one feed page. NextCursor is empty on the last page.
type Page struct {
	Proposals  []models.Proposal `json:"proposals"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

type ProposalService struct {
	db       *gorm.DB
	hub      *live.Hub
	listener ProposalListener
	pager    Pager
	log      zerolog.Logger
	now      func() time.Time
}

func NewProposalService(db *gorm.DB, hub *live.Hub, listener ProposalListener, log zerolog.Logger) *ProposalService {
	return &ProposalService{
		db:       db,
		hub:      hub,
		listener: listener,
		log:      log.With().Str("component", "proposals").Logger(),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Create validates and stores a proposal. Anonymous principals may submit;
// their proposals are attributed to models.AnonymousAuthor.
func (s *ProposalService) Create(ctx context.Context, who Principal, in NewProposal) (*models.Proposal, error) {
	p, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	p.ID = uuid.NewString()
	p.AuthorID = models.AnonymousAuthor
	if !who.IsAnonymous() {
		p.AuthorID = who.UserID
	}
	p.CreatedAt = s.now()

	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		s.log.Error().Err(err).Msg("failed creating proposal")
		return nil, transient(err, "failed creating proposal")
	}
	s.log.Info().Str("proposal", p.ID).Str("category", string(p.Category)).Str("author", p.AuthorID).Msg("proposal created")

	if s.listener != nil {
		s.listener.ProposalCreated(p.ID)
	}
	return p, nil
}

func (s *ProposalService) validate(in NewProposal) (*models.Proposal, error) {
	title := utils.PlainText(in.Title)
	description := utils.PlainText(in.Description)

	switch {
	case title == "":
		return nil, invalid("title is required")
	case utf8.RuneCountInString(title) > MaxTitleLength:
		return nil, invalid(fmt.Sprintf("title exceeds %d characters", MaxTitleLength))
	case description == "":
		return nil, invalid("description is required")
	case utf8.RuneCountInString(description) > MaxDescriptionLength:
		return nil, invalid(fmt.Sprintf("description exceeds %d characters", MaxDescriptionLength))
	case !in.Category.Valid():
		return nil, invalid("unknown category")
	case len(in.ImageURLs) > MaxImagesPerProposal:
		return nil, invalid(fmt.Sprintf("at most %d images", MaxImagesPerProposal))
	}

	if loc := in.Location; loc != nil {
		if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
			return nil, invalid("location out of range")
		}
	}

	images := make([]string, 0, len(in.ImageURLs))
	for _, u := range in.ImageURLs {
		if u == "" {
			return nil, invalid("empty image url")
		}
		images = append(images, u)
	}

	return &models.Proposal{
		Title:       title,
		Description: description,
		Category:    in.Category,
		ImageURLs:   images,
		Location:    in.Location,
	}, nil
}

// Get loads one proposal with its rendered description.
func (s *ProposalService) Get(ctx context.Context, id string) (*models.Proposal, error) {
	var p models.Proposal
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, transient(err, "failed loading proposal")
	}
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	p.DescriptionHTML = string(utils.RenderMarkdown(p.Description))
	return &p, nil
}

// List returns one feed page, newest first. Identical concurrent requests
// share a single query.
func (s *ProposalService) List(ctx context.Context, q ListQuery) (*Page, error) {
	if q.Category != "" && !q.Category.Valid() {
		return nil, invalid("unknown category")
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	cursor, err := DecodeCursor(q.Cursor)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s|%s|%d", q.Category, q.Cursor, q.Limit)
	page, _, err := LoadPage(&s.pager, key, func() (*Page, error) {
		// The load is shared by every caller waiting on key; one caller
		// going away must not fail the others.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pageLoadTimeout)
		defer cancel()
		return s.loadPage(loadCtx, q.Category, cursor, q.Limit)
	})
	return page, err
}

func (s *ProposalService) loadPage(ctx context.Context, category models.Category, cursor *Cursor, limit int) (*Page, error) {
	query := s.db.WithContext(ctx).Model(&models.Proposal{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if cursor != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Proposal
	if err := query.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, transient(err, "failed listing proposals")
	}

	if rows == nil {
		rows = []models.Proposal{}
	}
	page := &Page{Proposals: rows}
	if len(rows) > limit {
		page.Proposals = rows[:limit]
		last := page.Proposals[limit-1]
		page.NextCursor = Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	for i := range page.Proposals {
		if page.Proposals[i].ImageURLs == nil {
			page.Proposals[i].ImageURLs = []string{}
		}
	}
	return page, nil
}

// PublishFeed pushes the first feed page to live subscribers. It is a
// RefreshFunc for the ranking worker.
func (s *ProposalService) PublishFeed(ctx context.Context) error {
	if s.hub.Subscribers(live.TopicFeed) == 0 {
		return nil
	}
	page, err := s.loadPage(ctx, "", nil, DefaultPageSize)
	if err != nil {
		return err
	}
	return s.hub.Publish(live.TopicFeed, page)
}
