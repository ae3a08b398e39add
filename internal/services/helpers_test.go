package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"colabora/internal/config"
	"colabora/internal/db"
	"colabora/internal/live"
	"colabora/internal/models"
	"colabora/internal/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbNames = strings.NewReplacer("/", "_", " ", "_")

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DatabaseURL: "sqlite:file:" + dbNames.Replace(t.Name()) + "?mode=memory&cache=shared",
	}
	conn, err := db.Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

func newTestRanking(t *testing.T, conn *gorm.DB, hub *live.Hub) *RankingService {
	t.Helper()
	cache, err := utils.NewCache(32)
	require.NoError(t, err)
	return NewRankingService(conn, cache, hub, time.Minute, zerolog.Nop())
}

func insertProposal(t *testing.T, conn *gorm.DB, title string, votes int64, created time.Time) models.Proposal {
	t.Helper()
	p := models.Proposal{
		ID:          uuid.NewString(),
		Title:       title,
		Description: "Descripción de " + title,
		Category:    models.CategoryComunidad,
		VoteCount:   votes,
		ImageURLs:   []string{},
		AuthorID:    models.AnonymousAuthor,
		CreatedAt:   created.UTC(),
	}
	require.NoError(t, conn.Create(&p).Error)
	return p
}

type recordingListener struct {
	votes     []string
	proposals []string
}

func (r *recordingListener) VoteAccepted(id string)    { r.votes = append(r.votes, id) }
func (r *recordingListener) ProposalCreated(id string) { r.proposals = append(r.proposals, id) }
