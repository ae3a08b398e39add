package db

import (
	"context"
	"testing"

	"colabora/internal/config"
	"colabora/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMigratesAndSeedsOnce(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL:   "sqlite:file:" + t.Name() + "?mode=memory&cache=shared",
		SeedProposals: true,
	}

	conn, err := Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	var proposals []models.Proposal
	require.NoError(t, conn.Order("created_at ASC").Find(&proposals).Error)
	require.Len(t, proposals, 6)
	assert.Equal(t, "Espacios Verdes Comunitarios", proposals[0].Title)
	for _, p := range proposals {
		assert.Zero(t, p.VoteCount)
		assert.True(t, p.Category.Valid())
		assert.Equal(t, models.AnonymousAuthor, p.AuthorID)
	}

	n, err := SeedProposals(conn)
	require.NoError(t, err)
	assert.Zero(t, n)
}
