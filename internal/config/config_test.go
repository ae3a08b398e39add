package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RANKING_CACHE_TTL", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Minute, cfg.RankingCacheTTL)
	assert.False(t, cfg.UsesSQLite())
	assert.True(t, cfg.SeedProposals)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "sqlite:file::memory:?cache=shared")
	t.Setenv("RANKING_CACHE_TTL", "15s")
	t.Setenv("PUBLIC_BASE_URL", "https://colabora.mx/")
	t.Setenv("SEED_PROPOSALS", "false")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.UsesSQLite())
	assert.Equal(t, "file::memory:?cache=shared", cfg.SQLitePath())
	assert.Equal(t, 15*time.Second, cfg.RankingCacheTTL)
	assert.Equal(t, "https://colabora.mx", cfg.PublicBaseURL)
	assert.False(t, cfg.SeedProposals)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("RANKING_CACHE_TTL", "soon")
	t.Setenv("LOG_PRETTY", "maybe")

	cfg := Load()
	assert.Equal(t, time.Minute, cfg.RankingCacheTTL)
	assert.False(t, cfg.LogPretty)
}
