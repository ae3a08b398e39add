package handlers

import (
	"net/http"

	"colabora/internal/services"
	"colabora/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type RankingHandler struct {
	ranking *services.RankingService
	log     zerolog.Logger
}

func NewRankingHandler(ranking *services.RankingService, log zerolog.Logger) *RankingHandler {
	return &RankingHandler{ranking: ranking, log: log}
}

// Leaderboard GET /api/ranking?limit=
func (h *RankingHandler) Leaderboard(c *gin.Context) {
	limit := utils.ClampLimit(c.Query("limit"), services.DefaultLeaderboardSize, services.MaxLeaderboardSize)
	ranked, err := h.ranking.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ranked)
}
