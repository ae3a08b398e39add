package handlers

import (
	"net/http"

	"colabora/internal/middleware"
	"colabora/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type VoteHandler struct {
	ledger *services.VoteLedger
	log    zerolog.Logger
}

func NewVoteHandler(ledger *services.VoteLedger, log zerolog.Logger) *VoteHandler {
	return &VoteHandler{ledger: ledger, log: log}
}

// Vote POST /api/proposals/:id/vote
func (h *VoteHandler) Vote(c *gin.Context) {
	res, err := h.ledger.CastVote(c.Request.Context(), c.Param("id"), middleware.CurrentPrincipal(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Status GET /api/proposals/:id/vote
func (h *VoteHandler) Status(c *gin.Context) {
	id := c.Param("id")
	voted, err := h.ledger.HasVoted(c.Request.Context(), id, middleware.CurrentPrincipal(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposal_id": id, "has_voted": voted})
}
