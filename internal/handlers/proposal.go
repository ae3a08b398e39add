package handlers

import (
	"net/http"

	"colabora/internal/middleware"
	"colabora/internal/models"
	"colabora/internal/services"
	"colabora/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ProposalHandler struct {
	proposals *services.ProposalService
	ledger    *services.VoteLedger
	log       zerolog.Logger
}

func NewProposalHandler(proposals *services.ProposalService, ledger *services.VoteLedger, log zerolog.Logger) *ProposalHandler {
	return &ProposalHandler{proposals: proposals, ledger: ledger, log: log}
}

// List GET /api/proposals?category=&cursor=&limit=
func (h *ProposalHandler) List(c *gin.Context) {
	page, err := h.proposals.List(c.Request.Context(), services.ListQuery{
		Category: models.Category(c.Query("category")),
		Cursor:   c.Query("cursor"),
		Limit:    utils.ClampLimit(c.Query("limit"), services.DefaultPageSize, services.MaxPageSize),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Create POST /api/proposals
func (h *ProposalHandler) Create(c *gin.Context) {
	var in services.NewProposal
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "malformed proposal")
		return
	}

	p, err := h.proposals.Create(c.Request.Context(), middleware.CurrentPrincipal(c), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Detail GET /api/proposals/:id
func (h *ProposalHandler) Detail(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.proposals.Get(ctx, c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	voted, err := h.ledger.HasVoted(ctx, p.ID, middleware.CurrentPrincipal(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposal": p, "has_voted": voted})
}
