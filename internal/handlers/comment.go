package handlers

import (
	"net/http"

	"colabora/internal/middleware"
	"colabora/internal/services"
	"colabora/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type CommentHandler struct {
	comments *services.CommentService
	log      zerolog.Logger
}

func NewCommentHandler(comments *services.CommentService, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, log: log}
}

// List GET /api/proposals/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	limit := utils.ClampLimit(c.Query("limit"), services.DefaultCommentLimit, services.MaxCommentLimit)
	comments, err := h.comments.List(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// Create POST /api/proposals/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var body struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "malformed comment")
		return
	}

	comment, err := h.comments.Add(c.Request.Context(), c.Param("id"), middleware.CurrentPrincipal(c), body.Text)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
