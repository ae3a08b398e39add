package handlers

import (
	"net/http"
	"strings"

	"colabora/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ImageHandler struct {
	store services.BlobStore
	log   zerolog.Logger
}

func NewImageHandler(store services.BlobStore, log zerolog.Logger) *ImageHandler {
	return &ImageHandler{store: store, log: log}
}

// Upload POST /api/images, multipart field "image".
func (h *ImageHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		badRequest(c, "missing image file")
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		badRequest(c, "only image files are allowed")
		return
	}
	if header.Size > services.MaxImageBytes {
		badRequest(c, "image exceeds 10MB")
		return
	}

	result, err := h.store.Put(c.Request.Context(), header.Filename, file)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.log.Info().Str("image", result.ID).Int64("bytes", header.Size).Msg("image uploaded")
	c.JSON(http.StatusCreated, result)
}
