package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"colabora/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{services.ErrUnauthorized, http.StatusUnauthorized},
		{services.ErrBadCredentials, http.StatusUnauthorized},
		{services.ErrAlreadyVoted, http.StatusConflict},
		{services.ErrEmailTaken, http.StatusConflict},
		{fmt.Errorf("vote: %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrInvalid, http.StatusBadRequest},
		{services.ErrTransient, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, statusFor(tc.err), tc.err.Error())
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	writeError(c, zerolog.Nop(), errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	writeError(c, zerolog.Nop(), services.ErrAlreadyVoted)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"already voted"}`, w.Body.String())
}
