package services

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransientWrapping(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := transient(cause, "failed loading proposal")

	assert.True(t, stderrors.Is(err, ErrTransient))
	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "failed loading proposal")
	assert.Nil(t, transient(nil, "ignored"))
}

func TestInvalidKeepsSentinel(t *testing.T) {
	err := invalid("title is required")
	assert.True(t, stderrors.Is(err, ErrInvalid))
	assert.Equal(t, "title is required: invalid input", err.Error())
}
