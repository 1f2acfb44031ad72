package collaborators

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/marketintel/internal/apperrors"
	"github.com/sawpanic/marketintel/internal/config"
)

func TestWrapBreaker_PassesThroughSuccess(t *testing.T) {
	b := newBreaker("test", config.DefaultCollaboratorConfig())
	result, err := wrapBreaker(b, "test", func() (string, error) {
		return "ok", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestWrapBreaker_PassesThroughInnerError(t *testing.T) {
	b := newBreaker("test", config.DefaultCollaboratorConfig())
	innerErr := errors.New("boom")
	_, err := wrapBreaker(b, "test", func() (string, error) {
		return "", innerErr
	})
	assert.ErrorIs(t, err, innerErr)

	var transient *apperrors.TransientUpstream
	assert.False(t, errors.As(err, &transient), "a plain inner error should not be reclassified as transient")
}
