package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/contactlens/internal/extraction"
	"github.com/jonathan/contactlens/internal/pipeline"
	"github.com/jonathan/contactlens/internal/types"
)

func TestHTTPStatus(t *testing.T) {
	// A real validator error, produced the same way the pipeline produces one.
	invalid := types.ContactDraft{ConfidenceScore: 2}
	validationErr := invalid.Validate()
	require.Error(t, validationErr)

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "Busy pipeline",
			err:      pipeline.ErrBusy,
			expected: http.StatusTooManyRequests,
		},
		{
			name:     "No draft",
			err:      pipeline.ErrNoDraft,
			expected: http.StatusConflict,
		},
		{
			name:     "Wrapped no draft",
			err:      fmt.Errorf("confirm: %w", pipeline.ErrNoDraft),
			expected: http.StatusConflict,
		},
		{
			name:     "Validation failure",
			err:      validationErr,
			expected: http.StatusBadRequest,
		},
		{
			name:     "API call failure",
			err:      &extraction.APICallError{Message: "unreachable"},
			expected: http.StatusBadGateway,
		},
		{
			name:     "Schema parse failure",
			err:      &extraction.ParseError{Message: "bad shape"},
			expected: http.StatusBadGateway,
		},
		{
			name:     "Unknown error",
			err:      errors.New("boom"),
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}
