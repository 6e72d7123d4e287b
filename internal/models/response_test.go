package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("Something went wrong", ErrorCodeInternalError)

	assert.Equal(t, "error", resp.Error)
	assert.Equal(t, "Something went wrong", resp.Message)
	assert.Equal(t, ErrorCodeInternalError, resp.Code)
	assert.False(t, resp.Timestamp.IsZero())
	assert.Zero(t, resp.RetryAfter)
}

func TestNewRateLimitResponse(t *testing.T) {
	resp := NewRateLimitResponse(42)

	assert.Equal(t, ErrorCodeRateLimitExceeded, resp.Code)
	assert.Equal(t, 42, resp.RetryAfter)
	assert.Contains(t, resp.Message, "Rate limit exceeded")
}

func TestRateLimitResponse_JSONShape(t *testing.T) {
	// The wire contract is {error, message, retryAfter}.
	data, err := json.Marshal(NewRateLimitResponse(60))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "error", decoded["error"])
	assert.NotEmpty(t, decoded["message"])
	assert.Equal(t, float64(60), decoded["retryAfter"])
}

func TestErrorResponse_RetryAfterOmittedWhenZero(t *testing.T) {
	data, err := json.Marshal(NewErrorResponse("bad input", ErrorCodeBadRequest))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "retryAfter")
}

func TestErrorResponse_WithDetails(t *testing.T) {
	resp := NewErrorResponse("validation failed", ErrorCodeValidation).
		WithDetails(map[string]string{"message": "message is required"})

	assert.Equal(t, "message is required", resp.Details["message"])
}
