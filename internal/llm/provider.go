package llm

import (
	"context"

	"github.com/msvee3/Interview-prep/internal/apperr"
	"github.com/msvee3/Interview-prep/internal/models"
)

// Tier selects the model class used for a call.
type Tier string

const (
	// cheap and quick, used for opening questions
	TierFast Tier = "fast"
	// higher quality, used for answer evaluation
	TierPro Tier = "pro"
)

// defines the interface for LLM providers
type Provider interface {
	GenerateContent(ctx context.Context, prompt string, tier Tier) (*models.GenerationResponse, error)
	GetProviderName() string
}

// represents an error from an LLM provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

// Every provider failure is an upstream failure for the callers.
func (e *ProviderError) Unwrap() []error {
	if e.Err != nil {
		return []error{apperr.ErrUpstream, e.Err}
	}
	return []error{apperr.ErrUpstream}
}

// Retryable reports whether the call may succeed if repeated.
func (e *ProviderError) Retryable() bool {
	switch e.Code {
	case ErrCodeRateLimit, ErrCodeServiceDown, ErrCodeTimeout:
		return true
	}
	return false
}

// Common error codes
// For current and future use across different providers
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
)
