package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/msvee3/Interview-prep/internal/llm"
	"github.com/msvee3/Interview-prep/internal/models"
)

// the subset of the genai models service used here
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client represents a Gemini LLM client
type Client struct {
	models contentGenerator
	config *Config
}

func NewClient(ctx context.Context, config *Config) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	return &Client{
		models: client.Models,
		config: config,
	}, nil
}

// GenerateContent sends a single prompt to the model of the given tier and
// returns the raw text.
func (c *Client) GenerateContent(ctx context.Context, prompt string, tier llm.Tier) (*models.GenerationResponse, error) {
	startTime := time.Now()
	model := c.modelFor(tier)

	result, err := c.models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return nil, classifyError(err)
	}

	if result == nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "No response generated",
		}
	}

	text, err := result.Text()
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to extract response text",
			Err:      err,
		}
	}

	if text == "" {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}

	return &models.GenerationResponse{
		Content: text,
		Metadata: models.GenerationMetadata{
			ProcessingTime: int(time.Since(startTime).Milliseconds()),
			Provider:       "gemini",
			Model:          model,
			Tier:           string(tier),
		},
	}, nil
}

func (c *Client) GetProviderName() string {
	return "gemini"
}

func (c *Client) modelFor(tier llm.Tier) string {
	if tier == llm.TierPro {
		return c.config.ProModel
	}
	return c.config.FastModel
}

func classifyError(err error) *llm.ProviderError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeTimeout,
			Message:  "Request timed out",
			Err:      err,
		}
	case isRateLimitError(err):
		return &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeRateLimit,
			Message:  "Rate limit exceeded",
			Err:      err,
		}
	case isAuthError(err):
		return &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeAPIKey,
			Message:  "API key rejected",
			Err:      err,
		}
	default:
		return &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeServiceDown,
			Message:  "Failed to generate content",
			Err:      err,
		}
	}
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "quota")
}

func isAuthError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "api_key_invalid") ||
		strings.Contains(msg, "permission_denied") ||
		strings.Contains(msg, "401")
}
