package gemini

import (
	"errors"
	"os"
)

// holds Gemini-specific configuration
type Config struct {
	APIKey    string
	FastModel string
	ProModel  string
}

func NewConfig() (*Config, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}

	fast := os.Getenv("GEMINI_FAST_MODEL")
	if fast == "" {
		fast = "gemini-1.5-flash"
	}

	pro := os.Getenv("GEMINI_PRO_MODEL")
	if pro == "" {
		pro = "gemini-1.5-pro"
	}

	return &Config{
		APIKey:    apiKey,
		FastModel: fast,
		ProModel:  pro,
	}, nil
}
