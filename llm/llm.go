// Package llm provides the label services used for harmonization.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/helpcomp/camt-harmonizer/harmonize"
	"github.com/rs/zerolog/log"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"

	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// Providers lists the accepted values of Config.Provider.
var Providers = []string{ProviderGemini, ProviderOpenAI, ProviderAzure}

var ErrNoCandidates = errors.New("label service returned no candidates")

type Config struct {
	Provider      string
	APIKey        string
	BaseURL       string
	AzureEndpoint string
	Model         string
	Timeout       time.Duration
}

// New builds the label service for cfg. Without an API key harmonization is disabled and
// harmonize.Unavailable is returned.
func New(ctx context.Context, cfg Config) (harmonize.LabelService, error) {
	if cfg.APIKey == "" {
		log.Info().Msg("No LLM API key provided, original labels will be kept")
		return harmonize.Unavailable{}, nil
	}

	hc := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Provider {
	case ProviderGemini, "":
		return NewGemini(ctx, hc, cfg.APIKey, cfg.BaseURL, modelOrDefault(cfg.Model, DefaultGeminiModel))
	case ProviderOpenAI:
		return NewOpenAI(hc, cfg.APIKey, cfg.BaseURL, modelOrDefault(cfg.Model, DefaultOpenAIModel)), nil
	case ProviderAzure:
		if cfg.AzureEndpoint == "" {
			return nil, errors.New("azure endpoint is required if the azure provider is selected")
		}
		return NewAzureOpenAI(hc, cfg.APIKey, cfg.AzureEndpoint, modelOrDefault(cfg.Model, DefaultOpenAIModel)), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

func modelOrDefault(model, def string) string {
	if model == "" {
		return def
	}
	return model
}
