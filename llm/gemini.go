package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/helpcomp/camt-harmonizer/prom"
	"google.golang.org/genai"
)

// Gemini rewrites labels with the Gemini generateContent API.
type Gemini struct {
	client *genai.Client
	http   *http.Client
	model  string
}

// NewGemini creates a Gemini client. baseURL is optional and replaces the public
// endpoint, e.g. for a proxy.
func NewGemini(ctx context.Context, hc *http.Client, apiKey, baseURL, model string) (*Gemini, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, http: hc, model: model}, nil
}

func (g *Gemini) Rewrite(ctx context.Context, prompt string) (string, error) {
	prom.Stats.AddAPICall(ProviderGemini)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		prom.Stats.AddAPIError(ProviderGemini)
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	if resp.UsageMetadata != nil {
		prom.Stats.AddTokens(
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount),
			int(resp.UsageMetadata.TotalTokenCount),
		)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrNoCandidates
	}
	text := resp.Text()
	if text == "" {
		return "", ErrNoCandidates
	}
	return text, nil
}

// CloseIdleConnections releases the connections kept by the underlying HTTP client.
func (g *Gemini) CloseIdleConnections() { g.http.CloseIdleConnections() }
