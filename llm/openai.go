package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/helpcomp/camt-harmonizer/prom"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// OpenAI rewrites labels with OpenAI or Azure OpenAI.
type OpenAI struct {
	client *openai.Client
	http   *http.Client
	model  string
	kind   string
}

func NewOpenAI(hc *http.Client, apiKey, baseURL, model string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = hc
	return &OpenAI{client: openai.NewClientWithConfig(cfg), http: hc, model: model, kind: ProviderOpenAI}
}

func NewAzureOpenAI(hc *http.Client, apiKey, endpoint, model string) *OpenAI {
	cfg := openai.DefaultAzureConfig(apiKey, endpoint)
	cfg.HTTPClient = hc
	return &OpenAI{client: openai.NewClientWithConfig(cfg), http: hc, model: model, kind: ProviderAzure}
}

func (o *OpenAI) Rewrite(ctx context.Context, prompt string) (string, error) {
	prom.Stats.AddAPICall(o.kind)

	// GPT3Dot5TurboInstruct only speaks the legacy completions API
	if o.model == openai.GPT3Dot5TurboInstruct {
		resp, err := o.client.CreateCompletion(ctx, openai.CompletionRequest{
			Model:     o.model,
			Prompt:    prompt,
			MaxTokens: 2048,
		})
		if err != nil {
			prom.Stats.AddAPIError(o.kind)
			return "", fmt.Errorf("%s completion: %w", o.kind, err)
		}
		prom.Stats.AddTokens(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
		if len(resp.Choices) == 0 {
			return "", ErrNoCandidates
		}
		return resp.Choices[0].Text, nil
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		prom.Stats.AddAPIError(o.kind)
		return "", fmt.Errorf("%s chat completion: %w", o.kind, err)
	}
	prom.Stats.AddTokens(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)

	if len(resp.Choices) == 0 {
		return "", ErrNoCandidates
	}
	if len(resp.Choices) != 1 {
		log.Warn().Int("Choices", len(resp.Choices)).Msg("Unexpected number of choices, using the first one")
	}
	return resp.Choices[0].Message.Content, nil
}

// CloseIdleConnections releases the connections kept by the underlying HTTP client.
func (o *OpenAI) CloseIdleConnections() { o.http.CloseIdleConnections() }
