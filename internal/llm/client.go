package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/christopher-nones/resume-scorer/internal/config"
)

// ErrAllProvidersFailed is returned when every configured provider has been
// attempted without success.
var ErrAllProvidersFailed = errors.New("all LLM providers failed")

// Fixed call parameters. Low temperature keeps scoring consistent between
// runs; response_format forces a JSON object back.
const (
	maxTokens      = 4000
	temperature    = 0.2
	requestTimeout = 120 * time.Second
)

// Provider is one chat-completion backend capable of returning a
// JSON-encoded response for a system/user prompt pair.
type Provider interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// chatProvider calls an OpenAI-compatible chat completions endpoint.
type chatProvider struct {
	cfg    config.ProviderConfig
	client *resty.Client
}

// NewProvider builds a Provider for an OpenAI-compatible endpoint. The
// returned provider fails immediately, without a network call, when its
// configuration is incomplete.
func NewProvider(cfg config.ProviderConfig) Provider {
	return &chatProvider{
		cfg:    cfg,
		client: resty.New().SetTimeout(requestTimeout),
	}
}

func (p *chatProvider) Name() string {
	return p.cfg.Name
}

func (p *chatProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !p.cfg.Complete() {
		return "", fmt.Errorf("missing %s configuration environment variables", p.cfg.Name)
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+p.cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"model": p.cfg.Model,
			"messages": []map[string]string{
				{"role": "system", "content": systemPrompt},
				{"role": "user", "content": userPrompt},
			},
			"max_tokens":      maxTokens,
			"temperature":     temperature,
			"response_format": map[string]string{"type": "json_object"},
		}).
		Post(strings.TrimSuffix(p.cfg.BaseURL, "/") + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", p.cfg.Name, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%s returned status %d: %s", p.cfg.Name, resp.StatusCode(), truncate(resp.String(), 200))
	}

	content := gjson.Get(resp.String(), "choices.0.message.content").String()
	if content == "" {
		return "", fmt.Errorf("no message content in %s response", p.cfg.Name)
	}
	return content, nil
}

// Client runs prompts through an ordered list of providers and returns the
// first successful response. No partial results are merged across providers.
type Client struct {
	providers []Provider
}

// NewClient creates a Client that attempts providers in the given order.
func NewClient(providers ...Provider) *Client {
	return &Client{providers: providers}
}

// JSONPrompt sends the prompts to each provider in turn, returning the raw
// model output of the first that succeeds. When every provider fails, the
// returned error wraps ErrAllProvidersFailed and carries every underlying
// failure message.
func (c *Client) JSONPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var failures []string
	for _, p := range c.providers {
		out, err := p.Complete(ctx, systemPrompt, userPrompt)
		if err == nil {
			return out, nil
		}
		log.Warn().Str("provider", p.Name()).Err(err).Msg("provider attempt failed")
		failures = append(failures, fmt.Sprintf("%s: %v", p.Name(), err))
	}
	return "", fmt.Errorf("%w: %s", ErrAllProvidersFailed, strings.Join(failures, "; "))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
