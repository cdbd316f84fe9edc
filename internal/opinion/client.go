// Package opinion produces the independent second assessment of an order.
// The concrete client talks to an OpenAI-compatible chat-completions
// endpoint; every failure mode collapses into an error the caller resolves
// with Fallback, so the pipeline never depends on the upstream being up.
package opinion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/delimasa/ordergate/internal/catalog"
	"github.com/delimasa/ordergate/internal/engine"
)

// Request carries the order plus the rule evaluation summary so the
// assessment can be contextualized.
type Request struct {
	Client     catalog.ClientPolicy
	Items      []engine.OrderItem
	Conditions string
	Rules      engine.RuleDecision
}

// Source supplies an independent decision for an order. Implementations may
// fail; callers substitute Fallback on any error.
type Source interface {
	Evaluate(ctx context.Context, req Request) (engine.Opinion, error)
}

type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Retries     int
}

const (
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.3
	defaultMaxTokens   = 1500
	defaultTimeout     = 30 * time.Second
	defaultRetries     = 2
)

type Client struct {
	http        *resty.Client
	model       string
	temperature float64
	maxTokens   int
}

func NewClient(opts Options) *Client {
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Retries == 0 {
		opts.Retries = defaultRetries
	}

	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetAuthToken(opts.APIKey).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries)

	return &Client{
		http:        httpClient,
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You are an expert commercial analyst specialized in institutional food distribution in Colombia. You always answer with valid JSON in the exact format requested."

// Evaluate requests an assessment and validates the returned shape. Any
// transport, parse or shape violation is returned as an error.
func (c *Client) Evaluate(ctx context.Context, req Request) (engine.Opinion, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(req)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	var parsed chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&parsed).
		Post("/v1/chat/completions")
	if err != nil {
		return engine.Opinion{}, fmt.Errorf("opinion request: %w", err)
	}
	if resp.IsError() {
		return engine.Opinion{}, fmt.Errorf("opinion upstream returned %s", resp.Status())
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return engine.Opinion{}, errors.New("opinion upstream returned an empty completion")
	}

	return Parse([]byte(parsed.Choices[0].Message.Content))
}
