package advisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/concord/pkg/ports"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultOpenAIBaseURL is the public OpenAI API.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultOpenAIModel is used when no model is configured.
	DefaultOpenAIModel = "gpt-4o-mini"
)

var ErrOpenAINoAPIKey = errors.New("openai: api key not configured")

// OpenAI asks an OpenAI-compatible chat completions endpoint for guidance.
type OpenAI struct {
	apiKey  string
	model   string
	timeout time.Duration
	opts    []option.RequestOption
	client  openai.Client
}

var _ ports.Advisor = (*OpenAI)(nil)

// OpenAIOption configures the OpenAI advisor.
type OpenAIOption func(*OpenAI)

// WithBaseURL points the advisor at another compatible endpoint.
func WithBaseURL(u string) OpenAIOption {
	return func(o *OpenAI) {
		if u != "" {
			o.opts = append(o.opts, option.WithBaseURL(u))
		}
	}
}

// WithModel sets the chat model.
func WithModel(m string) OpenAIOption {
	return func(o *OpenAI) {
		if m = strings.TrimSpace(m); m != "" {
			o.model = m
		}
	}
}

// WithRequestTimeout bounds one completion call.
func WithRequestTimeout(d time.Duration) OpenAIOption {
	return func(o *OpenAI) {
		o.timeout = d
	}
}

// WithHTTP replaces the HTTP client.
func WithHTTP(hc *http.Client) OpenAIOption {
	return func(o *OpenAI) {
		o.opts = append(o.opts, option.WithHTTPClient(hc))
	}
}

// NewOpenAI creates the advisor. The key is checked lazily so a server can start
// and report the missing key per request.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAI {
	o := &OpenAI{
		apiKey:  strings.TrimSpace(apiKey),
		model:   DefaultOpenAIModel,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	base := []option.RequestOption{
		option.WithAPIKey(o.apiKey),
		option.WithBaseURL(DefaultOpenAIBaseURL),
		// One call per submit; the guidance caller decides about retries.
		option.WithMaxRetries(0),
	}
	if o.timeout > 0 {
		base = append(base, option.WithRequestTimeout(o.timeout))
	}
	o.client = openai.NewClient(append(base, o.opts...)...)
	return o
}

// Advise implements ports.Advisor.
func (o *OpenAI) Advise(ctx context.Context, data map[string]any) (string, error) {
	if o.apiKey == "" {
		return "", ErrOpenAINoAPIKey
	}
	user, err := userPrompt(data)
	if err != nil {
		return "", err
	}

	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return "", fmt.Errorf("openai: %s (status %d): %w", apiErr.Message, apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai: empty response")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
