package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/config"
	"github.com/coldreach/warmstack/internal/tracing"
)

const (
	providerTimeout     = 30 * time.Second
	providerTemperature = 0.8
)

// NewProvider builds the configured AI backend, or nil when none is set up.
// The content service treats a nil provider as "templates only".
func NewProvider(cfg *config.AIConfig) interfaces.ContentProvider {
	if cfg == nil || cfg.ApiKey == "" {
		return nil
	}
	switch cfg.Provider {
	case "openai", "groq", "openrouter":
		return &chatCompletionsProvider{cfg: cfg}
	default:
		return nil
	}
}

// chatCompletionsProvider speaks the OpenAI chat-completions wire format,
// which Groq and OpenRouter also serve.
type chatCompletionsProvider struct {
	cfg *config.AIConfig
}

func (p *chatCompletionsProvider) Name() string {
	return p.cfg.Provider
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *chatCompletionsProvider) Generate(ctx context.Context, systemPrompt, userPrompt string, maxWords int) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "chatCompletionsProvider.Generate")
	defer span.Finish()
	span.SetTag("provider", p.cfg.Provider)
	span.SetTag("model", p.cfg.Model)

	payload, err := json.Marshal(chatCompletionRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: providerTemperature,
		MaxTokens:   maxWords * 2,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.cfg.ApiUrl+"/chat/completions", bytes.NewBuffer(payload))
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		Timeout: providerTimeout,
	}
	resp, err := client.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "unable to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, string(body))
		tracing.TraceErr(span, err)
		return "", err
	}

	var response chatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to unmarshal response")
	}
	if len(response.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return response.Choices[0].Message.Content, nil
}
