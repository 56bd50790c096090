// Package generator calls the Groq chat-completions API (OpenAI wire format)
// to turn a sanitized incident snapshot into a markdown postmortem.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"postmortem-analysis/internal/config"
	"postmortem-analysis/internal/models"
)

const (
	// Rate-limit retries happen inside the single request timeout.
	maxRetries  = 3
	baseBackoff = 2 * time.Second
	maxBackoff  = 16 * time.Second
)

var (
	ErrAPIKeyNotSet       = errors.New("groq API key not set: set GROQ_API_KEY")
	ErrEmptyCompletion    = errors.New("provider returned no completion content")
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// Client is the report generator client. All failure modes (network error,
// non-2xx status, empty body) surface uniformly as a generator error.
type Client struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	budget      *tokenBudget
	log         *slog.Logger
}

func NewClient(cfg config.Config, log *slog.Logger) (*Client, error) {
	if cfg.GroqAPIKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	if log == nil {
		log = slog.Default()
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.GroqAPIKey),
		option.WithBaseURL(cfg.GroqBaseURL),
	)

	return &Client{
		client:      client,
		model:       cfg.GroqModel,
		temperature: cfg.GroqTemperature,
		maxTokens:   cfg.GroqMaxTokens,
		timeout:     cfg.RequestTimeout,
		budget:      newTokenBudget(cfg.PromptTokenBudget, log),
		log:         log,
	}, nil
}

// Generate produces a markdown postmortem for the snapshot using the already
// sanitized log text. The call enforces its own request timeout so a stuck
// provider cannot hold a worker indefinitely.
func (c *Client) Generate(ctx context.Context, snapshot models.IncidentSnapshot, sanitizedLog string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildUserPrompt(snapshot, c.budget.truncate(sanitizedLog))),
		},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * baseBackoff
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("report generation: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		completion, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			lastErr = err
			if isRateLimitError(err) {
				continue
			}
			return "", fmt.Errorf("groq chat completion: %w", err)
		}

		if len(completion.Choices) == 0 {
			return "", ErrEmptyCompletion
		}
		content := strings.TrimSpace(completion.Choices[0].Message.Content)
		if content == "" {
			return "", ErrEmptyCompletion
		}

		c.log.Debug("report generated",
			"model", completion.Model,
			"prompt_tokens", completion.Usage.PromptTokens,
			"completion_tokens", completion.Usage.CompletionTokens,
		)
		return content, nil
	}

	return "", fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
