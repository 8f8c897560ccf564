package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"ytdigest/errors"
	"ytdigest/retry"
)

// maxPromptChars caps how much transcript is submitted to a provider.
// The cut is a hard one; it is a cost control, not a correctness feature.
const maxPromptChars = 24000

const systemPrompt = `You summarize video transcripts. Respond with a single JSON object:
{"tldr": "<two or three sentence summary>", "chapters": [{"time": "MM:SS", "title": "<chapter title>"}]}
Chapter times come from the transcript's narrative order. Do not add commentary outside the JSON.`

type Config struct {
	APIKey          string
	BaseURL         string
	FallbackAPIKey  string
	FallbackBaseURL string
	FallbackModel   string
	Timeout         time.Duration
	Retry           retry.Policy
}

// Engine produces a summary and chapter list from transcript text. It
// calls the primary provider with the requested model and falls back to
// the secondary provider with a fixed model on any failure.
type Engine struct {
	primary       *openai.Client
	fallback      *openai.Client
	fallbackModel string
	timeout       time.Duration
	policy        retry.Policy
	logger        *logrus.Logger
}

func NewEngine(cfg Config) *Engine {
	primaryConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		primaryConfig.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	e := &Engine{
		primary:       openai.NewClientWithConfig(primaryConfig),
		fallbackModel: cfg.FallbackModel,
		timeout:       timeout,
		policy:        cfg.Retry,
		logger:        logrus.StandardLogger(),
	}

	if cfg.FallbackAPIKey != "" {
		fallbackConfig := openai.DefaultConfig(cfg.FallbackAPIKey)
		if cfg.FallbackBaseURL != "" {
			fallbackConfig.BaseURL = cfg.FallbackBaseURL
		}
		e.fallback = openai.NewClientWithConfig(fallbackConfig)
	}

	return e
}

// Summarize submits the (possibly truncated) transcript text and parses
// the provider output into a SummaryResult.
func (e *Engine) Summarize(ctx context.Context, text, language, model string) (*SummaryResult, error) {
	const op = "summarize.Summarize"

	text = Truncate(text, maxPromptChars)

	output, err := e.completeWithRetry(ctx, e.primary, model, text, language)
	if err != nil {
		e.logger.WithError(err).WithField("model", model).Warn("Primary provider failed")

		if e.fallback == nil {
			return nil, errors.AllProvidersFailed(op, err, "summary providers exhausted")
		}

		output, err = e.completeWithRetry(ctx, e.fallback, e.fallbackModel, text, language)
		if err != nil {
			e.logger.WithError(err).WithField("model", e.fallbackModel).Error("Fallback provider failed")
			return nil, errors.AllProvidersFailed(op, err, "summary providers exhausted")
		}
	}

	return ParseSummary(output), nil
}

func (e *Engine) completeWithRetry(ctx context.Context, client *openai.Client, model, text, language string) (string, error) {
	return retry.DoIf(ctx, e.policy, func(ctx context.Context) (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()
		return e.complete(callCtx, client, model, text, language)
	}, func(err error, attempt int) bool {
		return ctx.Err() == nil
	})
}

func (e *Engine) complete(ctx context.Context, client *openai.Client, model, text, language string) (string, error) {
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(text, language)},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("provider returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("provider returned empty content")
	}
	return content, nil
}

func buildPrompt(text, language string) string {
	return fmt.Sprintf("Write the tldr and chapter titles in language %q.\n\nTranscript:\n%s", language, text)
}

// Truncate hard-cuts text at max characters, appending an ellipsis.
func Truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
