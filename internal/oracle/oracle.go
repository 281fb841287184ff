// Package oracle turns interview state into prompts for the text-generation
// provider and turns its replies back into questions and evaluations.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/msvee3/Interview-prep/internal/apperr"
	"github.com/msvee3/Interview-prep/internal/llm"
	"github.com/msvee3/Interview-prep/internal/metrics"
	"github.com/msvee3/Interview-prep/internal/models"
	"github.com/msvee3/Interview-prep/internal/prompts"
)

// number of prior turns shown to the model when evaluating an answer
const HistoryWindow = 3

// Options bound each provider call. Zero values take the defaults.
type Options struct {
	Timeout    time.Duration
	MaxRetries uint64
	Backoff    time.Duration
}

func DefaultOptions() Options {
	return Options{
		Timeout:    30 * time.Second,
		MaxRetries: 2,
		Backoff:    500 * time.Millisecond,
	}
}

type Client struct {
	provider llm.Provider
	prompts  prompts.PromptProvider
	opts     Options
	logger   *zap.Logger
}

func NewClient(provider llm.Provider, promptManager prompts.PromptProvider, opts Options, logger *zap.Logger) *Client {
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultOptions().Backoff
	}
	return &Client{
		provider: provider,
		prompts:  promptManager,
		opts:     opts,
		logger:   logger,
	}
}

// GenerateOpeningQuestion asks the fast tier for the first question of an
// interview. profile may be nil.
func (c *Client) GenerateOpeningQuestion(ctx context.Context, cfg models.InterviewConfig, profile *models.User) (string, error) {
	prompt, err := c.prompts.BuildPrompt("opening", promptVariant(cfg), map[string]string{
		"Type":             cfg.Type,
		"Role":             cfg.Role,
		"Difficulty":       cfg.Difficulty,
		"Industry":         cfg.Industry,
		"CandidateContext": candidateContext(profile),
	})
	if err != nil {
		return "", fmt.Errorf("build opening prompt: %w", err)
	}

	text, err := c.generate(ctx, prompt, llm.TierFast)
	if err != nil {
		return "", err
	}
	return ExtractQuestion(text), nil
}

// EvaluateAndGenerateNext scores answer against the interview so far and
// asks the pro tier for the next question. Only the last HistoryWindow
// turns of history are included in the prompt.
func (c *Client) EvaluateAndGenerateNext(ctx context.Context, cfg models.InterviewConfig, history []models.QuestionAnswer, answer string) (*Evaluation, error) {
	prompt, err := c.prompts.BuildPrompt("evaluation", promptVariant(cfg), map[string]string{
		"Type":       cfg.Type,
		"Difficulty": cfg.Difficulty,
		"History":    FormatHistory(history),
		"Answer":     answer,
	})
	if err != nil {
		return nil, fmt.Errorf("build evaluation prompt: %w", err)
	}

	text, err := c.generate(ctx, prompt, llm.TierPro)
	if err != nil {
		return nil, err
	}

	eval := ParseEvaluation(text)
	metrics.EvaluationParsed(eval.Result)
	if eval.Result != ParseOK {
		c.logger.Warn("Evaluation response not parseable, using fallback",
			zap.String("result", eval.Result),
			zap.Int("response_length", len(text)))
	}
	return eval, nil
}

// generate runs one provider call per attempt under the configured timeout,
// retrying transient provider failures with exponential backoff.
func (c *Client) generate(ctx context.Context, prompt string, tier llm.Tier) (string, error) {
	var content string
	backoff := retry.WithMaxRetries(c.opts.MaxRetries, retry.NewExponential(c.opts.Backoff))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		callCtx := ctx
		if c.opts.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
			defer cancel()
		}

		start := time.Now()
		resp, err := c.provider.GenerateContent(callCtx, prompt, tier)
		if err != nil {
			metrics.OracleCall(string(tier), errorCode(err), time.Since(start))
			if ctx.Err() == nil && isTransient(err) {
				c.logger.Warn("Oracle call failed, retrying",
					zap.String("tier", string(tier)),
					zap.Int("attempt", attempt),
					zap.Error(err))
				return retry.RetryableError(err)
			}
			return err
		}

		metrics.OracleCall(string(tier), "ok", time.Since(start))
		content = resp.Content
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperr.ErrUpstream) {
			err = fmt.Errorf("%w: %w", apperr.ErrUpstream, err)
		}
		return "", fmt.Errorf("oracle %s call failed after %d attempt(s): %w", tier, attempt, err)
	}
	return content, nil
}

// ExtractQuestion trims the reply and strips quote characters. It does not
// guarantee a bare question.
func ExtractQuestion(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, `"`, "")
	return strings.ReplaceAll(text, "'", "")
}

// FormatHistory renders the last HistoryWindow turns as Q/A pairs.
func FormatHistory(history []models.QuestionAnswer) string {
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}
	blocks := make([]string, 0, len(history))
	for _, qa := range history {
		blocks = append(blocks, fmt.Sprintf("Q: %s\nA: %s", qa.QuestionText, qa.AnswerText))
	}
	return strings.Join(blocks, "\n")
}

func promptVariant(cfg models.InterviewConfig) string {
	if cfg.SubType != "" {
		return cfg.Type + "/" + cfg.SubType
	}
	return cfg.Type
}

func candidateContext(profile *models.User) string {
	if profile == nil {
		return ""
	}
	var parts []string
	if profile.TargetRole != "" {
		parts = append(parts, "target role: "+profile.TargetRole)
	}
	if profile.ExperienceLevel != "" {
		parts = append(parts, "experience level: "+profile.ExperienceLevel)
	}
	if len(parts) == 0 {
		return ""
	}
	return "\nCandidate background (" + strings.Join(parts, ", ") + ")."
}

func isTransient(err error) bool {
	var provErr *llm.ProviderError
	if errors.As(err, &provErr) {
		return provErr.Retryable()
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func errorCode(err error) string {
	var provErr *llm.ProviderError
	if errors.As(err, &provErr) && provErr.Code != "" {
		return provErr.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return llm.ErrCodeTimeout
	}
	return "error"
}
