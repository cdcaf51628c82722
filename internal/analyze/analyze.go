// Package analyze sends extracted paper text to a reasoning service and
// normalises its structured reply into an Analysis.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-ingest/internal/retry"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

// Analysis failure modes. An unparseable or empty reply fails fast; only
// transport and service errors are retried.
var (
	ErrInvalidResponse    = errors.New("analysis service returned invalid JSON: try re-running the command")
	ErrServiceUnavailable = errors.New("analysis service unavailable")
)

// truncationMarker joins the head and tail slices of over-budget text.
const truncationMarker = "\n\n[…text truncated…]\n\n"

// Backend abstracts the reasoning service so tests can supply a mock. It
// takes one prompt and returns the raw text reply.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Analyzer produces structured metadata for extracted paper text.
type Analyzer struct {
	backend Backend
	cfg     *types.AnalysisConfig
	log     zerolog.Logger
}

// New returns an Analyzer calling backend with the given settings.
func New(backend Backend, cfg *types.AnalysisConfig, log zerolog.Logger) *Analyzer {
	return &Analyzer{backend: backend, cfg: cfg, log: log}
}

// Analyze sends the (possibly truncated) text to the reasoning service and
// returns the normalised result.
//
// It fails with ErrInvalidResponse immediately when the reply is empty or
// unparseable after stripping code fences, and with ErrServiceUnavailable
// after exhausting the retry budget on transport errors, backing off
// exponentially from the configured base delay.
func (a *Analyzer) Analyze(ctx context.Context, fullText string) (*types.Analysis, error) {
	budget := a.cfg.MaxTextLength
	if budget <= 0 {
		budget = 30000
	}
	attempts := a.cfg.MaxRetries
	if attempts <= 0 {
		attempts = 3
	}

	truncated := Truncate(fullText, budget)
	if len(truncated) != len(fullText) {
		a.log.Info().Int("original", len(fullText)).Int("budget", budget).Msg("truncating paper text")
	}

	prompt, err := renderPrompt(truncated)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	var result *types.Analysis
	err = retry.Do(ctx, retry.Policy{Attempts: attempts, BaseDelay: a.cfg.RetryBaseDelay, Exponential: true},
		func(ctx context.Context) error {
			reply, err := a.backend.Generate(ctx, prompt)
			if err != nil {
				a.log.Warn().Err(err).Msg("analysis attempt failed")
				return err
			}
			if strings.TrimSpace(reply) == "" {
				return retry.Permanent(fmt.Errorf("%w: empty reply", ErrInvalidResponse))
			}
			parsed, err := parseResponse(reply)
			if err != nil {
				return retry.Permanent(fmt.Errorf("%w: %v", ErrInvalidResponse, err))
			}
			result = parsed
			return nil
		})
	if err != nil {
		if errors.Is(err, ErrInvalidResponse) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrServiceUnavailable, attempts, err)
	}

	a.log.Info().Str("title", result.Title).Msg("analysis complete")
	return result, nil
}

// Truncate enforces the character budget by keeping the first 80% and the
// last 20% of the budget joined by the truncation marker. Conclusions and
// quantitative results cluster near the end of academic papers, so the
// tail is kept alongside the framing head rather than cut.
func Truncate(text string, budget int) string {
	if len(text) <= budget {
		return text
	}
	head := budget * 8 / 10
	tail := budget - head
	return text[:head] + truncationMarker + text[len(text)-tail:]
}
