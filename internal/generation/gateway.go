package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/bionexus-api/internal/redact"
)

// Generator is the interface consumers depend on. *Gateway implements it.
type Generator interface {
	// Generate executes one logical request, retrying transparently, and
	// never panics or returns raw SDK errors.
	Generate(ctx context.Context, req PromptRequest) Result
}

// Observer receives gateway lifecycle notifications, e.g. for metrics.
type Observer interface {
	AttemptStarted(tag ContextTag, attempt int)
	RetryScheduled(tag ContextTag, kind FailureKind, delay time.Duration)
	CallFinished(tag ContextTag, kind FailureKind, attempts int)
}

type nopObserver struct{}

func (nopObserver) AttemptStarted(ContextTag, int)                       {}
func (nopObserver) RetryScheduled(ContextTag, FailureKind, time.Duration) {}
func (nopObserver) CallFinished(ContextTag, FailureKind, int)            {}

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Gateway executes requests against a Model with retry and backoff.
type Gateway struct {
	model    Model
	policy   RetryPolicy
	logger   *slog.Logger
	observer Observer
	wait     WaitFunc
}

// GatewayOption customizes a Gateway.
type GatewayOption func(*Gateway)

// WithObserver registers an observer for attempts and outcomes.
func WithObserver(o Observer) GatewayOption {
	return func(g *Gateway) {
		if o != nil {
			g.observer = o
		}
	}
}

// WithWait replaces the backoff sleep, mainly for tests.
func WithWait(fn WaitFunc) GatewayOption {
	return func(g *Gateway) {
		if fn != nil {
			g.wait = fn
		}
	}
}

// NewGateway creates a Gateway. Zero fields of policy fall back to
// DefaultRetryPolicy.
func NewGateway(model Model, policy RetryPolicy, logger *slog.Logger, opts ...GatewayOption) (*Gateway, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: model cannot be nil", ErrInvalidConfig)
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	g := &Gateway{
		model:    model,
		policy:   policy.normalized(),
		logger:   logger.With("component", "generation_gateway"),
		observer: nopObserver{},
		wait:     sleepContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Policy returns the effective retry policy.
func (g *Gateway) Policy() RetryPolicy {
	return g.policy
}

// Generate runs req until it succeeds, fails with a non-retryable error, or
// exhausts the attempt budget. The only suspension point is the backoff wait,
// which ends early if ctx is cancelled.
func (g *Gateway) Generate(ctx context.Context, req PromptRequest) Result {
	tag := req.Context()
	maxAttempts := g.policy.MaxAttempts

	for attempt := 1; ; attempt++ {
		g.observer.AttemptStarted(tag, attempt)
		g.logger.DebugContext(ctx, "calling language model",
			"context", tag.String(),
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"has_image", req.HasImage())

		resp, err := g.model.Generate(ctx, req)
		if err == nil {
			g.observer.CallFinished(tag, KindNone, attempt)
			g.logger.DebugContext(ctx, "language model call succeeded",
				"context", tag.String(),
				"attempt", attempt,
				"text_length", len(resp.Text))
			return Result{Text: resp.Text, Audio: resp.Audio, Attempts: attempt}
		}

		kind := Classify(err)
		g.logger.ErrorContext(ctx, "language model call failed",
			"context", tag.String(),
			"attempt", attempt,
			"failure_kind", kind.String(),
			"error", redact.Error(err))

		if attempt >= maxAttempts || !g.policy.Retryable(err) || ctx.Err() != nil {
			return g.fail(ctx, tag, err, kind, attempt)
		}

		delay := g.policy.Delay(attempt - 1)
		g.observer.RetryScheduled(tag, kind, delay)
		g.logger.WarnContext(ctx, "retrying language model call after delay",
			"context", tag.String(),
			"attempt", attempt,
			"retries_left", maxAttempts-attempt,
			"delay_ms", delay.Milliseconds())

		if werr := g.wait(ctx, delay); werr != nil {
			g.logger.WarnContext(ctx, "retry wait interrupted",
				"attempt", attempt,
				"ctx_err", werr)
			g.observer.CallFinished(tag, KindRequestFailed, attempt)
			return Result{
				Attempts: attempt,
				Err:      fmt.Errorf("%w: retry wait interrupted: %w", ErrRequestFailed, werr),
			}
		}
	}
}

func (g *Gateway) fail(ctx context.Context, tag ContextTag, err error, kind FailureKind, attempts int) Result {
	var wrapped error
	switch kind {
	case KindCapacityExhausted:
		wrapped = fmt.Errorf("%w after %d attempts: %w", ErrCapacityExhausted, attempts, err)
	case KindContentBlocked:
		wrapped = err
	default:
		wrapped = fmt.Errorf("%w: %w", ErrRequestFailed, err)
		kind = KindRequestFailed
	}

	g.observer.CallFinished(tag, kind, attempts)
	g.logger.WarnContext(ctx, "language model call gave up",
		"context", tag.String(),
		"attempts", attempts,
		"failure_kind", kind.String())

	return Result{Attempts: attempts, Err: wrapped}
}
