package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bionexus-api/internal/domain"
	"github.com/phrazzld/bionexus-api/internal/generation"
	"github.com/phrazzld/bionexus-api/internal/render"
	"github.com/phrazzld/bionexus-api/internal/session"
)

// SessionStore is the subset of *session.Store the services use.
type SessionStore interface {
	Dispatch(id uuid.UUID, view domain.Mode) (session.Ticket, *session.Session, error)
	Apply(t session.Ticket, fn func(*session.Session)) (bool, error)
	Now() time.Time
}

// Recorder receives counters for parse failures and dropped responses.
// *metrics.Metrics implements it.
type Recorder interface {
	ParseFailed(kind string)
	StaleResponse(view string)
}

type nopRecorder struct{}

func (nopRecorder) ParseFailed(string)   {}
func (nopRecorder) StaleResponse(string) {}

// Option customizes a service.
type Option func(*core)

// WithRecorder registers a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *core) {
		if r != nil {
			c.recorder = r
		}
	}
}

// Reply is the outcome of an operation whose answer is shown directly.
type Reply struct {
	// Text is the model answer, or the localized fallback when Degraded.
	Text string
	// HTML is Text rendered from Markdown.
	HTML string
	// Degraded is true when the gateway call failed.
	Degraded bool
	// ErrorKind classifies the failure; KindNone on success.
	ErrorKind generation.FailureKind
	// Applied reports whether the session state was updated. It is false for
	// stateless operations, failed calls and stale responses.
	Applied bool
	// Attempts is the number of remote attempts made.
	Attempts int
}

// core holds what every service shares.
type core struct {
	name     string
	gen      generation.Generator
	logger   *slog.Logger
	recorder Recorder
}

func newCore(name string, gen generation.Generator, logger *slog.Logger, opts []Option) (core, error) {
	if gen == nil {
		return core{}, fmt.Errorf("%w: %s service needs a generator", ErrMissingDependency, name)
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := core{
		name:     name,
		gen:      gen,
		logger:   logger.With("component", name+"_service"),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c, nil
}

// generate validates the request and runs it through the gateway.
func (c *core) generate(
	ctx context.Context,
	prompt string,
	tag generation.ContextTag,
	opts ...generation.RequestOption,
) (generation.Result, error) {
	req, err := generation.NewPromptRequest(prompt, tag, opts...)
	if err != nil {
		return generation.Result{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return c.gen.Generate(ctx, req), nil
}

// prompt renders a template and generates from it.
func (c *core) prompt(
	ctx context.Context,
	tmpl string,
	data any,
	tag generation.ContextTag,
	opts ...generation.RequestOption,
) (generation.Result, error) {
	text, err := renderPrompt(tmpl, data)
	if err != nil {
		return generation.Result{}, NewServiceError(c.name, tmpl, err)
	}
	return c.generate(ctx, text, tag, opts...)
}

// reply turns a gateway result into a Reply using fb for failures.
func (c *core) reply(ctx context.Context, res generation.Result, fb generation.Fallbacks) Reply {
	r := Reply{
		Text:      res.TextOr(fb),
		Degraded:  !res.OK(),
		ErrorKind: res.Kind(),
		Attempts:  res.Attempts,
	}
	r.HTML = c.html(ctx, r.Text)
	return r
}

func (c *core) html(ctx context.Context, text string) string {
	out, err := render.Markdown(text)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to render markdown", "error", err)
		return ""
	}
	return out
}

// apply runs fn through the ticket and counts dropped responses.
func (c *core) apply(store SessionStore, t session.Ticket, fn func(*session.Session)) (bool, error) {
	ok, err := store.Apply(t, fn)
	if err != nil {
		return false, err
	}
	if !ok {
		c.recorder.StaleResponse(string(t.View))
	}
	return ok, nil
}

// fallbacks returns the medical fallbacks of lang with a custom empty-answer text.
func fallbacks(lang domain.Language, emptyEN, emptyVI string) generation.Fallbacks {
	return generation.FallbacksFor(lang.Code(), generation.PurposeMedical).WithEmpty(lang.Pick(emptyEN, emptyVI))
}
