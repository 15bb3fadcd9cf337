package generation_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/bionexus-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedModel returns the scripted outcomes in order and repeats the last one.
type scriptedModel struct {
	mu       sync.Mutex
	outcomes []outcome
	calls    int
}

type outcome struct {
	text string
	err  error
}

func (m *scriptedModel) Generate(_ context.Context, _ generation.PromptRequest) (generation.ModelResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.calls
	if idx >= len(m.outcomes) {
		idx = len(m.outcomes) - 1
	}
	m.calls++
	o := m.outcomes[idx]
	if o.err != nil {
		return generation.ModelResponse{}, o.err
	}
	return generation.ModelResponse{Text: o.text}, nil
}

// waitRecorder records backoff delays instead of sleeping.
type waitRecorder struct {
	delays []time.Duration
}

func (w *waitRecorder) wait(_ context.Context, d time.Duration) error {
	w.delays = append(w.delays, d)
	return nil
}

func quotaErr() error {
	return &generation.RemoteError{
		Code:   http.StatusTooManyRequests,
		Status: "RESOURCE_EXHAUSTED",
		Err:    errors.New("quota exceeded for model"),
	}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newGateway(t *testing.T, model generation.Model, policy generation.RetryPolicy, rec *waitRecorder) *generation.Gateway {
	t.Helper()
	gw, err := generation.NewGateway(model, policy, newTestLogger(), generation.WithWait(rec.wait))
	require.NoError(t, err)
	return gw
}

func mustRequest(t *testing.T, text string, tag generation.ContextTag) generation.PromptRequest {
	t.Helper()
	req, err := generation.NewPromptRequest(text, tag)
	require.NoError(t, err)
	return req
}

func TestGateway_RetriesCapacityWithIncreasingDelay(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{outcomes: []outcome{
		{err: quotaErr()},
		{err: quotaErr()},
		{text: "ADH inserts aquaporin-2 channels."},
	}}
	rec := &waitRecorder{}
	gw := newGateway(t, model, generation.DefaultRetryPolicy(), rec)

	res := gw.Generate(context.Background(), mustRequest(t, "Explain ADH mechanism", generation.ContextStudent))

	require.True(t, res.OK())
	assert.Equal(t, "ADH inserts aquaporin-2 channels.", res.Text)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
}

func TestGateway_NonCapacityErrorFailsImmediately(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{outcomes: []outcome{
		{err: &generation.RemoteError{Code: http.StatusInternalServerError, Err: errors.New("backend error")}},
	}}
	rec := &waitRecorder{}
	gw := newGateway(t, model, generation.DefaultRetryPolicy(), rec)

	res := gw.Generate(context.Background(), mustRequest(t, "hello", generation.ContextGeneral))

	assert.False(t, res.OK())
	assert.Equal(t, 1, model.calls)
	assert.Empty(t, rec.delays)
	assert.ErrorIs(t, res.Err, generation.ErrRequestFailed)
	assert.Equal(t, generation.KindRequestFailed, res.Kind())

	fb := generation.FallbacksFor("en", generation.PurposeMedical)
	assert.Equal(t, fb.Generic, res.TextOr(fb))
}

func TestGateway_CapacityExhaustedAfterAllAttempts(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{outcomes: []outcome{{err: errors.New("got HTTP 429 from upstream")}}}
	rec := &waitRecorder{}
	gw := newGateway(t, model, generation.DefaultRetryPolicy(), rec)

	res := gw.Generate(context.Background(), mustRequest(t, "hello", generation.ContextMedPro))

	assert.Equal(t, 3, model.calls, "no attempts beyond the budget")
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
	assert.ErrorIs(t, res.Err, generation.ErrCapacityExhausted)
	assert.Equal(t, generation.KindCapacityExhausted, res.Kind())

	fb := generation.FallbacksFor("en", generation.PurposeMedical)
	assert.Equal(t, fb.Quota, res.TextOr(fb))
	assert.Contains(t, res.TextOr(fb), "Quota Exceeded")
}

func TestGateway_NetworkRetryIsConfigurable(t *testing.T) {
	t.Parallel()

	timeout := &generation.RemoteError{Err: context.DeadlineExceeded}

	tests := []struct {
		name          string
		retryable     func(error) bool
		expectedCalls int
		expectOK      bool
	}{
		{name: "capacity_only", retryable: generation.CapacityOnly, expectedCalls: 1, expectOK: false},
		{name: "capacity_and_network", retryable: generation.CapacityAndNetwork, expectedCalls: 2, expectOK: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			model := &scriptedModel{outcomes: []outcome{{err: timeout}, {text: "ok"}}}
			policy := generation.DefaultRetryPolicy()
			policy.Retryable = tc.retryable
			gw := newGateway(t, model, policy, &waitRecorder{})

			res := gw.Generate(context.Background(), mustRequest(t, "hello", generation.ContextGeneral))

			assert.Equal(t, tc.expectedCalls, model.calls)
			assert.Equal(t, tc.expectOK, res.OK())
		})
	}
}

func TestGateway_CancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{outcomes: []outcome{{err: quotaErr()}}}
	ctx, cancel := context.WithCancel(context.Background())
	gw, err := generation.NewGateway(model, generation.DefaultRetryPolicy(), newTestLogger(),
		generation.WithWait(func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		}))
	require.NoError(t, err)

	res := gw.Generate(ctx, mustRequest(t, "hello", generation.ContextGeneral))

	assert.Equal(t, 1, model.calls)
	assert.ErrorIs(t, res.Err, generation.ErrRequestFailed)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestGateway_EmptyAnswerUsesEmptyFallback(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{outcomes: []outcome{{text: ""}}}
	gw := newGateway(t, model, generation.DefaultRetryPolicy(), &waitRecorder{})

	res := gw.Generate(context.Background(), mustRequest(t, "hello", generation.ContextGeneral))

	require.True(t, res.OK())
	fb := generation.FallbacksFor("vi", generation.PurposeMedical).WithEmpty("Không thể tạo lộ trình.")
	assert.Equal(t, "Không thể tạo lộ trình.", res.TextOr(fb))
}

type countingObserver struct {
	attempts int
	retries  int
	finished []generation.FailureKind
}

func (o *countingObserver) AttemptStarted(generation.ContextTag, int) { o.attempts++ }
func (o *countingObserver) RetryScheduled(generation.ContextTag, generation.FailureKind, time.Duration) {
	o.retries++
}
func (o *countingObserver) CallFinished(_ generation.ContextTag, kind generation.FailureKind, _ int) {
	o.finished = append(o.finished, kind)
}

func TestGateway_NotifiesObserver(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{outcomes: []outcome{{err: quotaErr()}, {text: "done"}}}
	obs := &countingObserver{}
	rec := &waitRecorder{}
	gw, err := generation.NewGateway(model, generation.DefaultRetryPolicy(), newTestLogger(),
		generation.WithWait(rec.wait), generation.WithObserver(obs))
	require.NoError(t, err)

	gw.Generate(context.Background(), mustRequest(t, "hello", generation.ContextGeneral))

	assert.Equal(t, 2, obs.attempts)
	assert.Equal(t, 1, obs.retries)
	assert.Equal(t, []generation.FailureKind{generation.KindNone}, obs.finished)
}

func TestNewGateway_Validation(t *testing.T) {
	t.Parallel()

	_, err := generation.NewGateway(nil, generation.DefaultRetryPolicy(), newTestLogger())
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = generation.NewGateway(&scriptedModel{}, generation.DefaultRetryPolicy(), nil)
	assert.Error(t, err)

	gw, err := generation.NewGateway(&scriptedModel{}, generation.RetryPolicy{}, newTestLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, gw.Policy().MaxAttempts)
	assert.Equal(t, time.Second, gw.Policy().InitialDelay)
}
