package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/bionexus-api/internal/generation"
)

// MockGenerator implements generation.Generator for testing.
type MockGenerator struct {
	// GenerateFn overrides every other behavior when set.
	GenerateFn func(ctx context.Context, req generation.PromptRequest) generation.Result

	// Results are returned in order, one per call. When exhausted, Result is
	// returned.
	Results []generation.Result

	// Result is the default response.
	Result generation.Result

	mu       sync.Mutex
	requests []generation.PromptRequest
}

// Generate implements generation.Generator.
func (m *MockGenerator) Generate(ctx context.Context, req generation.PromptRequest) generation.Result {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	var queued *generation.Result
	if len(m.Results) > 0 {
		r := m.Results[0]
		m.Results = m.Results[1:]
		queued = &r
	}
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, req)
	}
	if queued != nil {
		return *queued
	}
	return m.Result
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns the requests seen so far, in call order.
func (m *MockGenerator) Requests() []generation.PromptRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]generation.PromptRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request. ok is false before any call.
func (m *MockGenerator) LastRequest() (req generation.PromptRequest, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return generation.PromptRequest{}, false
	}
	return m.requests[len(m.requests)-1], true
}

// Reset clears the call tracking state.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// TextResult is a successful result carrying text.
func TextResult(text string) generation.Result {
	return generation.Result{Text: text, Attempts: 1}
}

// FailedResult is a failed result wrapping err, as the gateway reports it.
func FailedResult(err error) generation.Result {
	return generation.Result{Err: err, Attempts: 1}
}

// NewMockGeneratorWithText creates a MockGenerator that always answers text.
func NewMockGeneratorWithText(text string) *MockGenerator {
	return &MockGenerator{Result: TextResult(text)}
}

// NewMockGeneratorWithResults creates a MockGenerator that answers results in order.
func NewMockGeneratorWithResults(results ...generation.Result) *MockGenerator {
	return &MockGenerator{Results: results}
}

// MockGeneratorWithQuotaExhausted simulates capacity exhaustion after retries.
func MockGeneratorWithQuotaExhausted() *MockGenerator {
	return &MockGenerator{Result: generation.Result{Err: generation.ErrCapacityExhausted, Attempts: 3}}
}

// MockGeneratorThatFails simulates a non-retryable failure.
func MockGeneratorThatFails() *MockGenerator {
	return &MockGenerator{Result: FailedResult(generation.ErrRequestFailed)}
}

// MockGeneratorWithContentBlocked simulates a safety refusal.
func MockGeneratorWithContentBlocked() *MockGenerator {
	return &MockGenerator{Result: FailedResult(generation.ErrContentBlocked)}
}
