package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/bionexus-api/internal/generation"
)

// ModelStep is one scripted attempt of a MockModel.
type ModelStep struct {
	Response generation.ModelResponse
	Err      error
}

// MockModel implements generation.Model with scripted attempts. After the
// script runs out it repeats the last step.
type MockModel struct {
	Steps []ModelStep

	mu    sync.Mutex
	calls int
}

// Generate implements generation.Model.
func (m *MockModel) Generate(ctx context.Context, req generation.PromptRequest) (generation.ModelResponse, error) {
	m.mu.Lock()
	i := m.calls
	m.calls++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return generation.ModelResponse{}, err
	}
	if len(m.Steps) == 0 {
		return generation.ModelResponse{}, nil
	}
	if i >= len(m.Steps) {
		i = len(m.Steps) - 1
	}
	return m.Steps[i].Response, m.Steps[i].Err
}

// Calls returns the number of attempts made.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
