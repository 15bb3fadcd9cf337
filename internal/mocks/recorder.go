package mocks

import "sync"

// MockRecorder records parse failures and stale responses.
type MockRecorder struct {
	mu         sync.Mutex
	ParseKinds []string
	StaleViews []string
}

// ParseFailed records a structured parse failure.
func (m *MockRecorder) ParseFailed(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ParseKinds = append(m.ParseKinds, kind)
}

// StaleResponse records a dropped stale response.
func (m *MockRecorder) StaleResponse(view string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StaleViews = append(m.StaleViews, view)
}

// Parses returns a copy of the recorded parse failure kinds.
func (m *MockRecorder) Parses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ParseKinds...)
}

// Stale returns a copy of the recorded stale views.
func (m *MockRecorder) Stale() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.StaleViews...)
}
