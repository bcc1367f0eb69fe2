package mock

import (
	"context"
	"sync"

	"github.com/poiesic/larder/ai"
	"github.com/poiesic/larder/core"
)

// MockScorer is a test double for ai.QualityScorer.
type MockScorer struct {
	// ScoreFunc is called by Score if set. Otherwise Score returns Default.
	ScoreFunc func(ctx context.Context, req ai.ScoreRequest) (core.QualityScore, error)

	// Default is returned when ScoreFunc is nil.
	Default core.QualityScore

	mu        sync.Mutex
	callCount int
	names     []string
}

// NewMockScorer returns a scorer that rates everything 4.0.
func NewMockScorer() *MockScorer {
	return &MockScorer{Default: core.QualityScore{Rating: 4.0, Reasoning: "mock rating"}}
}

// Score records the request and returns ScoreFunc's result or Default.
func (m *MockScorer) Score(ctx context.Context, req ai.ScoreRequest) (core.QualityScore, error) {
	m.mu.Lock()
	m.callCount++
	m.names = append(m.names, req.Name)
	m.mu.Unlock()

	if m.ScoreFunc != nil {
		return m.ScoreFunc(ctx, req)
	}
	return m.Default, nil
}

// CallCount returns the number of Score calls.
func (m *MockScorer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Names lists the scored recipe names in call order.
func (m *MockScorer) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Reset clears recorded calls and injected behavior.
func (m *MockScorer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.names = nil
	m.ScoreFunc = nil
}
