package narrator

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider generates deterministic offline narrations for tests
// and for running the TUI without an API key.
type MockProvider struct {
	mu    sync.Mutex
	calls int

	// Err, when set, makes every call fail. Used to exercise the
	// fallback path.
	Err error
}

// NewMockProvider creates a clean mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Narrate returns a canned narration derived from the prompt length,
// or the injected error.
func (m *MockProvider) Narrate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	err := m.Err
	m.mu.Unlock()

	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("The search expands outward, level by level. (offline narration #%d)", call), nil
}

// Calls returns how many times Narrate was invoked.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
