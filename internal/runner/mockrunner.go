package runner

import (
	"context"
	"sync"
)

// MockLauncher records launches instead of starting processes.
type MockLauncher struct {
	mu       sync.Mutex
	Launches []MockLaunch
	Err      error
	PID      int
}

type MockLaunch struct {
	Name string
	Args []string
}

func NewMockLauncher() *MockLauncher {
	return &MockLauncher{PID: 4242}
}

func (m *MockLauncher) Start(ctx context.Context, name string, args ...string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Launches = append(m.Launches, MockLaunch{Name: name, Args: append([]string(nil), args...)})
	if m.Err != nil {
		return 0, m.Err
	}
	return m.PID, nil
}

// Count returns how many launches were attempted.
func (m *MockLauncher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Launches)
}

// VerifyLaunch reports whether name was started with exactly args.
func (m *MockLauncher) VerifyLaunch(name string, args ...string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.Launches {
		if l.Name == name && argsEqual(l.Args, args) {
			return true
		}
	}
	return false
}

func argsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
