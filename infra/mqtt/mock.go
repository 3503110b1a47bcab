package mqtt

import (
	"context"
	"sync"

	"github.com/smartcommute/smartcommute/core/advisor/logging"
	"github.com/smartcommute/smartcommute/core/notify"
)

// Notifier mirrors the core notify.Notifier interface.
type Notifier = notify.Notifier

// MockNotifier is a simple notifier used in tests.
type MockNotifier struct {
	mu      sync.Mutex
	records []logging.AdviceRecord
	// Err, when set, is returned by every PublishAdvice call.
	Err    error
	closed bool
}

// NewMockNotifier creates a new MockNotifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// PublishAdvice records the advice or returns the configured error.
func (m *MockNotifier) PublishAdvice(_ context.Context, rec logging.AdviceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.records = append(m.records, rec)
	return nil
}

// Published returns a copy of the records received so far.
func (m *MockNotifier) Published() []logging.AdviceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]logging.AdviceRecord, len(m.records))
	copy(out, m.records)
	return out
}

// Close marks the notifier closed.
func (m *MockNotifier) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockNotifier) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
