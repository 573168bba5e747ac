package testutil

import (
	"bytes"
	"sync"
	"time"
)

// MockClock implements the timer Clock interface for testing with controllable time.
// Set can move time backwards to simulate a clock rollover.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock creates a new MockClock starting at the given time.
// If zero time is provided, uses current time.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Now()
	}
	return &MockClock{now: start}
}

// Now returns the current mock time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the mock clock by the given duration; negative values rewind it.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set sets the mock clock to a specific time.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// MockWriter is a goroutine-safe in-memory writer, used as a log sink in tests.
type MockWriter struct {
	buf        *bytes.Buffer
	mu         sync.Mutex
	writeCount int
	syncCount  int
}

// NewMockWriter creates a new MockWriter.
func NewMockWriter() *MockWriter {
	return &MockWriter{
		buf: &bytes.Buffer{},
	}
}

// Write implements io.Writer.
func (mw *MockWriter) Write(p []byte) (int, error) {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	mw.writeCount++
	return mw.buf.Write(p)
}

// Sync implements zapcore.WriteSyncer.
func (mw *MockWriter) Sync() error {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.syncCount++
	return nil
}

// String returns the current buffer contents.
func (mw *MockWriter) String() string {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.buf.String()
}

// WriteCount returns the number of Write calls.
func (mw *MockWriter) WriteCount() int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.writeCount
}

// SyncCount returns the number of Sync calls.
func (mw *MockWriter) SyncCount() int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.syncCount
}

// Reset clears the buffer and resets counters.
func (mw *MockWriter) Reset() {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.buf.Reset()
	mw.writeCount = 0
	mw.syncCount = 0
}
