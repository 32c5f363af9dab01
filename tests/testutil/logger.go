package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/ssmrotate/internal/logging"
)

// TestLogger captures log output for validation in tests.
//
// The embedded *logging.Logger is the real zap-backed logger writing to an
// in-memory buffer, so tests can verify that secrets are redacted and that
// expected messages are produced.
//
// Example usage:
//
//	logger := NewTestLogger(t, true)
//	handler, _ := rotation.NewParameterHandler(rotation.HandlerConfig{Logger: logger.Logger, ...})
//	logger.AssertNotContains(t, generatedValue)
type TestLogger struct {
	*logging.Logger
	buf *lockedBuffer
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// NewTestLogger creates a console logger without colour writing to memory
func NewTestLogger(t *testing.T, debug bool) *TestLogger {
	t.Helper()

	buf := &lockedBuffer{}
	return &TestLogger{
		Logger: logging.NewWithOptions(logging.Options{
			Debug:   debug,
			NoColor: true,
			Format:  logging.FormatConsole,
			Output:  buf,
		}),
		buf: buf,
	}
}

// Output returns everything logged so far
func (l *TestLogger) Output() string {
	return l.buf.String()
}

// AssertContains fails the test if the output lacks substr
func (l *TestLogger) AssertContains(t *testing.T, substr string) {
	t.Helper()
	assert.Contains(t, l.Output(), substr)
}

// AssertNotContains fails the test if substr was logged
func (l *TestLogger) AssertNotContains(t *testing.T, substr string) {
	t.Helper()
	assert.NotContains(t, l.Output(), substr)
}

// Lines returns the non-empty log lines
func (l *TestLogger) Lines() []string {
	var lines []string
	for _, line := range strings.Split(l.Output(), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
