package logging

import (
	"fmt"
	"strings"
	"testing"
)

// TestLogger writes through testing.T so messages show up in test output.
type TestLogger struct {
	t testing.TB
}

var _ Logger = (*TestLogger)(nil)

// NewTest returns a logger bound to t.
func NewTest(t testing.TB) *TestLogger {
	return &TestLogger{t: t}
}

func (l *TestLogger) Debug(msg string, kv ...any) { l.t.Logf("DEBUG: %s %s", msg, formatKeyValues(kv)) }
func (l *TestLogger) Info(msg string, kv ...any)  { l.t.Logf("INFO: %s %s", msg, formatKeyValues(kv)) }
func (l *TestLogger) Warn(msg string, kv ...any)  { l.t.Logf("WARN: %s %s", msg, formatKeyValues(kv)) }
func (l *TestLogger) Error(msg string, kv ...any) { l.t.Logf("ERROR: %s %s", msg, formatKeyValues(kv)) }

func formatKeyValues(kv []any) string {
	if len(kv) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i+1 < len(kv) {
			fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, "%v=<missing>", kv[i])
		}
	}
	return b.String()
}
