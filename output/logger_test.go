package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerVerbosityGating(t *testing.T) {
	tests := []struct {
		name        string
		verbosity   VerbosityLevel
		wantStat    bool
		wantProgres bool
	}{
		{"quiet suppresses progress and statistics", VerbosityQuiet, false, false},
		{"default shows progress but not statistics", VerbosityDefault, false, true},
		{"verbose shows both", VerbosityVerbose, true, true},
		{"debug shows both", VerbosityDebug, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLoggerWithWriter(tt.verbosity, &buf)
			l.Progress("resolving %s", "myapp.utils")
			l.Statistic("module registry: %d files", 3)

			out := buf.String()
			assert.Equal(t, tt.wantProgres, strings.Contains(out, "resolving myapp.utils"))
			assert.Equal(t, tt.wantStat, strings.Contains(out, "module registry: 3 files"))
		})
	}
}

func TestLoggerWarningAndErrorAlwaysPrint(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(VerbosityQuiet, &buf)
	l.Warning("recursive import: %s", "a")
	l.Error("scrape failed: %s", "b")

	out := buf.String()
	assert.Contains(t, out, "warning: recursive import: a")
	assert.Contains(t, out, "error: scrape failed: b")
}

func TestLoggerTiming(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(VerbosityVerbose, &buf)
	stop := l.StartTiming("resolve")
	stop()

	require.Contains(t, l.timings, "resolve")
	assert.GreaterOrEqual(t, l.GetTiming("resolve"), time.Duration(0))
}
