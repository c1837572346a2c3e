// Package txlog provides the engine's single logging sink: every
// thread — orchestrator, serial drain, control plane — logs through
// the one *log.Logger this package hands out, rather than printing
// to the stream directly from each goroutine.
package txlog

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

var (
	once      sync.Once
	sink      *log.Logger
	tsPattern string
)

// Init configures the process-wide sink's level and records an
// optional strftime timestamp pattern for FormatTimestamp. The sink's
// own log-line timestamps use the logger's default time format, not
// this pattern. Safe to call at most once per process, before any
// component logs; later calls are no-ops.
func Init(level log.Level, timestampFormat string) {
	once.Do(func() {
		sink = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Level:           level,
		})
		tsPattern = timestampFormat
	})
}

// Default returns the process-wide logger, initialising it with
// sensible defaults (Info level, no custom timestamp pattern) if Init
// was never called — a component reachable from tests shouldn't have
// to care whether cmd/txengine has run yet.
func Default() *log.Logger {
	if sink == nil {
		Init(log.InfoLevel, "")
	}
	return sink
}

// FormatTimestamp renders t per the configured strftime pattern, or
// RFC3339 if none was set or the pattern fails to format.
func FormatTimestamp(t time.Time) string {
	if tsPattern == "" {
		return t.Format(time.RFC3339)
	}
	formatted, err := strftime.Format(tsPattern, t)
	if err != nil {
		return t.Format(time.RFC3339)
	}
	return formatted
}
