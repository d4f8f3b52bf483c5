package capability

import (
	"log/slog"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// TraceFunc receives one event per dispatched capability call, naming the
// interface and the fully qualified method. Implementations must be safe for
// concurrent use and must not block.
type TraceFunc func(iface, method string)

var traceState struct {
	mu       sync.RWMutex
	patterns []string
}

// SetTracePatterns installs glob patterns (doublestar syntax, matched
// against "<interface>/<method>") that the default dispatch trace is limited
// to. With no patterns set, every dispatch is traced.
func SetTracePatterns(patterns ...string) {
	traceState.mu.Lock()
	defer traceState.mu.Unlock()
	traceState.patterns = patterns
}

func traceMatches(iface, method string) bool {
	traceState.mu.RLock()
	patterns := traceState.patterns
	traceState.mu.RUnlock()

	if len(patterns) == 0 {
		return true
	}
	subject := iface + "/" + method
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, subject); err == nil && ok {
			return true
		}
	}
	return false
}

// traceDispatch is the default trace hook: a debug-level slog event, purely
// observational.
func traceDispatch(iface, method string) {
	if !traceMatches(iface, method) {
		return
	}
	slog.Debug("dispatch capability call", "interface", iface, "method", method)
}
