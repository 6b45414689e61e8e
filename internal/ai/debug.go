package ai

import "sync/atomic"

// debugEnabled gates per-frame debug logs of agents. Checking an atomic is
// cheaper than asking the slog handler on every frame.
var debugEnabled atomic.Bool

// EnableDebugLogging turns per-frame debug logs on or off. main sets it once
// from the configured log level.
func EnableDebugLogging(enabled bool) {
	debugEnabled.Store(enabled)
}

// IsDebugEnabled reports whether per-frame debug logs are on. Guard hot-path
// debug calls with it:
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("pursuit state changed", "from", from, "to", to)
//	}
func IsDebugEnabled() bool {
	return debugEnabled.Load()
}
