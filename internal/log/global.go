package log

import "sync"

// The process-wide logger is installed once at startup from loaded
// config; the mutex only guards the lazy fallback used before then.
var (
	global   *Logger
	globalMu sync.Mutex
)

// SetDefaultLogger installs logger as the process-wide default
func SetDefaultLogger(logger *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = logger
}

// DefaultLogger returns the process-wide logger, creating a quiet
// stderr logger when none has been installed yet.
func DefaultLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = Default()
	}
	return global
}
