package inpaint

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called while a reconstruction is running elsewhere.
var loggerPtr atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.Nop()
	loggerPtr.Store(&l)
}

// SetLogger configures the logger used by the solver.
// By default inpaint produces no log output.
//
// Levels used:
//   - Debug: per-iteration residuals (first, last and every Options.LogEvery)
//   - Info: reconstruction summary
//
// Pass zerolog.Nop() to restore the silent default.
func SetLogger(l zerolog.Logger) {
	loggerPtr.Store(&l)
}

// Logger returns the current logger.
func Logger() *zerolog.Logger {
	return loggerPtr.Load()
}
