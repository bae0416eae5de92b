package lifecycle

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
)

// exit is swapped in tests.
var exit = os.Exit

// Go runs fn on its own goroutine and delivers its result on the returned
// channel. A panic is logged and delivered as an error; it never takes the
// process down.
func Go(logger *slog.Logger, name string, fn func() error) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("background task panicked",
					slog.String("task", name),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())))
				done <- fmt.Errorf("%s: panic: %v", name, rec)
			}
		}()
		done <- fn()
	}()
	return done
}

// Trap must be deferred directly in main. An uncaught panic is logged and
// the process exits with status 1 without further cleanup.
func Trap(logger *slog.Logger) {
	rec := recover()
	if rec == nil {
		return
	}
	logger.Error("uncaught fault, exiting",
		slog.Any("panic", rec),
		slog.String("stack", string(debug.Stack())))
	exit(1)
}
