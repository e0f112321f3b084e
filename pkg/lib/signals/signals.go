// Package signals binds the lifetime of a command to the interrupt and
// termination signals.
package signals

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

	signalCtx context.Context
	cancel    context.CancelFunc
	once      sync.Once
)

// Context returns a Context canceled on SIGTERM or SIGINT. A search in
// progress stops after the evaluation it is running. If a second signal
// is caught, the program exits with code 1.
func Context() context.Context {
	once.Do(func() {
		c := make(chan os.Signal, 2)
		signal.Notify(c, shutdownSignals...)
		signalCtx, cancel = context.WithCancel(context.Background())
		go func() {
			<-c
			cancel()
			<-c
			os.Exit(1) // second signal. Exit directly.
		}()
	})

	return signalCtx
}
