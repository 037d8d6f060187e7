// Package quit provides the operator's "quit now" escape hatch.
package quit

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Message is written to the error stream when the quit signal arrives.
const Message = "Quit signal sent - exiting immediately"

// Install makes SIGQUIT terminate the process immediately: Message is
// written to stderr and exit is called with status 1.
//
// This is an abrupt exit, not a graceful cancellation. Deferred
// functions do not run, in-flight installs are killed with the process
// and no summary, metrics or notifications are produced. Callers that
// need an orderly shutdown must use context cancellation instead.
//
// exit is normally os.Exit. The returned stop function removes the
// handler.
func Install(stderr io.Writer, exit func(int)) (stop func()) {
	return install(stderr, exit, syscall.SIGQUIT)
}

func install(stderr io.Writer, exit func(int), sig os.Signal) func() {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, sig)

	go func() {
		select {
		case <-ch:
			_, _ = fmt.Fprintln(stderr, Message)
			exit(1)
		case <-done:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}
