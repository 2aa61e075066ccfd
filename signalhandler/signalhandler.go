package signalhandler

import (
	"os"
	"os/signal"
	"syscall"

	"dupfinder/logging"
)

// SetupHandler runs cleanup and exits when SIGINT or SIGTERM arrives.
// The returned stop function uninstalls the handler.
func SetupHandler(cleanup func()) (stop func()) {
	sigChan := make(chan os.Signal, 1)
	done := make(chan struct{})

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logging.LogWarning("Received %v, shutting down", sig)
			if cleanup != nil {
				cleanup()
			}
			os.Exit(1)
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}
