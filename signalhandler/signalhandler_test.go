package signalhandler

import (
	"testing"
)

func TestStopWithoutSignal(t *testing.T) {
	called := false
	stop := SetupHandler(func() { called = true })
	stop()
	if called {
		t.Fatal("cleanup ran without a signal")
	}
}
