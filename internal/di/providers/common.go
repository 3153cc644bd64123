package providers

import (
	"sync"
	"time"
)

// shutdownTimeout bounds how long a background loop gets to drain on shutdown.
const shutdownTimeout = 10 * time.Second

// waitTimeout waits for wg, giving up after d. It reports whether wg finished.
func waitTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
