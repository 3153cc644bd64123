package providers

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitTimeout(t *testing.T) {
	var wg sync.WaitGroup
	assert.True(t, waitTimeout(&wg, time.Second), "an idle group finishes at once")

	release := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-release
	}()
	assert.False(t, waitTimeout(&wg, 20*time.Millisecond))

	close(release)
	assert.True(t, waitTimeout(&wg, time.Second))
}
