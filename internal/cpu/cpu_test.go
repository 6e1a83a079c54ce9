package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoreFor(t *testing.T) {
	assert.Equal(t, 0, coreFor(0, 4))
	assert.Equal(t, 0, coreFor(4, 4))
	assert.Equal(t, 1, coreFor(5, 4))
	assert.Equal(t, 1, coreFor(-1, 4))
	assert.Equal(t, 0, coreFor(7, 1))
}

func TestLockThread(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		release := LockThread()
		release()
	}()
	<-done
}

func TestPin(t *testing.T) {
	errCh := make(chan error, 1)
	go func() {
		release, err := Pin(0)
		if err == nil {
			release()
		}
		errCh <- err
	}()
	if err := <-errCh; err != nil {
		t.Skipf("cpu affinity unavailable: %v", err)
	}
}
