package quit

import (
	"bytes"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestInstallExitsOnSignal(t *testing.T) {
	var out syncBuffer
	codes := make(chan int, 1)

	// SIGUSR1 stands in for SIGQUIT, which would dump goroutines if the
	// handler were not yet registered.
	stop := install(&out, func(code int) { codes <- code }, syscall.SIGUSR1)
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

	select {
	case code := <-codes:
		assert.Equal(t, 1, code)
	case <-time.After(5 * time.Second):
		t.Fatal("exit was not called")
	}
	assert.Contains(t, out.String(), Message)
}

func TestStopIsIdempotent(t *testing.T) {
	stop := install(&syncBuffer{}, func(int) { t.Error("exit called") }, syscall.SIGUSR2)
	stop()
	stop()
}
