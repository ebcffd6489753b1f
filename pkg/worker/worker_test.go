package worker

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type countingWorkload struct {
	processed int64
	shutdowns int64
	err       error
}

func (w *countingWorkload) Process() error {
	atomic.AddInt64(&w.processed, 1)
	return w.err
}

func (w *countingWorkload) Shutdown() {
	atomic.AddInt64(&w.shutdowns, 1)
}

func TestTicker(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := &countingWorkload{}
	ticker := NewTicker(w, time.Millisecond)
	ticker.Start()

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&w.processed) >= 5
	}, time.Second, time.Millisecond)

	ticker.Stop()
	time.Sleep(10 * time.Millisecond)
	require.Zero(t, atomic.LoadInt64(&w.shutdowns))
}

func TestTickerFatalError(t *testing.T) {
	w := &countingWorkload{err: FatalError}
	ticker := NewTicker(w, time.Millisecond)
	ticker.Start()

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&w.shutdowns) >= 1
	}, time.Second, time.Millisecond)
	require.EqualValues(t, 1, atomic.LoadInt64(&w.processed))
}
