package pipeline

import (
	"context"
	"math/rand"
	"time"

	"github.com/atomicleads/videoworker/internal/metrics"
	"github.com/atomicleads/videoworker/tasks"

	"github.com/oklog/ulid/v2"
)

// DefaultPollInterval is the idle sleep between polls when the queue is empty.
const DefaultPollInterval = 60 * time.Second

// Worker repeatedly claims one task and runs it through the state machine.
// Any number of instances may run against the same store; they coordinate
// only through the claim protocol.
type Worker struct {
	pipeline     *Pipeline
	store        *tasks.Store
	instanceID   string
	pollInterval time.Duration
	stuckTimeout time.Duration
}

func NewWorker(p *Pipeline, pollInterval, stuckTimeout time.Duration) *Worker {
	if pollInterval == 0 {
		pollInterval = DefaultPollInterval
	}
	if stuckTimeout == 0 {
		stuckTimeout = tasks.DefaultStuckTimeout
	}
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return &Worker{
		pipeline:     p,
		store:        p.store,
		instanceID:   ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String(),
		pollInterval: pollInterval,
		stuckTimeout: stuckTimeout,
	}
}

func (w *Worker) InstanceID() string {
	return w.instanceID
}

// Run polls until ctx is done. A claim failure is "no work this cycle",
// a handler failure is recorded on the task; neither stops the loop.
func (w *Worker) Run(ctx context.Context) {
	ll := logger.With("instance_id", w.instanceID)
	ll.Infow("worker started", "poll_interval", w.pollInterval, "stuck_timeout", w.stuckTimeout)

	for {
		if ctx.Err() != nil {
			ll.Infow("worker stopped")
			return
		}
		if !w.Cycle(ctx) {
			select {
			case <-ctx.Done():
				ll.Infow("worker stopped")
				return
			case <-time.After(w.pollInterval):
			}
		}
	}
}

// Cycle claims and processes at most one task, reporting whether there was one.
func (w *Worker) Cycle(ctx context.Context) bool {
	ll := logger.With("instance_id", w.instanceID)

	t, err := w.store.Claim(ctx, tasks.ClaimParams{
		InstanceID:   w.instanceID,
		StuckTimeout: w.stuckTimeout,
	})
	if err != nil {
		// transient store trouble must not kill the loop
		ll.Errorw("task claim failed", "err", err)
		return false
	}
	if t == nil {
		ll.Debugw("no pending tasks found, waiting")
		return false
	}
	metrics.TasksClaimed.Inc()

	// claimed copy may already be stale, dispatch off a fresh read
	fresh, err := w.store.Get(ctx, t.ID)
	if err != nil {
		ll.Errorw("re-fetching claimed task", "task_id", t.ID, "err", err)
		return true
	}
	if fresh == nil {
		ll.Warnw("task not found or already processed by another worker", "task_id", t.ID)
		return true
	}

	if err := w.pipeline.Dispatch(ctx, fresh, w.instanceID); err != nil {
		ll.Errorw("task processing failed", "task_id", fresh.ID, "task_type", fresh.Type, "err", err)
		metrics.TaskErrors.WithLabelValues(fresh.Type).Inc()
		// second line of defense, the handler normally marked it already
		w.pipeline.markFailed(ctx, fresh.ID, err.Error())
	}
	return true
}
