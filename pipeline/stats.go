package pipeline

import (
	"context"
	"time"

	"github.com/atomicleads/videoworker/internal/metrics"
	"github.com/atomicleads/videoworker/pkg/logging"
	"github.com/atomicleads/videoworker/pkg/worker"
	"github.com/atomicleads/videoworker/tasks"
)

var statuses = []string{
	tasks.StatusPending,
	tasks.StatusInProgress,
	tasks.StatusCompleted,
	tasks.StatusFailed,
}

// QueueStats periodically exports per-status task counts as gauges.
type QueueStats struct {
	store *tasks.Store
	log   logging.KVLogger
}

// StartQueueStats spawns a ticker refreshing queue-depth metrics.
func StartQueueStats(store *tasks.Store, interval time.Duration, log logging.KVLogger) *worker.Ticker {
	s := &QueueStats{store: store, log: log}
	t := worker.NewTicker(s, interval)
	t.Start()
	return t
}

func (s *QueueStats) Process() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, status := range statuses {
		ts, err := s.store.List(ctx, tasks.Filter{Status: status})
		if err != nil {
			return err
		}
		s.log.Debug("queue depth", "status", status, "tasks", len(ts))
		metrics.QueueTasks.WithLabelValues(status).Set(float64(len(ts)))
	}
	return nil
}

func (s *QueueStats) Shutdown() {
	s.log.Info("queue stats stopped")
}
