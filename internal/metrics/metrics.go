package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tasks_claimed_count",
	})
	TaskErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "task_errors_count",
	}, []string{"task_type"})
	QueueTasks = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "queue_tasks",
	}, []string{"status"})

	RendersRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "renders_running",
	})
	RenderSpentSeconds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "render_spent_seconds",
	})

	UploadsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "uploads_running",
	})
	UploadedSizeMB = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uploaded_size_mb",
	})

	HTTPAPIRequests = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_api_requests",
			Help:    "Method call latency distributions",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.4, 1, 2, 5, 10},
		},
		[]string{"status_code"},
	)
)
