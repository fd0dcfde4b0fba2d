package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	imageOrganizer = "image_organizer"

	// Job queue metrics
	jobQueueDepth     = "job_queue_depth"
	jobQueueCapacity  = "job_queue_capacity"
	jobsRejectedTotal = "jobs_rejected_total"
	jobsRunning       = "jobs_running"
	jobsFinishedTotal = "jobs_finished_total"

	// Pipeline metrics
	imagesDescribedTotal = "images_described_total"
	imagesPlacedTotal    = "images_placed_total"
	groupsCreatedTotal   = "groups_created_total"

	// Labels
	jobStatusLabel      = "status"
	describeResultLabel = "result"
)

/**
* Metrics definition
**/
var jobQueueDepthMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: imageOrganizer,
		Name:      jobQueueDepth,
		Help:      "number of jobs waiting for a worker",
	},
)

var jobQueueCapacityMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: imageOrganizer,
		Name:      jobQueueCapacity,
		Help:      "maximum number of jobs the queue can hold",
	},
)

var jobsRejectedTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: imageOrganizer,
		Name:      jobsRejectedTotal,
		Help:      "number of submissions rejected because the queue was full",
	},
)

var jobsRunningMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: imageOrganizer,
		Name:      jobsRunning,
		Help:      "number of jobs currently held by a worker",
	},
)

var jobsFinishedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: imageOrganizer,
		Name:      jobsFinishedTotal,
		Help:      "number of jobs that reached a terminal state",
	},
	[]string{jobStatusLabel},
)

var imagesDescribedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: imageOrganizer,
		Name:      imagesDescribedTotal,
		Help:      "number of images sent to the captioning model",
	},
	[]string{describeResultLabel},
)

var imagesPlacedTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: imageOrganizer,
		Name:      imagesPlacedTotal,
		Help:      "number of files written into output folders",
	},
)

var groupsCreatedTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: imageOrganizer,
		Name:      groupsCreatedTotal,
		Help:      "number of groups produced by completed jobs",
	},
)

func SetQueueDepth(n int) {
	jobQueueDepthMetric.Set(float64(n))
}

func SetQueueCapacity(n int) {
	jobQueueCapacityMetric.Set(float64(n))
}

func IncreaseJobsRejected() {
	jobsRejectedTotalMetric.Inc()
}

func SetJobsRunning(n int) {
	jobsRunningMetric.Set(float64(n))
}

func IncreaseJobsFinished(status string) {
	labels := prometheus.Labels{
		jobStatusLabel: status,
	}
	jobsFinishedTotalMetric.With(labels).Inc()
}

// IncreaseImagesDescribed counts one captioning call; result is "ok" or "fallback".
func IncreaseImagesDescribed(result string) {
	labels := prometheus.Labels{
		describeResultLabel: result,
	}
	imagesDescribedTotalMetric.With(labels).Inc()
}

func IncreaseImagesPlaced() {
	imagesPlacedTotalMetric.Inc()
}

func AddGroupsCreated(n int) {
	groupsCreatedTotalMetric.Add(float64(n))
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(jobQueueDepthMetric)
	prometheus.MustRegister(jobQueueCapacityMetric)
	prometheus.MustRegister(jobsRejectedTotalMetric)
	prometheus.MustRegister(jobsRunningMetric)
	prometheus.MustRegister(jobsFinishedTotalMetric)
	prometheus.MustRegister(imagesDescribedTotalMetric)
	prometheus.MustRegister(imagesPlacedTotalMetric)
	prometheus.MustRegister(groupsCreatedTotalMetric)
}
