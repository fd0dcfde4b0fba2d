package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Cavedragon13/ai-image-organizer/internal/config"
	"github.com/Cavedragon13/ai-image-organizer/internal/metrics"
	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
	"github.com/google/uuid"
)

// Stats is a point-in-time view of the worker pool.
type Stats struct {
	Workers       int   `json:"workers"`
	QueueDepth    int   `json:"queue_depth"`
	QueueCapacity int   `json:"queue_capacity"`
	Running       int   `json:"running"`
	Rejected      int64 `json:"rejected"`
}

// Manager accepts jobs and runs them on a fixed pool of workers fed by a
// bounded queue. Submissions beyond the queue capacity are rejected.
type Manager struct {
	registry *Registry
	pipeline *Pipeline
	workers  int
	queue    chan uuid.UUID

	mu     sync.Mutex // guards closed and sends on queue
	closed bool

	startOnce sync.Once
	wg        sync.WaitGroup
	running   atomic.Int32
	rejected  atomic.Int64
}

// NewManager creates a Manager. Call Start before submitting work.
func NewManager(pipeline *Pipeline, cfg config.JobsConfig) *Manager {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	size := cfg.QueueSize
	if size < 1 {
		size = 1
	}
	metrics.SetQueueCapacity(size)
	return &Manager{
		registry: NewRegistry(),
		pipeline: pipeline,
		workers:  workers,
		queue:    make(chan uuid.UUID, size),
	}
}

// Start launches the worker goroutines. It is safe to call more than once.
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		for i := 0; i < m.workers; i++ {
			m.wg.Add(1)
			go m.worker(i)
		}
		slog.Info("job workers started", "workers", m.workers, "queue_capacity", cap(m.queue))
	})
}

// Submit validates the request, registers a pending job and queues it. It
// returns without waiting for processing to begin.
func (m *Manager) Submit(ctx context.Context, inputFolder, outputFolder string, settings models.Settings) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	input, output, err := validateSubmission(inputFolder, outputFolder, settings)
	if err != nil {
		return uuid.Nil, err
	}

	job := &models.Job{
		ID:           uuid.New(),
		Status:       models.JobStatusPending,
		InputFolder:  input,
		OutputFolder: output,
		Settings:     settings,
		CreatedAt:    time.Now().UTC(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return uuid.Nil, ErrShuttingDown
	}

	m.registry.add(job)
	select {
	case m.queue <- job.ID:
	default:
		m.registry.remove(job.ID)
		m.rejected.Add(1)
		metrics.IncreaseJobsRejected()
		slog.Warn("job rejected, queue full", "queue_capacity", cap(m.queue))
		return uuid.Nil, ErrQueueFull
	}
	metrics.SetQueueDepth(len(m.queue))

	slog.Info("job submitted", "job_id", job.ID, "input_folder", input, "output_folder", output)
	return job.ID, nil
}

func (m *Manager) Get(id uuid.UUID) (models.Job, error) {
	return m.registry.Get(id)
}

func (m *Manager) List() []models.Job {
	return m.registry.List()
}

func (m *Manager) Stats() Stats {
	return Stats{
		Workers:       m.workers,
		QueueDepth:    len(m.queue),
		QueueCapacity: cap(m.queue),
		Running:       int(m.running.Load()),
		Rejected:      m.rejected.Load(),
	}
}

// Shutdown stops accepting jobs and waits for queued and running jobs to
// finish, or for ctx to expire.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.queue)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("job workers stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for job workers: %w", ctx.Err())
	}
}

func (m *Manager) worker(n int) {
	defer m.wg.Done()
	for id := range m.queue {
		metrics.SetQueueDepth(len(m.queue))
		metrics.SetJobsRunning(int(m.running.Add(1)))
		m.run(id)
		metrics.SetJobsRunning(int(m.running.Add(-1)))
	}
	slog.Debug("job worker exiting", "worker", n)
}

// run drives one job to a terminal state. Panics are recovered and fail
// the job.
func (m *Manager) run(id uuid.UUID) {
	logger := slog.With("job_id", id)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in job worker", "error", r)
			m.fail(id, phaseError(PhaseWorker, KindInternal, fmt.Errorf("panic: %v", r)))
		}
	}()

	started := time.Now().UTC()
	job, err := m.registry.update(id, func(j *models.Job) {
		j.Status = models.JobStatusRunning
		j.StartedAt = &started
		j.CurrentActivity = "Discovering images..."
	})
	if err != nil {
		logger.Error("job vanished before start", "error", err)
		return
	}
	logger.Info("job started")

	ctx := context.Background()
	results, err := m.pipeline.Run(ctx, job, func(fn func(*models.Job)) {
		if _, err := m.registry.update(id, fn); err != nil {
			logger.Warn("job update dropped", "error", err)
		}
	})
	if err != nil {
		m.fail(id, err)
		return
	}
	m.complete(id, results)
}

func (m *Manager) complete(id uuid.UUID, results *models.JobResults) {
	finished := time.Now().UTC()
	_, err := m.registry.update(id, func(j *models.Job) {
		j.Status = models.JobStatusCompleted
		j.Progress = 100
		j.CurrentActivity = activityComplete
		j.Results = results
		j.CompletedAt = &finished
	})
	if err != nil {
		slog.Error("completing job", "job_id", id, "error", err)
		return
	}
	metrics.IncreaseJobsFinished(string(models.JobStatusCompleted))
	metrics.AddGroupsCreated(results.GroupsCreated)
	slog.Info("job completed", "job_id", id, "images", results.TotalImages, "groups", results.GroupsCreated)
}

func (m *Manager) fail(id uuid.UUID, cause error) {
	finished := time.Now().UTC()
	kind := kindOf(cause)
	_, err := m.registry.update(id, func(j *models.Job) {
		j.Status = models.JobStatusFailed
		j.Error = cause.Error()
		j.ErrorKind = string(kind)
		j.CompletedAt = &finished
	})
	if err != nil {
		slog.Error("failing job", "job_id", id, "error", err)
		return
	}
	metrics.IncreaseJobsFinished(string(models.JobStatusFailed))
	slog.Error("job failed", "job_id", id, "kind", kind, "error", cause)
}

func validateSubmission(inputFolder, outputFolder string, settings models.Settings) (string, string, error) {
	if inputFolder == "" {
		return "", "", fmt.Errorf("%w: input_folder is required", ErrInvalidInput)
	}
	if outputFolder == "" {
		return "", "", fmt.Errorf("%w: output_folder is required", ErrInvalidInput)
	}
	if err := settings.Validate(); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	input, err := filepath.Abs(inputFolder)
	if err != nil {
		return "", "", fmt.Errorf("%w: input_folder: %v", ErrInvalidInput, err)
	}
	output, err := filepath.Abs(outputFolder)
	if err != nil {
		return "", "", fmt.Errorf("%w: output_folder: %v", ErrInvalidInput, err)
	}

	info, err := os.Stat(input)
	if err != nil {
		return "", "", fmt.Errorf("%w: input folder %s does not exist", ErrInvalidInput, input)
	}
	if !info.IsDir() {
		return "", "", fmt.Errorf("%w: input folder %s is not a directory", ErrInvalidInput, input)
	}
	return input, output, nil
}
