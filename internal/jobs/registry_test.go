package jobs

import (
	"testing"
	"time"

	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingJob(created time.Time) *models.Job {
	return &models.Job{
		ID:        uuid.New(),
		Status:    models.JobStatusPending,
		Settings:  models.DefaultSettings(),
		CreatedAt: created,
	}
}

func TestRegistry_GetNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_SnapshotsAreIsolated(t *testing.T) {
	r := NewRegistry()
	job := newPendingJob(time.Now())
	r.add(job)

	snap, err := r.Get(job.ID)
	require.NoError(t, err)
	snap.Status = models.JobStatusFailed
	snap.Progress = 42

	again, err := r.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, again.Status)
	assert.Equal(t, 0.0, again.Progress)
}

func TestRegistry_ProgressNeverDecreases(t *testing.T) {
	r := NewRegistry()
	job := newPendingJob(time.Now())
	r.add(job)

	_, err := r.update(job.ID, func(j *models.Job) { j.Progress = 40 })
	require.NoError(t, err)
	snap, err := r.update(job.ID, func(j *models.Job) { j.Progress = 10 })
	require.NoError(t, err)
	assert.Equal(t, 40.0, snap.Progress)
}

func TestRegistry_TerminalJobsAreReadOnly(t *testing.T) {
	r := NewRegistry()
	job := newPendingJob(time.Now())
	r.add(job)

	_, err := r.update(job.ID, func(j *models.Job) { j.Status = models.JobStatusCompleted })
	require.NoError(t, err)

	_, err = r.update(job.ID, func(j *models.Job) { j.Status = models.JobStatusRunning })
	assert.ErrorIs(t, err, errJobTerminal)

	snap, err := r.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, snap.Status)
}

func TestRegistry_UpdateUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.update(uuid.New(), func(*models.Job) {})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_ListOrderedByCreation(t *testing.T) {
	r := NewRegistry()
	base := time.Now()
	third := newPendingJob(base.Add(2 * time.Second))
	first := newPendingJob(base)
	second := newPendingJob(base.Add(time.Second))
	r.add(third)
	r.add(first)
	r.add(second)

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.Equal(t, third.ID, list[2].ID)
}

func TestPhaseError(t *testing.T) {
	err := phaseError(PhaseDiscover, KindNoImagesFound, ErrNoImagesFound)
	assert.Equal(t, "discover: no images found", err.Error())
	assert.ErrorIs(t, err, ErrNoImagesFound)
	assert.Equal(t, KindNoImagesFound, kindOf(err))
	assert.Equal(t, KindInternal, kindOf(assert.AnError))
}
