package jobs

import (
	"sort"
	"sync"

	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
	"github.com/google/uuid"
)

// Registry is the job table. One lock guards the map and every job's
// fields, so readers always get a consistent snapshot.
type Registry struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*models.Job
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[uuid.UUID]*models.Job)}
}

func (r *Registry) add(job *models.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
}

func (r *Registry) remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

// Get returns a snapshot of the job, or ErrNotFound.
func (r *Registry) Get(id uuid.UUID) (models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return models.Job{}, ErrNotFound
	}
	return j.Clone(), nil
}

// List returns snapshots of all jobs ordered by creation time.
func (r *Registry) List() []models.Job {
	r.mu.RLock()
	out := make([]models.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, k int) bool {
		if out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].ID.String() < out[k].ID.String()
		}
		return out[i].CreatedAt.Before(out[k].CreatedAt)
	})
	return out
}

// update applies fn to the job under the table lock and returns the new
// snapshot. Terminal jobs are read-only, and progress never moves backwards.
func (r *Registry) update(id uuid.UUID, fn func(*models.Job)) (models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return models.Job{}, ErrNotFound
	}
	if j.Status.Terminal() {
		return j.Clone(), errJobTerminal
	}

	prev := j.Progress
	fn(j)
	if j.Progress < prev {
		j.Progress = prev
	}
	return j.Clone(), nil
}
