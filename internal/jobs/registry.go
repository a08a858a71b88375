package jobs

import (
	"errors"
	"sync"
	"time"

	"github.com/mediacut/videocut/internal/types"
)

// DefaultRetention is how long a terminal job stays queryable after its
// last update.
const DefaultRetention = time.Hour

var (
	// ErrJobNotFound means the job ID was never registered or has been evicted.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobExpired means the job finished but outlived the retention window.
	ErrJobExpired = errors.New("job result expired")
)

// Registry owns the in-memory job table. Eviction is lazy: expired terminal
// jobs are removed when queried, never by a background sweep.
type Registry struct {
	mu        sync.Mutex
	jobs      map[string]*Job
	retention time.Duration
}

// NewRegistry creates an empty registry with the given retention window.
// A zero retention falls back to DefaultRetention.
func NewRegistry(retention time.Duration) *Registry {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Registry{
		jobs:      make(map[string]*Job),
		retention: retention,
	}
}

// Add registers a fresh job in processing state.
func (r *Registry) Add(id string) *Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	job := newJob(id)
	r.jobs[id] = job
	snapshot := *job
	return &snapshot
}

// Get returns a snapshot of the job, evicting it first if it is terminal
// and past the retention window.
func (r *Registry) Get(id string) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	if job.Terminal() && time.Since(job.UpdatedAt) > r.retention {
		delete(r.jobs, id)
		return nil, ErrJobExpired
	}

	snapshot := *job
	return &snapshot, nil
}

// Update applies fn to a copy of the job and swaps the record in as one
// atomic replacement, so readers never observe a half-applied update.
func (r *Registry) Update(id string, fn func(*Job)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return
	}
	updated := *job
	fn(&updated)
	updated.UpdatedAt = time.Now()
	r.jobs[id] = &updated
}

// CountProcessing returns the number of jobs currently in processing state.
func (r *Registry) CountProcessing() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, job := range r.jobs {
		if job.Status == types.StatusProcessing {
			count++
		}
	}
	return count
}
