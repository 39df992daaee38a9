package mcpserver

import (
	"sync"
	"time"

	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// maxRetainedJobs bounds the registry. When a new job would exceed the
// bound, the oldest completed job is evicted first; running jobs are never
// evicted.
const maxRetainedJobs = 32

// job tracks one pipeline run for the progress tool. The progress handle is
// written by the orchestrator; summary and runErr are set exactly once when
// the run finishes, under the registry lock.
type job struct {
	id       string
	progress *pipeline.ProgressHandle
	started  time.Time
	done     bool
	summary  *pipeline.RunSummary
	runErr   error
}

// jobRegistry is the explicit jobId -> handle map the server owns. Insertion
// and removal are explicit; nothing registers itself from module init.
type jobRegistry struct {
	mu    sync.Mutex
	jobs  map[string]*job
	order []string
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{jobs: make(map[string]*job)}
}

// insert registers a new job and prunes the oldest completed job when the
// registry is full.
func (r *jobRegistry) insert(id string, progress *pipeline.ProgressHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.order) >= maxRetainedJobs {
		for i, oldID := range r.order {
			if old := r.jobs[oldID]; old != nil && old.done {
				delete(r.jobs, oldID)
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}

	r.jobs[id] = &job{id: id, progress: progress, started: time.Now()}
	r.order = append(r.order, id)
}

// complete records a job's final summary (or error). The job stays readable
// so progress polls after completion still report isComplete=true.
func (r *jobRegistry) complete(id string, summary *pipeline.RunSummary, runErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return
	}
	j.done = true
	j.summary = summary
	j.runErr = runErr
}

// jobStatus is a point-in-time copy of a job's state, safe to read after the
// registry lock is released.
type jobStatus struct {
	snapshot pipeline.ProgressSnapshot
	started  time.Time
	done     bool
	summary  *pipeline.RunSummary
	runErr   error
}

// status returns a copy of the job's current state, or false when the id is
// unknown (never inserted, or evicted).
func (r *jobRegistry) status(id string) (jobStatus, bool) {
	r.mu.Lock()
	j, ok := r.jobs[id]
	if !ok {
		r.mu.Unlock()
		return jobStatus{}, false
	}
	st := jobStatus{started: j.started, done: j.done, summary: j.summary, runErr: j.runErr}
	progress := j.progress
	r.mu.Unlock()

	// Snapshot outside the registry lock: the handle has its own lock and
	// the orchestrator writes to it concurrently.
	if progress != nil {
		st.snapshot = progress.Snapshot()
	}
	return st, true
}

// len reports the number of retained jobs.
func (r *jobRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}
