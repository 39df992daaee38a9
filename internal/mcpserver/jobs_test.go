package mcpserver

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxpack/ctxpack/internal/pipeline"
)

func TestJobRegistry_InsertAndStatus(t *testing.T) {
	r := newJobRegistry()
	progress := pipeline.NewProgressHandle()
	progress.SetPhase(pipeline.PhaseReading)
	progress.SetCounts(3, 10)

	r.insert("job-1", progress)

	st, ok := r.status("job-1")
	require.True(t, ok)
	assert.False(t, st.done)
	assert.Equal(t, pipeline.PhaseReading, st.snapshot.Phase)
	assert.Equal(t, 3, st.snapshot.FilesDone)
	assert.Equal(t, 10, st.snapshot.FilesTotal)
	assert.False(t, st.started.IsZero())
}

func TestJobRegistry_UnknownID(t *testing.T) {
	r := newJobRegistry()

	_, ok := r.status("nope")
	assert.False(t, ok)
}

func TestJobRegistry_Complete(t *testing.T) {
	r := newJobRegistry()
	r.insert("job-1", pipeline.NewProgressHandle())

	summary := &pipeline.RunSummary{TotalFiles: 4, ProcessedFiles: 4}
	r.complete("job-1", summary, nil)

	st, ok := r.status("job-1")
	require.True(t, ok)
	assert.True(t, st.done)
	require.NotNil(t, st.summary)
	assert.Equal(t, 4, st.summary.ProcessedFiles)
	assert.NoError(t, st.runErr)
}

func TestJobRegistry_CompleteWithError(t *testing.T) {
	r := newJobRegistry()
	r.insert("job-1", pipeline.NewProgressHandle())

	runErr := errors.New("boom")
	r.complete("job-1", nil, runErr)

	st, ok := r.status("job-1")
	require.True(t, ok)
	assert.True(t, st.done)
	assert.Equal(t, runErr, st.runErr)
}

func TestJobRegistry_CompleteUnknownIDIsNoop(t *testing.T) {
	r := newJobRegistry()
	r.complete("ghost", &pipeline.RunSummary{}, nil)
	assert.Equal(t, 0, r.len())
}

func TestJobRegistry_EvictsOldestCompletedAtCapacity(t *testing.T) {
	r := newJobRegistry()

	for i := 0; i < maxRetainedJobs; i++ {
		id := fmt.Sprintf("job-%d", i)
		r.insert(id, pipeline.NewProgressHandle())
		r.complete(id, &pipeline.RunSummary{}, nil)
	}
	require.Equal(t, maxRetainedJobs, r.len())

	r.insert("job-new", pipeline.NewProgressHandle())

	assert.Equal(t, maxRetainedJobs, r.len())
	_, ok := r.status("job-0")
	assert.False(t, ok, "oldest completed job should have been evicted")
	_, ok = r.status("job-new")
	assert.True(t, ok)
}

func TestJobRegistry_NeverEvictsRunningJobs(t *testing.T) {
	r := newJobRegistry()

	// Fill the registry with jobs that are all still running.
	for i := 0; i < maxRetainedJobs; i++ {
		r.insert(fmt.Sprintf("job-%d", i), pipeline.NewProgressHandle())
	}

	r.insert("job-new", pipeline.NewProgressHandle())

	// Nothing was eligible for eviction, so the registry grows past the
	// bound rather than dropping a live handle.
	assert.Equal(t, maxRetainedJobs+1, r.len())
	_, ok := r.status("job-0")
	assert.True(t, ok)
}
