package pipeline

import "sync"

// Phase identifies one state in the orchestrator's run state machine.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseEnumerating  Phase = "enumerating"
	PhaseScoring      Phase = "scoring"
	PhaseReading      Phase = "reading"
	PhaseSummarizing  Phase = "summarizing"
	PhaseRendering    Phase = "rendering"
	PhaseTokenizing   Phase = "tokenizing"
	PhaseDone         Phase = "done"
	PhaseFailed       Phase = "failed"
)

// ProgressSnapshot is a point-in-time, race-free copy of a run's progress,
// safe to read from a goroutine other than the one driving the run (the
// optional TUI, or an MCP "progress" tool poll).
type ProgressSnapshot struct {
	Phase        Phase
	CurrentPath  string
	FilesDone    int
	FilesTotal   int
	Err          error
}

// ProgressHandle is the orchestrator's progress sink: a sync.RWMutex
// guards a small set of hot fields so Snapshot() never blocks the run loop
// for more than a field copy, mirroring the mutex-around-hot-field pattern
// internal/discovery's symlink resolver uses for its visited set.
type ProgressHandle struct {
	mu       sync.RWMutex
	snapshot ProgressSnapshot
}

// NewProgressHandle returns a ProgressHandle starting in PhaseIdle.
func NewProgressHandle() *ProgressHandle {
	return &ProgressHandle{snapshot: ProgressSnapshot{Phase: PhaseIdle}}
}

// SetPhase records a state transition.
func (p *ProgressHandle) SetPhase(phase Phase) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot.Phase = phase
}

// SetCurrentPath records the path currently being processed.
func (p *ProgressHandle) SetCurrentPath(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot.CurrentPath = path
}

// SetCounts records progress through the current phase's file set.
func (p *ProgressHandle) SetCounts(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot.FilesDone = done
	p.snapshot.FilesTotal = total
}

// Fail records a fatal error and transitions to PhaseFailed.
func (p *ProgressHandle) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot.Phase = PhaseFailed
	p.snapshot.Err = err
}

// Snapshot returns a value copy of the current progress state.
func (p *ProgressHandle) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}
