package buildpipeline

import (
	"sync"
	"time"
)

// Stage names a pipeline phase.
type Stage string

const (
	// StageCompile covers front matter, parsing and splitting of one page.
	StageCompile Stage = "compile"
	// StageGenerate is the backend stage.
	StageGenerate Stage = "generate"
	// StageWrite writes generated files into the output directory.
	StageWrite Stage = "write"
	// StageBuild is the whole build; its events carry no file.
	StageBuild Stage = "build"
)

// Status is the state of a page (or of the whole build) within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusCached  Status = "cached" // page output came from the cache
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress of one page, or of the whole build when File is "".
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Build calls OnEvent from several
// goroutines at once.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations. Page stages are summed over all pages.
// The zero value is ready to use; a nil *Timings ignores writes.
type Timings struct {
	mu sync.Mutex
	d  map[Stage]time.Duration
}

func (t *Timings) update(stage Stage, fn func(time.Duration) time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	if t.d == nil {
		t.d = make(map[Stage]time.Duration, 4)
	}
	t.d[stage] = fn(t.d[stage])
	t.mu.Unlock()
}

// Set replaces the duration of stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	t.update(stage, func(time.Duration) time.Duration { return dur })
}

// Add accumulates dur into stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	t.update(stage, func(old time.Duration) time.Duration { return old + dur })
}

func (t *Timings) lookup(stage Stage) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.d[stage]
	return d, ok
}

// Has reports whether stage was recorded.
func (t *Timings) Has(stage Stage) bool {
	_, ok := t.lookup(stage)
	return ok
}

// Duration returns the recorded duration of stage, zero if absent.
func (t *Timings) Duration(stage Stage) time.Duration {
	d, _ := t.lookup(stage)
	return d
}
