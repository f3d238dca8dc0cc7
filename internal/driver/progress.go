package driver

import (
	"sync"
	"time"
)

// Stage identifies one phase of the analysis pipeline.
type Stage string

const (
	// StageLayout computes struct layouts.
	StageLayout Stage = "layout"
	// StageStorage decides allocation strategies for variables.
	StageStorage Stage = "storage"
	// StageRVO rewrites eligible returns to construct in place.
	StageRVO Stage = "rvo"
	// StageRegalloc assigns physical registers.
	StageRegalloc Stage = "regalloc"
)

// Stages returns the pipeline phases in execution order.
func Stages() []Stage {
	return []Stage{StageLayout, StageStorage, StageRVO, StageRegalloc}
}

// Status describes how far a stage has progressed.
type Status string

const (
	// StatusQueued means the unit is waiting to be analyzed.
	StatusQueued Status = "queued"
	// StatusWorking means the stage is running.
	StatusWorking Status = "working"
	// StatusDone means the stage finished successfully.
	StatusDone Status = "done"
	// StatusError means the stage failed.
	StatusError Status = "error"
)

// Event is a single progress update. Unit names the unit (or manifest
// path in batch runs) the update belongs to.
type Event struct {
	Unit    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events during analysis.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel, typically consumed by an
// interactive UI.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// MultiSink fans events out to several sinks.
type MultiSink []ProgressSink

func (m MultiSink) OnEvent(evt Event) {
	for _, s := range m {
		if s != nil {
			s.OnEvent(evt)
		}
	}
}

func emitStage(sink ProgressSink, unit string, stage Stage, status Status, stageErr error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{
		Unit:    unit,
		Stage:   stage,
		Status:  status,
		Err:     stageErr,
		Elapsed: elapsed,
	})
}

// Timings accumulates how long each stage took.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Add accumulates d into the stage total.
func (t *Timings) Add(stage Stage, d time.Duration) {
	t.ensure()
	t.stages[stage] += d
}

// Has reports whether the stage was recorded.
func (t *Timings) Has(stage Stage) bool {
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded total for the stage.
func (t *Timings) Duration(stage Stage) time.Duration {
	return t.stages[stage]
}

// Sum returns the total across all stages.
func (t *Timings) Sum() time.Duration {
	var total time.Duration
	for _, d := range t.stages {
		total += d
	}
	return total
}

// TimingSink records stage durations from done events. It may be shared
// across concurrent unit analyses.
type TimingSink struct {
	mu sync.Mutex
	t  Timings
}

func (s *TimingSink) OnEvent(evt Event) {
	if evt.Status != StatusDone {
		return
	}
	s.mu.Lock()
	s.t.Add(evt.Stage, evt.Elapsed)
	s.mu.Unlock()
}

// Timings returns a snapshot of the accumulated durations.
func (s *TimingSink) Timings() Timings {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out Timings
	for stage, d := range s.t.stages {
		out.Add(stage, d)
	}
	return out
}
