package rl

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StepContext carries the per-step results an Environment.Step call
// cannot return directly because its signature is fixed by the State/
// Action interfaces: the CRM reward and termination/truncation flags
// (spec §6 step outputs), propagated back to the Agent's episode loop.
type StepContext struct {
	Reward     float64
	Terminated bool
	Truncated  bool
}

// EpisodeContext threads a cancellable timeout context through one
// episode and accumulates a report of what happened, adapted from the
// teacher's EpisodeContext/EpisodeReport pair (types/episode_context.go).
type EpisodeContext struct {
	Context context.Context
	Cancel  context.CancelFunc

	EpisodeNumber int
	Timesteps     int
	TimedOut      bool
	Err           error

	Report *EpisodeReport
}

// NewEpisodeContext builds a context bounded by timeout (0 disables the
// deadline).
func NewEpisodeContext(episodeNumber int, timeout time.Duration) *EpisodeContext {
	var ctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	return &EpisodeContext{
		Context:       ctx,
		Cancel:        cancel,
		EpisodeNumber: episodeNumber,
		Report:        NewEpisodeReport(episodeNumber),
	}
}

// SetError records a step error; the episode loop stops at the step
// that produced it.
func (e *EpisodeContext) SetError(err error) {
	e.Err = err
}

// SetTimedOut marks the episode as timed out.
func (e *EpisodeContext) SetTimedOut() {
	e.TimedOut = true
}

// EpisodeReport accumulates named timestamped entries about one
// episode's execution, the same shape as the teacher's report but
// trimmed to the entry kinds the CRM loop actually produces.
type EpisodeReport struct {
	EpisodeNumber int

	startTime time.Time
	lock      sync.Mutex

	Entries map[string][]ReportEntry
}

// ReportEntry is one timestamped observation recorded against a report.
type ReportEntry struct {
	Timestamp time.Duration
	Value     float64
}

// NewEpisodeReport starts a report whose timestamps are measured from
// the moment it is created.
func NewEpisodeReport(episodeNumber int) *EpisodeReport {
	return &EpisodeReport{
		EpisodeNumber: episodeNumber,
		startTime:     time.Now(),
		Entries:       make(map[string][]ReportEntry),
	}
}

// Add records value under entryType, timestamped relative to report
// start.
func (r *EpisodeReport) Add(entryType string, value float64) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Entries[entryType] = append(r.Entries[entryType], ReportEntry{
		Timestamp: time.Since(r.startTime),
		Value:     value,
	})
}

// String renders a compact per-type summary, in the teacher's style of
// a human-scannable multi-line report (types/episode_context.go
// StringPerType).
func (r *EpisodeReport) String() string {
	result := fmt.Sprintf("episode %d:\n", r.EpisodeNumber)
	for entryType, entries := range r.Entries {
		result += fmt.Sprintf("  %s [%d entries]\n", entryType, len(entries))
	}
	return result
}
