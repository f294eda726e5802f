package models

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a [ResolutionRun].
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Valid reports whether s is a known status.
func (s RunStatus) Valid() bool {
	switch s {
	case RunPending, RunRunning, RunCompleted, RunFailed:
		return true
	}
	return false
}

// ResolutionRun records one batch passed through the resolution pipeline.
type ResolutionRun struct {
	base
	source          string
	outputFile      string
	status          RunStatus
	recordsTotal    int
	recordsResolved int
	recordsDropped  int
	errorMessage    string
	startedAt       *time.Time
	completedAt     *time.Time
}

// NewResolutionRun creates a pending run for the named source (a file name, "upload" or "generator").
func NewResolutionRun(sequence int, source string, total int) *ResolutionRun {
	return &ResolutionRun{
		base:         newBase(sequence),
		source:       source,
		status:       RunPending,
		recordsTotal: total,
	}
}

func (r *ResolutionRun) Source() string           { return r.source }
func (r *ResolutionRun) OutputFile() string       { return r.outputFile }
func (r *ResolutionRun) Status() RunStatus        { return r.status }
func (r *ResolutionRun) RecordsTotal() int        { return r.recordsTotal }
func (r *ResolutionRun) RecordsResolved() int     { return r.recordsResolved }
func (r *ResolutionRun) RecordsDropped() int      { return r.recordsDropped }
func (r *ResolutionRun) ErrorMessage() string     { return r.errorMessage }
func (r *ResolutionRun) StartedAt() *time.Time    { return r.startedAt }
func (r *ResolutionRun) CompletedAt() *time.Time  { return r.completedAt }
func (r *ResolutionRun) SetOutputFile(f string)   { r.outputFile = f }
func (r *ResolutionRun) SetStatus(s RunStatus)    { r.status = s }
func (r *ResolutionRun) SetRecordsResolved(n int) { r.recordsResolved = n }
func (r *ResolutionRun) SetRecordsDropped(n int)  { r.recordsDropped = n }
func (r *ResolutionRun) SetErrorMessage(m string) { r.errorMessage = m }
func (r *ResolutionRun) SetStartedAt(t *time.Time) {
	r.startedAt = t
}
func (r *ResolutionRun) SetCompletedAt(t *time.Time) {
	r.completedAt = t
}

// Start marks the run as running.
func (r *ResolutionRun) Start(at time.Time) {
	r.status = RunRunning
	r.startedAt = &at
}

// Complete marks the run as completed with its final counts.
func (r *ResolutionRun) Complete(at time.Time, outputFile string, resolved, dropped int) {
	r.status = RunCompleted
	r.outputFile = outputFile
	r.recordsResolved = resolved
	r.recordsDropped = dropped
	r.completedAt = &at
}

// Fail marks the run as failed with err's message.
func (r *ResolutionRun) Fail(at time.Time, err error) {
	r.status = RunFailed
	if err != nil {
		r.errorMessage = err.Error()
	}
	r.completedAt = &at
}

// Duration is the elapsed time between start and completion, or zero when either is unset.
func (r *ResolutionRun) Duration() time.Duration {
	if r.startedAt == nil || r.completedAt == nil {
		return 0
	}
	return r.completedAt.Sub(*r.startedAt)
}

// Validate checks required fields and count consistency.
func (r *ResolutionRun) Validate() error {
	if r.id == "" {
		return fmt.Errorf("run id is required")
	}
	if r.source == "" {
		return fmt.Errorf("run source is required")
	}
	if !r.status.Valid() {
		return fmt.Errorf("invalid run status %q", r.status)
	}
	if r.recordsTotal < 0 || r.recordsResolved < 0 || r.recordsDropped < 0 {
		return fmt.Errorf("record counts cannot be negative")
	}
	if r.recordsResolved+r.recordsDropped > r.recordsTotal {
		return fmt.Errorf("resolved (%d) + dropped (%d) exceeds total (%d)", r.recordsResolved, r.recordsDropped, r.recordsTotal)
	}
	return nil
}
