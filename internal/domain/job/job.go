// Package job models the transient execution job record shared with the
// external datastore worker.
package job

import (
	"fmt"

	"github.com/talentdex/talentdex/internal/domain"
)

// Status is the execution job lifecycle state.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// CanTransition reports whether moving from s to next is monotonic:
// queued -> running -> {done, error}, with no exit from a terminal state.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusQueued:
		return next == StatusRunning || next == StatusDone || next == StatusError
	case StatusRunning:
		return next == StatusDone || next == StatusError
	default:
		return false
	}
}

// Job is one predicate execution attempt. Created on submission, written to
// by the external worker, discarded after hydration.
type Job struct {
	id        string
	predicate string
	limit     int
	offset    int
	pageIndex int
	status    Status
	resultIDs []string
	errMsg    string
}

// New validates and creates a queued Job.
func New(id, predicate string, limit, offset, pageIndex int) (Job, error) {
	if id == "" {
		return Job{}, fmt.Errorf("job id is required: %w", domain.ErrInvalidPredicate)
	}
	if predicate == "" {
		return Job{}, fmt.Errorf("job predicate is required: %w", domain.ErrInvalidPredicate)
	}
	if limit <= 0 {
		return Job{}, fmt.Errorf("job limit must be positive, got %d: %w", limit, domain.ErrInvalidPredicate)
	}
	if offset < 0 || pageIndex < 0 {
		return Job{}, fmt.Errorf("job offset/page must be non-negative: %w", domain.ErrInvalidPredicate)
	}
	return Job{
		id: id, predicate: predicate,
		limit: limit, offset: offset, pageIndex: pageIndex,
		status: StatusQueued,
	}, nil
}

// Reconstruct creates a Job from storage fields without validation.
func Reconstruct(id, predicate string, limit, offset, pageIndex int, status Status, resultIDs []string, errMsg string) Job {
	return Job{
		id: id, predicate: predicate,
		limit: limit, offset: offset, pageIndex: pageIndex,
		status: status, resultIDs: resultIDs, errMsg: errMsg,
	}
}

// ID returns the job identifier.
func (j Job) ID() string { return j.id }

// Predicate returns the predicate text under execution.
func (j Job) Predicate() string { return j.predicate }

// Limit returns the row limit.
func (j Job) Limit() int { return j.limit }

// Offset returns the row offset.
func (j Job) Offset() int { return j.offset }

// PageIndex returns the page index the job was submitted for.
func (j Job) PageIndex() int { return j.pageIndex }

// Status returns the current lifecycle state.
func (j Job) Status() Status { return j.status }

// ResultIDs returns a copy of the result identifier list, in rank order.
// Empty with StatusDone is a valid zero-match outcome.
func (j Job) ResultIDs() []string {
	out := make([]string, len(j.resultIDs))
	copy(out, j.resultIDs)
	return out
}

// ErrMsg returns the worker-reported error message, if any.
func (j Job) ErrMsg() string { return j.errMsg }
