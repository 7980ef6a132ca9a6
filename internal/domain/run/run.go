// Package run models one compiled, executable instance of a user's search
// query: the raw input, the extracted criteria, and the compiled predicate.
package run

import (
	"fmt"
	"strings"

	"github.com/talentdex/talentdex/internal/domain"
	"github.com/talentdex/talentdex/internal/domain/criteria"
)

// MaxQueryLen bounds the raw query size.
const MaxQueryLen = 2000

// Progress labels surfaced to the polling client while a page request is in
// flight. Free text by design; clients display, never branch on them, except
// for the terminal three.
const (
	StatusCreated   = "created"
	StatusCompiling = "compiling"
	StatusSearching = "searching"
	StatusScoring   = "scoring"
	StatusComplete  = "complete"
	StatusNoResults = "no_results"
	StatusFailed    = "failed"
)

// Run is the per-search-intent aggregate. Criteria and predicate are lazily
// populated and then immutable for the run's lifetime; re-writing the same
// values is a safe idempotent overwrite.
type Run struct {
	id        string
	userID    string
	rawQuery  string
	criteria  criteria.Set
	predicate string
	status    string
	retries   int
	createdAt int64
}

// New validates and creates a Run.
func New(id, userID, rawQuery string, createdAt int64) (Run, error) {
	if id == "" {
		return Run{}, fmt.Errorf("run id is required")
	}
	if userID == "" {
		return Run{}, fmt.Errorf("run user id is required")
	}
	rawQuery = strings.TrimSpace(rawQuery)
	if rawQuery == "" {
		return Run{}, fmt.Errorf("run query is required")
	}
	if len(rawQuery) > MaxQueryLen {
		return Run{}, fmt.Errorf("run query too long (max %d bytes)", MaxQueryLen)
	}
	return Run{id: id, userID: userID, rawQuery: rawQuery, status: StatusCreated, createdAt: createdAt}, nil
}

// Reconstruct creates a Run from storage fields without validation.
func Reconstruct(
	id, userID, rawQuery string, crit criteria.Set,
	predicate, status string, retries int, createdAt int64,
) Run {
	return Run{
		id: id, userID: userID, rawQuery: rawQuery, criteria: crit,
		predicate: predicate, status: status, retries: retries, createdAt: createdAt,
	}
}

// ID returns the run identifier.
func (r Run) ID() string { return r.id }

// UserID returns the owning user.
func (r Run) UserID() string { return r.userID }

// RawQuery returns the user's original query text.
func (r Run) RawQuery() string { return r.rawQuery }

// Criteria returns the extracted criteria set (zero until extracted).
func (r Run) Criteria() criteria.Set { return r.criteria }

// Predicate returns the compiled predicate text (empty until compiled).
func (r Run) Predicate() string { return r.predicate }

// Status returns the free-text progress label.
func (r Run) Status() string { return r.status }

// Retries returns the compile retry counter.
func (r Run) Retries() int { return r.retries }

// CreatedAt returns the creation timestamp in unix milliseconds.
func (r Run) CreatedAt() int64 { return r.createdAt }

// Compiled reports whether both criteria and predicate are populated.
func (r Run) Compiled() bool {
	return !r.criteria.IsZero() && r.predicate != ""
}

// WithCompilation returns a copy with criteria and predicate populated.
func (r Run) WithCompilation(crit criteria.Set, predicate string) (Run, error) {
	if crit.IsZero() {
		return Run{}, fmt.Errorf("compilation requires criteria: %w", domain.ErrInvalidCriteria)
	}
	if predicate == "" {
		return Run{}, fmt.Errorf("compilation requires a predicate: %w", domain.ErrInvalidPredicate)
	}
	out := r
	out.criteria = crit
	out.predicate = predicate
	return out, nil
}

// WithStatus returns a copy with the status label replaced.
func (r Run) WithStatus(status string) Run {
	out := r
	out.status = status
	return out
}

// WithRetry returns a copy with the retry counter incremented.
func (r Run) WithRetry() Run {
	out := r
	out.retries++
	return out
}
