// Package page models a persisted, stable slice of a run's ranked results
// plus the scored remainder it was cut from.
package page

import (
	"fmt"

	"github.com/talentdex/talentdex/internal/domain/candidate"
)

// Page is one persisted result window. Entries are the visible slice;
// Remainder is the rest of the scored pool after this page, kept so the next
// page request can slice without re-querying the datastore. Writes are
// idempotent upserts keyed by (run id, index).
type Page struct {
	runID     string
	index     int
	entries   []candidate.Scored
	remainder []candidate.Scored
}

// New validates and creates a Page.
func New(runID string, index int, entries, remainder []candidate.Scored) (Page, error) {
	if runID == "" {
		return Page{}, fmt.Errorf("page run id is required")
	}
	if index < 0 {
		return Page{}, fmt.Errorf("page index must be non-negative, got %d", index)
	}
	return Page{runID: runID, index: index, entries: entries, remainder: remainder}, nil
}

// Reconstruct creates a Page from storage fields without validation.
func Reconstruct(runID string, index int, entries, remainder []candidate.Scored) Page {
	return Page{runID: runID, index: index, entries: entries, remainder: remainder}
}

// RunID returns the owning run identifier.
func (p Page) RunID() string { return p.runID }

// Index returns the page index.
func (p Page) Index() int { return p.index }

// Entries returns a copy of the visible slice.
func (p Page) Entries() []candidate.Scored {
	out := make([]candidate.Scored, len(p.entries))
	copy(out, p.entries)
	return out
}

// Remainder returns a copy of the scored pool left after this page.
func (p Page) Remainder() []candidate.Scored {
	out := make([]candidate.Scored, len(p.remainder))
	copy(out, p.remainder)
	return out
}
