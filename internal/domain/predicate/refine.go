package predicate

import (
	"fmt"

	"github.com/talentdex/talentdex/internal/domain"
)

const (
	// MinRowCap and MaxRowCap bound the first-pass row limit.
	MinRowCap = 100
	MaxRowCap = 300
)

// Refined is the performance-oriented two-phase form of a predicate:
// a cheap id+rank first pass with a hard row cap, then a hydration pass that
// joins auxiliary relations only for the surviving identifiers.
// Join-before-filter is the cost driver being eliminated; the matched-id set
// is unchanged modulo the row cap.
type Refined struct {
	source     Predicate
	selectPass string
	hydration  string
	rowCap     int
}

// Refine restructures a predicate into its two-phase form.
// rowCap outside [MinRowCap, MaxRowCap] is an error rather than a clamp so
// misconfiguration surfaces early.
func Refine(p Predicate, rowCap int) (Refined, error) {
	if p.IsZero() {
		return Refined{}, fmt.Errorf("cannot refine empty predicate: %w", domain.ErrInvalidPredicate)
	}
	if rowCap < MinRowCap || rowCap > MaxRowCap {
		return Refined{}, fmt.Errorf("row cap %d outside [%d, %d]: %w", rowCap, MinRowCap, MaxRowCap, domain.ErrInvalidPredicate)
	}

	where := p.Render()
	selectPass := fmt.Sprintf(
		"SELECT c.id, c.rank FROM candidates c WHERE %s ORDER BY c.rank LIMIT %d",
		where, rowCap,
	)
	hydration := "SELECT c.*, e.positions, e.companies, s.skills " +
		"FROM candidates c " +
		"LEFT JOIN experiences e ON e.candidate_id = c.id " +
		"LEFT JOIN skill_sets s ON s.candidate_id = c.id " +
		"WHERE c.id = ANY(:ids)"

	return Refined{source: p, selectPass: selectPass, hydration: hydration, rowCap: rowCap}, nil
}

// Source returns the unrefined predicate.
func (r Refined) Source() Predicate { return r.source }

// SelectPass returns the id+rank first-pass statement.
func (r Refined) SelectPass() string { return r.selectPass }

// Hydration returns the survivors-only hydration statement.
func (r Refined) Hydration() string { return r.hydration }

// RowCap returns the first-pass row limit.
func (r Refined) RowCap() int { return r.rowCap }

// Matches delegates to the source predicate: refinement is a cost transform,
// not a semantics transform.
func (r Refined) Matches(fields map[string]string) bool {
	return r.source.Matches(fields)
}
