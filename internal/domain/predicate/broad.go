package predicate

import (
	"fmt"
	"strings"

	"github.com/talentdex/talentdex/internal/domain"
)

// TermSet is one weighted synonym/bilingual term group of a broad-recall
// query. Unlike a structured Group it carries no target field: broad recall
// matches against the candidate's full-text profile.
type TermSet struct {
	terms  []string
	weight float64
}

// NewTermSet validates and creates a TermSet. Weight defaults to 1.0.
func NewTermSet(terms []string, weight float64) (TermSet, error) {
	cleaned := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return TermSet{}, fmt.Errorf("term set is empty: %w", domain.ErrInvalidPredicate)
	}
	if weight <= 0 {
		weight = 1.0
	}
	return TermSet{terms: cleaned, weight: weight}, nil
}

// Terms returns a copy of the terms.
func (t TermSet) Terms() []string {
	out := make([]string, len(t.terms))
	copy(out, t.terms)
	return out
}

// Weight returns the term set's rank weight.
func (t TermSet) Weight() float64 { return t.weight }

// Broad is the recall-biased full-text disjunction used by the last fallback
// tier once structured predicate logic has been abandoned.
type Broad struct {
	sets []TermSet
}

// NewBroad validates and creates a Broad query.
func NewBroad(sets []TermSet) (Broad, error) {
	if len(sets) == 0 {
		return Broad{}, fmt.Errorf("broad query has no term sets: %w", domain.ErrInvalidPredicate)
	}
	return Broad{sets: sets}, nil
}

// Sets returns a copy of the term sets.
func (b Broad) Sets() []TermSet {
	out := make([]TermSet, len(b.sets))
	copy(out, b.sets)
	return out
}

// Render produces the weighted full-text disjunction submitted to the
// execution worker. Pure disjunction: any term set alone qualifies a row,
// weights only influence rank.
func (b Broad) Render() string {
	parts := make([]string, len(b.sets))
	for i, s := range b.sets {
		quoted := make([]string, len(s.terms))
		for j, t := range s.terms {
			quoted[j] = escapeTerm(t)
		}
		parts[i] = fmt.Sprintf("(%s):%.1f", strings.Join(quoted, " | "), s.weight)
	}
	return "FULLTEXT(c.profile, '" + strings.Join(parts, " | ") + "')"
}
