// Package predicate models the structured condition expression compiled from
// a natural-language query: an AND of OR-groups, where each OR-group expands
// exactly one semantic condition into synonym/bilingual alternatives.
package predicate

import (
	"fmt"
	"strings"

	"github.com/talentdex/talentdex/internal/domain"
)

// Alternative is one synonym expansion of a semantic condition: a candidate
// field matched against a term.
type Alternative struct {
	field string
	term  string
}

// NewAlternative validates and creates an Alternative.
func NewAlternative(field, term string) (Alternative, error) {
	field = strings.TrimSpace(field)
	term = strings.TrimSpace(term)
	if field == "" {
		return Alternative{}, fmt.Errorf("alternative field is required: %w", domain.ErrInvalidPredicate)
	}
	if term == "" {
		return Alternative{}, fmt.Errorf("alternative term is required: %w", domain.ErrInvalidPredicate)
	}
	return Alternative{field: field, term: term}, nil
}

// Field returns the target candidate field.
func (a Alternative) Field() string { return a.field }

// Term returns the match term.
func (a Alternative) Term() string { return a.term }

// Group is one OR-group: a single semantic condition expanded into one or
// more alternatives. Two distinct user conditions must never share a group;
// that is the line between expanding recall and merging intents.
type Group struct {
	intent string
	alts   []Alternative
}

// NewGroup validates and creates a Group.
func NewGroup(intent string, alts []Alternative) (Group, error) {
	if strings.TrimSpace(intent) == "" {
		return Group{}, fmt.Errorf("group intent is required: %w", domain.ErrInvalidPredicate)
	}
	if len(alts) == 0 {
		return Group{}, fmt.Errorf("group %q has no alternatives: %w", intent, domain.ErrInvalidPredicate)
	}
	return Group{intent: intent, alts: alts}, nil
}

// Intent returns the semantic condition this group expands.
func (g Group) Intent() string { return g.intent }

// Alternatives returns a copy of the group's alternatives.
func (g Group) Alternatives() []Alternative {
	out := make([]Alternative, len(g.alts))
	copy(out, g.alts)
	return out
}

// Predicate is the executable AND-of-OR-groups condition expression.
// Immutable value object.
type Predicate struct {
	groups []Group
}

// New validates and creates a Predicate.
func New(groups []Group) (Predicate, error) {
	if len(groups) == 0 {
		return Predicate{}, fmt.Errorf("predicate has no groups: %w", domain.ErrInvalidPredicate)
	}
	return Predicate{groups: groups}, nil
}

// Groups returns a copy of the predicate's OR-groups.
func (p Predicate) Groups() []Group {
	out := make([]Group, len(p.groups))
	copy(out, p.groups)
	return out
}

// IsZero reports whether the predicate has not been compiled yet.
func (p Predicate) IsZero() bool { return len(p.groups) == 0 }

// Render produces the WHERE fragment submitted to the execution worker:
// conjunction of parenthesized OR-groups of case-insensitive containment tests.
func (p Predicate) Render() string {
	groups := make([]string, len(p.groups))
	for i, g := range p.groups {
		alts := make([]string, len(g.alts))
		for j, a := range g.alts {
			alts[j] = fmt.Sprintf("c.%s ILIKE '%%%s%%'", a.field, escapeTerm(a.term))
		}
		groups[i] = "(" + strings.Join(alts, " OR ") + ")"
	}
	return strings.Join(groups, " AND ")
}

// Matches evaluates the predicate against a flat candidate field map.
// Used by the refinement equivalence check: the refiner may change the cost
// of finding rows, never which rows match.
func (p Predicate) Matches(fields map[string]string) bool {
	for _, g := range p.groups {
		if !g.matches(fields) {
			return false
		}
	}
	return true
}

func (g Group) matches(fields map[string]string) bool {
	for _, a := range g.alts {
		v, ok := fields[a.field]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(v), strings.ToLower(a.term)) {
			return true
		}
	}
	return false
}

func escapeTerm(term string) string {
	return strings.ReplaceAll(term, "'", "''")
}
