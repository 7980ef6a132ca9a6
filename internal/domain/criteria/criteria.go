package criteria

import (
	"fmt"
	"strings"

	"github.com/talentdex/talentdex/internal/domain"
)

const (
	// MaxItems is the maximum number of evaluation criteria per run.
	MaxItems = 4
	// MaxItemLen is the maximum length of a single criterion in characters.
	MaxItemLen = 30
)

// Set is the ordered list of human-readable evaluation criteria extracted
// from a raw query, together with the extractor's paraphrase and rationale.
// Immutable value object; scoring depends strictly on Len().
type Set struct {
	paraphrase string
	rationale  string
	items      []string
}

// New validates and creates a criteria Set.
// Items: 1..MaxItems, each non-empty, at most MaxItemLen characters,
// mutually non-duplicative (case-insensitive).
func New(paraphrase, rationale string, items []string) (Set, error) {
	if len(items) == 0 {
		return Set{}, fmt.Errorf("at least one criterion is required: %w", domain.ErrInvalidCriteria)
	}
	if len(items) > MaxItems {
		return Set{}, fmt.Errorf("too many criteria (%d, max %d): %w", len(items), MaxItems, domain.ErrInvalidCriteria)
	}

	seen := make(map[string]bool, len(items))
	cleaned := make([]string, 0, len(items))
	for i, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			return Set{}, fmt.Errorf("criterion %d is empty: %w", i, domain.ErrInvalidCriteria)
		}
		if len([]rune(item)) > MaxItemLen {
			return Set{}, fmt.Errorf("criterion %q exceeds %d characters: %w", item, MaxItemLen, domain.ErrInvalidCriteria)
		}
		key := strings.ToLower(item)
		if seen[key] {
			return Set{}, fmt.Errorf("duplicate criterion %q: %w", item, domain.ErrInvalidCriteria)
		}
		seen[key] = true
		cleaned = append(cleaned, item)
	}

	return Set{paraphrase: paraphrase, rationale: rationale, items: cleaned}, nil
}

// Reconstruct creates a Set without validation (storage hydration).
func Reconstruct(paraphrase, rationale string, items []string) Set {
	return Set{paraphrase: paraphrase, rationale: rationale, items: items}
}

// Paraphrase returns the extractor's restatement of the raw query.
func (s Set) Paraphrase() string { return s.paraphrase }

// Rationale returns the extractor's reasoning summary.
func (s Set) Rationale() string { return s.rationale }

// Items returns a copy of the ordered criteria.
func (s Set) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of criteria.
func (s Set) Len() int { return len(s.items) }

// IsZero reports whether the set has no criteria (not yet extracted).
func (s Set) IsZero() bool { return len(s.items) == 0 }
