// Package pool holds the merge/deduplication operations applied to candidate
// pools gathered across fallback tiers and cached page remainders.
package pool

import "github.com/talentdex/talentdex/internal/domain/candidate"

// MergeKeepRank unions two pools of hydrated records, deduplicating by
// identifier and keeping the highest-rank (earliest) occurrence. Earlier
// tiers come first in a, so their rank wins. Idempotent: merging a pool with
// itself yields the same pool.
func MergeKeepRank(a, b []candidate.Record) []candidate.Record {
	out := make([]candidate.Record, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, r := range a {
		if seen[r.ID()] {
			continue
		}
		seen[r.ID()] = true
		out = append(out, r)
	}
	for _, r := range b {
		if seen[r.ID()] {
			continue
		}
		seen[r.ID()] = true
		out = append(out, r)
	}
	return out
}

// MergeMaxScore unions two scored pools, deduplicating by identifier and
// keeping the maximum score per candidate. The result is re-sorted into the
// canonical order (score desc, id asc). Idempotent.
func MergeMaxScore(a, b []candidate.Scored) []candidate.Scored {
	best := make(map[string]candidate.Scored, len(a)+len(b))
	for _, s := range a {
		if cur, ok := best[s.ID()]; !ok || s.Score() > cur.Score() {
			best[s.ID()] = s
		}
	}
	for _, s := range b {
		if cur, ok := best[s.ID()]; !ok || s.Score() > cur.Score() {
			best[s.ID()] = s
		}
	}

	out := make([]candidate.Scored, 0, len(best))
	for _, s := range best {
		out = append(out, s)
	}
	candidate.SortScored(out)
	return out
}
