package pool

import (
	"testing"

	"github.com/talentdex/talentdex/internal/domain/candidate"
)

func rec(id string) candidate.Record {
	return candidate.Reconstruct(id, "n", "h", "l", 1, nil, "")
}

func ids(records []candidate.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID()
	}
	return out
}

func TestMergeKeepRank(t *testing.T) {
	a := []candidate.Record{rec("c1"), rec("c2")}
	b := []candidate.Record{rec("c2"), rec("c3"), rec("c1"), rec("c4")}

	got := ids(MergeKeepRank(a, b))
	want := []string{"c1", "c2", "c3", "c4"}
	if len(got) != len(want) {
		t.Fatalf("merged ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("merged[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestMergeKeepRankIdempotent(t *testing.T) {
	a := []candidate.Record{rec("c1"), rec("c2")}

	got := ids(MergeKeepRank(a, a))
	if len(got) != 2 || got[0] != "c1" || got[1] != "c2" {
		t.Errorf("self-merge = %v", got)
	}
}

func TestMergeKeepRankEmptySides(t *testing.T) {
	a := []candidate.Record{rec("c1")}
	if got := ids(MergeKeepRank(a, nil)); len(got) != 1 {
		t.Errorf("merge with empty b = %v", got)
	}
	if got := ids(MergeKeepRank(nil, a)); len(got) != 1 {
		t.Errorf("merge with empty a = %v", got)
	}
}

func TestMergeMaxScore(t *testing.T) {
	a := []candidate.Scored{
		candidate.NewScored("c1", 0.50, "old"),
		candidate.NewScored("c2", 0.90, ""),
	}
	b := []candidate.Scored{
		candidate.NewScored("c1", 0.80, "new"),
		candidate.NewScored("c3", 0.60, ""),
	}

	got := MergeMaxScore(a, b)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	// Canonical order: score desc, id asc.
	if got[0].ID() != "c2" || got[1].ID() != "c1" || got[2].ID() != "c3" {
		t.Errorf("order = %s %s %s", got[0].ID(), got[1].ID(), got[2].ID())
	}
	// c1 keeps the max score.
	if got[1].Score() != 0.80 || got[1].Explanation() != "new" {
		t.Errorf("c1 = %v / %q, want max-score entry", got[1].Score(), got[1].Explanation())
	}
}

func TestMergeMaxScoreIdempotent(t *testing.T) {
	a := []candidate.Scored{
		candidate.NewScored("c1", 0.7, ""),
		candidate.NewScored("c2", 0.4, ""),
	}
	got := MergeMaxScore(a, a)
	if len(got) != 2 || got[0].ID() != "c1" || got[1].ID() != "c2" {
		t.Errorf("self-merge = %v", got)
	}
}
