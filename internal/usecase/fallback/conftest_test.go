package fallback

import (
	"context"
	"testing"

	"github.com/talentdex/talentdex/internal/domain/candidate"
	"github.com/talentdex/talentdex/internal/domain/criteria"
	"github.com/talentdex/talentdex/internal/domain/predicate"
)

type mockCompiler struct {
	compileFunc func(ctx context.Context, rawQuery string, crit criteria.Set, repairContext string) (predicate.Refined, error)
	broadFunc   func(ctx context.Context, rawQuery string, crit criteria.Set) (predicate.Broad, error)
}

func (m *mockCompiler) CompilePredicate(ctx context.Context, rawQuery string, crit criteria.Set, repairContext string) (predicate.Refined, error) {
	return m.compileFunc(ctx, rawQuery, crit, repairContext)
}

func (m *mockCompiler) CompileBroadRecall(ctx context.Context, rawQuery string, crit criteria.Set) (predicate.Broad, error) {
	return m.broadFunc(ctx, rawQuery, crit)
}

type mockExecutor struct {
	executeFunc func(ctx context.Context, predicateText string, limit, offset, pageIndex int) ([]candidate.Record, error)
}

func (m *mockExecutor) Execute(ctx context.Context, predicateText string, limit, offset, pageIndex int) ([]candidate.Record, error) {
	return m.executeFunc(ctx, predicateText, limit, offset, pageIndex)
}

func testRefined(t *testing.T, field, term string) predicate.Refined {
	t.Helper()
	alt, err := predicate.NewAlternative(field, term)
	if err != nil {
		t.Fatal(err)
	}
	group, err := predicate.NewGroup(term, []predicate.Alternative{alt})
	if err != nil {
		t.Fatal(err)
	}
	p, err := predicate.New([]predicate.Group{group})
	if err != nil {
		t.Fatal(err)
	}
	refined, err := predicate.Refine(p, 200)
	if err != nil {
		t.Fatal(err)
	}
	return refined
}

func testBroad(t *testing.T, terms ...string) predicate.Broad {
	t.Helper()
	set, err := predicate.NewTermSet(terms, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	broad, err := predicate.NewBroad([]predicate.TermSet{set})
	if err != nil {
		t.Fatal(err)
	}
	return broad
}

func records(ids ...string) []candidate.Record {
	out := make([]candidate.Record, len(ids))
	for i, id := range ids {
		out[i] = candidate.Reconstruct(id, "name "+id, "", "", 0, nil, "")
	}
	return out
}

func recordIDs(records []candidate.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID()
	}
	return out
}
