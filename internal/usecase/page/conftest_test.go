package page

import (
	"context"
	"testing"

	"github.com/talentdex/talentdex/internal/domain/candidate"
	"github.com/talentdex/talentdex/internal/domain/criteria"
	dompage "github.com/talentdex/talentdex/internal/domain/page"
	"github.com/talentdex/talentdex/internal/domain/predicate"
	"github.com/talentdex/talentdex/internal/domain/run"
	"github.com/talentdex/talentdex/internal/usecase/fallback"
)

type mockRunStore struct {
	saveFunc      func(ctx context.Context, r run.Run) error
	getFunc       func(ctx context.Context, id string) (run.Run, error)
	setStatusFunc func(ctx context.Context, id, status string) error

	statuses []string
}

func (m *mockRunStore) Save(ctx context.Context, r run.Run) error {
	if m.saveFunc == nil {
		return nil
	}
	return m.saveFunc(ctx, r)
}

func (m *mockRunStore) Get(ctx context.Context, id string) (run.Run, error) {
	return m.getFunc(ctx, id)
}

func (m *mockRunStore) SetStatus(ctx context.Context, id, status string) error {
	m.statuses = append(m.statuses, status)
	if m.setStatusFunc == nil {
		return nil
	}
	return m.setStatusFunc(ctx, id, status)
}

type mockPageStore struct {
	getFunc    func(ctx context.Context, runID string, index int) (dompage.Page, error)
	upsertFunc func(ctx context.Context, p dompage.Page) error

	upserted []dompage.Page
}

func (m *mockPageStore) Get(ctx context.Context, runID string, index int) (dompage.Page, error) {
	return m.getFunc(ctx, runID, index)
}

func (m *mockPageStore) Upsert(ctx context.Context, p dompage.Page) error {
	m.upserted = append(m.upserted, p)
	if m.upsertFunc == nil {
		return nil
	}
	return m.upsertFunc(ctx, p)
}

type mockCompiler struct {
	compileFunc func(ctx context.Context, rawQuery string) (criteria.Set, predicate.Refined, error)
}

func (m *mockCompiler) Compile(ctx context.Context, rawQuery string) (criteria.Set, predicate.Refined, error) {
	return m.compileFunc(ctx, rawQuery)
}

type mockSearcher struct {
	runFunc func(ctx context.Context, req fallback.Request) ([]candidate.Record, error)
}

func (m *mockSearcher) Run(ctx context.Context, req fallback.Request) ([]candidate.Record, error) {
	return m.runFunc(ctx, req)
}

type mockRanker struct {
	rankFunc func(ctx context.Context, runID, rawQuery string, crit criteria.Set, pool []candidate.Record) ([]candidate.Scored, error)
}

func (m *mockRanker) Rank(ctx context.Context, runID, rawQuery string, crit criteria.Set, pool []candidate.Record) ([]candidate.Scored, error) {
	return m.rankFunc(ctx, runID, rawQuery, crit, pool)
}

func testRefined(t *testing.T) predicate.Refined {
	t.Helper()
	alt, err := predicate.NewAlternative("skills", "Go")
	if err != nil {
		t.Fatal(err)
	}
	group, err := predicate.NewGroup("go", []predicate.Alternative{alt})
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
