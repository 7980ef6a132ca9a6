package page

import (
	"context"

	"github.com/talentdex/talentdex/internal/domain/candidate"
	"github.com/talentdex/talentdex/internal/domain/criteria"
	dompage "github.com/talentdex/talentdex/internal/domain/page"
	"github.com/talentdex/talentdex/internal/domain/predicate"
	"github.com/talentdex/talentdex/internal/domain/run"
	"github.com/talentdex/talentdex/internal/usecase/fallback"
)

// RunStore is the consumer interface for run persistence (ISP).
type RunStore interface {
	Save(ctx context.Context, r run.Run) error
	Get(ctx context.Context, id string) (run.Run, error)
	SetStatus(ctx context.Context, id, status string) error
}

// PageStore is the consumer interface for page persistence (ISP).
type PageStore interface {
	Upsert(ctx context.Context, p dompage.Page) error
	Get(ctx context.Context, runID string, index int) (dompage.Page, error)
}

// Compiler is the consumer interface for query compilation (ISP).
type Compiler interface {
	Compile(ctx context.Context, rawQuery string) (criteria.Set, predicate.Refined, error)
}

// Searcher is the consumer interface for the fallback search ladder (ISP).
type Searcher interface {
	Run(ctx context.Context, req fallback.Request) ([]candidate.Record, error)
}

// Ranker is the consumer interface for pool scoring (ISP).
type Ranker interface {
	Rank(ctx context.Context, runID, rawQuery string, crit criteria.Set, pool []candidate.Record) ([]candidate.Scored, error)
}
