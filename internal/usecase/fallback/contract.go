package fallback

import (
	"context"

	"github.com/talentdex/talentdex/internal/domain/candidate"
	"github.com/talentdex/talentdex/internal/domain/criteria"
	"github.com/talentdex/talentdex/internal/domain/predicate"
)

// Compiler is the consumer interface for repair recompilation (ISP).
type Compiler interface {
	CompilePredicate(ctx context.Context, rawQuery string, crit criteria.Set, repairContext string) (predicate.Refined, error)
	CompileBroadRecall(ctx context.Context, rawQuery string, crit criteria.Set) (predicate.Broad, error)
}

// Executor is the consumer interface for predicate execution (ISP).
type Executor interface {
	Execute(ctx context.Context, predicateText string, limit, offset, pageIndex int) ([]candidate.Record, error)
}
