package execute

import (
	"context"

	"github.com/talentdex/talentdex/internal/domain/candidate"
	"github.com/talentdex/talentdex/internal/domain/job"
)

// JobStore is the consumer interface for the execution worker protocol (ISP).
type JobStore interface {
	Submit(ctx context.Context, j job.Job) error
	Poll(ctx context.Context, id string) (job.Job, error)
}

// CandidateReader is the consumer interface for candidate hydration (ISP).
type CandidateReader interface {
	Hydrate(ctx context.Context, ids []string) ([]candidate.Record, error)
}
