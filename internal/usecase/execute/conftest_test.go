package execute

import (
	"context"

	"github.com/talentdex/talentdex/internal/domain/candidate"
	"github.com/talentdex/talentdex/internal/domain/job"
)

type mockJobStore struct {
	submitFunc func(ctx context.Context, j job.Job) error
	pollFunc   func(ctx context.Context, id string) (job.Job, error)
}

func (m *mockJobStore) Submit(ctx context.Context, j job.Job) error {
	return m.submitFunc(ctx, j)
}

func (m *mockJobStore) Poll(ctx context.Context, id string) (job.Job, error) {
	return m.pollFunc(ctx, id)
}

type mockCandidateReader struct {
	hydrateFunc func(ctx context.Context, ids []string) ([]candidate.Record, error)
}

func (m *mockCandidateReader) Hydrate(ctx context.Context, ids []string) ([]candidate.Record, error) {
	return m.hydrateFunc(ctx, ids)
}
