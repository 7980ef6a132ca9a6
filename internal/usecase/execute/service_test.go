package execute

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/talentdex/talentdex/internal/domain"
	"github.com/talentdex/talentdex/internal/domain/candidate"
	"github.com/talentdex/talentdex/internal/domain/job"
)

func record(id string) candidate.Record {
	return candidate.Reconstruct(id, "name "+id, "", "", 0, nil, "")
}

func TestExecuteDone(t *testing.T) {
	var submitted job.Job
	polls := 0
	jobs := &mockJobStore{
		submitFunc: func(ctx context.Context, j job.Job) error {
			submitted = j
			return nil
		},
		pollFunc: func(ctx context.Context, id string) (job.Job, error) {
			polls++
			if polls < 2 {
				return job.Reconstruct(id, "p", 50, 0, 0, job.StatusRunning, nil, ""), nil
			}
			return job.Reconstruct(id, "p", 50, 0, 0, job.StatusDone, []string{"c2", "c1"}, ""), nil
		},
	}
	// Hydration returns records out of rank order on purpose.
	candidates := &mockCandidateReader{
		hydrateFunc: func(ctx context.Context, ids []string) ([]candidate.Record, error) {
			return []candidate.Record{record("c1"), record("c2")}, nil
		},
	}
	svc := New(jobs, candidates, time.Millisecond, time.Second, nil)

	got, err := svc.Execute(context.Background(), "WHERE x", 50, 0, 0)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if submitted.Status() != job.StatusQueued {
		t.Errorf("submitted status = %s, want queued", submitted.Status())
	}
	if len(got) != 2 || got[0].ID() != "c2" || got[1].ID() != "c1" {
		t.Errorf("records not in worker rank order: %v, %v", got[0].ID(), got[1].ID())
	}
}

func TestExecuteEmptyResultIsNotAnError(t *testing.T) {
	jobs := &mockJobStore{
		submitFunc: func(ctx context.Context, j job.Job) error { return nil },
		pollFunc: func(ctx context.Context, id string) (job.Job, error) {
			return job.Reconstruct(id, "p", 50, 0, 0, job.StatusDone, nil, ""), nil
		},
	}
	candidates := &mockCandidateReader{
		hydrateFunc: func(ctx context.Context, ids []string) ([]candidate.Record, error) {
			t.Fatal("Hydrate must not be called for an empty result")
			return nil, nil
		},
	}
	svc := New(jobs, candidates, time.Millisecond, time.Second, nil)

	got, err := svc.Execute(context.Background(), "WHERE x", 50, 0, 0)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("records = %d, want 0", len(got))
	}
}

func TestExecuteWorkerError(t *testing.T) {
	jobs := &mockJobStore{
		submitFunc: func(ctx context.Context, j job.Job) error { return nil },
		pollFunc: func(ctx context.Context, id string) (job.Job, error) {
			return job.Reconstruct(id, "p", 50, 0, 0, job.StatusError, nil, "syntax error near ILIKE"), nil
		},
	}
	svc := New(jobs, &mockCandidateReader{}, time.Millisecond, time.Second, nil)

	_, err := svc.Execute(context.Background(), "WHERE x", 50, 0, 0)
	if !errors.Is(err, domain.ErrExecutionFailed) {
		t.Fatalf("error = %v, want ErrExecutionFailed", err)
	}
	if errors.Is(err, domain.ErrExecutionTimeout) {
		t.Fatal("worker error must not match ErrExecutionTimeout")
	}
}

func TestExecuteBudgetTimeout(t *testing.T) {
	jobs := &mockJobStore{
		submitFunc: func(ctx context.Context, j job.Job) error { return nil },
		pollFunc: func(ctx context.Context, id string) (job.Job, error) {
			return job.Reconstruct(id, "p", 50, 0, 0, job.StatusRunning, nil, ""), nil
		},
	}
	svc := New(jobs, &mockCandidateReader{}, time.Millisecond, 20*time.Millisecond, nil)

	_, err := svc.Execute(context.Background(), "WHERE x", 50, 0, 0)
	if !errors.Is(err, domain.ErrExecutionTimeout) {
		t.Fatalf("error = %v, want ErrExecutionTimeout", err)
	}
	if errors.Is(err, domain.ErrExecutionFailed) {
		t.Fatal("budget timeout must not match ErrExecutionFailed")
	}
}

func TestExecuteContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	jobs := &mockJobStore{
		submitFunc: func(ctx context.Context, j job.Job) error { return nil },
		pollFunc: func(ctx context.Context, id string) (job.Job, error) {
			cancel()
			return job.Reconstruct(id, "p", 50, 0, 0, job.StatusRunning, nil, ""), nil
		},
	}
	svc := New(jobs, &mockCandidateReader{}, time.Millisecond, time.Second, nil)

	_, err := svc.Execute(ctx, "WHERE x", 50, 0, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestExecuteDropsPrunedRecords(t *testing.T) {
	jobs := &mockJobStore{
		submitFunc: func(ctx context.Context, j job.Job) error { return nil },
		pollFunc: func(ctx context.Context, id string) (job.Job, error) {
			return job.Reconstruct(id, "p", 50, 0, 0, job.StatusDone, []string{"c1", "gone", "c3"}, ""), nil
		},
	}
	candidates := &mockCandidateReader{
		hydrateFunc: func(ctx context.Context, ids []string) ([]candidate.Record, error) {
			return []candidate.Record{record("c3"), record("c1")}, nil
		},
	}
	svc := New(jobs, candidates, time.Millisecond, time.Second, nil)

	got, err := svc.Execute(context.Background(), "WHERE x", 50, 0, 0)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(got) != 2 || got[0].ID() != "c1" || got[1].ID() != "c3" {
		t.Errorf("unexpected records: %+v", got)
	}
}
