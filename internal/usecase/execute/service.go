// Package execute runs one predicate against the datastore through the
// asynchronous worker protocol: submit a job, poll it to a terminal state
// under a wall-clock budget, then hydrate the winning identifiers into full
// candidate records.
package execute

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentdex/talentdex/internal/domain"
	"github.com/talentdex/talentdex/internal/domain/candidate"
	domjob "github.com/talentdex/talentdex/internal/domain/job"
	"github.com/talentdex/talentdex/internal/logger"
	"github.com/talentdex/talentdex/internal/metrics"
)

// Service executes predicates via the external datastore worker.
type Service struct {
	jobs       JobStore
	candidates CandidateReader
	interval   time.Duration
	budget     time.Duration
	logger     *zap.Logger
}

// New creates an execute service. interval is the poll cadence, budget the
// wall-clock limit after which the attempt is abandoned as a timeout.
func New(jobs JobStore, candidates CandidateReader, interval, budget time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{jobs: jobs, candidates: candidates, interval: interval, budget: budget, logger: log}
}

// Execute submits the predicate and blocks until the worker reports a
// terminal state or the budget elapses. Returns hydrated records in the
// worker's rank order. An empty result with no error is a valid zero-match
// outcome; ErrExecutionTimeout and ErrExecutionFailed distinguish a slow
// predicate from a broken one.
func (s *Service) Execute(ctx context.Context, predicateText string, limit, offset, pageIndex int) ([]candidate.Record, error) {
	j, err := domjob.New(uuid.NewString(), predicateText, limit, offset, pageIndex)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	if err := s.jobs.Submit(ctx, j); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Debug("job submitted",
		zap.String("job_id", j.ID()),
		zap.Int("limit", limit),
		zap.Int("offset", offset),
	)

	start := time.Now()
	final, err := s.awaitTerminal(ctx, j.ID())
	metrics.JobPollDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if final.Status() == domjob.StatusError {
		return nil, fmt.Errorf("job %s: %s: %w", final.ID(), final.ErrMsg(), domain.ErrExecutionFailed)
	}

	ids := final.ResultIDs()
	log.Debug("job done",
		zap.String("job_id", final.ID()),
		zap.Int("results", len(ids)),
		zap.Duration("elapsed", time.Since(start)),
	)
	if len(ids) == 0 {
		return nil, nil
	}

	records, err := s.candidates.Hydrate(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate job %s: %w", final.ID(), err)
	}
	return sortByRank(records, ids), nil
}

// awaitTerminal polls the job until done or error. The budget is enforced
// here rather than via context deadline so a timeout maps to the dedicated
// sentinel instead of a generic context error.
func (s *Service) awaitTerminal(ctx context.Context, id string) (domjob.Job, error) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	deadline := time.NewTimer(s.budget)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return domjob.Job{}, fmt.Errorf("poll job %s: %w", id, ctx.Err())
		case <-deadline.C:
			return domjob.Job{}, fmt.Errorf("job %s exceeded %s budget: %w", id, s.budget, domain.ErrExecutionTimeout)
		case <-ticker.C:
			j, err := s.jobs.Poll(ctx, id)
			if err != nil {
				return domjob.Job{}, fmt.Errorf("poll: %w", err)
			}
			if j.Status().Terminal() {
				return j, nil
			}
		}
	}
}

// sortByRank reorders hydrated records to the worker's id order. Hydration
// carries no ordering guarantee and may drop pruned records.
func sortByRank(records []candidate.Record, ids []string) []candidate.Record {
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}

	out := make([]candidate.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return rank[out[i].ID()] < rank[out[j].ID()]
	})
	return out
}
