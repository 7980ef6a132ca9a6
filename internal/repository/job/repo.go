// Package job implements the caller side of the execution worker protocol:
// submitting job records and polling them until a terminal state.
package job

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/talentdex/talentdex/internal/domain"
	domjob "github.com/talentdex/talentdex/internal/domain/job"
)

// store is the consumer interface for job persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	LPush(ctx context.Context, key string, values ...string) error
	LLen(ctx context.Context, key string) (int64, error)
}

// Repo stores jobs under {prefix}job:{id} and hands identifiers to the
// external worker via the {prefix}jobs:queue list.
type Repo struct {
	store  store
	prefix string
}

// New creates a job repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

func (r *Repo) key(id string) string {
	return fmt.Sprintf("%sjob:%s", r.prefix, id)
}

func (r *Repo) queueKey() string {
	return r.prefix + "jobs:queue"
}

// Submit writes the job record and enqueues its id for the external worker.
// The HSet atomically resets any prior result fields for the key.
func (r *Repo) Submit(ctx context.Context, j domjob.Job) error {
	fields := map[string]string{
		"predicate":  j.Predicate(),
		"limit":      strconv.Itoa(j.Limit()),
		"offset":     strconv.Itoa(j.Offset()),
		"page":       strconv.Itoa(j.PageIndex()),
		"status":     string(domjob.StatusQueued),
		"result_ids": "",
		"error":      "",
	}
	if err := r.store.HSet(ctx, r.key(j.ID()), fields); err != nil {
		return fmt.Errorf("submit job %s: %w", j.ID(), err)
	}
	if err := r.store.LPush(ctx, r.queueKey(), j.ID()); err != nil {
		return fmt.Errorf("enqueue job %s: %w", j.ID(), err)
	}
	return nil
}

// Poll reads the job's current state as written by the external worker.
func (r *Repo) Poll(ctx context.Context, id string) (domjob.Job, error) {
	fields, err := r.store.HGetAll(ctx, r.key(id))
	if err != nil {
		return domjob.Job{}, fmt.Errorf("poll job %s: %w", id, err)
	}
	if len(fields) == 0 {
		return domjob.Job{}, fmt.Errorf("job %s: %w", id, domain.ErrJobNotFound)
	}

	limit, _ := strconv.Atoi(fields["limit"])
	offset, _ := strconv.Atoi(fields["offset"])
	page, _ := strconv.Atoi(fields["page"])

	var resultIDs []string
	if raw := fields["result_ids"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &resultIDs); err != nil {
			return domjob.Job{}, fmt.Errorf("decode job %s result ids: %w", id, err)
		}
	}

	return domjob.Reconstruct(
		id, fields["predicate"], limit, offset, page,
		domjob.Status(fields["status"]), resultIDs, fields["error"],
	), nil
}

// QueueDepth returns the number of jobs awaiting the external worker.
func (r *Repo) QueueDepth(ctx context.Context) (int64, error) {
	n, err := r.store.LLen(ctx, r.queueKey())
	if err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return n, nil
}
