// Package explanation persists per-candidate scoring explanations for later
// display. Best-effort storage: callers log failures and continue.
package explanation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/talentdex/talentdex/internal/db"
	"github.com/talentdex/talentdex/internal/domain"
)

// store is the consumer interface for explanation persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Repo stores explanations under {prefix}explanation:{runID}:{candidateID}.
type Repo struct {
	store  store
	prefix string
	ttl    time.Duration
}

// New creates an explanation repository. Entries expire after ttl.
func New(s store, prefix string, ttl time.Duration) *Repo {
	return &Repo{store: s, prefix: prefix, ttl: ttl}
}

func (r *Repo) key(runID, candidateID string) string {
	return fmt.Sprintf("%sexplanation:%s:%s", r.prefix, runID, candidateID)
}

// Save persists one candidate's explanation for a run.
func (r *Repo) Save(ctx context.Context, runID, candidateID, text string) error {
	if err := r.store.SetWithTTL(ctx, r.key(runID, candidateID), []byte(text), r.ttl); err != nil {
		return fmt.Errorf("save explanation %s/%s: %w", runID, candidateID, err)
	}
	return nil
}

// Get fetches one candidate's explanation for a run.
func (r *Repo) Get(ctx context.Context, runID, candidateID string) (string, error) {
	data, err := r.store.Get(ctx, r.key(runID, candidateID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", fmt.Errorf("explanation %s/%s: %w", runID, candidateID, domain.ErrExplanationNotFound)
		}
		return "", fmt.Errorf("get explanation %s/%s: %w", runID, candidateID, err)
	}
	return string(data), nil
}
