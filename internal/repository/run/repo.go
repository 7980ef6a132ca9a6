// Package run persists run records as Redis JSON documents.
package run

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/talentdex/talentdex/internal/db"
	"github.com/talentdex/talentdex/internal/domain"
	domcrit "github.com/talentdex/talentdex/internal/domain/criteria"
	domrun "github.com/talentdex/talentdex/internal/domain/run"
)

// store is the consumer interface for run persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

// Repo stores runs under {prefix}run:{id}.
type Repo struct {
	store  store
	prefix string
}

// New creates a run repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

func (r *Repo) key(id string) string {
	return fmt.Sprintf("%srun:%s", r.prefix, id)
}

// Save upserts the full run document. Criteria and predicate writes are
// idempotent overwrites; concurrent duplicate compilation is safe.
func (r *Repo) Save(ctx context.Context, rn domrun.Run) error {
	data, err := json.Marshal(toDTO(rn))
	if err != nil {
		return fmt.Errorf("marshal run %s: %w", rn.ID(), err)
	}
	if err := r.store.JSONSet(ctx, r.key(rn.ID()), "$", data); err != nil {
		return fmt.Errorf("save run %s: %w", rn.ID(), err)
	}
	return nil
}

// Get fetches a run by identifier.
func (r *Repo) Get(ctx context.Context, id string) (domrun.Run, error) {
	raw, err := r.store.JSONGet(ctx, r.key(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domrun.Run{}, fmt.Errorf("run %s: %w", id, domain.ErrRunNotFound)
		}
		return domrun.Run{}, fmt.Errorf("get run %s: %w", id, err)
	}

	var dto runDTO
	if err := json.Unmarshal(unwrapJSONPath(raw), &dto); err != nil {
		return domrun.Run{}, fmt.Errorf("decode run %s: %w", id, err)
	}
	return fromDTO(dto), nil
}

// SetStatus writes the run's progress label as a discrete path update.
func (r *Repo) SetStatus(ctx context.Context, id, status string) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	if err := r.store.JSONSet(ctx, r.key(id), "$.status", data); err != nil {
		return fmt.Errorf("set run %s status: %w", id, err)
	}
	return nil
}

// unwrapJSONPath strips the single-element array wrapper JSON.GET returns
// for $-rooted paths.
func unwrapJSONPath(raw []byte) []byte {
	if len(raw) >= 2 && raw[0] == '[' && raw[len(raw)-1] == ']' {
		return raw[1 : len(raw)-1]
	}
	return raw
}

type runDTO struct {
	ID         string   `json:"id"`
	UserID     string   `json:"user_id"`
	RawQuery   string   `json:"raw_query"`
	Paraphrase string   `json:"paraphrase,omitempty"`
	Rationale  string   `json:"rationale,omitempty"`
	Criteria   []string `json:"criteria,omitempty"`
	Predicate  string   `json:"predicate,omitempty"`
	Status     string   `json:"status"`
	Retries    int      `json:"retries"`
	CreatedAt  int64    `json:"created_at"`
}

func toDTO(rn domrun.Run) runDTO {
	crit := rn.Criteria()
	return runDTO{
		ID:         rn.ID(),
		UserID:     rn.UserID(),
		RawQuery:   rn.RawQuery(),
		Paraphrase: crit.Paraphrase(),
		Rationale:  crit.Rationale(),
		Criteria:   crit.Items(),
		Predicate:  rn.Predicate(),
		Status:     rn.Status(),
		Retries:    rn.Retries(),
		CreatedAt:  rn.CreatedAt(),
	}
}

func fromDTO(dto runDTO) domrun.Run {
	var crit domcrit.Set
	if len(dto.Criteria) > 0 {
		crit = domcrit.Reconstruct(dto.Paraphrase, dto.Rationale, dto.Criteria)
	}
	return domrun.Reconstruct(
		dto.ID, dto.UserID, dto.RawQuery, crit,
		dto.Predicate, dto.Status, dto.Retries, dto.CreatedAt,
	)
}
