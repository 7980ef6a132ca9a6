// Package page persists result pages and their scored remainders.
package page

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/talentdex/talentdex/internal/db"
	"github.com/talentdex/talentdex/internal/domain"
	"github.com/talentdex/talentdex/internal/domain/candidate"
	dompage "github.com/talentdex/talentdex/internal/domain/page"
)

// store is the consumer interface for page persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

// Repo stores pages under {prefix}page:{runID}:{index}.
type Repo struct {
	store  store
	prefix string
}

// New creates a page repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

func (r *Repo) key(runID string, index int) string {
	return fmt.Sprintf("%spage:%s:%d", r.prefix, runID, index)
}

// Upsert writes a page. Last write wins; the computation is idempotent given
// the same inputs, so concurrent duplicate derivation needs no locking.
func (r *Repo) Upsert(ctx context.Context, p dompage.Page) error {
	data, err := json.Marshal(toDTO(p))
	if err != nil {
		return fmt.Errorf("marshal page %s/%d: %w", p.RunID(), p.Index(), err)
	}
	if err := r.store.JSONSet(ctx, r.key(p.RunID(), p.Index()), "$", data); err != nil {
		return fmt.Errorf("upsert page %s/%d: %w", p.RunID(), p.Index(), err)
	}
	return nil
}

// Get fetches a page by run and index.
func (r *Repo) Get(ctx context.Context, runID string, index int) (dompage.Page, error) {
	raw, err := r.store.JSONGet(ctx, r.key(runID, index))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return dompage.Page{}, fmt.Errorf("page %s/%d: %w", runID, index, domain.ErrPageNotFound)
		}
		return dompage.Page{}, fmt.Errorf("get page %s/%d: %w", runID, index, err)
	}

	var dto pageDTO
	if err := json.Unmarshal(unwrapJSONPath(raw), &dto); err != nil {
		return dompage.Page{}, fmt.Errorf("decode page %s/%d: %w", runID, index, err)
	}
	return fromDTO(dto), nil
}

func unwrapJSONPath(raw []byte) []byte {
	if len(raw) >= 2 && raw[0] == '[' && raw[len(raw)-1] == ']' {
		return raw[1 : len(raw)-1]
	}
	return raw
}

type entryDTO struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

type pageDTO struct {
	RunID     string     `json:"run_id"`
	Index     int        `json:"index"`
	Entries   []entryDTO `json:"entries"`
	Remainder []entryDTO `json:"remainder,omitempty"`
}

func toDTO(p dompage.Page) pageDTO {
	return pageDTO{
		RunID:     p.RunID(),
		Index:     p.Index(),
		Entries:   entriesToDTO(p.Entries()),
		Remainder: entriesToDTO(p.Remainder()),
	}
}

func entriesToDTO(items []candidate.Scored) []entryDTO {
	out := make([]entryDTO, len(items))
	for i, s := range items {
		out[i] = entryDTO{ID: s.ID(), Score: s.Score()}
	}
	return out
}

func fromDTO(dto pageDTO) dompage.Page {
	return dompage.Reconstruct(dto.RunID, dto.Index, entriesFromDTO(dto.Entries), entriesFromDTO(dto.Remainder))
}

func entriesFromDTO(items []entryDTO) []candidate.Scored {
	if items == nil {
		return nil
	}
	out := make([]candidate.Scored, len(items))
	for i, e := range items {
		// Explanations live in their own keyspace; pages carry (id, score) only.
		out[i] = candidate.NewScored(e.ID, e.Score, "")
	}
	return out
}
