// Package candidate hydrates full candidate records by identifier.
package candidate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	domcand "github.com/talentdex/talentdex/internal/domain/candidate"
)

// store is the consumer interface for candidate reads (ISP).
type store interface {
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// Repo reads candidate hashes under {prefix}candidate:{id}.
type Repo struct {
	store  store
	prefix string
}

// New creates a candidate repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Hydrate batch-fetches full records for the given identifiers. The result
// carries no ordering guarantee relative to ids; callers that need rank
// order must re-sort against the identifier list. Missing records are
// dropped silently (the datastore may have pruned them since execution).
func (r *Repo) Hydrate(ctx context.Context, ids []string) ([]domcand.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = fmt.Sprintf("%scandidate:%s", r.prefix, id)
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hydrate %d candidates: %w", len(ids), err)
	}

	out := make([]domcand.Record, 0, len(maps))
	for i, fields := range maps {
		if len(fields) == 0 {
			continue
		}
		out = append(out, parseRecord(ids[i], fields))
	}
	return out, nil
}

func parseRecord(id string, fields map[string]string) domcand.Record {
	years, _ := strconv.ParseFloat(fields["years"], 64)

	var skills []string
	if raw := fields["skills"]; raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}
	}

	return domcand.Reconstruct(
		id,
		fields["name"],
		fields["headline"],
		fields["location"],
		years,
		skills,
		fields["summary"],
	)
}
