// Package rerank scores a candidate pool against the run's evaluation
// criteria with an LLM, a bounded worker pool fanning out one scoring call
// per candidate. A single candidate's failure degrades that candidate to
// score zero; it never fails the batch.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/talentdex/talentdex/internal/domain/candidate"
	"github.com/talentdex/talentdex/internal/domain/criteria"
	"github.com/talentdex/talentdex/internal/logger"
	"github.com/talentdex/talentdex/internal/metrics"
)

// Service scores candidate pools.
type Service struct {
	llm          Inferencer
	explanations ExplanationStore
	workers      *ants.Pool
	reviewCap    int
	logger       *zap.Logger
}

// New creates a rerank service backed by a pool of workers goroutines.
// At most reviewCap candidates are scored per batch; the rest of the pool is
// dropped before scoring.
func New(llm Inferencer, explanations ExplanationStore, workers, reviewCap int, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create rerank worker pool: %w", err)
	}
	return &Service{llm: llm, explanations: explanations, workers: p, reviewCap: reviewCap, logger: log}, nil
}

// Close releases the worker pool.
func (s *Service) Close() {
	s.workers.Release()
}

// Rank scores the pool against the criteria and returns the result sorted by
// descending score, ties broken by ascending identifier. Output slots are
// pre-assigned by input position, so concurrent workers never contend.
func (s *Service) Rank(ctx context.Context, runID, rawQuery string, crit criteria.Set, pool []candidate.Record) ([]candidate.Scored, error) {
	if len(pool) == 0 {
		return nil, nil
	}
	if len(pool) > s.reviewCap {
		pool = pool[:s.reviewCap]
	}

	out := make([]candidate.Scored, len(pool))
	var wg sync.WaitGroup
	for i, rec := range pool {
		i, rec := i, rec
		wg.Add(1)
		task := func() {
			defer wg.Done()
			out[i] = s.scoreOne(ctx, runID, rawQuery, crit, rec)
		}
		if err := s.workers.Submit(task); err != nil {
			// Pool released or overloaded; score on the caller's goroutine.
			task()
		}
	}
	wg.Wait()

	candidate.SortScored(out)
	return out, nil
}

type verdictDTO struct {
	Label  string `json:"label"`
	Remark string `json:"remark"`
}

// scoreOne judges one candidate. Any failure, provider error, malformed
// verdicts, wrong verdict count, degrades to score zero rather than
// propagating: one bad candidate must not sink the other forty-nine.
func (s *Service) scoreOne(ctx context.Context, runID, rawQuery string, crit criteria.Set, rec candidate.Record) candidate.Scored {
	raw, err := s.llm.Infer(ctx, scorerSystemPrompt, scorerUserPrompt(rawQuery, crit, rec))
	if err != nil {
		return s.degrade(ctx, rec.ID(), fmt.Errorf("infer: %w", err))
	}

	verdicts, err := decodeVerdicts(raw, crit.Len())
	if err != nil {
		return s.degrade(ctx, rec.ID(), err)
	}

	score := candidate.Normalize(verdicts, crit.Len())
	explanation := renderExplanation(crit, verdicts)

	// Best effort: a lost explanation degrades display, not scoring.
	if err := s.explanations.Save(ctx, runID, rec.ID(), explanation); err != nil {
		logger.FromContext(ctx).Warn("explanation save failed",
			zap.String("candidate_id", rec.ID()),
			zap.Error(err),
		)
	}

	return candidate.NewScored(rec.ID(), score, explanation)
}

func (s *Service) degrade(ctx context.Context, candidateID string, err error) candidate.Scored {
	metrics.RerankDegradedTotal.Inc()
	logger.FromContext(ctx).Warn("candidate scoring degraded",
		zap.String("candidate_id", candidateID),
		zap.Error(err),
	)
	return candidate.NewScored(candidateID, 0, "")
}

// decodeVerdicts parses the scorer's response strictly: a JSON array with
// exactly one valid verdict per criterion. Anything else is rejected whole.
func decodeVerdicts(raw string, criteriaCount int) ([]candidate.Verdict, error) {
	payload := stripFences(raw)

	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.DisallowUnknownFields()
	var dtos []verdictDTO
	if err := dec.Decode(&dtos); err != nil {
		return nil, fmt.Errorf("decode verdicts: %w", err)
	}
	if len(dtos) != criteriaCount {
		return nil, fmt.Errorf("got %d verdicts for %d criteria", len(dtos), criteriaCount)
	}

	verdicts := make([]candidate.Verdict, len(dtos))
	for i, dto := range dtos {
		label := candidate.Label(dto.Label)
		if !label.Valid() {
			return nil, fmt.Errorf("unknown verdict label %q", dto.Label)
		}
		verdicts[i] = candidate.Verdict{Label: label, Remark: dto.Remark}
	}
	return verdicts, nil
}

func renderExplanation(crit criteria.Set, verdicts []candidate.Verdict) string {
	items := crit.Items()
	lines := make([]string, len(verdicts))
	for i, v := range verdicts {
		lines[i] = fmt.Sprintf("%s: %s. %s", items[i], v.Label, v.Remark)
	}
	return strings.Join(lines, "\n")
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
