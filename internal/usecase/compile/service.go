// Package compile turns a raw recruiter query into evaluation criteria and an
// executable predicate: criteria extraction, structured compilation with
// single-intent OR-groups, broad-recall compilation, and the two-phase
// refinement applied to every structured predicate before execution.
package compile

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talentdex/talentdex/internal/domain"
	"github.com/talentdex/talentdex/internal/domain/criteria"
	"github.com/talentdex/talentdex/internal/domain/predicate"
	"github.com/talentdex/talentdex/internal/logger"
)

// allowedFields are the candidate fields a compiled alternative may target.
var allowedFields = map[string]bool{
	"position":  true,
	"company":   true,
	"location":  true,
	"skills":    true,
	"education": true,
	"summary":   true,
	"profile":   true,
}

// Service compiles raw queries into criteria and predicates.
type Service struct {
	llm    Inferencer
	rowCap int
	logger *zap.Logger
}

// New creates a compile service. rowCap bounds the refined first pass and is
// validated by predicate.Refine on first use.
func New(llm Inferencer, rowCap int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{llm: llm, rowCap: rowCap, logger: log}
}

type extractorResponse struct {
	Paraphrase string   `json:"paraphrase"`
	Rationale  string   `json:"rationale"`
	Criteria   []string `json:"criteria"`
}

// ExtractCriteria derives 1..4 short evaluation criteria from the raw query.
func (s *Service) ExtractCriteria(ctx context.Context, rawQuery string) (criteria.Set, error) {
	raw, err := s.llm.Infer(ctx, extractorSystemPrompt, extractorUserPrompt(rawQuery))
	if err != nil {
		return criteria.Set{}, fmt.Errorf("extract criteria: %w", err)
	}

	var resp extractorResponse
	if err := decodeStrict(raw, &resp); err != nil {
		return criteria.Set{}, fmt.Errorf("extract criteria: %w", err)
	}

	set, err := criteria.New(resp.Paraphrase, resp.Rationale, resp.Criteria)
	if err != nil {
		return criteria.Set{}, fmt.Errorf("extract criteria: %v: %w", err, domain.ErrMalformedCompilerOutput)
	}

	logger.FromContext(ctx).Debug("criteria extracted",
		zap.Int("count", set.Len()),
		zap.String("paraphrase", set.Paraphrase()),
	)
	return set, nil
}

type compilerResponse struct {
	Groups []groupDTO `json:"groups"`
}

type groupDTO struct {
	Intent       string           `json:"intent"`
	Alternatives []alternativeDTO `json:"alternatives"`
}

type alternativeDTO struct {
	Field string `json:"field"`
	Term  string `json:"term"`
}

// CompilePredicate compiles the raw query into a refined two-phase predicate.
// repairContext, when non-empty, is fed back to the model so a repaired
// recompilation can correct the previous attempt's failure mode.
func (s *Service) CompilePredicate(ctx context.Context, rawQuery string, crit criteria.Set, repairContext string) (predicate.Refined, error) {
	raw, err := s.llm.Infer(ctx, compilerSystemPrompt, compilerUserPrompt(rawQuery, crit, repairContext))
	if err != nil {
		return predicate.Refined{}, fmt.Errorf("compile predicate: %w", err)
	}

	var resp compilerResponse
	if err := decodeStrict(raw, &resp); err != nil {
		return predicate.Refined{}, fmt.Errorf("compile predicate: %w", err)
	}

	p, err := buildPredicate(resp.Groups)
	if err != nil {
		return predicate.Refined{}, fmt.Errorf("compile predicate: %v: %w", err, domain.ErrMalformedCompilerOutput)
	}

	refined, err := predicate.Refine(p, s.rowCap)
	if err != nil {
		return predicate.Refined{}, fmt.Errorf("refine predicate: %w", err)
	}

	logger.FromContext(ctx).Debug("predicate compiled",
		zap.Int("groups", len(resp.Groups)),
		zap.Bool("repaired", repairContext != ""),
	)
	return refined, nil
}

func buildPredicate(dtos []groupDTO) (predicate.Predicate, error) {
	groups := make([]predicate.Group, 0, len(dtos))
	for _, g := range dtos {
		alts := make([]predicate.Alternative, 0, len(g.Alternatives))
		for _, a := range g.Alternatives {
			if !allowedFields[a.Field] {
				return predicate.Predicate{}, fmt.Errorf("unknown field %q", a.Field)
			}
			alt, err := predicate.NewAlternative(a.Field, a.Term)
			if err != nil {
				return predicate.Predicate{}, err
			}
			alts = append(alts, alt)
		}
		group, err := predicate.NewGroup(g.Intent, alts)
		if err != nil {
			return predicate.Predicate{}, err
		}
		groups = append(groups, group)
	}
	return predicate.New(groups)
}

type broadResponse struct {
	TermSets []termSetDTO `json:"term_sets"`
}

type termSetDTO struct {
	Terms  []string `json:"terms"`
	Weight float64  `json:"weight"`
}

// CompileBroadRecall compiles the raw query into a weighted full-text
// disjunction for the last fallback tier.
func (s *Service) CompileBroadRecall(ctx context.Context, rawQuery string, crit criteria.Set) (predicate.Broad, error) {
	raw, err := s.llm.Infer(ctx, broadSystemPrompt, broadUserPrompt(rawQuery, crit))
	if err != nil {
		return predicate.Broad{}, fmt.Errorf("compile broad recall: %w", err)
	}

	var resp broadResponse
	if err := decodeStrict(raw, &resp); err != nil {
		return predicate.Broad{}, fmt.Errorf("compile broad recall: %w", err)
	}

	sets := make([]predicate.TermSet, 0, len(resp.TermSets))
	for _, dto := range resp.TermSets {
		set, err := predicate.NewTermSet(dto.Terms, dto.Weight)
		if err != nil {
			return predicate.Broad{}, fmt.Errorf("compile broad recall: %v: %w", err, domain.ErrMalformedCompilerOutput)
		}
		sets = append(sets, set)
	}

	broad, err := predicate.NewBroad(sets)
	if err != nil {
		return predicate.Broad{}, fmt.Errorf("compile broad recall: %v: %w", err, domain.ErrMalformedCompilerOutput)
	}
	return broad, nil
}

// Compile runs criteria extraction and predicate compilation concurrently.
// The two calls are independent: the compiler works from the raw query, the
// criteria feed scoring later. Either failure fails the whole compilation.
func (s *Service) Compile(ctx context.Context, rawQuery string) (criteria.Set, predicate.Refined, error) {
	var (
		crit    criteria.Set
		refined predicate.Refined
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		crit, err = s.ExtractCriteria(ctx, rawQuery)
		return err
	})
	g.Go(func() error {
		var err error
		refined, err = s.CompilePredicate(ctx, rawQuery, criteria.Set{}, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return criteria.Set{}, predicate.Refined{}, err
	}
	return crit, refined, nil
}
