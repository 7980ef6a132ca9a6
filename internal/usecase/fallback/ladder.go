// Package fallback widens a failing or starved search through a fixed ladder
// of tiers: the precise predicate as compiled, a repaired recompilation whose
// repair bias depends on how the precise tier failed, and a recall-first
// full-text query once structured logic has been abandoned. Results from all
// tiers are unioned; later tiers add to the pool, they never replace it.
package fallback

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/talentdex/talentdex/internal/domain"
	"github.com/talentdex/talentdex/internal/domain/candidate"
	"github.com/talentdex/talentdex/internal/domain/criteria"
	"github.com/talentdex/talentdex/internal/domain/pool"
	"github.com/talentdex/talentdex/internal/logger"
	"github.com/talentdex/talentdex/internal/metrics"
)

// Repair biases fed back to the compiler on tier two. A timeout means the
// predicate was too expensive, so the repair targets execution cost; a worker
// error or a starved pool means it was too narrow, so the repair targets
// recall.
const (
	repairRestructure = "The previous version of this predicate was too slow to execute. " +
		"Produce an equivalent predicate restructured for speed: prefer cheap fields, " +
		"fewer alternatives per group, and no redundant groups. Do not change which " +
		"candidates it matches."
	repairBroaden = "The previous version of this predicate matched too few candidates. " +
		"Broaden it: add more synonym and bilingual alternatives per group and relax " +
		"overly specific terms. Keep one group per user requirement."
)

// Config holds the ladder's tuning knobs.
type Config struct {
	// BatchSize is the row limit for the structured tiers.
	BatchSize int
	// Tier2MinPool is the pool size below which the repaired tier runs.
	Tier2MinPool int
	// Tier3MinPool is the pool size below which the broad-recall tier runs.
	Tier3MinPool int
	// BroadLimitBoost is added to BatchSize for the broad-recall tier.
	BroadLimitBoost int
}

// Request is one ladder invocation.
type Request struct {
	RawQuery  string
	Criteria  criteria.Set
	// SelectPass is the precise tier's already-compiled first-pass statement.
	SelectPass string
	Offset     int
	PageIndex  int
}

// Service runs the fallback ladder.
type Service struct {
	compiler Compiler
	executor Executor
	cfg      Config
	logger   *zap.Logger
}

// New creates a fallback service.
func New(compiler Compiler, executor Executor, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{compiler: compiler, executor: executor, cfg: cfg, logger: log}
}

// Run executes the ladder and returns the unioned candidate pool in rank
// order (earlier tiers first, duplicates keep their first position).
// An empty pool is returned without error as long as at least one tier
// executed successfully; an error is returned only when every tier failed.
func (s *Service) Run(ctx context.Context, req Request) ([]candidate.Record, error) {
	log := logger.FromContext(ctx)

	current, tierErr := s.precise(ctx, req)
	if tierErr == nil && len(current) >= s.cfg.Tier2MinPool {
		return current, nil
	}

	repaired, repairErr := s.repaired(ctx, req, tierErr)
	if repairErr == nil {
		current = pool.MergeKeepRank(current, repaired)
	}
	if repairErr == nil && len(current) >= s.cfg.Tier3MinPool {
		return current, nil
	}

	broad, broadErr := s.broadRecall(ctx, req)
	if broadErr == nil {
		current = pool.MergeKeepRank(current, broad)
	}

	if tierErr != nil && repairErr != nil && broadErr != nil {
		return nil, fmt.Errorf("all fallback tiers failed: %w", broadErr)
	}

	log.Info("fallback ladder finished",
		zap.Int("pool", len(current)),
		zap.Bool("precise_failed", tierErr != nil),
		zap.Bool("repaired_failed", repairErr != nil),
		zap.Bool("broad_failed", broadErr != nil),
	)
	return current, nil
}

func (s *Service) precise(ctx context.Context, req Request) ([]candidate.Record, error) {
	records, err := s.executor.Execute(ctx, req.SelectPass, s.cfg.BatchSize, req.Offset, req.PageIndex)
	s.observe(ctx, "precise", records, err)
	return records, err
}

// repaired recompiles the predicate with a failure-specific repair bias and
// executes the result. The bias is the ladder's core distinction: a timeout
// gets restructured for speed, everything else gets broadened for recall.
func (s *Service) repaired(ctx context.Context, req Request, preciseErr error) ([]candidate.Record, error) {
	repair := repairBroaden
	if errors.Is(preciseErr, domain.ErrExecutionTimeout) {
		repair = repairRestructure
	}

	refined, err := s.compiler.CompilePredicate(ctx, req.RawQuery, req.Criteria, repair)
	if err != nil {
		s.observe(ctx, "repaired", nil, err)
		return nil, fmt.Errorf("repair compile: %w", err)
	}

	records, err := s.executor.Execute(ctx, refined.SelectPass(), s.cfg.BatchSize, req.Offset, req.PageIndex)
	s.observe(ctx, "repaired", records, err)
	return records, err
}

func (s *Service) broadRecall(ctx context.Context, req Request) ([]candidate.Record, error) {
	broad, err := s.compiler.CompileBroadRecall(ctx, req.RawQuery, req.Criteria)
	if err != nil {
		s.observe(ctx, "broad", nil, err)
		return nil, fmt.Errorf("broad compile: %w", err)
	}

	limit := s.cfg.BatchSize + s.cfg.BroadLimitBoost
	records, err := s.executor.Execute(ctx, broad.Render(), limit, req.Offset, req.PageIndex)
	s.observe(ctx, "broad", records, err)
	return records, err
}

func (s *Service) observe(ctx context.Context, tier string, records []candidate.Record, err error) {
	status := "ok"
	switch {
	case errors.Is(err, domain.ErrExecutionTimeout):
		status = "timeout"
	case err != nil:
		status = "error"
	case len(records) == 0:
		status = "empty"
	}
	metrics.SearchExecutionsTotal.WithLabelValues(tier, status).Inc()

	if err != nil {
		logger.FromContext(ctx).Warn("fallback tier failed",
			zap.String("tier", tier),
			zap.Error(err),
		)
	}
}
