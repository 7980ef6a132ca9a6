// Package page is the pipeline's entry point: it resolves a (run, page index)
// request from the page cache when possible and drives the full
// compile/search/score pipeline when it is not. Three resolution paths exist,
// cheapest first: a cached page is returned as-is, a cached predecessor's
// remainder is sliced, and only a cold start or an exhausted remainder pays
// for a datastore round trip.
package page

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentdex/talentdex/internal/domain"
	"github.com/talentdex/talentdex/internal/domain/candidate"
	dompage "github.com/talentdex/talentdex/internal/domain/page"
	"github.com/talentdex/talentdex/internal/domain/pool"
	"github.com/talentdex/talentdex/internal/domain/run"
	"github.com/talentdex/talentdex/internal/logger"
	"github.com/talentdex/talentdex/internal/metrics"
	"github.com/talentdex/talentdex/internal/usecase/fallback"
)

// Config holds the pagination tuning knobs.
type Config struct {
	// PageSize is the number of candidates per page.
	PageSize int
	// BatchSize is the scored pool size one datastore round trip targets.
	BatchSize int
	// ScoreSumFloor is the raw-scale score sum under which a batch boundary
	// triggers a fresh search instead of slicing the leftover remainder.
	ScoreSumFloor int
}

// Result is one resolved page.
type Result struct {
	// NextPageIndex is the index the client passes to fetch the page after
	// this one.
	NextPageIndex int
	Results       []candidate.Scored
	// IsNewSearch reports whether resolving this page hit the datastore.
	IsNewSearch bool
	// NoResults marks the legitimate empty terminal outcome.
	NoResults bool
}

// Service resolves pages and owns run lifecycle.
type Service struct {
	runs     RunStore
	pages    PageStore
	compiler Compiler
	searcher Searcher
	ranker   Ranker
	cfg      Config
	logger   *zap.Logger
}

// New creates a page service.
func New(runs RunStore, pages PageStore, compiler Compiler, searcher Searcher, ranker Ranker, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		runs: runs, pages: pages,
		compiler: compiler, searcher: searcher, ranker: ranker,
		cfg: cfg, logger: log,
	}
}

// CreateRun registers a new search run for later page requests. Compilation
// is deferred to the first GetPage call.
func (s *Service) CreateRun(ctx context.Context, userID, rawQuery string) (run.Run, error) {
	r, err := run.New(uuid.NewString(), userID, rawQuery, time.Now().UnixMilli())
	if err != nil {
		return run.Run{}, fmt.Errorf("create run: %w", err)
	}
	if err := s.runs.Save(ctx, r); err != nil {
		return run.Run{}, fmt.Errorf("create run: %w", err)
	}
	logger.FromContext(ctx).Info("run created",
		zap.String("run_id", r.ID()),
		zap.String("user_id", userID),
	)
	return r, nil
}

// GetRun returns the run's current state.
func (s *Service) GetRun(ctx context.Context, id string) (run.Run, error) {
	return s.runs.Get(ctx, id)
}

// GetPage resolves one page of ranked results for a run.
func (s *Service) GetPage(ctx context.Context, runID string, pageIndex int) (Result, error) {
	if pageIndex < 0 {
		return Result{}, fmt.Errorf("page index must be non-negative, got %d", pageIndex)
	}

	if p, err := s.pages.Get(ctx, runID, pageIndex); err == nil {
		metrics.PageCacheTotal.WithLabelValues("hit").Inc()
		return Result{NextPageIndex: pageIndex + 1, Results: p.Entries()}, nil
	} else if !errors.Is(err, domain.ErrPageNotFound) {
		return Result{}, err
	}

	r, err := s.runs.Get(ctx, runID)
	if err != nil {
		return Result{}, err
	}

	if pageIndex > 0 {
		prev, err := s.pages.Get(ctx, runID, pageIndex-1)
		if err == nil {
			return s.advance(ctx, r, prev, pageIndex)
		}
		if !errors.Is(err, domain.ErrPageNotFound) {
			return Result{}, err
		}
		// No predecessor cached; fall through to a full pipeline pass.
	}

	return s.coldStart(ctx, r, pageIndex)
}

// advance derives page pageIndex from its predecessor's remainder. Slicing is
// free; a fresh search happens only on a batch boundary whose upcoming block
// scores too low to be worth showing.
func (s *Service) advance(ctx context.Context, r run.Run, prev dompage.Page, pageIndex int) (Result, error) {
	rem := prev.Remainder()

	if !s.onBatchBoundary(len(rem), pageIndex) || s.blockScore(rem, r.Criteria().Len()) >= float64(s.cfg.ScoreSumFloor) {
		entries, newRem := cut(rem, s.cfg.PageSize)
		if err := s.persist(ctx, r.ID(), pageIndex, entries, newRem); err != nil {
			return Result{}, err
		}
		metrics.PageCacheTotal.WithLabelValues("slice").Inc()
		return Result{NextPageIndex: pageIndex + 1, Results: entries}, nil
	}

	// Consumed rows so far: shown pages plus the leftover remainder.
	offset := pageIndex*s.cfg.PageSize + len(rem)
	scored, err := s.searchAndScore(ctx, r, offset, pageIndex)
	if err != nil {
		return Result{}, err
	}

	merged := pool.MergeMaxScore(rem, scored)
	entries, newRem := cut(merged, s.cfg.PageSize)
	if err := s.persist(ctx, r.ID(), pageIndex, entries, newRem); err != nil {
		return Result{}, err
	}
	if err := s.runs.SetStatus(ctx, r.ID(), run.StatusComplete); err != nil {
		return Result{}, err
	}
	metrics.PageCacheTotal.WithLabelValues("search").Inc()
	return Result{NextPageIndex: pageIndex + 1, Results: entries, IsNewSearch: true}, nil
}

// coldStart runs the full pipeline: compile if needed, search, score, persist.
func (s *Service) coldStart(ctx context.Context, r run.Run, pageIndex int) (Result, error) {
	log := logger.FromContext(ctx)

	if !r.Compiled() {
		if err := s.runs.SetStatus(ctx, r.ID(), run.StatusCompiling); err != nil {
			return Result{}, err
		}
		crit, refined, err := s.compiler.Compile(ctx, r.RawQuery())
		if err != nil {
			s.markFailed(ctx, r.WithRetry())
			return Result{}, fmt.Errorf("compile run %s: %w", r.ID(), err)
		}
		r, err = r.WithCompilation(crit, refined.SelectPass())
		if err != nil {
			return Result{}, fmt.Errorf("compile run %s: %w", r.ID(), err)
		}
		if err := s.runs.Save(ctx, r); err != nil {
			return Result{}, fmt.Errorf("save compiled run %s: %w", r.ID(), err)
		}
		log.Info("run compiled",
			zap.String("run_id", r.ID()),
			zap.Int("criteria", crit.Len()),
		)
	}

	scored, err := s.searchAndScore(ctx, r, 0, pageIndex)
	if err != nil {
		return Result{}, err
	}

	if len(scored) == 0 {
		if err := s.persist(ctx, r.ID(), pageIndex, nil, nil); err != nil {
			return Result{}, err
		}
		if err := s.runs.SetStatus(ctx, r.ID(), run.StatusNoResults); err != nil {
			return Result{}, err
		}
		metrics.PageCacheTotal.WithLabelValues("search").Inc()
		return Result{NextPageIndex: pageIndex + 1, IsNewSearch: true, NoResults: true}, nil
	}

	// A cold start for a later page slices its window out of the fresh pool.
	start := pageIndex * s.cfg.PageSize
	if start > len(scored) {
		start = len(scored)
	}
	entries, newRem := cut(scored[start:], s.cfg.PageSize)
	if err := s.persist(ctx, r.ID(), pageIndex, entries, newRem); err != nil {
		return Result{}, err
	}
	if err := s.runs.SetStatus(ctx, r.ID(), run.StatusComplete); err != nil {
		return Result{}, err
	}
	metrics.PageCacheTotal.WithLabelValues("search").Inc()
	return Result{NextPageIndex: pageIndex + 1, Results: entries, IsNewSearch: true}, nil
}

// searchAndScore runs the fallback ladder and the reranker, updating run
// status around each stage.
func (s *Service) searchAndScore(ctx context.Context, r run.Run, offset, pageIndex int) ([]candidate.Scored, error) {
	if err := s.runs.SetStatus(ctx, r.ID(), run.StatusSearching); err != nil {
		return nil, err
	}

	records, err := s.searcher.Run(ctx, fallback.Request{
		RawQuery:   r.RawQuery(),
		Criteria:   r.Criteria(),
		SelectPass: r.Predicate(),
		Offset:     offset,
		PageIndex:  pageIndex,
	})
	if err != nil {
		s.markFailed(ctx, r)
		return nil, fmt.Errorf("search run %s: %w", r.ID(), err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	if err := s.runs.SetStatus(ctx, r.ID(), run.StatusScoring); err != nil {
		return nil, err
	}
	scored, err := s.ranker.Rank(ctx, r.ID(), r.RawQuery(), r.Criteria(), records)
	if err != nil {
		s.markFailed(ctx, r)
		return nil, fmt.Errorf("score run %s: %w", r.ID(), err)
	}
	return scored, nil
}

// blockScore sums the upcoming block's top page worth of scores on the raw
// scale (score times twice the criteria count), the scale the floor is
// expressed in.
func (s *Service) blockScore(rem []candidate.Scored, criteriaCount int) float64 {
	if criteriaCount == 0 {
		criteriaCount = 1
	}
	n := s.cfg.PageSize
	if n > len(rem) {
		n = len(rem)
	}
	sum := 0.0
	for _, sc := range rem[:n] {
		sum += sc.Score() * float64(2*criteriaCount)
	}
	return sum
}

// onBatchBoundary reports whether page pageIndex exhausts the rows fetched so
// far. A short remainder off-boundary means the datastore itself ran dry, so
// re-searching would be wasted work.
func (s *Service) onBatchBoundary(remainderLen, pageIndex int) bool {
	return (remainderLen+pageIndex*s.cfg.PageSize)%s.cfg.BatchSize == 0
}

func (s *Service) persist(ctx context.Context, runID string, index int, entries, remainder []candidate.Scored) error {
	p, err := dompage.New(runID, index, entries, remainder)
	if err != nil {
		return fmt.Errorf("build page %s/%d: %w", runID, index, err)
	}
	if err := s.pages.Upsert(ctx, p); err != nil {
		return err
	}
	return nil
}

func (s *Service) markFailed(ctx context.Context, r run.Run) {
	if r.Retries() > 0 {
		if err := s.runs.Save(ctx, r); err != nil {
			logger.FromContext(ctx).Warn("retry counter save failed", zap.Error(err))
		}
	}
	if err := s.runs.SetStatus(ctx, r.ID(), run.StatusFailed); err != nil {
		logger.FromContext(ctx).Warn("status update failed",
			zap.String("run_id", r.ID()),
			zap.Error(err),
		)
	}
}

func cut(items []candidate.Scored, n int) (entries, rest []candidate.Scored) {
	if n > len(items) {
		n = len(items)
	}
	return items[:n], items[n:]
}
