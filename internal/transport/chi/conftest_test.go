package chi

import (
	"context"

	"github.com/talentdex/talentdex/internal/domain/run"
	healthuc "github.com/talentdex/talentdex/internal/usecase/health"
	pageuc "github.com/talentdex/talentdex/internal/usecase/page"
)

type mockSearchService struct {
	createRunFunc func(ctx context.Context, userID, rawQuery string) (run.Run, error)
	getRunFunc    func(ctx context.Context, id string) (run.Run, error)
	getPageFunc   func(ctx context.Context, runID string, pageIndex int) (pageuc.Result, error)
}

func (m *mockSearchService) CreateRun(ctx context.Context, userID, rawQuery string) (run.Run, error) {
	return m.createRunFunc(ctx, userID, rawQuery)
}

func (m *mockSearchService) GetRun(ctx context.Context, id string) (run.Run, error) {
	return m.getRunFunc(ctx, id)
}

func (m *mockSearchService) GetPage(ctx context.Context, runID string, pageIndex int) (pageuc.Result, error) {
	return m.getPageFunc(ctx, runID, pageIndex)
}

type mockExplanationReader struct {
	getFunc func(ctx context.Context, runID, candidateID string) (string, error)
}

func (m *mockExplanationReader) Get(ctx context.Context, runID, candidateID string) (string, error) {
	return m.getFunc(ctx, runID, candidateID)
}

type mockHealthService struct {
	report healthuc.Report
}

func (m *mockHealthService) Check(ctx context.Context) healthuc.Report {
	return m.report
}
