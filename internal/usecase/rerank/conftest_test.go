package rerank

import "context"

type mockInferencer struct {
	inferFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func (m *mockInferencer) Infer(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.inferFunc(ctx, systemPrompt, userPrompt)
}

type mockExplanationStore struct {
	saveFunc func(ctx context.Context, runID, candidateID, text string) error
}

func (m *mockExplanationStore) Save(ctx context.Context, runID, candidateID, text string) error {
	if m.saveFunc == nil {
		return nil
	}
	return m.saveFunc(ctx, runID, candidateID, text)
}
