package compile

import "context"

type mockInferencer struct {
	inferFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func (m *mockInferencer) Infer(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.inferFunc(ctx, systemPrompt, userPrompt)
}
