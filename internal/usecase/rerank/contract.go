package rerank

import "context"

// Inferencer is the consumer interface for LLM completions (ISP).
type Inferencer interface {
	Infer(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ExplanationStore is the consumer interface for explanation persistence (ISP).
type ExplanationStore interface {
	Save(ctx context.Context, runID, candidateID, text string) error
}
