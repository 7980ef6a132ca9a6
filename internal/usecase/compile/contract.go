package compile

import "context"

// Inferencer is the consumer interface for LLM completions (ISP).
type Inferencer interface {
	Infer(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
