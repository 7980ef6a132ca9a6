package health

import "context"

// StorePinger checks datastore availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// InferenceChecker checks LLM provider availability.
type InferenceChecker interface {
	HealthCheck(ctx context.Context) error
}
