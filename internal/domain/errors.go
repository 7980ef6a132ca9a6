package domain

import "errors"

var (
	// ErrRunNotFound signals a missing run record.
	ErrRunNotFound = errors.New("run not found")
	// ErrPageNotFound signals a missing result page.
	ErrPageNotFound = errors.New("page not found")
	// ErrJobNotFound signals a missing execution job.
	ErrJobNotFound = errors.New("execution job not found")
	// ErrExplanationNotFound signals a missing scoring explanation.
	ErrExplanationNotFound = errors.New("explanation not found")

	// ErrMalformedCompilerOutput signals an LLM response that failed strict
	// schema validation. Retryable; no partial parse is accepted.
	ErrMalformedCompilerOutput = errors.New("malformed compiler output")
	// ErrInferenceProvider signals an LLM provider failure.
	ErrInferenceProvider = errors.New("inference provider error")

	// ErrExecutionFailed signals a worker-reported predicate execution failure.
	ErrExecutionFailed = errors.New("predicate execution failed")
	// ErrExecutionTimeout signals that the execution wall-clock budget elapsed
	// before the job reached a terminal state. Distinct from ErrExecutionFailed:
	// the fallback ladder repairs timeouts for speed and plain errors for recall.
	ErrExecutionTimeout = errors.New("predicate execution timed out")

	// ErrInvalidPredicate signals a structurally invalid predicate.
	ErrInvalidPredicate = errors.New("invalid predicate")
	// ErrInvalidCriteria signals a criteria set violating its constraints.
	ErrInvalidCriteria = errors.New("invalid criteria")
)
