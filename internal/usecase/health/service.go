// Package health aggregates component availability checks for the health
// endpoint.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store     StorePinger
	inference InferenceChecker
}

// New creates a Service. inference can be nil.
func New(store StorePinger, inference InferenceChecker) *Service {
	return &Service{store: store, inference: inference}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.store.Ping(ctx); err != nil {
		checks["datastore"] = CheckError
	} else {
		checks["datastore"] = CheckOK
	}

	if s.inference != nil {
		if err := s.inference.HealthCheck(ctx); err != nil {
			checks["inference"] = CheckError
		} else {
			checks["inference"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
