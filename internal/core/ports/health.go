package ports

import "context"

// Health states reported per dependency and for the service as a whole.
const (
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
	HealthDegraded  = "degraded"
)

// HealthChecker is one dependency listed by GET /health.
type HealthChecker interface {
	// Ping returns nil when the dependency can serve ledger traffic.
	Ping(ctx context.Context) error
	// Name keys the dependency in the report.
	Name() string
}

// DependencyHealth is one entry of the /health report.
type DependencyHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
