package postgres

import (
	"context"
	"fmt"
	"time"
)

// HealthName keys Postgres in the /health report.
const HealthName = "postgres"

const healthPingTimeout = 2 * time.Second

// HealthCheck reports Postgres as healthy only when the ledger schema is reachable, so a database
// that is up but unmigrated shows as unhealthy.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

// Ping touches the chain table under its own short deadline.
func (h *HealthCheck) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	if _, err := h.pool.Exec(ctx, "SELECT 1 FROM chain_blocks LIMIT 1"); err != nil {
		return fmt.Errorf("ledger schema unreachable: %w", err)
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return HealthName
}
