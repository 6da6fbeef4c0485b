package main

import (
	"context"
	"fmt"

	"wallet-ledger/config"
	"wallet-ledger/internal/adapter/storage/memory"
	pgStorage "wallet-ledger/internal/adapter/storage/postgres"
	redisStorage "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// storage bundles the adapters selected by storage.driver.
type storage struct {
	Accounts       ports.AccountRepository
	Transactions   ports.TransactionRepository
	Chain          ports.ChainRepository
	Audit          ports.AuditRepository
	Transactor     ports.DBTransactor
	OtpStore       ports.OtpStore
	RateLimits     ports.RateLimitStore // nil disables rate limiting
	HealthCheckers []ports.HealthChecker

	closers []func()
}

// Close releases connections in reverse order of opening.
func (s *storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Warn().Msg("Using in-memory storage; all data is lost on exit")
		return openMemory(), nil
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func openMemory() *storage {
	store := memory.NewStore()
	return &storage{
		Accounts:       memory.NewAccountRepo(store),
		Transactions:   memory.NewTransactionRepo(store),
		Chain:          memory.NewChainRepo(store),
		Audit:          memory.NewAuditRepo(store),
		Transactor:     store,
		OtpStore:       memory.NewOtpStore(),
		HealthCheckers: []ports.HealthChecker{store},
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	st := &storage{}

	if cfg.Database.AutoMigrate {
		if err := pgStorage.Migrate(ctx, cfg.Database.DSN(), log); err != nil {
			return nil, fmt.Errorf("migrating database: %w", err)
		}
	}

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	st.closers = append(st.closers, pool.Close)
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	st.closers = append(st.closers, func() { _ = rdb.Close() })
	log.Info().Msg("Redis connected")

	st.Accounts = pgStorage.NewAccountRepo(pool)
	st.Transactions = pgStorage.NewTransactionRepo(pool)
	st.Chain = pgStorage.NewChainRepo(pool)
	st.Audit = pgStorage.NewAuditRepo(pool)
	st.Transactor = pgStorage.NewTransactor(pool, cfg.Database.LockTimeout)
	st.OtpStore = redisStorage.NewOtpStore(rdb)
	st.RateLimits = redisStorage.NewRateLimitStore(rdb)
	st.HealthCheckers = []ports.HealthChecker{
		pgStorage.NewHealthCheck(pool),
		redisStorage.NewHealthCheck(rdb),
	}
	return st, nil
}
