package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"wallet-ledger/config"
	httpHandler "wallet-ledger/internal/adapter/http/handler"
	"wallet-ledger/internal/adapter/notify"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(os.Getenv("WLG_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config:\n%v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("storage", cfg.Storage.Driver).
		Int("port", cfg.Server.Port).
		Msg("Starting Wallet Ledger")

	ctx := context.Background()

	// Storage backend (repositories, OTP store, rate limits, health)
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer st.Close()

	// Initialize core services
	keys, err := service.DeriveKeys(cfg.Crypto.MasterKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to derive keys")
	}
	grants := service.NewGrantSigner(keys.Grant, service.DefaultGrantTTL)
	envelopes, err := service.NewAESEnvelopeService(keys.Envelope, grants, logger.Component(log, "envelope"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize envelope service")
	}
	webhookSigner := service.NewHMACWebhookSigner()
	hashSvc, err := service.NewArgon2HashService(service.Argon2Params{
		MemoryKiB:   cfg.Crypto.Argon2.MemoryKiB,
		Iterations:  cfg.Crypto.Argon2.Iterations,
		Parallelism: cfg.Crypto.Argon2.Parallelism,
		KeyLen:      32,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid crypto.argon2 settings")
	}
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	notifier, err := notify.New(cfg.Notifier, webhookSigner, logger.Component(log, "notify"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize notifier")
	}

	// Initialize business services
	otpSvc := service.NewOtpService(st.OtpStore, notifier, keys.OtpMAC, grants, service.OtpConfig{
		TTL:         cfg.OTP.TTL,
		Length:      cfg.OTP.Length,
		MaxAttempts: cfg.OTP.MaxAttempts,
	}, logger.Component(log, "otp"))
	authSvc := service.NewAuthService(st.Accounts, hashSvc, otpSvc, tokenSvc, cfg.Ledger.InitialBalance, logger.Component(log, "auth"))
	ledgerSvc := service.NewLedgerService(
		st.Accounts,
		st.Transactions,
		st.Chain,
		st.Transactor,
		authSvc,
		envelopes,
		logger.Component(log, "ledger"),
	)
	historySvc := service.NewHistoryService(
		st.Accounts,
		st.Transactions,
		otpSvc,
		envelopes,
		cfg.Ledger.HistoryLimit,
		logger.Component(log, "history"),
	)
	chainSvc := service.NewChainService(st.Chain, st.Transactor, logger.Component(log, "chain"))
	auditSvc := service.NewAuditService(st.Audit, logger.Component(log, "audit"))

	// Genesis must exist before the first transfer.
	if err := chainSvc.EnsureGenesis(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to create genesis block")
	}
	if report, err := chainSvc.VerifyIntegrity(ctx); err != nil {
		log.Error().Err(err).Msg("Boot-time chain verification failed")
	} else {
		log.Info().Bool("valid", report.Valid).Int("length", report.Length).Msg("Chain verified")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		LedgerSvc:      ledgerSvc,
		HistorySvc:     historySvc,
		ChainSvc:       chainSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: st.RateLimits,
		HealthCheckers: st.HealthCheckers,
		AuditSvc:       auditSvc,
		Mode:           cfg.Server.Mode,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
