// Command ledgerctl is the operator tool for the wallet ledger database.
package main

import (
	"context"
	"fmt"
	"os"

	"wallet-ledger/config"
	pgStorage "wallet-ledger/internal/adapter/storage/postgres"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const (
	ctxConfig ctxKey = "config"
	ctxLogger ctxKey = "logger"
)

// openChain connects to the configured database and returns the chain service plus a release func.
var openChain = func(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.ChainService, func(), error) {
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	svc := service.NewChainService(pgStorage.NewChainRepo(pool), pgStorage.NewTransactor(pool, cfg.Database.LockTimeout), log)
	return svc, pool.Close, nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "ledgerctl",
		Usage: "operate the wallet ledger database and its transaction chain",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a config file (default: ./config.yaml or ./config/config.yaml)",
				EnvVars: []string{"WLG_CONFIG"},
			},
		},
		Before: func(cctx *cli.Context) error {
			_ = godotenv.Load()

			cfg, err := config.Load(cctx.String("config"))
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log.Level, true)

			cctx.Context = context.WithValue(cctx.Context, ctxConfig, cfg)
			cctx.Context = context.WithValue(cctx.Context, ctxLogger, log)
			return nil
		},
		Commands: []*cli.Command{
			migrateCmd,
			chainCmd,
		},
	}
}

func configFrom(cctx *cli.Context) *config.Config {
	return cctx.Context.Value(ctxConfig).(*config.Config)
}

func loggerFrom(cctx *cli.Context) zerolog.Logger {
	if log, ok := cctx.Context.Value(ctxLogger).(zerolog.Logger); ok {
		return log
	}
	return zerolog.Nop()
}

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Usage: "apply the embedded schema migrations",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "list", Usage: "only list the embedded migrations"},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.Bool("list") {
			names, err := pgStorage.MigrationFiles()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cctx.App.Writer, name)
			}
			return nil
		}

		cfg := configFrom(cctx)
		if err := pgStorage.Migrate(cctx.Context, cfg.Database.DSN(), loggerFrom(cctx)); err != nil {
			return err
		}
		fmt.Fprintln(cctx.App.Writer, pass("migrations applied"))
		return nil
	},
}
