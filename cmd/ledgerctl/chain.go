package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"wallet-ledger/config"
	"wallet-ledger/internal/adapter/export"
	"wallet-ledger/internal/core/ports"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

// newPutter builds the object store client used by chain export.
var newPutter = func(ctx context.Context, cfg config.S3Config) (export.PutObjectAPI, error) {
	return export.NewS3Client(ctx, cfg)
}

var (
	pass = color.New(color.FgGreen, color.Bold).SprintFunc()
	fail = color.New(color.FgRed, color.Bold).SprintFunc()
	dim  = color.New(color.Faint).SprintFunc()
)

var chainCmd = &cli.Command{
	Name:  "chain",
	Usage: "inspect the transaction chain",
	Subcommands: []*cli.Command{
		chainVerifyCmd,
		chainListCmd,
		chainExportCmd,
	},
}

// withChain opens the chain service for the duration of fn.
func withChain(cctx *cli.Context, fn func(ports.ChainService) error) error {
	svc, release, err := openChain(cctx.Context, configFrom(cctx), loggerFrom(cctx))
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer release()
	return fn(svc)
}

var chainVerifyCmd = &cli.Command{
	Name:  "verify",
	Usage: "recompute every block hash and link; exits 1 when the chain is broken",
	Action: func(cctx *cli.Context) error {
		return withChain(cctx, func(svc ports.ChainService) error {
			report, err := svc.VerifyIntegrity(cctx.Context)
			if err != nil {
				return err
			}

			w := cctx.App.Writer
			if report.Valid {
				fmt.Fprintf(w, "%s chain intact (%d blocks)\n", pass("PASS"), report.Length)
				return nil
			}
			fmt.Fprintf(w, "%s first bad block %d of %d: %s\n", fail("FAIL"), report.FirstBadIndex, report.Length, report.Reason)
			return cli.Exit("", 1)
		})
	},
}

var chainListCmd = &cli.Command{
	Name:  "list",
	Usage: "print chain blocks",
	Flags: []cli.Flag{
		&cli.Int64Flag{Name: "from", Usage: "first block index"},
		&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum blocks to print (0 = all)"},
	},
	Action: func(cctx *cli.Context) error {
		return withChain(cctx, func(svc ports.ChainService) error {
			blocks, err := svc.ListChain(cctx.Context, cctx.Int64("from"), cctx.Int("limit"))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cctx.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tTX\tPREV\tHASH")
			for _, b := range blocks {
				tx := fmt.Sprint(b.TransactionID)
				if b.IsGenesis() {
					tx = dim("genesis")
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.Index, tx, short(b.PrevHash), b.Hash)
			}
			return tw.Flush()
		})
	},
}

var chainExportCmd = &cli.Command{
	Name:  "export",
	Usage: "write a JSON snapshot of the whole chain to a file or an S3 bucket",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "local file path"},
		&cli.StringFlag{Name: "s3-bucket", Usage: "bucket name (default: export.s3.bucket)"},
		&cli.StringFlag{Name: "s3-key", Usage: "object key under export.s3.prefix (default: chain-<timestamp>.json)"},
	},
	Action: func(cctx *cli.Context) error {
		cfg := configFrom(cctx)
		out := cctx.String("out")
		bucket := cctx.String("s3-bucket")
		if out != "" && bucket != "" {
			return cli.Exit("--out and --s3-bucket are mutually exclusive", 2)
		}
		if out == "" && bucket == "" {
			bucket = cfg.Export.S3.Bucket
		}
		if out == "" && bucket == "" {
			return cli.Exit("either --out or --s3-bucket is required", 2)
		}

		return withChain(cctx, func(svc ports.ChainService) error {
			blocks, err := svc.ListChain(cctx.Context, 0, 0)
			if err != nil {
				return err
			}
			snap := export.NewSnapshot(blocks, time.Now())

			status := pass("intact")
			if !snap.Integrity.Valid {
				status = fail("BROKEN")
			}

			if out != "" {
				if err := export.WriteFile(out, snap); err != nil {
					return err
				}
				fmt.Fprintf(cctx.App.Writer, "wrote %d blocks to %s (chain %s)\n", snap.Length, out, status)
				return nil
			}

			client, err := newPutter(cctx.Context, cfg.Export.S3)
			if err != nil {
				return err
			}
			key, err := export.NewS3Uploader(client, bucket, cfg.Export.S3.Prefix).Upload(cctx.Context, cctx.String("s3-key"), snap)
			if err != nil {
				return err
			}
			fmt.Fprintf(cctx.App.Writer, "uploaded %d blocks to s3://%s/%s (chain %s)\n", snap.Length, bucket, key, status)
			return nil
		})
	},
}

func short(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
