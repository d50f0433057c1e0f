package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/praetorian-inc/policyscan"
	"github.com/praetorian-inc/policyscan/pkg/scanner"
	"github.com/praetorian-inc/policyscan/pkg/serve"
	"github.com/praetorian-inc/policyscan/pkg/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	serveDB     string
	serveVerify bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as streaming NDJSON server",
	Long: `Run policyscan as a long-lived streaming server that accepts scan requests
via stdin and writes responses to stdout using NDJSON.

Detectors are resolved and compiled once per tenant and reused until
stdin closes or SIGTERM is received.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveDB, "db", ":memory:", "Findings database path")
	serveCmd.Flags().BoolVar(&serveVerify, "verify", false, "Verify detected secrets against their source APIs")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveVerify {
		cfg.Verify = true
	}

	engine, err := policyscan.New(cfg, policyscan.WithLogger(log.Logger))
	if err != nil {
		return err
	}

	s, err := store.New(store.Config{Path: serveDB})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}

	core, err := scanner.NewCore(engine, scanner.WithStore(s), scanner.WithLogger(log.Logger))
	if err != nil {
		s.Close()
		return err
	}
	defer core.Close()

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	srv := serve.NewServer(core, cmd.InOrStdin(), cmd.OutOrStdout())
	srv.SetTenant(engine.Tenant().ID)
	return srv.Run(ctx)
}
