// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"funcshell/internal/config"
	"funcshell/internal/proto"
	"funcshell/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve invocation requests over stdio",
	Long: `Serve reads newline-delimited JSON invocation requests from stdin and
writes one response per request to stdout. Host diagnostics and the
functions' stream records go to stderr, keeping stdout clean for the
protocol.

The number of pooled sessions comes from the 'workers' config key; each
session is initialized from the app's profile script on first use.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	app, err := loadApp()
	if err != nil {
		return err
	}

	var jobs *ants.Pool
	if cfg.JobPoolSize > 0 {
		jobs, err = ants.NewPool(cfg.JobPoolSize, ants.WithNonblocking(false))
		if err != nil {
			return fmt.Errorf("create job pool: %w", err)
		}
		defer jobs.Release()
	}

	pool, err := worker.NewPool(cfg.Workers, func(i int) (*worker.Manager, error) {
		return worker.NewManager(worker.Config{
			App:         app,
			SessionName: fmt.Sprintf("worker-%d", i),
			Logger:      logger,
			Jobs:        jobs,
		})
	})
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Close()

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			logger.Info("metrics endpoint listening", "addr", cfg.Metrics.Addr)
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Error("metrics endpoint failed", "err", err)
			}
		}()
	}

	logger.Info("serving", "app", app.App, "workers", cfg.Workers)

	codec := proto.NewCodec(os.Stdin, os.Stdout)
	svc := worker.NewService(pool, codec, logger)
	return svc.Serve(cmd.Context())
}
