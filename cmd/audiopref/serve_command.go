package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"audiopref/internal/logging"
	"audiopref/internal/preflight"
	"audiopref/internal/ratings"
	"audiopref/internal/ratingstore"
	"audiopref/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var memory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the rating HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind = strings.TrimSpace(bind); bind != "" {
				cfg.Paths.APIBind = bind
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			var backend ratingstore.Backend = ratingstore.NewFileBackend(cfg.Paths.DataFile, logger)
			if memory {
				backend = ratingstore.NewMemoryBackend()
				logging.WarnWithContext(logger, "using in-memory ratings store", "memory_store",
					logging.String(logging.FieldErrorHint, "drop --memory to persist ratings"),
					logging.String(logging.FieldImpact, "ratings are lost when the server stops"))
			}

			gen, err := ctx.pairGenerator(cmd.Context(), logger)
			if err != nil {
				return err
			}

			for _, result := range preflight.RunAll(cmd.Context(), cfg, gen) {
				if result.Passed {
					logger.Debug("preflight passed", logging.String("check", result.Name), logging.String("detail", result.Detail))
					continue
				}
				logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
					logging.String("check", result.Name),
					logging.String("detail", result.Detail),
					logging.String(logging.FieldErrorHint, "run `audiopref check` for a full report"))
			}

			srv, err := server.New(server.Options{
				Config:  cfg,
				Ratings: ratings.NewService(backend, logger),
				Pairs:   gen,
				Logger:  logger,
			})
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override paths.api_bind (host:port)")
	cmd.Flags().BoolVar(&memory, "memory", false, "Keep ratings in memory only (development)")
	return cmd
}
