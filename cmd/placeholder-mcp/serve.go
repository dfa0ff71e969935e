package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/placeholder-mcp/internal/httpapi"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve placeholders over HTTP/JSON until interrupted.

Routes include POST /v1/placeholders, POST /v1/placeholders/batch,
GET /v1/palette, /v1/cache/stats and /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			addr := a.cfg.HTTPAddr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}

			srv := httpapi.New(a.svc,
				httpapi.WithLogger(a.logger),
				httpapi.WithMetrics(a.metrics),
				httpapi.WithLocalFiles(a.cfg.HTTPAllowFiles))
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides http_addr)")
	return cmd
}
