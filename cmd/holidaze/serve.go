package main

import (
	"holidaze/internal/metrics"
	"holidaze/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd(get func() *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve booking forms over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			ctx := cmd.Context()
			if port == 0 {
				port = a.cfg.Server.Port
			}

			go server.StartHealthServer(ctx, a.cfg.Monitoring.HealthCheckPort, a.db, a.rdb, a.logger)
			if a.cfg.Monitoring.PrometheusEnabled {
				metrics.Register()
				go server.StartMetricsServer(ctx, a.cfg.Monitoring.PrometheusPort, a.logger)
			}

			srv := server.New(ctx, a.client, a.bus, server.Options{
				APIKey:         a.cfg.API.APIKey,
				Location:       a.loc,
				SessionTimeout: a.cfg.SessionTimeout(),
			}, a.logger)
			if err := srv.Run(ctx, port); err != nil {
				return err
			}
			a.logger.Info().Msg("booking API stopped")
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default server.port)")
	return cmd
}
