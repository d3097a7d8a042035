package main

import (
	"github.com/jonathan/resume-rag/internal/observability"
	"github.com/jonathan/resume-rag/internal/server"
	"github.com/jonathan/resume-rag/internal/server/ratelimit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  `Start an HTTP server that exposes the flat, select and optimize flows, health and stats, and the admin index endpoints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, c)
		},
	}
	cmd.Flags().Int("port", 0, "Port to listen on (default from server.port)")
	_ = c.v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	return cmd
}

func runServe(cmd *cobra.Command, c *cli) error {
	cfg := c.cfg
	metrics := observability.NewMetrics()

	a, err := newApp(cmd.Context(), cfg, c.logger, metrics, true)
	if err != nil {
		return err
	}
	defer a.close()

	password, err := cfg.Password()
	if err != nil {
		return err
	}
	jwtCfg, err := cfg.JWT()
	if err != nil {
		c.logger.Warn("admin endpoints disabled", zap.Error(err))
		jwtCfg = nil
	}
	if cfg.Server.AdminPasswordHash == "" {
		c.logger.Warn("admin endpoints disabled: server.admin_password_hash is not set")
	}

	srv := server.New(server.Config{
		Port:              cfg.Server.Port,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		AdminPasswordHash: cfg.Server.AdminPasswordHash,
		JWT:               jwtCfg,
		Password:          password,
		RateLimit:         ratelimit.NewConfig(cfg.RateLimit.Enabled, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst),
	}, a.service, metrics, c.logger)

	return srv.Start()
}
