package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/placeholder-mcp/internal/config"
	"github.com/ironsheep/placeholder-mcp/internal/logging"
	"github.com/ironsheep/placeholder-mcp/internal/metrics"
	"github.com/ironsheep/placeholder-mcp/internal/placeholder"
)

// app holds the components shared by every command.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Registry
	svc     *placeholder.Service
}

// loadApp reads configuration using the root persistent flags and wires the
// placeholder service.
func loadApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()
	cfgFile, _ := flags.GetString("config")
	envFile, _ := flags.GetString("env-file")

	cfg, err := config.NewLoader().WithFile(cfgFile).WithEnvFile(envFile).Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logger)
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	resampler, err := placeholder.ParseResampler(cfg.Resampler)
	if err != nil {
		return nil, err
	}

	reg := metrics.NewRegistry()
	gen := placeholder.NewGenerator(placeholder.GeneratorConfig{
		HTTPClient: &http.Client{Timeout: cfg.FetchTimeout},
		NewSurface: placeholder.CanvasFactory(placeholder.CanvasConfig{
			Resampler: resampler,
			BlurSigma: cfg.BlurSigma,
		}),
		MaxSourceBytes:  cfg.MaxSourceBytes,
		MaxSourcePixels: cfg.MaxSourcePixels,
		MaxDimension:    cfg.MaxDimension,
		UserAgent:       cfg.UserAgent + "/" + Version,
		Defaults:        cfg.PlaceholderOptions(),
	})
	svc := placeholder.NewService(gen, nil,
		placeholder.WithLogger(logger),
		placeholder.WithRecorder(reg))

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: reg,
		svc:     svc,
	}, nil
}
