//go:generate mockgen -destination=../../mocks/mock_http.go -package=mocks net/http RoundTripper
package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/hatstand/shinyweather/config"
	"github.com/hatstand/shinyweather/weather"
	"go.uber.org/zap"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitConfigError = 2
)

type app struct {
	logger *zap.Logger
	level  zap.AtomicLevel
	stdout io.Writer
	// Base transport for API requests. nil means http.DefaultTransport.
	transport http.RoundTripper
	// Overrides weather.BaseURL when set.
	baseURL string
}

func newLogger(level zap.AtomicLevel) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func (a *app) run(ctx context.Context, args []string, env config.LookupFunc) int {
	cfg, err := config.Load(args, env)
	if err != nil {
		a.logger.Error("Invalid configuration", zap.Error(err))
		return exitConfigError
	}
	if cfg.Verbose {
		a.level.SetLevel(zap.DebugLevel)
	}

	metrics := weather.NewMetrics()
	httpClient := &http.Client{Transport: metrics.InstrumentRoundTripper(a.transport)}
	client := weather.NewClient(cfg.APIKey, httpClient, a.logger)
	if a.baseURL != "" {
		client.SetBaseURL(a.baseURL)
	}

	code := exitOK
	report, err := client.Current(ctx, cfg.City, cfg.Units)
	if err != nil {
		a.logger.Error("Failed to fetch weather", zap.String("city", cfg.City), zap.Error(err))
		code = exitFailure
	} else if err := weather.Render(a.stdout, report, cfg.Units); err != nil {
		a.logger.Error("Failed to write report", zap.Error(err))
		code = exitFailure
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			a.logger.Warn("Failed to write metrics", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}
	return code
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	logger, err := newLogger(level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	env, err := config.Environ(".env")
	if err != nil {
		logger.Error("Failed to load .env", zap.Error(err))
		return exitConfigError
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	a := &app{
		logger: logger,
		level:  level,
		stdout: os.Stdout,
	}
	return a.run(ctx, os.Args[1:], env)
}
