package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/refbuilder/internal/config"
	"git.home.luguber.info/inful/refbuilder/internal/metrics"
	"git.home.luguber.info/inful/refbuilder/internal/site"
	"git.home.luguber.info/inful/refbuilder/internal/watch"
	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"refbuilder.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		MetricsFile string `help:"Write Prometheus metrics to this file after the build"`
	} `cmd:"" help:"Build the reference site for the configured package"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Watch struct {
		Debounce    time.Duration `help:"Quiet period before rebuilding" default:"2s"`
		MetricsFile string        `help:"Write Prometheus metrics to this file after each rebuild"`
	} `cmd:"" help:"Rebuild the site whenever the package source changes"`
}

func main() {
	ctx := kong.Parse(&CLI)

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	// Execute command
	switch ctx.Command() {
	case "build":
		opts, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runBuild(opts, CLI.Build.MetricsFile); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "watch":
		opts, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runWatch(opts, CLI.Watch.Debounce, CLI.Watch.MetricsFile); err != nil {
			slog.Error("Watch failed", "error", err)
			os.Exit(1)
		}
	}
}

func runBuild(opts *config.Options, metricsFile string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return buildOnce(ctx, opts, metricsFile)
}

// buildOnce runs a single generation and, when requested, dumps the metrics
// registry in the textfile-collector format.
func buildOnce(ctx context.Context, opts *config.Options, metricsFile string) error {
	gen := site.NewGenerator(opts)

	var reg *prometheus.Registry
	if metricsFile != "" {
		reg = prometheus.NewRegistry()
		gen.SetRecorder(metrics.NewPrometheusRecorder(reg))
	}

	report, err := gen.Generate(ctx)
	if err != nil {
		return err
	}

	if reg != nil {
		if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
			slog.Warn("Failed to write metrics file", "path", metricsFile, "error", err)
		}
	}

	slog.Info("Build finished",
		"package", report.Package,
		"outcome", string(report.Outcome),
		"pages", report.PagesWritten,
		"warnings", len(report.Warnings))
	return nil
}

func runInit(configPath string, force bool) error {
	slog.Info("Initializing configuration", "path", configPath, "force", force)
	return config.Init(configPath, force)
}

func runWatch(opts *config.Options, debounce time.Duration, metricsFile string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial build before watching; a broken start is worth knowing about,
	// but the watch loop still runs so a fix triggers a rebuild.
	if err := buildOnce(ctx, opts, metricsFile); err != nil {
		slog.Error("Initial build failed", "error", err)
	}

	w := watch.New(opts.PackageDir, func(ctx context.Context) error {
		return buildOnce(ctx, opts, metricsFile)
	}).SetDebounce(debounce)

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("Watch stopped")
	return nil
}
