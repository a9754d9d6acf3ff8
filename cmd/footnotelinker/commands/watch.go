package commands

import (
	"context"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/footnotelinker/internal/config"
	"git.home.luguber.info/inful/footnotelinker/internal/docs"
	"git.home.luguber.info/inful/footnotelinker/internal/metrics"
	"git.home.luguber.info/inful/footnotelinker/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output string `short:"o" help:"Output directory (overrides output.directory)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := loadConfig(root)
	if err != nil {
		return err
	}
	if w.Output != "" {
		cfg.Output.Directory = w.Output
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	env, err := newEnvironment(cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	p, err := env.processor(false)
	if err != nil {
		return err
	}

	opts, err := watchOptions(cfg, logger)
	if err != nil {
		return err
	}
	opts.MetricsHandler = metrics.HTTPHandler(env.registry)

	out := g.out()
	watcher := watch.New(cfg.Content.Path, func(ctx context.Context) error {
		report, err := p.Run(ctx)
		printReport(out, report, root.Verbose)
		return err
	}, opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return watcher.Run(ctx)
}

// watchOptions maps the watch and monitoring configuration onto watcher
// options. The fingerprint is the same set hash the processor records, so
// touching a file without changing it does not rebuild.
func watchOptions(cfg *config.Config, logger *slog.Logger) (watch.Options, error) {
	debounce, err := cfg.Watch.DebounceDuration()
	if err != nil {
		return watch.Options{}, err
	}
	every, err := cfg.Watch.RebuildEvery()
	if err != nil {
		return watch.Options{}, err
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	discovery := docs.NewDiscovery(cfg.Content.Extensions, quiet)
	return watch.Options{
		Debounce:   debounce,
		Interval:   every,
		Extensions: cfg.Content.Extensions,
		Fingerprint: func() (string, error) {
			files, err := discovery.Discover(cfg.Content.Path)
			if err != nil {
				return "", err
			}
			return docs.SetHash(files), nil
		},
		MetricsAddr: cfg.Monitoring.MetricsAddr,
		Logger:      logger,
	}, nil
}
