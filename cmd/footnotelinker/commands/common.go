package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/footnotelinker/internal/config"
	"git.home.luguber.info/inful/footnotelinker/internal/eventstore"
	"git.home.luguber.info/inful/footnotelinker/internal/logfields"
	"git.home.luguber.info/inful/footnotelinker/internal/metrics"
	"git.home.luguber.info/inful/footnotelinker/internal/notify"
	"git.home.luguber.info/inful/footnotelinker/internal/pipeline"
)

// Global carries state shared by every command.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer // User-facing output; logs go to stderr
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"footnotelinker.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" help:"Link footnotes and write the HTML output"`
	Check  CheckCmd  `cmd:"" help:"Link and verify without writing; exit 2 when any document has warnings"`
	Watch  WatchCmd  `cmd:"" help:"Rebuild whenever the content directory changes"`
	Report ReportCmd `cmd:"" help:"Show a build from the history database"`
	Init   InitCmd   `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; it installs a bootstrap logger until
// the configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(config.NewLogger(config.LoggingConfig{}, os.Stderr, c.Verbose))
	return nil
}

// loadConfig loads the configuration file and replaces the default logger
// with one built from its logging section.
func loadConfig(root *CLI) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, slog.Default(), err
	}
	logger := config.NewLogger(cfg.Logging, os.Stderr, root.Verbose)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// environment holds the collaborators of a processor: metrics, build
// history and notifications. Close releases them.
type environment struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prom.Registry
	recorder *metrics.PrometheusRecorder
	bus      *pipeline.Bus
	store    *eventstore.SQLiteStore
	notifier notify.Notifier
}

func newEnvironment(cfg *config.Config, logger *slog.Logger) (*environment, error) {
	env := &environment{cfg: cfg, logger: logger, registry: prom.NewRegistry()}
	metrics.RegisterRuntimeCollectors(env.registry)
	env.recorder = metrics.NewPrometheusRecorder(env.registry)

	if cfg.Report.Database != "" {
		store, err := eventstore.NewSQLiteStore(cfg.Report.Database)
		if err != nil {
			return nil, err
		}
		env.store = store
		env.bus = pipeline.NewBusWithEventStore(store)
		logger.Debug("Recording build history", logfields.Path(cfg.Report.Database))
	} else {
		env.bus = pipeline.NewBus()
	}
	env.bus.SetLogger(logger)

	notifier, err := notify.New(cfg.Notify, logger)
	if err != nil {
		// Notifications are best effort; a broker that is down must not block builds.
		logger.Warn("Build notifications disabled", logfields.Error(err))
		notifier = notify.NoopNotifier{}
	}
	env.notifier = notifier
	env.bus.Subscribe(eventstore.TypeBuildCompleted, notify.Handler(notifier, logger))
	return env, nil
}

func (e *environment) processor(dryRun bool) (*pipeline.Processor, error) {
	return pipeline.NewProcessor(e.cfg, nil,
		pipeline.WithLogger(e.logger),
		pipeline.WithRecorder(e.recorder),
		pipeline.WithBus(e.bus),
		pipeline.WithDryRun(dryRun),
	)
}

func (e *environment) Close() {
	if err := e.notifier.Close(); err != nil {
		e.logger.Warn("Failed to close notifier", logfields.Error(err))
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Warn("Failed to close build history", logfields.Error(err))
		}
	}
}
