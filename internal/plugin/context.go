package plugin

import (
	"log/slog"

	"git.home.luguber.info/inful/footnotelinker/internal/config"
	"git.home.luguber.info/inful/footnotelinker/internal/docmodel"
	"git.home.luguber.info/inful/footnotelinker/internal/metrics"
)

// PluginContext gives plugins access to the build without tight coupling.
type PluginContext struct {
	// Logger provides structured logging for plugin operations.
	Logger *slog.Logger

	Config *config.Config

	// Collection holds every document of the build. It is nil during Init.
	Collection *docmodel.Collection

	// BuildID uniquely identifies this build.
	BuildID string

	Recorder metrics.Recorder
}

// NewPluginContext creates a new plugin context. A nil logger selects
// slog.Default and a nil recorder a no-op one.
func NewPluginContext(logger *slog.Logger, cfg *config.Config, coll *docmodel.Collection, buildID string, rec metrics.Recorder) *PluginContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &PluginContext{
		Logger:     logger,
		Config:     cfg,
		Collection: coll,
		BuildID:    buildID,
		Recorder:   metrics.OrNoop(rec),
	}
}
