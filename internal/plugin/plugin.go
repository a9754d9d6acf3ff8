// Package plugin provides the build hook system. Plugins are initialized once
// before any document is processed and executed once per build after every
// document has been rendered.
package plugin

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

// Plugin represents a build plugin with metadata and lifecycle methods.
type Plugin interface {
	// Metadata returns the plugin's metadata (name, version, type, order).
	Metadata() PluginMetadata

	// Init is called once before the first build. Configuration problems
	// must be reported here so that no document is touched.
	Init(pctx *PluginContext) error

	// Execute runs the plugin over the collection in pctx.
	Execute(ctx context.Context, pctx *PluginContext) error
}

// PluginMetadata describes a plugin's identity.
type PluginMetadata struct {
	// Name is the unique plugin identifier (e.g., "footnotes").
	Name string

	// Version is the semantic version (e.g., "v1.0.0").
	Version string

	Type PluginType

	// Description provides a human-readable summary of the plugin's purpose.
	Description string

	// Order sorts plugins within a build. Lower runs first.
	Order int
}

// String returns a human-readable representation of the plugin metadata.
func (m PluginMetadata) String() string {
	return fmt.Sprintf("%s@%s (%s)", m.Name, m.Version, m.Type)
}

// Validate checks if the plugin metadata is valid.
func (m PluginMetadata) Validate() error {
	if m.Name == "" {
		return errors.ValidationError("plugin name is required").Build()
	}
	if m.Version == "" {
		return errors.ValidationError("plugin version is required").
			WithContext("plugin", m.Name).Build()
	}
	if !m.Type.IsValid() {
		return errors.ValidationError("invalid plugin type").
			WithContext("plugin", m.Name).
			WithContext("type", string(m.Type)).Build()
	}
	return nil
}

// BasePlugin provides default implementations for plugin lifecycle methods.
// Plugins can embed this to avoid implementing optional methods.
type BasePlugin struct{}

// Init is a no-op default implementation.
func (BasePlugin) Init(*PluginContext) error {
	return nil
}
