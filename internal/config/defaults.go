package config

import (
	"runtime"
	"strings"
)

// Default values applied when a field is omitted.
const (
	DefaultContentPath    = "content"
	DefaultPagesDir       = "pages"
	DefaultLang           = "en"
	DefaultOutputDir      = "./public"
	DefaultReferenceRegex = `\d+`
	DefaultNotifySubject  = "footnotelinker.builds"
	DefaultDebounce       = "500ms"
	maxWorkers            = 64
)

// DefaultExtensions are the Markdown extensions discovered when none are configured.
var DefaultExtensions = []string{".md", ".markdown"}

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// ContentDefaultApplier handles Content configuration defaults.
type ContentDefaultApplier struct{}

func (c *ContentDefaultApplier) Domain() string { return "content" }

func (c *ContentDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Content.Path == "" {
		cfg.Content.Path = DefaultContentPath
	}
	if cfg.Content.PagesDir == "" {
		cfg.Content.PagesDir = DefaultPagesDir
	}
	if len(cfg.Content.Extensions) == 0 {
		cfg.Content.Extensions = append([]string(nil), DefaultExtensions...)
	}
	for i, ext := range cfg.Content.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Content.Extensions[i] = ext
	}
	if cfg.Content.DefaultLang == "" {
		cfg.Content.DefaultLang = DefaultLang
	}
	return nil
}

// OutputDefaultApplier handles Output configuration defaults.
type OutputDefaultApplier struct{}

func (o *OutputDefaultApplier) Domain() string { return "output" }

func (o *OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = DefaultOutputDir
	}
	return nil
}

// FootnotesDefaultApplier handles Footnotes configuration defaults.
type FootnotesDefaultApplier struct{}

func (f *FootnotesDefaultApplier) Domain() string { return "footnotes" }

func (f *FootnotesDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Footnotes.ReferenceRegex == "" {
		cfg.Footnotes.ReferenceRegex = DefaultReferenceRegex
	}
	return nil
}

// BuildDefaultApplier handles Build configuration defaults.
type BuildDefaultApplier struct{}

func (b *BuildDefaultApplier) Domain() string { return "build" }

func (b *BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Build.Workers <= 0 {
		cfg.Build.Workers = min(runtime.NumCPU(), maxWorkers)
	}
	return nil
}

// LoggingDefaultApplier handles Logging configuration defaults.
type LoggingDefaultApplier struct{}

func (l *LoggingDefaultApplier) Domain() string { return "logging" }

func (l *LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}

// NotifyDefaultApplier handles Notify and Watch configuration defaults.
type NotifyDefaultApplier struct{}

func (n *NotifyDefaultApplier) Domain() string { return "notify" }

func (n *NotifyDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNotifySubject
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = DefaultDebounce
	}
	return nil
}

// DefaultApplierRegistry runs all domain appliers in order.
type DefaultApplierRegistry struct {
	appliers []DefaultApplier
}

// NewDefaultApplier returns the registry with every domain applier.
func NewDefaultApplier() *DefaultApplierRegistry {
	return &DefaultApplierRegistry{
		appliers: []DefaultApplier{
			&ContentDefaultApplier{},
			&OutputDefaultApplier{},
			&FootnotesDefaultApplier{},
			&BuildDefaultApplier{},
			&LoggingDefaultApplier{},
			&NotifyDefaultApplier{},
		},
	}
}

// ApplyDefaults applies every registered domain.
func (r *DefaultApplierRegistry) ApplyDefaults(cfg *Config) error {
	for _, a := range r.appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
