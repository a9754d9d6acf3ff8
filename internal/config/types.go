package config

// Config is the footnotelinker configuration file.
type Config struct {
	Content    ContentConfig    `yaml:"content"`
	Output     OutputConfig     `yaml:"output"`
	Footnotes  FootnotesConfig  `yaml:"footnotes"`
	Build      BuildConfig      `yaml:"build"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring,omitempty"`
	Report     ReportConfig     `yaml:"report,omitempty"`
	Notify     NotifyConfig     `yaml:"notify,omitempty"`
	Watch      WatchConfig      `yaml:"watch,omitempty"`
}

// ContentConfig describes where source documents live.
type ContentConfig struct {
	Path        string   `yaml:"path"`         // Root content directory
	PagesDir    string   `yaml:"pages_dir"`    // Sub-directory whose documents are pages rather than articles
	Extensions  []string `yaml:"extensions"`   // File extensions treated as Markdown
	DefaultLang string   `yaml:"default_lang"` // Language of documents without a lang field
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before build
}

// FootnotesConfig configures the footnote linker.
type FootnotesConfig struct {
	// ReferenceRegex is the variable part of a citation marker, e.g. \d+ for [ref12].
	ReferenceRegex string `yaml:"reference_regex"`
	VerifyAnchors  bool   `yaml:"verify_anchors"`
	FailOnWarnings bool   `yaml:"fail_on_warnings"`
}

// BuildConfig controls build concurrency.
type BuildConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MonitoringConfig represents monitoring configuration
type MonitoringConfig struct {
	MetricsAddr string `yaml:"metrics_addr,omitempty"` // e.g. ":9090"; empty disables the endpoint
}

// ReportConfig configures the build history database.
type ReportConfig struct {
	Database string `yaml:"database,omitempty"` // SQLite path; empty disables history
}

// NotifyConfig configures build notifications.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce        string `yaml:"debounce,omitempty"`         // Go duration, e.g. "500ms"
	RebuildInterval string `yaml:"rebuild_interval,omitempty"` // Go duration; empty disables periodic rebuilds
}
