package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

// Load loads configuration from the specified file. Environment files are
// loaded first so that ${VAR} references in the YAML can use them.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFiles(""); err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes, defaults and validates configuration bytes.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Build()
	}

	applyEnvOverrides(&cfg)

	if err := NewDefaultApplier().ApplyDefaults(&cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to apply defaults").Build()
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = NewDefaultApplier().ApplyDefaults(cfg)
	return cfg
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Config{
		Content: ContentConfig{
			Path:        DefaultContentPath,
			PagesDir:    DefaultPagesDir,
			Extensions:  DefaultExtensions,
			DefaultLang: DefaultLang,
		},
		Output: OutputConfig{
			Directory: DefaultOutputDir,
			Clean:     true,
		},
		Footnotes: FootnotesConfig{
			ReferenceRegex: DefaultReferenceRegex,
			VerifyAnchors:  true,
		},
		Build:   BuildConfig{Workers: 4},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Report:  ReportConfig{Database: "./footnotelinker.db"},
		Notify:  NotifyConfig{NATSURL: "${FOOTNOTELINKER_NATS_URL}", Subject: DefaultNotifySubject},
		Watch:   WatchConfig{Debounce: DefaultDebounce, RebuildInterval: "1h"},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
