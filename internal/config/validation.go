package config

import (
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/footnotelinker/internal/footnote"
	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

// ValidateConfig validates a configuration with defaults applied.
func ValidateConfig(cfg *Config) error {
	return newConfigurationValidator(cfg).validate()
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	for _, check := range []func() error{
		cv.validateContent,
		cv.validateFootnotes,
		cv.validateBuild,
		cv.validateWatch,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (cv *configurationValidator) validateContent() error {
	c := cv.config.Content
	if strings.TrimSpace(c.Path) == "" {
		return errors.ConfigError("content.path cannot be empty").Build()
	}
	for _, ext := range c.Extensions {
		if ext == "" || ext == "." {
			return errors.ConfigError("content.extensions contains an empty extension").Build()
		}
	}
	if cv.config.Output.Directory != "" {
		return CheckOutputDir(c.Path, cv.config.Output.Directory)
	}
	return nil
}

// validateFootnotes compiles the reference regex once so that a bad pattern
// is reported at load time rather than per document.
func (cv *configurationValidator) validateFootnotes() error {
	if _, err := footnote.NewPattern(cv.config.Footnotes.ReferenceRegex); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid footnotes.reference_regex").
			WithContext("reference_regex", cv.config.Footnotes.ReferenceRegex).
			Build()
	}
	return nil
}

func (cv *configurationValidator) validateBuild() error {
	if w := cv.config.Build.Workers; w < 1 || w > maxWorkers {
		return errors.ConfigError("build.workers out of range").
			WithContext("workers", w).
			WithContext("max", maxWorkers).
			Build()
	}
	return nil
}

func (cv *configurationValidator) validateWatch() error {
	if _, err := cv.config.Watch.DebounceDuration(); err != nil {
		return err
	}
	if _, err := cv.config.Watch.RebuildEvery(); err != nil {
		return err
	}
	return nil
}

// DebounceDuration parses watch.debounce.
func (w WatchConfig) DebounceDuration() (time.Duration, error) {
	if w.Debounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d < 0 {
		return 0, errors.ConfigError("invalid watch.debounce").
			WithCause(err).
			WithContext("value", w.Debounce).
			Build()
	}
	return d, nil
}

// RebuildEvery parses watch.rebuild_interval. Zero means disabled.
func (w WatchConfig) RebuildEvery() (time.Duration, error) {
	if w.RebuildInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(w.RebuildInterval)
	if err != nil || d < time.Second {
		return 0, errors.ConfigError("invalid watch.rebuild_interval (minimum 1s)").
			WithCause(err).
			WithContext("value", w.RebuildInterval).
			Build()
	}
	return d, nil
}

// CheckOutputDir rejects an output directory that is, contains or lies
// inside the content directory. Cleaning such an output would delete sources.
func CheckOutputDir(contentPath, outputDir string) error {
	content, err := filepath.Abs(strings.TrimSpace(contentPath))
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid content.path").
			WithContext("path", contentPath).Build()
	}
	output, err := filepath.Abs(strings.TrimSpace(outputDir))
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid output.directory").
			WithContext("path", outputDir).Build()
	}
	if within(content, output) || within(output, content) {
		return errors.ConfigError("output.directory must not overlap content.path").
			WithContext("content", content).
			WithContext("output", output).
			Build()
	}
	return nil
}

// within reports whether path is dir or lies below it. Both must be absolute.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
