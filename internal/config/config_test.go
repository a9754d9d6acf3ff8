package config

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "footnotelinker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "content:\n  path: ./site-content\n"))
	require.NoError(t, err)

	assert.Equal(t, "./site-content", cfg.Content.Path)
	assert.Equal(t, DefaultPagesDir, cfg.Content.PagesDir)
	assert.Equal(t, []string{".md", ".markdown"}, cfg.Content.Extensions)
	assert.Equal(t, DefaultLang, cfg.Content.DefaultLang)
	assert.Equal(t, DefaultOutputDir, cfg.Output.Directory)
	assert.Equal(t, DefaultReferenceRegex, cfg.Footnotes.ReferenceRegex)
	assert.Equal(t, min(runtime.NumCPU(), maxWorkers), cfg.Build.Workers)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.Equal(t, DefaultNotifySubject, cfg.Notify.Subject)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
}

func TestLoad_FullFile(t *testing.T) {
	content := `content:
  path: docs
  pages_dir: static-pages
  extensions: [md, ".MDX"]
  default_lang: nb
output:
  directory: out
  clean: true
footnotes:
  reference_regex: '[a-z]+\d*'
  verify_anchors: true
  fail_on_warnings: true
build:
  workers: 3
logging:
  level: DEBUG
  format: json
monitoring:
  metrics_addr: ":9191"
report:
  database: history.db
notify:
  nats_url: nats://localhost:4222
  subject: site.builds
watch:
  debounce: 250ms
  rebuild_interval: 30m
`
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)

	assert.Equal(t, []string{".md", ".mdx"}, cfg.Content.Extensions)
	assert.Equal(t, "static-pages", cfg.Content.PagesDir)
	assert.Equal(t, `[a-z]+\d*`, cfg.Footnotes.ReferenceRegex)
	assert.True(t, cfg.Footnotes.VerifyAnchors)
	assert.True(t, cfg.Footnotes.FailOnWarnings)
	assert.True(t, cfg.Output.Clean)
	assert.Equal(t, 3, cfg.Build.Workers)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, ":9191", cfg.Monitoring.MetricsAddr)
	assert.Equal(t, "history.db", cfg.Report.Database)
	assert.Equal(t, "site.builds", cfg.Notify.Subject)

	d, err := cfg.Watch.DebounceDuration()
	require.NoError(t, err)
	assert.Equal(t, "250ms", d.String())
	every, err := cfg.Watch.RebuildEvery()
	require.NoError(t, err)
	assert.Equal(t, "30m0s", every.String())
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("FOOTNOTELINKER_TEST_OUT", "expanded-out")

	cfg, err := Load(writeConfig(t, "output:\n  directory: ${FOOTNOTELINKER_TEST_OUT}\n"))
	require.NoError(t, err)
	assert.Equal(t, "expanded-out", cfg.Output.Directory)
}

func TestLoad_LogLevelEnvOverride(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load(writeConfig(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, LogLevelError, cfg.Logging.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "content:\n  pth: x\n"},
		{"invalid yaml", "content: [\n"},
		{"invalid regex", "footnotes:\n  reference_regex: '(\\d+'\n"},
		{"empty matching regex", "footnotes:\n  reference_regex: '\\d*'\n"},
		{"too many workers", "build:\n  workers: 1000\n"},
		{"bad debounce", "watch:\n  debounce: soon\n"},
		{"short rebuild interval", "watch:\n  rebuild_interval: 10ms\n"},
		{"output equals content", "content:\n  path: ./docs\noutput:\n  directory: docs/\n"},
		{"output contains content", "content:\n  path: site/content\noutput:\n  directory: ./site\n"},
		{"output inside content", "content:\n  path: docs\noutput:\n  directory: docs/public\n"},
		{"output with dot-dot spelling", "content:\n  path: docs\noutput:\n  directory: out/../docs\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryConfig), "got %v", err)
		})
	}
}

func TestCheckOutputDir(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name    string
		content string
		output  string
		wantErr bool
	}{
		{"siblings", "content", "public", false},
		{"shared prefix is not nesting", "content", "content-html", false},
		{"same dir", "content", "./content/", true},
		{"current dir holds content", "content", ".", true},
		{"absolute against relative", "content", filepath.Join(wd, "content"), true},
		{"absolute parent", filepath.Join(wd, "site", "content"), "site", true},
		{"nested output", "content", "content/out", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOutputDir(tt.content, tt.output)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestParse_EmptyDocumentUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default().Content, cfg.Content)
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "footnotelinker.yaml")

	require.NoError(t, Init(path, false))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Footnotes.VerifyAnchors)
	assert.Equal(t, "./footnotelinker.db", cfg.Report.Database)

	err = Init(path, false)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	require.NoError(t, Init(path, true))
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FOOTNOTELINKER_ENV_A=from-env\nFOOTNOTELINKER_ENV_B=from-env\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("FOOTNOTELINKER_ENV_C=from-local\n"), 0o600))
	t.Setenv("FOOTNOTELINKER_ENV_B", "from-process")
	t.Cleanup(func() {
		_ = os.Unsetenv("FOOTNOTELINKER_ENV_A")
		_ = os.Unsetenv("FOOTNOTELINKER_ENV_C")
	})

	require.NoError(t, loadEnvFiles(dir))

	assert.Equal(t, "from-env", os.Getenv("FOOTNOTELINKER_ENV_A"))
	assert.Equal(t, "from-process", os.Getenv("FOOTNOTELINKER_ENV_B"))
	assert.Equal(t, "from-local", os.Getenv("FOOTNOTELINKER_ENV_C"))
}

func TestLoadEnvFiles_MissingIsNotAnError(t *testing.T) {
	assert.NoError(t, loadEnvFiles(t.TempDir()))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger(LoggingConfig{Level: LogLevelWarn, Format: LogFormatJSON}, &buf, false)
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), out)

	buf.Reset()
	logger = NewLogger(LoggingConfig{Level: LogLevelError}, &buf, true)
	logger.Debug("debug line")
	assert.Contains(t, buf.String(), "msg=\"debug line\"")
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel(" Warning "))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("verbose"))
	assert.Equal(t, LogFormatText, NormalizeLogFormat("xml"))
}
