package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

// EnvLogLevel overrides logging.level when set.
const EnvLogLevel = "FOOTNOTELINKER_LOG_LEVEL"

// envFiles are loaded in order. Variables already present in the process
// environment are never overwritten.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads every env file that exists in dir. Missing files are skipped.
func loadEnvFiles(dir string) error {
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if err := godotenv.Load(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.WrapError(err, errors.CategoryConfig, "failed to load env file").
				WithContext("path", path).
				Build()
		}
	}
	return nil
}

// applyEnvOverrides applies environment variables that take precedence over the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = NormalizeLogLevel(v)
	}
}
