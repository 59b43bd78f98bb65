package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix marks environment variables read by Load.
	EnvPrefix = "DOSSIER_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// DefaultPath is ~/.dossier/config.yaml, or "" when the home directory is
// unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dossier", "config.yaml")
}

// Load builds the configuration.
//
// Precedence (highest to lowest):
//  1. Environment variables (DOSSIER_HEADLESS, DOSSIER_TIMINGS__POLL_DEADLINE, ...)
//  2. YAML config file
//  3. Default()
//
// An empty path reads DefaultPath when that file exists. An explicit path
// must exist. Command-line flags are applied by the caller on top.
//
// Environment variables drop the prefix, are lowercased, and use a double
// underscore for nesting:
//
//	DOSSIER_OUTPUT_DIR             -> output_dir
//	DOSSIER_TIMINGS__POLL_DEADLINE -> timings.poll_deadline
//	DOSSIER_LOGGING__LEVEL         -> logging.level
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		content, err := readConfigFile(path)
		switch {
		case err == nil:
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ProfileDir = expandHome(cfg.ProfileDir)
	cfg.OutputDir = expandHome(cfg.OutputDir)
	cfg.ReportDir = expandHome(cfg.ReportDir)
	cfg.SiteProfile = expandHome(cfg.SiteProfile)
	cfg.MetricsFile = expandHome(cfg.MetricsFile)
	cfg.Logging.Dir = expandHome(cfg.Logging.Dir)

	return cfg, nil
}

// envKey maps DOSSIER_TIMINGS__POLL_DEADLINE to timings.poll_deadline.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("config file %s is not a regular file", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
