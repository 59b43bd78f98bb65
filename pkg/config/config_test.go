package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/dossier/pkg/automation"
)

// isolateHome points the home directory at a temp dir so the user's own
// ~/.dossier/config.yaml never leaks into a test.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	home := isolateHome(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultTargetURL, cfg.TargetURL)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 500*time.Millisecond, cfg.ActionDelay)
	assert.Equal(t, "msedge", cfg.Channel)
	assert.Equal(t, filepath.Join(home, ".dossier", "browser-profile"), cfg.ProfileDir)
	assert.Equal(t, filepath.Join(home, "Desktop", "LATEST_BATCH"), cfg.OutputDir)
	assert.Equal(t, 120*time.Second, cfg.Timings.PollDeadline)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DefaultFileIsRead(t *testing.T) {
	home := isolateHome(t)
	writeFile(t, filepath.Join(home, ".dossier", "config.yaml"), "channel: chrome\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "chrome", cfg.Channel)
}

func TestLoad_File(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(t.TempDir(), "dossier.yaml")
	writeFile(t, path, `
headless: true
action_delay: 250ms
output_dir: ~/merged
timings:
  poll_deadline: 3m
  modal_attempts: 4
logging:
  level: debug
  console: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Headless)
	assert.Equal(t, 250*time.Millisecond, cfg.ActionDelay)
	assert.Equal(t, filepath.Join(home, "merged"), cfg.OutputDir)
	assert.Equal(t, 3*time.Minute, cfg.Timings.PollDeadline)
	assert.Equal(t, 4, cfg.Timings.ModalAttempts)
	assert.Equal(t, 2*time.Second, cfg.Timings.PollInterval, "unset keys keep their defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Console)
	assert.Equal(t, DefaultTargetURL, cfg.TargetURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "dossier.yaml")
	writeFile(t, path, "headless: false\nchannel: chrome\n")

	t.Setenv("DOSSIER_HEADLESS", "true")
	t.Setenv("DOSSIER_OUTPUT_DIR", "/srv/batch")
	t.Setenv("DOSSIER_TIMINGS__POLL_INTERVAL", "5s")
	t.Setenv("DOSSIER_LOGGING__LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Headless)
	assert.Equal(t, "chrome", cfg.Channel)
	assert.Equal(t, "/srv/batch", cfg.OutputDir)
	assert.Equal(t, 5*time.Second, cfg.Timings.PollInterval)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	isolateHome(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "headless: [unclosed\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "target_url", envKey("DOSSIER_TARGET_URL"))
	assert.Equal(t, "timings.post_poll_idle", envKey("DOSSIER_TIMINGS__POST_POLL_IDLE"))
	assert.Equal(t, "logging.dir", envKey("DOSSIER_LOGGING__DIR"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no target", func(c *Config) { c.TargetURL = "" }, "target_url is required"},
		{"bad scheme", func(c *Config) { c.TargetURL = "ftp://portal" }, "invalid target_url"},
		{"no profile dir", func(c *Config) { c.ProfileDir = "" }, "profile_dir is required"},
		{"negative delay", func(c *Config) { c.ActionDelay = -time.Second }, "action_delay cannot be negative"},
		{"zero interval", func(c *Config) { c.Timings.PollInterval = 0 }, "poll_interval must be positive"},
		{"deadline below interval", func(c *Config) { c.Timings.PollDeadline = time.Second }, "poll_deadline must be at least"},
		{"no modal attempts", func(c *Config) { c.Timings.ModalAttempts = 0 }, "modal_attempts must be at least 1"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "invalid logging level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.ProfileDir = "/tmp/profile"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEngine(t *testing.T) {
	cfg := Default()
	cfg.ProfileDir = "/tmp/profile"
	cfg.Debug = true
	cfg.Timings.PollDeadline = time.Minute

	ec, err := cfg.Engine()
	require.NoError(t, err)
	assert.Equal(t, cfg.TargetURL, ec.TargetURL)
	assert.True(t, ec.Debug)
	assert.Equal(t, time.Minute, ec.Timings.PollDeadline)
	assert.Equal(t, automation.DefaultTimings().ModalAttempts, ec.Timings.ModalAttempts)
	assert.Nil(t, ec.Profile, "built-in profile is chosen by the engine")
	assert.NoError(t, ec.Validate())
}

func TestEngine_SiteProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	writeFile(t, path, "not: [valid\n")

	cfg := Default()
	cfg.SiteProfile = path
	_, err := cfg.Engine()
	assert.Error(t, err)
}
