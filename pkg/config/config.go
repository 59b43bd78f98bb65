// Package config loads dossier settings from defaults, an optional YAML
// file and DOSSIER_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/dossier/pkg/automation"
)

// DefaultTargetURL is the portal login page.
const DefaultTargetURL = "https://evision.ucl.ac.uk/urd/sits.urd/run/siw_lgn"

// Config is the full set of options for a dossier run.
type Config struct {
	TargetURL   string        `koanf:"target_url" yaml:"target_url"`
	Headless    bool          `koanf:"headless" yaml:"headless"`
	ActionDelay time.Duration `koanf:"action_delay" yaml:"action_delay"`
	ProfileDir  string        `koanf:"profile_dir" yaml:"profile_dir"`
	Channel     string        `koanf:"channel" yaml:"channel"`
	Debug       bool          `koanf:"debug" yaml:"debug"`

	// OutputDir receives merged overview documents.
	OutputDir string `koanf:"output_dir" yaml:"output_dir"`

	// ReportDir receives the JSON and Markdown run reports. Empty disables
	// them.
	ReportDir string `koanf:"report_dir" yaml:"report_dir"`

	// SiteProfile overrides the built-in selectors and heuristics.
	SiteProfile string `koanf:"site_profile" yaml:"site_profile"`

	// MetricsFile is written in the node-exporter textfile format after
	// each run. Empty disables it.
	MetricsFile string `koanf:"metrics_file" yaml:"metrics_file"`

	Timings TimingsConfig `koanf:"timings" yaml:"timings"`
	Logging LoggingConfig `koanf:"logging" yaml:"logging"`
}

// TimingsConfig mirrors automation.Timings with file and env names.
type TimingsConfig struct {
	LoginCheck     time.Duration `koanf:"login_check" yaml:"login_check"`
	LoginWait      time.Duration `koanf:"login_wait" yaml:"login_wait"`
	NetworkIdle    time.Duration `koanf:"network_idle" yaml:"network_idle"`
	ResultsWait    time.Duration `koanf:"results_wait" yaml:"results_wait"`
	Settle         time.Duration `koanf:"settle" yaml:"settle"`
	FormSettle     time.Duration `koanf:"form_settle" yaml:"form_settle"`
	ChoiceSettle   time.Duration `koanf:"choice_settle" yaml:"choice_settle"`
	PollInterval   time.Duration `koanf:"poll_interval" yaml:"poll_interval"`
	PollDeadline   time.Duration `koanf:"poll_deadline" yaml:"poll_deadline"`
	PostPollIdle   time.Duration `koanf:"post_poll_idle" yaml:"post_poll_idle"`
	PostPollSettle time.Duration `koanf:"post_poll_settle" yaml:"post_poll_settle"`
	ModalAttempts  int           `koanf:"modal_attempts" yaml:"modal_attempts"`
	ModalInterval  time.Duration `koanf:"modal_interval" yaml:"modal_interval"`
	DownloadWait   time.Duration `koanf:"download_wait" yaml:"download_wait"`
}

// LoggingConfig controls the session log.
type LoggingConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `koanf:"level" yaml:"level"`

	// Dir holds the log files. Empty means ~/.dossier/logs.
	Dir string `koanf:"dir" yaml:"dir"`

	// Console switches the file encoding from JSON to human-readable lines.
	Console bool `koanf:"console" yaml:"console"`
}

// Default returns the built-in configuration. Paths are resolved against
// the user's home directory when it is known.
func Default() *Config {
	t := automation.DefaultTimings()
	cfg := &Config{
		TargetURL:   DefaultTargetURL,
		ActionDelay: 500 * time.Millisecond,
		Channel:     "msedge",
		Timings: TimingsConfig{
			LoginCheck:     t.LoginCheck,
			LoginWait:      t.LoginWait,
			NetworkIdle:    t.NetworkIdle,
			ResultsWait:    t.ResultsWait,
			Settle:         t.Settle,
			FormSettle:     t.FormSettle,
			ChoiceSettle:   t.ChoiceSettle,
			PollInterval:   t.PollInterval,
			PollDeadline:   t.PollDeadline,
			PostPollIdle:   t.PostPollIdle,
			PostPollSettle: t.PostPollSettle,
			ModalAttempts:  t.ModalAttempts,
			ModalInterval:  t.ModalInterval,
			DownloadWait:   t.DownloadWait,
		},
		Logging: LoggingConfig{Level: "info"},
	}

	if home, err := os.UserHomeDir(); err == nil {
		cfg.ProfileDir = filepath.Join(home, ".dossier", "browser-profile")
		cfg.OutputDir = filepath.Join(home, "Desktop", "LATEST_BATCH")
		cfg.ReportDir = filepath.Join(home, ".dossier", "runs")
	}
	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.TargetURL == "" {
		return fmt.Errorf("target_url is required")
	}
	if !strings.HasPrefix(c.TargetURL, "http://") && !strings.HasPrefix(c.TargetURL, "https://") {
		return fmt.Errorf("invalid target_url: %s (must start with http:// or https://)", c.TargetURL)
	}

	if c.ProfileDir == "" {
		return fmt.Errorf("profile_dir is required")
	}

	if c.ActionDelay < 0 {
		return fmt.Errorf("action_delay cannot be negative")
	}

	if c.Timings.PollInterval <= 0 {
		return fmt.Errorf("timings.poll_interval must be positive")
	}
	if c.Timings.PollDeadline < c.Timings.PollInterval {
		return fmt.Errorf("timings.poll_deadline must be at least timings.poll_interval")
	}
	if c.Timings.ModalAttempts < 1 {
		return fmt.Errorf("timings.modal_attempts must be at least 1")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be 'debug', 'info', 'warn', or 'error')", c.Logging.Level)
	}

	return nil
}

// Engine converts the configuration into what the automation engine takes.
// The site profile is loaded from SiteProfile when set.
func (c *Config) Engine() (automation.Config, error) {
	cfg := automation.Config{
		TargetURL:   c.TargetURL,
		Headless:    c.Headless,
		ActionDelay: c.ActionDelay,
		ProfileDir:  c.ProfileDir,
		Channel:     c.Channel,
		Debug:       c.Debug,
		Timings: automation.Timings{
			LoginCheck:     c.Timings.LoginCheck,
			LoginWait:      c.Timings.LoginWait,
			NetworkIdle:    c.Timings.NetworkIdle,
			ResultsWait:    c.Timings.ResultsWait,
			Settle:         c.Timings.Settle,
			FormSettle:     c.Timings.FormSettle,
			ChoiceSettle:   c.Timings.ChoiceSettle,
			PollInterval:   c.Timings.PollInterval,
			PollDeadline:   c.Timings.PollDeadline,
			PostPollIdle:   c.Timings.PostPollIdle,
			PostPollSettle: c.Timings.PostPollSettle,
			ModalAttempts:  c.Timings.ModalAttempts,
			ModalInterval:  c.Timings.ModalInterval,
			DownloadWait:   c.Timings.DownloadWait,
		},
	}

	if c.SiteProfile != "" {
		profile, err := automation.LoadProfile(c.SiteProfile)
		if err != nil {
			return cfg, err
		}
		cfg.Profile = profile
	}
	return cfg, nil
}
