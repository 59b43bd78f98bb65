// Package main implements the dossier CLI, which records accept/reject
// decisions and merges overview documents for a batch of records on the
// admissions portal.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/entrhq/dossier/pkg/config"
)

var (
	// version information
	version = "dev"

	// global flags
	configFile  string
	targetURL   string
	headless    bool
	debugMode   bool
	channel     string
	profileDir  string
	actionDelay time.Duration
	siteProfile string
	reportDir   string
	metricsFile string
	logLevel    string
	plain       bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dossier",
	Short: "Batch decisions and document merges on the admissions portal",
	Long: `dossier drives the admissions portal in a real browser and works through a
list of records one at a time: recording accept or reject decisions, or
merging and downloading each applicant's overview document.

The browser profile is persistent, so a signed-in session survives between
runs. Interactive sign-in, including second-factor prompts, happens in the
browser window.

Settings come from ~/.dossier/config.yaml (or --config), DOSSIER_*
environment variables and flags, in increasing order of precedence.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to configuration file (YAML)")
	flags.StringVar(&targetURL, "target-url", "", "Portal login URL")
	flags.BoolVar(&headless, "headless", false, "Run the browser without a window")
	flags.BoolVar(&debugMode, "debug", false, "Stop before the final submission of the first record and keep the browser open")
	flags.StringVar(&channel, "channel", "", "Browser channel (msedge, chrome, or empty for bundled Chromium)")
	flags.StringVar(&profileDir, "profile-dir", "", "Persistent browser profile directory")
	flags.DurationVar(&actionDelay, "action-delay", 0, "Delay between browser actions")
	flags.StringVar(&siteProfile, "site-profile", "", "YAML file overriding selectors, aliases and reason rules")
	flags.StringVar(&reportDir, "report-dir", "", "Directory for JSON and Markdown run reports")
	flags.StringVar(&metricsFile, "metrics-file", "", "Write run metrics to this textfile-collector file")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.BoolVar(&plain, "plain", false, "Print plain lines instead of the progress view")
}

// loadConfig merges the config file, environment and any flags the user
// set explicitly, then validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("target-url") {
		cfg.TargetURL = targetURL
	}
	if flags.Changed("headless") {
		cfg.Headless = headless
	}
	if flags.Changed("debug") {
		cfg.Debug = debugMode
	}
	if flags.Changed("channel") {
		cfg.Channel = channel
	}
	if flags.Changed("profile-dir") {
		cfg.ProfileDir = profileDir
	}
	if flags.Changed("action-delay") {
		cfg.ActionDelay = actionDelay
	}
	if flags.Changed("site-profile") {
		cfg.SiteProfile = siteProfile
	}
	if flags.Changed("report-dir") {
		cfg.ReportDir = reportDir
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = metricsFile
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
