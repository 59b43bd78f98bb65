package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/entrhq/dossier/pkg/automation"
	"github.com/entrhq/dossier/pkg/batch"
	"github.com/entrhq/dossier/pkg/browser"
	"github.com/entrhq/dossier/pkg/config"
	"github.com/entrhq/dossier/pkg/events"
	"github.com/entrhq/dossier/pkg/executor/cli"
	"github.com/entrhq/dossier/pkg/executor/tui"
	"github.com/entrhq/dossier/pkg/logging"
	"github.com/entrhq/dossier/pkg/metrics"
	"github.com/entrhq/dossier/pkg/types"
)

var outputDir string

func init() {
	rootCmd.AddCommand(newBatchCmd(batch.ModeAccept, "Record an offer recommendation for every Accept record"))
	rootCmd.AddCommand(newBatchCmd(batch.ModeReject, "Record a reject recommendation for every Reject record"))
	rootCmd.AddCommand(newBatchCmd(batch.ModeDecide, "Apply each record's own Accept or Reject decision"))

	mergeCmd := newBatchCmd(batch.ModeMerge, "Merge and download the overview document of every record")
	mergeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Folder for downloaded overview documents")
	rootCmd.AddCommand(mergeCmd)
}

func newBatchCmd(mode batch.Mode, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(mode) + " <records.yaml>",
		Short: short,
		Long: short + `.

The records file is a YAML list, processed in order:

  - identifier: "12345678"
    programme: AIBH
    decision: Accept

Press Ctrl+C to stop after the record in progress.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, mode, args[0])
		},
	}
}

func runBatch(cmd *cobra.Command, mode batch.Mode, recordsPath string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if mode == batch.ModeMerge && cmd.Flags().Changed("output") {
		cfg.OutputDir = outputDir
	}

	logger, err := logging.NewLogger("dossier", logging.Options{
		Dir:     cfg.Logging.Dir,
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	defer logger.Close()

	records, err := batch.LoadRecords(recordsPath)
	if err != nil {
		return err
	}
	logger.Infof("Loaded %d records from %s for %s", len(records), recordsPath, mode)

	engineCfg, err := cfg.Engine()
	if err != nil {
		return err
	}

	bus := events.NewBus()
	stopSink := logging.EventSink(bus, logger)
	defer stopSink()

	engine := automation.NewEngine(browser.NewSessionManager(), bus)
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warnf("Closing browser: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	job := func(ctx context.Context) (batch.Summary, error) {
		if err := openSession(ctx, engine, engineCfg); err != nil {
			return batch.Summary{Mode: mode, Records: records}, err
		}
		return batch.NewRunner(engine).Run(ctx, records, batch.Options{
			Mode:      mode,
			OutputDir: cfg.OutputDir,
			Metrics:   m,
		})
	}

	printer := cli.NewExecutor(bus, cli.WithWriter(cmd.OutOrStdout()))
	var summary batch.Summary
	if plain {
		summary, err = printer.Run(ctx, job)
	} else {
		summary, err = tui.NewExecutor(bus, string(mode), len(records)).Run(ctx, job)
	}

	writeReports(cfg, logger, m, &summary)

	if cfg.Debug && countStatus(records, types.StatusPausedForReview) > 0 {
		// Only the operator closes a paused browser.
		printer.WaitForEnter(context.Background(), "Debug mode: inspect the browser, then press Enter to close it...")
	}

	if errors.Is(err, automation.ErrCancelled) {
		logger.Infof("Run cancelled by operator")
		return nil
	}
	if err != nil {
		logger.Errorf("Run failed: %v", err)
		return err
	}
	return nil
}

// openSession launches the browser, signs in and opens the search screen.
func openSession(ctx context.Context, engine *automation.Engine, cfg automation.Config) error {
	if err := engine.Initialise(ctx, cfg); err != nil {
		return err
	}
	ok, err := engine.Login(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return automation.ErrLoginFailed
	}
	return engine.NavigateToEntry(ctx)
}

func writeReports(cfg *config.Config, logger *logging.Logger, m *metrics.Metrics, summary *batch.Summary) {
	if cfg.ReportDir != "" && len(summary.Records) > 0 {
		paths, err := batch.NewArtifactWriter(cfg.ReportDir).WriteAll(summary)
		if err != nil {
			logger.Warnf("Writing run report: %v", err)
		} else {
			logger.Infof("Run report written to %v", paths)
		}
	}

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warnf("Writing metrics: %v", err)
		}
	}
}

func countStatus(records []*types.Record, s types.Status) int {
	n := 0
	for _, r := range records {
		if r.Status == s {
			n++
		}
	}
	return n
}
