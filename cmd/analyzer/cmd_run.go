package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yudduy/ira/internal/characterizer"
	"github.com/yudduy/ira/internal/models"
	"github.com/yudduy/ira/internal/normalizer"
	"github.com/yudduy/ira/internal/output"
	"github.com/yudduy/ira/internal/pipeline"
	"github.com/yudduy/ira/internal/report"
)

type runFlags struct {
	csvPath    string
	outputPath string
	reportPath string
	format     string
	sample     int
}

func newRunCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze every company in an export file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalysis(cmd, root, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.csvPath, "csv", "", "company export CSV (required)")
	f.IntVar(&flags.sample, "sample", 0, "analyze a reproducible random sample of N companies")
	f.StringVarP(&flags.outputPath, "output", "o", "", "results file (default ira_analysis_results_<timestamp>.<format>)")
	f.StringVar(&flags.format, "format", "", "override output.format (csv or jsonl)")
	f.StringVar(&flags.reportPath, "report", "", "also write a summary report (.md or .html)")

	_ = cmd.MarkFlagRequired("csv")

	return cmd
}

func runAnalysis(cmd *cobra.Command, root *rootFlags, flags *runFlags) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	if flags.format != "" {
		cfg.Output.Format = flags.format
	}

	if flags.outputPath != "" {
		cfg.Output.Path = flags.outputPath
	}

	if flags.reportPath != "" {
		cfg.Output.Report = flags.reportPath
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	base, runID, err := newRunLogger(cfg, true)
	if err != nil {
		return err
	}

	defer func() { _ = base.Close() }()

	log := base.With("run_id", runID)
	log.Debug("Configuration loaded", "config", cfg.String())

	// Credentials first so a misconfigured run fails before any network work.
	completer, err := characterizer.NewCompleter(cfg)
	if err != nil {
		return err
	}

	subjects, err := normalizer.NewProcessor(log, flags.sample).ProcessFile(flags.csvPath)
	if err != nil {
		return err
	}

	index, extractor, err := newArchiveClients(cfg, log)
	if err != nil {
		return err
	}

	runner, err := pipeline.NewRunner(cfg, index, extractor, characterizer.New(cfg, completer, log), log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	records := runner.Run(ctx, subjects)

	path := cfg.DefaultOutputPath(started)
	if err := output.WriteFile(path, cfg.Output.Format, records); err != nil {
		return err
	}

	log.Info("Results written", "path", path, "records", len(records))

	if cfg.Output.Report != "" {
		if err := report.WriteFile(cfg.Output.Report, report.Report{
			RunID:       runID,
			GeneratedAt: time.Now(),
			Records:     records,
		}); err != nil {
			return err
		}

		log.Info("Report written", "path", cfg.Output.Report)
	}

	printSummary(cmd, records, path, time.Since(started))

	return nil
}

func printSummary(cmd *cobra.Command, records []models.ChangeRecord, path string, elapsed time.Duration) {
	summary := report.Summarize(records)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "------------------------------------------------")
	fmt.Fprintf(out, "Subjects:  %d\n", summary.Total)
	fmt.Fprintf(out, "Completed: %d\n", summary.ByStatus[models.StatusCompleted])

	for _, st := range []models.Status{
		models.StatusInsufficientSnapshots,
		models.StatusContentExtractionFailed,
		models.StatusAnalysisError,
	} {
		if n := summary.ByStatus[st]; n > 0 {
			fmt.Fprintf(out, "  %s: %d\n", st, n)
		}
	}

	fmt.Fprintf(out, "Results:   %s\n", path)
	fmt.Fprintf(out, "Duration:  %v\n", elapsed.Round(time.Second))
	fmt.Fprintln(out, "------------------------------------------------")
}
