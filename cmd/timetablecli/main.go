// Command timetablecli is the reference driver for the scheduling engine:
// load a bundle document, validate it, generate a schedule, and print the
// result — the cobra+viper equivalent of the retrieval pack's flag-based
// cmd/cli driver.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/timetablegen/timetable/internal/bundle"
	"github.com/timetablegen/timetable/internal/config"
	"github.com/timetablegen/timetable/internal/engine"
	"github.com/timetablegen/timetable/internal/telemetry"
)

var (
	cfgFile    string
	inputFile  string
	outputFile string
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "timetablecli",
		Short: "Generate and validate academic timetables",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (defaults to none; TIMETABLE_* env vars and flags still apply)")
	root.PersistentFlags().StringVar(&inputFile, "file", "", "path to the bundle document (JSON)")
	root.PersistentFlags().StringVar(&outputFile, "out", "", "path to write the result (defaults to stdout)")

	root.AddCommand(newValidateCommand(), newGenerateCommand())
	return root
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load a bundle and report data problems without generating a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := telemetry.New(os.Stderr, "info")
			sched := engine.New(logger)

			if err := loadInput(sched); err != nil {
				return err
			}
			problems := sched.ValidateData()
			if problems == "" {
				fmt.Fprintln(os.Stdout, "no problems found")
				return nil
			}
			fmt.Fprintln(os.Stdout, problems)
			return nil
		},
	}
}

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Load a bundle and generate a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			logger := telemetry.New(os.Stderr, cfg.LogLevel)
			sched := engine.New(logger)

			if err := loadInput(sched); err != nil {
				return err
			}

			result := sched.GenerateSchedule(cfg.TimeLimitSeconds, engine.Strictness(cfg.Strictness), nil, cfg.Seed)
			if !result.Success {
				logger.Warn("generation did not fully succeed", map[string]any{"reason": sched.AnalyzeFailure()})
			}

			return writeOutput(result)
		},
	}
	cmd.Flags().Float64("time-limit", 0, "time budget in seconds (0 = unbounded)")
	cmd.Flags().Int("strictness", int(engine.Strict), "1=strict 2=relaxed 3=greedy 4=emergency")
	cmd.Flags().Uint64("seed", 0, "restart-pass shuffle seed")
	_ = viper.BindPFlag("time_limit_seconds", cmd.Flags().Lookup("time-limit"))
	_ = viper.BindPFlag("strictness", cmd.Flags().Lookup("strictness"))
	_ = viper.BindPFlag("seed", cmd.Flags().Lookup("seed"))
	return cmd
}

func loadInput(sched engine.Scheduler) error {
	if inputFile == "" {
		return fmt.Errorf("--file is required")
	}
	raw, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputFile, err)
	}
	var document map[string]any
	if err := json.Unmarshal(raw, &document); err != nil {
		return fmt.Errorf("parsing %s: %w", inputFile, err)
	}
	return bundle.LoadBundle(document, sched)
}

func writeOutput(result engine.Result) error {
	encoded, err := json.MarshalIndent(resultView{
		Success:        result.Success,
		Assignments:    result.Assignments,
		Error:          result.ErrorMessage,
		Backtracks:     result.BacktrackCount,
		ComputeSeconds: result.ComputationTimeSeconds,
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return err
	}

	if outputFile == "" {
		fmt.Fprintln(os.Stdout, string(encoded))
		return nil
	}
	return os.WriteFile(outputFile, encoded, 0o644)
}

type resultView struct {
	Success        bool                `json:"success"`
	Assignments    []engine.Assignment `json:"assignments"`
	Error          string              `json:"error,omitempty"`
	Backtracks     int64               `json:"backtrack_count"`
	ComputeSeconds float64             `json:"computation_time_seconds"`
	GeneratedAt    string              `json:"generated_at"`
}
