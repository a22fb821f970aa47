package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/cbs-sim/sim/metrics"
	"github.com/inference-sim/cbs-sim/sim/report"
	"github.com/inference-sim/cbs-sim/sim/workload"
)

var (
	// CLI flags for the run command
	workloadPath string // Path to the workload YAML
	logLevel     string // Log verbosity level
	outputFormat string // gantt, json or table
	horizon      int64  // Overrides the workload horizon when set
	replenish    string // Overrides the workload replenishment rule when set
	metricsPath  string // Prometheus textfile output path
	noStyle      bool   // Plain ASCII tables
)

// Output formats accepted by --output.
const (
	OutputGantt = "gantt"
	OutputJSON  = "json"
	OutputTable = "table"
)

// StdoutPath as --metrics-path appends the metrics to the run output.
const StdoutPath = "-"

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "cbs-sim",
	Short: "Discrete-event simulator for CBS servers on an EDF-scheduled CPU",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runOptions selects what runSimulation writes.
type runOptions struct {
	Output      string
	MetricsPath string
	NoStyle     bool
}

// runCmd executes the simulation described by a workload file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a workload and render the schedule",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := workload.LoadWorkloadSpec(workloadPath)
		if err != nil {
			logrus.Fatalf("Failed to load workload: %v", err)
		}
		// Flags override the file only when given explicitly.
		if cmd.Flags().Changed("horizon") {
			spec.Horizon = horizon
		}
		if cmd.Flags().Changed("replenish") {
			spec.Replenish = replenish
		}

		logrus.Infof("Starting simulation: %d vcpus, %d events, capacity=%d, horizon=%d, replenish=%q",
			len(spec.VCPUs), len(spec.Events), spec.CPU.Capacity, spec.Horizon, spec.Replenish)

		opts := runOptions{Output: outputFormat, MetricsPath: metricsPath, NoStyle: noStyle}
		if err := runSimulation(os.Stdout, spec, opts); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// runSimulation builds the simulator from spec, runs it to the end and
// writes the chosen rendering to w.
func runSimulation(w io.Writer, spec *workload.WorkloadSpec, opts runOptions) error {
	switch opts.Output {
	case OutputGantt, OutputJSON, OutputTable:
	default:
		return fmt.Errorf("unknown output format %q; valid: %s, %s, %s", opts.Output, OutputGantt, OutputJSON, OutputTable)
	}

	s, err := spec.NewSimulator()
	if err != nil {
		return err
	}
	res := s.Run()
	if !res.Completed {
		logrus.Warnf("run stopped at tick %d with %d/%d events admitted", res.Clock, res.Admitted, res.Total)
	}

	switch opts.Output {
	case OutputGantt:
		err = report.Gantt(w, res.Traces)
	case OutputJSON:
		err = report.JSON(w, res, true)
	case OutputTable:
		report.SummaryTable(w, s.RunQueue.Servers(), res.Clock, report.TableOptions{NoStyle: opts.NoStyle})
	}
	if err != nil {
		return fmt.Errorf("writing %s output: %w", opts.Output, err)
	}

	if opts.MetricsPath == "" {
		return nil
	}
	collector := metrics.NewCollector()
	collector.Observe(s, res)
	if opts.MetricsPath == StdoutPath {
		return collector.Write(w)
	}
	if err := collector.WriteTextfile(opts.MetricsPath); err != nil {
		return err
	}
	logrus.Infof("Metrics written to %s", opts.MetricsPath)
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&workloadPath, "workload", "", "Path to the workload YAML")
	_ = runCmd.MarkFlagRequired("workload")
	runCmd.Flags().StringVar(&outputFormat, "output", OutputGantt, "Output format (gantt, json, table)")
	runCmd.Flags().Int64Var(&horizon, "horizon", 0, "Stop after this tick (0 runs until every job completes)")
	runCmd.Flags().StringVar(&replenish, "replenish", "", "Budget replenishment rule (now, postpone)")
	runCmd.Flags().StringVar(&metricsPath, "metrics-path", "", "Write Prometheus metrics to this file (- appends them to stdout)")
	runCmd.Flags().BoolVar(&noStyle, "no-style", false, "Render tables in plain ASCII")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
