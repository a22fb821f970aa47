package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/inference-sim/cbs-sim/sim/workload"
)

var validatePaths []string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check workload files without running them",
	Long:  "Parse each workload YAML strictly and report every validation problem found. Exits non-zero if any file is invalid.",
	Run: func(cmd *cobra.Command, args []string) {
		if n := validateWorkloads(cmd.OutOrStdout(), validatePaths); n > 0 {
			logrus.Fatalf("%d invalid workload file(s)", n)
		}
	},
}

// validateWorkloads reports each file's problems to w, one per line, and
// returns the number of invalid files.
func validateWorkloads(w io.Writer, paths []string) int {
	invalid := 0
	for _, path := range paths {
		spec, err := workload.LoadWorkloadSpec(path)
		if err == nil {
			err = spec.Validate()
		}
		if err == nil {
			fmt.Fprintf(w, "%s: ok (%d vcpus, %d events)\n", path, len(spec.VCPUs), len(spec.Events))
			continue
		}
		invalid++
		for _, e := range multierr.Errors(err) {
			fmt.Fprintf(w, "%s: %v\n", path, e)
		}
	}
	return invalid
}

func init() {
	validateCmd.Flags().StringArrayVar(&validatePaths, "workload", nil, "Path to a workload YAML (can be repeated)")
	_ = validateCmd.MarkFlagRequired("workload")

	rootCmd.AddCommand(validateCmd)
}
