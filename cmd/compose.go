package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/cbs-sim/sim/workload"
)

var (
	composeFromPaths []string
	composeOut       string
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Merge multiple workload specs into one",
	Long:  "Load multiple workload YAML files and merge their vcpus and events. Output is written to stdout unless --out is given.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(composeFromPaths) == 0 {
			logrus.Fatalf("at least one --from flag is required")
		}

		var specs []*workload.WorkloadSpec
		for _, path := range composeFromPaths {
			spec, err := workload.LoadWorkloadSpec(path)
			if err != nil {
				logrus.Fatalf("Failed to load spec %s: %v", path, err)
			}
			specs = append(specs, spec)
		}

		merged, err := workload.ComposeSpecs(specs)
		if err != nil {
			logrus.Fatalf("Compose failed: %v", err)
		}
		if err := merged.Validate(); err != nil {
			logrus.Fatalf("Composed spec is invalid: %v", err)
		}
		if err := writeSpec(composeOut, cmd.OutOrStdout(), merged); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func init() {
	composeCmd.Flags().StringArrayVar(&composeFromPaths, "from", nil, "Path to workload YAML file (can be repeated)")
	_ = composeCmd.MarkFlagRequired("from")
	composeCmd.Flags().StringVar(&composeOut, "out", "", "Output path (default stdout)")

	rootCmd.AddCommand(composeCmd)
}
