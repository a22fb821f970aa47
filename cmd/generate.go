package cmd

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/cbs-sim/sim/workload"
)

var (
	generateFrom    string // base spec providing cpu and vcpus
	generateOut     string // output path, stdout when empty
	generateSeed    int64
	generateTicks   int64
	generateRate    float64
	generateWorkMin int64
	generateWorkMax int64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate synthetic Poisson arrivals for a workload",
	Long:  "Read the cpu and vcpus of a base workload YAML, replace its events with seeded Poisson arrivals and write the result as YAML.",
	Run: func(cmd *cobra.Command, args []string) {
		base, err := workload.LoadWorkloadSpec(generateFrom)
		if err != nil {
			logrus.Fatalf("Failed to load base spec %s: %v", generateFrom, err)
		}
		cfg := workload.GeneratorConfig{
			Seed:    generateSeed,
			Ticks:   generateTicks,
			Rate:    generateRate,
			WorkMin: generateWorkMin,
			WorkMax: generateWorkMax,
		}
		spec, err := workload.Generate(base, cfg)
		if err != nil {
			logrus.Fatalf("Generation failed: %v", err)
		}
		if err := writeSpec(generateOut, cmd.OutOrStdout(), spec); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// writeSpec writes spec as YAML to path, or to stdout when path is empty.
func writeSpec(path string, stdout io.Writer, spec *workload.WorkloadSpec) error {
	if path == "" {
		return spec.Encode(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := spec.Encode(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func init() {
	generateCmd.Flags().StringVar(&generateFrom, "from", "", "Base workload YAML (cpu and vcpus are kept, events replaced)")
	_ = generateCmd.MarkFlagRequired("from")
	generateCmd.Flags().StringVar(&generateOut, "out", "", "Output path (default stdout)")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 42, "Seed for arrival generation")
	generateCmd.Flags().Int64Var(&generateTicks, "ticks", 100, "Generate arrivals for ticks [0, ticks)")
	generateCmd.Flags().Float64Var(&generateRate, "rate", 0.1, "Mean arrivals per tick per vcpu")
	generateCmd.Flags().Int64Var(&generateWorkMin, "work-min", 1, "Minimum work per job")
	generateCmd.Flags().Int64Var(&generateWorkMax, "work-max", 5, "Maximum work per job")

	rootCmd.AddCommand(generateCmd)
}
