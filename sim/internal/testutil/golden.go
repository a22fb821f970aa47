// Package testutil provides shared test infrastructure for the CBS simulator.
// It holds the golden scenario dataset and assertion helpers used across
// the sim/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one recorded scenario: a workload file under
// testdata/workloads/ and the output it must reproduce.
type GoldenTestCase struct {
	Name     string          `json:"name"`
	Workload string          `json:"workload"`
	Clock    int64           `json:"clock"`
	Gantt    string          `json:"gantt"`
	Servers  []GoldenMetrics `json:"servers"`
}

// GoldenMetrics represents the expected per-server statistics.
type GoldenMetrics struct {
	Server string `json:"server"`

	// Exact match metrics (integers)
	JobsAdmitted  int   `json:"jobs_admitted"`
	JobsCompleted int   `json:"jobs_completed"`
	WorkTicks     int   `json:"work_ticks"`
	Deadline      int64 `json:"deadline"`

	// Derived from the clock, compared with tolerance
	Utilization  float64 `json:"utilization"`
	MeanResponse float64 `json:"mean_response"`
	MaxResponse  float64 `json:"max_response"`
}

// TestdataPath resolves a path under the repository's testdata/ directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func TestdataPath(t *testing.T, elem ...string) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	parts := append([]string{filepath.Dir(thisFile), "..", "..", "..", "testdata"}, elem...)
	return filepath.Join(parts...)
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	data, err := os.ReadFile(TestdataPath(t, "goldendataset.json"))
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
