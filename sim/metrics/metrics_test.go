package metrics

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/cbs-sim/sim"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

// runScenario runs A(Q=2,P=5) with one 4-unit job at tick 0 next to an
// unused B(Q=1,P=4).
func runScenario(t *testing.T) (*sim.Simulator, sim.Result) {
	t.Helper()
	cfg := sim.SimConfig{
		CPU:         sim.CPUConfig{Capacity: 2},
		VirtualCPUs: []sim.VirtualCPU{{Name: "A", Budget: 2, Period: 5}, {Name: "B", Budget: 1, Period: 4}},
	}
	s, err := sim.NewSimulator(cfg, []sim.SimulationEvent{
		{Job: sim.Job{ID: "j0", Work: 4}, ArrivalTime: 0, VCPU: "A"},
	})
	require.NoError(t, err)
	return s, s.Run()
}

func TestCollector_Observe(t *testing.T) {
	// GIVEN a finished run
	s, res := runScenario(t)
	c := NewCollector()

	// WHEN observed
	c.Observe(s, res)

	// THEN per-vcpu series reflect the servers
	assert.Equal(t, 4.0, testutil.ToFloat64(c.workTicks.WithLabelValues("A")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.jobsAdmitted.WithLabelValues("A")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.jobsCompleted.WithLabelValues("A")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.replenishments.WithLabelValues("A")))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.deadline.WithLabelValues("A")))
	assert.InDelta(t, 0.4, testutil.ToFloat64(c.bandwidth.WithLabelValues("A")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(c.utilization.WithLabelValues("A")), 1e-9)

	assert.Equal(t, 0.0, testutil.ToFloat64(c.workTicks.WithLabelValues("B")))
	assert.InDelta(t, 0.25, testutil.ToFloat64(c.bandwidth.WithLabelValues("B")), 1e-9)

	assert.Equal(t, 4.0, testutil.ToFloat64(c.clock))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.idleTicks))

	// One series per vcpu for each vector.
	assert.Equal(t, 2, testutil.CollectAndCount(c.workTicks))
	assert.Equal(t, 2, testutil.CollectAndCount(c.deadline))
}

func TestCollector_Write(t *testing.T) {
	s, res := runScenario(t)
	c := NewCollector()
	c.Observe(s, res)

	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf))

	out := buf.String()
	assert.Contains(t, out, "# TYPE cbs_sim_work_ticks_total counter")
	assert.Contains(t, out, `cbs_sim_work_ticks_total{vcpu="A"} 4`)
	assert.Contains(t, out, `cbs_sim_reserved_bandwidth_ratio{vcpu="B"} 0.25`)
	assert.Contains(t, out, "cbs_sim_clock_ticks 4")
}

func TestCollector_WriteTextfile(t *testing.T) {
	s, res := runScenario(t)
	c := NewCollector()
	c.Observe(s, res)
	path := filepath.Join(t.TempDir(), "cbs.prom")

	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cbs_sim_jobs_completed_total{vcpu="A"} 1`)
}

func TestCollector_WriteTextfile_BadPath(t *testing.T) {
	c := NewCollector()
	err := c.WriteTextfile(filepath.Join(t.TempDir(), "missing", "cbs.prom"))
	assert.Error(t, err)
}
