package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/cbs-sim/sim"
	"github.com/inference-sim/cbs-sim/sim/trace"
)

func scenarioResult(t *testing.T) (*sim.Simulator, sim.Result) {
	t.Helper()
	cfg := sim.SimConfig{
		CPU:         sim.CPUConfig{Capacity: 2},
		VirtualCPUs: []sim.VirtualCPU{{Name: "A", Budget: 2, Period: 5}, {Name: "B", Budget: 1, Period: 4}},
	}
	events := []sim.SimulationEvent{
		{Job: sim.Job{ID: "a0", Work: 4}, ArrivalTime: 0, VCPU: "A"},
	}
	s, err := sim.NewSimulator(cfg, events)
	require.NoError(t, err)
	return s, s.Run()
}

func TestJSON_DocumentRoundTrips(t *testing.T) {
	// GIVEN a finished run where B never received a job
	_, res := scenarioResult(t)

	// WHEN encoded
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, res, false))

	// THEN actions are written by name and decode back to the same traces
	assert.Contains(t, buf.String(), `"action":"new_job"`)
	assert.Contains(t, buf.String(), `"action":"job_end"`)

	var doc RunDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, int64(4), doc.Clock)
	assert.True(t, doc.Completed)
	assert.Equal(t, 1, doc.Admitted)
	require.Len(t, doc.Traces, 2)
	assert.Equal(t, res.Traces[0].Events, doc.Traces[0].Events)
	assert.Empty(t, doc.Traces[1].Events)

	require.Len(t, doc.Summaries, 2)
	assert.Equal(t, "A", doc.Summaries[0].Server)
	assert.Equal(t, 4, doc.Summaries[0].WorkTicks)
	assert.Equal(t, 0, doc.Summaries[1].JobsAdmitted)
}

func TestJSON_Pretty(t *testing.T) {
	_, res := scenarioResult(t)

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, res, true))

	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \"clock\": 4"))
}

func TestNewRunDocument_SummariesFollowTraceOrder(t *testing.T) {
	res := sim.Result{
		Clock: 2,
		Traces: []*trace.ServerTrace{
			traceOf("X", at(0, trace.NewJob), at(0, trace.JobEnd)),
			traceOf("Y"),
		},
	}

	doc := NewRunDocument(res)

	require.Len(t, doc.Summaries, 2)
	assert.Equal(t, "X", doc.Summaries[0].Server)
	assert.InDelta(t, 0.5, doc.Summaries[0].Utilization, 1e-9)
	assert.Equal(t, "Y", doc.Summaries[1].Server)
}
