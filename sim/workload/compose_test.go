package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeSpecs_ConcatenatesInOrder(t *testing.T) {
	// GIVEN two specs with disjoint vcpus
	a := &WorkloadSpec{
		Version: "1", CPU: CPUSpec{Name: "cpu0", Capacity: 1},
		VCPUs:  []VCPUSpec{{Name: "A", Budget: 2, Period: 5}},
		Events: []EventSpec{{ID: "a0", VCPU: "A", Arrival: 3, Work: 1}},
	}
	b := &WorkloadSpec{
		Version: "1", CPU: CPUSpec{Name: "cpu1", Capacity: 2}, Replenish: "postpone",
		VCPUs:  []VCPUSpec{{Name: "B", Budget: 1, Period: 4}},
		Events: []EventSpec{{ID: "b0", VCPU: "B", Arrival: 0, Work: 2}},
	}

	// WHEN composed
	merged, err := ComposeSpecs([]*WorkloadSpec{a, b})

	// THEN lists are concatenated, capacity summed and the result validates
	require.NoError(t, err)
	assert.Equal(t, "cpu0", merged.CPU.Name)
	assert.Equal(t, 3, merged.CPU.Capacity)
	assert.Equal(t, "postpone", merged.Replenish)
	require.Len(t, merged.VCPUs, 2)
	assert.Equal(t, "A", merged.VCPUs[0].Name)
	assert.Equal(t, "B", merged.VCPUs[1].Name)
	require.Len(t, merged.Events, 2)
	assert.Equal(t, "a0", merged.Events[0].ID)
	assert.Equal(t, "b0", merged.Events[1].ID)
	assert.NoError(t, merged.Validate())
}

func TestComposeSpecs_DuplicateVCPU(t *testing.T) {
	a := &WorkloadSpec{CPU: CPUSpec{Capacity: 1}, VCPUs: []VCPUSpec{{Name: "A", Budget: 1, Period: 2}}}
	b := &WorkloadSpec{CPU: CPUSpec{Capacity: 1}, VCPUs: []VCPUSpec{{Name: "A", Budget: 1, Period: 3}}}

	_, err := ComposeSpecs([]*WorkloadSpec{a, b})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `vcpu "A" already defined by spec 0`)
}

func TestComposeSpecs_ConflictingRule(t *testing.T) {
	a := &WorkloadSpec{Replenish: "now"}
	b := &WorkloadSpec{Replenish: "postpone"}

	_, err := ComposeSpecs([]*WorkloadSpec{a, b})

	assert.Error(t, err)
}

func TestComposeSpecs_Horizon(t *testing.T) {
	bounded := func(h int64) *WorkloadSpec { return &WorkloadSpec{Horizon: h} }

	merged, err := ComposeSpecs([]*WorkloadSpec{bounded(10), bounded(40)})
	require.NoError(t, err)
	assert.Equal(t, int64(40), merged.Horizon)

	merged, err = ComposeSpecs([]*WorkloadSpec{bounded(10), bounded(0)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), merged.Horizon, "an unbounded input keeps the result unbounded")
}

func TestComposeSpecs_Empty(t *testing.T) {
	_, err := ComposeSpecs(nil)
	assert.Error(t, err)
}
