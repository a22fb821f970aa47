package workload

import (
	"fmt"
)

// ComposeSpecs merges multiple WorkloadSpecs into a single spec.
// Virtual CPU lists and events are concatenated in input order and CPU
// capacities summed, so every input keeps room for its vcpus. A vcpu name may
// appear in only one input. The horizon is the largest input horizon, or 0
// (unbounded) when any input is unbounded. Inputs must agree on the
// replenishment rule when they set one.
func ComposeSpecs(specs []*WorkloadSpec) (*WorkloadSpec, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one spec file required")
	}

	merged := &WorkloadSpec{
		Version: CurrentVersion,
		CPU:     CPUSpec{Name: specs[0].CPU.Name},
	}

	owner := make(map[string]int)
	unbounded := false
	for i, s := range specs {
		merged.CPU.Capacity += s.CPU.Capacity

		if s.Replenish != "" {
			if merged.Replenish != "" && merged.Replenish != s.Replenish {
				return nil, fmt.Errorf("spec %d: replenish rule %q conflicts with %q", i, s.Replenish, merged.Replenish)
			}
			merged.Replenish = s.Replenish
		}

		if s.Horizon == 0 {
			unbounded = true
		}
		merged.Horizon = max(merged.Horizon, s.Horizon)

		for _, v := range s.VCPUs {
			if prev, dup := owner[v.Name]; dup {
				return nil, fmt.Errorf("spec %d: vcpu %q already defined by spec %d", i, v.Name, prev)
			}
			owner[v.Name] = i
			merged.VCPUs = append(merged.VCPUs, v)
		}
		merged.Events = append(merged.Events, s.Events...)
	}
	if unbounded {
		merged.Horizon = 0
	}

	return merged, nil
}
