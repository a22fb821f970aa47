package workload

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/cbs-sim/sim"
)

// CurrentVersion is the schema version written by Encode.
const CurrentVersion = "1"

// WorkloadSpec is the top-level workload configuration: the physical CPU, its
// virtual CPUs and the job arrivals. Loaded from YAML via LoadWorkloadSpec(path).
type WorkloadSpec struct {
	Version   string      `yaml:"version"`
	CPU       CPUSpec     `yaml:"cpu"`
	Replenish string      `yaml:"replenish,omitempty"` // "now" (default) or "postpone"
	Horizon   int64       `yaml:"horizon,omitempty"`   // 0 = run until drained
	VCPUs     []VCPUSpec  `yaml:"vcpus"`
	Events    []EventSpec `yaml:"events"`
}

// CPUSpec describes the physical CPU.
type CPUSpec struct {
	Name     string `yaml:"name,omitempty"`
	Capacity int    `yaml:"capacity"`
}

// VCPUSpec defines one virtual CPU reservation.
type VCPUSpec struct {
	Name   string `yaml:"name"`
	Budget int64  `yaml:"budget"` // Q
	Period int64  `yaml:"period"` // P
}

// EventSpec defines one job arrival.
type EventSpec struct {
	ID      string `yaml:"id,omitempty"` // defaults to job_<index>
	VCPU    string `yaml:"vcpu"`
	Arrival int64  `yaml:"arrival"`
	Work    int64  `yaml:"work"`
}

// LoadWorkloadSpec reads and parses a YAML workload specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadWorkloadSpec(path string) (*WorkloadSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload spec: %w", err)
	}
	return ParseWorkloadSpec(data)
}

// ParseWorkloadSpec parses a YAML workload specification.
func ParseWorkloadSpec(data []byte) (*WorkloadSpec, error) {
	var spec WorkloadSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing workload spec: %w", err)
	}
	if spec.Version == "" {
		spec.Version = CurrentVersion
	}
	return &spec, nil
}

// Encode writes the spec as YAML.
func (s *WorkloadSpec) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding workload spec: %w", err)
	}
	return enc.Close()
}

// Validate checks every field of the spec and reports all problems at once.
// The returned error, if any, combines the individual errors; use
// multierr.Errors to enumerate them.
func (s *WorkloadSpec) Validate() error {
	var err error
	if s.Version != CurrentVersion {
		err = multierr.Append(err, fmt.Errorf("unsupported version %q; valid: %s", s.Version, CurrentVersion))
	}
	if s.CPU.Capacity <= 0 {
		err = multierr.Append(err, fmt.Errorf("cpu.capacity must be positive, got %d", s.CPU.Capacity))
	}
	if !sim.IsValidReplenishmentRule(s.Replenish) {
		err = multierr.Append(err, fmt.Errorf("unknown replenish rule %q; valid: now, postpone", s.Replenish))
	}
	if s.Horizon < 0 {
		err = multierr.Append(err, fmt.Errorf("horizon must not be negative, got %d", s.Horizon))
	}
	if len(s.VCPUs) == 0 {
		err = multierr.Append(err, fmt.Errorf("at least one vcpu required"))
	}
	if s.CPU.Capacity > 0 && len(s.VCPUs) > s.CPU.Capacity {
		err = multierr.Append(err, fmt.Errorf("%d vcpus exceed cpu.capacity %d", len(s.VCPUs), s.CPU.Capacity))
	}

	known := make(map[string]bool, len(s.VCPUs))
	periods := make(map[string]int64, len(s.VCPUs))
	bandwidth := 0.0
	for i, v := range s.VCPUs {
		err = multierr.Append(err, validateVCPU(&v, i, known))
		known[v.Name] = true
		if _, seen := periods[v.Name]; !seen {
			periods[v.Name] = v.Period
		}
		if v.Period > 0 {
			bandwidth += float64(v.Budget) / float64(v.Period)
		}
	}
	if bandwidth > 1 {
		logrus.Warnf("total reserved bandwidth %.3f exceeds 1.0", bandwidth)
	}

	ids := make(map[string]int, len(s.Events))
	for i, e := range s.Events {
		err = multierr.Append(err, validateEvent(&e, i, known, periods))
		if e.ID == "" {
			continue
		}
		if prev, dup := ids[e.ID]; dup {
			err = multierr.Append(err, fmt.Errorf("events[%d]: id %q already used by events[%d]", i, e.ID, prev))
		}
		ids[e.ID] = i
	}
	return err
}

func validateVCPU(v *VCPUSpec, idx int, seen map[string]bool) error {
	prefix := fmt.Sprintf("vcpus[%d]", idx)
	var err error
	if v.Name == "" {
		err = multierr.Append(err, fmt.Errorf("%s: name must not be empty", prefix))
	} else if seen[v.Name] {
		err = multierr.Append(err, fmt.Errorf("%s: duplicate name %q", prefix, v.Name))
	}
	if v.Budget <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s: budget must be positive, got %d", prefix, v.Budget))
	}
	if v.Period <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s: period must be positive, got %d", prefix, v.Period))
	}
	if v.Budget > v.Period && v.Period > 0 {
		logrus.Warnf("%s: budget %d exceeds period %d; %s reserves more than the whole CPU", prefix, v.Budget, v.Period, v.Name)
	}
	return err
}

func validateEvent(e *EventSpec, idx int, known map[string]bool, periods map[string]int64) error {
	prefix := fmt.Sprintf("events[%d]", idx)
	var err error
	if !known[e.VCPU] {
		err = multierr.Append(err, fmt.Errorf("%s: %w %q", prefix, sim.ErrUnknownVirtualCPU, e.VCPU))
	}
	if e.Arrival < 0 {
		err = multierr.Append(err, fmt.Errorf("%s: arrival must not be negative, got %d", prefix, e.Arrival))
	}
	if e.Work <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s: work must be positive, got %d", prefix, e.Work))
	}
	if e.Arrival >= 0 && e.Work > 0 {
		if _, ok := sim.AddTicks(e.Arrival, e.Work); !ok {
			err = multierr.Append(err, fmt.Errorf("%s: %w: arrival %d + work %d overflows the tick range", prefix, sim.ErrInvalidEvent, e.Arrival, e.Work))
		}
	}
	if p := periods[e.VCPU]; e.Arrival >= 0 && p > 0 {
		if _, ok := sim.AddTicks(e.Arrival, p); !ok {
			err = multierr.Append(err, fmt.Errorf("%s: %w: arrival %d + period %d overflows the tick range", prefix, sim.ErrInvalidEvent, e.Arrival, p))
		}
	}
	return err
}

// SimConfig converts the spec into the engine configuration.
func (s *WorkloadSpec) SimConfig() sim.SimConfig {
	vcpus := make([]sim.VirtualCPU, len(s.VCPUs))
	for i, v := range s.VCPUs {
		vcpus[i] = sim.VirtualCPU{Name: v.Name, Budget: v.Budget, Period: v.Period}
	}
	return sim.SimConfig{
		CPU:         sim.CPUConfig{Name: s.CPU.Name, Capacity: s.CPU.Capacity},
		VirtualCPUs: vcpus,
		Horizon:     s.Horizon,
		Replenish:   sim.ReplenishmentRule(s.Replenish),
	}
}

// SimulationEvents converts the spec's arrivals, in input order, into engine
// events. Jobs without an ID are named job_<index>.
func (s *WorkloadSpec) SimulationEvents() []sim.SimulationEvent {
	events := make([]sim.SimulationEvent, len(s.Events))
	for i, e := range s.Events {
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("job_%d", i)
		}
		events[i] = sim.SimulationEvent{
			Job:         sim.Job{ID: id, Work: e.Work},
			ArrivalTime: e.Arrival,
			VCPU:        e.VCPU,
		}
	}
	return events
}

// NewSimulator validates the spec and builds a simulator from it.
func (s *WorkloadSpec) NewSimulator() (*sim.Simulator, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workload spec: %w", err)
	}
	return sim.NewSimulator(s.SimConfig(), s.SimulationEvents())
}
