package sim

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownVirtualCPU is returned when an event targets a virtual CPU
	// that no server was registered for.
	ErrUnknownVirtualCPU = errors.New("unknown virtual CPU")
	// ErrInvalidVirtualCPU is returned for a virtual CPU with an empty name or
	// a non-positive budget or period.
	ErrInvalidVirtualCPU = errors.New("invalid virtual CPU")
	// ErrDuplicateVirtualCPU is returned when two virtual CPUs share a name.
	ErrDuplicateVirtualCPU = errors.New("duplicate virtual CPU")
	// ErrRunQueueFull is returned when more servers are registered than the
	// physical CPU capacity allows.
	ErrRunQueueFull = errors.New("run queue full")
	// ErrInvalidCPU is returned for a physical CPU with non-positive capacity.
	ErrInvalidCPU = errors.New("invalid CPU")
)

// VirtualCPU groups the reservation parameters of one virtual CPU.
// Budget (Q) execution units are granted every Period (P) ticks.
type VirtualCPU struct {
	Name   string // unique name events refer to
	Budget int64  // Q: execution units per period (must be > 0)
	Period int64  // P: ticks between replenishments (must be > 0)
}

// Validate checks the reservation parameters.
func (v VirtualCPU) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidVirtualCPU)
	}
	if v.Budget <= 0 {
		return fmt.Errorf("%w: %s: budget must be positive, got %d", ErrInvalidVirtualCPU, v.Name, v.Budget)
	}
	if v.Period <= 0 {
		return fmt.Errorf("%w: %s: period must be positive, got %d", ErrInvalidVirtualCPU, v.Name, v.Period)
	}
	return nil
}

// Bandwidth returns the reserved CPU share Q/P.
func (v VirtualCPU) Bandwidth() float64 {
	if v.Period <= 0 {
		return 0
	}
	return float64(v.Budget) / float64(v.Period)
}

// CPUConfig describes the physical CPU the virtual CPUs share.
type CPUConfig struct {
	Name     string // informational
	Capacity int    // maximum number of servers the run queue accepts (must be > 0)
}

// Validate checks the physical CPU parameters.
func (c CPUConfig) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidCPU, c.Capacity)
	}
	return nil
}

// SimConfig groups everything a Simulator needs besides its event list.
type SimConfig struct {
	CPU         CPUConfig
	VirtualCPUs []VirtualCPU
	Horizon     int64             // last tick that may execute; 0 means unbounded
	Replenish   ReplenishmentRule // "now" (default) or "postpone"
}

// AddTicks returns a+b for non-negative tick values and false when the sum
// does not fit in an int64.
func AddTicks(a, b int64) (int64, bool) {
	if b > math.MaxInt64-a {
		return 0, false
	}
	return a + b, true
}

// mulTicks returns a*b for non-negative tick values and false on overflow.
func mulTicks(a, b int64) (int64, bool) {
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}
	return a * b, true
}

// horizon returns the effective horizon, mapping the zero value to unbounded.
func (c SimConfig) horizon() int64 {
	if c.Horizon <= 0 {
		return math.MaxInt64
	}
	return c.Horizon
}
