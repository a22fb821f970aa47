package workload

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// MaxRate bounds the mean arrivals per tick per vcpu.
	MaxRate = 1000.0
	// MaxTicks bounds the generation window.
	MaxTicks = 100_000_000
	// MaxGeneratedEvents bounds the expected number of generated arrivals.
	MaxGeneratedEvents = 10_000_000
)

// GeneratorConfig parameterizes synthetic arrivals.
type GeneratorConfig struct {
	Seed    int64   // RNG seed; identical seeds give identical workloads
	Ticks   int64   // arrivals are generated for ticks [0, Ticks)
	Rate    float64 // mean arrivals per tick per vcpu (Poisson lambda)
	WorkMin int64   // minimum work per job (inclusive)
	WorkMax int64   // maximum work per job (inclusive)
}

// Validate checks the generator parameters.
func (c GeneratorConfig) Validate() error {
	if c.Ticks <= 0 || c.Ticks > MaxTicks {
		return fmt.Errorf("ticks must be in [1, %d], got %d", MaxTicks, c.Ticks)
	}
	if c.Rate <= 0 || math.IsNaN(c.Rate) || c.Rate > MaxRate {
		return fmt.Errorf("rate must be in (0, %g], got %g", MaxRate, c.Rate)
	}
	if c.WorkMin <= 0 {
		return fmt.Errorf("work-min must be positive, got %d", c.WorkMin)
	}
	if c.WorkMax < c.WorkMin {
		return fmt.Errorf("work-max %d below work-min %d", c.WorkMax, c.WorkMin)
	}
	return nil
}

// Generate returns a copy of base whose events are replaced by synthetic
// arrivals: per tick and per vcpu (in declaration order) a Poisson number of
// jobs, each with uniformly distributed work in [WorkMin, WorkMax].
// Deterministic given the same base and config.
func Generate(base *WorkloadSpec, cfg GeneratorConfig) (*WorkloadSpec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}
	if len(base.VCPUs) == 0 {
		return nil, fmt.Errorf("base spec has no vcpus")
	}
	if expected := float64(cfg.Ticks) * cfg.Rate * float64(len(base.VCPUs)); expected > MaxGeneratedEvents {
		return nil, fmt.Errorf("expected %.0f arrivals exceeds the limit of %d; lower ticks or rate", expected, MaxGeneratedEvents)
	}

	src := rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)^0x9e3779b97f4a7c15)
	arrivals := distuv.Poisson{Lambda: cfg.Rate, Src: src}
	work := distuv.Uniform{Min: float64(cfg.WorkMin), Max: float64(cfg.WorkMax + 1), Src: src}

	out := *base
	out.VCPUs = append([]VCPUSpec(nil), base.VCPUs...)
	out.Events = make([]EventSpec, 0)

	for tick := int64(0); tick < cfg.Ticks; tick++ {
		for _, v := range base.VCPUs {
			n := int(arrivals.Rand())
			for k := 0; k < n; k++ {
				w := min(int64(math.Floor(work.Rand())), cfg.WorkMax)
				out.Events = append(out.Events, EventSpec{
					ID:      fmt.Sprintf("%s_%d", v.Name, len(out.Events)),
					VCPU:    v.Name,
					Arrival: tick,
					Work:    w,
				})
			}
		}
	}
	logrus.Infof("generated %d arrivals over %d ticks for %d vcpus (seed=%d)",
		len(out.Events), cfg.Ticks, len(base.VCPUs), cfg.Seed)
	return &out, nil
}
