// sim/simulator.go
package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/cbs-sim/sim/trace"
)

// ErrInvalidEvent is returned for an event with negative arrival or
// non-positive work.
var ErrInvalidEvent = errors.New("invalid simulation event")

// Simulator is the core object that holds simulation time, the run queue and
// the sorted arrival list. It advances one tick per executed unit of work and
// jumps over idle gaps.
type Simulator struct {
	Clock   int64
	Horizon int64
	// RunQueue owns one CBS server per configured virtual CPU.
	RunQueue *EDFRunQueue
	// VirtualCPUs backs the servers' VCPU pointers.
	VirtualCPUs []VirtualCPU

	events []SimulationEvent // sorted by arrival, stable
	next   int               // index of the first event not yet admitted

	// StepCount is the number of ticks on which a server executed.
	StepCount int64
	// IdleTicks is the number of ticks skipped with no active server.
	IdleTicks int64
	done      bool
}

// Result describes how a run ended.
type Result struct {
	Clock     int64 // first tick not simulated
	Admitted  int   // events admitted
	Total     int   // events supplied
	Completed bool  // every event admitted and every server drained
	Traces    []*trace.ServerTrace
}

// NewSimulator builds one CBS server per virtual CPU, registers them on an
// EDF run queue in configuration order and sorts the events by arrival.
// Events naming an unregistered virtual CPU are rejected up front.
func NewSimulator(cfg SimConfig, events []SimulationEvent) (*Simulator, error) {
	if err := cfg.CPU.Validate(); err != nil {
		return nil, err
	}
	if !IsValidReplenishmentRule(string(cfg.Replenish)) {
		return nil, fmt.Errorf("unknown replenishment rule %q; valid: now, postpone", cfg.Replenish)
	}

	s := &Simulator{
		Clock:       0,
		Horizon:     cfg.horizon(),
		RunQueue:    NewEDFRunQueue(cfg.CPU),
		VirtualCPUs: make([]VirtualCPU, len(cfg.VirtualCPUs)),
	}
	copy(s.VirtualCPUs, cfg.VirtualCPUs)

	for i := range s.VirtualCPUs {
		vcpu := &s.VirtualCPUs[i]
		if err := vcpu.Validate(); err != nil {
			return nil, err
		}
		if err := s.RunQueue.RegisterVCPU(NewCBSServer(vcpu, cfg.Replenish)); err != nil {
			return nil, err
		}
	}

	for i, ev := range events {
		if s.RunQueue.Lookup(ev.VCPU) == nil {
			return nil, fmt.Errorf("event %d (%s): %w %q", i, ev.Job.ID, ErrUnknownVirtualCPU, ev.VCPU)
		}
		if ev.ArrivalTime < 0 {
			return nil, fmt.Errorf("event %d (%s): %w: negative arrival %d", i, ev.Job.ID, ErrInvalidEvent, ev.ArrivalTime)
		}
		if ev.Job.Work <= 0 {
			return nil, fmt.Errorf("event %d (%s): %w: work must be positive, got %d", i, ev.Job.ID, ErrInvalidEvent, ev.Job.Work)
		}
		if _, ok := AddTicks(ev.ArrivalTime, ev.Job.Work); !ok {
			return nil, fmt.Errorf("event %d (%s): %w: arrival %d + work %d overflows the tick range",
				i, ev.Job.ID, ErrInvalidEvent, ev.ArrivalTime, ev.Job.Work)
		}
		if _, ok := AddTicks(ev.ArrivalTime, s.RunQueue.Lookup(ev.VCPU).VCPU.Period); !ok {
			return nil, fmt.Errorf("event %d (%s): %w: arrival %d + period of %s overflows the tick range",
				i, ev.Job.ID, ErrInvalidEvent, ev.ArrivalTime, ev.VCPU)
		}
	}
	if err := s.checkTickRange(events, cfg.Replenish); err != nil {
		return nil, err
	}
	s.events = SortEvents(events)

	if bw := s.RunQueue.Bandwidth(); bw > 1 {
		logrus.Warnf("total reserved bandwidth %.3f exceeds the CPU; deadlines will slip", bw)
	}
	return s, nil
}

// checkTickRange rejects event sets whose run could push the clock or a
// deadline past math.MaxInt64. The clock never passes the last arrival plus
// the total work. A deadline is at most one period past the clock, or under
// the postpone rule one period per replenishment, and a server replenishes
// at most once per unit of work.
func (sim *Simulator) checkTickRange(events []SimulationEvent, rule ReplenishmentRule) error {
	var lastArrival, totalWork int64
	work := make(map[string]int64)
	for _, ev := range events {
		lastArrival = max(lastArrival, ev.ArrivalTime)
		sum, ok := AddTicks(totalWork, ev.Job.Work)
		if !ok {
			return fmt.Errorf("%w: total work overflows the tick range", ErrInvalidEvent)
		}
		totalWork = sum
		work[ev.VCPU] += ev.Job.Work
	}
	end, ok := AddTicks(lastArrival, totalWork)
	if !ok {
		return fmt.Errorf("%w: last arrival %d + total work %d overflows the tick range", ErrInvalidEvent, lastArrival, totalWork)
	}

	for _, server := range sim.RunQueue.Servers() {
		span := server.VCPU.Period
		if rule == ReplenishPostpone {
			if span, ok = mulTicks(work[server.Name()], server.VCPU.Period); !ok {
				return fmt.Errorf("%w: postponed deadlines of %s overflow the tick range", ErrInvalidEvent, server.Name())
			}
		}
		if _, ok := AddTicks(end, span); !ok {
			return fmt.Errorf("%w: deadlines of %s overflow the tick range", ErrInvalidEvent, server.Name())
		}
	}
	return nil
}

// PendingEvents returns the number of events not yet admitted.
func (sim *Simulator) PendingEvents() int {
	return len(sim.events) - sim.next
}

// Done reports whether the run has terminated.
func (sim *Simulator) Done() bool {
	return sim.done
}

// Traces returns the per-server traces in registration order.
func (sim *Simulator) Traces() []*trace.ServerTrace {
	servers := sim.RunQueue.Servers()
	out := make([]*trace.ServerTrace, len(servers))
	for i, s := range servers {
		out[i] = s.Trace
	}
	return out
}

// Run steps the simulation until every event is admitted and every server
// is idle, or until the clock passes the horizon.
func (sim *Simulator) Run() Result {
	for !sim.Done() {
		if sim.Clock > sim.Horizon {
			logrus.Warnf("[tick %07d] horizon %d reached with %d pending events", sim.Clock, sim.Horizon, sim.PendingEvents())
			break
		}
		sim.Step()
	}
	logrus.Infof("[tick %07d] Simulation ended", sim.Clock)
	return Result{
		Clock:     sim.Clock,
		Admitted:  sim.next,
		Total:     len(sim.events),
		Completed: sim.done,
		Traces:    sim.Traces(),
	}
}

// Step performs one iteration of the engine at the current clock:
// admit every arrival due by now, then either execute one unit on the EDF
// choice and advance the clock by one, or jump to the next arrival when
// nothing is active. Returns false once the run has terminated.
func (sim *Simulator) Step() bool {
	if sim.done {
		return false
	}

	sim.admitArrivals()

	server := sim.RunQueue.GetServerWithEarliestDeadline()
	if server == nil {
		if sim.PendingEvents() == 0 {
			sim.done = true
			return false
		}
		next := sim.events[sim.next].Timestamp()
		logrus.Infof("[tick %07d] idle until: %d", sim.Clock, next)
		sim.IdleTicks += next - sim.Clock
		sim.Clock = next
		return true
	}

	logrus.Debugf("[tick %07d] running %s on %s", sim.Clock, server.Head().ID, server)
	if server.DoWork(sim.Clock) {
		server.Trace.Record(sim.Clock, trace.JobEnd)
	} else {
		server.Trace.Record(sim.Clock, trace.Work)
	}
	sim.StepCount++
	sim.Clock++

	if sim.PendingEvents() == 0 && sim.RunQueue.AllIdle() {
		sim.done = true
		return false
	}
	return true
}

func (sim *Simulator) admitArrivals() {
	for sim.next < len(sim.events) && sim.events[sim.next].Timestamp() <= sim.Clock {
		ev := sim.events[sim.next]
		sim.next++

		server := sim.RunQueue.Lookup(ev.VCPU)
		if server == nil {
			// NewSimulator rejects unknown names, so this is unreachable.
			panic(fmt.Sprintf("admitArrivals: %v: %v", ErrUnknownVirtualCPU, ev))
		}
		logrus.Debugf("[tick %07d] << Arrival: %s on %s", sim.Clock, ev.Job.ID, ev.VCPU)
		server.AddJob(newJobFromTemplate(ev.Job, ev.ArrivalTime, ev.VCPU))
		server.Trace.Record(sim.Clock, trace.NewJob)
	}
}
