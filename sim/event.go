package sim

import (
	"fmt"
	"sort"
)

// SimulationEvent is the arrival of a job at a virtual CPU.
// Events are read-only inputs; the simulator copies the job template on
// admission.
type SimulationEvent struct {
	Job         Job    // template; only ID and Work are read
	ArrivalTime int64  // tick at which the job is admitted
	VCPU        string // name of the target virtual CPU
}

// Timestamp returns the arrival tick of the event.
func (e SimulationEvent) Timestamp() int64 {
	return e.ArrivalTime
}

func (e SimulationEvent) String() string {
	return fmt.Sprintf("Arrival(%s -> %s @ %d, work=%d)", e.Job.ID, e.VCPU, e.ArrivalTime, e.Job.Work)
}

// SortEvents returns a copy of events ordered by ascending arrival tick.
// The sort is stable: events sharing a tick keep their input order, which
// fixes the admission order of simultaneous arrivals.
func SortEvents(events []SimulationEvent) []SimulationEvent {
	sorted := make([]SimulationEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp() < sorted[j].Timestamp()
	})
	return sorted
}
