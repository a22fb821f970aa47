package trace

import "fmt"

// ServerTrace collects the run events of one CBS server in tick order.
type ServerTrace struct {
	Server string     `json:"server"`
	Events []RunEvent `json:"events"`
}

// NewServerTrace creates an empty ServerTrace for the named server.
func NewServerTrace(server string) *ServerTrace {
	return &ServerTrace{
		Server: server,
		Events: make([]RunEvent, 0),
	}
}

// Record appends a run event. Records must arrive in non-decreasing tick
// order; an out-of-order record is a programming error and panics.
func (st *ServerTrace) Record(tick int64, action RunAction) {
	if n := len(st.Events); n > 0 && st.Events[n-1].Tick > tick {
		panic(fmt.Sprintf("Record: tick %d precedes last recorded tick %d on server %s",
			tick, st.Events[n-1].Tick, st.Server))
	}
	st.Events = append(st.Events, RunEvent{Tick: tick, Action: action})
}

// Len returns the number of recorded events.
func (st *ServerTrace) Len() int {
	return len(st.Events)
}

// Count returns how many events carry the given action.
func (st *ServerTrace) Count(action RunAction) int {
	n := 0
	for _, ev := range st.Events {
		if ev.Action == action {
			n++
		}
	}
	return n
}

// LastTick returns the tick of the final event, or -1 for an empty trace.
func (st *ServerTrace) LastTick() int64 {
	if len(st.Events) == 0 {
		return -1
	}
	return st.Events[len(st.Events)-1].Tick
}
