package trace

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ServerSummary aggregates statistics from one ServerTrace.
type ServerSummary struct {
	Server        string  `json:"server"`
	JobsAdmitted  int     `json:"jobs_admitted"`
	JobsCompleted int     `json:"jobs_completed"`
	WorkTicks     int     `json:"work_ticks"` // Work + JobEnd events
	Utilization   float64 `json:"utilization"`
	// Response time is JobEnd tick + 1 - NewJob tick, in ticks.
	MeanResponse   float64 `json:"mean_response"`
	MaxResponse    float64 `json:"max_response"`
	StdDevResponse float64 `json:"stddev_response"`
}

// Summarize computes aggregate statistics from a ServerTrace.
// makespan is the number of simulated ticks the run covered; utilization
// is WorkTicks/makespan and zero when makespan is not positive.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *ServerTrace, makespan int64) *ServerSummary {
	summary := &ServerSummary{}
	if st == nil {
		return summary
	}
	summary.Server = st.Server

	// Servers are FIFO, so the i-th admission is completed by the i-th JobEnd.
	var arrivals []int64
	var responses []float64
	for _, ev := range st.Events {
		switch ev.Action {
		case NewJob:
			summary.JobsAdmitted++
			arrivals = append(arrivals, ev.Tick)
		case Work:
			summary.WorkTicks++
		case JobEnd:
			summary.WorkTicks++
			if summary.JobsCompleted < len(arrivals) {
				responses = append(responses, float64(ev.Tick+1-arrivals[summary.JobsCompleted]))
			}
			summary.JobsCompleted++
		}
	}

	if makespan > 0 {
		summary.Utilization = float64(summary.WorkTicks) / float64(makespan)
	}
	if len(responses) > 0 {
		summary.MeanResponse = stat.Mean(responses, nil)
		summary.MaxResponse = floats.Max(responses)
	}
	if len(responses) > 1 {
		summary.StdDevResponse = stat.StdDev(responses, nil)
	}
	return summary
}

// SummarizeAll summarizes every trace in order.
func SummarizeAll(traces []*ServerTrace, makespan int64) []*ServerSummary {
	out := make([]*ServerSummary, 0, len(traces))
	for _, st := range traces {
		out = append(out, Summarize(st, makespan))
	}
	return out
}
