package report

import (
	"encoding/json"
	"io"

	"github.com/inference-sim/cbs-sim/sim"
	"github.com/inference-sim/cbs-sim/sim/trace"
)

// RunDocument is the JSON form of a finished run.
type RunDocument struct {
	Clock     int64                  `json:"clock"`
	Completed bool                   `json:"completed"`
	Admitted  int                    `json:"admitted"`
	Total     int                    `json:"total"`
	Traces    []*trace.ServerTrace   `json:"traces"`
	Summaries []*trace.ServerSummary `json:"summaries"`
}

// NewRunDocument assembles the JSON document for a result.
func NewRunDocument(res sim.Result) *RunDocument {
	return &RunDocument{
		Clock:     res.Clock,
		Completed: res.Completed,
		Admitted:  res.Admitted,
		Total:     res.Total,
		Traces:    res.Traces,
		Summaries: trace.SummarizeAll(res.Traces, res.Clock),
	}
}

// JSON writes the run document, indented when pretty is set.
func JSON(w io.Writer, res sim.Result, pretty bool) error {
	encoder := json.NewEncoder(w)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(NewRunDocument(res))
}
