// Package sim provides the core discrete-event simulation engine for
// Constant Bandwidth Servers scheduled Earliest-Deadline-First.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - cbs.go: CBS server budget/deadline state machine (AddJob, DoWork)
//   - scheduler.go: EDF run queue selecting the active server with the earliest deadline
//   - simulator.go: the tick loop (admission, selection, one unit of work, idle skip)
//
// # Architecture
//
// The sim package holds the engine; supporting code lives in sub-packages:
//   - sim/trace/: per-server run-event records and summary statistics
//   - sim/workload/: YAML workload specs and synthetic workload generation
//   - sim/report/: Gantt, JSON and table rendering of finished runs
//   - sim/metrics/: Prometheus export of per-server counters
//
// # Determinism
//
// A run is a pure function of its SimConfig and event list. Events are
// stable-sorted by arrival and EDF ties resolve to the earliest registered
// server, so identical inputs always yield identical traces.
package sim
