// Defines the Job struct that models one unit of demand submitted to a virtual CPU.
// Tracks arrival time, total work and the remaining-work counter.

package sim

import "fmt"

// JobState represents the lifecycle state of a job.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
)

// Job models a single job's lifecycle in the simulation.
type Job struct {
	ID          string   // Unique identifier for the job
	VCPU        string   // Name of the virtual CPU the job is submitted to
	ArrivalTime int64    // Tick at which the job enters its server's queue
	Work        int64    // Total execution units the job requires
	Remaining   int64    // Execution units still to be performed
	State       JobState // queued, running, completed
}

// newJobFromTemplate materializes a fresh job for admission. The template is
// never mutated, so an event list can be replayed by several simulators.
func newJobFromTemplate(tmpl Job, arrival int64, vcpu string) *Job {
	return &Job{
		ID:          tmpl.ID,
		VCPU:        vcpu,
		ArrivalTime: arrival,
		Work:        tmpl.Work,
		Remaining:   tmpl.Work,
		State:       JobQueued,
	}
}

// This function is used to print the job state in a readable format.
func (j Job) String() string {
	return fmt.Sprintf("Job: (ID: %s, VCPU: %s, State: %s, Remaining: %d/%d, ArrivedAt: %d)",
		j.ID, j.VCPU, j.State, j.Remaining, j.Work, j.ArrivalTime)
}
