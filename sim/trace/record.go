// Package trace provides per-server scheduling trace recording.
// This package has no dependencies on sim/ and stores pure data types.
package trace

import (
	"encoding/json"
	"fmt"
)

// RunAction identifies what happened on a server during one tick.
type RunAction int

const (
	// NewJob marks the admission of a job into the server's queue.
	NewJob RunAction = iota
	// Work marks one unit of execution that did not complete the head job.
	Work
	// JobEnd marks the unit of execution that completed the head job.
	JobEnd
)

var runActionNames = map[RunAction]string{
	NewJob: "new_job",
	Work:   "work",
	JobEnd: "job_end",
}

func (a RunAction) String() string {
	if name, ok := runActionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("RunAction(%d)", int(a))
}

// MarshalJSON encodes the action by name so JSON traces stay readable.
func (a RunAction) MarshalJSON() ([]byte, error) {
	name, ok := runActionNames[a]
	if !ok {
		return nil, fmt.Errorf("unknown run action %d", int(a))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes an action name produced by MarshalJSON.
func (a *RunAction) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for action, n := range runActionNames {
		if n == name {
			*a = action
			return nil
		}
	}
	return fmt.Errorf("unknown run action %q", name)
}

// RunEvent captures a single scheduling decision for one server.
type RunEvent struct {
	Tick   int64     `json:"tick"`
	Action RunAction `json:"action"`
}
