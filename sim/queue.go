// Implements the JobQueue, which holds the jobs pending on one CBS server.
// Jobs are enqueued on admission and served strictly FIFO.

package sim

import (
	"fmt"
	"strings"
)

// JobQueue represents a FIFO queue of jobs waiting on a single virtual CPU.
// The job at the head is the one currently being served.
type JobQueue struct {
	queue []*Job // FIFO queue of jobs
}

// Enqueue adds a job to the back of the queue.
func (jq *JobQueue) Enqueue(j *Job) {
	if j == nil {
		panic("Enqueue: job must not be nil")
	}
	jq.queue = append(jq.queue, j)
}

func (jq *JobQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	items := jq.items()
	for i, val := range items {
		sb.WriteString(fmt.Sprint(val.ID))
		if i < len(items)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of jobs in the queue.
func (jq *JobQueue) Len() int {
	return len(jq.queue)
}

// Peek returns the job at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (jq *JobQueue) Peek() *Job {
	if len(jq.queue) == 0 {
		return nil
	}
	return jq.queue[0]
}

// Dequeue removes and returns the job at the front of the queue.
// Returns nil if the queue is empty.
func (jq *JobQueue) Dequeue() *Job {
	if len(jq.queue) == 0 {
		return nil
	}
	head := jq.queue[0]
	jq.queue[0] = nil
	jq.queue = jq.queue[1:]
	return head
}

// items returns the queue's internal storage, head first.
func (jq *JobQueue) items() []*Job {
	return jq.queue
}
