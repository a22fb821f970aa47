package sim

import (
	"testing"
)

func TestJobQueue_Peek_NonEmpty_ReturnsFront(t *testing.T) {
	// GIVEN a queue with jobs [A, B]
	jq := &JobQueue{}
	jobA := &Job{ID: "A"}
	jobB := &Job{ID: "B"}
	jq.Enqueue(jobA)
	jq.Enqueue(jobB)

	// WHEN Peek() is called
	got := jq.Peek()

	// THEN it returns the front element without removing it
	if got != jobA {
		t.Errorf("Peek: got job %v, want %v", got.ID, jobA.ID)
	}
	if jq.Len() != 2 {
		t.Errorf("Peek modified queue length: got %d, want 2", jq.Len())
	}
}

func TestJobQueue_Peek_Empty_ReturnsNil(t *testing.T) {
	jq := &JobQueue{}

	if got := jq.Peek(); got != nil {
		t.Errorf("Peek on empty queue: got %v, want nil", got)
	}
	if got := jq.Dequeue(); got != nil {
		t.Errorf("Dequeue on empty queue: got %v, want nil", got)
	}
}

func TestJobQueue_Dequeue_FIFO(t *testing.T) {
	// GIVEN a queue with jobs [A, B, C]
	jq := &JobQueue{}
	for _, id := range []string{"A", "B", "C"} {
		jq.Enqueue(&Job{ID: id})
	}

	// WHEN all jobs are dequeued
	var got []string
	for jq.Len() > 0 {
		got = append(got, jq.Dequeue().ID)
	}

	// THEN they come out in enqueue order
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("Dequeue order: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Dequeue order: got %v, want %v", got, want)
			break
		}
	}
}

func TestJobQueue_Enqueue_NilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on nil job")
		}
	}()
	(&JobQueue{}).Enqueue(nil)
}

func TestJobQueue_String(t *testing.T) {
	jq := &JobQueue{}
	jq.Enqueue(&Job{ID: "A"})
	jq.Enqueue(&Job{ID: "B"})

	if got := jq.String(); got != "[A B]" {
		t.Errorf("String: got %q, want %q", got, "[A B]")
	}
}
