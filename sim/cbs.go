package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/cbs-sim/sim/trace"
)

// ServerState represents the activity state of a CBS server.
type ServerState string

const (
	// ServerIdle means the job queue is empty.
	ServerIdle ServerState = "idle"
	// ServerActive means at least one job is queued and competes for the CPU.
	ServerActive ServerState = "active"
)

// ReplenishmentRule selects how a new deadline is derived when an exhausted
// budget is refilled.
type ReplenishmentRule string

const (
	// ReplenishFromNow sets deadline = now + P (default).
	ReplenishFromNow ReplenishmentRule = "now"
	// ReplenishPostpone sets deadline = max(deadline, now) + P, the classic
	// CBS postponement that keeps consecutive periods back to back.
	ReplenishPostpone ReplenishmentRule = "postpone"
)

// validReplenishmentRules maps accepted rule strings.
var validReplenishmentRules = map[ReplenishmentRule]bool{
	ReplenishFromNow:  true,
	ReplenishPostpone: true,
	"":                true, // empty defaults to now
}

// IsValidReplenishmentRule returns true if the given rule string is recognized.
func IsValidReplenishmentRule(rule string) bool {
	return validReplenishmentRules[ReplenishmentRule(rule)]
}

// CBSServer enforces a Constant Bandwidth Server reservation for one virtual
// CPU: at most Budget units of execution per Period ticks of deadline.
// Jobs are served FIFO; the head of the queue is the job in service.
type CBSServer struct {
	VCPU *VirtualCPU
	Rule ReplenishmentRule

	budget   int64 // remaining units in the current period, in [0, VCPU.Budget]
	deadline int64 // absolute tick the current period ends
	state    ServerState
	jobs     JobQueue

	// Trace records the server's scheduling decisions in tick order.
	Trace *trace.ServerTrace

	replenishments int
	workTicks      int64
}

// NewCBSServer creates an idle server with an empty budget and a zero deadline.
// An empty rule means ReplenishFromNow. Panics if vcpu is nil or the rule is
// unknown.
func NewCBSServer(vcpu *VirtualCPU, rule ReplenishmentRule) *CBSServer {
	if vcpu == nil {
		panic("NewCBSServer: vcpu must not be nil")
	}
	if !IsValidReplenishmentRule(string(rule)) {
		panic(fmt.Sprintf("NewCBSServer: unknown replenishment rule %q", rule))
	}
	if rule == "" {
		rule = ReplenishFromNow
	}
	return &CBSServer{
		VCPU:  vcpu,
		Rule:  rule,
		state: ServerIdle,
		Trace: trace.NewServerTrace(vcpu.Name),
	}
}

// Name returns the name of the virtual CPU this server reserves for.
func (s *CBSServer) Name() string { return s.VCPU.Name }

// Budget returns the units left in the current reservation period.
func (s *CBSServer) Budget() int64 { return s.budget }

// Deadline returns the absolute end of the current reservation period.
func (s *CBSServer) Deadline() int64 { return s.deadline }

// State returns the server's activity state.
func (s *CBSServer) State() ServerState { return s.state }

// Active reports whether the server competes for the CPU.
func (s *CBSServer) Active() bool { return s.state == ServerActive }

// QueueLen returns the number of jobs queued, including the one in service.
func (s *CBSServer) QueueLen() int { return s.jobs.Len() }

// Head returns the job in service, or nil when idle.
func (s *CBSServer) Head() *Job { return s.jobs.Peek() }

// Replenishments returns how many times the budget was refilled.
func (s *CBSServer) Replenishments() int { return s.replenishments }

// WorkTicks returns the number of ticks the server executed.
func (s *CBSServer) WorkTicks() int64 { return s.workTicks }

// AddJob enqueues a job at the tail of the queue and marks the server active.
// Budget and deadline are left untouched: a new period only starts when
// DoWork finds the budget exhausted.
func (s *CBSServer) AddJob(job *Job) {
	s.jobs.Enqueue(job)
	job.State = JobQueued
	if s.state == ServerIdle {
		logrus.Debugf("server %s: idle -> active (budget=%d, deadline=%d)", s.Name(), s.budget, s.deadline)
		s.state = ServerActive
	}
}

// DoWork executes one unit of the head job at tick now and reports whether
// that job completed. An exhausted budget is first replenished to Q with the
// deadline moved a full period out, which bounds the long-run share to Q/P.
// Panics when called on an empty queue.
func (s *CBSServer) DoWork(now int64) bool {
	job := s.jobs.Peek()
	if job == nil {
		panic(fmt.Sprintf("DoWork: server %s has no queued job", s.Name()))
	}

	if s.budget == 0 {
		s.deadline = s.nextDeadline(now)
		s.budget = s.VCPU.Budget
		s.replenishments++
		logrus.Debugf("[tick %07d] server %s replenished: budget=%d, deadline=%d",
			now, s.Name(), s.budget, s.deadline)
	}

	job.State = JobRunning
	job.Remaining--
	s.budget--
	s.workTicks++
	s.checkInvariants()

	if job.Remaining > 0 {
		return false
	}

	job.State = JobCompleted
	s.jobs.Dequeue()
	logrus.Debugf("[tick %07d] server %s completed %s", now, s.Name(), job.ID)
	if s.jobs.Len() == 0 {
		s.state = ServerIdle
	}
	return true
}

func (s *CBSServer) nextDeadline(now int64) int64 {
	if s.Rule == ReplenishPostpone {
		return max(s.deadline, now) + s.VCPU.Period
	}
	return now + s.VCPU.Period
}

func (s *CBSServer) checkInvariants() {
	if s.budget < 0 || s.budget > s.VCPU.Budget {
		panic(fmt.Sprintf("DoWork: server %s budget %d outside [0, %d]", s.Name(), s.budget, s.VCPU.Budget))
	}
}

func (s *CBSServer) String() string {
	return fmt.Sprintf("CBS(%s: state=%s, budget=%d/%d, deadline=%d, queue=%s)",
		s.Name(), s.state, s.budget, s.VCPU.Budget, s.deadline, s.jobs.String())
}
