package sim

import "fmt"

// EDFRunQueue holds the CBS servers sharing one physical CPU and picks, each
// tick, the active server whose reservation period ends first.
type EDFRunQueue struct {
	CPU     CPUConfig
	servers []*CBSServer // registration order; used as the tie-break
}

// NewEDFRunQueue creates an empty run queue bounded by cpu.Capacity.
func NewEDFRunQueue(cpu CPUConfig) *EDFRunQueue {
	return &EDFRunQueue{
		CPU:     cpu,
		servers: make([]*CBSServer, 0, max(cpu.Capacity, 0)),
	}
}

// RegisterVCPU adds a server to the managed set. The set is fixed for the
// lifetime of a run; there is no removal.
func (rq *EDFRunQueue) RegisterVCPU(server *CBSServer) error {
	if server == nil {
		panic("RegisterVCPU: server must not be nil")
	}
	if len(rq.servers) >= rq.CPU.Capacity {
		return fmt.Errorf("%w: capacity %d reached, cannot register %s", ErrRunQueueFull, rq.CPU.Capacity, server.Name())
	}
	if rq.Lookup(server.Name()) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateVirtualCPU, server.Name())
	}
	rq.servers = append(rq.servers, server)
	return nil
}

// GetServerWithEarliestDeadline returns the active server with the minimum
// deadline, or nil when no server is active. Deadlines move whenever a
// budget is replenished, so the scan is repeated on every call. On equal
// deadlines the earliest registered server wins.
func (rq *EDFRunQueue) GetServerWithEarliestDeadline() *CBSServer {
	var best *CBSServer
	for _, s := range rq.servers {
		if !s.Active() {
			continue
		}
		if best == nil || s.Deadline() < best.Deadline() {
			best = s
		}
	}
	return best
}

// Servers returns the registered servers in registration order.
// Callers MUST NOT modify the returned slice.
func (rq *EDFRunQueue) Servers() []*CBSServer {
	return rq.servers
}

// Lookup returns the server reserving for the named virtual CPU, or nil.
func (rq *EDFRunQueue) Lookup(name string) *CBSServer {
	for _, s := range rq.servers {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// AllIdle reports whether no registered server has queued work.
func (rq *EDFRunQueue) AllIdle() bool {
	for _, s := range rq.servers {
		if s.Active() {
			return false
		}
	}
	return true
}

// Bandwidth returns the summed Q/P reservation of all registered servers.
func (rq *EDFRunQueue) Bandwidth() float64 {
	total := 0.0
	for _, s := range rq.servers {
		total += s.VCPU.Bandwidth()
	}
	return total
}
