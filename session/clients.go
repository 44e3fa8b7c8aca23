package session

import (
	"sync"

	"github.com/scribe-md/scribe/transport"
)

// Registry tracks connected clients so the broadcaster can reach all of
// them and the console can report (or refuse to QUIT past) an active count.
type Registry struct {
	mu      sync.Mutex
	clients map[int]*transport.Pipe
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[int]*transport.Pipe)}
}

// Add registers pipe under its client PID.
func (r *Registry) Add(pipe *transport.Pipe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[pipe.PID] = pipe
}

// Remove unregisters and closes the pipe for pid, if present.
func (r *Registry) Remove(pid int) {
	r.mu.Lock()
	pipe, ok := r.clients[pid]
	if ok {
		delete(r.clients, pid)
	}
	r.mu.Unlock()
	if ok {
		pipe.Close()
	}
}

// Count returns the number of connected clients.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Each calls fn with every connected client's PID and pipe, outside the
// registry lock. Each does no writing itself; handling a failed write is up
// to fn.
func (r *Registry) Each(fn func(pid int, pipe *transport.Pipe)) {
	r.mu.Lock()
	snapshot := make([]*transport.Pipe, 0, len(r.clients))
	for _, p := range r.clients {
		snapshot = append(snapshot, p)
	}
	r.mu.Unlock()
	for _, p := range snapshot {
		fn(p.PID, p)
	}
}
