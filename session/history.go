package session

import "sync"

// Entry is one processed command, kept for the operator LOG? console query.
type Entry struct {
	User    string
	Command string
	Success bool
	Reason  string
}

// historyLimit bounds the in-memory log so a long-running server with many
// clients doesn't grow it without end; the source's pending_command_t list
// has no such cap, but an unbounded log is not a property worth carrying
// forward into a long-lived process.
const historyLimit = 2000

// History is a bounded, append-only log of processed commands.
type History struct {
	mu      sync.Mutex
	entries []Entry
}

// NewHistory returns an empty History.
func NewHistory() *History {
	return &History{}
}

// Record appends an entry, dropping the oldest if the log is at capacity.
func (h *History) Record(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
	if len(h.entries) > historyLimit {
		h.entries = h.entries[len(h.entries)-historyLimit:]
	}
}

// Snapshot returns a copy of the current log, oldest first.
func (h *History) Snapshot() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}
