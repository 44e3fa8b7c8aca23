// Package broadcast periodically (and on-demand, after a successful commit)
// renders the document and fans it out to every connected client.
package broadcast

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/scribe-md/scribe/document"
	"github.com/scribe-md/scribe/session"
	"github.com/scribe-md/scribe/transport"
	"github.com/scribe-md/scribe/wire"
)

// Broadcaster periodically flattens the document under lock, releases the
// lock, and only then writes the frame out to clients — so a slow or dead
// client pipe never holds up a document mutation.
type Broadcaster struct {
	doc      *document.Document
	clients  *session.Registry
	interval time.Duration
	logger   *log.Logger

	trigger chan struct{}
}

// New returns a Broadcaster that fires every interval and whenever Trigger
// is called.
func New(doc *document.Document, clients *session.Registry, interval time.Duration, logger *log.Logger) *Broadcaster {
	return &Broadcaster{
		doc:      doc,
		clients:  clients,
		interval: interval,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests an out-of-cycle broadcast, e.g. right after a commit.
// It never blocks: a pending trigger coalesces with one already queued.
func (b *Broadcaster) Trigger() {
	select {
	case b.trigger <- struct{}{}:
	default:
	}
}

// Run blocks, broadcasting on every tick and every Trigger, until stop is
// closed.
func (b *Broadcaster) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.broadcastOnce()
		case <-b.trigger:
			b.broadcastOnce()
		case <-stop:
			return
		}
	}
}

func (b *Broadcaster) broadcastOnce() {
	version, content := b.doc.Snapshot()
	frame := wire.Broadcast(version, content)

	b.clients.Each(func(pid int, pipe *transport.Pipe) {
		if _, err := io.WriteString(pipe.S2C, frame); err != nil {
			b.logger.Debug("broadcast write failed", "pid", pid, "err", err)
		}
	})
}
