package document

import (
	"bytes"
	"io"
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// Document owns the doubly-linked sequence of lines (addressed by handle,
// not pointer), the aggregate counters, the monotonic version, and the
// pending-edit queue. All of its state is protected by mu; every exported
// method acquires it for the duration of the call.
type Document struct {
	mu sync.Mutex

	lines  map[lineID]*lineRecord
	live   *bitset.BitSet // live.Test(uint(id)) iff id still names a reachable line
	nextID lineID

	head, tail lineID
	lineCount  int

	totalLength int
	version     uint64

	queue []editOp
}

// New returns a new, empty document at version 0.
func New() *Document {
	return &Document{
		lines: make(map[lineID]*lineRecord),
		live:  bitset.New(64),
	}
}

// Version returns the document's current version (thread-safe).
func (d *Document) Version() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}

// TotalLength returns the sum of all line content lengths, not counting the
// implicit newline separators (thread-safe).
func (d *Document) TotalLength() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.totalLength
}

// LineCount returns the number of lines currently reachable from head
// (thread-safe).
func (d *Document) LineCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lineCount
}

// Flatten returns the document's wire form: line contents joined by a single
// '\n', with no trailing separator. An empty document flattens to "".
func (d *Document) Flatten() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flattenLocked()
}

// Snapshot returns the current version and flattened content read under a
// single lock hold, so a commit landing between the two reads can never
// produce a version/content pair that disagree (§5: broadcast and the
// initial client frame must observe one consistent instant).
func (d *Document) Snapshot() (version uint64, flat string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version, d.flattenLocked()
}

func (d *Document) flattenLocked() string {
	var buf bytes.Buffer
	buf.Grow(d.totalLength + d.lineCount)
	for id := d.head; id != 0; {
		ln := d.lines[id]
		buf.Write(ln.content)
		if ln.next != 0 {
			buf.WriteByte('\n')
		}
		id = ln.next
	}
	return buf.String()
}

// Print writes every line's content followed by '\n' — including after the
// last line — to w. This is the human/operator rendering; unlike Flatten
// (the wire format) it always ends with a newline.
func (d *Document) Print(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id := d.head; id != 0; {
		ln := d.lines[id]
		if _, err := w.Write(ln.content); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		id = ln.next
	}
	return nil
}

// newLine allocates a fresh line record, marks its handle live, and returns
// it. It does not link the line into the document.
func (d *Document) newLine(content []byte, lineType LineType, metadata int) *lineRecord {
	d.nextID++
	id := d.nextID
	ln := &lineRecord{id: id, content: content, lineType: lineType, metadata: metadata}
	d.lines[id] = ln
	d.live.Set(uint(id))
	return ln
}

// isLive reports whether id still names a line reachable from head — the
// retarget check in INSERT's conflict-recovery rule (§4.3).
func (d *Document) isLive(id lineID) bool {
	if id == 0 {
		return false
	}
	return d.live.Test(uint(id))
}

func (d *Document) unlink(id lineID) {
	ln := d.lines[id]
	if ln.prev != 0 {
		d.lines[ln.prev].next = ln.next
	} else {
		d.head = ln.next
	}
	if ln.next != 0 {
		d.lines[ln.next].prev = ln.prev
	} else {
		d.tail = ln.prev
	}
	d.live.Clear(uint(id))
	delete(d.lines, id)
	d.lineCount--
}
