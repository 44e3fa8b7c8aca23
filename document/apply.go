package document

// delRegion records one DELETE's target and requested (not necessarily
// fully-applied) extent, used by the insert/delete overlap-resolution rule
// below. The source bounds this to a 16-entry sliding window; since the
// queue is drained on every commit (Open Question 3, spec.md §9) a plain
// slice serves the same purpose without an arbitrary cap.
type delRegion struct {
	target lineID
	pos    int
	length int
}

// applyQueue applies every queued primitive operation in enqueue order and
// then runs the post-sweep. Callers must hold d.mu.
func (d *Document) applyQueue() {
	var dels []delRegion

	for i := range d.queue {
		op := &d.queue[i]
		switch op.kind {
		case opDelete:
			dels = append(dels, delRegion{target: op.target, pos: op.pos, length: op.length})
			d.applyDelete(op)
		case opInsert:
			for _, r := range dels {
				if op.target == r.target && op.pos >= r.pos && op.pos < r.pos+r.length {
					op.pos = r.pos
					break
				}
			}
			d.applyInsert(op)
		case opSplit:
			d.applySplit(op)
		case opMerge:
			d.applyMerge(op)
		case opChangeType:
			if op.target != 0 && d.isLive(op.target) {
				ln := d.lines[op.target]
				ln.lineType = op.newType
				ln.metadata = op.newMetadata
			}
		}
	}

	d.queue = d.queue[:0]
	d.postSweep()
}

// applyInsert implements §4.3 INSERT, including the retargeting rule: an
// insert whose anchor line was destroyed by an earlier op in this batch (a
// stale handle) is redirected to the document head.
func (d *Document) applyInsert(op *editOp) {
	target := op.target
	pos := op.pos

	if !d.isLive(target) {
		target = d.head
		pos = 0
	}

	if target == 0 {
		if d.head == 0 && pos == 0 {
			ln := d.newLine(append([]byte(nil), op.text...), LineNormal, 0)
			d.head, d.tail = ln.id, ln.id
			d.lineCount = 1
			d.totalLength = len(op.text)
			return
		}
		target = d.head
		pos = 0
	}

	if target == 0 {
		return
	}

	ln := d.lines[target]
	if pos > ln.length() {
		return
	}

	content := make([]byte, 0, ln.length()+len(op.text))
	content = append(content, ln.content[:pos]...)
	content = append(content, op.text...)
	content = append(content, ln.content[pos:]...)
	ln.content = content
	d.totalLength += len(op.text)
}

// applyDelete implements §4.3 DELETE, including the full-line-empty case
// (content cleared, unlink deferred to the post-sweep) and the
// cross-line-absorb case (deleting to end-of-line with a successor merges
// that successor in).
func (d *Document) applyDelete(op *editOp) {
	if !d.isLive(op.target) {
		return
	}
	ln := d.lines[op.target]
	if op.pos > ln.length() {
		return
	}

	n := op.length
	if op.pos+n > ln.length() {
		n = ln.length() - op.pos
	}
	if n == 0 {
		return
	}
	d.totalLength -= n

	switch {
	case n == ln.length() && op.pos == 0:
		ln.content = ln.content[:0]
	case op.pos+n == ln.length() && ln.next != 0:
		next := d.lines[ln.next]
		ln.content = append(ln.content[:op.pos], next.content...)
		ln.next = next.next
		if next.next != 0 {
			d.lines[next.next].prev = ln.id
		} else {
			d.tail = ln.id
		}
		d.live.Clear(uint(next.id))
		delete(d.lines, next.id)
		d.lineCount--
	default:
		ln.content = append(ln.content[:op.pos], ln.content[op.pos+n:]...)
	}
}

// applySplit implements §4.3 SPLIT: truncates the target to its first
// intra_offset bytes and inserts a new line after it carrying the tail. A
// stale target (the document was empty, or a prior op in this batch already
// created/destroyed lines out from under it) retargets to head, the same
// recovery INSERT uses — except when the document is still genuinely empty,
// where two fresh lines are created instead.
func (d *Document) applySplit(op *editOp) {
	target := op.target
	pos := op.pos

	if !d.isLive(target) {
		if d.head == 0 {
			if pos != 0 {
				return
			}
			first := d.newLine([]byte{}, LineNormal, 0)
			second := d.newLine(append([]byte(nil), op.text...), op.newType, op.newMetadata)
			first.next = second.id
			second.prev = first.id
			d.head, d.tail = first.id, second.id
			d.lineCount = 2
			d.totalLength += len(op.text)
			return
		}
		target = d.head
	}

	ln := d.lines[target]
	if pos > ln.length() {
		return
	}

	tail := make([]byte, 0, len(op.text)+ln.length()-pos)
	tail = append(tail, op.text...)
	tail = append(tail, ln.content[pos:]...)
	newLn := d.newLine(tail, op.newType, op.newMetadata)
	d.totalLength += len(op.text)

	ln.content = ln.content[:pos]

	newLn.next = ln.next
	newLn.prev = ln.id
	if ln.next != 0 {
		d.lines[ln.next].prev = newLn.id
	} else {
		d.tail = newLn.id
	}
	ln.next = newLn.id
	d.lineCount++
}

// applyMerge implements §4.3 MERGE: concatenates target's successor into
// target and unlinks the successor.
func (d *Document) applyMerge(op *editOp) {
	if !d.isLive(op.target) {
		return
	}
	ln := d.lines[op.target]
	if ln.next == 0 {
		return
	}
	next := d.lines[ln.next]

	ln.content = append(ln.content, next.content...)
	ln.next = next.next
	if next.next != 0 {
		d.lines[next.next].prev = ln.id
	} else {
		d.tail = ln.id
	}
	d.live.Clear(uint(next.id))
	delete(d.lines, next.id)
	d.lineCount--
}

// postSweep garbage-collects lines left empty by a full-line delete, but
// preserves lines that are empty yet intentionally annotated — e.g. the
// boundary line a newline/SPLIT produces with metadata 1.
func (d *Document) postSweep() {
	for id := d.head; id != 0; {
		ln := d.lines[id]
		next := ln.next
		if ln.length() == 0 && ln.metadata == 0 {
			d.unlink(id)
		}
		id = next
	}
}
