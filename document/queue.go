package document

// Queueing discipline: every admitted command appends one or more primitive
// edit operations to the tail of this slice. The queue is not flushed on
// admission — only by flushLocked/Commit.

func (d *Document) queueInsert(target lineID, pos int, text []byte) {
	d.queue = append(d.queue, editOp{kind: opInsert, target: target, pos: pos, text: text, length: len(text)})
}

func (d *Document) queueDelete(target lineID, pos, length int) {
	d.queue = append(d.queue, editOp{kind: opDelete, target: target, pos: pos, length: length})
}

// queueSplit splits target at pos; the new line carries newType/newMetadata
// and its content is prefix followed by whatever text originally followed
// pos in target. prefix may be nil.
func (d *Document) queueSplit(target lineID, pos int, newType LineType, newMetadata int, prefix []byte) {
	d.queue = append(d.queue, editOp{kind: opSplit, target: target, pos: pos, text: prefix, newType: newType, newMetadata: newMetadata})
}

func (d *Document) queueMerge(target lineID) {
	d.queue = append(d.queue, editOp{kind: opMerge, target: target})
}

func (d *Document) queueChangeType(target lineID, newType LineType, newMetadata int) {
	d.queue = append(d.queue, editOp{kind: opChangeType, target: target, newType: newType, newMetadata: newMetadata})
}

// flushLocked applies and drains the pending queue without advancing the
// version — the internal primitive Open Question 2 (spec.md §9) calls for,
// distinct from the public, version-bumping Commit. Formatting helpers that
// issue several dependent inserts (code, blockquote, ordered_list,
// horizontal_rule) use this to observe their own prior effects before
// resolving further positions. Callers must hold d.mu.
func (d *Document) flushLocked() {
	d.applyQueue()
}

// Commit applies every queued operation, runs the post-sweep, and advances
// the version. It is the only way the version changes; a commit never
// leaves a non-empty queue (Invariant 6).
func (d *Document) Commit() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applyQueue()
	d.version++
}

// IncrementVersion applies the queue and advances the version — an alias
// for Commit kept because the source protocol treats the two names as
// interchangeable.
func (d *Document) IncrementVersion() {
	d.Commit()
}
