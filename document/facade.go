package document

import (
	"bytes"
	"fmt"
	"strings"
)

// checkVersion is the sole admission gate: every façade entry point takes it
// first, under d.mu, before resolving any position. A command queued against
// a stale version is rejected outright — nothing it would have queued ever
// reaches the queue.
func (d *Document) checkVersion(v uint64) error {
	if v != d.version {
		return ErrOutdatedVersion
	}
	return nil
}

// queueInsertText queues text at (target, offset). Text containing a single
// '\n' cannot be spliced verbatim — a line's content never contains a
// newline byte (Invariant 4) — so the text before the newline is queued as a
// plain insert and the text after it becomes the prefix of a SPLIT, which is
// how a line boundary actually gets created.
func (d *Document) queueInsertText(target lineID, offset int, text []byte) {
	i := bytes.IndexByte(text, '\n')
	if i < 0 {
		d.queueInsert(target, offset, text)
		return
	}
	before := text[:i]
	after := text[i+1:]
	if len(before) > 0 {
		d.queueInsert(target, offset, before)
	}
	d.queueSplit(target, offset+len(before), LineNormal, 0, after)
}

// Insert queues text at pos. text may contain at most one newline.
func (d *Document) Insert(v uint64, pos int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkVersion(v); err != nil {
		return err
	}
	if strings.Count(text, "\n") > 1 {
		return ErrInvalidPosition
	}
	ln, offset, err := d.resolve(pos)
	if err != nil {
		return err
	}
	d.queueInsertText(ln, offset, []byte(text))
	return nil
}

// queueDeleteSpan enqueues the DELETE (and, at a bare line boundary, the
// explicit MERGE) operations needed to remove remaining characters starting
// at (target, offset) in the flattened view, where target is the resolved
// anchor line and never changes — it is the handle every absorbed successor
// ends up merged into.
//
// A delete that consumes a line's own remaining bytes down to exactly its
// end triggers DELETE's built-in cross-line absorb (§4.3); one newline unit
// of the budget is spent on that crossing. When offset is 0 that DELETE
// covers the whole line, which DELETE empties without absorbing, so an
// explicit MERGE is queued after it instead. A delete that starts already
// sitting at a line's end — nothing left to remove from that line — instead
// needs an explicit DELETE(len 0)+MERGE pair, since a zero-length DELETE
// never absorbs on its own.
func (d *Document) queueDeleteSpan(target lineID, offset, remaining int) {
	sizing := target
	for remaining > 0 {
		if sizing == 0 {
			break
		}
		rec := d.lines[sizing]
		avail := rec.length()
		if sizing == target {
			avail -= offset
		}
		if avail < 0 {
			avail = 0
		}

		if avail == 0 {
			if rec.next == 0 {
				break
			}
			d.queueDelete(target, offset, 0)
			d.queueMerge(target)
			remaining--
			sizing = rec.next
			continue
		}

		take := remaining
		if take > avail {
			take = avail
		}
		d.queueDelete(target, offset, take)
		remaining -= take
		if take < avail || remaining == 0 {
			break
		}
		if rec.next == 0 {
			break
		}
		if offset == 0 {
			d.queueMerge(target)
		}
		remaining--
		sizing = rec.next
	}
}

// Delete removes length characters starting at pos, crossing line
// boundaries as needed. length 0 is a no-op success.
func (d *Document) Delete(v uint64, pos, length int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkVersion(v); err != nil {
		return err
	}
	if length < 0 {
		return ErrInvalidPosition
	}
	if length == 0 {
		return nil
	}
	ln, offset, err := d.resolve(pos)
	if err != nil {
		return err
	}
	if ln == 0 {
		return ErrInvalidPosition
	}
	d.queueDeleteSpan(ln, offset, length)
	return nil
}

// Newline queues one SPLIT at pos with metadata 1, marking the resulting
// boundary line as intentional so the post-sweep never collects it purely
// for being empty.
func (d *Document) Newline(v uint64, pos int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkVersion(v); err != nil {
		return err
	}
	ln, offset, err := d.resolve(pos)
	if err != nil {
		return err
	}
	d.queueSplit(ln, offset, LineNormal, 1, nil)
	return nil
}

// Heading turns pos into a heading of the given level (1-6). If pos is not
// already at the start of a line, the line is split there first and the
// prefix becomes the lead-in of the resulting second line in the same SPLIT
// — a plain line, not a newline-command boundary, the latter being what
// Newline's metadata-1 marker is reserved for. Issuing this as one SPLIT
// instead of two order-dependent INSERTs (the literal "insert \n, then
// insert the prefix, at the same pos" reading) is deliberate: with no commit
// between the two steps the second insert would still resolve against the
// pre-split line, landing the prefix at the wrong end.
func (d *Document) Heading(v uint64, level, pos int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkVersion(v); err != nil {
		return err
	}
	if level < 1 || level > 6 {
		return ErrInvalidPosition
	}
	sol, err := d.isStartOfLine(pos)
	if err != nil {
		return err
	}
	ln, offset, err := d.resolve(pos)
	if err != nil {
		return err
	}
	prefix := []byte(strings.Repeat("#", level) + " ")
	if !sol {
		d.queueSplit(ln, offset, LineNormal, 0, prefix)
		return nil
	}
	d.queueInsert(ln, offset, prefix)
	return nil
}

// wrapRange queues atE at e and then atS at s, in that order — e first so
// that inserting its marker never shifts the still-unresolved s.
func (d *Document) wrapRange(s, e int, atS, atE string) error {
	lnE, offE, err := d.resolve(e)
	if err != nil {
		return err
	}
	d.queueInsert(lnE, offE, []byte(atE))
	lnS, offS, err := d.resolve(s)
	if err != nil {
		return err
	}
	d.queueInsert(lnS, offS, []byte(atS))
	return nil
}

// Bold wraps [s, e) in "**" markers.
func (d *Document) Bold(v uint64, s, e int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkVersion(v); err != nil {
		return err
	}
	if s > e {
		return ErrInvalidPosition
	}
	return d.wrapRange(s, e, "**", "**")
}

// Italic wraps [s, e) in "*" markers.
func (d *Document) Italic(v uint64, s, e int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkVersion(v); err != nil {
		return err
	}
	if s > e {
		return ErrInvalidPosition
	}
	return d.wrapRange(s, e, "*", "*")
}

// Link wraps [s, e) as the link text of a markdown link to url.
func (d *Document) Link(v uint64, s, e int, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkVersion(v); err != nil {
		return err
	}
	if s >= e || url == "" {
		return ErrInvalidPosition
	}
	return d.wrapRange(s, e, "[", "]("+url+")")
}

// Code flushes the queue (so the wrap sees any edits already admitted this
// round), then wraps [s, e) in backtick markers.
func (d *Document) Code(v uint64, s, e int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkVersion(v); err != nil {
		return err
	}
	if s > e {
		return ErrInvalidPosition
	}
	d.flushLocked()
	return d.wrapRange(s, e, "`", "`")
}

// Blockquote flushes, ensures pos sits at a line start (splitting if it
// doesn't), flushes again so the split has actually taken effect, then
// inserts the "> " prefix at the now-current line start.
func (d *Document) Blockquote(v uint64, pos int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkVersion(v); err != nil {
		return err
	}
	d.flushLocked()
	sol, err := d.isStartOfLine(pos)
	if err != nil {
		return err
	}
	if !sol {
		ln, offset, err := d.resolve(pos)
		if err != nil {
			return err
		}
		d.queueSplit(ln, offset, LineNormal, 0, nil)
		d.flushLocked()
		pos++ // the split put a line separator before the byte at pos
	}
	ln, offset, err := d.resolve(pos)
	if err != nil {
		return err
	}
	d.queueInsert(ln, offset, []byte("> "))
	d.flushLocked()
	return nil
}

// UnorderedList inserts a "- " prefix at pos's line start.
func (d *Document) UnorderedList(v uint64, pos int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkVersion(v); err != nil {
		return err
	}
	ln, _, err := d.lineStart(pos)
	if err != nil {
		return err
	}
	d.queueInsert(ln, 0, []byte("- "))
	return nil
}

// isOrderedListLine reports whether ln already begins with a single-digit
// ordered-list marker ("N. ").
func isOrderedListLine(ln *lineRecord) bool {
	c := ln.content
	return len(c) >= 3 && c[0] >= '0' && c[0] <= '9' && c[1] == '.' && c[2] == ' '
}

// OrderedList flushes, then counts the contiguous run of ordered-list lines
// immediately preceding pos's line to determine the next counter value, and
// inserts "N. " at that line's start. Only single-digit counters are
// supported — a run of 9 or more clamps at 9, repeating the marker rather
// than widening it, matching the source's fixed counter width.
func (d *Document) OrderedList(v uint64, pos int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkVersion(v); err != nil {
		return err
	}
	d.flushLocked()
	ln, _, err := d.lineStart(pos)
	if err != nil {
		return err
	}
	n := 1
	for prev := d.lines[ln].prev; prev != 0 && isOrderedListLine(d.lines[prev]); prev = d.lines[prev].prev {
		n++
	}
	if n > 9 {
		n = 9
	}
	d.queueInsert(ln, 0, []byte(fmt.Sprintf("%d. ", n)))
	return nil
}

// HorizontalRule flushes, then frames a standalone "---" line at pos: the
// line at pos is split in two, and a second SPLIT at the very same boundary
// (now the end of the truncated first half) inserts the rule as its own
// line between the two halves. Two splits land this in three lines without
// ever needing a handle to a line that doesn't exist yet at enqueue time.
func (d *Document) HorizontalRule(v uint64, pos int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkVersion(v); err != nil {
		return err
	}
	d.flushLocked()
	ln, offset, err := d.resolve(pos)
	if err != nil {
		return err
	}
	d.queueSplit(ln, offset, LineNormal, 0, nil)
	d.queueSplit(ln, offset, LineHorizontalRule, 0, []byte("---"))
	return nil
}
