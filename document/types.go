// Package document implements the versioned markdown document engine: the
// line-structured store, the position resolver, the pending-edit queue and
// applier, and the command façade that desugars markdown formatting into
// primitive edits.
package document

import "errors"

// LineType classifies how a line's content is rendered. It does not steer
// later edits: the ordered-list counter reads a line's content, and the
// post-sweep's survival of an empty line depends on its metadata.
type LineType int

const (
	LineNormal LineType = iota
	LineOrderedList
	LineUnorderedList
	LineCode
	LineHeading
	LineBlockquote
	LineHorizontalRule
)

// Errors returned by the command façade. ErrDeletePosition is never returned
// by any entry point; it is kept in the taxonomy for wire compatibility with
// the source protocol, which reserves the code but never produces it.
var (
	ErrInvalidPosition = errors.New("invalid-cursor")
	ErrDeletePosition  = errors.New("delete-position")
	ErrOutdatedVersion = errors.New("outdated-version")
)

// opKind tags a primitive edit operation queued by the command façade.
type opKind int

const (
	opInsert opKind = iota
	opDelete
	opSplit
	opMerge
	opChangeType
)

// editOp is one primitive mutation queued for the next commit. target is a
// lineID handle rather than a raw pointer so that a line destroyed by an
// earlier MERGE in the same batch can be detected (retargeting, §4.3)
// instead of dereferencing a freed record.
type editOp struct {
	kind        opKind
	target      lineID
	pos         int
	text        []byte
	length      int
	newType     LineType
	newMetadata int
}

// lineID is a stable handle into a Document's line arena. The zero value
// means "no line" (the append target of an empty document), mirroring the
// source's use of a NULL line_node pointer.
type lineID uint64

// lineRecord is the unit of storage: a newline-free byte sequence plus a
// type tag, an integer annotation, and links to its neighbours by handle.
type lineRecord struct {
	id       lineID
	content  []byte
	lineType LineType
	metadata int
	prev     lineID
	next     lineID
}

func (l *lineRecord) length() int { return len(l.content) }
