// Package selection implements the three selection variants and
// grapheme-aware motion used by commands to move and extend them
// (spec.md §4.7).
package selection

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/step"
)

// Side names which edge of a void block a GapCursor sits against.
type Side int

const (
	SideBefore Side = -1
	SideAfter  Side = 1
)

// Kind discriminates the three selection variants (spec.md §9: tagged
// variants rather than a type hierarchy).
type Kind int

const (
	KindText Kind = iota
	KindNode
	KindGapCursor
)

// Selection is a tagged union of TextSelection, NodeSelection and
// GapCursor. Only the fields relevant to Kind are meaningful.
type Selection struct {
	Kind Kind

	// KindText
	Anchor step.Position
	Head   step.Position

	// KindNode and KindGapCursor
	BlockID nodeid.BlockID
	Path    []nodeid.BlockID

	// KindGapCursor only
	GapSide Side
}

// Text builds a TextSelection.
func Text(anchor, head step.Position) Selection {
	return Selection{Kind: KindText, Anchor: anchor, Head: head}
}

// Node builds a NodeSelection targeting blockID.
func Node(blockID nodeid.BlockID, path []nodeid.BlockID) Selection {
	return Selection{Kind: KindNode, BlockID: blockID, Path: path}
}

// GapCursorAt builds a GapCursor adjacent to blockID on the given side.
func GapCursorAt(blockID nodeid.BlockID, side Side, path []nodeid.BlockID) Selection {
	return Selection{Kind: KindGapCursor, BlockID: blockID, GapSide: side, Path: path}
}

// Collapsed reports whether a TextSelection has anchor == head. Always
// false for the other two kinds, which have no distinct anchor/head.
func (s Selection) Collapsed() bool {
	return s.Kind == KindText && s.Anchor == s.Head
}

// rankOf orders a position by its block's position in document order, then
// by offset within the block.
func rankOf(idx *doctree.Index, pos step.Position) (int, int) {
	return idx.OrderRank(pos.Block), pos.Offset
}

// Range returns the normalized (from, to) of a TextSelection using the
// document's block order (spec.md §4.7's selectionRange). ok is false for
// non-text selections.
func (s Selection) Range(idx *doctree.Index) (from, to step.Position, ok bool) {
	if s.Kind != KindText {
		return step.Position{}, step.Position{}, false
	}
	ar, ao := rankOf(idx, s.Anchor)
	hr, ho := rankOf(idx, s.Head)
	if ar < hr || (ar == hr && ao <= ho) {
		return s.Anchor, s.Head, true
	}
	return s.Head, s.Anchor, true
}
