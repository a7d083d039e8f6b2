// Package decoration implements the immutable, block-indexed decoration set
// of spec.md §4.9: inline styling ranges, whole-block styling, and widget
// anchors, each relocated through every step a transaction applies.
package decoration

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/nodeid"
)

// Side mirrors selection.Side's domain: which way an insertion at a
// widget's exact offset pushes it.
type Side int

const (
	SideBefore Side = -1
	SideAfter  Side = 1
)

// Kind discriminates the three decoration variants (spec.md §9: tagged
// variants, following the same convention as doctree.InlineChild and
// selection.Selection).
type Kind int

const (
	KindInline Kind = iota
	KindNode
	KindWidget
)

// Decoration is a tagged union of InlineDecoration, NodeDecoration and
// WidgetDecoration. Only the fields relevant to Kind are meaningful.
type Decoration struct {
	Kind    Kind
	BlockID nodeid.BlockID
	Attrs   doctree.Attrs

	// KindInline
	From, To int

	// KindWidget
	Offset int
	ToDOM  any
	Side   Side
	Key    string
}

// Inline builds an InlineDecoration over [from, to) of blockID.
func Inline(blockID nodeid.BlockID, from, to int, attrs doctree.Attrs) Decoration {
	return Decoration{Kind: KindInline, BlockID: blockID, From: from, To: to, Attrs: attrs}
}

// Node builds a NodeDecoration over the whole of blockID.
func Node(blockID nodeid.BlockID, attrs doctree.Attrs) Decoration {
	return Decoration{Kind: KindNode, BlockID: blockID, Attrs: attrs}
}

// Widget builds a WidgetDecoration anchored at offset in blockID.
func Widget(blockID nodeid.BlockID, offset int, toDOM any, side Side, key string) Decoration {
	return Decoration{Kind: KindWidget, BlockID: blockID, Offset: offset, ToDOM: toDOM, Side: side, Key: key}
}

// Set is the immutable, block-indexed collection of decorations. The zero
// value is not usable; start from Empty().
type Set struct {
	byBlock map[nodeid.BlockID][]Decoration
}

// Empty returns a Set with no decorations.
func Empty() *Set {
	return &Set{byBlock: map[nodeid.BlockID][]Decoration{}}
}

func (s *Set) clone() *Set {
	out := make(map[nodeid.BlockID][]Decoration, len(s.byBlock))
	for bid, ds := range s.byBlock {
		out[bid] = append([]Decoration{}, ds...)
	}
	return &Set{byBlock: out}
}

// Add returns a new Set with d added.
func (s *Set) Add(d Decoration) *Set {
	out := s.clone()
	out.byBlock[d.BlockID] = append(out.byBlock[d.BlockID], d)
	return out
}

// Remove returns a new Set with every decoration matching pred dropped, or
// s itself if nothing matched.
func (s *Set) Remove(pred func(Decoration) bool) *Set {
	changed := false
	out := make(map[nodeid.BlockID][]Decoration, len(s.byBlock))
	for bid, ds := range s.byBlock {
		var kept []Decoration
		for _, d := range ds {
			if pred(d) {
				changed = true
				continue
			}
			kept = append(kept, d)
		}
		if len(kept) > 0 {
			out[bid] = kept
		} else if len(ds) > 0 {
			changed = true
		}
	}
	if !changed {
		return s
	}
	return &Set{byBlock: out}
}

// Merge returns a new Set containing every decoration in s and other, or s
// itself if other is empty.
func (s *Set) Merge(other *Set) *Set {
	if other == nil || len(other.byBlock) == 0 {
		return s
	}
	out := s.clone()
	for bid, ds := range other.byBlock {
		out.byBlock[bid] = append(out.byBlock[bid], ds...)
	}
	return out
}

// ForBlock returns the decorations anchored to blockID, in insertion order.
func (s *Set) ForBlock(blockID nodeid.BlockID) []Decoration {
	return append([]Decoration{}, s.byBlock[blockID]...)
}

// Len returns the total number of decorations across every block.
func (s *Set) Len() int {
	n := 0
	for _, ds := range s.byBlock {
		n += len(ds)
	}
	return n
}
