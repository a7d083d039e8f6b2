package selection

import "github.com/Samyssmile/notectl/pkg/doctree"

// CaretStops returns every offset within b that a caret may legally occupy:
// block start and end, every grapheme-cluster boundary inside text runs,
// and the offsets bracketing each InlineNode (which moves atomically,
// spec.md §4.7).
func CaretStops(b *doctree.BlockNode) []int {
	stops := []int{0}
	offset := 0
	for _, c := range b.Inline {
		if c.Kind == doctree.InlineChildNode {
			offset += c.Width()
			stops = append(stops, offset)
			continue
		}
		for _, bnd := range doctree.GraphemeBoundariesUTF16(c.Text.Text)[1:] {
			stops = append(stops, offset+bnd)
		}
		offset += c.Width()
	}
	return stops
}

// NextStop returns the first caret stop in b strictly greater than from, or
// false if from is already at or past the block's end.
func NextStop(b *doctree.BlockNode, from int) (int, bool) {
	for _, s := range CaretStops(b) {
		if s > from {
			return s, true
		}
	}
	return 0, false
}

// PrevStop returns the last caret stop in b strictly less than from, or
// false if from is already at or before the block's start.
func PrevStop(b *doctree.BlockNode, from int) (int, bool) {
	stops := CaretStops(b)
	for i := len(stops) - 1; i >= 0; i-- {
		if stops[i] < from {
			return stops[i], true
		}
	}
	return 0, false
}
