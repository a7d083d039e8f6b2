package commands

import (
	"unicode"
	"unicode/utf16"

	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/editorstate"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/schema"
	"github.com/Samyssmile/notectl/pkg/selection"
	"github.com/Samyssmile/notectl/pkg/step"
	"github.com/Samyssmile/notectl/pkg/transaction"
)

// InsertText types text at the current selection, consuming and clearing
// storedMarks (spec.md §4.6). A non-collapsed selection is deleted first.
// The builder's own position mapping would leave the anchor behind at the
// insertion point and only carry the head forward (assoc −1 / +1), so the
// resulting selection is set explicitly to a collapsed caret after the
// inserted text instead of relying on that mapping.
func InsertText(st *editorstate.State, text string) (*transaction.Transaction, bool) {
	sel := st.Selection
	if sel.Kind != selection.KindText {
		return nil, false
	}
	idx := st.Index()
	from, to, _ := sel.Range(idx)

	b := transaction.NewBuilder(st.Doc, st.Registry, origin)
	if from != to {
		b = b.DeleteRange(from, to)
	}
	blk, ok := b.Index().Block(from.Block)
	if !ok {
		return nil, false
	}
	marks := excludedMarksAt(st.Registry, blk.Type, st.StoredMarks)
	b = b.InsertText(from.Block, from.Offset, text, marks)
	tx, err := b.Build()
	if err != nil {
		return nil, false
	}
	end := step.Position{Block: from.Block, Offset: from.Offset + doctree.UTF16Len(text)}
	sel2 := collapsedAt(end)
	tx.Selection = &sel2
	return tx, true
}

// mergeBackward compiles the "at block start, backspace" case: merge the
// current block onto its predecessor, or, if the predecessor is a
// void-and-selectable block, select it instead of deleting anything (the
// first backspace selects, the second deletes — a standard editor
// convention the spec leaves unstated). ok is false when blockID is
// already the document's first block.
func mergeBackward(st *editorstate.State, blockID nodeid.BlockID) (*transaction.Transaction, bool) {
	idx := st.Index()
	rank := idx.OrderRank(blockID)
	if rank <= 0 {
		return nil, false
	}
	prevID := idx.Order[rank-1]
	prevBlk, _ := idx.Block(prevID)

	if isVoidSelectable(st.Registry, prevBlk) {
		return buildSelectionOnly(st, selection.Node(prevID, idx.Path[prevID]))
	}
	if isolatingBoundaryBetween(st.Registry, idx, prevID, blockID) {
		return nil, false
	}
	b := transaction.NewBuilder(st.Doc, st.Registry, origin)
	b = b.MergeBlocks(prevID, blockID)
	tx, err := b.Build()
	if err != nil {
		return nil, false
	}
	return tx, true
}

// mergeForward is mergeBackward's mirror for "at block end, delete".
func mergeForward(st *editorstate.State, blockID nodeid.BlockID) (*transaction.Transaction, bool) {
	idx := st.Index()
	rank := idx.OrderRank(blockID)
	if rank < 0 || rank+1 >= len(idx.Order) {
		return nil, false
	}
	nextID := idx.Order[rank+1]
	nextBlk, _ := idx.Block(nextID)

	if isVoidSelectable(st.Registry, nextBlk) {
		return buildSelectionOnly(st, selection.Node(nextID, idx.Path[nextID]))
	}
	if isolatingBoundaryBetween(st.Registry, idx, blockID, nextID) {
		return nil, false
	}
	b := transaction.NewBuilder(st.Doc, st.Registry, origin)
	b = b.MergeBlocks(blockID, nextID)
	tx, err := b.Build()
	if err != nil {
		return nil, false
	}
	return tx, true
}

func isVoidSelectable(reg *schema.Registry, b *doctree.BlockNode) bool {
	if reg == nil || b == nil {
		return false
	}
	spec, ok := reg.Node(b.Type)
	return ok && spec.IsVoid && spec.Selectable
}

// DeleteBackward deletes the selection if non-collapsed, otherwise the
// grapheme cluster (or InlineNode) before the caret, merging into the
// previous block at a block start. Relies on DeleteText's and MergeBlocks'
// own position mapping to relocate the resulting caret (spec.md §4.3):
// no explicit selection override is needed.
func DeleteBackward(st *editorstate.State) (*transaction.Transaction, bool) {
	sel := st.Selection
	if sel.Kind != selection.KindText {
		return nil, false
	}
	idx := st.Index()
	from, to, _ := sel.Range(idx)
	if from != to {
		b := transaction.NewBuilder(st.Doc, st.Registry, origin).DeleteRange(from, to)
		tx, err := b.Build()
		if err != nil {
			return nil, false
		}
		return tx, true
	}
	blk, ok := idx.Block(from.Block)
	if !ok {
		return nil, false
	}
	if prevOff, ok := selection.PrevStop(blk, from.Offset); ok {
		b := transaction.NewBuilder(st.Doc, st.Registry, origin).DeleteText(from.Block, prevOff, from.Offset)
		tx, err := b.Build()
		if err != nil {
			return nil, false
		}
		return tx, true
	}
	return mergeBackward(st, from.Block)
}

// DeleteForward is DeleteBackward's mirror, deleting the grapheme cluster
// after the caret or merging with the next block at a block end.
func DeleteForward(st *editorstate.State) (*transaction.Transaction, bool) {
	sel := st.Selection
	if sel.Kind != selection.KindText {
		return nil, false
	}
	idx := st.Index()
	from, to, _ := sel.Range(idx)
	if from != to {
		b := transaction.NewBuilder(st.Doc, st.Registry, origin).DeleteRange(from, to)
		tx, err := b.Build()
		if err != nil {
			return nil, false
		}
		return tx, true
	}
	blk, ok := idx.Block(from.Block)
	if !ok {
		return nil, false
	}
	if nextOff, ok := selection.NextStop(blk, from.Offset); ok {
		b := transaction.NewBuilder(st.Doc, st.Registry, origin).DeleteText(from.Block, from.Offset, nextOff)
		tx, err := b.Build()
		if err != nil {
			return nil, false
		}
		return tx, true
	}
	return mergeForward(st, from.Block)
}

// isWordAtom reports whether the atom occupying [from, to) in b is
// composed only of letters/digits, the classification deleteWord{Backward,
// Forward} use to find a word boundary. There is no Unicode word-break
// library in the dependency set this module draws from, so this is a
// direct, grapheme-stop-quantized unicode.IsLetter/IsDigit scan rather
// than a full UAX #29 word-break implementation.
func isWordAtom(b *doctree.BlockNode, from, to int) bool {
	ci, coff := doctree.ChildAtOffset(b, from)
	if ci >= len(b.Inline) {
		return false
	}
	c := b.Inline[ci]
	if c.Kind != doctree.InlineChildText {
		return false
	}
	units := utf16.Encode([]rune(c.Text.Text))
	end := coff + (to - from)
	if coff < 0 || end > len(units) {
		return false
	}
	for _, r := range utf16.Decode(units[coff:end]) {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

func indexOfStop(stops []int, v int) int {
	for i, s := range stops {
		if s == v {
			return i
		}
	}
	return -1
}

// nextWordBoundary scans forward from from past any run of non-word atoms
// and then past the following run of word atoms, landing on a word's end
// (or the block's end, whichever comes first).
func nextWordBoundary(b *doctree.BlockNode, from int) int {
	stops := selection.CaretStops(b)
	i := indexOfStop(stops, from)
	if i < 0 || i >= len(stops)-1 {
		return from
	}
	for i < len(stops)-1 && !isWordAtom(b, stops[i], stops[i+1]) {
		i++
	}
	for i < len(stops)-1 && isWordAtom(b, stops[i], stops[i+1]) {
		i++
	}
	return stops[i]
}

// prevWordBoundary is nextWordBoundary's mirror, scanning backward.
func prevWordBoundary(b *doctree.BlockNode, from int) int {
	stops := selection.CaretStops(b)
	i := indexOfStop(stops, from)
	if i <= 0 {
		return from
	}
	for i > 0 && !isWordAtom(b, stops[i-1], stops[i]) {
		i--
	}
	for i > 0 && isWordAtom(b, stops[i-1], stops[i]) {
		i--
	}
	return stops[i]
}

// DeleteWordBackward deletes from the caret back to the previous word
// boundary, falling back to DeleteBackward's single-grapheme/merge
// behavior at a block start.
func DeleteWordBackward(st *editorstate.State) (*transaction.Transaction, bool) {
	sel := st.Selection
	if sel.Kind != selection.KindText || !sel.Collapsed() {
		return DeleteBackward(st)
	}
	blk, ok := st.Index().Block(sel.Head.Block)
	if !ok {
		return nil, false
	}
	boundary := prevWordBoundary(blk, sel.Head.Offset)
	if boundary == sel.Head.Offset {
		return DeleteBackward(st)
	}
	tx, err := transaction.NewBuilder(st.Doc, st.Registry, origin).
		DeleteText(sel.Head.Block, boundary, sel.Head.Offset).Build()
	if err != nil {
		return nil, false
	}
	return tx, true
}

// DeleteWordForward is DeleteWordBackward's mirror.
func DeleteWordForward(st *editorstate.State) (*transaction.Transaction, bool) {
	sel := st.Selection
	if sel.Kind != selection.KindText || !sel.Collapsed() {
		return DeleteForward(st)
	}
	blk, ok := st.Index().Block(sel.Head.Block)
	if !ok {
		return nil, false
	}
	boundary := nextWordBoundary(blk, sel.Head.Offset)
	if boundary == sel.Head.Offset {
		return DeleteForward(st)
	}
	tx, err := transaction.NewBuilder(st.Doc, st.Registry, origin).
		DeleteText(sel.Head.Block, sel.Head.Offset, boundary).Build()
	if err != nil {
		return nil, false
	}
	return tx, true
}

// DeleteSoftLineBackward deletes from the caret to the start of its block.
// The core has no line-wrap layout information (that lives in the view
// layer), so a "soft line" collapses to the whole block here.
func DeleteSoftLineBackward(st *editorstate.State) (*transaction.Transaction, bool) {
	sel := st.Selection
	if sel.Kind != selection.KindText || !sel.Collapsed() {
		return DeleteBackward(st)
	}
	if sel.Head.Offset == 0 {
		return DeleteBackward(st)
	}
	tx, err := transaction.NewBuilder(st.Doc, st.Registry, origin).
		DeleteText(sel.Head.Block, 0, sel.Head.Offset).Build()
	if err != nil {
		return nil, false
	}
	return tx, true
}

// DeleteSoftLineForward is DeleteSoftLineBackward's mirror.
func DeleteSoftLineForward(st *editorstate.State) (*transaction.Transaction, bool) {
	sel := st.Selection
	if sel.Kind != selection.KindText || !sel.Collapsed() {
		return DeleteForward(st)
	}
	blk, ok := st.Index().Block(sel.Head.Block)
	if !ok {
		return nil, false
	}
	length := doctree.BlockLength(blk)
	if sel.Head.Offset == length {
		return DeleteForward(st)
	}
	tx, err := transaction.NewBuilder(st.Doc, st.Registry, origin).
		DeleteText(sel.Head.Block, sel.Head.Offset, length).Build()
	if err != nil {
		return nil, false
	}
	return tx, true
}
