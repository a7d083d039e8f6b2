package commands

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/editorstate"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/selection"
	"github.com/Samyssmile/notectl/pkg/step"
	"github.com/Samyssmile/notectl/pkg/transaction"
)

// SplitBlock splits the current block at the caret (deleting the selection
// first if non-collapsed) and places the caret at the start of the new
// tail block. Like InsertText, the split point's own position mapping
// would leave the anchor on the left half and the head on the right, so
// the resulting selection is set explicitly.
func SplitBlock(st *editorstate.State) (*transaction.Transaction, bool) {
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
	b, tailID := b.SplitBlock(from.Block, from.Offset)
	tx, err := b.Build()
	if err != nil {
		return nil, false
	}
	pos := step.Position{Block: tailID, Offset: 0}
	sel2 := collapsedAt(pos)
	tx.Selection = &sel2
	return tx, true
}

// MergeWithPrevious merges the current block onto its predecessor,
// regardless of the caret's offset within the block, landing the caret at
// the old merge boundary.
func MergeWithPrevious(st *editorstate.State) (*transaction.Transaction, bool) {
	blockID, ok := currentBlockID(st.Selection)
	if !ok {
		return nil, false
	}
	idx := st.Index()
	rank := idx.OrderRank(blockID)
	if rank <= 0 {
		return nil, false
	}
	prevID := idx.Order[rank-1]
	if isolatingBoundaryBetween(st.Registry, idx, prevID, blockID) {
		return nil, false
	}
	prevBlk, _ := idx.Block(prevID)
	prevLen := doctree.BlockLength(prevBlk)

	tx, err := transaction.NewBuilder(st.Doc, st.Registry, origin).
		MergeBlocks(prevID, blockID).Build()
	if err != nil {
		return nil, false
	}
	pos := step.Position{Block: prevID, Offset: prevLen}
	sel := collapsedAt(pos)
	tx.Selection = &sel
	return tx, true
}

// MergeWithNext merges the block following the current one onto it,
// landing the caret at the old merge boundary.
func MergeWithNext(st *editorstate.State) (*transaction.Transaction, bool) {
	blockID, ok := currentBlockID(st.Selection)
	if !ok {
		return nil, false
	}
	idx := st.Index()
	rank := idx.OrderRank(blockID)
	if rank < 0 || rank+1 >= len(idx.Order) {
		return nil, false
	}
	nextID := idx.Order[rank+1]
	if isolatingBoundaryBetween(st.Registry, idx, blockID, nextID) {
		return nil, false
	}
	curBlk, _ := idx.Block(blockID)
	curLen := doctree.BlockLength(curBlk)

	tx, err := transaction.NewBuilder(st.Doc, st.Registry, origin).
		MergeBlocks(blockID, nextID).Build()
	if err != nil {
		return nil, false
	}
	pos := step.Position{Block: blockID, Offset: curLen}
	sel := collapsedAt(pos)
	tx.Selection = &sel
	return tx, true
}

// InsertHardBreak inserts a hard-line-break InlineNode at the caret,
// deleting the selection first if non-collapsed.
func InsertHardBreak(st *editorstate.State) (*transaction.Transaction, bool) {
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
	seg := []doctree.Segment{doctree.NewInlineNodeChild(nodeid.HardBreakInlineType, nil)}
	b = b.InsertSegments(from.Block, from.Offset, seg)
	tx, err := b.Build()
	if err != nil {
		return nil, false
	}
	pos := step.Position{Block: from.Block, Offset: from.Offset + 1}
	sel2 := collapsedAt(pos)
	tx.Selection = &sel2
	return tx, true
}
