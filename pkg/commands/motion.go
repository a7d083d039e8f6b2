package commands

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/editorstate"
	"github.com/Samyssmile/notectl/pkg/selection"
	"github.com/Samyssmile/notectl/pkg/step"
	"github.com/Samyssmile/notectl/pkg/transaction"
)

// referencePosition returns the block-local position a "move" command
// should compute its next landing from: the caret for a TextSelection, or
// an offset-0 position at the targeted block for a NodeSelection/GapCursor
// (selection.NextLanding treats that as "nothing left to cross inside this
// block" and falls straight through to the neighbor check).
func referencePosition(sel selection.Selection) step.Position {
	if sel.Kind == selection.KindText {
		return sel.Head
	}
	return step.Position{Block: sel.BlockID, Offset: 0}
}

func landingToSelection(idx *doctree.Index, l selection.Landing) selection.Selection {
	switch l.Kind {
	case selection.KindText:
		return collapsedAt(l.Pos)
	case selection.KindNode:
		return selection.Node(l.BlockID, idx.Path[l.BlockID])
	default:
		return selection.GapCursorAt(l.BlockID, l.Side, idx.Path[l.BlockID])
	}
}

// MoveChar advances a collapsed caret one grapheme/InlineNode/block-edge
// step in dir. Starting from a non-collapsed TextSelection it collapses to
// the head offset without advancing, per spec.md §4.7's literal rule.
// Returns false (no transaction) when motion is impossible.
func MoveChar(st *editorstate.State, dir selection.Dir) (*transaction.Transaction, bool) {
	sel := st.Selection
	if sel.Kind == selection.KindText && !sel.Collapsed() {
		return buildSelectionOnly(st, collapsedAt(sel.Head))
	}
	idx := st.Index()
	landing, ok := selection.NextLanding(st.Doc, idx, st.Registry, referencePosition(sel), dir)
	if !ok {
		return nil, false
	}
	return buildSelectionOnly(st, landingToSelection(idx, landing))
}

// ExtendChar extends a TextSelection's head one step in dir, reusing the
// same motion primitive as MoveChar. Extending is only meaningful from a
// TextSelection and only onto another caret position; anything else
// reports motion as impossible.
func ExtendChar(st *editorstate.State, dir selection.Dir) (*transaction.Transaction, bool) {
	sel := st.Selection
	if sel.Kind != selection.KindText {
		return nil, false
	}
	idx := st.Index()
	landing, ok := selection.NextLanding(st.Doc, idx, st.Registry, sel.Head, dir)
	if !ok || landing.Kind != selection.KindText {
		return nil, false
	}
	return buildSelectionOnly(st, selection.Text(sel.Anchor, landing.Pos))
}

// blockEdgePosition returns the start (DirBackward) or end (DirForward)
// offset of the block sel is currently in.
func blockEdgePosition(st *editorstate.State, sel selection.Selection, dir selection.Dir) (step.Position, bool) {
	blockID, ok := currentBlockID(sel)
	if !ok {
		return step.Position{}, false
	}
	b, ok := st.Index().Block(blockID)
	if !ok {
		return step.Position{}, false
	}
	offset := 0
	if dir == selection.DirForward {
		offset = doctree.BlockLength(b)
	}
	return step.Position{Block: blockID, Offset: offset}, true
}

// MoveBlockEdge moves a collapsed caret to its block's start or end.
func MoveBlockEdge(st *editorstate.State, dir selection.Dir) (*transaction.Transaction, bool) {
	pos, ok := blockEdgePosition(st, st.Selection, dir)
	if !ok || pos == referencePosition(st.Selection) {
		return nil, false
	}
	return buildSelectionOnly(st, collapsedAt(pos))
}

// ExtendBlockEdge extends a TextSelection's head to its block's start or
// end.
func ExtendBlockEdge(st *editorstate.State, dir selection.Dir) (*transaction.Transaction, bool) {
	sel := st.Selection
	if sel.Kind != selection.KindText {
		return nil, false
	}
	pos, ok := blockEdgePosition(st, sel, dir)
	if !ok || pos == sel.Head {
		return nil, false
	}
	return buildSelectionOnly(st, selection.Text(sel.Anchor, pos))
}

// documentEdgePosition returns the start (DirBackward) or end (DirForward)
// offset of the document's first or last leaf block.
func documentEdgePosition(st *editorstate.State, dir selection.Dir) (step.Position, bool) {
	idx := st.Index()
	if len(idx.Order) == 0 {
		return step.Position{}, false
	}
	if dir == selection.DirBackward {
		return step.Position{Block: idx.Order[0], Offset: 0}, true
	}
	last, _ := idx.Block(idx.Order[len(idx.Order)-1])
	return step.Position{Block: idx.Order[len(idx.Order)-1], Offset: doctree.BlockLength(last)}, true
}

// MoveDocumentEdge moves a collapsed caret to the document's start or end.
func MoveDocumentEdge(st *editorstate.State, dir selection.Dir) (*transaction.Transaction, bool) {
	pos, ok := documentEdgePosition(st, dir)
	if !ok || pos == referencePosition(st.Selection) {
		return nil, false
	}
	return buildSelectionOnly(st, collapsedAt(pos))
}

// ExtendDocumentEdge extends a TextSelection's head to the document's
// start or end.
func ExtendDocumentEdge(st *editorstate.State, dir selection.Dir) (*transaction.Transaction, bool) {
	sel := st.Selection
	if sel.Kind != selection.KindText {
		return nil, false
	}
	pos, ok := documentEdgePosition(st, dir)
	if !ok || pos == sel.Head {
		return nil, false
	}
	return buildSelectionOnly(st, selection.Text(sel.Anchor, pos))
}
