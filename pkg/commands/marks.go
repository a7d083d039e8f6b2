package commands

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/editorstate"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/selection"
	"github.com/Samyssmile/notectl/pkg/step"
	"github.com/Samyssmile/notectl/pkg/transaction"
)

// ToggleMark implements spec.md §4.10's toggleMark: a collapsed selection
// only updates storedMarks (no document edit); a range emits AddMark
// across every leaf block it touches if the range is not yet fully
// covered by mark, or RemoveMark if it already is.
func ToggleMark(st *editorstate.State, mark doctree.Mark) (*transaction.Transaction, bool) {
	sel := st.Selection
	if sel.Kind != selection.KindText {
		return nil, false
	}
	if sel.Collapsed() {
		prev := st.StoredMarks
		var next doctree.MarkSet
		if prev.Has(mark.Type) {
			next = prev.Without(mark.Type)
		} else {
			next = prev.With(mark)
		}
		tx, err := transaction.NewBuilder(st.Doc, st.Registry, origin).
			SetStoredMarks(next, prev).Build()
		if err != nil {
			return nil, false
		}
		return tx, true
	}

	idx := st.Index()
	from, to, _ := sel.Range(idx)
	fromRank, toRank := idx.OrderRank(from.Block), idx.OrderRank(to.Block)
	if fromRank < 0 || toRank < 0 {
		return nil, false
	}
	spans := idx.Order[fromRank : toRank+1]

	covered := true
	for _, id := range spans {
		blk, ok := idx.Block(id)
		if !ok {
			return nil, false
		}
		s, e := rangeWithinBlock(id, from, to, blk)
		ok2, err := doctree.RangeFullyCoveredByMark(blk.Inline, s, e, mark.Type)
		if err != nil {
			return nil, false
		}
		if !ok2 {
			covered = false
			break
		}
	}

	b := transaction.NewBuilder(st.Doc, st.Registry, origin)
	for _, id := range spans {
		blk, ok := b.Index().Block(id)
		if !ok {
			return nil, false
		}
		s, e := rangeWithinBlock(id, from, to, blk)
		if s == e {
			continue
		}
		if covered {
			b = b.RemoveMark(id, s, e, mark)
		} else {
			b = b.AddMark(id, s, e, mark)
		}
	}
	tx, err := b.Build()
	if err != nil {
		return nil, false
	}
	return tx, true
}

// rangeWithinBlock clips the document-level [from, to) text range to
// blockID's own offset space: the whole block for one strictly between
// from's and to's blocks, and a partial range at either end.
func rangeWithinBlock(blockID nodeid.BlockID, from, to step.Position, blk *doctree.BlockNode) (int, int) {
	s, e := 0, doctree.BlockLength(blk)
	if blockID == from.Block {
		s = from.Offset
	}
	if blockID == to.Block {
		e = to.Offset
	}
	return s, e
}
