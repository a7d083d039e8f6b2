package selection

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/step"
)

// Map relocates sel through one applied step, reusing step.Step.MapPosition
// for every variant: a TextSelection maps its two endpoints directly; a
// NodeSelection or GapCursor maps a synthetic offset-0 position at its
// block id, which is enough for MapPosition's RemoveNode/ReplaceNode rules
// to report the block gone. ok is false when the selection can no longer be
// placed (both TextSelection endpoints deleted, or a Node/GapCursor's block
// removed); callers fall back to whatever default the transaction's origin
// calls for.
func Map(sel Selection, st step.Step, idxBefore *doctree.Index, idxAfter *doctree.Index) (Selection, bool) {
	switch sel.Kind {
	case KindText:
		aRes := st.MapPosition(sel.Anchor, step.AssocBefore, idxBefore)
		hRes := st.MapPosition(sel.Head, step.AssocAfter, idxBefore)
		if aRes.Deleted && hRes.Deleted {
			return Selection{}, false
		}
		if aRes.Deleted {
			aRes.Pos = hRes.Pos
		}
		if hRes.Deleted {
			hRes.Pos = aRes.Pos
		}
		return Text(aRes.Pos, hRes.Pos), true

	case KindNode, KindGapCursor:
		res := st.MapPosition(step.Position{Block: sel.BlockID, Offset: 0}, step.AssocBefore, idxBefore)
		if res.Deleted {
			return Selection{}, false
		}
		out := sel
		out.BlockID = res.Pos.Block
		if idxAfter != nil {
			out.Path = idxAfter.Path[res.Pos.Block]
		}
		return out, true
	}
	return sel, true
}
