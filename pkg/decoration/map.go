package decoration

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/step"
)

// Map relocates every decoration in s through st, per spec.md §4.9's table.
// idxBefore is the index of the document immediately before st applied,
// needed by RemoveNode to test descendance. Returns s unchanged (same
// pointer) when st cannot possibly affect any decoration currently held.
func (s *Set) Map(st step.Step, idxBefore *doctree.Index) *Set {
	switch t := st.(type) {
	case *step.InsertText:
		if _, ok := s.byBlock[t.BlockID]; !ok {
			return s
		}
		out := s.clone()
		out.byBlock[t.BlockID] = mapInsertText(out.byBlock[t.BlockID], t)
		return out

	case *step.DeleteText:
		if _, ok := s.byBlock[t.BlockID]; !ok {
			return s
		}
		out := s.clone()
		assignOrDelete(out, t.BlockID, mapDeleteText(out.byBlock[t.BlockID], t))
		return out

	case *step.SplitBlock:
		if _, ok := s.byBlock[t.BlockID]; !ok {
			return s
		}
		out := s.clone()
		left, right := mapSplitBlock(out.byBlock[t.BlockID], t)
		assignOrDelete(out, t.BlockID, left)
		if len(right) > 0 {
			out.byBlock[t.NewBlockID] = append(out.byBlock[t.NewBlockID], right...)
		}
		return out

	case *step.MergeBlocks:
		if _, ok := s.byBlock[t.SourceBlockID]; !ok {
			return s
		}
		out := s.clone()
		moved := mapMergeSource(out.byBlock[t.SourceBlockID], t)
		delete(out.byBlock, t.SourceBlockID)
		if len(moved) > 0 {
			out.byBlock[t.TargetBlockID] = append(out.byBlock[t.TargetBlockID], moved...)
		}
		return out

	case *step.RemoveNode:
		if t.RemovedNode == nil || idxBefore == nil || len(s.byBlock) == 0 {
			return s
		}
		changed := false
		out := s.clone()
		for bid := range out.byBlock {
			if idxBefore.IsDescendantOf(bid, t.RemovedNode.ID) {
				delete(out.byBlock, bid)
				changed = true
			}
		}
		if !changed {
			return s
		}
		return out

	default:
		// AddMark, RemoveMark, SetBlockType, SetNodeAttr, InsertNode,
		// SetStoredMarks, ReplaceNode: identity mapping (spec.md §4.3).
		return s
	}
}

// assignOrDelete stores decos under blockID, or removes the key entirely
// when every decoration that block held was dropped by the mapping.
func assignOrDelete(s *Set, blockID nodeid.BlockID, decos []Decoration) {
	if len(decos) == 0 {
		delete(s.byBlock, blockID)
		return
	}
	s.byBlock[blockID] = decos
}

func mapInsertText(ds []Decoration, t *step.InsertText) []Decoration {
	out := make([]Decoration, 0, len(ds))
	for _, d := range ds {
		switch d.Kind {
		case KindInline:
			d.From = t.MapPosition(step.Position{Block: t.BlockID, Offset: d.From}, step.AssocBefore, nil).Pos.Offset
			d.To = t.MapPosition(step.Position{Block: t.BlockID, Offset: d.To}, step.AssocAfter, nil).Pos.Offset
		case KindWidget:
			d.Offset = t.MapPosition(step.Position{Block: t.BlockID, Offset: d.Offset}, step.Assoc(d.Side), nil).Pos.Offset
		}
		out = append(out, d)
	}
	return out
}

func mapDeleteText(ds []Decoration, t *step.DeleteText) []Decoration {
	out := make([]Decoration, 0, len(ds))
	for _, d := range ds {
		switch d.Kind {
		case KindInline:
			from := t.MapPosition(step.Position{Block: t.BlockID, Offset: d.From}, step.AssocBefore, nil).Pos.Offset
			to := t.MapPosition(step.Position{Block: t.BlockID, Offset: d.To}, step.AssocAfter, nil).Pos.Offset
			if from == to {
				continue // empty after clamp: dropped
			}
			d.From, d.To = from, to
		case KindWidget:
			if t.From < d.Offset && d.Offset < t.To {
				continue // strictly inside the deleted range: dropped
			}
			d.Offset = t.MapPosition(step.Position{Block: t.BlockID, Offset: d.Offset}, step.Assoc(d.Side), nil).Pos.Offset
		}
		out = append(out, d)
	}
	return out
}

func mapSplitBlock(ds []Decoration, t *step.SplitBlock) (left, right []Decoration) {
	for _, d := range ds {
		switch d.Kind {
		case KindInline:
			switch {
			case d.From >= t.Offset: // entirely right, including from == split
				moved := d
				moved.BlockID = t.NewBlockID
				moved.From -= t.Offset
				moved.To -= t.Offset
				right = append(right, moved)
			case d.To <= t.Offset: // entirely left
				left = append(left, d)
			default: // spanning the split point
				leftPart := d
				leftPart.To = t.Offset
				left = append(left, leftPart)

				rightPart := d
				rightPart.BlockID = t.NewBlockID
				rightPart.From = 0
				rightPart.To = d.To - t.Offset
				right = append(right, rightPart)
			}
		case KindWidget:
			if d.Offset > t.Offset || (d.Offset == t.Offset && d.Side == SideAfter) {
				moved := d
				moved.BlockID = t.NewBlockID
				moved.Offset -= t.Offset
				right = append(right, moved)
			} else {
				left = append(left, d)
			}
		case KindNode:
			left = append(left, d) // stays on the original block
		}
	}
	return left, right
}

func mapMergeSource(ds []Decoration, t *step.MergeBlocks) []Decoration {
	out := make([]Decoration, 0, len(ds))
	for _, d := range ds {
		switch d.Kind {
		case KindInline:
			d.BlockID = t.TargetBlockID
			d.From += t.TargetLengthBefore
			d.To += t.TargetLengthBefore
			out = append(out, d)
		case KindWidget:
			d.BlockID = t.TargetBlockID
			d.Offset += t.TargetLengthBefore
			out = append(out, d)
		case KindNode:
			// deleted: a whole-block decoration on a block that no longer exists
		}
	}
	return out
}
