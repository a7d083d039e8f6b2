package selection

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/schema"
	"github.com/Samyssmile/notectl/pkg/step"
)

// Dir is a motion direction.
type Dir int

const (
	DirForward  Dir = 1
	DirBackward Dir = -1
)

// Landing is where a single motion step lands: a caret position, a
// selectable void block, or a gap cursor beside one.
type Landing struct {
	Kind    Kind
	Pos     step.Position // valid when Kind == KindText
	BlockID nodeid.BlockID
	Side    Side
}

func isVoidSelectable(reg *schema.Registry, b *doctree.BlockNode) bool {
	if reg == nil || b == nil {
		return false
	}
	spec, ok := reg.Node(b.Type)
	return ok && spec.IsVoid && spec.Selectable
}

// NextLanding computes the next caret stop in from's direction, crossing
// into an adjacent leaf block, becoming a NodeSelection over a void
// block, or a GapCursor where no caret position exists — per spec.md
// §4.7. ok is false when motion is impossible (document start/end).
func NextLanding(doc *doctree.Document, idx *doctree.Index, reg *schema.Registry, from step.Position, dir Dir) (Landing, bool) {
	b, ok := idx.Block(from.Block)
	if !ok {
		return Landing{}, false
	}
	if dir == DirForward {
		if off, ok := NextStop(b, from.Offset); ok {
			return Landing{Kind: KindText, Pos: step.Position{Block: from.Block, Offset: off}}, true
		}
	} else {
		if off, ok := PrevStop(b, from.Offset); ok {
			return Landing{Kind: KindText, Pos: step.Position{Block: from.Block, Offset: off}}, true
		}
	}

	rank := idx.OrderRank(from.Block)
	if rank < 0 {
		return Landing{}, false
	}
	neighborRank := rank + int(dir)
	curIsVoid := isVoidSelectable(reg, b)

	if neighborRank < 0 || neighborRank >= len(idx.Order) {
		if curIsVoid {
			side := SideAfter
			if dir == DirBackward {
				side = SideBefore
			}
			return Landing{Kind: KindGapCursor, BlockID: from.Block, Side: side}, true
		}
		return Landing{}, false
	}

	neighborID := idx.Order[neighborRank]
	neighbor, _ := idx.Block(neighborID)
	if isVoidSelectable(reg, neighbor) {
		if curIsVoid {
			side := SideAfter
			if dir == DirBackward {
				side = SideBefore
			}
			return Landing{Kind: KindGapCursor, BlockID: from.Block, Side: side}, true
		}
		return Landing{Kind: KindNode, BlockID: neighborID}, true
	}

	edge := 0
	if dir == DirBackward {
		edge = doctree.BlockLength(neighbor)
	}
	return Landing{Kind: KindText, Pos: step.Position{Block: neighborID, Offset: edge}}, true
}
