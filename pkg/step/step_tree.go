package step

import (
	"fmt"

	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/notecore"
	"github.com/Samyssmile/notectl/pkg/schema"
)

// InsertNode inserts a whole block subtree as a new child of ParentID at
// Index.
type InsertNode struct {
	ParentID nodeid.BlockID
	Index    int
	Node     *doctree.BlockNode
}

func (s *InsertNode) Kind() string { return "InsertNode" }

func (s *InsertNode) Apply(doc *doctree.Document, idx *doctree.Index, _ *schema.Registry) (*doctree.Document, error) {
	if s.Node == nil {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, "InsertNode requires a node", nil)
	}
	if _, exists := idx.Block(s.Node.ID); exists {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("block id %s already present", s.Node.ID), nil)
	}
	return doctree.InsertChildAt(doc, idx, s.ParentID, s.Index, s.Node)
}

func (s *InsertNode) Invert() Step {
	return &RemoveNode{ParentID: s.ParentID, Index: s.Index, RemovedNode: s.Node}
}

func (s *InsertNode) MapPosition(pos Position, _ Assoc, idxBefore *doctree.Index) MapResult {
	return identityMap(pos)
}

// RemoveNode removes the child at Index from ParentID's Blocks. RemovedNode
// is captured during Apply if not already supplied, so Invert can always
// reconstruct the exact removed subtree.
type RemoveNode struct {
	ParentID    nodeid.BlockID
	Index       int
	RemovedNode *doctree.BlockNode
}

func (s *RemoveNode) Kind() string { return "RemoveNode" }

func (s *RemoveNode) Apply(doc *doctree.Document, idx *doctree.Index, _ *schema.Registry) (*doctree.Document, error) {
	newDoc, removed, err := doctree.RemoveChildAt(doc, idx, s.ParentID, s.Index)
	if err != nil {
		return nil, err
	}
	s.RemovedNode = removed
	return newDoc, nil
}

func (s *RemoveNode) Invert() Step {
	return &InsertNode{ParentID: s.ParentID, Index: s.Index, Node: s.RemovedNode}
}

// MapPosition deletes any position whose block descends from the removed
// subtree, using idxBefore (the index as it stood before this step applied)
// to walk ancestry; this is the reason Step.MapPosition is handed idxBefore
// rather than operating on block ids alone.
func (s *RemoveNode) MapPosition(pos Position, _ Assoc, idxBefore *doctree.Index) MapResult {
	if s.RemovedNode == nil || idxBefore == nil {
		return identityMap(pos)
	}
	if idxBefore.IsDescendantOf(pos.Block, s.RemovedNode.ID) {
		return DeletedResult()
	}
	return identityMap(pos)
}

// ReplaceNode swaps the whole subtree at BlockID for Replacement, which must
// carry the same id. PreviousNode is captured during Apply.
type ReplaceNode struct {
	BlockID      nodeid.BlockID
	Replacement  *doctree.BlockNode
	PreviousNode *doctree.BlockNode
}

func (s *ReplaceNode) Kind() string { return "ReplaceNode" }

func (s *ReplaceNode) Apply(doc *doctree.Document, idx *doctree.Index, _ *schema.Registry) (*doctree.Document, error) {
	prev, ok := idx.Block(s.BlockID)
	if !ok {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("unknown block %s", s.BlockID), nil)
	}
	s.PreviousNode = prev
	return doctree.ReplaceSubtree(doc, idx, s.BlockID, s.Replacement)
}

func (s *ReplaceNode) Invert() Step {
	return &ReplaceNode{BlockID: s.BlockID, Replacement: s.PreviousNode}
}

// MapPosition deletes positions in blocks that existed under the previous
// subtree but not the replacement (e.g. a leaf removed by the swap);
// everything else maps identically since the root id is preserved.
func (s *ReplaceNode) MapPosition(pos Position, _ Assoc, idxBefore *doctree.Index) MapResult {
	if idxBefore == nil || s.PreviousNode == nil {
		return identityMap(pos)
	}
	if !idxBefore.IsDescendantOf(pos.Block, s.BlockID) {
		return identityMap(pos)
	}
	if pos.Block == s.Replacement.ID {
		return identityMap(pos)
	}
	afterIdx := doctree.BuildIndex(&doctree.Document{Root: s.Replacement})
	if _, ok := afterIdx.Block(pos.Block); ok {
		return identityMap(pos)
	}
	return DeletedResult()
}
