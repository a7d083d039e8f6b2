package step

import (
	"fmt"

	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/notecore"
	"github.com/Samyssmile/notectl/pkg/schema"
)

// SplitBlock splits a leaf block at Offset into two sibling leaf blocks: the
// original retains [0, Offset), a new block inserted immediately after it
// receives [Offset, end). NewBlockID is generated during Apply if unset, so
// Invert can address the new block without the caller pre-allocating an id.
type SplitBlock struct {
	BlockID       nodeid.BlockID
	Offset        int
	NewBlockID    nodeid.BlockID
	NewBlockType  nodeid.NodeType
	NewBlockAttrs doctree.Attrs
}

func (s *SplitBlock) Kind() string { return "SplitBlock" }

func (s *SplitBlock) Apply(doc *doctree.Document, idx *doctree.Index, _ *schema.Registry) (*doctree.Document, error) {
	b, ok := idx.Block(s.BlockID)
	if !ok {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("unknown block %s", s.BlockID), nil)
	}
	if !b.IsLeaf() {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("block %s is not a leaf", s.BlockID), nil)
	}
	if s.Offset < 0 || s.Offset > doctree.BlockLength(b) {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("offset %d out of range", s.Offset), nil)
	}
	parent, ok := idx.Parent(s.BlockID)
	if !ok {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("block %s has no parent", s.BlockID), nil)
	}
	leftInline, rightSegments, err := doctree.DeleteRange(b.Inline, s.Offset, doctree.BlockLength(b))
	if err != nil {
		return nil, err
	}
	if s.NewBlockID == "" {
		s.NewBlockID = nodeid.NewBlockID()
	}
	newType := s.NewBlockType
	if newType == "" {
		newType = b.Type
	}
	newAttrs := s.NewBlockAttrs
	if newAttrs == nil {
		newAttrs = b.Attrs.Clone()
	}
	newBlock := doctree.NewLeafBlockWithID(s.NewBlockID, newType, newAttrs, rightSegments)

	doc, err = doctree.SetInlineChildren(doc, idx, s.BlockID, leftInline)
	if err != nil {
		return nil, err
	}
	childPos := idx.ChildPos[s.BlockID]
	return doctree.InsertChildAt(doc, idx, parent.ID, childPos+1, newBlock)
}

func (s *SplitBlock) Invert() Step {
	return &MergeBlocks{TargetBlockID: s.BlockID, SourceBlockID: s.NewBlockID, TargetLengthBefore: s.Offset}
}

func (s *SplitBlock) MapPosition(pos Position, assoc Assoc, _ *doctree.Index) MapResult {
	if pos.Block != s.BlockID {
		return identityMap(pos)
	}
	switch {
	case pos.Offset < s.Offset:
		return Mapped(pos)
	case pos.Offset > s.Offset:
		return Mapped(Position{Block: s.NewBlockID, Offset: pos.Offset - s.Offset})
	default:
		if assoc == AssocBefore {
			return Mapped(pos)
		}
		return Mapped(Position{Block: s.NewBlockID, Offset: 0})
	}
}

// MergeBlocks appends SourceBlockID's content onto TargetBlockID and removes
// SourceBlockID, which must be TargetBlockID's immediate next sibling.
// TargetLengthBefore and the source's type/attrs are captured during Apply
// so Invert can reconstruct an exact SplitBlock.
type MergeBlocks struct {
	TargetBlockID      nodeid.BlockID
	SourceBlockID      nodeid.BlockID
	TargetLengthBefore int

	sourceType  nodeid.NodeType
	sourceAttrs doctree.Attrs
}

func (s *MergeBlocks) Kind() string { return "MergeBlocks" }

func (s *MergeBlocks) Apply(doc *doctree.Document, idx *doctree.Index, _ *schema.Registry) (*doctree.Document, error) {
	target, ok := idx.Block(s.TargetBlockID)
	if !ok || !target.IsLeaf() {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("unknown leaf block %s", s.TargetBlockID), nil)
	}
	source, ok := idx.Block(s.SourceBlockID)
	if !ok || !source.IsLeaf() {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("unknown leaf block %s", s.SourceBlockID), nil)
	}
	parentT, okT := idx.Parent(s.TargetBlockID)
	parentS, okS := idx.Parent(s.SourceBlockID)
	if !okT || !okS || parentT.ID != parentS.ID || idx.ChildPos[s.SourceBlockID] != idx.ChildPos[s.TargetBlockID]+1 {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, "source block is not the target's next sibling", nil)
	}

	s.TargetLengthBefore = doctree.BlockLength(target)
	s.sourceType = source.Type
	s.sourceAttrs = source.Attrs.Clone()

	merged, err := doctree.InsertSegments(target.Inline, s.TargetLengthBefore, source.Inline)
	if err != nil {
		return nil, err
	}
	doc, err = doctree.SetInlineChildren(doc, idx, s.TargetBlockID, merged)
	if err != nil {
		return nil, err
	}
	doc, _, err = doctree.RemoveChildAt(doc, idx, parentT.ID, idx.ChildPos[s.SourceBlockID])
	return doc, err
}

func (s *MergeBlocks) Invert() Step {
	return &SplitBlock{
		BlockID:       s.TargetBlockID,
		Offset:        s.TargetLengthBefore,
		NewBlockID:    s.SourceBlockID,
		NewBlockType:  s.sourceType,
		NewBlockAttrs: s.sourceAttrs,
	}
}

func (s *MergeBlocks) MapPosition(pos Position, _ Assoc, _ *doctree.Index) MapResult {
	switch pos.Block {
	case s.TargetBlockID:
		return Mapped(pos)
	case s.SourceBlockID:
		return Mapped(Position{Block: s.TargetBlockID, Offset: s.TargetLengthBefore + pos.Offset})
	default:
		return identityMap(pos)
	}
}

// SetBlockType changes a block's type in place, preserving its id and
// children. Its attrs are recomputed by the mergeAttrs policy (spec.md
// §4.2): a key survives with its current value only when both the old and
// new type declare it; everything else takes the new type's default.
// previousType/previousAttrs are captured during Apply.
type SetBlockType struct {
	BlockID nodeid.BlockID
	NewType nodeid.NodeType

	previousType  nodeid.NodeType
	previousAttrs doctree.Attrs
	forcedAttrs   doctree.Attrs // set only on the step Invert() produces; bypasses the merge policy to restore attrs exactly
	forced        bool
}

func (s *SetBlockType) Kind() string { return "SetBlockType" }

func (s *SetBlockType) Apply(doc *doctree.Document, idx *doctree.Index, reg *schema.Registry) (*doctree.Document, error) {
	b, ok := idx.Block(s.BlockID)
	if !ok {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("unknown block %s", s.BlockID), nil)
	}
	s.previousType = b.Type
	s.previousAttrs = b.Attrs.Clone()

	var newAttrs doctree.Attrs
	switch {
	case s.forced:
		newAttrs = s.forcedAttrs
	case reg != nil:
		newAttrs = reg.MergeAttrsOnTypeChange(b.Type, s.NewType, b.Attrs)
		if err := reg.ValidateNodeAttrs(s.NewType, newAttrs); err != nil {
			return nil, err
		}
	default:
		newAttrs = b.Attrs.Clone()
	}
	return doctree.SetType(doc, idx, s.BlockID, s.NewType, newAttrs)
}

func (s *SetBlockType) Invert() Step {
	return &SetBlockType{BlockID: s.BlockID, NewType: s.previousType, forcedAttrs: s.previousAttrs, forced: true}
}

func (s *SetBlockType) MapPosition(pos Position, _ Assoc, _ *doctree.Index) MapResult {
	return identityMap(pos)
}

// SetNodeAttr replaces a block's attribute map wholesale, preserving id,
// type and children. previousAttrs is captured during Apply.
type SetNodeAttr struct {
	BlockID nodeid.BlockID
	Attrs   doctree.Attrs

	previousAttrs doctree.Attrs
}

func (s *SetNodeAttr) Kind() string { return "SetNodeAttr" }

func (s *SetNodeAttr) Apply(doc *doctree.Document, idx *doctree.Index, reg *schema.Registry) (*doctree.Document, error) {
	b, ok := idx.Block(s.BlockID)
	if !ok {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("unknown block %s", s.BlockID), nil)
	}
	if reg != nil {
		if err := reg.ValidateNodeAttrs(b.Type, s.Attrs); err != nil {
			return nil, err
		}
	}
	s.previousAttrs = b.Attrs.Clone()
	return doctree.SetAttrs(doc, idx, s.BlockID, s.Attrs)
}

func (s *SetNodeAttr) Invert() Step {
	return &SetNodeAttr{BlockID: s.BlockID, Attrs: s.previousAttrs}
}

func (s *SetNodeAttr) MapPosition(pos Position, _ Assoc, _ *doctree.Index) MapResult {
	return identityMap(pos)
}
