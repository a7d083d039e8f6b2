package step

import (
	"fmt"

	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/notecore"
	"github.com/Samyssmile/notectl/pkg/schema"
)

// AddMark applies mark to [From, To) in a leaf block, splitting/merging
// neighbor TextNodes as needed. Attribute replacement on an
// already-present mark is modeled as RemoveMark followed by AddMark (see
// spec.md §3.4 lifecycle table), not as a variant of AddMark itself.
//
// [From, To) may mix atoms that already carried mark with atoms that
// didn't, so Apply captures priorMembership (the exact pre-change
// membership) and Invert hands it to the RemoveMark it produces as
// restoreMembership, so undo restores the original mix instead of
// uniformly stripping the mark from the whole range.
type AddMark struct {
	BlockID  nodeid.BlockID
	From, To int
	Mark     doctree.Mark

	// restoreMembership, when set, bypasses the uniform add: each atom in
	// [From,To) is set to restoreMembership[i] instead. Only set on the
	// step RemoveMark.Invert() produces.
	restoreMembership []bool

	priorMembership []bool
}

func (s *AddMark) Kind() string { return "AddMark" }

func (s *AddMark) Apply(doc *doctree.Document, idx *doctree.Index, reg *schema.Registry) (*doctree.Document, error) {
	b, ok := idx.Block(s.BlockID)
	if !ok {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("unknown block %s", s.BlockID), nil)
	}
	if !b.IsLeaf() {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("block %s is not a leaf", s.BlockID), nil)
	}
	if reg != nil && reg.ExcludesMark(b.Type, s.Mark.Type) {
		return nil, notecore.NewError(notecore.SchemaViolation, fmt.Sprintf("block type %q excludes mark %q", b.Type, s.Mark.Type), nil)
	}
	if s.From < 0 || s.To > doctree.BlockLength(b) || s.From > s.To {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("range [%d,%d) out of bounds", s.From, s.To), nil)
	}
	prior, err := doctree.MarkMembership(b.Inline, s.From, s.To, s.Mark.Type)
	if err != nil {
		return nil, err
	}
	s.priorMembership = prior

	var newInline []doctree.InlineChild
	if s.restoreMembership != nil {
		newInline, err = doctree.SetMarkMembership(b.Inline, s.From, s.To, s.Mark, s.restoreMembership)
	} else {
		newInline, err = doctree.ApplyMarkChange(b.Inline, s.From, s.To, s.Mark, true)
	}
	if err != nil {
		return nil, err
	}
	return doctree.SetInlineChildren(doc, idx, s.BlockID, newInline)
}

func (s *AddMark) Invert() Step {
	return &RemoveMark{BlockID: s.BlockID, From: s.From, To: s.To, Mark: s.Mark, restoreMembership: s.priorMembership}
}

func (s *AddMark) MapPosition(pos Position, _ Assoc, _ *doctree.Index) MapResult {
	return identityMap(pos)
}

// RemoveMark removes mark from [From, To) in a leaf block. Mirrors
// AddMark's priorMembership/restoreMembership capture so its own Invert is
// exact.
type RemoveMark struct {
	BlockID  nodeid.BlockID
	From, To int
	Mark     doctree.Mark

	// restoreMembership, when set, bypasses the uniform removal: each
	// atom in [From,To) is set to restoreMembership[i] instead. Only set
	// on the step AddMark.Invert() produces.
	restoreMembership []bool

	priorMembership []bool
}

func (s *RemoveMark) Kind() string { return "RemoveMark" }

func (s *RemoveMark) Apply(doc *doctree.Document, idx *doctree.Index, _ *schema.Registry) (*doctree.Document, error) {
	b, ok := idx.Block(s.BlockID)
	if !ok {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("unknown block %s", s.BlockID), nil)
	}
	if !b.IsLeaf() {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("block %s is not a leaf", s.BlockID), nil)
	}
	if s.From < 0 || s.To > doctree.BlockLength(b) || s.From > s.To {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("range [%d,%d) out of bounds", s.From, s.To), nil)
	}
	prior, err := doctree.MarkMembership(b.Inline, s.From, s.To, s.Mark.Type)
	if err != nil {
		return nil, err
	}
	s.priorMembership = prior

	var newInline []doctree.InlineChild
	if s.restoreMembership != nil {
		newInline, err = doctree.SetMarkMembership(b.Inline, s.From, s.To, s.Mark, s.restoreMembership)
	} else {
		newInline, err = doctree.ApplyMarkChange(b.Inline, s.From, s.To, s.Mark, false)
	}
	if err != nil {
		return nil, err
	}
	return doctree.SetInlineChildren(doc, idx, s.BlockID, newInline)
}

func (s *RemoveMark) Invert() Step {
	return &AddMark{BlockID: s.BlockID, From: s.From, To: s.To, Mark: s.Mark, restoreMembership: s.priorMembership}
}

func (s *RemoveMark) MapPosition(pos Position, _ Assoc, _ *doctree.Index) MapResult {
	return identityMap(pos)
}
