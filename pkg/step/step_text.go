package step

import (
	"fmt"

	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/notecore"
	"github.com/Samyssmile/notectl/pkg/schema"
)

// InsertText inserts text at offset in a leaf block with the given marks.
// Segments, when set, preserves mixed-mark runs (e.g. pasted content) and
// takes precedence over Text/Marks.
type InsertText struct {
	BlockID  nodeid.BlockID
	Offset   int
	Text     string
	Marks    doctree.MarkSet
	Segments []doctree.Segment
}

func (s *InsertText) Kind() string { return "InsertText" }

func (s *InsertText) insertedWidth() int {
	if len(s.Segments) > 0 {
		n := 0
		for _, seg := range s.Segments {
			n += seg.Width()
		}
		return n
	}
	return doctree.UTF16Len(s.Text)
}

func (s *InsertText) Apply(doc *doctree.Document, idx *doctree.Index, _ *schema.Registry) (*doctree.Document, error) {
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
	var (
		newInline []doctree.InlineChild
		err       error
	)
	if len(s.Segments) > 0 {
		newInline, err = doctree.InsertSegments(b.Inline, s.Offset, s.Segments)
	} else {
		newInline, err = doctree.InsertText(b.Inline, s.Offset, s.Text, s.Marks)
	}
	if err != nil {
		return nil, err
	}
	return doctree.SetInlineChildren(doc, idx, s.BlockID, newInline)
}

func (s *InsertText) Invert() Step {
	segs := s.Segments
	if len(segs) == 0 {
		segs = []doctree.Segment{doctree.NewTextChild(s.Text, s.Marks)}
	}
	return &DeleteText{
		BlockID:         s.BlockID,
		From:            s.Offset,
		To:              s.Offset + s.insertedWidth(),
		DeletedSegments: segs,
		DeletedText:     doctree.DeletedText(segs),
	}
}

func (s *InsertText) MapPosition(pos Position, assoc Assoc, _ *doctree.Index) MapResult {
	if pos.Block != s.BlockID {
		return identityMap(pos)
	}
	w := s.insertedWidth()
	switch {
	case pos.Offset < s.Offset:
		return Mapped(pos)
	case pos.Offset > s.Offset:
		return Mapped(Position{Block: pos.Block, Offset: pos.Offset + w})
	default: // pos.Offset == s.Offset
		if assoc == AssocBefore {
			return Mapped(pos)
		}
		return Mapped(Position{Block: pos.Block, Offset: pos.Offset + w})
	}
}

// DeleteText removes the [From, To) range from a leaf block. DeletedText,
// DeletedMarks and DeletedSegments are captured during Apply and need not
// be supplied by the caller.
type DeleteText struct {
	BlockID         nodeid.BlockID
	From, To        int
	DeletedText     string
	DeletedMarks    doctree.MarkSet
	DeletedSegments []doctree.Segment
}

func (s *DeleteText) Kind() string { return "DeleteText" }

func (s *DeleteText) Apply(doc *doctree.Document, idx *doctree.Index, _ *schema.Registry) (*doctree.Document, error) {
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
	newInline, removed, err := doctree.DeleteRange(b.Inline, s.From, s.To)
	if err != nil {
		return nil, err
	}
	s.DeletedSegments = removed
	s.DeletedText = doctree.DeletedText(removed)
	if len(removed) == 1 && removed[0].Kind == doctree.InlineChildText {
		s.DeletedMarks = removed[0].Text.Marks
	}
	return doctree.SetInlineChildren(doc, idx, s.BlockID, newInline)
}

func (s *DeleteText) Invert() Step {
	return &InsertText{BlockID: s.BlockID, Offset: s.From, Segments: s.DeletedSegments}
}

func (s *DeleteText) MapPosition(pos Position, _ Assoc, _ *doctree.Index) MapResult {
	if pos.Block != s.BlockID {
		return identityMap(pos)
	}
	switch {
	case pos.Offset <= s.From:
		return Mapped(pos)
	case pos.Offset >= s.To:
		return Mapped(Position{Block: pos.Block, Offset: pos.Offset - (s.To - s.From)})
	default:
		return Mapped(Position{Block: pos.Block, Offset: s.From})
	}
}
