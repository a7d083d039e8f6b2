package step

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/schema"
)

// SetStoredMarks changes the pending stored-mark set carried by editor state
// (spec.md §4.6) rather than the document; Apply is a no-op on the document
// and the editor-state apply loop special-cases this kind via
// StoredMarksStep to update its stored-marks field instead.
type SetStoredMarks struct {
	Marks    doctree.MarkSet
	Previous doctree.MarkSet
}

func (s *SetStoredMarks) Kind() string { return "SetStoredMarks" }

func (s *SetStoredMarks) Apply(doc *doctree.Document, _ *doctree.Index, _ *schema.Registry) (*doctree.Document, error) {
	return doc, nil
}

func (s *SetStoredMarks) Invert() Step {
	return &SetStoredMarks{Marks: s.Previous, Previous: s.Marks}
}

func (s *SetStoredMarks) MapPosition(pos Position, _ Assoc, _ *doctree.Index) MapResult {
	return identityMap(pos)
}

func (s *SetStoredMarks) StoredMarksChange() (marks, previous doctree.MarkSet) {
	return s.Marks, s.Previous
}
