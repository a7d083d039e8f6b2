// Package step implements the twelve atomic step kinds of spec.md §4.2:
// their forward application, their inverse, and the position-mapping
// contract consumed by selection and decoration mapping.
package step

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/schema"
)

// Assoc is the boundary-association hint used when a position sits exactly
// at a step's edit point (spec.md §4.3).
type Assoc int

const (
	// AssocBefore means the position should stay with content before the
	// edit point when the two sides diverge.
	AssocBefore Assoc = -1
	// AssocAfter means the position should move with content after the
	// edit point.
	AssocAfter Assoc = 1
)

// Position is a block-local position: a block id paired with a UTF-16
// offset (spec.md §3.3).
type Position struct {
	Block  nodeid.BlockID
	Offset int
}

// MapResult is the outcome of mapping a Position through one step: either a
// relocated Position, or Deleted if the position's block no longer exists.
type MapResult struct {
	Pos     Position
	Deleted bool
}

// Mapped returns a non-deleted MapResult at pos.
func Mapped(pos Position) MapResult { return MapResult{Pos: pos} }

// DeletedResult returns a deleted MapResult.
func DeletedResult() MapResult { return MapResult{Deleted: true} }

// Step is one atomic, invertible document mutation.
type Step interface {
	// Kind names the step for diagnostics and origin tagging.
	Kind() string
	// Apply performs the step against doc (indexed by idx) and the given
	// schema registry, returning the resulting document. Apply may record
	// additional payload on the step value needed to invert it (mirroring
	// DeleteText capturing the text it removed).
	Apply(doc *doctree.Document, idx *doctree.Index, reg *schema.Registry) (*doctree.Document, error)
	// Invert returns the step that undoes this one. Only valid to call
	// after Apply has succeeded.
	Invert() Step
	// MapPosition relocates pos through this step. idxBefore is the index
	// of the document as it stood immediately before this step applied.
	MapPosition(pos Position, assoc Assoc, idxBefore *doctree.Index) MapResult
}

// StoredMarksStep is implemented by steps that change the pending
// stored-mark set instead of the document (spec.md §4.6): only
// SetStoredMarks.
type StoredMarksStep interface {
	StoredMarksChange() (marks, previous doctree.MarkSet)
}

func identityMap(pos Position) MapResult {
	return Mapped(pos)
}
