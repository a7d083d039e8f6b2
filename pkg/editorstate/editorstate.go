// Package editorstate implements the immutable editor snapshot and its
// transaction-apply loop (spec.md §4.5).
package editorstate

import (
	"sync"

	"github.com/Samyssmile/notectl/pkg/decoration"
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/notecore"
	"github.com/Samyssmile/notectl/pkg/schema"
	"github.com/Samyssmile/notectl/pkg/selection"
	"github.com/Samyssmile/notectl/pkg/step"
	"github.com/Samyssmile/notectl/pkg/transaction"

	"k8s.io/klog/v2"
)

// State is an immutable editor snapshot. The id→BlockNode and id→path
// indices are rebuilt lazily on first query after a structural change:
// every State produced by Apply starts with an empty idxOnce, so the cost
// is paid only by the first caller that actually needs it.
type State struct {
	Doc         *doctree.Document
	Selection   selection.Selection
	StoredMarks doctree.MarkSet
	Registry    *schema.Registry
	Decorations *decoration.Set

	idxOnce sync.Once
	idxVal  *doctree.Index
}

// New builds the initial state for doc, with an empty decoration set and no
// stored marks.
func New(doc *doctree.Document, sel selection.Selection, reg *schema.Registry) *State {
	return &State{
		Doc:         doc,
		Selection:   sel,
		Registry:    reg,
		Decorations: decoration.Empty(),
	}
}

// Index returns the lazily-built index over Doc.
func (s *State) Index() *doctree.Index {
	s.idxOnce.Do(func() {
		s.idxVal = doctree.BuildIndex(s.Doc)
	})
	return s.idxVal
}

// Apply runs tx's steps against Doc in order, maps Selection and
// Decorations through each one, applies the stored-marks change, and
// returns the resulting State. The receiver is never mutated.
//
// A step precondition failure aborts the whole transaction with
// StepPreconditionViolation; an explicit transaction selection that does
// not resolve against the post-step document fails with InvalidSelection.
// In both cases the prior state is returned unchanged, per spec.md §4.5.
func (s *State) Apply(tx *transaction.Transaction) (*State, error) {
	doc := s.Doc
	idx := s.Index()
	sel := s.Selection
	decos := s.Decorations
	explicitSel := tx.Selection != nil

	for _, st := range tx.Steps {
		idxBefore := idx
		newDoc, err := st.Apply(doc, idxBefore, s.Registry)
		if err != nil {
			klog.V(4).Infof("editorstate: step %s rejected: %v", st.Kind(), err)
			return s, notecore.NewError(notecore.StepPreconditionViolation, "step "+st.Kind()+" failed", err)
		}
		doc = newDoc
		idx = doctree.BuildIndex(doc)

		if !explicitSel {
			if mapped, ok := selection.Map(sel, st, idxBefore, idx); ok {
				sel = mapped
			} else {
				sel = documentStart(idx)
			}
		}
		decos = decos.Map(st, idxBefore)
	}

	if explicitSel {
		sel = *tx.Selection
		if !validSelection(sel, idx) {
			return s, notecore.NewError(notecore.InvalidSelection, "transaction selection does not resolve against the resulting document", nil)
		}
	}

	// A final NodeSelection has no caret for stored marks, so they clear.
	var storedMarks doctree.MarkSet
	if tx.StoredMarks != nil && sel.Kind != selection.KindNode {
		storedMarks = *tx.StoredMarks
	}

	klog.V(5).Infof("editorstate: applied %d steps from origin %q", len(tx.Steps), tx.Origin)

	return &State{
		Doc:         doc,
		Selection:   sel,
		StoredMarks: storedMarks,
		Registry:    s.Registry,
		Decorations: decos,
	}, nil
}

// documentStart returns a collapsed TextSelection at the first leaf block's
// start, the fallback used when mapping deletes both endpoints of a
// non-explicit TextSelection.
func documentStart(idx *doctree.Index) selection.Selection {
	if len(idx.Order) == 0 {
		return selection.Selection{}
	}
	pos := step.Position{Block: idx.Order[0], Offset: 0}
	return selection.Text(pos, pos)
}

func validSelection(sel selection.Selection, idx *doctree.Index) bool {
	switch sel.Kind {
	case selection.KindText:
		return validPosition(sel.Anchor, idx) && validPosition(sel.Head, idx)
	case selection.KindNode, selection.KindGapCursor:
		_, ok := idx.Block(sel.BlockID)
		return ok
	default:
		return false
	}
}

func validPosition(pos step.Position, idx *doctree.Index) bool {
	b, ok := idx.Block(pos.Block)
	if !ok {
		return false
	}
	return pos.Offset >= 0 && pos.Offset <= doctree.BlockLength(b)
}
