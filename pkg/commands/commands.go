// Package commands implements the pure state-to-transaction command
// functions of spec.md §4.10, built on top of pkg/selection's motion
// primitives and pkg/transaction's builder.
package commands

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/editorstate"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/schema"
	"github.com/Samyssmile/notectl/pkg/selection"
	"github.com/Samyssmile/notectl/pkg/step"
	"github.com/Samyssmile/notectl/pkg/transaction"
)

// origin tags every transaction a command in this package builds. Plugin
// host middleware keyed on origin (spec.md §4.11) sees "command" for all
// of them; individual commands are distinguished by the steps they carry,
// not by a per-command origin string.
const origin = "command"

// currentBlockID returns the block a structural command (split, merge,
// setBlockType) should act on: the head's block for a TextSelection, or
// the targeted block itself for a NodeSelection/GapCursor.
func currentBlockID(sel selection.Selection) (nodeid.BlockID, bool) {
	switch sel.Kind {
	case selection.KindText:
		return sel.Head.Block, true
	case selection.KindNode, selection.KindGapCursor:
		return sel.BlockID, true
	}
	return "", false
}

// buildSelectionOnly returns a zero-step transaction that only asserts sel,
// used by motion commands that change nothing but where the caret sits.
func buildSelectionOnly(st *editorstate.State, sel selection.Selection) (*transaction.Transaction, bool) {
	b := transaction.NewBuilder(st.Doc, st.Registry, origin)
	b.SetSelection(sel)
	tx, err := b.Build()
	if err != nil {
		return nil, false
	}
	return tx, true
}

// collapsedAt wraps pos as a zero-width TextSelection.
func collapsedAt(pos step.Position) selection.Selection {
	return selection.Text(pos, pos)
}

// isolatingBoundaryBetween reports whether merging a and b would cross a
// block whose schema marks it Isolating: the boundary of their lowest
// common ancestor path. spec.md §4.1 names the invariant ("transactions may
// not cross its boundary via merge") without an algorithm; this walks both
// paths above their shared prefix and blocks the merge if either side
// passes through an isolating container.
func isolatingBoundaryBetween(reg *schema.Registry, idx *doctree.Index, a, b nodeid.BlockID) bool {
	if reg == nil {
		return false
	}
	pa, pb := idx.Path[a], idx.Path[b]
	i := 0
	for i < len(pa) && i < len(pb) && pa[i] == pb[i] {
		i++
	}
	return hasIsolatingAncestor(reg, idx, pa[i:]) || hasIsolatingAncestor(reg, idx, pb[i:])
}

func hasIsolatingAncestor(reg *schema.Registry, idx *doctree.Index, path []nodeid.BlockID) bool {
	for _, id := range path {
		blk, ok := idx.Block(id)
		if !ok {
			continue
		}
		if spec, ok := reg.Node(blk.Type); ok && spec.Isolating {
			return true
		}
	}
	return false
}

// excludedMarksAt filters marks down to the ones blockType's schema does
// not exclude (spec.md §4.6: "stored marks in the current block's
// excludeMarks set are silently dropped at consumption time").
func excludedMarksAt(reg *schema.Registry, blockType nodeid.NodeType, marks doctree.MarkSet) doctree.MarkSet {
	if reg == nil || len(marks) == 0 {
		return marks
	}
	out := make(doctree.MarkSet, 0, len(marks))
	for _, m := range marks {
		if !reg.ExcludesMark(blockType, m.Type) {
			out = append(out, m)
		}
	}
	return out
}
