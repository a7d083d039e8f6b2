// Package slice implements the content slice representation and the paste
// planner of spec.md §4.8.
package slice

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/editorstate"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/selection"
	"github.com/Samyssmile/notectl/pkg/step"
	"github.com/Samyssmile/notectl/pkg/transaction"
)

// ParagraphType is the reserved block type that makes a single-block slice
// eligible for the inline paste strategy (spec.md §4.8).
const ParagraphType nodeid.NodeType = "paragraph"

// SliceBlock is one block of a ContentSlice: a type, its attrs, and the
// segments (text runs or InlineNode markers) it carries.
type SliceBlock struct {
	Type     nodeid.NodeType
	Attrs    doctree.Attrs
	Segments []doctree.Segment
}

// Width returns the segments' combined UTF-16 length.
func (b SliceBlock) Width() int {
	n := 0
	for _, seg := range b.Segments {
		n += seg.Width()
	}
	return n
}

// ContentSlice is the language-neutral paste payload: an ordered list of
// SliceBlocks produced by an external collaborator (markdown/HTML import,
// or a plugin).
type ContentSlice struct {
	Blocks []SliceBlock
}

// Paste builds the transaction that applies slice at st's current
// selection, choosing exactly one of the three strategies in spec.md §4.8.
// A NodeSelection makes paste a no-op that only re-asserts the selection.
func Paste(st *editorstate.State, cs ContentSlice) (*transaction.Transaction, error) {
	idx := st.Index()

	if st.Selection.Kind != selection.KindText {
		b := transaction.NewBuilder(st.Doc, st.Registry, "paste")
		b.SetSelection(st.Selection)
		return b.Build()
	}

	from, to, _ := st.Selection.Range(idx)
	b := transaction.NewBuilder(st.Doc, st.Registry, "paste")
	if from != to {
		b = b.DeleteRange(from, to)
	}

	switch len(cs.Blocks) {
	case 0:
		return b.Build()
	case 1:
		return pasteSingle(b, from.Block, from.Offset, cs.Blocks[0])
	default:
		return pasteMulti(b, from.Block, from.Offset, cs.Blocks)
	}
}

// pasteSingle implements the "inline" and "single block" strategies, which
// differ only in whether the current block's type/attrs are overwritten.
func pasteSingle(b *transaction.Builder, blockID nodeid.BlockID, offset int, sb SliceBlock) (*transaction.Transaction, error) {
	if sb.Type != ParagraphType && sb.Type != "" {
		b = b.SetBlockType(blockID, sb.Type)
		if len(sb.Attrs) > 0 {
			b = b.SetNodeAttr(blockID, sb.Attrs)
		}
	}
	b = b.InsertSegments(blockID, offset, sb.Segments)
	tx, err := b.Build()
	if err != nil {
		return nil, err
	}
	end := step.Position{Block: blockID, Offset: offset + sb.Width()}
	endSel := selection.Text(end, end)
	tx.Selection = &endSel
	return tx, nil
}

// pasteMulti implements the "multi-block" strategy: the first slice block's
// segments land in the current block (possibly changing its type), the
// current block is split at the caret plus the inserted width, the middle
// slices become new blocks between the two halves, and the last slice's
// segments land at the head of the tail block.
func pasteMulti(b *transaction.Builder, blockID nodeid.BlockID, offset int, blocks []SliceBlock) (*transaction.Transaction, error) {
	first := blocks[0]
	if first.Type != ParagraphType && first.Type != "" {
		b = b.SetBlockType(blockID, first.Type)
		if len(first.Attrs) > 0 {
			b = b.SetNodeAttr(blockID, first.Attrs)
		}
	}
	b = b.InsertSegments(blockID, offset, first.Segments)

	splitAt := offset + first.Width()
	var tailID nodeid.BlockID
	b, tailID = b.SplitBlock(blockID, splitAt)

	middle := blocks[1 : len(blocks)-1]
	insertIndex := 0
	if b.Err() == nil {
		insertIndex = b.Index().ChildPos[blockID] + 1
	}
	for _, mb := range middle {
		if b.Err() != nil {
			break
		}
		parent, ok := b.Index().Parent(blockID)
		if !ok {
			break
		}
		node := doctree.NewLeafBlock(mb.Type, mb.Attrs, mb.Segments)
		b = b.InsertNode(parent.ID, insertIndex, node)
		insertIndex++
	}

	last := blocks[len(blocks)-1]
	if last.Type != ParagraphType && last.Type != "" {
		b = b.SetBlockType(tailID, last.Type)
		if len(last.Attrs) > 0 {
			b = b.SetNodeAttr(tailID, last.Attrs)
		}
	}
	b = b.InsertSegments(tailID, 0, last.Segments)

	tx, err := b.Build()
	if err != nil {
		return nil, err
	}
	end := step.Position{Block: tailID, Offset: last.Width()}
	endSel := selection.Text(end, end)
	tx.Selection = &endSel
	return tx, nil
}
