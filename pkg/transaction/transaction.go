// Package transaction implements the step-accumulating transaction builder
// of spec.md §4.4.
package transaction

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/notecore"
	"github.com/Samyssmile/notectl/pkg/schema"
	"github.com/Samyssmile/notectl/pkg/selection"
	"github.com/Samyssmile/notectl/pkg/step"
)

// Transaction is the accumulated, immutable result of a Builder run: an
// ordered step list plus the optional selection/stored-marks overrides and
// origin tag that pluginhost middleware and the editor-state apply loop
// consume.
type Transaction struct {
	Steps []step.Step

	// Selection, when non-nil, is validated against the post-apply document
	// instead of being derived by mapping the prior selection through Steps.
	Selection *selection.Selection

	// StoredMarks, when non-nil, replaces storedMarks instead of the
	// default clearing behavior (spec.md §4.6).
	StoredMarks *doctree.MarkSet

	Origin string
}

// Builder accumulates steps against a provisional document, rejecting any
// step that fails its own preconditions against that document's current
// state (spec.md §4.4). A failing step aborts the whole build: unlike
// schema validation, later steps are not independent of earlier ones, so
// there is nothing sound to accumulate past the first failure.
type Builder struct {
	doc    *doctree.Document
	idx    *doctree.Index
	reg    *schema.Registry
	origin string

	steps       []step.Step
	selection   *selection.Selection
	storedMarks *doctree.MarkSet
	err         error
}

// NewBuilder starts a Builder against doc, using reg to validate
// schema-sensitive steps (AddMark, SetBlockType, SetNodeAttr).
func NewBuilder(doc *doctree.Document, reg *schema.Registry, origin string) *Builder {
	return &Builder{doc: doc, idx: doctree.BuildIndex(doc), reg: reg, origin: origin}
}

// Doc returns the provisional document reflecting every step queued so far.
func (b *Builder) Doc() *doctree.Document { return b.doc }

// Index returns the index over Doc().
func (b *Builder) Index() *doctree.Index { return b.idx }

// Err returns the first error encountered by a queued step, if any.
func (b *Builder) Err() error { return b.err }

func (b *Builder) push(s step.Step) *Builder {
	if b.err != nil {
		return b
	}
	newDoc, err := s.Apply(b.doc, b.idx, b.reg)
	if err != nil {
		b.err = err
		return b
	}
	b.doc = newDoc
	b.idx = doctree.BuildIndex(newDoc)
	b.steps = append(b.steps, s)
	return b
}

func (b *Builder) InsertText(blockID nodeid.BlockID, offset int, text string, marks doctree.MarkSet) *Builder {
	return b.push(&step.InsertText{BlockID: blockID, Offset: offset, Text: text, Marks: marks})
}

func (b *Builder) InsertSegments(blockID nodeid.BlockID, offset int, segments []doctree.Segment) *Builder {
	return b.push(&step.InsertText{BlockID: blockID, Offset: offset, Segments: segments})
}

func (b *Builder) DeleteText(blockID nodeid.BlockID, from, to int) *Builder {
	return b.push(&step.DeleteText{BlockID: blockID, From: from, To: to})
}

func (b *Builder) AddMark(blockID nodeid.BlockID, from, to int, mark doctree.Mark) *Builder {
	return b.push(&step.AddMark{BlockID: blockID, From: from, To: to, Mark: mark})
}

func (b *Builder) RemoveMark(blockID nodeid.BlockID, from, to int, mark doctree.Mark) *Builder {
	return b.push(&step.RemoveMark{BlockID: blockID, From: from, To: to, Mark: mark})
}

// SplitBlock splits blockID at offset. The id assigned to the new tail
// block is returned so callers (e.g. the paste planner) can address it in
// subsequent builder calls without a second document lookup.
func (b *Builder) SplitBlock(blockID nodeid.BlockID, offset int) (*Builder, nodeid.BlockID) {
	s := &step.SplitBlock{BlockID: blockID, Offset: offset}
	b.push(s)
	return b, s.NewBlockID
}

func (b *Builder) MergeBlocks(targetID, sourceID nodeid.BlockID) *Builder {
	return b.push(&step.MergeBlocks{TargetBlockID: targetID, SourceBlockID: sourceID})
}

// DeleteRange removes the content between from and to (from.Block's order
// rank must be <= to.Block's), compiling spec.md §4.10's literal rule for a
// range spanning more than one block into DeleteText (trim from's tail),
// RemoveNode (drop every whole block strictly between), DeleteText (trim
// to's head), MergeBlocks (join what remains of from and to). A same-block
// range is just a single DeleteText.
func (b *Builder) DeleteRange(from, to step.Position) *Builder {
	if from.Block == to.Block {
		return b.DeleteText(from.Block, from.Offset, to.Offset)
	}
	if b.err != nil {
		return b
	}
	fromBlock, ok := b.idx.Block(from.Block)
	if !ok {
		b.err = notecore.NewError(notecore.StepPreconditionViolation, "unknown range start block", nil)
		return b
	}
	b = b.DeleteText(from.Block, from.Offset, doctree.BlockLength(fromBlock))
	for b.err == nil {
		rank := b.idx.OrderRank(from.Block)
		if rank < 0 || rank+1 >= len(b.idx.Order) {
			b.err = notecore.NewError(notecore.StepPreconditionViolation, "range end block not reachable from start block", nil)
			return b
		}
		next := b.idx.Order[rank+1]
		if next == to.Block {
			break
		}
		parent, ok := b.idx.Parent(next)
		if !ok {
			b.err = notecore.NewError(notecore.StepPreconditionViolation, "block has no parent", nil)
			return b
		}
		b = b.RemoveNode(parent.ID, b.idx.ChildPos[next])
	}
	b = b.DeleteText(to.Block, 0, to.Offset)
	return b.MergeBlocks(from.Block, to.Block)
}

func (b *Builder) SetBlockType(blockID nodeid.BlockID, newType nodeid.NodeType) *Builder {
	return b.push(&step.SetBlockType{BlockID: blockID, NewType: newType})
}

func (b *Builder) SetNodeAttr(blockID nodeid.BlockID, attrs doctree.Attrs) *Builder {
	return b.push(&step.SetNodeAttr{BlockID: blockID, Attrs: attrs})
}

func (b *Builder) InsertNode(parentID nodeid.BlockID, index int, node *doctree.BlockNode) *Builder {
	return b.push(&step.InsertNode{ParentID: parentID, Index: index, Node: node})
}

func (b *Builder) RemoveNode(parentID nodeid.BlockID, index int) *Builder {
	return b.push(&step.RemoveNode{ParentID: parentID, Index: index})
}

func (b *Builder) ReplaceNode(blockID nodeid.BlockID, replacement *doctree.BlockNode) *Builder {
	return b.push(&step.ReplaceNode{BlockID: blockID, Replacement: replacement})
}

// SetSelection overrides the selection the apply loop would otherwise
// derive by mapping the prior selection through Steps.
func (b *Builder) SetSelection(sel selection.Selection) *Builder {
	b.selection = &sel
	return b
}

// SetStoredMarks queues an explicit SetStoredMarks step and also records the
// override on the Transaction, so the apply loop does not need to search
// Steps to find it.
func (b *Builder) SetStoredMarks(marks, previous doctree.MarkSet) *Builder {
	b.push(&step.SetStoredMarks{Marks: marks, Previous: previous})
	if b.err == nil {
		b.storedMarks = &marks
	}
	return b
}

// Build finalizes the transaction, or reports the first step failure as a
// BuildError.
func (b *Builder) Build() (*Transaction, error) {
	if b.err != nil {
		return nil, notecore.NewError(notecore.BuildError, "transaction build failed", b.err)
	}
	return &Transaction{
		Steps:       b.steps,
		Selection:   b.selection,
		StoredMarks: b.storedMarks,
		Origin:      b.origin,
	}, nil
}
