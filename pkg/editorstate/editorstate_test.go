package editorstate_test

import (
	"testing"

	"github.com/Samyssmile/notectl/pkg/decoration"
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/editorstate"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/notecore"
	"github.com/Samyssmile/notectl/pkg/schema"
	"github.com/Samyssmile/notectl/pkg/selection"
	"github.com/Samyssmile/notectl/pkg/step"
	"github.com/Samyssmile/notectl/pkg/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paragraphType nodeid.NodeType = "paragraph"

func leaf(text string) *doctree.BlockNode {
	return doctree.NewLeafBlock(paragraphType, nil, []doctree.InlineChild{doctree.NewTextChild(text, nil)})
}

func docOf(blocks ...*doctree.BlockNode) *doctree.Document {
	return &doctree.Document{Root: doctree.NewContainerBlock(nodeid.DocumentNodeType, nil, blocks)}
}

func newRegistry() *schema.Registry {
	reg := schema.NewRegistry()
	reg.RegisterNode(schema.NodeSpec{Name: paragraphType})
	_ = reg.Build()
	return reg
}

func TestApplyRunsStepsAndMapsSelection(t *testing.T) {
	block := leaf("hello world")
	doc := docOf(block)
	sel := selection.Text(step.Position{Block: block.ID, Offset: 5}, step.Position{Block: block.ID, Offset: 5})
	st0 := editorstate.New(doc, sel, newRegistry())

	b := transaction.NewBuilder(doc, newRegistry(), "input")
	b.InsertText(block.ID, 0, "say ", nil)
	tx, err := b.Build()
	require.NoError(t, err)

	st1, err := st0.Apply(tx)
	require.NoError(t, err)
	assert.Equal(t, 9, st1.Selection.Anchor.Offset)
	got, ok := st1.Index().Block(block.ID)
	require.True(t, ok)
	assert.Equal(t, "say hello world", got.Inline[0].Text.Text)
}

func TestApplyRejectsAFailingStepAndKeepsStateUnchanged(t *testing.T) {
	block := leaf("hi")
	doc := docOf(block)
	st0 := editorstate.New(doc, selection.Selection{}, newRegistry())

	b := transaction.NewBuilder(doc, newRegistry(), "input")
	b.DeleteText(block.ID, 0, 1)
	tx, err := b.Build()
	require.NoError(t, err)

	// Corrupt the step after building so Apply re-runs it against a document
	// where the precondition no longer holds.
	tx.Steps[0] = &step.DeleteText{BlockID: "does-not-exist", From: 0, To: 1}

	_, err = st0.Apply(tx)
	require.Error(t, err)
	assert.True(t, notecore.Of(err, notecore.StepPreconditionViolation))
}

func TestApplyValidatesAnExplicitSelection(t *testing.T) {
	block := leaf("hello")
	doc := docOf(block)
	st0 := editorstate.New(doc, selection.Selection{}, newRegistry())

	b := transaction.NewBuilder(doc, newRegistry(), "command")
	b.SetSelection(selection.Text(step.Position{Block: block.ID, Offset: 99}, step.Position{Block: block.ID, Offset: 99}))
	tx, err := b.Build()
	require.NoError(t, err)

	_, err = st0.Apply(tx)
	require.Error(t, err)
	assert.True(t, notecore.Of(err, notecore.InvalidSelection))
}

func TestApplyClearsStoredMarksByDefault(t *testing.T) {
	block := leaf("hello")
	doc := docOf(block)
	st0 := editorstate.New(doc, selection.Selection{}, newRegistry())
	st0.StoredMarks = doctree.MarkSet{{Type: "bold"}}

	b := transaction.NewBuilder(doc, newRegistry(), "input")
	b.InsertText(block.ID, 0, "x", nil)
	tx, err := b.Build()
	require.NoError(t, err)

	st1, err := st0.Apply(tx)
	require.NoError(t, err)
	assert.Empty(t, st1.StoredMarks)
}

func TestApplyHonorsAnExplicitStoredMarksOverride(t *testing.T) {
	block := leaf("hello")
	doc := docOf(block)
	st0 := editorstate.New(doc, selection.Selection{}, newRegistry())

	b := transaction.NewBuilder(doc, newRegistry(), "command")
	marks := doctree.MarkSet{{Type: "bold"}}
	b.SetStoredMarks(marks, nil)
	tx, err := b.Build()
	require.NoError(t, err)

	st1, err := st0.Apply(tx)
	require.NoError(t, err)
	assert.Equal(t, marks, st1.StoredMarks)
}

func TestApplyMapsDecorationsThroughSteps(t *testing.T) {
	block := leaf("hello world")
	doc := docOf(block)
	st0 := editorstate.New(doc, selection.Selection{}, newRegistry())
	st0.Decorations = decoration.Empty().Add(decoration.Inline(block.ID, 2, 5, nil))

	b := transaction.NewBuilder(doc, newRegistry(), "input")
	b.InsertText(block.ID, 3, "XY", nil)
	tx, err := b.Build()
	require.NoError(t, err)

	st1, err := st0.Apply(tx)
	require.NoError(t, err)
	got := st1.Decorations.ForBlock(block.ID)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].From)
	assert.Equal(t, 7, got[0].To)
}
