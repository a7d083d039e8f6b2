package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"k8s.io/klog/v2"

	"github.com/Samyssmile/notectl/pkg/commands"
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/editorstate"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/pluginhost"
	"github.com/Samyssmile/notectl/pkg/selection"
	"github.com/Samyssmile/notectl/pkg/step"
	"github.com/Samyssmile/notectl/pkg/transaction"
)

// Run loads the schema and script files opts names and dispatches the
// script's steps in order against a fresh pluginhost.Host, and writes the
// resulting document tree to out as JSON. This is the end-to-end drive the
// teacher's own RunE performs for its own pipeline, scaled to this
// engine's surface.
func Run(ctx context.Context, opts *Options, out io.Writer) error {
	reg, err := loadSchema(opts.SchemaPath)
	if err != nil {
		return err
	}
	script, err := loadScript(opts.ScriptPath)
	if err != nil {
		return err
	}

	doc, ids := buildDocument(script.Document)
	var sel selection.Selection
	if len(ids) > 0 {
		pos := step.Position{Block: ids[0], Offset: 0}
		sel = selection.Text(pos, pos)
	}
	st := editorstate.New(doc, sel, reg)
	host := pluginhost.New(st)

	for i, s := range script.Steps {
		klog.V(4).Infof("notectl: step %d: %s", i, s.Op)
		if err := applyStep(host, ids, script.Origin, s); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, s.Op, err)
		}
	}

	enc := json.NewEncoder(out)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(host.State().Doc.Root)
}

func applyStep(host *pluginhost.Host, ids []nodeid.BlockID, origin string, s stepSpecYAML) error {
	if s.Op == "select" {
		return selectStep(host, ids, origin, s)
	}

	fn, ok := commandTable[s.Op]
	if !ok {
		return fmt.Errorf("unknown op %q", s.Op)
	}
	tx, built := fn(host.State(), s)
	if !built {
		return fmt.Errorf("command %q declined to build a transaction against the current selection", s.Op)
	}
	return host.Dispatch(tx)
}

// commandTable maps a script op name to the pkg/commands function it
// drives. Entries that ignore s simply adapt a zero-argument command to
// this table's uniform signature.
var commandTable = map[string]func(*editorstate.State, stepSpecYAML) (*transaction.Transaction, bool){
	"insertText": func(st *editorstate.State, s stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.InsertText(st, s.Text)
	},
	"deleteBackward": func(st *editorstate.State, _ stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.DeleteBackward(st)
	},
	"deleteForward": func(st *editorstate.State, _ stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.DeleteForward(st)
	},
	"deleteWordBackward": func(st *editorstate.State, _ stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.DeleteWordBackward(st)
	},
	"deleteWordForward": func(st *editorstate.State, _ stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.DeleteWordForward(st)
	},
	"deleteSoftLineBackward": func(st *editorstate.State, _ stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.DeleteSoftLineBackward(st)
	},
	"deleteSoftLineForward": func(st *editorstate.State, _ stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.DeleteSoftLineForward(st)
	},
	"splitBlock": func(st *editorstate.State, _ stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.SplitBlock(st)
	},
	"mergeWithPrevious": func(st *editorstate.State, _ stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.MergeWithPrevious(st)
	},
	"mergeWithNext": func(st *editorstate.State, _ stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.MergeWithNext(st)
	},
	"insertHardBreak": func(st *editorstate.State, _ stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.InsertHardBreak(st)
	},
	"toggleMark": func(st *editorstate.State, s stepSpecYAML) (*transaction.Transaction, bool) {
		mark := doctree.Mark{Type: nodeid.MarkType(s.Mark), Attrs: doctree.Attrs(s.MarkAttrs)}
		return commands.ToggleMark(st, mark)
	},
	"setBlockType": func(st *editorstate.State, s stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.SetBlockType(st, nodeid.NodeType(s.Type), doctree.Attrs(s.Attrs))
	},
	"moveChar": func(st *editorstate.State, s stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.MoveChar(st, parseDir(s.Dir))
	},
	"extendChar": func(st *editorstate.State, s stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.ExtendChar(st, parseDir(s.Dir))
	},
	"moveBlockEdge": func(st *editorstate.State, s stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.MoveBlockEdge(st, parseDir(s.Dir))
	},
	"extendBlockEdge": func(st *editorstate.State, s stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.ExtendBlockEdge(st, parseDir(s.Dir))
	},
	"moveDocumentEdge": func(st *editorstate.State, s stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.MoveDocumentEdge(st, parseDir(s.Dir))
	},
	"extendDocumentEdge": func(st *editorstate.State, s stepSpecYAML) (*transaction.Transaction, bool) {
		return commands.ExtendDocumentEdge(st, parseDir(s.Dir))
	},
}

func parseDir(dir string) selection.Dir {
	if dir == "backward" {
		return selection.DirBackward
	}
	return selection.DirForward
}

// selectStep is not itself a pkg/commands function: it builds the
// zero-step, selection-only transaction pattern commands.go's
// buildSelectionOnly uses, addressed at one of the script's original
// top-level blocks.
func selectStep(host *pluginhost.Host, ids []nodeid.BlockID, origin string, s stepSpecYAML) error {
	if s.Block < 0 || s.Block >= len(ids) {
		return fmt.Errorf("block index %d out of range (document has %d top-level blocks)", s.Block, len(ids))
	}
	blockID := ids[s.Block]
	head := step.Position{Block: blockID, Offset: s.Offset}
	anchor := head
	if s.AnchorOffset != nil {
		anchor = step.Position{Block: blockID, Offset: *s.AnchorOffset}
	}

	st := host.State()
	b := transaction.NewBuilder(st.Doc, st.Registry, origin)
	b.SetSelection(selection.Text(anchor, head))
	tx, err := b.Build()
	if err != nil {
		return err
	}
	return host.Dispatch(tx)
}
