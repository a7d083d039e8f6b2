package commands

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/editorstate"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/selection"
	"github.com/Samyssmile/notectl/pkg/transaction"
)

// SetBlockType changes the type of every block the current selection
// spans (a single block for a NodeSelection) to newType, overlaying
// explicitAttrs on top of the step's own mergeAttrs result, and drops any
// mark newType's schema excludes (spec.md §4.10).
func SetBlockType(st *editorstate.State, newType nodeid.NodeType, explicitAttrs doctree.Attrs) (*transaction.Transaction, bool) {
	idx := st.Index()
	var blockIDs []nodeid.BlockID
	switch st.Selection.Kind {
	case selection.KindText:
		from, to, _ := st.Selection.Range(idx)
		fromRank, toRank := idx.OrderRank(from.Block), idx.OrderRank(to.Block)
		if fromRank < 0 || toRank < 0 {
			return nil, false
		}
		blockIDs = append(blockIDs, idx.Order[fromRank:toRank+1]...)
	case selection.KindNode:
		blockIDs = []nodeid.BlockID{st.Selection.BlockID}
	default:
		return nil, false
	}

	var excluded []nodeid.MarkType
	if spec, ok := st.Registry.Node(newType); ok {
		excluded = spec.ExcludeMarks
	}

	b := transaction.NewBuilder(st.Doc, st.Registry, origin)
	for _, id := range blockIDs {
		b = b.SetBlockType(id, newType)
		blk, ok := b.Index().Block(id)
		if !ok {
			return nil, false
		}
		if len(explicitAttrs) > 0 {
			merged := blk.Attrs.Clone()
			for k, v := range explicitAttrs {
				merged[k] = v
			}
			b = b.SetNodeAttr(id, merged)
		}
		if len(excluded) > 0 {
			length := doctree.BlockLength(blk)
			for _, mt := range excluded {
				b = b.RemoveMark(id, 0, length, doctree.Mark{Type: mt})
			}
		}
	}
	tx, err := b.Build()
	if err != nil {
		return nil, false
	}
	return tx, true
}
