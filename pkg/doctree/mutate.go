package doctree

import (
	"fmt"

	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/notecore"
)

// replaceAlongPath returns a new root sharing every subtree untouched by
// path, and a freshly copied chain of ancestors down to path's target,
// where mutate is applied. This is the one place structural copy-on-write
// happens: the document is never mutated in place (spec.md §9).
func replaceAlongPath(n *BlockNode, path []nodeid.BlockID, depth int, mutate func(*BlockNode) *BlockNode) *BlockNode {
	if depth == len(path)-1 {
		return mutate(n)
	}
	target := path[depth+1]
	for i, c := range n.Blocks {
		if c.ID == target {
			newChild := replaceAlongPath(c, path, depth+1, mutate)
			cp := *n
			cp.Blocks = append([]*BlockNode{}, n.Blocks...)
			cp.Blocks[i] = newChild
			return &cp
		}
	}
	// idx was built from n, so this should be unreachable.
	panic(fmt.Sprintf("doctree: path inconsistent with tree at %s", target))
}

// ReplaceBlock returns a new Document with the block named id replaced by
// mutate's result. mutate must preserve id.
func ReplaceBlock(doc *Document, idx *Index, id nodeid.BlockID, mutate func(*BlockNode) *BlockNode) (*Document, error) {
	path, ok := idx.Path[id]
	if !ok {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("unknown block id %s", id), nil)
	}
	return &Document{Root: replaceAlongPath(doc.Root, path, 0, mutate)}, nil
}

// SetInlineChildren replaces a leaf block's inline content, preserving its
// id, type and attrs.
func SetInlineChildren(doc *Document, idx *Index, id nodeid.BlockID, inline []InlineChild) (*Document, error) {
	b, ok := idx.Block(id)
	if !ok {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("unknown block id %s", id), nil)
	}
	if !b.IsLeaf() {
		return nil, notecore.NewError(notecore.SchemaViolation, fmt.Sprintf("block %s is not a leaf", id), nil)
	}
	if len(inline) == 0 {
		inline = []InlineChild{NewTextChild("", nil)}
	}
	return ReplaceBlock(doc, idx, id, func(n *BlockNode) *BlockNode {
		cp := *n
		cp.Inline = inline
		return &cp
	})
}

// SetAttrs replaces a block's attribute map wholesale, preserving id, type
// and children.
func SetAttrs(doc *Document, idx *Index, id nodeid.BlockID, attrs Attrs) (*Document, error) {
	if _, ok := idx.Block(id); !ok {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("unknown block id %s", id), nil)
	}
	return ReplaceBlock(doc, idx, id, func(n *BlockNode) *BlockNode {
		cp := *n
		cp.Attrs = attrs
		return &cp
	})
}

// SetType replaces a block's type, preserving id and children.
func SetType(doc *Document, idx *Index, id nodeid.BlockID, newType nodeid.NodeType, attrs Attrs) (*Document, error) {
	if _, ok := idx.Block(id); !ok {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("unknown block id %s", id), nil)
	}
	return ReplaceBlock(doc, idx, id, func(n *BlockNode) *BlockNode {
		cp := *n
		cp.Type = newType
		cp.Attrs = attrs
		return &cp
	})
}

// InsertChildAt inserts child into parentID's Blocks at index.
func InsertChildAt(doc *Document, idx *Index, parentID nodeid.BlockID, index int, child *BlockNode) (*Document, error) {
	parent, ok := idx.Block(parentID)
	if !ok {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("unknown parent id %s", parentID), nil)
	}
	if parent.ChildKind != BlockChildren {
		return nil, notecore.NewError(notecore.SchemaViolation, fmt.Sprintf("block %s does not hold block children", parentID), nil)
	}
	if index < 0 || index > len(parent.Blocks) {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("index %d out of range for parent %s", index, parentID), nil)
	}
	path := idx.Path[parentID]
	newRoot := replaceAlongPath(doc.Root, path, 0, func(n *BlockNode) *BlockNode {
		cp := *n
		cp.Blocks = make([]*BlockNode, 0, len(n.Blocks)+1)
		cp.Blocks = append(cp.Blocks, n.Blocks[:index]...)
		cp.Blocks = append(cp.Blocks, child)
		cp.Blocks = append(cp.Blocks, n.Blocks[index:]...)
		return &cp
	})
	return &Document{Root: newRoot}, nil
}

// RemoveChildAt removes the child at index from parentID's Blocks and
// returns the removed node alongside the new document.
func RemoveChildAt(doc *Document, idx *Index, parentID nodeid.BlockID, index int) (*Document, *BlockNode, error) {
	parent, ok := idx.Block(parentID)
	if !ok {
		return nil, nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("unknown parent id %s", parentID), nil)
	}
	if parent.ChildKind != BlockChildren || index < 0 || index >= len(parent.Blocks) {
		return nil, nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("index %d out of range for parent %s", index, parentID), nil)
	}
	removed := parent.Blocks[index]
	path := idx.Path[parentID]
	newRoot := replaceAlongPath(doc.Root, path, 0, func(n *BlockNode) *BlockNode {
		cp := *n
		cp.Blocks = make([]*BlockNode, 0, len(n.Blocks)-1)
		cp.Blocks = append(cp.Blocks, n.Blocks[:index]...)
		cp.Blocks = append(cp.Blocks, n.Blocks[index+1:]...)
		return &cp
	})
	return &Document{Root: newRoot}, removed, nil
}

// ReplaceSubtree swaps the whole subtree at id for replacement, which must
// carry the same id (ReplaceNode step semantics).
func ReplaceSubtree(doc *Document, idx *Index, id nodeid.BlockID, replacement *BlockNode) (*Document, error) {
	if _, ok := idx.Block(id); !ok {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("unknown block id %s", id), nil)
	}
	if replacement.ID != id {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, "replacement node id must match target id", nil)
	}
	path := idx.Path[id]
	newRoot := replaceAlongPath(doc.Root, path, 0, func(*BlockNode) *BlockNode {
		return replacement
	})
	return &Document{Root: newRoot}, nil
}
