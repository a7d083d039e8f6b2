package doctree

import "github.com/Samyssmile/notectl/pkg/nodeid"

// Index is a derived, rebuild-on-demand lookup structure over a Document.
// Parents are never stored on nodes (spec.md §9): this is the only place a
// block's ancestry is recorded, and it is cheap to discard and rebuild
// after any structural change.
type Index struct {
	ByID     map[nodeid.BlockID]*BlockNode
	ParentID map[nodeid.BlockID]nodeid.BlockID // absent for the root
	ChildPos map[nodeid.BlockID]int            // index within parent's Blocks
	Path     map[nodeid.BlockID][]nodeid.BlockID
	Order    []nodeid.BlockID // leaf blocks, document (pre-)order
}

// BuildIndex walks doc once and returns a fresh Index.
func BuildIndex(doc *Document) *Index {
	idx := &Index{
		ByID:     make(map[nodeid.BlockID]*BlockNode),
		ParentID: make(map[nodeid.BlockID]nodeid.BlockID),
		ChildPos: make(map[nodeid.BlockID]int),
		Path:     make(map[nodeid.BlockID][]nodeid.BlockID),
	}
	idx.index(doc.Root, nil)
	return idx
}

func (idx *Index) index(n *BlockNode, path []nodeid.BlockID) {
	p := append(append([]nodeid.BlockID{}, path...), n.ID)
	idx.ByID[n.ID] = n
	idx.Path[n.ID] = p
	if n.IsLeaf() {
		idx.Order = append(idx.Order, n.ID)
		return
	}
	for i, child := range n.Blocks {
		idx.ParentID[child.ID] = n.ID
		idx.ChildPos[child.ID] = i
		idx.index(child, p)
	}
}

// Block looks up a block by id.
func (idx *Index) Block(id nodeid.BlockID) (*BlockNode, bool) {
	b, ok := idx.ByID[id]
	return b, ok
}

// Parent returns the parent block of id, if any (false for the document
// root).
func (idx *Index) Parent(id nodeid.BlockID) (*BlockNode, bool) {
	pid, ok := idx.ParentID[id]
	if !ok {
		return nil, false
	}
	return idx.Block(pid)
}

// IsDescendantOf reports whether id names a block equal to or nested under
// ancestor.
func (idx *Index) IsDescendantOf(id, ancestor nodeid.BlockID) bool {
	for cur := id; ; {
		if cur == ancestor {
			return true
		}
		parent, ok := idx.ParentID[cur]
		if !ok {
			return false
		}
		cur = parent
	}
}

// OrderRank returns the position of id's leaf block in document order, or
// -1 if id is not a leaf block in this index.
func (idx *Index) OrderRank(id nodeid.BlockID) int {
	for i, leafID := range idx.Order {
		if leafID == id {
			return i
		}
	}
	return -1
}

// BlockLength returns the UTF-16 code-unit length of a leaf block's
// content, the unit block-local offsets are measured in (spec invariant 6).
func BlockLength(b *BlockNode) int {
	n := 0
	for _, c := range b.Inline {
		n += c.Width()
	}
	return n
}

// OffsetOfChild returns the block-local offset at which child index i
// starts.
func OffsetOfChild(b *BlockNode, i int) int {
	n := 0
	for j := 0; j < i && j < len(b.Inline); j++ {
		n += b.Inline[j].Width()
	}
	return n
}

// ChildAtOffset locates the inline child containing offset off and the
// offset within that child. If off lands exactly at a child boundary,
// childOffset is 0 and childIdx names the child starting there, unless off
// equals the block length, in which case childIdx is len(b.Inline) and
// childOffset is 0.
func ChildAtOffset(b *BlockNode, off int) (childIdx, childOffset int) {
	pos := 0
	for i, c := range b.Inline {
		w := c.Width()
		if off < pos+w {
			return i, off - pos
		}
		pos += w
	}
	return len(b.Inline), 0
}
