// Package doctree implements the immutable block/inline/text node tree that
// makes up a notectl document (spec.md §3).
package doctree

import "github.com/Samyssmile/notectl/pkg/nodeid"

// AttrValue is the closed set of attribute value kinds a node or mark may
// carry (spec invariant 7: string, number, boolean — unknown types are
// forbidden at the schema layer, not represented here).
type AttrValue = any

// Attrs is a node or mark's attribute map.
type Attrs map[string]AttrValue

// Clone returns a shallow copy of a, safe to mutate independently of a.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Equal reports whether a and b have the same keys and values.
func (a Attrs) Equal(b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok || bv != v {
			return false
		}
	}
	return true
}

// Mark is an inline annotation with a type and optional attributes. Two
// marks on the same text run must have distinct type tags (spec §3.1).
type Mark struct {
	Type  nodeid.MarkType
	Attrs Attrs
}

// SameAs reports whether m and other have the same type and attributes.
func (m Mark) SameAs(other Mark) bool {
	return m.Type == other.Type && m.Attrs.Equal(other.Attrs)
}

// MarkSet is an ordered, de-duplicated-by-type collection of marks.
type MarkSet []Mark

// IndexOf returns the index of the mark with the given type, or -1.
func (ms MarkSet) IndexOf(t nodeid.MarkType) int {
	for i, m := range ms {
		if m.Type == t {
			return i
		}
	}
	return -1
}

// Has reports whether ms contains a mark of type t.
func (ms MarkSet) Has(t nodeid.MarkType) bool {
	return ms.IndexOf(t) >= 0
}

// SameMembership reports whether ms and other contain exactly the same mark
// values (order-independent), used to decide whether adjacent TextNodes
// must be merged (spec invariant 4).
func (ms MarkSet) SameMembership(other MarkSet) bool {
	if len(ms) != len(other) {
		return false
	}
	for _, m := range ms {
		j := other.IndexOf(m.Type)
		if j < 0 || !other[j].Attrs.Equal(m.Attrs) {
			return false
		}
	}
	return true
}

// Without returns a copy of ms with any mark of type t removed.
func (ms MarkSet) Without(t nodeid.MarkType) MarkSet {
	out := make(MarkSet, 0, len(ms))
	for _, m := range ms {
		if m.Type != t {
			out = append(out, m)
		}
	}
	return out
}

// With returns a copy of ms with m applied, replacing any existing mark of
// the same type.
func (ms MarkSet) With(m Mark) MarkSet {
	out := ms.Without(m.Type)
	out = append(out, m)
	return out
}

// TextNode holds a run of text sharing one mark set. Text may be empty only
// when it is the sole inline child of its block (spec invariant 4).
type TextNode struct {
	Text  string
	Marks MarkSet
}

// InlineNode is an atomic, width-1 inline object such as a hard line break
// or a mention. It is not editable as text.
type InlineNode struct {
	Type  nodeid.InlineType
	Attrs Attrs
}

// InlineChildKind discriminates the two kinds of inline content a leaf
// block may hold.
type InlineChildKind int

const (
	// InlineChildText marks an InlineChild as wrapping a TextNode.
	InlineChildText InlineChildKind = iota
	// InlineChildNode marks an InlineChild as wrapping an InlineNode.
	InlineChildNode
)

// InlineChild is one element of a leaf block's content: either a TextNode
// or an InlineNode, tagged by Kind (spec.md §9: tagged variants instead of
// a class hierarchy).
type InlineChild struct {
	Kind InlineChildKind
	Text TextNode
	Node InlineNode
}

// NewTextChild builds an InlineChild wrapping a TextNode.
func NewTextChild(text string, marks MarkSet) InlineChild {
	return InlineChild{Kind: InlineChildText, Text: TextNode{Text: text, Marks: marks}}
}

// NewInlineNodeChild builds an InlineChild wrapping an InlineNode.
func NewInlineNodeChild(typ nodeid.InlineType, attrs Attrs) InlineChild {
	return InlineChild{Kind: InlineChildNode, Node: InlineNode{Type: typ, Attrs: attrs}}
}

// Width returns the child's contribution to its block's UTF-16 offset
// space: the TextNode's UTF-16 length, or 1 for an InlineNode.
func (c InlineChild) Width() int {
	if c.Kind == InlineChildNode {
		return 1
	}
	return UTF16Len(c.Text.Text)
}

// ChildKind discriminates whether a BlockNode's children are other blocks
// or inline content (spec invariant 2: a block's children are homogeneous).
type ChildKind int

const (
	// BlockChildren marks a container block.
	BlockChildren ChildKind = iota
	// InlineChildren marks a leaf block.
	InlineChildren
)

// BlockNode is a document node carrying either block children (a
// container) or inline children (a leaf), never both.
type BlockNode struct {
	ID        nodeid.BlockID
	Type      nodeid.NodeType
	Attrs     Attrs
	ChildKind ChildKind
	Blocks    []*BlockNode
	Inline    []InlineChild
}

// IsLeaf reports whether n is a leaf block (inline children).
func (n *BlockNode) IsLeaf() bool {
	return n.ChildKind == InlineChildren
}

// NewLeafBlock builds a leaf BlockNode with a freshly minted id.
func NewLeafBlock(typ nodeid.NodeType, attrs Attrs, inline []InlineChild) *BlockNode {
	if len(inline) == 0 {
		inline = []InlineChild{NewTextChild("", nil)}
	}
	return &BlockNode{
		ID:        nodeid.NewBlockID(),
		Type:      typ,
		Attrs:     attrs,
		ChildKind: InlineChildren,
		Inline:    inline,
	}
}

// NewLeafBlockWithID builds a leaf BlockNode reusing an existing id, used
// when a step produces a new node value for a block whose identity must be
// preserved (e.g. SetNodeAttr, ReplaceNode).
func NewLeafBlockWithID(id nodeid.BlockID, typ nodeid.NodeType, attrs Attrs, inline []InlineChild) *BlockNode {
	b := NewLeafBlock(typ, attrs, inline)
	b.ID = id
	return b
}

// NewContainerBlock builds a container BlockNode with a freshly minted id.
func NewContainerBlock(typ nodeid.NodeType, attrs Attrs, children []*BlockNode) *BlockNode {
	return &BlockNode{
		ID:        nodeid.NewBlockID(),
		Type:      typ,
		Attrs:     attrs,
		ChildKind: BlockChildren,
		Blocks:    children,
	}
}

// Document is the virtual root block of fixed type "document" whose
// children are the top-level blocks.
type Document struct {
	Root *BlockNode
}

// NewEmptyDocument builds a document containing a single empty paragraph,
// satisfying invariant 3 (an empty leaf block has exactly one empty
// TextNode).
func NewEmptyDocument(paragraphType nodeid.NodeType) *Document {
	p := NewLeafBlock(paragraphType, nil, nil)
	root := NewContainerBlock(nodeid.DocumentNodeType, nil, []*BlockNode{p})
	return &Document{Root: root}
}
