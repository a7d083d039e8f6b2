package decoration_test

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/nodeid"
)

const paragraphType nodeid.NodeType = "paragraph"

func leaf(text string) *doctree.BlockNode {
	return doctree.NewLeafBlock(paragraphType, nil, []doctree.InlineChild{doctree.NewTextChild(text, nil)})
}

func docOf(blocks ...*doctree.BlockNode) *doctree.Document {
	return &doctree.Document{Root: doctree.NewContainerBlock(nodeid.DocumentNodeType, nil, blocks)}
}
