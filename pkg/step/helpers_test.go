package step_test

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/schema"
)

const paragraphType nodeid.NodeType = "paragraph"
const boldMark nodeid.MarkType = "bold"

func leaf(text string) *doctree.BlockNode {
	return doctree.NewLeafBlock(paragraphType, nil, []doctree.InlineChild{doctree.NewTextChild(text, nil)})
}

func docOf(blocks ...*doctree.BlockNode) *doctree.Document {
	return &doctree.Document{Root: doctree.NewContainerBlock(nodeid.DocumentNodeType, nil, blocks)}
}

func newTestRegistry() *schema.Registry {
	reg := schema.NewRegistry()
	reg.RegisterMark(schema.MarkSpec{Name: boldMark})
	reg.RegisterNode(schema.NodeSpec{Name: paragraphType})
	_ = reg.Build()
	return reg
}

func headingRegistry() *schema.Registry {
	reg := schema.NewRegistry()
	reg.RegisterNode(schema.NodeSpec{
		Name:  paragraphType,
		Attrs: map[string]schema.AttrSpec{"align": {Default: "left"}},
	})
	reg.RegisterNode(schema.NodeSpec{
		Name: "heading",
		Attrs: map[string]schema.AttrSpec{
			"level": {Default: 1},
			"align": {Default: "left"},
		},
	})
	_ = reg.Build()
	return reg
}
