package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/nodeid"
)

// scriptFile is the YAML shape of the --script file: a starting document
// plus the ordered steps to dispatch against it.
type scriptFile struct {
	Origin   string          `yaml:"origin"`
	Document []blockSpecYAML `yaml:"document"`
	Steps    []stepSpecYAML  `yaml:"steps"`
}

type blockSpecYAML struct {
	Type  string                 `yaml:"type"`
	Text  string                 `yaml:"text"`
	Attrs map[string]interface{} `yaml:"attrs"`
}

// stepSpecYAML is a tagged union over every op the harness knows, keyed by
// Op; fields irrelevant to a given op are simply left zero.
type stepSpecYAML struct {
	Op string `yaml:"op"`

	// select
	Block        int  `yaml:"block"`
	Offset       int  `yaml:"offset"`
	AnchorOffset *int `yaml:"anchorOffset"`

	// insertText
	Text string `yaml:"text"`

	// toggleMark
	Mark      string                 `yaml:"mark"`
	MarkAttrs map[string]interface{} `yaml:"markAttrs"`

	// setBlockType
	Type  string                 `yaml:"type"`
	Attrs map[string]interface{} `yaml:"attrs"`

	// moveChar, extendChar, moveBlockEdge, extendBlockEdge,
	// moveDocumentEdge, extendDocumentEdge
	Dir string `yaml:"dir"`
}

func loadScript(path string) (*scriptFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script file: %w", err)
	}
	var sf scriptFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return nil, fmt.Errorf("parsing script file: %w", err)
	}
	if sf.Origin == "" {
		sf.Origin = "cli"
	}
	return &sf, nil
}

// buildDocument turns a script's document list into a doctree.Document,
// returning the top-level blocks' ids in document order so later "select"
// steps can address them by position. Those ids only ever name the
// original blocks: a step that merges or removes one leaves later
// references to it failing the same way an editor UI would reject a
// selection onto a block that no longer exists.
func buildDocument(blocks []blockSpecYAML) (*doctree.Document, []nodeid.BlockID) {
	top := make([]*doctree.BlockNode, 0, len(blocks))
	ids := make([]nodeid.BlockID, 0, len(blocks))
	for _, b := range blocks {
		var inline []doctree.InlineChild
		if b.Text != "" {
			inline = []doctree.InlineChild{doctree.NewTextChild(b.Text, nil)}
		}
		blk := doctree.NewLeafBlock(nodeid.NodeType(b.Type), doctree.Attrs(b.Attrs), inline)
		top = append(top, blk)
		ids = append(ids, blk.ID)
	}
	root := doctree.NewContainerBlock(nodeid.DocumentNodeType, nil, top)
	return &doctree.Document{Root: root}, ids
}
