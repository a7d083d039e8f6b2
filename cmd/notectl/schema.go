package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/schema"
)

// schemaFile is the YAML shape of the --schema file: a flat registration
// list for each of the three spec kinds the core's schema.Registry holds.
type schemaFile struct {
	Nodes  []nodeSpecYAML   `yaml:"nodes"`
	Marks  []markSpecYAML   `yaml:"marks"`
	Inline []inlineSpecYAML `yaml:"inline"`
}

type nodeSpecYAML struct {
	Name       string `yaml:"name"`
	Group      string `yaml:"group"`
	IsVoid     bool   `yaml:"isVoid"`
	Selectable bool   `yaml:"selectable"`
	Isolating  bool   `yaml:"isolating"`
}

type markSpecYAML struct {
	Name     string   `yaml:"name"`
	Rank     int      `yaml:"rank"`
	Excludes []string `yaml:"excludes"`
}

type inlineSpecYAML struct {
	Name string `yaml:"name"`
}

func loadSchema(path string) (*schema.Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	var sf schemaFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return nil, fmt.Errorf("parsing schema file: %w", err)
	}

	reg := schema.NewRegistry()
	for _, n := range sf.Nodes {
		reg.RegisterNode(schema.NodeSpec{
			Name:       nodeid.NodeType(n.Name),
			Group:      n.Group,
			IsVoid:     n.IsVoid,
			Selectable: n.Selectable,
			Isolating:  n.Isolating,
		})
	}
	for _, m := range sf.Marks {
		excludes := make([]nodeid.MarkType, len(m.Excludes))
		for i, e := range m.Excludes {
			excludes[i] = nodeid.MarkType(e)
		}
		reg.RegisterMark(schema.MarkSpec{
			Name:     nodeid.MarkType(m.Name),
			Rank:     m.Rank,
			Excludes: excludes,
		})
	}
	for _, in := range sf.Inline {
		reg.RegisterInlineNode(schema.InlineNodeSpec{Name: nodeid.InlineType(in.Name)})
	}
	if err := reg.Build(); err != nil {
		return nil, fmt.Errorf("schema registry validation: %w", err)
	}
	return reg, nil
}
