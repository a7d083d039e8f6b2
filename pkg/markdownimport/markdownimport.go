// Package markdownimport turns a markdown string into a slice.ContentSlice
// (SPEC_FULL.md §4.12), walking a goldmark AST the way the teacher's
// pkg/workers/document/markdown parser does, but emitting notectl's own
// block/mark vocabulary instead of rendered HTML.
package markdownimport

import (
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	gmtext "github.com/yuin/goldmark/text"
	"k8s.io/klog/v2"

	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/slice"
)

// HeadingType is the block type produced for ATX/Setext headings, with
// attrs.level carrying the heading's depth (1-6).
const HeadingType nodeid.NodeType = "heading"

// ListItemType is the block type produced for every list item, flattening
// nested lists into sibling list_item blocks: the document model has no
// container block type for lists (spec.md §3 only defines leaf text
// blocks and containers for structural grouping), so indentation is not
// preserved as nesting.
const ListItemType nodeid.NodeType = "list_item"

// ImageInlineType is the InlineType used for an image reference.
const ImageInlineType nodeid.InlineType = "image"

const (
	boldMark   nodeid.MarkType = "bold"
	italicMark nodeid.MarkType = "italic"
	codeMark   nodeid.MarkType = "code"
)

var extensions = []goldmark.Extender{extension.GFM, meta.Meta}
var gm = goldmark.New(goldmark.WithExtensions(extensions...))

// Parse walks source's markdown AST into a ContentSlice. A front-matter
// block, if present, is merged (scalar values only) onto the first
// resulting block's attrs, mirroring frontmatter.go's
// MergeDocumentAndNodeFrontmatter landing front matter on the lead block.
func Parse(source []byte) (slice.ContentSlice, error) {
	reader := gmtext.NewReader(source)
	pc := parser.NewContext()
	root := gm.Parser().Parse(reader, parser.WithContext(pc))
	fm, err := meta.TryGet(pc)
	if err != nil {
		return slice.ContentSlice{}, fmt.Errorf("markdownimport: front matter: %w", err)
	}

	w := &walker{source: source}
	var blocks []slice.SliceBlock
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		blocks = append(blocks, w.block(n)...)
	}

	if len(fm) > 0 && len(blocks) > 0 {
		attrs := filterScalarAttrs(fm)
		if len(attrs) > 0 {
			if blocks[0].Attrs == nil {
				blocks[0].Attrs = doctree.Attrs{}
			}
			for k, v := range attrs {
				blocks[0].Attrs[k] = v
			}
		}
	}
	return slice.ContentSlice{Blocks: blocks}, nil
}

func filterScalarAttrs(in map[string]interface{}) doctree.Attrs {
	out := doctree.Attrs{}
	for k, v := range in {
		switch v.(type) {
		case string, bool, int, int64, float32, float64:
			out[k] = v
		default:
			klog.V(6).Infof("markdownimport: dropping non-scalar front matter key %q", k)
		}
	}
	return out
}

type walker struct {
	source []byte
}

// block converts one top-level AST block node into one or more SliceBlocks.
func (w *walker) block(n ast.Node) []slice.SliceBlock {
	switch v := n.(type) {
	case *ast.Heading:
		return []slice.SliceBlock{{
			Type:     HeadingType,
			Attrs:    doctree.Attrs{"level": v.Level},
			Segments: w.inlines(n, nil),
		}}
	case *ast.Paragraph, *ast.TextBlock:
		return []slice.SliceBlock{{
			Type:     slice.ParagraphType,
			Segments: w.inlines(n, nil),
		}}
	case *ast.List:
		var out []slice.SliceBlock
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			out = append(out, w.listItem(item, v.IsOrdered())...)
		}
		return out
	default:
		klog.V(6).Infof("markdownimport: treating unrecognized block kind %s as a paragraph", n.Kind())
		return []slice.SliceBlock{{
			Type:     slice.ParagraphType,
			Segments: w.inlines(n, nil),
		}}
	}
}

// listItem converts one *ast.ListItem into its own list_item block plus any
// further list_item blocks produced by a nested list among its children.
func (w *walker) listItem(item ast.Node, ordered bool) []slice.SliceBlock {
	self := slice.SliceBlock{Type: ListItemType, Attrs: doctree.Attrs{"ordered": ordered}}
	var nested []slice.SliceBlock
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() == ast.KindList {
			nested = append(nested, w.block(c)...)
			continue
		}
		self.Segments = append(self.Segments, w.inlines(c, nil)...)
	}
	return append([]slice.SliceBlock{self}, nested...)
}

// inlines walks n's children, which are expected to be inline-level AST
// nodes, accumulating Segments under the given active mark set.
func (w *walker) inlines(n ast.Node, marks doctree.MarkSet) []doctree.Segment {
	var segs []doctree.Segment
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		segs = append(segs, w.inline(c, marks)...)
	}
	return segs
}

func (w *walker) inline(n ast.Node, marks doctree.MarkSet) []doctree.Segment {
	switch v := n.(type) {
	case *ast.Text:
		var segs []doctree.Segment
		text := string(v.Segment.Value(w.source))
		if v.SoftLineBreak() {
			text += " "
		}
		if text != "" {
			segs = append(segs, doctree.NewTextChild(text, marks))
		}
		if v.HardLineBreak() {
			segs = append(segs, doctree.NewInlineNodeChild(nodeid.HardBreakInlineType, nil))
		}
		return segs
	case *ast.String:
		return []doctree.Segment{doctree.NewTextChild(string(v.Value), marks)}
	case *ast.Emphasis:
		markType := italicMark
		if v.Level >= 2 {
			markType = boldMark
		}
		return w.inlines(n, marks.With(doctree.Mark{Type: markType}))
	case *ast.CodeSpan:
		return []doctree.Segment{doctree.NewTextChild(w.textOf(n), marks.With(doctree.Mark{Type: codeMark}))}
	case *ast.AutoLink:
		return []doctree.Segment{doctree.NewTextChild(string(v.Label(w.source)), marks)}
	case *ast.Image:
		return []doctree.Segment{doctree.NewInlineNodeChild(ImageInlineType, doctree.Attrs{
			"src": string(v.Destination),
			"alt": w.textOf(n),
		})}
	default:
		// Links and any other wrapping inline nodes contribute their own
		// text content under the same marks, dropping the wrapper itself
		// (href targets are an external-collaborator concern, spec.md §1).
		return w.inlines(n, marks)
	}
}

// textOf flattens n's *ast.Text descendants into a single string, used for
// nodes whose own text (code span contents, image alt text) we want as a
// plain string rather than as marked-up segments.
func (w *walker) textOf(n ast.Node) string {
	var b []byte
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b = append(b, t.Segment.Value(w.source)...)
		}
	}
	return string(b)
}
