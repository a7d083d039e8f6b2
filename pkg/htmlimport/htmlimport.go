// Package htmlimport performs a default, non-sanitizing HTML fragment
// import into a slice.ContentSlice (SPEC_FULL.md §4.13), streaming the
// fragment through golang.org/x/net/html.Tokenizer the way the teacher's
// link_modifier.go walks embedded HTML spans token by token.
package htmlimport

import (
	"bytes"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"k8s.io/klog/v2"

	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/markdownimport"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/slice"
)

const (
	boldMark   nodeid.MarkType = "bold"
	italicMark nodeid.MarkType = "italic"
	codeMark   nodeid.MarkType = "code"
)

var headingLevel = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// Parse walks fragment as a best-effort, non-sanitizing HTML → ContentSlice
// conversion. Unrecognized tags are transparent: their own markup is
// dropped but their text content survives into whatever block context is
// open (or an implicit paragraph, if none is).
func Parse(fragment []byte) (slice.ContentSlice, error) {
	w := &walker{z: html.NewTokenizer(bytes.NewReader(fragment))}
	w.run()
	return slice.ContentSlice{Blocks: w.blocks}, nil
}

type openBlock struct {
	typ   nodeid.NodeType
	attrs doctree.Attrs
	segs  []doctree.Segment
}

type walker struct {
	z      *html.Tokenizer
	blocks []slice.SliceBlock

	cur *openBlock

	boldDepth, italicDepth, codeDepth int
	listStack                        []bool // true = ordered (ol)
}

func (w *walker) activeMarks() doctree.MarkSet {
	var ms doctree.MarkSet
	if w.boldDepth > 0 {
		ms = ms.With(doctree.Mark{Type: boldMark})
	}
	if w.italicDepth > 0 {
		ms = ms.With(doctree.Mark{Type: italicMark})
	}
	if w.codeDepth > 0 {
		ms = ms.With(doctree.Mark{Type: codeMark})
	}
	return ms
}

func (w *walker) ensureBlock(typ nodeid.NodeType, attrs doctree.Attrs) {
	if w.cur != nil {
		return
	}
	w.cur = &openBlock{typ: typ, attrs: attrs}
}

func (w *walker) flush() {
	if w.cur == nil {
		return
	}
	w.blocks = append(w.blocks, slice.SliceBlock{
		Type:     w.cur.typ,
		Attrs:    w.cur.attrs,
		Segments: w.cur.segs,
	})
	w.cur = nil
}

func (w *walker) run() {
	for {
		tt := w.z.Next()
		if tt == html.ErrorToken {
			if w.z.Err() != io.EOF {
				klog.V(4).Infof("htmlimport: tokenizer error: %v", w.z.Err())
			}
			w.flush()
			return
		}
		t := w.z.Token()
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			w.startTag(t)
		case html.EndTagToken:
			w.endTag(t)
		case html.TextToken:
			w.text(t.Data)
		}
	}
}

func (w *walker) startTag(t html.Token) {
	switch t.DataAtom {
	case atom.P:
		w.flush()
		w.ensureBlock(slice.ParagraphType, nil)
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		w.flush()
		w.ensureBlock(markdownimport.HeadingType, doctree.Attrs{"level": headingLevel[t.DataAtom]})
	case atom.Li:
		w.flush()
		ordered := len(w.listStack) > 0 && w.listStack[len(w.listStack)-1]
		w.ensureBlock(markdownimport.ListItemType, doctree.Attrs{"ordered": ordered})
	case atom.Ul:
		w.listStack = append(w.listStack, false)
	case atom.Ol:
		w.listStack = append(w.listStack, true)
	case atom.Strong, atom.B:
		w.boldDepth++
	case atom.Em, atom.I:
		w.italicDepth++
	case atom.Code:
		w.codeDepth++
	case atom.Br:
		w.ensureBlock(slice.ParagraphType, nil)
		w.cur.segs = append(w.cur.segs, doctree.NewInlineNodeChild(nodeid.HardBreakInlineType, nil))
	case atom.Img:
		w.ensureBlock(slice.ParagraphType, nil)
		w.cur.segs = append(w.cur.segs, doctree.NewInlineNodeChild(markdownimport.ImageInlineType, doctree.Attrs{
			"src": attrVal(t, "src"),
			"alt": attrVal(t, "alt"),
		}))
	default:
		klog.V(6).Infof("htmlimport: treating unrecognized tag %q as transparent", t.Data)
	}
}

func (w *walker) endTag(t html.Token) {
	switch t.DataAtom {
	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Li:
		w.flush()
	case atom.Ul, atom.Ol:
		if len(w.listStack) > 0 {
			w.listStack = w.listStack[:len(w.listStack)-1]
		}
	case atom.Strong, atom.B:
		if w.boldDepth > 0 {
			w.boldDepth--
		}
	case atom.Em, atom.I:
		if w.italicDepth > 0 {
			w.italicDepth--
		}
	case atom.Code:
		if w.codeDepth > 0 {
			w.codeDepth--
		}
	}
}

func (w *walker) text(data string) {
	if data == "" {
		return
	}
	w.ensureBlock(slice.ParagraphType, nil)
	w.cur.segs = append(w.cur.segs, doctree.NewTextChild(data, w.activeMarks()))
}

func attrVal(t html.Token, key string) string {
	for _, a := range t.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
