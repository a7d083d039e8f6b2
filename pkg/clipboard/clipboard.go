// Package clipboard implements the MIME-priority payload dispatch and
// in-memory fingerprint side channel of spec.md §6.1-6.2
// (SPEC_FULL.md §4.14). Actual OS clipboard access is an external
// collaborator's job (spec.md §1); this package only turns a set of
// payloads the host already read off the clipboard into a
// slice.ContentSlice, and the reverse: building the payloads a host should
// write when the user copies.
package clipboard

import (
	"encoding/json"
	"hash/fnv"
	"sync"

	"k8s.io/klog/v2"

	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/htmlimport"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/slice"
)

// BlockMIME is the private MIME type carrying the canonical
// {"type", "attrs"?} JSON for a single-block NodeSelection copy.
const BlockMIME = "application/x-notectl-block"

const htmlMIME = "text/html"
const plainMIME = "text/plain"

// Payload is one clipboard entry: a MIME type and its string content.
type Payload struct {
	MIME string
	Data string
}

// nodePayload is BlockMIME's wire shape, matching spec.md §6.2's
// `{ "type": "<block type>", "attrs"?: { ... } }`.
type nodePayload struct {
	Type  nodeid.NodeType `json:"type"`
	Attrs doctree.Attrs   `json:"attrs,omitempty"`
}

// SerializeNode builds the BlockMIME payload string for copying a single
// NodeSelection's block.
func SerializeNode(block *doctree.BlockNode) (string, error) {
	b, err := json.Marshal(nodePayload{Type: block.Type, Attrs: block.Attrs})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Dispatch selects exactly one payload-producing strategy per spec.md
// §6.1's priority order and converts it into a ContentSlice: BlockMIME's
// canonical JSON, then text/html via pkg/htmlimport, then text/plain
// falling back through the in-memory fingerprint side channel before a
// bare single-paragraph slice. Returns ok=false if payloads is empty or
// every present payload fails to parse.
func Dispatch(payloads []Payload) (slice.ContentSlice, bool) {
	if data, ok := find(payloads, BlockMIME); ok {
		var np nodePayload
		if err := json.Unmarshal([]byte(data), &np); err != nil {
			klog.V(4).Infof("clipboard: malformed %s payload: %v", BlockMIME, err)
		} else {
			return slice.ContentSlice{Blocks: []slice.SliceBlock{{Type: np.Type, Attrs: np.Attrs}}}, true
		}
	}

	if data, ok := find(payloads, htmlMIME); ok {
		cs, err := htmlimport.Parse([]byte(data))
		if err != nil {
			klog.V(4).Infof("clipboard: %s parse failed: %v", htmlMIME, err)
		} else {
			return cs, true
		}
	}

	if data, ok := find(payloads, plainMIME); ok {
		if cs, ok := Lookup(data); ok {
			return cs, true
		}
		return plainTextSlice(data), true
	}

	return slice.ContentSlice{}, false
}

func find(payloads []Payload, mime string) (string, bool) {
	for _, p := range payloads {
		if p.MIME == mime {
			return p.Data, true
		}
	}
	return "", false
}

func plainTextSlice(text string) slice.ContentSlice {
	return slice.ContentSlice{Blocks: []slice.SliceBlock{{
		Type:     slice.ParagraphType,
		Segments: []doctree.Segment{doctree.NewTextChild(text, nil)},
	}}}
}

// Fingerprint returns the FNV-1a hash of text, the side-channel key of
// spec.md §6.2's in-memory clipboard record.
func Fingerprint(text string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return h.Sum64()
}

var (
	sideChannelMu sync.Mutex
	sideChannel   = map[uint64]slice.ContentSlice{}
)

// Store records cs under plainText's fingerprint for a same-process
// round trip, since the system clipboard strips custom MIME types when
// pasting across origins. Concurrent writers racing the same fingerprint
// is last-write-wins and deliberately left undefined beyond that (no
// ordering guarantee is specified).
func Store(plainText string, cs slice.ContentSlice) {
	key := Fingerprint(plainText)
	sideChannelMu.Lock()
	sideChannel[key] = cs
	sideChannelMu.Unlock()
}

// Lookup returns the slice previously Store'd under plainText's
// fingerprint, if any.
func Lookup(plainText string) (slice.ContentSlice, bool) {
	key := Fingerprint(plainText)
	sideChannelMu.Lock()
	cs, ok := sideChannel[key]
	sideChannelMu.Unlock()
	return cs, ok
}
