// Package schema implements the read-only-after-init registry of node,
// mark and inline-node specs plugins contribute at init time (spec.md §4.1).
package schema

import (
	"fmt"

	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/notecore"
	multierror "github.com/hashicorp/go-multierror"
)

// Attrs is the block attribute map type MergeAttrsOnTypeChange computes
// over; it is the same shape doctree.BlockNode.Attrs carries.
type Attrs = doctree.Attrs

// AttrValidator checks a single attribute value, returning a non-nil error
// if it is invalid and nil if it is valid.
type AttrValidator func(v any) error

// AttrSpec describes one attribute a node/mark/inline type accepts.
type AttrSpec struct {
	Default   any
	Validator AttrValidator
}

// WrapperSpec groups consecutive same-key blocks under a shared rendering
// wrapper; the core treats it as opaque data handed to the renderer.
type WrapperSpec struct {
	Tag       string
	Key       func(n any) string
	Attrs     map[string]any
	ClassName string
}

// NodeSpec describes a registered block type.
type NodeSpec struct {
	Name         nodeid.NodeType
	Attrs        map[string]AttrSpec
	Group        string
	IsVoid       bool
	Selectable   bool
	Isolating    bool
	ExcludeMarks []nodeid.MarkType
	Wrapper      func(attrs map[string]any) *WrapperSpec
}

// MarkSpec describes a registered mark type.
type MarkSpec struct {
	Name     nodeid.MarkType
	Rank     int
	Excludes []nodeid.MarkType
	Attrs    map[string]AttrSpec
}

// InlineNodeSpec describes a registered inline-node type.
type InlineNodeSpec struct {
	Name  nodeid.InlineType
	Attrs map[string]AttrSpec
}

// KeymapEntry, ToolbarItem, PickerEntry and FileHandler are pass-through
// registries: the core aggregates and retrieves them but never interprets
// their contents (spec.md §4.1).
type KeymapEntry struct {
	Chord   string
	Command string
}

// ToolbarItem is an opaque descriptor for an external toolbar renderer.
type ToolbarItem struct {
	Name  string
	Attrs map[string]any
}

// PickerEntry is an opaque descriptor for a block-type picker UI.
type PickerEntry struct {
	Name      string
	BlockType nodeid.NodeType
}

// FileHandler parses a raw payload of a given mime type into an untyped
// value that the caller interprets; the registry never inspects it.
type FileHandler struct {
	Mime  string
	Parse func([]byte) (any, error)
}

// Registry is the aggregate, read-only-after-build set of everything
// plugins have registered. Grounded on registry.Interface's
// aggregate-over-registered-implementations shape.
type Registry struct {
	nodes       map[nodeid.NodeType]*NodeSpec
	marks       map[nodeid.MarkType]*MarkSpec
	inlineNodes map[nodeid.InlineType]*InlineNodeSpec
	keymaps     []KeymapEntry
	toolbar     []ToolbarItem
	pickers     []PickerEntry
	fileHandler map[string]FileHandler
	built       bool
}

// NewRegistry returns an empty, still-mutable Registry.
func NewRegistry() *Registry {
	return &Registry{
		nodes:       make(map[nodeid.NodeType]*NodeSpec),
		marks:       make(map[nodeid.MarkType]*MarkSpec),
		inlineNodes: make(map[nodeid.InlineType]*InlineNodeSpec),
		fileHandler: make(map[string]FileHandler),
	}
}

func (r *Registry) checkMutable() {
	if r.built {
		panic("schema: registry is read-only after Build")
	}
}

// RegisterNode adds or replaces a NodeSpec.
func (r *Registry) RegisterNode(spec NodeSpec) {
	r.checkMutable()
	cp := spec
	r.nodes[spec.Name] = &cp
}

// RegisterMark adds or replaces a MarkSpec.
func (r *Registry) RegisterMark(spec MarkSpec) {
	r.checkMutable()
	cp := spec
	r.marks[spec.Name] = &cp
}

// RegisterInlineNode adds or replaces an InlineNodeSpec.
func (r *Registry) RegisterInlineNode(spec InlineNodeSpec) {
	r.checkMutable()
	cp := spec
	r.inlineNodes[spec.Name] = &cp
}

// RegisterKeymap appends a keymap entry.
func (r *Registry) RegisterKeymap(e KeymapEntry) {
	r.checkMutable()
	r.keymaps = append(r.keymaps, e)
}

// RegisterToolbarItem appends a toolbar item.
func (r *Registry) RegisterToolbarItem(i ToolbarItem) {
	r.checkMutable()
	r.toolbar = append(r.toolbar, i)
}

// RegisterPickerEntry appends a block-type picker entry.
func (r *Registry) RegisterPickerEntry(e PickerEntry) {
	r.checkMutable()
	r.pickers = append(r.pickers, e)
}

// RegisterFileHandler registers the parser for a mime type. A later call
// for the same mime replaces the earlier one. No handler is registered by
// default: pkg/markdownimport and pkg/htmlimport do not register themselves.
func (r *Registry) RegisterFileHandler(h FileHandler) {
	r.checkMutable()
	r.fileHandler[h.Mime] = h
}

// Build freezes the registry: after Build, lookups are guaranteed O(1) and
// further Register* calls panic (spec.md §4.1: "built at plugin-init time
// and then treated as read-only for the session").
func (r *Registry) Build() error {
	var errs *multierror.Error
	for _, n := range r.nodes {
		for _, excl := range n.ExcludeMarks {
			if _, ok := r.marks[excl]; !ok {
				errs = multierror.Append(errs, fmt.Errorf("node %q excludes unknown mark type %q", n.Name, excl))
			}
		}
	}
	for _, m := range r.marks {
		for _, excl := range m.Excludes {
			if _, ok := r.marks[excl]; !ok {
				errs = multierror.Append(errs, fmt.Errorf("mark %q excludes unknown mark type %q", m.Name, excl))
			}
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return notecore.NewError(notecore.SchemaViolation, "schema registry failed validation", err)
	}
	r.built = true
	return nil
}

// Node looks up a registered NodeSpec.
func (r *Registry) Node(t nodeid.NodeType) (*NodeSpec, bool) {
	s, ok := r.nodes[t]
	return s, ok
}

// Mark looks up a registered MarkSpec.
func (r *Registry) Mark(t nodeid.MarkType) (*MarkSpec, bool) {
	s, ok := r.marks[t]
	return s, ok
}

// InlineNode looks up a registered InlineNodeSpec.
func (r *Registry) InlineNode(t nodeid.InlineType) (*InlineNodeSpec, bool) {
	s, ok := r.inlineNodes[t]
	return s, ok
}

// Keymaps returns every registered keymap entry.
func (r *Registry) Keymaps() []KeymapEntry { return append([]KeymapEntry{}, r.keymaps...) }

// ToolbarItems returns every registered toolbar item.
func (r *Registry) ToolbarItems() []ToolbarItem { return append([]ToolbarItem{}, r.toolbar...) }

// PickerEntries returns every registered picker entry.
func (r *Registry) PickerEntries() []PickerEntry { return append([]PickerEntry{}, r.pickers...) }

// FileHandlerFor returns the registered handler for mime, if any.
func (r *Registry) FileHandlerFor(mime string) (FileHandler, bool) {
	h, ok := r.fileHandler[mime]
	return h, ok
}

// ExcludesMark reports whether nodeType's schema excludes markType.
func (r *Registry) ExcludesMark(nodeType nodeid.NodeType, markType nodeid.MarkType) bool {
	spec, ok := r.Node(nodeType)
	if !ok {
		return false
	}
	for _, t := range spec.ExcludeMarks {
		if t == markType {
			return true
		}
	}
	return false
}

// EffectiveAttrs overlays the schema default for nodeType with explicit,
// mirroring spec invariant 7: "effective attribute set is the schema
// default overlaid with explicit values."
func (r *Registry) EffectiveAttrs(nodeType nodeid.NodeType, explicit map[string]any) map[string]any {
	out := map[string]any{}
	if spec, ok := r.Node(nodeType); ok {
		for k, a := range spec.Attrs {
			out[k] = a.Default
		}
	}
	for k, v := range explicit {
		out[k] = v
	}
	return out
}

// MergeAttrsOnTypeChange computes the attribute set a block keeps when its
// type changes from prevType to newType, per spec.md §4.2's SetBlockType
// mergeAttrs policy: a key survives with its current value only if it is
// declared by both specs; every other key in newType's schema falls back to
// that schema's default.
func (r *Registry) MergeAttrsOnTypeChange(prevType, newType nodeid.NodeType, prevAttrs Attrs) Attrs {
	newSpec, ok := r.Node(newType)
	if !ok {
		return Attrs{}
	}
	prevSpec, havePrev := r.Node(prevType)
	out := make(Attrs, len(newSpec.Attrs))
	for k, a := range newSpec.Attrs {
		if havePrev {
			if _, shared := prevSpec.Attrs[k]; shared {
				if v, has := prevAttrs[k]; has {
					out[k] = v
					continue
				}
			}
		}
		out[k] = a.Default
	}
	return out
}

// ValidateNodeAttrs validates explicit against nodeType's attr specs,
// accumulating every violation via multierror (grounded on
// reactor.Build's accumulation pattern) rather than failing on the first.
func (r *Registry) ValidateNodeAttrs(nodeType nodeid.NodeType, explicit map[string]any) error {
	spec, ok := r.Node(nodeType)
	if !ok {
		return notecore.NewError(notecore.UnknownType, fmt.Sprintf("unknown node type %q", nodeType), nil)
	}
	var errs *multierror.Error
	for k, v := range explicit {
		a, declared := spec.Attrs[k]
		if !declared {
			continue // schema allows free-form extra attrs, per spec §3.2 invariant 7's closed value-type rule only
		}
		switch v.(type) {
		case string, float64, float32, int, int32, int64, bool:
		default:
			errs = multierror.Append(errs, fmt.Errorf("attribute %q has unsupported value type %T", k, v))
			continue
		}
		if a.Validator != nil {
			if err := a.Validator(v); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("attribute %q: %w", k, err))
			}
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return notecore.NewError(notecore.SchemaViolation, fmt.Sprintf("invalid attrs for %q", nodeType), err)
	}
	return nil
}
