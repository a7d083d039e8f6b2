package doctree

import (
	"fmt"

	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/notecore"
)

// Segment is a slice-shaped element mirroring InlineChild, used by
// InsertText's "segments" payload and DeleteText's "deletedSegments"
// payload to preserve mixed-mark runs verbatim (spec.md §4.2).
type Segment = InlineChild

// atom is the smallest unit the text-editing helpers operate on: either one
// rune of text (carrying its mark set) or one whole InlineNode. An astral
// rune is one atom of width 2, so an atom boundary never falls inside a
// UTF-16 surrogate pair and splicing there is always a valid block-local
// offset.
type atom struct {
	isNode bool
	r      rune
	marks  MarkSet
	node   InlineNode
}

func (a atom) width() int {
	if a.isNode {
		return 1
	}
	return utf16Width(a.r)
}

func toAtoms(inline []InlineChild) []atom {
	var atoms []atom
	for _, c := range inline {
		if c.Kind == InlineChildNode {
			atoms = append(atoms, atom{isNode: true, node: c.Node})
			continue
		}
		for _, r := range c.Text.Text {
			atoms = append(atoms, atom{r: r, marks: c.Text.Marks})
		}
	}
	return atoms
}

func fromAtoms(atoms []atom) []InlineChild {
	var out []InlineChild
	var buf []rune
	var bufMarks MarkSet
	flush := func() {
		if buf != nil {
			out = append(out, NewTextChild(string(buf), bufMarks))
			buf = nil
		}
	}
	for _, a := range atoms {
		if a.isNode {
			flush()
			out = append(out, InlineChild{Kind: InlineChildNode, Node: a.node})
			continue
		}
		if buf != nil && !bufMarks.SameMembership(a.marks) {
			flush()
		}
		buf = append(buf, a.r)
		bufMarks = a.marks
	}
	flush()
	return NormalizeInline(out)
}

// NormalizeInline merges adjacent TextNodes with identical mark membership
// and drops zero-length TextNodes unless they are the sole child,
// satisfying spec invariant 4.
func NormalizeInline(inline []InlineChild) []InlineChild {
	merged := make([]InlineChild, 0, len(inline))
	for _, c := range inline {
		if c.Kind == InlineChildText && len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.Kind == InlineChildText && last.Text.Marks.SameMembership(c.Text.Marks) {
				last.Text.Text += c.Text.Text
				continue
			}
		}
		merged = append(merged, c)
	}
	if len(merged) <= 1 {
		if len(merged) == 0 {
			return []InlineChild{NewTextChild("", nil)}
		}
		return merged
	}
	filtered := merged[:0]
	for _, c := range merged {
		if c.Kind == InlineChildText && c.Text.Text == "" {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 {
		return []InlineChild{NewTextChild("", nil)}
	}
	return filtered
}

// atomIndexForOffset returns the atom index whose width-sum up to it equals
// off, or an error if off falls inside an atom (e.g. mid-surrogate-pair).
func atomIndexForOffset(atoms []atom, off int) (int, error) {
	if off == 0 {
		return 0, nil
	}
	pos := 0
	for i, a := range atoms {
		if pos == off {
			return i, nil
		}
		w := a.width()
		if pos < off && off < pos+w {
			return 0, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("offset %d splits a code point", off), nil)
		}
		pos += w
	}
	if pos == off {
		return len(atoms), nil
	}
	return 0, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("offset %d out of range (length %d)", off, pos), nil)
}

// InsertText inserts text with marks at offset within a leaf block's inline
// content.
func InsertText(inline []InlineChild, offset int, text string, marks MarkSet) ([]InlineChild, error) {
	atoms := toAtoms(inline)
	i, err := atomIndexForOffset(atoms, offset)
	if err != nil {
		return nil, err
	}
	var insert []atom
	for _, r := range text {
		insert = append(insert, atom{r: r, marks: marks})
	}
	out := make([]atom, 0, len(atoms)+len(insert))
	out = append(out, atoms[:i]...)
	out = append(out, insert...)
	out = append(out, atoms[i:]...)
	return fromAtoms(out), nil
}

// InsertSegments inserts pre-built segments (mixed mark runs, possibly
// including InlineNodes) at offset, used by paste.
func InsertSegments(inline []InlineChild, offset int, segments []Segment) ([]InlineChild, error) {
	atoms := toAtoms(inline)
	i, err := atomIndexForOffset(atoms, offset)
	if err != nil {
		return nil, err
	}
	insert := toAtoms(segments)
	out := make([]atom, 0, len(atoms)+len(insert))
	out = append(out, atoms[:i]...)
	out = append(out, insert...)
	out = append(out, atoms[i:]...)
	return fromAtoms(out), nil
}

// DeleteRange removes the atoms in [from, to) and returns the resulting
// inline content plus the removed content as segments (spec.md §4.2
// DeleteText's deletedSegments payload).
func DeleteRange(inline []InlineChild, from, to int) ([]InlineChild, []Segment, error) {
	if from < 0 || to < from {
		return nil, nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("invalid range [%d,%d)", from, to), nil)
	}
	atoms := toAtoms(inline)
	i, err := atomIndexForOffset(atoms, from)
	if err != nil {
		return nil, nil, err
	}
	j, err := atomIndexForOffset(atoms, to)
	if err != nil {
		return nil, nil, err
	}
	removed := append([]atom{}, atoms[i:j]...)
	out := make([]atom, 0, len(atoms)-(j-i))
	out = append(out, atoms[:i]...)
	out = append(out, atoms[j:]...)
	return fromAtoms(out), fromAtoms(removed), nil
}

// DeletedText concatenates the text of deleted segments, for convenience
// display and the DeleteText step's deletedText payload field.
func DeletedText(segments []Segment) string {
	var s string
	for _, seg := range segments {
		if seg.Kind == InlineChildText {
			s += seg.Text.Text
		}
	}
	return s
}

// ApplyMarkChange adds (add=true) or removes (add=false) mark on the text
// atoms within [from, to). InlineNode atoms are left untouched, since marks
// apply to text.
func ApplyMarkChange(inline []InlineChild, from, to int, mark Mark, add bool) ([]InlineChild, error) {
	atoms := toAtoms(inline)
	i, err := atomIndexForOffset(atoms, from)
	if err != nil {
		return nil, err
	}
	j, err := atomIndexForOffset(atoms, to)
	if err != nil {
		return nil, err
	}
	for k := i; k < j; k++ {
		if atoms[k].isNode {
			continue
		}
		if add {
			atoms[k].marks = atoms[k].marks.With(mark)
		} else {
			atoms[k].marks = atoms[k].marks.Without(mark.Type)
		}
	}
	return fromAtoms(atoms), nil
}

// MarkMembership returns, for each text atom in [from, to), whether it
// already carries a mark of type t. InlineNode atoms record false. Used by
// AddMark/RemoveMark.Apply to capture enough state to invert exactly even
// when [from, to) mixes atoms that already carried the mark with atoms
// that didn't — a uniform inverse over the same range would not restore
// that mix.
func MarkMembership(inline []InlineChild, from, to int, t nodeid.MarkType) ([]bool, error) {
	atoms := toAtoms(inline)
	i, err := atomIndexForOffset(atoms, from)
	if err != nil {
		return nil, err
	}
	j, err := atomIndexForOffset(atoms, to)
	if err != nil {
		return nil, err
	}
	membership := make([]bool, j-i)
	for k := i; k < j; k++ {
		if !atoms[k].isNode {
			membership[k-i] = atoms[k].marks.Has(t)
		}
	}
	return membership, nil
}

// SetMarkMembership sets each text atom in [from, to) to the presence
// recorded in membership (as captured by MarkMembership), restoring exact
// pre-change mark membership rather than uniformly adding or removing the
// mark. InlineNode atoms are left untouched. len(membership) must equal
// the number of atoms in [from, to).
func SetMarkMembership(inline []InlineChild, from, to int, mark Mark, membership []bool) ([]InlineChild, error) {
	atoms := toAtoms(inline)
	i, err := atomIndexForOffset(atoms, from)
	if err != nil {
		return nil, err
	}
	j, err := atomIndexForOffset(atoms, to)
	if err != nil {
		return nil, err
	}
	if j-i != len(membership) {
		return nil, notecore.NewError(notecore.StepPreconditionViolation, fmt.Sprintf("range [%d,%d) width %d does not match captured membership length %d", from, to, j-i, len(membership)), nil)
	}
	for k := i; k < j; k++ {
		if atoms[k].isNode {
			continue
		}
		if membership[k-i] {
			atoms[k].marks = atoms[k].marks.With(mark)
		} else {
			atoms[k].marks = atoms[k].marks.Without(mark.Type)
		}
	}
	return fromAtoms(atoms), nil
}

// RangeFullyCoveredByMark reports whether every text atom in [from, to)
// already carries a mark of type t — used by toggleMark to decide whether
// to add or remove.
func RangeFullyCoveredByMark(inline []InlineChild, from, to int, t nodeid.MarkType) (bool, error) {
	atoms := toAtoms(inline)
	i, err := atomIndexForOffset(atoms, from)
	if err != nil {
		return false, err
	}
	j, err := atomIndexForOffset(atoms, to)
	if err != nil {
		return false, err
	}
	if i == j {
		return false, nil
	}
	for k := i; k < j; k++ {
		if atoms[k].isNode {
			continue
		}
		if !atoms[k].marks.Has(t) {
			return false, nil
		}
	}
	return true, nil
}
