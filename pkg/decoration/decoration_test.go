package decoration_test

import (
	"github.com/Samyssmile/notectl/pkg/decoration"
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/step"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Set", func() {
	It("adds and groups decorations by block", func() {
		b := leaf("hello world")
		s := decoration.Empty().Add(decoration.Inline(b.ID, 0, 5, nil)).Add(decoration.Node(b.ID, nil))
		Expect(s.Len()).To(Equal(2))
		Expect(s.ForBlock(b.ID)).To(HaveLen(2))
	})

	It("removes by predicate and returns the same pointer when nothing matched", func() {
		b := leaf("hello")
		s := decoration.Empty().Add(decoration.Inline(b.ID, 0, 2, nil))
		same := s.Remove(func(d decoration.Decoration) bool { return d.Kind == decoration.KindWidget })
		Expect(same).To(BeIdenticalTo(s))

		dropped := s.Remove(func(d decoration.Decoration) bool { return d.Kind == decoration.KindInline })
		Expect(dropped.Len()).To(Equal(0))
	})

	It("merges two sets, short-circuiting on an empty other", func() {
		b := leaf("hello")
		s := decoration.Empty().Add(decoration.Inline(b.ID, 0, 1, nil))
		Expect(s.Merge(decoration.Empty())).To(BeIdenticalTo(s))
		Expect(s.Merge(nil)).To(BeIdenticalTo(s))

		merged := s.Merge(decoration.Empty().Add(decoration.Node(b.ID, nil)))
		Expect(merged.Len()).To(Equal(2))
		Expect(s.Len()).To(Equal(1), "original set must be untouched")
	})
})

var _ = Describe("Set.Map", func() {
	var block *doctree.BlockNode
	var doc *doctree.Document
	var idx *doctree.Index

	BeforeEach(func() {
		block = leaf("hello world")
		doc = docOf(block)
		idx = doctree.BuildIndex(doc)
	})

	It("returns the same pointer for a step touching no decorated block", func() {
		other := leaf("unrelated")
		doc2 := docOf(block, other)
		idx2 := doctree.BuildIndex(doc2)
		s := decoration.Empty().Add(decoration.Inline(block.ID, 0, 2, nil))
		st := &step.InsertText{BlockID: other.ID, Offset: 0, Text: "x"}
		Expect(s.Map(st, idx2)).To(BeIdenticalTo(s))
	})

	It("shifts an inline decoration's endpoints past an insertion", func() {
		s := decoration.Empty().Add(decoration.Inline(block.ID, 2, 5, nil))
		st := &step.InsertText{BlockID: block.ID, Offset: 3, Text: "XY"}
		_, err := st.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		mapped := s.Map(st, idx)
		got := mapped.ForBlock(block.ID)[0]
		Expect(got.From).To(Equal(2))
		Expect(got.To).To(Equal(7))
	})

	It("leaves an inline decoration unchanged when the insertion falls strictly outside it", func() {
		s := decoration.Empty().Add(decoration.Inline(block.ID, 0, 3, nil))
		st := &step.InsertText{BlockID: block.ID, Offset: 8, Text: "Z"}
		_, err := st.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		mapped := s.Map(st, idx)
		got := mapped.ForBlock(block.ID)[0]
		Expect(got.From).To(Equal(0))
		Expect(got.To).To(Equal(3))
	})

	It("drops an inline decoration whose range is entirely deleted", func() {
		s := decoration.Empty().Add(decoration.Inline(block.ID, 2, 4, nil))
		st := &step.DeleteText{BlockID: block.ID, From: 0, To: 6}
		_, err := st.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		mapped := s.Map(st, idx)
		Expect(mapped.ForBlock(block.ID)).To(BeEmpty())
	})

	It("clamps an inline decoration partially overlapped by a delete", func() {
		s := decoration.Empty().Add(decoration.Inline(block.ID, 2, 8, nil))
		st := &step.DeleteText{BlockID: block.ID, From: 4, To: 10}
		_, err := st.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		mapped := s.Map(st, idx)
		got := mapped.ForBlock(block.ID)[0]
		Expect(got.From).To(Equal(2))
		Expect(got.To).To(Equal(4))
	})

	It("drops a widget decoration strictly inside a deleted range", func() {
		s := decoration.Empty().Add(decoration.Widget(block.ID, 3, nil, decoration.SideAfter, "w"))
		st := &step.DeleteText{BlockID: block.ID, From: 1, To: 6}
		_, err := st.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		mapped := s.Map(st, idx)
		Expect(mapped.ForBlock(block.ID)).To(BeEmpty())
	})

	It("keeps a widget decoration sitting exactly at a delete boundary", func() {
		s := decoration.Empty().Add(decoration.Widget(block.ID, 6, nil, decoration.SideAfter, "w"))
		st := &step.DeleteText{BlockID: block.ID, From: 1, To: 6}
		_, err := st.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		mapped := s.Map(st, idx)
		got := mapped.ForBlock(block.ID)
		Expect(got).To(HaveLen(1))
		Expect(got[0].Offset).To(Equal(1))
	})

	It("splits an inline decoration spanning the split point into two", func() {
		s := decoration.Empty().Add(decoration.Inline(block.ID, 2, 8, nil))
		st := &step.SplitBlock{BlockID: block.ID, Offset: 5}
		_, err := st.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		mapped := s.Map(st, idx)
		left := mapped.ForBlock(block.ID)
		right := mapped.ForBlock(st.NewBlockID)
		Expect(left).To(HaveLen(1))
		Expect(left[0].From).To(Equal(2))
		Expect(left[0].To).To(Equal(5))
		Expect(right).To(HaveLen(1))
		Expect(right[0].From).To(Equal(0))
		Expect(right[0].To).To(Equal(3))
		Expect(right[0].BlockID).To(Equal(st.NewBlockID))
	})

	It("moves an inline decoration entirely after the split onto the new block", func() {
		s := decoration.Empty().Add(decoration.Inline(block.ID, 6, 9, nil))
		st := &step.SplitBlock{BlockID: block.ID, Offset: 5}
		_, err := st.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		mapped := s.Map(st, idx)
		Expect(mapped.ForBlock(block.ID)).To(BeEmpty())
		right := mapped.ForBlock(st.NewBlockID)
		Expect(right).To(HaveLen(1))
		Expect(right[0].From).To(Equal(1))
		Expect(right[0].To).To(Equal(4))
	})

	It("keeps a node decoration on the original block across a split", func() {
		s := decoration.Empty().Add(decoration.Node(block.ID, nil))
		st := &step.SplitBlock{BlockID: block.ID, Offset: 5}
		_, err := st.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		mapped := s.Map(st, idx)
		Expect(mapped.ForBlock(block.ID)).To(HaveLen(1))
		Expect(mapped.ForBlock(st.NewBlockID)).To(BeEmpty())
	})

	It("rebases a source block's decorations onto the merge target", func() {
		second := leaf(" world")
		doc2 := docOf(block, second)
		idx2 := doctree.BuildIndex(doc2)
		s := decoration.Empty().Add(decoration.Inline(second.ID, 1, 3, nil))

		st := &step.MergeBlocks{TargetBlockID: block.ID, SourceBlockID: second.ID}
		_, err := st.Apply(doc2, idx2, nil)
		Expect(err).NotTo(HaveOccurred())

		mapped := s.Map(st, idx2)
		Expect(mapped.ForBlock(second.ID)).To(BeEmpty())
		got := mapped.ForBlock(block.ID)
		Expect(got).To(HaveLen(1))
		Expect(got[0].From).To(Equal(1 + st.TargetLengthBefore))
		Expect(got[0].To).To(Equal(3 + st.TargetLengthBefore))
	})

	It("drops a node decoration anchored to the merge source", func() {
		second := leaf(" world")
		doc2 := docOf(block, second)
		idx2 := doctree.BuildIndex(doc2)
		s := decoration.Empty().Add(decoration.Node(second.ID, nil))

		st := &step.MergeBlocks{TargetBlockID: block.ID, SourceBlockID: second.ID}
		_, err := st.Apply(doc2, idx2, nil)
		Expect(err).NotTo(HaveOccurred())

		mapped := s.Map(st, idx2)
		Expect(mapped.Len()).To(Equal(0))
	})

	It("drops every decoration anchored inside a removed subtree", func() {
		container := doctree.NewContainerBlock("group", nil, []*doctree.BlockNode{block})
		root := doctree.NewContainerBlock(nodeid.DocumentNodeType, nil, []*doctree.BlockNode{container})
		doc3 := &doctree.Document{Root: root}
		idx3 := doctree.BuildIndex(doc3)

		s := decoration.Empty().
			Add(decoration.Inline(block.ID, 0, 2, nil)).
			Add(decoration.Node(container.ID, nil))

		st := &step.RemoveNode{ParentID: root.ID, Index: 0}
		_, err := st.Apply(doc3, idx3, nil)
		Expect(err).NotTo(HaveOccurred())

		mapped := s.Map(st, idx3)
		Expect(mapped.Len()).To(Equal(0))
	})
})
