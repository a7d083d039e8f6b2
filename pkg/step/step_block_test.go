package step_test

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/step"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SplitBlock", func() {
	It("splits a leaf into two siblings at the given offset", func() {
		block := leaf("hello world")
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		s := &step.SplitBlock{BlockID: block.ID, Offset: 5}
		newDoc, err := s.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.NewBlockID).NotTo(BeEmpty())

		newIdx := doctree.BuildIndex(newDoc)
		Expect(newDoc.Root.Blocks).To(HaveLen(2))
		left, _ := newIdx.Block(block.ID)
		right, _ := newIdx.Block(s.NewBlockID)
		Expect(left.Inline[0].Text.Text).To(Equal("hello"))
		Expect(right.Inline[0].Text.Text).To(Equal(" world"))
	})

	It("inverts to a MergeBlocks that restores the original single block", func() {
		block := leaf("hello world")
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		split := &step.SplitBlock{BlockID: block.ID, Offset: 5}
		afterSplit, err := split.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		undo := split.Invert()
		afterIdx := doctree.BuildIndex(afterSplit)
		restored, err := undo.Apply(afterSplit, afterIdx, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(restored.Root.Blocks).To(HaveLen(1))
		restoredIdx := doctree.BuildIndex(restored)
		got, _ := restoredIdx.Block(block.ID)
		Expect(got.Inline[0].Text.Text).To(Equal("hello world"))
	})

	It("maps a position before the split offset to the original block", func() {
		block := leaf("hello world")
		s := &step.SplitBlock{BlockID: block.ID, Offset: 5, NewBlockID: "new"}
		res := s.MapPosition(step.Position{Block: block.ID, Offset: 2}, step.AssocAfter, nil)
		Expect(res.Pos.Block).To(Equal(block.ID))
		Expect(res.Pos.Offset).To(Equal(2))
	})

	It("maps a position after the split offset to the new block", func() {
		block := leaf("hello world")
		s := &step.SplitBlock{BlockID: block.ID, Offset: 5, NewBlockID: "new"}
		res := s.MapPosition(step.Position{Block: block.ID, Offset: 7}, step.AssocAfter, nil)
		Expect(res.Pos.Block).To(BeEquivalentTo("new"))
		Expect(res.Pos.Offset).To(Equal(2))
	})
})

var _ = Describe("MergeBlocks", func() {
	It("appends the source block's content onto the target and removes the source", func() {
		left := leaf("hello")
		right := leaf(" world")
		doc := docOf(left, right)
		idx := doctree.BuildIndex(doc)

		s := &step.MergeBlocks{TargetBlockID: left.ID, SourceBlockID: right.ID}
		newDoc, err := s.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(newDoc.Root.Blocks).To(HaveLen(1))
		Expect(s.TargetLengthBefore).To(Equal(5))

		newIdx := doctree.BuildIndex(newDoc)
		got, _ := newIdx.Block(left.ID)
		Expect(got.Inline[0].Text.Text).To(Equal("hello world"))
	})

	It("rejects merging blocks that are not adjacent siblings", func() {
		a := leaf("a")
		mid := leaf("mid")
		b := leaf("b")
		doc := docOf(a, mid, b)
		idx := doctree.BuildIndex(doc)

		s := &step.MergeBlocks{TargetBlockID: a.ID, SourceBlockID: b.ID}
		_, err := s.Apply(doc, idx, nil)
		Expect(err).To(HaveOccurred())
	})

	It("inverts to a SplitBlock that restores the original two blocks, including the source's type", func() {
		left := leaf("hello")
		right := doctree.NewLeafBlock("heading", doctree.Attrs{"level": 2}, []doctree.InlineChild{doctree.NewTextChild(" world", nil)})
		doc := docOf(left, right)
		idx := doctree.BuildIndex(doc)

		merge := &step.MergeBlocks{TargetBlockID: left.ID, SourceBlockID: right.ID}
		afterMerge, err := merge.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		undo := merge.Invert()
		afterIdx := doctree.BuildIndex(afterMerge)
		restored, err := undo.Apply(afterMerge, afterIdx, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(restored.Root.Blocks).To(HaveLen(2))
		restoredIdx := doctree.BuildIndex(restored)
		gotRight, ok := restoredIdx.Block(right.ID)
		Expect(ok).To(BeTrue())
		Expect(gotRight.Type).To(BeEquivalentTo("heading"))
		Expect(gotRight.Attrs["level"]).To(Equal(2))
	})
})

var _ = Describe("SetBlockType", func() {
	It("changes type while preserving id and content, applying new-type attr defaults", func() {
		block := leaf("hello")
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)
		reg := headingRegistry()

		s := &step.SetBlockType{BlockID: block.ID, NewType: "heading"}
		newDoc, err := s.Apply(doc, idx, reg)
		Expect(err).NotTo(HaveOccurred())

		newIdx := doctree.BuildIndex(newDoc)
		got, _ := newIdx.Block(block.ID)
		Expect(got.Type).To(BeEquivalentTo("heading"))
		Expect(got.Attrs["level"]).To(Equal(1))
		Expect(got.Inline[0].Text.Text).To(Equal("hello"))
	})

	It("preserves attrs whose keys are declared by both the old and new type", func() {
		block := doctree.NewLeafBlock(paragraphType, doctree.Attrs{"align": "right"}, []doctree.InlineChild{doctree.NewTextChild("hi", nil)})
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)
		reg := headingRegistry()

		s := &step.SetBlockType{BlockID: block.ID, NewType: "heading"}
		newDoc, err := s.Apply(doc, idx, reg)
		Expect(err).NotTo(HaveOccurred())

		newIdx := doctree.BuildIndex(newDoc)
		got, _ := newIdx.Block(block.ID)
		Expect(got.Attrs["align"]).To(Equal("right"))
		Expect(got.Attrs["level"]).To(Equal(1))
	})

	It("inverts to the previous type and attrs exactly, bypassing the merge policy", func() {
		block := doctree.NewLeafBlock(paragraphType, doctree.Attrs{"align": "right"}, []doctree.InlineChild{doctree.NewTextChild("hi", nil)})
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)
		reg := headingRegistry()

		s := &step.SetBlockType{BlockID: block.ID, NewType: "heading"}
		afterSet, err := s.Apply(doc, idx, reg)
		Expect(err).NotTo(HaveOccurred())

		undo := s.Invert()
		afterIdx := doctree.BuildIndex(afterSet)
		restored, err := undo.Apply(afterSet, afterIdx, reg)
		Expect(err).NotTo(HaveOccurred())

		restoredIdx := doctree.BuildIndex(restored)
		got, _ := restoredIdx.Block(block.ID)
		Expect(got.Type).To(Equal(paragraphType))
		Expect(got.Attrs["align"]).To(Equal("right"))
	})
})

var _ = Describe("SetNodeAttr", func() {
	It("replaces attrs while preserving id, type and content", func() {
		block := doctree.NewLeafBlock(paragraphType, doctree.Attrs{"align": "left"}, nil)
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		s := &step.SetNodeAttr{BlockID: block.ID, Attrs: doctree.Attrs{"align": "right"}}
		newDoc, err := s.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		newIdx := doctree.BuildIndex(newDoc)
		got, _ := newIdx.Block(block.ID)
		Expect(got.Attrs["align"]).To(Equal("right"))
		Expect(got.Type).To(Equal(paragraphType))
	})

	It("inverts to the previous attrs", func() {
		block := doctree.NewLeafBlock(paragraphType, doctree.Attrs{"align": "left"}, nil)
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		s := &step.SetNodeAttr{BlockID: block.ID, Attrs: doctree.Attrs{"align": "right"}}
		afterSet, err := s.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		undo := s.Invert()
		afterIdx := doctree.BuildIndex(afterSet)
		restored, err := undo.Apply(afterSet, afterIdx, nil)
		Expect(err).NotTo(HaveOccurred())

		restoredIdx := doctree.BuildIndex(restored)
		got, _ := restoredIdx.Block(block.ID)
		Expect(got.Attrs["align"]).To(Equal("left"))
	})
})
