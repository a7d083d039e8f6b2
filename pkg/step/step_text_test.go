package step_test

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/step"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("InsertText", func() {
	It("splices text at the given offset", func() {
		block := leaf("hello world")
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		s := &step.InsertText{BlockID: block.ID, Offset: 5, Text: ","}
		newDoc, err := s.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		newIdx := doctree.BuildIndex(newDoc)
		got, _ := newIdx.Block(block.ID)
		Expect(got.Inline[0].Text.Text).To(Equal("hello, world"))
	})

	It("inverts to a DeleteText that restores the original content", func() {
		block := leaf("hello world")
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		ins := &step.InsertText{BlockID: block.ID, Offset: 5, Text: ","}
		afterInsert, err := ins.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		undo := ins.Invert()
		afterIdx := doctree.BuildIndex(afterInsert)
		restored, err := undo.Apply(afterInsert, afterIdx, nil)
		Expect(err).NotTo(HaveOccurred())

		restoredIdx := doctree.BuildIndex(restored)
		got, _ := restoredIdx.Block(block.ID)
		Expect(got.Inline[0].Text.Text).To(Equal("hello world"))
	})

	It("maps a position after the insertion point forward by the inserted width", func() {
		block := leaf("hello world")
		s := &step.InsertText{BlockID: block.ID, Offset: 5, Text: ","}
		res := s.MapPosition(step.Position{Block: block.ID, Offset: 8}, step.AssocAfter, nil)
		Expect(res.Deleted).To(BeFalse())
		Expect(res.Pos.Offset).To(Equal(9))
	})

	It("associates a position exactly at the insertion point per assoc", func() {
		block := leaf("hello world")
		s := &step.InsertText{BlockID: block.ID, Offset: 5, Text: ","}
		before := s.MapPosition(step.Position{Block: block.ID, Offset: 5}, step.AssocBefore, nil)
		after := s.MapPosition(step.Position{Block: block.ID, Offset: 5}, step.AssocAfter, nil)
		Expect(before.Pos.Offset).To(Equal(5))
		Expect(after.Pos.Offset).To(Equal(6))
	})

	It("rejects an offset outside the block", func() {
		block := leaf("hi")
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)
		s := &step.InsertText{BlockID: block.ID, Offset: 99, Text: "x"}
		_, err := s.Apply(doc, idx, nil)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("DeleteText", func() {
	It("removes the given range and captures the removed text", func() {
		block := leaf("hello world")
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		s := &step.DeleteText{BlockID: block.ID, From: 5, To: 11}
		newDoc, err := s.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.DeletedText).To(Equal(" world"))

		newIdx := doctree.BuildIndex(newDoc)
		got, _ := newIdx.Block(block.ID)
		Expect(got.Inline[0].Text.Text).To(Equal("hello"))
	})

	It("inverts to an InsertText that restores the deleted content exactly, marks included", func() {
		block := doctree.NewLeafBlock(paragraphType, nil, []doctree.InlineChild{
			doctree.NewTextChild("hello ", nil),
			doctree.NewTextChild("world", doctree.MarkSet{{Type: boldMark}}),
		})
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		del := &step.DeleteText{BlockID: block.ID, From: 3, To: 9}
		afterDelete, err := del.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		undo := del.Invert()
		afterIdx := doctree.BuildIndex(afterDelete)
		restored, err := undo.Apply(afterDelete, afterIdx, nil)
		Expect(err).NotTo(HaveOccurred())

		restoredIdx := doctree.BuildIndex(restored)
		got, _ := restoredIdx.Block(block.ID)
		Expect(got.Inline).To(HaveLen(2))
		Expect(got.Inline[1].Text.Marks.Has(boldMark)).To(BeTrue())
	})

	It("maps a position inside the deleted range to the deletion start", func() {
		block := leaf("hello world")
		s := &step.DeleteText{BlockID: block.ID, From: 5, To: 11}
		res := s.MapPosition(step.Position{Block: block.ID, Offset: 8}, step.AssocAfter, nil)
		Expect(res.Pos.Offset).To(Equal(5))
	})

	It("maps a position after the deleted range back by the deleted width", func() {
		block := leaf("hello world wide")
		s := &step.DeleteText{BlockID: block.ID, From: 5, To: 11}
		res := s.MapPosition(step.Position{Block: block.ID, Offset: 12}, step.AssocAfter, nil)
		Expect(res.Pos.Offset).To(Equal(6))
	})
})
