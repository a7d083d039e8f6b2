package step_test

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/step"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AddMark", func() {
	It("applies a mark across the given range, splitting text runs as needed", func() {
		block := leaf("hello world")
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		s := &step.AddMark{BlockID: block.ID, From: 0, To: 5, Mark: doctree.Mark{Type: boldMark}}
		newDoc, err := s.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		newIdx := doctree.BuildIndex(newDoc)
		got, _ := newIdx.Block(block.ID)
		Expect(got.Inline).To(HaveLen(2))
		Expect(got.Inline[0].Text.Marks.Has(boldMark)).To(BeTrue())
		Expect(got.Inline[1].Text.Marks.Has(boldMark)).To(BeFalse())
	})

	It("inverts to a RemoveMark that restores the unmarked text", func() {
		block := leaf("hello world")
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		add := &step.AddMark{BlockID: block.ID, From: 0, To: 5, Mark: doctree.Mark{Type: boldMark}}
		afterAdd, err := add.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		undo := add.Invert()
		afterIdx := doctree.BuildIndex(afterAdd)
		restored, err := undo.Apply(afterAdd, afterIdx, nil)
		Expect(err).NotTo(HaveOccurred())

		restoredIdx := doctree.BuildIndex(restored)
		got, _ := restoredIdx.Block(block.ID)
		Expect(got.Inline).To(HaveLen(1))
		Expect(got.Inline[0].Text.Marks.Has(boldMark)).To(BeFalse())
	})

	It("inverts exactly when the range already mixes marked and unmarked text", func() {
		block := doctree.NewLeafBlock(paragraphType, nil, []doctree.InlineChild{
			doctree.NewTextChild("A", doctree.MarkSet{{Type: boldMark}}),
			doctree.NewTextChild("B", nil),
		})
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		add := &step.AddMark{BlockID: block.ID, From: 0, To: 2, Mark: doctree.Mark{Type: boldMark}}
		afterAdd, err := add.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		afterIdx := doctree.BuildIndex(afterAdd)
		merged, _ := afterIdx.Block(block.ID)
		Expect(merged.Inline).To(HaveLen(1))
		Expect(merged.Inline[0].Text.Marks.Has(boldMark)).To(BeTrue())

		undo := add.Invert()
		restored, err := undo.Apply(afterAdd, afterIdx, nil)
		Expect(err).NotTo(HaveOccurred())

		restoredIdx := doctree.BuildIndex(restored)
		got, _ := restoredIdx.Block(block.ID)
		Expect(got.Inline).To(HaveLen(2))
		Expect(got.Inline[0].Text.Text).To(Equal("A"))
		Expect(got.Inline[0].Text.Marks.Has(boldMark)).To(BeTrue())
		Expect(got.Inline[1].Text.Text).To(Equal("B"))
		Expect(got.Inline[1].Text.Marks.Has(boldMark)).To(BeFalse())
	})

	It("accepts a mark the block's schema does not exclude", func() {
		block := leaf("hello")
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		reg := newTestRegistry()
		s := &step.AddMark{BlockID: block.ID, From: 0, To: 5, Mark: doctree.Mark{Type: boldMark}}
		_, err := s.Apply(doc, idx, reg)
		Expect(err).NotTo(HaveOccurred()) // paragraph does not exclude bold in this fixture registry
	})

	It("does not move positions in the same block", func() {
		block := leaf("hello world")
		s := &step.AddMark{BlockID: block.ID, From: 0, To: 5, Mark: doctree.Mark{Type: boldMark}}
		res := s.MapPosition(step.Position{Block: block.ID, Offset: 3}, step.AssocAfter, nil)
		Expect(res.Pos.Offset).To(Equal(3))
	})
})

var _ = Describe("RemoveMark", func() {
	It("removes a mark across the given range", func() {
		block := doctree.NewLeafBlock(paragraphType, nil, []doctree.InlineChild{
			doctree.NewTextChild("hello world", doctree.MarkSet{{Type: boldMark}}),
		})
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		s := &step.RemoveMark{BlockID: block.ID, From: 0, To: 11, Mark: doctree.Mark{Type: boldMark}}
		newDoc, err := s.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		newIdx := doctree.BuildIndex(newDoc)
		got, _ := newIdx.Block(block.ID)
		Expect(got.Inline[0].Text.Marks.Has(boldMark)).To(BeFalse())
	})

	It("inverts to an AddMark", func() {
		s := &step.RemoveMark{From: 0, To: 11, Mark: doctree.Mark{Type: boldMark}}
		inv, ok := s.Invert().(*step.AddMark)
		Expect(ok).To(BeTrue())
		Expect(inv.Mark.Type).To(Equal(boldMark))
	})

	It("inverts exactly when the range already mixes marked and unmarked text", func() {
		block := doctree.NewLeafBlock(paragraphType, nil, []doctree.InlineChild{
			doctree.NewTextChild("A", doctree.MarkSet{{Type: boldMark}}),
			doctree.NewTextChild("B", nil),
		})
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		remove := &step.RemoveMark{BlockID: block.ID, From: 0, To: 2, Mark: doctree.Mark{Type: boldMark}}
		afterRemove, err := remove.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		afterIdx := doctree.BuildIndex(afterRemove)
		merged, _ := afterIdx.Block(block.ID)
		Expect(merged.Inline).To(HaveLen(1))
		Expect(merged.Inline[0].Text.Marks.Has(boldMark)).To(BeFalse())

		undo := remove.Invert()
		restored, err := undo.Apply(afterRemove, afterIdx, nil)
		Expect(err).NotTo(HaveOccurred())

		restoredIdx := doctree.BuildIndex(restored)
		got, _ := restoredIdx.Block(block.ID)
		Expect(got.Inline).To(HaveLen(2))
		Expect(got.Inline[0].Text.Text).To(Equal("A"))
		Expect(got.Inline[0].Text.Marks.Has(boldMark)).To(BeTrue())
		Expect(got.Inline[1].Text.Text).To(Equal("B"))
		Expect(got.Inline[1].Text.Marks.Has(boldMark)).To(BeFalse())
	})
})
