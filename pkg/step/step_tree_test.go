package step_test

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/step"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("InsertNode", func() {
	It("inserts a new block subtree at the given index", func() {
		first := leaf("first")
		doc := docOf(first)
		idx := doctree.BuildIndex(doc)

		newBlock := leaf("second")
		s := &step.InsertNode{ParentID: doc.Root.ID, Index: 1, Node: newBlock}
		newDoc, err := s.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(newDoc.Root.Blocks).To(HaveLen(2))
		Expect(newDoc.Root.Blocks[1].ID).To(Equal(newBlock.ID))
	})

	It("inverts to a RemoveNode", func() {
		newBlock := leaf("second")
		s := &step.InsertNode{ParentID: "root", Index: 1, Node: newBlock}
		inv, ok := s.Invert().(*step.RemoveNode)
		Expect(ok).To(BeTrue())
		Expect(inv.RemovedNode).To(Equal(newBlock))
	})
})

var _ = Describe("RemoveNode", func() {
	It("removes the child at the given index and captures it", func() {
		first := leaf("first")
		second := leaf("second")
		doc := docOf(first, second)
		idx := doctree.BuildIndex(doc)

		s := &step.RemoveNode{ParentID: doc.Root.ID, Index: 1}
		newDoc, err := s.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(newDoc.Root.Blocks).To(HaveLen(1))
		Expect(s.RemovedNode.ID).To(Equal(second.ID))
	})

	It("inverts to an InsertNode that restores the removed subtree", func() {
		first := leaf("first")
		second := leaf("second")
		doc := docOf(first, second)
		idx := doctree.BuildIndex(doc)

		remove := &step.RemoveNode{ParentID: doc.Root.ID, Index: 1}
		afterRemove, err := remove.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		undo := remove.Invert()
		afterIdx := doctree.BuildIndex(afterRemove)
		restored, err := undo.Apply(afterRemove, afterIdx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(restored.Root.Blocks).To(HaveLen(2))
		Expect(restored.Root.Blocks[1].ID).To(Equal(second.ID))
	})

	It("deletes positions whose block descended from the removed subtree", func() {
		container := doctree.NewContainerBlock("group", nil, []*doctree.BlockNode{leaf("inner")})
		inner := container.Blocks[0]
		other := leaf("other")
		doc := docOf(container, other)
		idxBefore := doctree.BuildIndex(doc)

		s := &step.RemoveNode{ParentID: doc.Root.ID, Index: 0, RemovedNode: container}
		res := s.MapPosition(step.Position{Block: inner.ID, Offset: 0}, step.AssocAfter, idxBefore)
		Expect(res.Deleted).To(BeTrue())

		untouched := s.MapPosition(step.Position{Block: other.ID, Offset: 0}, step.AssocAfter, idxBefore)
		Expect(untouched.Deleted).To(BeFalse())
	})
})

var _ = Describe("ReplaceNode", func() {
	It("swaps the subtree while preserving the root id", func() {
		block := leaf("hello")
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		replacement := doctree.NewLeafBlockWithID(block.ID, "heading", doctree.Attrs{"level": 1}, []doctree.InlineChild{doctree.NewTextChild("hello", nil)})
		s := &step.ReplaceNode{BlockID: block.ID, Replacement: replacement}
		newDoc, err := s.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		newIdx := doctree.BuildIndex(newDoc)
		got, _ := newIdx.Block(block.ID)
		Expect(got.Type).To(BeEquivalentTo("heading"))
	})

	It("inverts to the previous subtree", func() {
		block := leaf("hello")
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		replacement := doctree.NewLeafBlockWithID(block.ID, "heading", doctree.Attrs{"level": 1}, []doctree.InlineChild{doctree.NewTextChild("hello", nil)})
		s := &step.ReplaceNode{BlockID: block.ID, Replacement: replacement}
		afterReplace, err := s.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())

		undo := s.Invert()
		afterIdx := doctree.BuildIndex(afterReplace)
		restored, err := undo.Apply(afterReplace, afterIdx, nil)
		Expect(err).NotTo(HaveOccurred())

		restoredIdx := doctree.BuildIndex(restored)
		got, _ := restoredIdx.Block(block.ID)
		Expect(got.Type).To(Equal(paragraphType))
	})
})
