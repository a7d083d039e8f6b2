package step_test

import (
	"github.com/Samyssmile/notectl/pkg/doctree"
	"github.com/Samyssmile/notectl/pkg/step"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SetStoredMarks", func() {
	It("leaves the document untouched", func() {
		block := leaf("hello")
		doc := docOf(block)
		idx := doctree.BuildIndex(doc)

		s := &step.SetStoredMarks{Marks: doctree.MarkSet{{Type: boldMark}}}
		newDoc, err := s.Apply(doc, idx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(newDoc).To(Equal(doc))
	})

	It("reports its marks change for the editor-state apply loop", func() {
		prev := doctree.MarkSet{}
		next := doctree.MarkSet{{Type: boldMark}}
		s := &step.SetStoredMarks{Marks: next, Previous: prev}

		var smStep step.StoredMarksStep = s
		marks, previous := smStep.StoredMarksChange()
		Expect(marks).To(Equal(next))
		Expect(previous).To(Equal(prev))
	})

	It("inverts by swapping marks and previous", func() {
		prev := doctree.MarkSet{}
		next := doctree.MarkSet{{Type: boldMark}}
		s := &step.SetStoredMarks{Marks: next, Previous: prev}

		inv, ok := s.Invert().(*step.SetStoredMarks)
		Expect(ok).To(BeTrue())
		Expect(inv.Marks).To(Equal(prev))
		Expect(inv.Previous).To(Equal(next))
	})
})
