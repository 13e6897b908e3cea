package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Text", func() {
	var (
		data []byte
		doc  *Document
		err  error
	)

	JustBeforeEach(func() {
		doc, err = NewText().ScanStatement(data, "text/plain")
	})

	When("the text has a single page", func() {
		BeforeEach(func() {
			data = []byte("FIRST NATIONAL BANK\n\n2024-01-05 COFFEE SHOP 4.50\r\n")
		})

		It("should return the non-blank lines", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Lines).To(Equal([]string{"FIRST NATIONAL BANK", "2024-01-05 COFFEE SHOP 4.50"}))
		})

		It("should count one page", func() {
			Expect(doc.Pages).To(Equal(1))
		})
	})

	When("pages are separated by form feeds", func() {
		BeforeEach(func() {
			data = []byte("page one\n2024-01-05 COFFEE SHOP 4.50\n\fpage two\n2024-01-06 RENT 900.00\n\f")
		})

		It("should count every page", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Pages).To(Equal(2))
		})

		It("should keep lines in page order", func() {
			Expect(doc.Lines).To(Equal([]string{
				"page one",
				"2024-01-05 COFFEE SHOP 4.50",
				"page two",
				"2024-01-06 RENT 900.00",
			}))
		})
	})

	When("the payload is empty", func() {
		BeforeEach(func() {
			data = nil
		})

		It("returns the error", func() {
			Expect(err).To(MatchError(ErrEmptyDocument))
		})
	})
})
