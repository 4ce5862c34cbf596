package ocr

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"walletnote/internal/receipt"
)

var _ = Describe("Placeholder", func() {
	var (
		img  Image
		text string
		err  error
	)

	JustBeforeEach(func() {
		text, err = NewPlaceholder().Recognize(context.Background(), img)
	})

	When("the upload has a file name", func() {
		BeforeEach(func() {
			img = Image{Filename: "uploads/lunch.jpg", ContentType: "image/jpeg"}
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should label the first line with the base name", func() {
			Expect(text).To(HavePrefix("OCR Import lunchjpg\n"))
		})

		It("should report a zero total on the fixed date", func() {
			Expect(text).To(ContainSubstring("0.00"))
			Expect(text).To(ContainSubstring(PlaceholderDate))
		})
	})

	When("the file name contains a price and a date", func() {
		BeforeEach(func() {
			img = Image{Filename: "invoice 250.00 2023-07-04.png", ContentType: "image/png"}
		})

		It("should keep the label free of numbers", func() {
			Expect(text).To(HavePrefix("OCR Import invoice --png\n"))
		})

		It("should still extract the zero total and the fixed date", func() {
			c, err := receipt.Extract(text)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Amount.StringFixed(2)).To(Equal("0.00"))
			Expect(c.Date.Format("2006-01-02")).To(Equal(PlaceholderDate))
		})
	})

	When("the file name is only digits", func() {
		BeforeEach(func() {
			img = Image{Filename: "2024.07"}
		})

		It("should fall back to a generic label", func() {
			Expect(text).To(HavePrefix("OCR Import receipt\n"))
		})
	})

	When("the upload has no file name", func() {
		BeforeEach(func() {
			img = Image{}
		})

		It("should fall back to a generic label", func() {
			Expect(text).To(HavePrefix("OCR Import receipt\n"))
		})
	})

	When("the context is already cancelled", func() {
		It("should return the context error", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := NewPlaceholder().Recognize(ctx, Image{Filename: "a.png"})
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})

var _ = Describe("NewGemini", func() {
	It("should require an API key", func() {
		g, err := NewGemini(context.Background(), "", "")
		Expect(err).To(HaveOccurred())
		Expect(g).To(BeNil())
	})
})

var _ = Describe("stripCodeFence", func() {
	DescribeTable("removing markdown fences",
		func(in, want string) {
			Expect(stripCodeFence(in)).To(Equal(want))
		},
		Entry("plain text", "ACME\nTotal 4.50", "ACME\nTotal 4.50"),
		Entry("fenced text", "```\nACME\nTotal 4.50\n```", "ACME\nTotal 4.50"),
		Entry("fenced with language", "```text\nACME\n```", "ACME"),
	)
})

var _ = Describe("New", func() {
	It("should default to the placeholder engine", func() {
		r, err := New(context.Background(), Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(r).To(BeAssignableToTypeOf(&Placeholder{}))
		Expect(r.Close()).To(Succeed())
	})

	It("should reject unknown engines", func() {
		_, err := New(context.Background(), Options{Engine: "tesseract"})
		Expect(err).To(MatchError(ContainSubstring("unknown OCR engine")))
	})
})
