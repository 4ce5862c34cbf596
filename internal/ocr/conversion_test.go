package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func sampleImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	return img
}

var _ = Describe("ToPNG", func() {
	var (
		pngData  []byte
		jpegData []byte
	)

	BeforeEach(func() {
		var buf bytes.Buffer
		Expect(png.Encode(&buf, sampleImage())).To(Succeed())
		pngData = buf.Bytes()

		buf = bytes.Buffer{}
		Expect(jpeg.Encode(&buf, sampleImage(), nil)).To(Succeed())
		jpegData = buf.Bytes()
	})

	It("should return PNG input unchanged", func() {
		out, err := ToPNG(pngData, "image/png")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(pngData))
	})

	It("should convert JPEG input to PNG", func() {
		out, err := ToPNG(jpegData, "image/jpeg")
		Expect(err).NotTo(HaveOccurred())
		_, format, err := image.Decode(bytes.NewReader(out))
		Expect(err).NotTo(HaveOccurred())
		Expect(format).To(Equal("png"))
	})

	It("should sniff the type when none is declared", func() {
		out, err := ToPNG(jpegData, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).NotTo(BeEmpty())
	})

	It("should reject unsupported formats", func() {
		_, err := ToPNG([]byte("just some text"), "text/plain")
		Expect(err).To(MatchError(ErrUnsupportedFormat))
	})
})

var _ = Describe("DetectContentType", func() {
	It("should strip parameters from the declared type", func() {
		Expect(DetectContentType([]byte{}, "Image/JPEG; charset=binary")).To(Equal("image/jpeg"))
	})

	It("should recognize HEIC brands regardless of the declared type", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...)
		Expect(DetectContentType(data, "application/octet-stream")).To(Equal("image/heic"))
	})

	It("should sniff PDF documents", func() {
		Expect(DetectContentType([]byte("%PDF-1.7\n"), "")).To(Equal("application/pdf"))
	})
})

var _ = Describe("IsSupported", func() {
	DescribeTable("MIME types",
		func(mt string, want bool) {
			Expect(IsSupported(mt)).To(Equal(want))
		},
		Entry("png", "image/png", true),
		Entry("heic", "image/heic", true),
		Entry("pdf", "application/pdf", true),
		Entry("text", "text/plain", false),
	)
})
