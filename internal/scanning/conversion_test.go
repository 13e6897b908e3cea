package scanning

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	return img
}

var _ = Describe("renderPages", func() {
	var (
		data        []byte
		contentType string
		pages       [][]byte
		err         error
	)

	JustBeforeEach(func() {
		pages, err = renderPages(data, contentType)
	})

	When("the payload is empty", func() {
		BeforeEach(func() {
			data = nil
			contentType = "application/pdf"
		})

		It("returns the error", func() {
			Expect(err).To(MatchError(ErrEmptyDocument))
		})
	})

	When("the image is already PNG", func() {
		BeforeEach(func() {
			var buf bytes.Buffer
			Expect(png.Encode(&buf, testImage())).To(Succeed())
			data = buf.Bytes()
			contentType = "IMAGE/PNG "
		})

		It("should return it unchanged as a single page", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(HaveLen(1))
			Expect(pages[0]).To(Equal(data))
		})
	})

	When("the image is JPEG", func() {
		BeforeEach(func() {
			var buf bytes.Buffer
			Expect(jpeg.Encode(&buf, testImage(), nil)).To(Succeed())
			data = buf.Bytes()
			contentType = "image/jpeg"
		})

		It("should convert it to a PNG page", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(HaveLen(1))
			_, format, decodeErr := image.Decode(bytes.NewReader(pages[0]))
			Expect(decodeErr).NotTo(HaveOccurred())
			Expect(format).To(Equal("png"))
		})
	})

	When("the format is unknown", func() {
		BeforeEach(func() {
			data = []byte("definitely not an image")
			contentType = "application/octet-stream"
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unsupported image format"))
		})
	})
})

var _ = Describe("scanPages", func() {
	var pngPage []byte

	BeforeEach(func() {
		var buf bytes.Buffer
		Expect(png.Encode(&buf, testImage())).To(Succeed())
		pngPage = buf.Bytes()
	})

	It("should collect lines and count pages", func() {
		doc, err := scanPages(pngPage, "image/png", func(page []byte) ([]string, error) {
			return []string{"2024-01-05 COFFEE SHOP 4.50"}, nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Pages).To(Equal(1))
		Expect(doc.Lines).To(Equal([]string{"2024-01-05 COFFEE SHOP 4.50"}))
	})

	It("should report which page failed", func() {
		_, err := scanPages(pngPage, "image/png", func(page []byte) ([]string, error) {
			return nil, errors.New("engine down")
		})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("recognizing page 1"))
	})
})

var _ = Describe("HEIC detection", func() {
	It("should detect the ftyp brand", func() {
		Expect(isHEICFormat([]byte("\x00\x00\x00\x18ftypheic\x00\x00"))).To(BeTrue())
		Expect(isHEICFormat([]byte("\x00\x00\x00\x18ftypmif1\x00\x00"))).To(BeTrue())
	})

	It("should ignore other data", func() {
		Expect(isHEICFormat([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0d"))).To(BeFalse())
		Expect(isHEICFormat([]byte("short"))).To(BeFalse())
	})

	It("should detect HEIC MIME types", func() {
		Expect(isHEICMimeType(" Image/HEIC")).To(BeTrue())
		Expect(isHEICMimeType("image/heif")).To(BeTrue())
		Expect(isHEICMimeType("image/jpeg")).To(BeFalse())
	})
})

var _ = Describe("normalizeMimeType", func() {
	It("should lowercase and drop parameters", func() {
		Expect(normalizeMimeType(" Application/PDF; charset=binary")).To(Equal("application/pdf"))
	})

	It("should default to JPEG", func() {
		Expect(normalizeMimeType("")).To(Equal("image/jpeg"))
	})
})
