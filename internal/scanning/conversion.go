package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// pageDPI is the resolution statement pages are rendered at for OCR
const pageDPI = 150

// statementLinesPrompt is the shared prompt used by all vision providers for transcribing a page
const statementLinesPrompt = `You are transcribing one page of a scanned bank statement. Read ALL text on the page, exactly as printed, and return it line by line.

Rules:
- Output one string per printed line, in reading order: top to bottom, and left to right within a line.
- Keep every character of a line together in one string, including dates, descriptions, amounts and balances.
- Copy numbers exactly as printed, including commas, decimal points and minus signs.
- Include headers, footers and page numbers; do not summarize, skip or merge lines.

Return ONLY a valid JSON array of strings, for example:
["Date Description Amount Balance", "03/01/2024 CARD PAYMENT 12.50 1,004.20"]

Do not include any text before or after the JSON.
Do not use markdown code blocks.`

// pdfToImages renders every page of a PDF to PNG
func pdfToImages(pdfData []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := make([][]byte, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.ImageDPI(n, pageDPI)
		if err != nil {
			return nil, fmt.Errorf("rendering PDF page %d: %w", n+1, err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding PNG for page %d: %w", n+1, err)
		}
		pages = append(pages, buf.Bytes())
	}

	return pages, nil
}

// imageToPNG converts any image format to PNG
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	// Phone photos of statements are often HEIC, which the standard image package can't read
	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") || strings.Contains(err.Error(), "unsupported") {
				return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF. Error: %w", err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// isHEICFormat checks for an ftyp box with a HEIC-family brand at offset 4
func isHEICFormat(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	if string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format
func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// normalizeMimeType lowercases and trims a content type, dropping parameters
func normalizeMimeType(contentType string) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mimeType, ";"); i != -1 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" {
		mimeType = "image/jpeg" // default
	}
	return mimeType
}

// renderPages turns a statement into one PNG per page.
// PDFs are rasterized page by page; any other image is a single page.
func renderPages(data []byte, contentType string) ([][]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	mimeType := normalizeMimeType(contentType)
	switch {
	case mimeType == "application/pdf":
		pages, err := pdfToImages(data)
		if err != nil {
			return nil, fmt.Errorf("converting PDF to images: %w", err)
		}
		return pages, nil
	case mimeType != "image/png" || isHEICFormat(data):
		pngData, err := imageToPNG(data, mimeType)
		if err != nil {
			return nil, fmt.Errorf("converting image to PNG: %w", err)
		}
		return [][]byte{pngData}, nil
	default:
		// Already PNG, return as-is
		return [][]byte{data}, nil
	}
}

// recognizeFunc transcribes a single PNG page into raw lines
type recognizeFunc func(page []byte) ([]string, error)

// scanPages renders the document and transcribes each page in order
func scanPages(data []byte, contentType string, recognize recognizeFunc) (*Document, error) {
	pages, err := renderPages(data, contentType)
	if err != nil {
		return nil, err
	}

	doc := &Document{Lines: make([]string, 0), Pages: len(pages)}
	for i, page := range pages {
		lines, err := recognize(page)
		if err != nil {
			return nil, fmt.Errorf("recognizing page %d: %w", i+1, err)
		}
		doc.Lines = append(doc.Lines, lines...)
	}
	return doc, nil
}
