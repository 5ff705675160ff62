// Package extract turns uploaded documents into plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"studyquiz/internal/ocr"
)

const (
	mimePDF   = "application/pdf"
	mimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePPTX  = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	mimeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS   = "application/vnd.ms-excel"
	mimeCSV   = "text/csv"
	mimeZip   = "application/zip"
	mimeOctet = "application/octet-stream"

	// DefaultMinTextLength is the text-layer length below which a PDF is treated as scanned.
	DefaultMinTextLength = 100
)

// Recognizer is the OCR capability used for scans and images.
type Recognizer interface {
	Recognize(ctx context.Context, buf []byte, kind ocr.Kind) (string, error)
}

// Extractor dispatches documents to the decoder for their type.
type Extractor struct {
	PDF           PDFDecoder
	OCR           Recognizer
	MinTextLength int
}

// New returns an Extractor using pdfcpu for text layers and rec for OCR. rec may be nil,
// in which case scans and images fail with ocr.ErrUnavailable.
func New(rec Recognizer) *Extractor {
	return &Extractor{PDF: PDFCPU{}, OCR: rec, MinTextLength: DefaultMinTextLength}
}

// ExtractText returns the text of buf. mimeType may be empty or generic, in which case the
// type is sniffed from the content.
func (e *Extractor) ExtractText(ctx context.Context, buf []byte, mimeType string) (string, error) {
	mt := baseType(mimeType)
	if mt == "" || mt == mimeOctet {
		mt = baseType(mimetype.Detect(buf).String())
		log.Printf("DEBUG: Sniffed content type %q (declared %q)", mt, mimeType)
	}
	if mt == mimeZip {
		mt = zipKind(buf)
	}

	switch {
	case mt == mimePDF:
		return e.extractPDF(ctx, buf)
	case mt == mimeDOCX:
		return decodeDOCX(buf)
	case mt == mimePPTX:
		return decodePPTX(buf)
	case mt == mimeXLSX:
		return decodeXLSX(buf)
	case mt == mimeXLS:
		return decodeXLS(buf)
	case mt == mimeCSV || mt == "application/csv":
		return decodeCSV(buf, "Sheet1")
	case strings.HasPrefix(mt, "image/"):
		return e.recognize(ctx, buf, ocr.KindImage)
	case strings.HasPrefix(mt, "text/"):
		return decodeText(buf), nil
	default:
		text := decodeText(buf)
		if !plausibleText(buf, text) {
			return "", fmt.Errorf("%s: %w", mt, ErrUnsupportedFormat)
		}
		return text, nil
	}
}

func (e *Extractor) extractPDF(ctx context.Context, buf []byte) (string, error) {
	dec := e.PDF
	if dec == nil {
		dec = PDFCPU{}
	}
	text, err := dec.DecodePDF(ctx, buf)
	if err != nil {
		var ee *ExtractionError
		if errors.As(err, &ee) || ctx.Err() != nil {
			return "", err
		}
		return "", failed("pdf", err)
	}

	minLen := e.MinTextLength
	if minLen <= 0 {
		minLen = DefaultMinTextLength
	}
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n >= minLen {
		return text, nil
	}

	log.Printf("INFO: PDF text layer has %d characters, falling back to OCR", n)
	scanned, err := e.recognize(ctx, buf, ocr.KindPDF)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(strings.TrimSpace(scanned)) > n {
		return scanned, nil
	}
	return text, nil
}

func (e *Extractor) recognize(ctx context.Context, buf []byte, kind ocr.Kind) (string, error) {
	if e.OCR == nil {
		return "", fmt.Errorf("no ocr configured: %w", ocr.ErrUnavailable)
	}
	text, err := e.OCR.Recognize(ctx, buf, kind)
	if err != nil && !errors.Is(err, ocr.ErrUnavailable) && ctx.Err() == nil {
		// A document the rasterizer cannot read is bad input, not an outage.
		return "", failed(kind.String(), err)
	}
	return text, err
}

// baseType lowercases a content type and drops its parameters.
func baseType(ct string) string {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
