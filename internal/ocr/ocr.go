// Package ocr recognises text in scanned PDFs and images.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// ErrUnavailable means the recognition capability could not be initialised.
var ErrUnavailable = errors.New("ocr unavailable")

// Kind tells Recognize how to treat the buffer.
type Kind int

const (
	KindPDF Kind = iota
	KindImage
)

func (k Kind) String() string {
	if k == KindPDF {
		return "pdf"
	}
	return "image"
}

const (
	DefaultMaxPages = 5
	DefaultScale    = 2.0
)

// Session is one acquired recognition engine. It is owned by a single Recognize call.
type Session interface {
	Recognize(ctx context.Context, img []byte) (string, error)
	Close() error
}

// Engine opens recognition sessions.
type Engine interface {
	Open(ctx context.Context) (Session, error)
}

// Rasterizer renders the first maxPages pages of a PDF to PNG images.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte, maxPages int, scale float64) ([][]byte, error)
}

// OCR combines an engine with a rasterizer for PDF input.
type OCR struct {
	Engine     Engine
	Rasterizer Rasterizer
	MaxPages   int
	Scale      float64
}

// New returns an OCR with the default page cap and scale.
func New(engine Engine, rasterizer Rasterizer) *OCR {
	return &OCR{Engine: engine, Rasterizer: rasterizer, MaxPages: DefaultMaxPages, Scale: DefaultScale}
}

// Recognize returns the text found in buf. For PDFs only the first MaxPages pages are
// read; page texts are joined with newlines and a page that fails contributes nothing.
func (o *OCR) Recognize(ctx context.Context, buf []byte, kind Kind) (string, error) {
	if o == nil || o.Engine == nil {
		return "", ErrUnavailable
	}

	sess, err := o.Engine.Open(ctx)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("failed to open ocr session: %v: %w", err, ErrUnavailable)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Printf("WARN: Failed to close OCR session: %v", cerr)
		}
	}()

	var images [][]byte
	switch kind {
	case KindPDF:
		if o.Rasterizer == nil {
			return "", fmt.Errorf("no rasterizer configured: %w", ErrUnavailable)
		}
		maxPages, scale := o.MaxPages, o.Scale
		if maxPages <= 0 {
			maxPages = DefaultMaxPages
		}
		if scale <= 0 {
			scale = DefaultScale
		}
		pages, err := o.Rasterizer.Rasterize(ctx, buf, maxPages, scale)
		if err != nil {
			return "", fmt.Errorf("failed to rasterize pdf: %w", err)
		}
		if len(pages) > maxPages {
			pages = pages[:maxPages]
		}
		images = pages
	default:
		images = [][]byte{buf}
	}

	texts := make([]string, len(images))
	for i, img := range images {
		text, err := sess.Recognize(ctx, img)
		if err != nil {
			log.Printf("WARN: OCR failed on %s page %d: %v", kind, i+1, err)
			continue
		}
		texts[i] = strings.TrimSpace(text)
	}
	return strings.Join(texts, "\n"), nil
}
