package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Pdftoppm rasterizes PDFs with Poppler's pdftoppm.
type Pdftoppm struct {
	Binary  string
	Timeout time.Duration
}

// NewPdftoppm returns a rasterizer bounded by timeout per document.
func NewPdftoppm(timeout time.Duration) *Pdftoppm {
	return &Pdftoppm{Binary: "pdftoppm", Timeout: timeout}
}

var pageNumRe = regexp.MustCompile(`-(\d+)\.png$`)

// Rasterize renders pages 1..maxPages at 72*scale dpi.
func (p *Pdftoppm) Rasterize(ctx context.Context, pdf []byte, maxPages int, scale float64) ([][]byte, error) {
	bin, err := exec.LookPath(p.Binary)
	if err != nil {
		return nil, fmt.Errorf("%s not found in PATH: %w", p.Binary, ErrUnavailable)
	}
	dir, err := os.MkdirTemp("", "studyquiz-raster-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	dpi := int(72 * scale)
	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, bin, "-png", "-r", strconv.Itoa(dpi),
		"-f", "1", "-l", strconv.Itoa(maxPages), in, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %v: %s", err, strings.TrimSpace(stderr.String()))
	}

	files, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	sortPageFiles(files)

	pages := make([][]byte, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read page image: %w", err)
		}
		pages = append(pages, b)
	}
	return pages, nil
}

// sortPageFiles orders pdftoppm output by its page suffix; the suffix width varies with
// the page count.
func sortPageFiles(files []string) {
	sort.SliceStable(files, func(i, j int) bool {
		return pageNum(files[i]) < pageNum(files[j])
	})
}

func pageNum(path string) int {
	m := pageNumRe.FindStringSubmatch(filepath.Base(path))
	if len(m) < 2 {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
