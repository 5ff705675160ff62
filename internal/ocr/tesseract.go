package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Tesseract drives the tesseract CLI.
type Tesseract struct {
	Binary  string
	Lang    string
	Timeout time.Duration
}

// NewTesseract returns an engine for lang with a per-page timeout.
func NewTesseract(lang string, timeout time.Duration) *Tesseract {
	if lang == "" {
		lang = "eng"
	}
	return &Tesseract{Binary: "tesseract", Lang: lang, Timeout: timeout}
}

// Open checks the binary is installed and prepares a scratch directory for the session.
func (t *Tesseract) Open(ctx context.Context) (Session, error) {
	bin, err := exec.LookPath(t.Binary)
	if err != nil {
		return nil, fmt.Errorf("%s not found in PATH: %w", t.Binary, ErrUnavailable)
	}
	dir, err := os.MkdirTemp("", "studyquiz-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	return &tesseractSession{engine: t, bin: bin, dir: dir}, nil
}

type tesseractSession struct {
	engine *Tesseract
	bin    string
	dir    string
	n      int
}

func (s *tesseractSession) Recognize(ctx context.Context, img []byte) (string, error) {
	s.n++
	in := filepath.Join(s.dir, fmt.Sprintf("page-%03d.img", s.n))
	if err := os.WriteFile(in, img, 0o600); err != nil {
		return "", fmt.Errorf("failed to write page image: %w", err)
	}

	if s.engine.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.engine.Timeout)
		defer cancel()
	}
	args := []string{in, "stdout", "--psm", "3"}
	if s.engine.Lang != "" {
		args = append(args, "-l", s.engine.Lang)
	}
	cmd := exec.CommandContext(ctx, s.bin, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out.String(), nil
}

func (s *tesseractSession) Close() error {
	return os.RemoveAll(s.dir)
}
