package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"studyquiz/internal/models"
)

// ErrFetchFailed means no strategy could read a file's bytes.
var ErrFetchFailed = errors.New("failed to fetch file")

const (
	DefaultFetchTimeout = 30 * time.Second
	// DefaultMaxFetchBytes caps a download; uploads are limited well below it.
	DefaultMaxFetchBytes = 32 << 20
)

type strategy struct {
	name string
	run  func(ctx context.Context, f models.File) ([]byte, error)
}

// Fetcher reads the bytes of a stored file, trying the blob stores in order and then the
// file's public URL.
type Fetcher struct {
	Stores   []Blob
	HTTP     *http.Client
	Timeout  time.Duration
	MaxBytes int64
}

// NewFetcher returns a Fetcher over stores, skipping nil entries.
func NewFetcher(timeout time.Duration, stores ...Blob) *Fetcher {
	f := &Fetcher{HTTP: &http.Client{}, Timeout: timeout, MaxBytes: DefaultMaxFetchBytes}
	for _, s := range stores {
		if s != nil {
			f.Stores = append(f.Stores, s)
		}
	}
	return f
}

// Fetch returns the file's bytes from the first strategy that succeeds. Each strategy is
// tried once and bounded by Timeout.
func (f *Fetcher) Fetch(ctx context.Context, file models.File) ([]byte, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	var errs []error
	for _, s := range f.strategies(file) {
		sctx, cancel := context.WithTimeout(ctx, timeout)
		data, err := s.run(sctx, file)
		cancel()
		if err == nil {
			log.Printf("INFO: Fetched file %s via %s (%d bytes)", file.ID, s.name, len(data))
			return data, nil
		}
		log.Printf("WARN: Fetching file %s via %s failed: %v", file.ID, s.name, err)
		errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		errs = append(errs, errors.New("no storage location recorded"))
	}
	return nil, fmt.Errorf("%w %s: %w", ErrFetchFailed, file.ID, errors.Join(errs...))
}

func (f *Fetcher) strategies(file models.File) []strategy {
	var out []strategy
	if file.StorageKey != "" {
		for i, b := range f.Stores {
			out = append(out, strategy{
				name: fmt.Sprintf("store %d", i+1),
				run: func(ctx context.Context, file models.File) ([]byte, error) {
					rc, err := b.Get(ctx, file.StorageKey)
					if err != nil {
						return nil, err
					}
					defer rc.Close()
					return f.readCapped(rc)
				},
			})
		}
	}
	if strings.HasPrefix(file.URL, "http://") || strings.HasPrefix(file.URL, "https://") {
		out = append(out, strategy{name: "public url", run: f.download})
	}
	return out
}

func (f *Fetcher) download(ctx context.Context, file models.File) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.URL, nil)
	if err != nil {
		return nil, err
	}
	client := f.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return f.readCapped(resp.Body)
}

func (f *Fetcher) readCapped(r io.Reader) ([]byte, error) {
	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxFetchBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds %d bytes", limit)
	}
	return data, nil
}
