package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyquiz/internal/models"
)

type memBlob struct {
	objects map[string][]byte
	gets    int
}

func (m *memBlob) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = b
	return "", nil
}

func (m *memBlob) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.gets++
	b, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memBlob) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func TestFSStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFSStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Put(ctx, "files/u/f/notes.txt", strings.NewReader("hello"), "text/plain")
	require.NoError(t, err)

	rc, err := s.Get(ctx, "files/u/f/notes.txt")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "hello", string(b))

	require.NoError(t, s.Delete(ctx, "files/u/f/notes.txt"))
	require.NoError(t, s.Delete(ctx, "files/u/f/notes.txt"))
	_, err = s.Get(ctx, "files/u/f/notes.txt")
	assert.Error(t, err)
}

type brokenReader struct{}

func (brokenReader) Read(p []byte) (int, error) { return 0, errors.New("connection reset") }

func TestFSStorePutFailureRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFSStore(dir)
	require.NoError(t, err)

	r := io.MultiReader(strings.NewReader("partial"), brokenReader{})
	_, err = s.Put(context.Background(), "files/u/f/big.pdf", r, "application/pdf")

	require.Error(t, err)
	_, err = os.Stat(filepath.Join(dir, "files", "u", "f", "big.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestFSStoreKeepsKeysInsideBase(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFSStore(filepath.Join(dir, "base"))
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "../../escape.txt", strings.NewReader("x"), "")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "base", "escape.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestObjectKey(t *testing.T) {
	u, f := uuid.New(), uuid.New()
	assert.Equal(t, "files/"+u.String()+"/"+f.String()+"/notes.pdf", ObjectKey(u, f, `C:\Users\me\notes.pdf`))
	assert.Equal(t, "files/"+u.String()+"/"+f.String()+"/file", ObjectKey(u, f, ""))
}

func TestFetcherOrder(t *testing.T) {
	primary := &memBlob{}
	secondary := &memBlob{objects: map[string][]byte{"k": []byte("from secondary")}}
	f := NewFetcher(time.Second, primary, nil, secondary)

	data, err := f.Fetch(context.Background(), models.File{ID: uuid.New(), StorageKey: "k"})

	require.NoError(t, err)
	assert.Equal(t, "from secondary", string(data))
	assert.Equal(t, 1, primary.gets)
	assert.Equal(t, 1, secondary.gets)
}

func TestFetcherFallsBackToURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("from url"))
	}))
	defer srv.Close()
	f := NewFetcher(time.Second, &memBlob{})

	data, err := f.Fetch(context.Background(), models.File{ID: uuid.New(), StorageKey: "missing", URL: srv.URL + "/notes.pdf"})

	require.NoError(t, err)
	assert.Equal(t, "from url", string(data))
}

func TestFetcherAggregatesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()
	f := NewFetcher(time.Second, &memBlob{})

	_, err := f.Fetch(context.Background(), models.File{ID: uuid.New(), StorageKey: "missing", URL: srv.URL})

	require.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "no such key")
	assert.Contains(t, err.Error(), "404")
}

func TestFetcherNoLocation(t *testing.T) {
	_, err := NewFetcher(time.Second).Fetch(context.Background(), models.File{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetcherSizeCap(t *testing.T) {
	f := NewFetcher(time.Second, &memBlob{objects: map[string][]byte{"k": bytes.Repeat([]byte("x"), 11)}})
	f.MaxBytes = 10

	_, err := f.Fetch(context.Background(), models.File{ID: uuid.New(), StorageKey: "k"})

	assert.ErrorIs(t, err, ErrFetchFailed)
}
