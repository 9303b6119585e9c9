package normalizer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"os"
	"sync"
)

// --- Mocks ---

type mockReader struct {
	files   map[string][]byte
	opened  []string
	openErr error
}

func (m *mockReader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	m.opened = append(m.opened, uri)
	if m.openErr != nil {
		return nil, m.openErr
	}
	data, ok := m.files[uri]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockReader) List(ctx context.Context, uri string, fn func(string) error) error {
	return nil
}

type mockHTTPClient struct {
	data    []byte
	err     error
	lastURL string
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.lastURL = url
	return m.data, m.err
}

// countingDecoder は呼び出し回数を数え、results の順に結果を返すデコーダーなのだ。
type countingDecoder struct {
	mu      sync.Mutex
	calls   int
	results []error
	img     image.Image
}

func (d *countingDecoder) Decode(r io.Reader) (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := d.calls
	d.calls++
	if idx < len(d.results) && d.results[idx] != nil {
		return nil, d.results[idx]
	}
	if d.img == nil {
		return nil, errors.New("no image")
	}
	return d.img, nil
}
