package gallery

import (
	"context"
	"io"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
)

// --- Mocks ---

type mockHTTPClient struct {
	data  []byte
	err   error
	calls int
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.calls++
	return m.data, m.err
}

type written struct {
	uri         string
	data        []byte
	contentType string
}

type mockWriter struct {
	writes []written
	err    error
}

func (m *mockWriter) Write(ctx context.Context, uri string, r io.Reader, contentType string) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.writes = append(m.writes, written{uri: uri, data: data, contentType: contentType})
	return nil
}

type stubLister struct {
	items []domain.GalleryItem
	err   error
}

func (s *stubLister) ListRecent(ctx context.Context) ([]domain.GalleryItem, error) {
	return s.items, s.err
}
