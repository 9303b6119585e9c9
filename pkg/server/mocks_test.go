package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
	"github.com/shouni/dreamhouse-image-kit/pkg/gallery"
	"github.com/shouni/dreamhouse-image-kit/pkg/studio"
)

// --- Mocks ---

type mockStudio struct {
	generateFunc func(ctx context.Context, req studio.Request) (*studio.Result, error)
	gotReq       studio.Request
	gallery      *mockGallery
}

func (m *mockStudio) Generate(ctx context.Context, req studio.Request) (*studio.Result, error) {
	m.gotReq = req
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return &studio.Result{
		Selection: domain.Selection{Theme: "お菓子の家", Vibe: domain.VibeEnergetic, Pose: domain.PoseWave},
		Image:     &domain.ImageResponse{URL: "data:image/png;base64,aW1n", MimeType: "image/png", UsedSeed: 7},
	}, nil
}

func (m *mockStudio) Save(ctx context.Context, res *studio.Result) (*domain.GalleryItem, error) {
	return m.gallery.Insert(ctx, res.Selection.Theme, res.Selection.Vibe.Label(), res.Selection.Pose.Label(), res.Image.URL)
}

// mockGallery はメモリ上のギャラリーです。
type mockGallery struct {
	mu    sync.Mutex
	items []domain.GalleryItem
	seq   int
	err   error
}

func (m *mockGallery) Insert(_ context.Context, theme, vibe, pose, url string) (*domain.GalleryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.seq++
	item := domain.GalleryItem{
		ID:        fmt.Sprintf("item-%d", m.seq),
		URL:       url,
		Theme:     theme,
		Vibe:      vibe,
		Pose:      pose,
		CreatedAt: time.Unix(int64(m.seq), 0).UTC(),
	}
	m.items = append([]domain.GalleryItem{item}, m.items...)
	if len(m.items) > domain.MaxGalleryItems {
		m.items = m.items[:domain.MaxGalleryItems]
	}
	return &item, nil
}

func (m *mockGallery) ListRecent(context.Context) ([]domain.GalleryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.GalleryItem{}, m.items...), nil
}

func (m *mockGallery) Get(_ context.Context, id string) (*domain.GalleryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
}

func (m *mockGallery) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

func (m *mockGallery) ClearAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.items = nil
	return nil
}

type mockResolver struct {
	img *gallery.Image
	err error
}

func (m *mockResolver) Resolve(context.Context, string) (*gallery.Image, error) {
	return m.img, m.err
}
