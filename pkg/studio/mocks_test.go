package studio

import (
	"context"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
	"github.com/shouni/dreamhouse-image-kit/pkg/normalizer"
)

// --- Mocks ---

type mockNormalizer struct {
	result *normalizer.Result
	err    error
	calls  int
	gotIn  normalizer.Input
}

func (m *mockNormalizer) Normalize(_ context.Context, in normalizer.Input, _ normalizer.DecisionFunc) (*normalizer.Result, error) {
	m.calls++
	m.gotIn = in
	return m.result, m.err
}

type mockGenerator struct {
	resp   *domain.ImageResponse
	err    error
	calls  int
	gotReq domain.GenerationRequest
}

func (m *mockGenerator) Generate(_ context.Context, req domain.GenerationRequest) (*domain.ImageResponse, error) {
	m.calls++
	m.gotReq = req
	return m.resp, m.err
}

type mockGallery struct {
	items []domain.GalleryItem
	err   error
}

func (m *mockGallery) Insert(_ context.Context, theme, vibe, pose, url string) (*domain.GalleryItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	item := domain.GalleryItem{ID: "id-1", Theme: theme, Vibe: vibe, Pose: pose, URL: url}
	m.items = append(m.items, item)
	return &item, nil
}
