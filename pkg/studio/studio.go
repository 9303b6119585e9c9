package studio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
	"github.com/shouni/dreamhouse-image-kit/pkg/normalizer"
	"github.com/shouni/dreamhouse-image-kit/pkg/validation"
)

// FormValidator はフォーム入力を検証します。
type FormValidator interface {
	Validate(form validation.Form) (*domain.Selection, error)
}

// ImageNormalizer は写真をアップロード可能な形に整えます。
type ImageNormalizer interface {
	Normalize(ctx context.Context, in normalizer.Input, decide normalizer.DecisionFunc) (*normalizer.Result, error)
}

// ImageGenerator は正規化済みの写真からイラストを生成します。
type ImageGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResponse, error)
}

// GalleryWriter は生成結果をギャラリーに保存します。
type GalleryWriter interface {
	Insert(ctx context.Context, theme, vibe, pose, url string) (*domain.GalleryItem, error)
}

// Request は 1 回の生成に必要な入力一式です。
type Request struct {
	Form  validation.Form
	Input normalizer.Input
	// Decide は HEIC の変換に失敗したときの判断です。nil なら中止します。
	Decide      normalizer.DecisionFunc
	AspectRatio string
	Seed        *int64
}

// Result は生成結果です。
type Result struct {
	Selection  domain.Selection
	Normalized *normalizer.Result
	Image      *domain.ImageResponse
}

// Studio は 検証 → 正規化 → 生成 → (任意で) 保存 の流れをまとめます。
type Studio struct {
	validator  FormValidator
	normalizer ImageNormalizer
	generator  ImageGenerator
	gallery    GalleryWriter
}

// New は Studio を初期化します。gallery は nil でもよく、その場合 Save はエラーを返します。
func New(v FormValidator, n ImageNormalizer, g ImageGenerator, gallery GalleryWriter) (*Studio, error) {
	if v == nil {
		return nil, fmt.Errorf("validator (FormValidator) is required")
	}
	if n == nil {
		return nil, fmt.Errorf("normalizer (ImageNormalizer) is required")
	}
	if g == nil {
		return nil, fmt.Errorf("generator (ImageGenerator) is required")
	}
	return &Studio{validator: v, normalizer: n, generator: g, gallery: gallery}, nil
}

// Generate はフォームを検証し、写真を正規化してからイラストを生成します。
// フォームの誤りは validation.Errors、正規化の失敗は domain のセンチネルエラー、
// 生成の失敗は *domain.GenerationError として返します。
func (s *Studio) Generate(ctx context.Context, req Request) (*Result, error) {
	sel, err := s.validator.Validate(req.Form)
	if err != nil {
		return nil, err
	}

	norm, err := s.normalizer.Normalize(ctx, req.Input, req.Decide)
	if err != nil {
		return nil, fmt.Errorf("写真の準備に失敗しました: %w", err)
	}
	slog.InfoContext(ctx, "写真を正規化しました",
		"name", norm.Asset.Name,
		"format", norm.Format,
		"original_bytes", norm.OriginalSize,
		"bytes", norm.Asset.Size(),
		"transcoded", norm.Transcoded,
		"fell_back", norm.FellBack,
		"compressed", norm.Compressed,
	)

	img, err := s.generator.Generate(ctx, domain.GenerationRequest{
		Image:       norm.Asset,
		Theme:       sel.Theme,
		Vibe:        sel.Vibe,
		Pose:        sel.Pose,
		AspectRatio: req.AspectRatio,
		Seed:        req.Seed,
	})
	if err != nil {
		return nil, err
	}

	return &Result{Selection: *sel, Normalized: norm, Image: img}, nil
}

// Save は生成結果をギャラリーに保存します。雰囲気とポーズは表示用のラベルで保存します。
func (s *Studio) Save(ctx context.Context, res *Result) (*domain.GalleryItem, error) {
	if s.gallery == nil {
		return nil, fmt.Errorf("ギャラリーが設定されていません")
	}
	if res == nil || res.Image == nil || res.Image.URL == "" {
		return nil, fmt.Errorf("保存する画像がありません")
	}
	return s.gallery.Insert(ctx, res.Selection.Theme, res.Selection.Vibe.Label(), res.Selection.Pose.Label(), res.Image.URL)
}
