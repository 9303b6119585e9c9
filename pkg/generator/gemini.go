package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
	"github.com/shouni/dreamhouse-image-kit/pkg/utils"
)

var (
	_ ImageGenerator     = (*GeminiGenerator)(nil)
	_ ImageGeneratorCore = (*GeminiImageCore)(nil)
)

// GeminiGenerator は、写真とスタイルの選択から 1 枚のイラストを生成するジェネレーターです。
// リトライはクライアント側の設定に任せ、ここでは行いません。
type GeminiGenerator struct {
	imgCore     ImageGeneratorCore
	aiClient    gemini.GenerativeModel
	prompts     PromptBuilder
	model       string
	aspectRatio string
}

// NewGeminiGenerator は GeminiGenerator を初期化するのだ。
func NewGeminiGenerator(
	core ImageGeneratorCore,
	aiClient gemini.GenerativeModel,
	prompts PromptBuilder,
	model string,
	aspectRatio string,
) (*GeminiGenerator, error) {
	if core == nil {
		return nil, fmt.Errorf("core (ImageGeneratorCore) is required")
	}
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (gemini.GenerativeModel) is required")
	}
	if prompts == nil {
		return nil, fmt.Errorf("prompts (PromptBuilder) is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if aspectRatio == "" {
		aspectRatio = DefaultAspectRatio
	}

	return &GeminiGenerator{
		imgCore:     core,
		aiClient:    aiClient,
		prompts:     prompts,
		model:       model,
		aspectRatio: aspectRatio,
	}, nil
}

// Generate は正規化済みの写真とテーマ・雰囲気・ポーズから画像を生成します。
// 失敗は常に種別付きの *domain.GenerationError で返します。
func (g *GeminiGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResponse, error) {
	prompt, err := g.prompts.Build(domain.Selection{Theme: req.Theme, Vibe: req.Vibe, Pose: req.Pose})
	if err != nil {
		return nil, &domain.GenerationError{Kind: domain.FailureInvalidInput, Err: fmt.Errorf("プロンプトの生成に失敗しました: %w", err)}
	}

	imgPart, err := g.imgCore.ToPart(req.Image)
	if err != nil {
		return nil, &domain.GenerationError{Kind: domain.FailureInvalidInput, Err: err}
	}
	parts := []*genai.Part{{Text: prompt}, imgPart}

	aspectRatio := req.AspectRatio
	if aspectRatio == "" {
		aspectRatio = g.aspectRatio
	}

	slog.InfoContext(ctx, "Gemini画像生成リクエスト準備中", "model", g.model, "aspect_ratio", aspectRatio, "image_bytes", req.Image.Size())

	resp, err := g.aiClient.GenerateWithParts(ctx, g.model, parts, gemini.GenerateOptions{
		AspectRatio: aspectRatio,
		Seed:        req.Seed,
	})
	if err != nil {
		return nil, wrapFailure(err)
	}

	out, err := g.imgCore.ParseToResponse(resp, utils.DereferenceSeed(req.Seed))
	if err != nil {
		return nil, wrapFailure(err)
	}

	return &domain.ImageResponse{
		Data:     out.Data,
		MimeType: out.MimeType,
		URL:      toDataURI(out.Data, out.MimeType),
		UsedSeed: out.UsedSeed,
	}, nil
}

// wrapFailure はエラーを種別付きの GenerationError にするのだ。既に種別があればそのまま返す。
func wrapFailure(err error) error {
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		return err
	}
	return &domain.GenerationError{Kind: Classify(err), Err: fmt.Errorf("Gemini画像生成エラー: %w", err)}
}
