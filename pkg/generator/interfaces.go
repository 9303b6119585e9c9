package generator

import (
	"context"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// ImageGenerator はビジネスロジック層が利用する統合窓口です。
type ImageGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResponse, error)
}

// ImageGeneratorCore は、リクエスト用のパーツ作成とレスポンス解析を担当します。
type ImageGeneratorCore interface {
	// ToPart は、正規化済みの画像を InlineData パーツに変換します。
	ToPart(asset *domain.ImageAsset) (*genai.Part, error)
	// ParseToResponse は、レスポンスから最初の画像を取り出します。
	ParseToResponse(resp *gemini.Response, seed int64) (*ImageOutput, error)
}

// PromptBuilder は、検証済みの選択内容からプロンプトを組み立てます。
type PromptBuilder interface {
	Build(sel domain.Selection) (string, error)
}
