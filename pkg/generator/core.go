package generator

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
	"github.com/shouni/dreamhouse-image-kit/pkg/utils"
)

// GeminiImageCore は画像生成のリクエスト・レスポンス変換を担う基盤です。
// 状態を持たないため、複数のリクエストで共有できます。
type GeminiImageCore struct{}

// NewGeminiImageCore は GeminiImageCore を初期化します。
func NewGeminiImageCore() *GeminiImageCore {
	return &GeminiImageCore{}
}

// ToPart は画像を genai.Part (InlineData) に変換します。
// MIME タイプは画像の宣言値を優先し、なければ内容から推定します。
func (c *GeminiImageCore) ToPart(asset *domain.ImageAsset) (*genai.Part, error) {
	if asset == nil || len(asset.Data) == 0 {
		return nil, fmt.Errorf("画像データが空です")
	}

	mimeType := string(asset.MimeType)
	if mimeType == "" {
		mimeType = mimetype.Detect(asset.Data).String()
	}
	if !strings.HasPrefix(mimeType, "image/") {
		slog.Warn("MIMEタイプが画像ではないためPartに変換できませんでした", "detected_mime_type", mimeType)
		return nil, fmt.Errorf("画像ではないデータです (MIME: %s)", mimeType)
	}

	return &genai.Part{
		InlineData: &genai.Blob{
			MIMEType: mimeType,
			Data:     asset.Data,
		},
	}, nil
}

// ParseToResponse は Gemini のレスポンスを解析して ImageOutput に変換します。
// 安全フィルター等でブロックされた場合は FailureContentPolicy の *domain.GenerationError を返します。
func (c *GeminiImageCore) ParseToResponse(resp *gemini.Response, seed int64) (*ImageOutput, error) {
	if resp == nil || resp.RawResponse == nil {
		return nil, &domain.GenerationError{Kind: domain.FailureUnknown, Err: fmt.Errorf("Geminiからの有効な応答がありませんでした")}
	}

	if reason := blockReason(resp.RawResponse); reason != "" {
		return nil, &domain.GenerationError{Kind: domain.FailureContentPolicy, Err: fmt.Errorf("プロンプトがブロックされました (BlockReason: %s)", reason)}
	}
	if len(resp.RawResponse.Candidates) == 0 {
		return nil, &domain.GenerationError{Kind: domain.FailureUnknown, Err: fmt.Errorf("Geminiからの有効な応答がありませんでした")}
	}

	// Geminiからの最初の候補 (Candidate) のみを利用する。
	candidate := resp.RawResponse.Candidates[0]

	if out := findImage(candidate, seed); out != nil {
		return out, nil
	}

	// 安全フィルター等によるブロックの確認
	if isPolicyFinish(candidate.FinishReason) {
		return nil, &domain.GenerationError{Kind: domain.FailureContentPolicy, Err: fmt.Errorf("画像生成がブロックされました (FinishReason: %s)", candidate.FinishReason)}
	}
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, &domain.GenerationError{Kind: domain.FailureUnknown, Err: fmt.Errorf("画像生成が異常終了しました (FinishReason: %s)", candidate.FinishReason)}
	}

	if text := candidateText(candidate); text != "" {
		slog.Warn("画像の代わりにテキストが返されました", "text", utils.Truncate(text, 200))
	}
	return nil, &domain.GenerationError{Kind: domain.FailureUnknown, Err: fmt.Errorf("画像データが見つかりませんでした")}
}
