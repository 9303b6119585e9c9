package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vincent-petithory/dataurl"
	"google.golang.org/genai"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
)

func newRequest() domain.GenerationRequest {
	return domain.GenerationRequest{
		Image: &domain.ImageAsset{Name: "face.jpg", Data: jpegBytes, MimeType: domain.MimeJPEG},
		Theme: "お菓子の家",
		Vibe:  domain.VibeEnergetic,
		Pose:  domain.PoseWave,
	}
}

func TestGeminiGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	modelName := "gemini-test-image"

	t.Run("成功: プロンプトと写真がパーツとして渡され、data URIが返るのだ", func(t *testing.T) {
		var seedVal int64 = 777
		req := newRequest()
		req.Seed = &seedVal

		ai := &mockAIClient{
			generateWithPartsFunc: func(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
				assert.Equal(t, modelName, model)
				require.Len(t, parts, 2)
				assert.Equal(t, "PROMPT", parts[0].Text)
				assert.Equal(t, "image/jpeg", parts[1].InlineData.MIMEType)
				assert.Equal(t, DefaultAspectRatio, opts.AspectRatio)
				require.NotNil(t, opts.Seed)
				assert.Equal(t, seedVal, *opts.Seed)
				return imageResponse("image/png", []byte("generated")), nil
			},
		}
		prompts := &mockPrompts{prompt: "PROMPT"}

		gen, err := NewGeminiGenerator(NewGeminiImageCore(), ai, prompts, modelName, "")
		require.NoError(t, err)

		resp, err := gen.Generate(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, seedVal, resp.UsedSeed)
		assert.Equal(t, "image/png", resp.MimeType)
		assert.True(t, strings.HasPrefix(resp.URL, "data:image/png;base64,"))

		du, err := dataurl.DecodeString(resp.URL)
		require.NoError(t, err)
		assert.Equal(t, []byte("generated"), du.Data)

		assert.Equal(t, domain.Selection{Theme: "お菓子の家", Vibe: domain.VibeEnergetic, Pose: domain.PoseWave}, prompts.last)
	})

	t.Run("リクエストの縦横比が優先されるのだ", func(t *testing.T) {
		req := newRequest()
		req.AspectRatio = "1:1"
		ai := &mockAIClient{
			generateWithPartsFunc: func(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
				assert.Equal(t, "1:1", opts.AspectRatio)
				assert.Nil(t, opts.Seed)
				return imageResponse("image/png", []byte("x")), nil
			},
		}
		gen, _ := NewGeminiGenerator(NewGeminiImageCore(), ai, &mockPrompts{prompt: "p"}, "", "16:9")

		_, err := gen.Generate(ctx, req)
		require.NoError(t, err)
	})

	t.Run("失敗: AIクライアントのエラーは種別付きで返り、リトライしないのだ", func(t *testing.T) {
		ai := &mockAIClient{
			generateWithPartsFunc: func(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
				return nil, genai.APIError{Code: 429, Message: "quota exceeded for this project"}
			},
		}
		gen, _ := NewGeminiGenerator(NewGeminiImageCore(), ai, &mockPrompts{prompt: "p"}, modelName, "")

		_, err := gen.Generate(ctx, newRequest())
		var genErr *domain.GenerationError
		require.True(t, errors.As(err, &genErr))
		assert.Equal(t, domain.FailureQuotaExceeded, genErr.Kind)
		assert.Contains(t, err.Error(), "Gemini画像生成エラー")
		assert.Equal(t, 1, ai.calls)
	})

	t.Run("失敗: 安全フィルターで止まった場合はcontent-policyなのだ", func(t *testing.T) {
		ai := &mockAIClient{
			generateWithPartsFunc: func(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
				return &gemini.Response{RawResponse: &genai.GenerateContentResponse{
					Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
				}}, nil
			},
		}
		gen, _ := NewGeminiGenerator(NewGeminiImageCore(), ai, &mockPrompts{prompt: "p"}, modelName, "")

		_, err := gen.Generate(ctx, newRequest())
		assert.Equal(t, domain.FailureContentPolicy, Classify(err))
	})

	t.Run("失敗: 画像がなければinvalid-inputで、APIは呼ばないのだ", func(t *testing.T) {
		ai := &mockAIClient{}
		gen, _ := NewGeminiGenerator(NewGeminiImageCore(), ai, &mockPrompts{prompt: "p"}, modelName, "")

		req := newRequest()
		req.Image = nil
		_, err := gen.Generate(ctx, req)
		assert.Equal(t, domain.FailureInvalidInput, Classify(err))
		assert.Zero(t, ai.calls)
	})

	t.Run("失敗: プロンプト生成エラーはinvalid-inputなのだ", func(t *testing.T) {
		ai := &mockAIClient{}
		gen, _ := NewGeminiGenerator(NewGeminiImageCore(), ai, &mockPrompts{err: errors.New("missing key")}, modelName, "")

		_, err := gen.Generate(ctx, newRequest())
		assert.Equal(t, domain.FailureInvalidInput, Classify(err))
		assert.Zero(t, ai.calls)
	})
}

func TestNewGeminiGenerator(t *testing.T) {
	t.Run("nilチェック: 依存関係が足りない場合はエラーを返すのだ", func(t *testing.T) {
		_, err := NewGeminiGenerator(nil, nil, nil, "model", "")
		assert.Error(t, err)
		_, err = NewGeminiGenerator(NewGeminiImageCore(), &mockAIClient{}, nil, "model", "")
		assert.Error(t, err)
	})

	t.Run("モデルと縦横比の既定値が入るのだ", func(t *testing.T) {
		gen, err := NewGeminiGenerator(NewGeminiImageCore(), &mockAIClient{}, &mockPrompts{}, "", "")
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, gen.model)
		assert.Equal(t, DefaultAspectRatio, gen.aspectRatio)
	})
}
