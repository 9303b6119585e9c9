package generator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.FailureKind
	}{
		{"nil", nil, ""},
		{"クォータ超過", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "You exceeded your current quota"}, domain.FailureQuotaExceeded},
		{"レート制限", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "Too many requests"}, domain.FailureRateLimited},
		{"リトライ後にラップされたレート制限", fmt.Errorf("retry: %w", genai.APIError{Code: 429, Message: "slow down"}), domain.FailureRateLimited},
		{"認証エラー 401", genai.APIError{Code: 401, Status: "UNAUTHENTICATED"}, domain.FailureAuth},
		{"権限エラー 403", genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, domain.FailureAuth},
		{"不正なAPIキー", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."}, domain.FailureAuth},
		{"不正な入力", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "Unable to process input image"}, domain.FailureInvalidInput},
		{"リクエストが大きすぎる", genai.APIError{Code: 413, Message: "Request payload size exceeds the limit"}, domain.FailureInvalidInput},
		{"安全ポリシー違反", genai.APIError{Code: 400, Message: "The request was blocked by safety settings"}, domain.FailureContentPolicy},
		{"サーバーエラー", genai.APIError{Code: 503, Status: "UNAVAILABLE"}, domain.FailureUnknown},
		{"APIキー未設定", fmt.Errorf("init: %w", gemini.ErrAPIKeyRequired), domain.FailureAuth},
		{"空のプロンプト", gemini.ErrEmptyPrompt, domain.FailureInvalidInput},
		{"空のAPIResponseError", &gemini.APIResponseError{}, domain.FailureUnknown},
		{"種別付きのエラーはそのまま", &domain.GenerationError{Kind: domain.FailureContentPolicy, Err: errors.New("x")}, domain.FailureContentPolicy},
		{"タイムアウト", context.DeadlineExceeded, domain.FailureUnknown},
		{"その他", errors.New("boom"), domain.FailureUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
