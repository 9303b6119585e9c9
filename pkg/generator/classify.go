package generator

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
)

// Classify は Gemini 呼び出しのエラーを FailureKind に分類します。
func Classify(err error) domain.FailureKind {
	if err == nil {
		return ""
	}

	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}

	if errors.Is(err, gemini.ErrAPIKeyRequired) {
		return domain.FailureAuth
	}
	if errors.Is(err, gemini.ErrEmptyPrompt) {
		return domain.FailureInvalidInput
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr)
	}

	var respErr *gemini.APIResponseError
	if errors.As(err, &respErr) {
		if strings.Contains(respErr.Error(), "ブロック") {
			return domain.FailureContentPolicy
		}
		return domain.FailureUnknown
	}

	return domain.FailureUnknown
}

func classifyAPIError(apiErr genai.APIError) domain.FailureKind {
	msg := strings.ToLower(apiErr.Message)

	switch {
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED":
		if strings.Contains(msg, "quota") {
			return domain.FailureQuotaExceeded
		}
		return domain.FailureRateLimited
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden,
		apiErr.Status == "UNAUTHENTICATED" || apiErr.Status == "PERMISSION_DENIED":
		return domain.FailureAuth
	case apiErr.Code == http.StatusBadRequest && strings.Contains(msg, "api key"):
		// 不正な API キーは 400 INVALID_ARGUMENT で返ってくる
		return domain.FailureAuth
	case apiErr.Code == http.StatusBadRequest,
		apiErr.Code == http.StatusRequestEntityTooLarge,
		apiErr.Code == http.StatusUnprocessableEntity:
		if strings.Contains(msg, "safety") || strings.Contains(msg, "policy") {
			return domain.FailureContentPolicy
		}
		return domain.FailureInvalidInput
	}
	return domain.FailureUnknown
}
