package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
	"github.com/shouni/dreamhouse-image-kit/pkg/validation"
)

const (
	kindValidation       = "validation"
	kindUnsupported      = "unsupported-format"
	kindFileTooLarge     = "file-too-large"
	kindNormalizeAborted = "normalize-aborted"
	kindNotFound         = "not-found"
	kindStorage          = "storage"
	kindTimeout          = "timeout"
	kindInternal         = "internal"
)

// HTTPError は HTTP ステータスと利用者向けメッセージを持つエラーです。
type HTTPError struct {
	cause   error
	Code    int
	Message string
	Kind    string
	Fields  validation.Errors
}

func (e *HTTPError) Error() string { return e.Message }

func (e *HTTPError) Unwrap() error { return e.cause }

func newHTTPError(code int, kind, message string, cause error) *HTTPError {
	return &HTTPError{cause: cause, Code: code, Kind: kind, Message: message}
}

// errorBody はエラー応答の JSON です。
type errorBody struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind,omitempty"`
	Fields validation.Errors `json:"fields,omitempty"`
}

// toHTTPError はドメインのエラーを HTTP 応答用に変換します。
func toHTTPError(err error) *HTTPError {
	var (
		httpErr  *HTTPError
		vErrs    validation.Errors
		genErr   *domain.GenerationError
		storeErr *domain.StorageError
		maxErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &vErrs):
		he := newHTTPError(http.StatusBadRequest, kindValidation, "入力内容を確認してください。", err)
		he.Fields = vErrs
		return he
	case errors.As(err, &maxErr), errors.Is(err, domain.ErrFileTooLarge):
		return newHTTPError(http.StatusRequestEntityTooLarge, kindFileTooLarge, "ファイルサイズが大きすぎます。6MB以下の画像を選んでください。", err)
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return newHTTPError(http.StatusUnsupportedMediaType, kindUnsupported, "JPEG、PNG、WebP、HEIC形式の画像を選んでください。", err)
	case errors.Is(err, domain.ErrNormalizeAborted):
		return newHTTPError(http.StatusUnprocessableEntity, kindNormalizeAborted, "HEIC画像を変換できませんでした。JPEGかPNGで保存しなおしてからためしてください。", err)
	case errors.As(err, &genErr):
		return newHTTPError(genErr.Kind.Status(), string(genErr.Kind), genErr.Kind.Message(), err)
	case errors.Is(err, domain.ErrItemNotFound):
		return newHTTPError(http.StatusNotFound, kindNotFound, "指定されたアイテムは見つかりませんでした。", err)
	case errors.Is(err, context.DeadlineExceeded):
		return newHTTPError(http.StatusGatewayTimeout, kindTimeout, "時間内に処理が終わりませんでした。もういちどためしてください。", err)
	case errors.As(err, &storeErr):
		return newHTTPError(http.StatusInternalServerError, kindStorage, "ギャラリーの読み書きに失敗しました。", err)
	}
	return newHTTPError(http.StatusInternalServerError, kindInternal, "サーバー内部でエラーが発生しました。", err)
}
