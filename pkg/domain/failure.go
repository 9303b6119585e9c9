package domain

import (
	"fmt"
	"net/http"
)

// FailureKind は画像生成コラボレーターの失敗種別です。
type FailureKind string

const (
	FailureQuotaExceeded FailureKind = "quota-exceeded"
	FailureRateLimited   FailureKind = "rate-limited"
	FailureInvalidInput  FailureKind = "invalid-input"
	FailureAuth          FailureKind = "auth-failure"
	FailureContentPolicy FailureKind = "content-policy-violation"
	FailureUnknown       FailureKind = "unknown"
)

type failureInfo struct {
	message string
	status  int
}

var failures = map[FailureKind]failureInfo{
	FailureQuotaExceeded: {"利用上限に達しました。時間をおいてもういちどためしてください。", http.StatusTooManyRequests},
	FailureRateLimited:   {"リクエストが混み合っています。少し待ってからもういちどためしてください。", http.StatusTooManyRequests},
	FailureInvalidInput:  {"入力内容を確認してください。画像やテーマを変えるとうまくいくかもしれません。", http.StatusBadRequest},
	FailureAuth:          {"サーバーの設定に問題があります。管理者に連絡してください。", http.StatusInternalServerError},
	FailureContentPolicy: {"この内容では画像を生成できませんでした。テーマや写真を変えてためしてください。", http.StatusUnprocessableEntity},
	FailureUnknown:       {"画像の生成に失敗しました。もういちどためしてください。", http.StatusBadGateway},
}

// Message は利用者向けのメッセージを返します。
func (k FailureKind) Message() string {
	if info, ok := failures[k]; ok {
		return info.message
	}
	return failures[FailureUnknown].message
}

// Status は HTTP ステータスコードを返します。
// 利用者が直せるものは 4xx、スロットリングは 429、サービス側の失敗は 5xx です。
func (k FailureKind) Status() int {
	if info, ok := failures[k]; ok {
		return info.status
	}
	return failures[FailureUnknown].status
}

// GenerationError は画像生成の失敗を種別付きで表します。自動リトライは行いません。
type GenerationError struct {
	Kind FailureKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("画像生成に失敗しました (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
