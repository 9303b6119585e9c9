package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/manifoldco/promptui"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
	"github.com/shouni/dreamhouse-image-kit/pkg/normalizer"
)

const (
	fallbackAsk     = "ask"
	fallbackProceed = "proceed"
	fallbackAbort   = "abort"
	fallbackRetry   = "retry"
)

// parseFallback は --heic-fallback の値を DecisionFunc に変換します。
func parseFallback(v string) (normalizer.DecisionFunc, error) {
	switch v {
	case fallbackAsk:
		return askDecision, nil
	case fallbackProceed:
		return normalizer.Always(domain.DecisionProceed), nil
	case fallbackAbort:
		return normalizer.Always(domain.DecisionAbort), nil
	case fallbackRetry:
		return normalizer.Always(domain.DecisionRetry), nil
	}
	return nil, fmt.Errorf("--heic-fallback には ask, proceed, abort, retry のいずれかを指定してください: %q", v)
}

var decisionItems = []struct {
	label    string
	decision domain.Decision
}{
	{"元の形式のまま続行する", domain.DecisionProceed},
	{"もう一度変換してみる", domain.DecisionRetry},
	{"中止する", domain.DecisionAbort},
}

// askDecision は変換に失敗したときに続行方法を端末で選ばせます。
// 端末が使えない場合は中止します。
func askDecision(ctx context.Context, tErr *domain.TranscodeError, attempt int) domain.Decision {
	labels := make([]string, len(decisionItems))
	for i, item := range decisionItems {
		labels[i] = item.label
	}

	sel := promptui.Select{
		Label: fmt.Sprintf("HEIC 画像を変換できませんでした (%d 回目: %v)。どうしますか", attempt, tErr.Err),
		Items: labels,
	}
	idx, _, err := sel.Run()
	if err != nil {
		slog.WarnContext(ctx, "選択を受け付けられなかったため中止します", "error", err)
		return domain.DecisionAbort
	}
	return decisionItems[idx].decision
}
