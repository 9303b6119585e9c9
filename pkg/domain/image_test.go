package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMimeType_IsStandard(t *testing.T) {
	t.Run("JPEG/PNG/WebP は標準フォーマットなのだ", func(t *testing.T) {
		for _, m := range []MimeType{MimeJPEG, MimePNG, MimeWebP} {
			assert.True(t, m.IsStandard(), m)
		}
	})

	t.Run("HEIC や未知の形式は標準ではないのだ", func(t *testing.T) {
		assert.False(t, MimeHEIC.IsStandard())
		assert.False(t, MimeType("image/gif").IsStandard())
	})
}

func TestImageAsset_Size(t *testing.T) {
	var nilAsset *ImageAsset
	assert.Equal(t, 0, nilAsset.Size())
	assert.Equal(t, 3, (&ImageAsset{Data: []byte{1, 2, 3}}).Size())
}

func TestParseChoices(t *testing.T) {
	t.Run("日本語ラベルと英語識別子の両方を受け付けるのだ", func(t *testing.T) {
		v, ok := ParseVibe("元気")
		assert.True(t, ok)
		assert.Equal(t, VibeEnergetic, v)

		v, ok = ParseVibe("Cool")
		assert.True(t, ok)
		assert.Equal(t, VibeCool, v)

		p, ok := ParsePose("腰に手")
		assert.True(t, ok)
		assert.Equal(t, PoseHandOnHip, p)
		assert.Equal(t, "腰に手", p.Label())
	})

	t.Run("未知の値は拒否するのだ", func(t *testing.T) {
		_, ok := ParseVibe("眠い")
		assert.False(t, ok)
		_, ok = ParsePose("ジャンプ")
		assert.False(t, ok)
	})

	t.Run("Decision の既定は Abort なのだ", func(t *testing.T) {
		assert.Equal(t, DecisionProceed, ParseDecision("Proceed"))
		assert.Equal(t, DecisionRetry, ParseDecision("retry"))
		assert.Equal(t, DecisionAbort, ParseDecision(""))
		assert.Equal(t, DecisionAbort, ParseDecision("whatever"))
	})
}

func TestFailureKind(t *testing.T) {
	tests := []struct {
		kind   FailureKind
		status int
	}{
		{FailureQuotaExceeded, http.StatusTooManyRequests},
		{FailureRateLimited, http.StatusTooManyRequests},
		{FailureInvalidInput, http.StatusBadRequest},
		{FailureContentPolicy, http.StatusUnprocessableEntity},
		{FailureAuth, http.StatusInternalServerError},
		{FailureUnknown, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.kind.Status())
			assert.NotEmpty(t, tt.kind.Message())
		})
	}

	t.Run("未知の種別は unknown として扱うのだ", func(t *testing.T) {
		assert.Equal(t, FailureUnknown.Status(), FailureKind("mystery").Status())
		assert.Equal(t, FailureUnknown.Message(), FailureKind("mystery").Message())
	})
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("boom")

	err := fmt.Errorf("wrap: %w", &TranscodeError{Name: "a.heic", Err: cause})
	var te *TranscodeError
	assert.True(t, errors.As(err, &te))
	assert.ErrorIs(t, err, cause)

	assert.ErrorIs(t, &StorageError{Op: "insert", Err: cause}, cause)
	assert.ErrorIs(t, &CompressionError{Name: "a.jpg", Err: cause}, cause)

	genErr := &GenerationError{Kind: FailureRateLimited, Err: cause}
	assert.ErrorIs(t, genErr, cause)
	assert.Contains(t, genErr.Error(), "rate-limited")
}
