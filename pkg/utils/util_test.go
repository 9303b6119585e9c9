package utils

import (
	"testing"
)

func TestSeedUtils(t *testing.T) {
	t.Run("dereferenceSeed: nil の場合は 0 を返すのだ", func(t *testing.T) {
		if got := DereferenceSeed(nil); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("dereferenceSeed: 値がある場合はその値を返すのだ", func(t *testing.T) {
		var val int64 = 999
		if got := DereferenceSeed(&val); got != 999 {
			t.Errorf("expected 999, got %v", got)
		}
	})
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		mimeType string
		want     string
	}{
		{"image/png", ".png"},
		{"image/jpeg", ".jpg"},
		{"image/webp", ".webp"},
		{"application/x-not-registered", ".bin"},
		{"", ".bin"},
	}
	for _, tt := range tests {
		if got := ExtensionFor(tt.mimeType, ".bin"); got != tt.want {
			t.Errorf("ExtensionFor(%q) = %q, want %q", tt.mimeType, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Run("短い文字列はそのまま返すのだ", func(t *testing.T) {
		if got := Truncate("おうち", 3); got != "おうち" {
			t.Errorf("unexpected: %q", got)
		}
	})

	t.Run("rune単位で切り詰めるのだ", func(t *testing.T) {
		if got := Truncate("お菓子の家です", 4); got != "お菓子の…" {
			t.Errorf("unexpected: %q", got)
		}
	})
}
