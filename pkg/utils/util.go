package utils

import "github.com/gabriel-vasile/mimetype"

// DereferenceSeed は、int64のポインタを安全にデリファレンスします。
// ポインタがnilの場合は0を返します。
func DereferenceSeed(seed *int64) int64 {
	if seed == nil {
		return 0
	}
	return *seed
}

// ExtensionFor は MIME タイプに対応する拡張子 (".png" など) を返すのだ。
// 判別できない場合は fallback を返します。
func ExtensionFor(mimeType, fallback string) string {
	if m := mimetype.Lookup(mimeType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return fallback
}

// Truncate は s を最大 n 文字 (rune 単位) に切り詰め、切り詰めた場合は末尾に "…" を付けます。
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
