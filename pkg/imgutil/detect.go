package imgutil

import (
	"bytes"
	"image"
	"path/filepath"
	"strings"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
)

// 端末によって HEIC の Content-Type は空や application/octet-stream になるため、拡張子も見るのだ。
var legacyTypes = map[string]bool{
	"image/heic":          true,
	"image/heif":          true,
	"image/heic-sequence": true,
	"image/heif-sequence": true,
}

var legacyExts = map[string]bool{
	".heic": true,
	".heif": true,
}

var standardTypes = map[string]domain.MimeType{
	"image/jpeg":  domain.MimeJPEG,
	"image/jpg":   domain.MimeJPEG,
	"image/pjpeg": domain.MimeJPEG,
	"image/png":   domain.MimePNG,
	"image/webp":  domain.MimeWebP,
}

var standardExts = map[string]domain.MimeType{
	".jpg":  domain.MimeJPEG,
	".jpeg": domain.MimeJPEG,
	".png":  domain.MimePNG,
	".webp": domain.MimeWebP,
}

// DetectFormat は宣言された Content-Type とファイル名の拡張子から形式を分類します。
// レガシー形式の判定を先に行います。拡張子は大文字小文字を区別しません。
func DetectFormat(declaredType, name string) domain.FormatTag {
	mt := normalizeType(declaredType)
	ext := strings.ToLower(filepath.Ext(name))

	if legacyTypes[mt] || legacyExts[ext] {
		return domain.FormatLegacy
	}
	if _, ok := standardTypes[mt]; ok {
		return domain.FormatStandard
	}
	if _, ok := standardExts[ext]; ok {
		return domain.FormatStandard
	}
	return domain.FormatUnsupported
}

// StandardMimeType は標準フォーマットの MimeType を返します。
// Content-Type を優先し、判定できなければ拡張子から求めます。
func StandardMimeType(declaredType, name string) (domain.MimeType, bool) {
	if m, ok := standardTypes[normalizeType(declaredType)]; ok {
		return m, true
	}
	m, ok := standardExts[strings.ToLower(filepath.Ext(name))]
	return m, ok
}

// "image/jpeg; charset=binary" のようなパラメータ付きの値も受け付ける
func normalizeType(declaredType string) string {
	mt, _, _ := strings.Cut(declaredType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// ReplaceExt はファイル名の拡張子を置き換えます。拡張子がなければ付与します。
func ReplaceExt(name, ext string) string {
	if name == "" {
		return "image" + ext
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// Dimensions はヘッダーだけを読んで画像の幅と高さを返します。
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
