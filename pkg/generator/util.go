package generator

import (
	"strings"

	"github.com/vincent-petithory/dataurl"
)

// toDataURI は画像データを data URI に変換します。
// MIME タイプが type/subtype 形式でない場合は fallbackImageMimeType を使います。
func toDataURI(data []byte, mimeType string) string {
	if t, sub, ok := strings.Cut(mimeType, "/"); !ok || t == "" || sub == "" || strings.Contains(sub, "/") {
		mimeType = fallbackImageMimeType
	}
	return dataurl.New(data, mimeType).String()
}
