//go:build cgo

package imgutil

import "github.com/jdeng/goheif"

// DefaultHEICDecoder は libde265 ベースのデコーダーを返します。
func DefaultHEICDecoder() HEICDecoder {
	return HEICDecoderFunc(goheif.Decode)
}
