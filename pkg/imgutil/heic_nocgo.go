//go:build !cgo

package imgutil

// DefaultHEICDecoder は cgo なしのビルドでは nil を返します。
// その場合 TranscodeHEIC は domain.ErrDecoderUnavailable で失敗します。
func DefaultHEICDecoder() HEICDecoder {
	return nil
}
