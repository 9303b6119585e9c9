package imgutil

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
)

// DefaultTranscodeQuality は HEIC から JPEG への変換時の画質です。
const DefaultTranscodeQuality = 80

// HEICDecoder は HEIC/HEIF をピクセルデータにデコードします。
type HEICDecoder interface {
	Decode(r io.Reader) (image.Image, error)
}

// HEICDecoderFunc は関数を HEICDecoder として扱うためのアダプターです。
type HEICDecoderFunc func(r io.Reader) (image.Image, error)

func (f HEICDecoderFunc) Decode(r io.Reader) (image.Image, error) { return f(r) }

// TranscodeHEIC はレガシー形式の画像を JPEG に変換します。
// デコーダーが nil の場合やデコードに失敗した場合は *domain.TranscodeError を返します。
func TranscodeHEIC(asset *domain.ImageAsset, dec HEICDecoder, quality int) (out *domain.ImageAsset, err error) {
	if dec == nil {
		return nil, &domain.TranscodeError{Name: asset.Name, Err: domain.ErrDecoderUnavailable}
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultTranscodeQuality
	}

	// cgo のデコーダーは壊れた入力で panic することがある
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &domain.TranscodeError{Name: asset.Name, Err: fmt.Errorf("デコーダーが異常終了しました: %v", r)}
		}
	}()

	img, err := dec.Decode(bytes.NewReader(asset.Data))
	if err != nil {
		return nil, &domain.TranscodeError{Name: asset.Name, Err: err}
	}

	data, err := EncodeJPEG(img, quality)
	if err != nil {
		return nil, &domain.TranscodeError{Name: asset.Name, Err: err}
	}

	return &domain.ImageAsset{
		Name:     ReplaceExt(asset.Name, ".jpg"),
		Data:     data,
		MimeType: domain.MimeJPEG,
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
	}, nil
}
