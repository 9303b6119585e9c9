package imgutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
)

const (
	DefaultMaxDimension    = 1600
	DefaultTargetMaxBytes  = 3 << 20
	DefaultInitialQuality  = 85
	DefaultMinQuality      = 55
	DefaultQualityStep     = 10
	DefaultMaxQualitySteps = 4
)

// CompressOptions は再圧縮のパラメータです。
type CompressOptions struct {
	MaxDimension    int
	TargetMaxBytes  int
	InitialQuality  int
	MinQuality      int
	QualityStep     int
	MaxQualitySteps int
}

// DefaultCompressOptions は既定値の CompressOptions を返します。
func DefaultCompressOptions() CompressOptions {
	return CompressOptions{
		MaxDimension:    DefaultMaxDimension,
		TargetMaxBytes:  DefaultTargetMaxBytes,
		InitialQuality:  DefaultInitialQuality,
		MinQuality:      DefaultMinQuality,
		QualityStep:     DefaultQualityStep,
		MaxQualitySteps: DefaultMaxQualitySteps,
	}
}

// WithDefaults は未設定の項目を既定値で埋めた CompressOptions を返します。
func (o CompressOptions) WithDefaults() CompressOptions {
	d := DefaultCompressOptions()
	if o.MaxDimension <= 0 {
		o.MaxDimension = d.MaxDimension
	}
	if o.TargetMaxBytes <= 0 {
		o.TargetMaxBytes = d.TargetMaxBytes
	}
	if o.InitialQuality <= 0 || o.InitialQuality > 100 {
		o.InitialQuality = d.InitialQuality
	}
	if o.MinQuality <= 0 || o.MinQuality > o.InitialQuality {
		o.MinQuality = min(d.MinQuality, o.InitialQuality)
	}
	if o.QualityStep <= 0 {
		o.QualityStep = d.QualityStep
	}
	if o.MaxQualitySteps <= 0 {
		o.MaxQualitySteps = d.MaxQualitySteps
	}
	return o
}

// Compress は TargetMaxBytes を超える画像を縮小し、JPEG として再エンコードします。
//
// 長辺が MaxDimension 以下になるよう縮小し（拡大はしない）、InitialQuality から
// QualityStep ずつ画質を下げて目標サイズに収めます。MinQuality に達するか
// MaxQualitySteps 回下げた時点で、目標を超えていても打ち切ります。
//
// 目標サイズ以下の画像はそのまま返します。結果が元より大きくなる場合も元の画像を返します。
// 失敗時は元の画像と *domain.CompressionError を返すので、呼び出し側は常に続行できます。
func Compress(asset *domain.ImageAsset, opts CompressOptions) (*domain.ImageAsset, error) {
	opts = opts.WithDefaults()
	if asset == nil || len(asset.Data) <= opts.TargetMaxBytes {
		return asset, nil
	}

	img, err := imaging.Decode(bytes.NewReader(asset.Data), imaging.AutoOrientation(true))
	if err != nil {
		return asset, &domain.CompressionError{Name: asset.Name, Err: fmt.Errorf("デコードに失敗しました: %w", err)}
	}

	w, h := fitDimensions(img.Bounds().Dx(), img.Bounds().Dy(), opts.MaxDimension)
	if w != img.Bounds().Dx() || h != img.Bounds().Dy() {
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	out, _, _, err := encodeWithinTarget(flatten(img), opts)
	if err != nil {
		return asset, &domain.CompressionError{Name: asset.Name, Err: err}
	}
	if len(out) >= len(asset.Data) {
		return asset, nil
	}

	return &domain.ImageAsset{
		Name:     ReplaceExt(asset.Name, ".jpg"),
		Data:     out,
		MimeType: domain.MimeJPEG,
		Width:    w,
		Height:   h,
	}, nil
}

// encodeWithinTarget は画質を段階的に下げながら JPEG にエンコードし、最後の結果と画質、下げた回数を返します。
func encodeWithinTarget(img image.Image, opts CompressOptions) ([]byte, int, int, error) {
	quality := opts.InitialQuality
	out, err := EncodeJPEG(img, quality)
	if err != nil {
		return nil, 0, 0, err
	}

	steps := 0
	for len(out) > opts.TargetMaxBytes && quality > opts.MinQuality && steps < opts.MaxQualitySteps {
		quality = max(quality-opts.QualityStep, opts.MinQuality)
		steps++
		if out, err = EncodeJPEG(img, quality); err != nil {
			return nil, 0, 0, err
		}
	}
	return out, quality, steps, nil
}

// fitDimensions は長辺が maxDim に収まる寸法を返します。拡大はしません。
func fitDimensions(w, h, maxDim int) (int, int) {
	longest := max(w, h)
	if longest <= maxDim || longest == 0 {
		return w, h
	}
	scale := float64(maxDim) / float64(longest)
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	return nw, nh
}

// flatten は透過部分を白で塗りつぶします。JPEG はアルファを持てないのだ。
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// EncodeJPEG は画像を指定した画質で JPEG にエンコードします。
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CompressToJPEG は画像データ（PNG, GIF, JPEG, WebP 等）を JPEG 形式に再エンコードします。
// 透過部分は白になり、EXIF の向きは反映されます。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	return EncodeJPEG(flatten(img), quality)
}
