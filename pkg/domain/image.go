package domain

import "fmt"

// MimeType は正規化後の画像が取りうるメディアタイプです。
type MimeType string

const (
	MimeJPEG MimeType = "image/jpeg"
	MimePNG  MimeType = "image/png"
	MimeWebP MimeType = "image/webp"
	// MimeHEIC は変換に失敗し、ユーザーが元のバイト列での続行を選んだ場合にのみ現れます。
	MimeHEIC MimeType = "image/heic"
)

// IsStandard はアップロード可能な標準フォーマットかどうかを返します。
func (m MimeType) IsStandard() bool {
	switch m {
	case MimeJPEG, MimePNG, MimeWebP:
		return true
	}
	return false
}

// FormatTag は入力ファイルの形式分類です。
type FormatTag int

const (
	FormatUnsupported FormatTag = iota
	FormatStandard
	FormatLegacy
)

func (f FormatTag) String() string {
	switch f {
	case FormatStandard:
		return "standard"
	case FormatLegacy:
		return "legacy-container"
	default:
		return "unsupported"
	}
}

// ImageAsset はリクエスト中だけ保持される画像データです。
// 生成リクエストが終わった時点で破棄され、どこにも保存されません。
type ImageAsset struct {
	Name     string
	Data     []byte
	MimeType MimeType
	Width    int
	Height   int
}

// Size はバイト数を返します。
func (a *ImageAsset) Size() int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}

func (a *ImageAsset) String() string {
	return fmt.Sprintf("%s (%s, %dx%d, %d bytes)", a.Name, a.MimeType, a.Width, a.Height, len(a.Data))
}

// GenerationRequest は画像生成コラボレーターへの単一の要求です。
type GenerationRequest struct {
	Image       *ImageAsset
	Theme       string
	Vibe        Vibe
	Pose        Pose
	AspectRatio string
	Seed        *int64
}

// ImageResponse は生成された画像データとそのメタデータです。
type ImageResponse struct {
	Data     []byte
	MimeType string
	// URL は埋め込みの data URI か外部参照です。ギャラリーにはこの値が保存されます。
	URL      string
	UsedSeed int64 // 戻り値は情報欠落を防ぐため int64
}
