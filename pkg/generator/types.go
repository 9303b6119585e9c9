package generator

const (
	// DefaultModel は画像生成に使うモデルです。
	DefaultModel = "gemini-2.5-flash-image"
	// DefaultAspectRatio は生成画像の縦横比です。
	DefaultAspectRatio = "4:3"
	// fallbackImageMimeType はレスポンスに MIME タイプがない場合の値です。
	fallbackImageMimeType = "image/png"
)

// ImageOutput は Core の内部解析結果
type ImageOutput struct {
	Data     []byte
	MimeType string
	UsedSeed int64
}
