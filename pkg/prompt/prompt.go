package prompt

import (
	"embed"
	"fmt"

	"github.com/shouni/go-prompt-kit/prompts"
	"github.com/shouni/go-prompt-kit/resource"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
)

// DefaultStyle は既定のプロンプトテンプレートです。
const DefaultStyle = "illustration"

//go:embed templates/prompt_*.md
var templateFS embed.FS

var vibeDescriptors = map[domain.Vibe]string{
	domain.VibeEnergetic: "cheerful and energetic",
	domain.VibeElegant:   "graceful and elegant",
	domain.VibeCool:      "calm and cool",
}

var poseDescriptors = map[domain.Pose]string{
	domain.PoseWave:      "waving a hand",
	domain.PosePeaceSign: "making a peace sign",
	domain.PoseHandOnHip: "standing with a hand on the hip",
}

// Data はテンプレートに埋め込む値です。
type Data struct {
	Theme          string
	VibeLabel      string
	VibeDescriptor string
	PoseLabel      string
	PoseDescriptor string
}

// NewData は Selection からテンプレート用の値を組み立てます。
func NewData(sel domain.Selection) Data {
	return Data{
		Theme:          sel.Theme,
		VibeLabel:      sel.Vibe.Label(),
		VibeDescriptor: vibeDescriptors[sel.Vibe],
		PoseLabel:      sel.Pose.Label(),
		PoseDescriptor: poseDescriptors[sel.Pose],
	}
}

// Builder はスタイル名を指定してプロンプトを組み立てます。
type Builder struct {
	builder *prompts.Builder
	style   string
}

// NewBuilder は埋め込みテンプレートを読み込みます。style が空なら DefaultStyle を使います。
func NewBuilder(style string) (*Builder, error) {
	templates, err := resource.Load(templateFS, "templates", "prompt_")
	if err != nil {
		return nil, fmt.Errorf("プロンプトテンプレートの読み込みに失敗しました: %w", err)
	}
	if style == "" {
		style = DefaultStyle
	}
	if _, ok := templates[style]; !ok {
		return nil, fmt.Errorf("不明なプロンプトスタイルです: %s", style)
	}

	b, err := prompts.NewBuilder(templates)
	if err != nil {
		return nil, err
	}
	return &Builder{builder: b, style: style}, nil
}

// Build は Selection からプロンプト文字列を生成します。
func (b *Builder) Build(sel domain.Selection) (string, error) {
	return b.builder.Build(b.style, NewData(sel))
}
