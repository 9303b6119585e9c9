package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
)

func TestBuilder_Build(t *testing.T) {
	sel := domain.Selection{Theme: "お菓子の家", Vibe: domain.VibeEnergetic, Pose: domain.PoseWave}

	t.Run("既定スタイルにテーマとラベルが埋め込まれるのだ", func(t *testing.T) {
		b, err := NewBuilder("")
		require.NoError(t, err)

		got, err := b.Build(sel)
		require.NoError(t, err)
		assert.Contains(t, got, "お菓子の家")
		assert.Contains(t, got, "cheerful and energetic personality (元気)")
		assert.Contains(t, got, "waving a hand (手を振る)")
		assert.NotContains(t, got, "{{")
	})

	t.Run("別のスタイルも選べるのだ", func(t *testing.T) {
		b, err := NewBuilder("storybook")
		require.NoError(t, err)

		got, err := b.Build(domain.Selection{Theme: "雲の家", Vibe: domain.VibeCool, Pose: domain.PoseHandOnHip})
		require.NoError(t, err)
		assert.Contains(t, got, "picture-book")
		assert.Contains(t, got, "雲の家")
		assert.Contains(t, got, "腰に手")
	})

	t.Run("存在しないスタイルはエラーなのだ", func(t *testing.T) {
		_, err := NewBuilder("manga")
		assert.Error(t, err)
	})
}
