package gallery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vincent-petithory/dataurl"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("data URI はそのままデコードするのだ", func(t *testing.T) {
		httpClient := &mockHTTPClient{}
		r, err := NewResolver(httpClient, 0, 0)
		require.NoError(t, err)

		ref := dataurl.New([]byte("fake-png"), "image/png").String()
		img, err := r.Resolve(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, []byte("fake-png"), img.Data)
		assert.Equal(t, "image/png", img.MimeType)
		assert.Zero(t, httpClient.calls)
	})

	t.Run("外部参照は取得してキャッシュするのだ", func(t *testing.T) {
		httpClient := &mockHTTPClient{data: pngHeader}
		r, _ := NewResolver(httpClient, 4, 0)

		first, err := r.Resolve(ctx, "https://cdn.example.com/a.png")
		require.NoError(t, err)
		assert.Equal(t, "image/png", first.MimeType)

		second, err := r.Resolve(ctx, "https://cdn.example.com/a.png")
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Equal(t, 1, httpClient.calls)
	})

	t.Run("取得エラーはキャッシュしないのだ", func(t *testing.T) {
		cause := errors.New("503")
		httpClient := &mockHTTPClient{err: cause}
		r, _ := NewResolver(httpClient, 4, 0)

		_, err := r.Resolve(ctx, "https://cdn.example.com/b.png")
		assert.ErrorIs(t, err, cause)
		_, err = r.Resolve(ctx, "https://cdn.example.com/b.png")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, 2, httpClient.calls)
	})

	t.Run("未知の参照や壊れたdata URIはエラーなのだ", func(t *testing.T) {
		r, _ := NewResolver(&mockHTTPClient{}, 0, 0)

		_, err := r.Resolve(ctx, "ftp://example.com/a.png")
		assert.Error(t, err)
		_, err = r.Resolve(ctx, "data:image/png;base64,@@@")
		assert.Error(t, err)
	})

	t.Run("nilチェック", func(t *testing.T) {
		_, err := NewResolver(nil, 0, 0)
		assert.Error(t, err)
	})
}
