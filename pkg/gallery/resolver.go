package gallery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/vincent-petithory/dataurl"
)

const (
	DefaultResolverCacheSize = 32
	DefaultResolverCacheTTL  = 10 * time.Minute
)

// HTTPClient は外部参照の画像を取得するためのインターフェースです。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Image はギャラリーアイテムの URL から取り出した画像データです。
type Image struct {
	Data     []byte
	MimeType string
}

// Resolver はアイテムの URL（data URI または http(s) の外部参照）を画像データに解決します。
// 外部参照の取得結果は有効期限付きでキャッシュします。
type Resolver struct {
	httpClient HTTPClient
	cache      *expirable.LRU[string, *Image]
}

// NewResolver は Resolver を初期化します。
func NewResolver(httpClient HTTPClient, cacheSize int, ttl time.Duration) (*Resolver, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if cacheSize <= 0 {
		cacheSize = DefaultResolverCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultResolverCacheTTL
	}
	return &Resolver{
		httpClient: httpClient,
		cache:      expirable.NewLRU[string, *Image](cacheSize, nil, ttl),
	}, nil
}

// Resolve は ref を画像データに変換します。
func (r *Resolver) Resolve(ctx context.Context, ref string) (*Image, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		du, err := dataurl.DecodeString(ref)
		if err != nil {
			return nil, fmt.Errorf("data URI の解析に失敗しました: %w", err)
		}
		return &Image{Data: du.Data, MimeType: du.MediaType.ContentType()}, nil

	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		if img, ok := r.cache.Get(ref); ok {
			return img, nil
		}
		data, err := r.httpClient.FetchBytes(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("画像の取得に失敗しました (%s): %w", ref, err)
		}
		img := &Image{Data: data, MimeType: mimetype.Detect(data).String()}
		r.cache.Add(ref, img)
		return img, nil

	default:
		return nil, fmt.Errorf("対応していない画像参照です: %.32s", ref)
	}
}
