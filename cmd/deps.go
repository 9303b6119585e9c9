package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-remote-io/pkg/s3factory"

	"github.com/shouni/dreamhouse-image-kit/pkg/config"
	"github.com/shouni/dreamhouse-image-kit/pkg/gallery"
	"github.com/shouni/dreamhouse-image-kit/pkg/generator"
	"github.com/shouni/dreamhouse-image-kit/pkg/imgutil"
	"github.com/shouni/dreamhouse-image-kit/pkg/normalizer"
	"github.com/shouni/dreamhouse-image-kit/pkg/prompt"
	"github.com/shouni/dreamhouse-image-kit/pkg/studio"
	"github.com/shouni/dreamhouse-image-kit/pkg/validation"
)

// storage は URI に応じて GCS/S3/ローカルの入出力を選びます。
// クラウドのクライアントは必要になったときにだけ初期化します。
type storage struct {
	factory remoteio.IOFactory
}

func openStorage(ctx context.Context, uri string) (*storage, error) {
	var (
		f   remoteio.IOFactory
		err error
	)
	switch {
	case remoteio.IsGCSURI(uri):
		f, err = gcsfactory.New(ctx)
	case remoteio.IsS3URI(uri):
		f, err = s3factory.New(ctx)
	default:
		return &storage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ストレージクライアントの初期化に失敗しました (%s): %w", uri, err)
	}
	return &storage{factory: f}, nil
}

func (s *storage) reader() (remoteio.InputReader, error) {
	if s.factory == nil {
		return remoteio.NewUniversalInputReader(nil, nil), nil
	}
	return s.factory.InputReader()
}

func (s *storage) writer() (remoteio.OutputWriter, error) {
	if s.factory == nil {
		return remoteio.NewUniversalIOWriter(nil, nil), nil
	}
	return s.factory.OutputWriter()
}

func (s *storage) Close() error {
	if s.factory == nil {
		return nil
	}
	return s.factory.Close()
}

func closeQuietly(c io.Closer, what string) {
	if err := c.Close(); err != nil {
		slog.Warn("クローズに失敗しました", "target", what, "error", err)
	}
}

func newHTTPClient(cfg *config.Config) *httpkit.Client {
	return httpkit.New(cfg.HTTPTimeout, httpkit.WithMaxRetries(uint64(cfg.MaxRetries)))
}

func newNormalizer() *normalizer.Normalizer {
	dec := imgutil.DefaultHEICDecoder()
	if dec == nil {
		slog.Debug("このビルドには HEIC デコーダーが含まれていません")
	}
	return normalizer.New(dec, normalizer.DefaultConfig())
}

// newLoader は uri を読み込める Loader を返します。返される storage は呼び出し側で Close してください。
func newLoader(ctx context.Context, cfg *config.Config, uri string) (*normalizer.Loader, *storage, error) {
	st, err := openStorage(ctx, uri)
	if err != nil {
		return nil, nil, err
	}
	r, err := st.reader()
	if err != nil {
		closeQuietly(st, "storage")
		return nil, nil, fmt.Errorf("InputReaderの作成に失敗しました: %w", err)
	}
	loader, err := normalizer.NewLoader(r, newHTTPClient(cfg), normalizer.DefaultMaxInputBytes)
	if err != nil {
		closeQuietly(st, "storage")
		return nil, nil, err
	}
	return loader, st, nil
}

// newGenerator は API キーを持つ Gemini クライアントを一度だけ作り、ジェネレーターに注入します。
func newGenerator(ctx context.Context, cfg *config.Config) (*generator.GeminiGenerator, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:     cfg.GeminiAPIKey,
		MaxRetries: uint64(cfg.MaxRetries),
	})
	if err != nil {
		return nil, err
	}
	builder, err := prompt.NewBuilder(cfg.PromptStyle)
	if err != nil {
		return nil, err
	}
	return generator.NewGeminiGenerator(generator.NewGeminiImageCore(), client, builder, cfg.Model, cfg.AspectRatio)
}

func openGallery(cfg *config.Config) (*gallery.Store, error) {
	return gallery.Open(cfg.GalleryPath)
}

func newResolver(cfg *config.Config) (*gallery.Resolver, error) {
	return gallery.NewResolver(newHTTPClient(cfg), gallery.DefaultResolverCacheSize, gallery.DefaultResolverCacheTTL)
}

// newStudio は生成に必要な依存関係をまとめて組み立てます。store は nil でもかまいません。
func newStudio(ctx context.Context, cfg *config.Config, store *gallery.Store) (*studio.Studio, error) {
	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var gw studio.GalleryWriter
	if store != nil {
		gw = store
	}
	return studio.New(validation.New(), newNormalizer(), gen, gw)
}
