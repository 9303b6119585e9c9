package gallery

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
	"github.com/shouni/dreamhouse-image-kit/pkg/utils"
)

// Lister は新しい順にアイテムを返すストアです。
type Lister interface {
	ListRecent(ctx context.Context) ([]domain.GalleryItem, error)
}

// ImageResolver はアイテムの URL を画像データに解決します。
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) (*Image, error)
}

// Exporter は保存済みの画像をローカルや GCS / S3 に書き出します。
type Exporter struct {
	store    Lister
	resolver ImageResolver
	writer   remoteio.OutputWriter
}

// NewExporter は依存関係を注入して Exporter を初期化します。
func NewExporter(store Lister, resolver ImageResolver, writer remoteio.OutputWriter) (*Exporter, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if writer == nil {
		return nil, fmt.Errorf("writer is required")
	}
	return &Exporter{store: store, resolver: resolver, writer: writer}, nil
}

// Export は全アイテムを dest 配下に書き出し、書き出し先の一覧を新しい順に返します。
// ファイル名は <作成日時>_<ID>.<拡張子> です。
func (e *Exporter) Export(ctx context.Context, dest string) ([]string, error) {
	items, err := e.store.ListRecent(ctx)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		img, err := e.resolver.Resolve(ctx, item.URL)
		if err != nil {
			return written, fmt.Errorf("アイテム %s の画像を取得できませんでした: %w", item.ID, err)
		}

		uri := joinURI(dest, exportName(item, img.MimeType))
		if err := e.writer.Write(ctx, uri, bytes.NewReader(img.Data), img.MimeType); err != nil {
			return written, fmt.Errorf("アイテム %s の書き出しに失敗しました: %w", item.ID, err)
		}
		slog.DebugContext(ctx, "ギャラリー画像を書き出しました", "id", item.ID, "uri", uri)
		written = append(written, uri)
	}
	return written, nil
}

func exportName(item domain.GalleryItem, mimeType string) string {
	ext := utils.ExtensionFor(mimeType, ".bin")
	return fmt.Sprintf("%s_%s%s", item.CreatedAt.UTC().Format("20060102-150405"), item.ID, ext)
}

func joinURI(dest, name string) string {
	if remoteio.IsRemoteURI(dest) {
		return strings.TrimSuffix(dest, "/") + "/" + name
	}
	return filepath.Join(dest, name)
}
