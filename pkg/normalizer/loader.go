package normalizer

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// HTTPClient は URL から画像を取得するための最小限のインターフェースです。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Loader はローカルパス・gs://・s3://・http(s):// から Input を組み立てます。
type Loader struct {
	reader     remoteio.InputReader
	httpClient HTTPClient
	maxBytes   int64
}

// NewLoader は依存関係を注入して Loader を初期化します。
// maxBytes を超える入力は maxBytes+1 バイトで読み込みを打ち切り、そのサイズを Size に設定します。
func NewLoader(reader remoteio.InputReader, httpClient HTTPClient, maxBytes int64) (*Loader, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxInputBytes
	}
	return &Loader{reader: reader, httpClient: httpClient, maxBytes: maxBytes}, nil
}

// Load は uri の内容を読み込みます。DeclaredType は内容から推定した MIME タイプです。
func (l *Loader) Load(ctx context.Context, uri string) (Input, error) {
	var (
		data []byte
		name string
		err  error
	)

	if isHTTP(uri) {
		data, err = l.httpClient.FetchBytes(ctx, uri)
		if err != nil {
			return Input{}, fmt.Errorf("画像のダウンロードに失敗しました (%s): %w", uri, err)
		}
		name = nameFromURL(uri)
		if int64(len(data)) > l.maxBytes {
			data = data[:l.maxBytes+1]
		}
	} else {
		data, err = l.readLimited(ctx, uri)
		if err != nil {
			return Input{}, err
		}
		name = filepath.Base(uri)
		if remoteio.IsRemoteURI(uri) {
			name = path.Base(uri)
		}
	}

	return Input{
		Name:         name,
		DeclaredType: mimetype.Detect(data).String(),
		Size:         int64(len(data)),
		Data:         data,
	}, nil
}

func (l *Loader) readLimited(ctx context.Context, uri string) ([]byte, error) {
	rc, err := l.reader.Open(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("画像の読み込みに失敗しました (%s): %w", uri, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("画像の読み込みに失敗しました (%s): %w", uri, err)
	}
	return data, nil
}

func isHTTP(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

func nameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "image"
	}
	return path.Base(u.Path)
}
