package normalizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
	"github.com/shouni/dreamhouse-image-kit/pkg/imgutil"
)

const (
	// DefaultMaxInputBytes は処理前に拒否するサイズの閾値です。
	DefaultMaxInputBytes = 6 << 20
	// DefaultMaxTranscodeAttempts は Retry が選ばれ続けた場合の変換試行回数の上限です。
	DefaultMaxTranscodeAttempts = 3
)

// Input は利用者が選んだ生のファイルです。
type Input struct {
	Name         string
	DeclaredType string
	// Size は宣言されたサイズです。0 の場合は len(Data) を使います。
	Size int64
	Data []byte
}

func (in Input) size() int64 {
	return max(in.Size, int64(len(in.Data)))
}

// DecisionFunc はレガシー形式の変換に失敗したときに呼ばれ、続行方法を返します。
// attempt は 1 から始まる試行回数です。
type DecisionFunc func(ctx context.Context, err *domain.TranscodeError, attempt int) domain.Decision

// Always は常に同じ判断を返す DecisionFunc です。
func Always(d domain.Decision) DecisionFunc {
	return func(context.Context, *domain.TranscodeError, int) domain.Decision { return d }
}

// Config は Normalizer の設定です。
type Config struct {
	MaxInputBytes        int64
	TranscodeQuality     int
	MaxTranscodeAttempts int
	Compress             imgutil.CompressOptions
}

// DefaultConfig は既定値の Config を返します。
func DefaultConfig() Config {
	return Config{
		MaxInputBytes:        DefaultMaxInputBytes,
		TranscodeQuality:     imgutil.DefaultTranscodeQuality,
		MaxTranscodeAttempts: DefaultMaxTranscodeAttempts,
		Compress:             imgutil.DefaultCompressOptions(),
	}
}

// Result は正規化の結果です。
type Result struct {
	Asset        *domain.ImageAsset
	Format       domain.FormatTag
	OriginalSize int64
	Transcoded   bool
	// FellBack は変換に失敗し、元のバイト列のまま続行したことを示します。
	FellBack   bool
	Compressed bool
}

// Normalizer は入力画像を判定・変換・圧縮してアップロード可能な形にします。
// 状態を持たないため、複数のゴルーチンから同時に使用できます。
type Normalizer struct {
	decoder imgutil.HEICDecoder
	cfg     Config
}

// New は Normalizer を初期化します。decoder が nil の場合、レガシー形式の変換は常に失敗します。
func New(decoder imgutil.HEICDecoder, cfg Config) *Normalizer {
	def := DefaultConfig()
	if cfg.MaxInputBytes <= 0 {
		cfg.MaxInputBytes = def.MaxInputBytes
	}
	if cfg.TranscodeQuality <= 0 {
		cfg.TranscodeQuality = def.TranscodeQuality
	}
	if cfg.MaxTranscodeAttempts <= 0 {
		cfg.MaxTranscodeAttempts = def.MaxTranscodeAttempts
	}
	cfg.Compress = cfg.Compress.WithDefaults()
	return &Normalizer{decoder: decoder, cfg: cfg}
}

// Normalize は detectFormat → (レガシーなら) 変換 → (目標サイズ超なら) 圧縮 の順に処理します。
//
// 形式が判定できない入力は ErrUnsupportedFormat、処理前のサイズが上限を超える入力は
// ErrFileTooLarge で即座に拒否します。変換の失敗は decide に判断を委ね、decide が nil なら中止します。
// 圧縮の失敗はログに残し、圧縮前の画像で続行します。
func (n *Normalizer) Normalize(ctx context.Context, in Input, decide DecisionFunc) (*Result, error) {
	format := imgutil.DetectFormat(in.DeclaredType, in.Name)
	if format == domain.FormatUnsupported {
		return nil, fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedFormat, in.Name, in.DeclaredType)
	}
	if in.size() > n.cfg.MaxInputBytes {
		return nil, fmt.Errorf("%w: %d bytes (上限 %d bytes)", domain.ErrFileTooLarge, in.size(), n.cfg.MaxInputBytes)
	}

	res := &Result{Format: format, OriginalSize: in.size()}
	asset := &domain.ImageAsset{Name: in.Name, Data: in.Data}

	if format == domain.FormatLegacy {
		asset.MimeType = domain.MimeHEIC
		out, fellBack, err := n.transcode(ctx, asset, decide)
		if err != nil {
			return nil, err
		}
		asset = out
		res.Transcoded = !fellBack
		res.FellBack = fellBack
	} else {
		asset.MimeType, _ = imgutil.StandardMimeType(in.DeclaredType, in.Name)
		if w, h, err := imgutil.Dimensions(asset.Data); err == nil {
			asset.Width, asset.Height = w, h
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 変換できなかった HEIC は圧縮でもデコードできないため、元のバイト列のまま返す
	if !res.FellBack && asset.Size() > n.cfg.Compress.TargetMaxBytes {
		before := asset.Size()
		out, err := imgutil.Compress(asset, n.cfg.Compress)
		if err != nil {
			slog.WarnContext(ctx, "画像の圧縮に失敗したため、圧縮前の画像で続行します", "name", asset.Name, "error", err)
		}
		res.Compressed = out != asset
		asset = out
		slog.DebugContext(ctx, "画像を圧縮しました", "name", asset.Name, "before", before, "after", asset.Size(), "width", asset.Width, "height", asset.Height)
	}

	res.Asset = asset
	return res, nil
}

// transcode は変換を試み、失敗時は decide の判断に従います。
// 2 番目の戻り値は元のバイト列で続行したかどうかです。
func (n *Normalizer) transcode(ctx context.Context, asset *domain.ImageAsset, decide DecisionFunc) (*domain.ImageAsset, bool, error) {
	if decide == nil {
		decide = Always(domain.DecisionAbort)
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		out, err := imgutil.TranscodeHEIC(asset, n.decoder, n.cfg.TranscodeQuality)
		if err == nil {
			slog.DebugContext(ctx, "HEIC を JPEG に変換しました", "name", asset.Name, "attempt", attempt)
			return out, false, nil
		}

		var tErr *domain.TranscodeError
		if !errors.As(err, &tErr) {
			tErr = &domain.TranscodeError{Name: asset.Name, Err: err}
		}

		decision := decide(ctx, tErr, attempt)
		if decision == domain.DecisionRetry && attempt >= n.cfg.MaxTranscodeAttempts {
			slog.WarnContext(ctx, "変換の再試行回数が上限に達したため中止します", "name", asset.Name, "attempts", attempt)
			decision = domain.DecisionAbort
		}

		switch decision {
		case domain.DecisionProceed:
			slog.WarnContext(ctx, "変換に失敗したため、元の形式のまま続行します", "name", asset.Name, "error", tErr)
			return asset, true, nil
		case domain.DecisionRetry:
			slog.InfoContext(ctx, "変換を再試行します", "name", asset.Name, "attempt", attempt)
			continue
		default:
			return nil, false, errors.Join(domain.ErrNormalizeAborted, tErr)
		}
	}
}
