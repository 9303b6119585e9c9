package cmd

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

type normalizeFlags struct {
	Output string // -o, --output 正規化した画像の書き出し先
}

func newNormalizeCmd() *cobra.Command {
	var flags normalizeFlags

	cmd := &cobra.Command{
		Use:   "normalize [image_path]",
		Short: "写真をアップロード可能な形に整えます (HEIC 変換・縮小・再圧縮)。",
		Long: `ローカルパス、gs://、s3://、http(s):// の画像を読み込み、形式の判定と
HEIC から JPEG への変換、3MiB を超える場合の縮小と再圧縮を行います。
--output を省略した場合は結果の概要だけを表示します。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(cmd, args[0], flags)
		},
	}
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "正規化した画像の書き出し先（ローカルパス、gs://、s3://）")
	return cmd
}

func runNormalize(cmd *cobra.Command, inputPath string, flags normalizeFlags) error {
	ctx := cmd.Context()
	cfg, err := configFromContext(ctx)
	if err != nil {
		return err
	}
	decide, err := parseFallback(appFlags.HEICFallback)
	if err != nil {
		return err
	}

	loader, in, err := newLoader(ctx, cfg, inputPath)
	if err != nil {
		return err
	}
	defer closeQuietly(in, "input storage")

	input, err := loader.Load(ctx, inputPath)
	if err != nil {
		return err
	}

	res, err := newNormalizer().Normalize(ctx, input, decide)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d -> %d bytes\t%dx%d\ttranscoded=%t fell_back=%t compressed=%t\n",
		res.Asset.Name, res.Asset.MimeType, res.OriginalSize, res.Asset.Size(),
		res.Asset.Width, res.Asset.Height, res.Transcoded, res.FellBack, res.Compressed)

	if flags.Output == "" {
		return nil
	}

	out, err := openStorage(ctx, flags.Output)
	if err != nil {
		return err
	}
	defer closeQuietly(out, "output storage")
	w, err := out.writer()
	if err != nil {
		return fmt.Errorf("OutputWriterの作成に失敗しました: %w", err)
	}
	if err := w.Write(ctx, flags.Output, bytes.NewReader(res.Asset.Data), string(res.Asset.MimeType)); err != nil {
		return fmt.Errorf("正規化した画像の書き込みに失敗しました (%s): %w", flags.Output, err)
	}
	slog.InfoContext(ctx, "正規化した画像を書き出しました", "output", flags.Output)
	return nil
}
