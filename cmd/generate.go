package cmd

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/dreamhouse-image-kit/pkg/gallery"
	"github.com/shouni/dreamhouse-image-kit/pkg/studio"
	"github.com/shouni/dreamhouse-image-kit/pkg/utils"
	"github.com/shouni/dreamhouse-image-kit/pkg/validation"
)

type generateFlags struct {
	Theme       string
	Vibe        string
	Pose        string
	AspectRatio string
	Seed        int64
	Output      string
	Save        bool
}

func newGenerateCmd() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate [photo_path]",
		Short: "写真とテーマから夢のおうちのイラストを生成します。",
		Long: `写真を正規化してから Gemini に送り、生成したイラストを書き出します。
--save を付けるとローカルのギャラリーにも保存します (最新 6 件まで)。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], flags)
		},
	}
	cmd.Flags().StringVarP(&flags.Theme, "theme", "t", "", "おうちのテーマ (1〜120文字)")
	cmd.Flags().StringVar(&flags.Vibe, "vibe", "元気", "雰囲気 (元気|上品|クール または energetic|elegant|cool)")
	cmd.Flags().StringVar(&flags.Pose, "pose", "手を振る", "ポーズ (手を振る|ピース|腰に手 または wave|peace-sign|hand-on-hip)")
	cmd.Flags().StringVar(&flags.AspectRatio, "aspect-ratio", "", "縦横比 (省略時は設定値)")
	cmd.Flags().Int64Var(&flags.Seed, "seed", 0, "生成のシード値 (0 の場合は指定しない)")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "生成画像の書き出し先 (省略時はカレントディレクトリ)")
	cmd.Flags().BoolVar(&flags.Save, "save", false, "ギャラリーにも保存する")
	_ = cmd.MarkFlagRequired("theme")
	return cmd
}

func runGenerate(cmd *cobra.Command, photoPath string, flags generateFlags) error {
	ctx := cmd.Context()
	cfg, err := configFromContext(ctx)
	if err != nil {
		return err
	}
	decide, err := parseFallback(appFlags.HEICFallback)
	if err != nil {
		return err
	}

	var store *gallery.Store
	if flags.Save {
		store, err = openGallery(cfg)
		if err != nil {
			return err
		}
		defer closeQuietly(store, "gallery")
	}

	st, err := newStudio(ctx, cfg, store)
	if err != nil {
		return err
	}

	loader, in, err := newLoader(ctx, cfg, photoPath)
	if err != nil {
		return err
	}
	defer closeQuietly(in, "input storage")
	input, err := loader.Load(ctx, photoPath)
	if err != nil {
		return err
	}

	req := studio.Request{
		Form:        validation.Form{Theme: flags.Theme, Vibe: flags.Vibe, Pose: flags.Pose},
		Input:       input,
		Decide:      decide,
		AspectRatio: flags.AspectRatio,
	}
	if flags.Seed != 0 {
		req.Seed = &flags.Seed
	}

	res, err := st.Generate(ctx, req)
	if err != nil {
		return err
	}

	output := flags.Output
	if output == "" {
		output = fmt.Sprintf("dreamhouse_%d%s", res.Image.UsedSeed, utils.ExtensionFor(res.Image.MimeType, ".png"))
	}
	out, err := openStorage(ctx, output)
	if err != nil {
		return err
	}
	defer closeQuietly(out, "output storage")
	w, err := out.writer()
	if err != nil {
		return fmt.Errorf("OutputWriterの作成に失敗しました: %w", err)
	}
	if err := w.Write(ctx, output, bytes.NewReader(res.Image.Data), res.Image.MimeType); err != nil {
		return fmt.Errorf("生成画像の書き込みに失敗しました (%s): %w", output, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)

	if store != nil {
		item, err := st.Save(ctx, res)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "ギャラリーに保存しました", "id", item.ID)
	}
	return nil
}

