package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/shouni/dreamhouse-image-kit/pkg/gallery"
)

func newGalleryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "ローカルのギャラリー (最新 6 件) を操作します。",
	}
	cmd.AddCommand(
		newGalleryListCmd(),
		newGalleryShowCmd(),
		newGalleryClearCmd(),
		newGalleryExportCmd(),
	)
	return cmd
}

// withGallery はギャラリーを開いて fn を実行し、最後に閉じます。
func withGallery(cmd *cobra.Command, fn func(store *gallery.Store) error) error {
	cfg, err := configFromContext(cmd.Context())
	if err != nil {
		return err
	}
	store, err := openGallery(cfg)
	if err != nil {
		return err
	}
	defer closeQuietly(store, "gallery")
	return fn(store)
}

func newGalleryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "保存されている作品を新しい順に表示します。",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGallery(cmd, func(store *gallery.Store) error {
				items, err := store.ListRecent(cmd.Context())
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "ギャラリーは空です。")
					return nil
				}
				for _, it := range items {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n",
						it.ID, it.CreatedAt.Local().Format("2006-01-02 15:04:05"), it.Theme, it.Vibe, it.Pose)
				}
				return nil
			})
		},
	}
}

func newGalleryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "作品の詳細を JSON で表示します。",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGallery(cmd, func(store *gallery.Store) error {
				item, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(item)
			})
		},
	}
}

func newGalleryClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "ギャラリーの作品をすべて削除します。",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				confirm := promptui.Prompt{Label: "ギャラリーをすべて削除しますか", IsConfirm: true}
				if _, err := confirm.Run(); err != nil {
					if errors.Is(err, promptui.ErrAbort) {
						fmt.Fprintln(cmd.OutOrStdout(), "削除を取りやめました。")
						return nil
					}
					return err
				}
			}
			return withGallery(cmd, func(store *gallery.Store) error {
				return store.ClearAll(cmd.Context())
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "確認せずに削除する")
	return cmd
}

func newGalleryExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [dest_dir]",
		Short: "保存されている作品の画像を書き出します (ローカル、gs://、s3://)。",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			dest := args[0]

			out, err := openStorage(ctx, dest)
			if err != nil {
				return err
			}
			defer closeQuietly(out, "output storage")
			w, err := out.writer()
			if err != nil {
				return fmt.Errorf("OutputWriterの作成に失敗しました: %w", err)
			}
			resolver, err := newResolver(cfg)
			if err != nil {
				return err
			}

			return withGallery(cmd, func(store *gallery.Store) error {
				exporter, err := gallery.NewExporter(store, resolver, w)
				if err != nil {
					return err
				}
				written, err := exporter.Export(ctx, dest)
				for _, uri := range written {
					fmt.Fprintln(cmd.OutOrStdout(), uri)
				}
				return err
			})
		},
	}
}
