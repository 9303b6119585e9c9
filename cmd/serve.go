package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shouni/dreamhouse-image-kit/pkg/server"
	"github.com/shouni/dreamhouse-image-kit/pkg/validation"
)

type serveFlags struct {
	Addr string
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "画像生成とギャラリーの HTTP API を起動します。",
		Long: `POST /api/generate、/api/gallery、/metrics、/healthz を提供します。
HEIC の変換に失敗した場合の扱いはリクエストの heicFallback 項目で指定します。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			addr := cfg.ListenAddr
			if flags.Addr != "" {
				addr = flags.Addr
			}

			store, err := openGallery(cfg)
			if err != nil {
				return err
			}
			defer closeQuietly(store, "gallery")

			st, err := newStudio(ctx, cfg, store)
			if err != nil {
				return err
			}
			resolver, err := newResolver(cfg)
			if err != nil {
				return err
			}

			srv, err := server.New(st, store, resolver, validation.New(), server.WithRequestTimeout(3*cfg.HTTPTimeout))
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVarP(&flags.Addr, "addr", "a", "", "待ち受けアドレス (省略時は設定値)")
	return cmd
}
