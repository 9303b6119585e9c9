package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/dreamhouse-image-kit/pkg/config"
)

const appName = "dreamhouse"

// configKey は context.Context に *config.Config を格納するための非公開キー
type configKey struct{}

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	HEICFallback string // --heic-fallback HEIC の変換に失敗したときの扱い
}

var appFlags AppFlags

func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(&appFlags.HEICFallback, "heic-fallback", fallbackAsk,
		"HEIC の変換に失敗したときの扱い (ask|proceed|abort|retry)")
}

// initAppPreRunE はロガーを設定し、設定を読み込んで Context に格納します。
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	setupLogger(clibase.Flags.Verbose)

	if _, err := parseFallback(appFlags.HEICFallback); err != nil {
		return err
	}

	cfg, err := config.Load(clibase.Flags.ConfigFile)
	if err != nil {
		return err
	}
	cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
	return nil
}

func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// configFromContext は cmd.Context() から設定を取り出します。
func configFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("コンテキストに設定が見つかりません")
	}
	return cfg, nil
}

// Execute は、rootCmd を実行するメイン関数です。SIGINT/SIGTERM で Context をキャンセルします。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := clibase.NewRootCmd(appName, addAppPersistentFlags, initAppPreRunE)
	rootCmd.Short = "写真から夢のおうちのイラストを作るツールです。"
	rootCmd.SilenceUsage = true
	rootCmd.AddCommand(
		newNormalizeCmd(),
		newGenerateCmd(),
		newGalleryCmd(),
		newServeCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
