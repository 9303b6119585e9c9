package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shouni/dreamhouse-image-kit/pkg/generator"
	"github.com/shouni/dreamhouse-image-kit/pkg/prompt"
)

// EnvPrefix は環境変数の接頭辞です。例: DREAMHOUSE_MODEL
const EnvPrefix = "DREAMHOUSE"

const (
	DefaultGalleryPath = "dreamhouse-gallery.db"
	DefaultListenAddr  = ":8080"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultMaxRetries  = 1
)

// ErrAPIKeyMissing は API キーが設定されていないことを示します。
var ErrAPIKeyMissing = errors.New("Gemini の API キーが設定されていません (GEMINI_API_KEY または DREAMHOUSE_GEMINI_API_KEY)")

// Config はアプリケーション全体の設定です。
type Config struct {
	GeminiAPIKey string        `mapstructure:"gemini_api_key"`
	Model        string        `mapstructure:"model"`
	AspectRatio  string        `mapstructure:"aspect_ratio"`
	PromptStyle  string        `mapstructure:"prompt_style"`
	GalleryPath  string        `mapstructure:"gallery_path"`
	ListenAddr   string        `mapstructure:"listen_addr"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// Load は 既定値 → 設定ファイル → 環境変数 の順に上書きした設定を返します。
// configFile が空の場合、設定ファイルは読み込みません。
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("gemini_api_key", "")
	v.SetDefault("model", generator.DefaultModel)
	v.SetDefault("aspect_ratio", generator.DefaultAspectRatio)
	v.SetDefault("prompt_style", prompt.DefaultStyle)
	v.SetDefault("gallery_path", DefaultGalleryPath)
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("http_timeout", DefaultHTTPTimeout)
	v.SetDefault("max_retries", DefaultMaxRetries)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// 一般的な GEMINI_API_KEY も受け付ける
	if err := v.BindEnv("gemini_api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("環境変数のバインドに失敗しました: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました (%s): %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("設定の解析に失敗しました: %w", err)
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("http_timeout は正の値である必要があります: %s", cfg.HTTPTimeout)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries は 0 以上である必要があります: %d", cfg.MaxRetries)
	}
	return &cfg, nil
}

// RequireAPIKey は画像生成を行うコマンドの前提条件を確認します。
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return ErrAPIKeyMissing
	}
	return nil
}
