package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
	"github.com/shouni/dreamhouse-image-kit/pkg/gallery"
	"github.com/shouni/dreamhouse-image-kit/pkg/normalizer"
	"github.com/shouni/dreamhouse-image-kit/pkg/studio"
)

const (
	apiBasePath     = "/api"
	generatePath    = "/generate"
	galleryBasePath = "/gallery"
	imageSubPath    = "/image"
	paramID         = "id"

	// formOverheadBytes はマルチパートの境界やテキスト項目の分の余裕です。
	formOverheadBytes = 1 << 20

	defaultRequestTimeout = 90 * time.Second
	shutdownTimeout       = 10 * time.Second
)

// Studio は生成と保存を行うユースケースです。
type Studio interface {
	Generate(ctx context.Context, req studio.Request) (*studio.Result, error)
	Save(ctx context.Context, res *studio.Result) (*domain.GalleryItem, error)
}

// Gallery はギャラリーストアの操作です。
type Gallery interface {
	Insert(ctx context.Context, theme, vibe, pose, url string) (*domain.GalleryItem, error)
	ListRecent(ctx context.Context) ([]domain.GalleryItem, error)
	Get(ctx context.Context, id string) (*domain.GalleryItem, error)
	Count(ctx context.Context) (int, error)
	ClearAll(ctx context.Context) error
}

// ImageResolver はアイテムの URL を画像データに解決します。
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) (*gallery.Image, error)
}

// Server は HTTP の境界です。
type Server struct {
	studio         Studio
	gallery        Gallery
	resolver       ImageResolver
	validator      studio.FormValidator
	metrics        *Metrics
	maxUploadBytes int64
	requestTimeout time.Duration
}

// Option は Server の設定を変更します。
type Option func(*Server)

// WithMaxUploadBytes は受け付ける写真のサイズ上限を変更します。
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithRequestTimeout はリクエストごとのタイムアウトを変更します。
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// New は Server を初期化します。
func New(st Studio, g Gallery, resolver ImageResolver, v studio.FormValidator, opts ...Option) (*Server, error) {
	if st == nil {
		return nil, fmt.Errorf("studio is required")
	}
	if g == nil {
		return nil, fmt.Errorf("gallery is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if v == nil {
		return nil, fmt.Errorf("validator is required")
	}
	s := &Server{
		studio:         st,
		gallery:        g,
		resolver:       resolver,
		validator:      v,
		maxUploadBytes: normalizer.DefaultMaxInputBytes,
		requestTimeout: defaultRequestTimeout,
		metrics:        NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Routes はルーティングを設定したハンドラーを返します。
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route(apiBasePath, func(r chi.Router) {
		r.Use(middleware.Timeout(s.requestTimeout))

		r.Post(generatePath, makeHandler(s.handleGenerate))

		r.Route(galleryBasePath, func(r chi.Router) {
			r.Get("/", makeHandler(s.handleListGallery))
			r.Post("/", makeHandler(s.handleSaveGallery))
			r.Delete("/", makeHandler(s.handleClearGallery))
			r.Get("/{"+paramID+"}", makeHandler(s.handleGetGalleryItem))
			r.Get("/{"+paramID+"}"+imageSubPath, makeHandler(s.handleGalleryImage))
		})
	})

	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/healthz", handleHealthCheck)

	return r
}

// ListenAndServe は ctx がキャンセルされるまでサーバーを動かし、その後グレースフルに停止します。
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "HTTPサーバーを起動します", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	slog.Info("HTTPサーバーを停止します")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTPサーバーの停止に失敗しました: %w", err)
	}
	return nil
}

func handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger はリクエストごとに 1 行の構造化ログを出力します。
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			slog.InfoContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
