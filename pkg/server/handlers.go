package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shouni/dreamhouse-image-kit/pkg/domain"
	"github.com/shouni/dreamhouse-image-kit/pkg/normalizer"
	"github.com/shouni/dreamhouse-image-kit/pkg/studio"
	"github.com/shouni/dreamhouse-image-kit/pkg/validation"
)

// マルチパートの項目名
const (
	fieldTheme        = "houseTheme"
	fieldVibe         = "vibe"
	fieldPose         = "pose"
	fieldFaceImage    = "faceImage"
	fieldHEICFallback = "heicFallback"
	fieldSave         = "save"
	fieldSeed         = "seed"
	fieldAspectRatio  = "aspectRatio"
)

type generateResponse struct {
	URL      string              `json:"url"`
	MimeType string              `json:"mimeType"`
	Seed     int64               `json:"seed"`
	Item     *domain.GalleryItem `json:"item,omitempty"`
}

type galleryListResponse struct {
	Items    []domain.GalleryItem `json:"items"`
	Capacity int                  `json:"capacity"`
}

type saveGalleryRequest struct {
	URL   string `json:"url"`
	Theme string `json:"theme"`
	Vibe  string `json:"vibe"`
	Pose  string `json:"pose"`
}

// handleGenerate は写真とフォームを受け取り、イラストを生成します。
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) (err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = toHTTPError(err).Kind
		}
		s.metrics.GenerationsTotal.WithLabelValues(outcome).Inc()
		s.metrics.GenerationDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+formOverheadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return newHTTPError(http.StatusBadRequest, kindValidation, "フォームの形式が正しくありません。", err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	in, err := readUpload(r)
	if err != nil {
		return err
	}
	s.metrics.UploadBytes.Observe(float64(in.Size))

	req := studio.Request{
		Form: validation.Form{
			Theme: r.FormValue(fieldTheme),
			Vibe:  r.FormValue(fieldVibe),
			Pose:  r.FormValue(fieldPose),
		},
		Input:       in,
		Decide:      decisionFromForm(r.FormValue(fieldHEICFallback)),
		AspectRatio: r.FormValue(fieldAspectRatio),
	}
	if raw := r.FormValue(fieldSeed); raw != "" {
		seed, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			return newHTTPError(http.StatusBadRequest, kindValidation, "seed は整数で指定してください。", perr)
		}
		req.Seed = &seed
	}

	res, err := s.studio.Generate(r.Context(), req)
	if err != nil {
		return err
	}

	resp := generateResponse{URL: res.Image.URL, MimeType: res.Image.MimeType, Seed: res.Image.UsedSeed}
	if save, _ := strconv.ParseBool(r.FormValue(fieldSave)); save {
		item, err := s.studio.Save(r.Context(), res)
		if err != nil {
			return err
		}
		resp.Item = item
		s.refreshGalleryGauge(r)
	}

	respondWithJSON(w, http.StatusOK, resp)
	return nil
}

// readUpload は faceImage を読み込みます。宣言サイズが上限を超える場合は読み込まずに拒否します。
func readUpload(r *http.Request) (normalizer.Input, error) {
	file, header, err := r.FormFile(fieldFaceImage)
	if err != nil {
		return normalizer.Input{}, newHTTPError(http.StatusBadRequest, kindValidation, "写真を選んでください。", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return normalizer.Input{}, fmt.Errorf("アップロードされた写真の読み込みに失敗しました: %w", err)
	}
	return normalizer.Input{
		Name:         header.Filename,
		DeclaredType: header.Header.Get(headerContentType),
		Size:         header.Size,
		Data:         data,
	}, nil
}

// decisionFromForm は HEIC の変換に失敗したときの判断を返します。未指定なら中止です。
func decisionFromForm(v string) normalizer.DecisionFunc {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return normalizer.Always(domain.ParseDecision(v))
}

func (s *Server) handleListGallery(w http.ResponseWriter, r *http.Request) error {
	items, err := s.gallery.ListRecent(r.Context())
	if err != nil {
		return err
	}
	s.metrics.GalleryItems.Set(float64(len(items)))
	respondWithJSON(w, http.StatusOK, galleryListResponse{Items: items, Capacity: domain.MaxGalleryItems})
	return nil
}

// handleSaveGallery はクライアントが保持している生成結果をギャラリーに保存します。
func (s *Server) handleSaveGallery(w http.ResponseWriter, r *http.Request) error {
	var body saveGalleryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxUploadBytes*2))
	if err := dec.Decode(&body); err != nil {
		return newHTTPError(http.StatusBadRequest, kindValidation, "JSON の形式が正しくありません。", err)
	}
	if !strings.HasPrefix(body.URL, "data:image/") && !strings.HasPrefix(body.URL, "https://") && !strings.HasPrefix(body.URL, "http://") {
		return newHTTPError(http.StatusBadRequest, kindValidation, "url には画像の data URI か http(s) の URL を指定してください。", nil)
	}

	sel, err := s.validator.Validate(validation.Form{Theme: body.Theme, Vibe: body.Vibe, Pose: body.Pose})
	if err != nil {
		return err
	}

	item, err := s.gallery.Insert(r.Context(), sel.Theme, sel.Vibe.Label(), sel.Pose.Label(), body.URL)
	if err != nil {
		return err
	}
	s.refreshGalleryGauge(r)
	respondWithJSON(w, http.StatusCreated, item)
	return nil
}

func (s *Server) handleClearGallery(w http.ResponseWriter, r *http.Request) error {
	if err := s.gallery.ClearAll(r.Context()); err != nil {
		return err
	}
	s.metrics.GalleryItems.Set(0)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) handleGetGalleryItem(w http.ResponseWriter, r *http.Request) error {
	item, err := s.gallery.Get(r.Context(), chi.URLParam(r, paramID))
	if err != nil {
		return err
	}
	respondWithJSON(w, http.StatusOK, item)
	return nil
}

// handleGalleryImage はアイテムの画像そのものを返します。
func (s *Server) handleGalleryImage(w http.ResponseWriter, r *http.Request) error {
	item, err := s.gallery.Get(r.Context(), chi.URLParam(r, paramID))
	if err != nil {
		return err
	}
	img, err := s.resolver.Resolve(r.Context(), item.URL)
	if err != nil {
		return newHTTPError(http.StatusBadGateway, kindInternal, "画像を取り出せませんでした。", err)
	}

	w.Header().Set(headerContentType, img.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	// アイテムは作成後に変更されない
	w.Header().Set("Cache-Control", "private, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
	return nil
}

func (s *Server) refreshGalleryGauge(r *http.Request) {
	n, err := s.gallery.Count(r.Context())
	if err != nil {
		return
	}
	s.metrics.GalleryItems.Set(float64(n))
}
