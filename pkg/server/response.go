package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

const (
	headerContentType   = "Content-Type"
	contentTypeJSONUTF8 = "application/json; charset=utf-8"
)

// appHandler はエラーを返すハンドラーです。
type appHandler func(w http.ResponseWriter, r *http.Request) error

// makeHandler は appHandler を http.HandlerFunc に変換し、返されたエラーを JSON で応答します。
func makeHandler(h appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		he := toHTTPError(err)
		level := slog.LevelWarn
		if he.Code >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		attrs := []any{"code", he.Code, "kind", he.Kind, "path", r.URL.Path, "method", r.Method}
		if cause := errors.Unwrap(he); cause != nil {
			attrs = append(attrs, "cause", cause)
		}
		slog.Log(r.Context(), level, "エラー応答を返します", attrs...)

		respondWithJSON(w, he.Code, errorBody{Error: he.Message, Kind: he.Kind, Fields: he.Fields})
	}
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("JSON レスポンスの生成に失敗しました", "error", err)
		w.Header().Set(headerContentType, contentTypeJSONUTF8)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal Server Error","kind":"internal"}`))
		return
	}

	w.Header().Set(headerContentType, contentTypeJSONUTF8)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
