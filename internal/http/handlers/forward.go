package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/errors"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/pkg/log"
)

// responseHeaders — заголовки ответа бэкенда, которые отдаются вызывающему.
var responseHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Content-Disposition",
	"Cache-Control",
	"Location",
}

// Forward пробрасывает запрос к бэкенду и отдаёт ответ как есть.
// Ошибки транспорта (нет ответа, сессия истекла) пишутся в формате шлюза.
func (h *Handlers) Forward(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.Forward"

	path := strings.TrimPrefix(r.URL.Path, h.APIPrefix)
	if path == "" {
		path = "/"
	}
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}

	resp, err := h.API.Forward(r.Context(), r.Method, path, r.Header, r.Body)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	defer resp.Body.Close()

	for _, k := range responseHeaders {
		if v := resp.Header.Get(k); v != "" {
			w.Header().Set(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		log.From(r.Context()).Warn("forward_copy_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}
}
