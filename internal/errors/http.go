package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// APIError — единый формат ошибок локального шлюза.
// Code — короткий стабильный код для машиночитаемой обработки.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку клиента в HTTP-статус и тело ответа.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal;
//   - отмена контекста — 499, дедлайн — 504;
//   - сентинелы пакета — по таблице ниже;
//   - *Error — по Kind, KindHTTP сохраняет статус бэкенда и его сообщение;
//   - прочее — 500/internal без утечки деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := classify(err)

	resp := ErrorResponse{Error: APIError{Code: code, Message: msg}}

	var e *Error
	if errors.As(err, &e) && e.RequestID != "" {
		resp.Error.RequestID = e.RequestID
	}

	return status, resp
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func classify(err error) (int, string, string) {
	if err == nil {
		return http.StatusInternalServerError, "internal", "internal error"
	}

	switch {
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	case errors.Is(err, ErrSessionExpired):
		return http.StatusUnauthorized, "session_expired", MsgSessionExpired
	case errors.Is(err, ErrInvalidCredential):
		return http.StatusUnauthorized, "invalid_credential", "invalid credential"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	}

	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, "internal", "internal error"
	}

	switch e.Kind {
	case KindNetwork:
		return http.StatusBadGateway, "upstream_unavailable", MsgLoadingFailed
	case KindUnauthorized:
		return http.StatusUnauthorized, "unauthenticated", e.Message
	case KindMalformed:
		return http.StatusBadGateway, "bad_upstream_response", MsgMalformed
	case KindHTTP:
		return e.Status, codeFromStatus(e.Status), e.Message
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}

// codeFromStatus — стабильный код для статусов, которые отдаёт бэкенд.
func codeFromStatus(s int) string {
	switch s {
	case http.StatusBadRequest:
		return "invalid_argument"
	case http.StatusForbidden:
		return "permission_denied"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusConflict:
		return "already_exists"
	case http.StatusTooManyRequests:
		return "resource_exhausted"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		if s >= 500 {
			return "upstream_error"
		}
		return "request_failed"
	}
}
