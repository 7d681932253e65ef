// errors описывает таксономию ошибок клиента BrainBoost и стандартизирует
// их отображение наружу (CLI и локальный HTTP-шлюз).
//
// Виды ошибок:
//   - KindNetwork — нет ответа (транспорт, DNS, таймаут);
//   - KindUnauthorized — 401, который не удалось восстановить;
//   - KindSessionExpired — refresh провалился, сессия закрыта принудительно;
//   - KindHTTP — прочие 4xx/5xx, Message берётся из тела DRF;
//   - KindMalformed — тело ответа не соответствует ожидаемой форме.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrSessionExpired — refresh-токен отклонён или отсутствует (-> 401).
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidCredential — access не похож на подписанный токен (-> 401).
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrBadRequest — некорректные входные данные вызова (-> 400).
	ErrBadRequest = errors.New("bad request")
)

// Kind — класс ошибки.
type Kind uint8

const (
	KindNetwork Kind = iota + 1
	KindUnauthorized
	KindSessionExpired
	KindHTTP
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindSessionExpired:
		return "session_expired"
	case KindHTTP:
		return "http"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Сообщения по умолчанию, когда тело ответа ничего не объясняет.
const (
	MsgLoadingFailed  = "loading failed"
	MsgSessionExpired = "session expired, please log in again"
	MsgUnauthorized   = "authentication required"
	MsgMalformed      = "unexpected response from server"
)

// Error — ошибка вызова API.
// Status — HTTP-статус ответа (0, если ответа не было).
// RequestID — X-Request-Id запроса для трассировки.
type Error struct {
	Kind      Kind
	Status    int
	Message   string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is позволяет errors.Is(err, ErrSessionExpired) для KindSessionExpired.
func (e *Error) Is(target error) bool {
	return target == ErrSessionExpired && e.Kind == KindSessionExpired
}

// Network оборачивает транспортную ошибку.
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: MsgLoadingFailed, Err: err}
}

// Malformed — тело ответа не удалось разобрать.
func Malformed(status int, err error) *Error {
	return &Error{Kind: KindMalformed, Status: status, Message: MsgMalformed, Err: err}
}

// SessionExpired — терминальная ошибка сессии.
func SessionExpired(cause error) *Error {
	return &Error{Kind: KindSessionExpired, Status: http.StatusUnauthorized, Message: MsgSessionExpired, Err: cause}
}

// FromResponse строит ошибку по non-2xx ответу.
// 401 становится KindUnauthorized, остальное KindHTTP.
func FromResponse(status int, body []byte, requestID string) *Error {
	e := &Error{Kind: KindHTTP, Status: status, RequestID: requestID, Message: Message(body)}
	if status == http.StatusUnauthorized {
		e.Kind = KindUnauthorized
	}

	if e.Message == "" {
		e.Message = genericMessage(e.Kind, status)
	}

	return e
}

// Message извлекает человекочитаемое сообщение из тела ошибки DRF:
// detail, message, error, non_field_errors, затем первая ошибка поля
// (в алфавитном порядке имён). Пустая строка, если извлечь нечего.
func Message(body []byte) string {
	var arr []json.RawMessage
	if json.Unmarshal(body, &arr) == nil {
		return firstString(arr)
	}

	var obj map[string]json.RawMessage
	if json.Unmarshal(body, &obj) != nil {
		return ""
	}

	for _, k := range [...]string{"detail", "message", "error", "non_field_errors"} {
		if v, ok := obj[k]; ok {
			if s := textOf(v); s != "" {
				return s
			}
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if s := textOf(obj[k]); s != "" {
			return k + ": " + s
		}
	}

	return ""
}

// UserMessage — текст для показа пользователю рядом с упавшей операцией.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrSessionExpired) {
		return MsgSessionExpired
	}

	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return genericMessage(e.Kind, e.Status)
	}

	return err.Error()
}

// textOf понимает строку, массив строк и объект {"message": ...}.
func textOf(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}

	var arr []json.RawMessage
	if json.Unmarshal(raw, &arr) == nil {
		return firstString(arr)
	}

	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) == nil {
		if v, ok := obj["message"]; ok {
			return textOf(v)
		}
	}

	return ""
}

func firstString(arr []json.RawMessage) string {
	for _, raw := range arr {
		if s := textOf(raw); s != "" {
			return s
		}
	}

	return ""
}

func genericMessage(k Kind, status int) string {
	switch k {
	case KindNetwork:
		return MsgLoadingFailed
	case KindUnauthorized:
		return MsgUnauthorized
	case KindSessionExpired:
		return MsgSessionExpired
	case KindMalformed:
		return MsgMalformed
	default:
		if status != 0 {
			return fmt.Sprintf("request failed: %d %s", status, http.StatusText(status))
		}
		return MsgLoadingFailed
	}
}
