package interceptors

import (
	"context"
	"net/http"
	"strings"
	"sync"
)

// TokenSource — запасной источник access-токена (хранилище токенов).
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

// Annotator гарантирует, что каждый исходящий запрос несёт текущий
// bearer-токен, если он есть.
//
// Порядок:
//  1. явный заголовок Authorization запроса не трогается;
//  2. иначе — токен из памяти (SetToken);
//  3. иначе — одно чтение из TokenSource; найденный токен
//     запоминается в памяти (восстановление после перезапуска процесса).
//
// Токен уходит только на host API (host:port из api.base_url). Запросы на
// другие origin (CDN, S3-ссылки из file, абсолютный next) идут без него.
// Пустой host снимает ограничение.
type Annotator struct {
	host string

	mu    sync.RWMutex
	token string
	src   TokenSource
}

func NewAnnotator(src TokenSource, host string) *Annotator {
	return &Annotator{src: src, host: host}
}

// sameHost — запрос адресован host API.
func sameHost(r *http.Request, host string) bool {
	return host == "" || strings.EqualFold(r.URL.Host, host)
}

// SetToken заменяет токен в памяти; "" — токена нет.
func (a *Annotator) SetToken(tok string) {
	a.mu.Lock()
	a.token = tok
	a.mu.Unlock()
}

func (a *Annotator) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.token
}

func (a *Annotator) current(ctx context.Context) string {
	if tok := a.Token(); tok != "" {
		return tok
	}

	if a.src == nil {
		return ""
	}

	tok := a.src.AccessToken(ctx)
	if tok == "" {
		return ""
	}

	a.mu.Lock()
	if a.token == "" {
		a.token = tok
	}
	a.mu.Unlock()

	return tok
}

func (a *Annotator) Middleware() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("Authorization") != "" || !sameHost(r, a.host) {
				return next.RoundTrip(r)
			}

			tok := a.current(r.Context())
			if tok == "" {
				return next.RoundTrip(r)
			}

			r = r.Clone(r.Context())
			r.Header.Set("Authorization", "Bearer "+tok)

			return next.RoundTrip(r)
		})
	}
}
