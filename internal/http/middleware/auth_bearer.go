package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/client/interceptors"
)

// AuthBearer кладёт токен из "Authorization: Bearer <token>" в контекст
// по ключу interceptors.CtxAuthToken. Такой запрос уйдёт к бэкенду
// с токеном вызывающего, а не с токеном сессии шлюза.
func AuthBearer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Bearer "

			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, prefix) {
				if token := strings.TrimSpace(auth[len(prefix):]); token != "" {
					ctx := context.WithValue(r.Context(), interceptors.CtxAuthToken, token)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
