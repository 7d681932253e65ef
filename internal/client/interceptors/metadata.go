package interceptors

import (
	"context"
	"net/http"
)

type CtxKey string

const (
	CtxRequestID CtxKey = "request_id"
	CtxAuthToken CtxKey = "auth_token"
)

// WithMetadata — добавляет в исходящий запрос заголовки:
//   - X-Request-Id (если есть в контексте),
//   - Authorization: Bearer <token> (если есть в контексте) — явный токен вызова,
//     который Annotator уже не перезапишет,
//   - User-Agent (если передан параметром).
//
// Уже выставленные заголовки запроса не трогаются.
func WithMetadata(userAgent string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			set := map[string]string{}

			if rid := ctxString(r.Context(), CtxRequestID); rid != "" && r.Header.Get("X-Request-Id") == "" {
				set["X-Request-Id"] = rid
			}
			if tok := ctxString(r.Context(), CtxAuthToken); tok != "" && r.Header.Get("Authorization") == "" {
				set["Authorization"] = "Bearer " + tok
			}
			if userAgent != "" && r.Header.Get("User-Agent") == "" {
				set["User-Agent"] = userAgent
			}

			if len(set) == 0 {
				return next.RoundTrip(r)
			}

			r = r.Clone(r.Context())
			for k, v := range set {
				r.Header.Set(k, v)
			}

			return next.RoundTrip(r)
		})
	}
}

func ctxString(ctx context.Context, k CtxKey) string {
	s, _ := ctx.Value(k).(string)
	return s
}
