package interceptors

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/pkg/log"
)

// Logging — логирование исходящих запросов.
// Поведение:
//   - берёт X-Request-Id запроса (или генерирует UUID и выставляет его);
//   - прокладывает обогащённый логгер в контекст запроса (internal/pkg/log);
//   - пишет одну финальную запись: msg="http_client", status, dur
//     (Warn и err, если ответа не было).
//
// Безопасность: не логирует тело, query и заголовок Authorization.
func Logging(base *slog.Logger) Middleware {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			rid := r.Header.Get("X-Request-Id")
			if rid == "" {
				rid = uuid.NewString()
				r = r.Clone(r.Context())
				r.Header.Set("X-Request-Id", rid)
			}

			l := base.With(
				slog.String("request_id", rid),
				slog.String("method", r.Method),
				slog.String("host", r.URL.Host),
				slog.String("path", r.URL.Path),
			)
			r = r.WithContext(log.Into(r.Context(), l))

			resp, err := next.RoundTrip(r)
			if err != nil {
				l.Warn("http_client",
					slog.String("err", err.Error()),
					slog.Duration("dur", time.Since(start)),
				)
				return nil, err
			}

			l.Info("http_client",
				slog.Int("status", resp.StatusCode),
				slog.Duration("dur", time.Since(start)),
			)

			return resp, nil
		})
	}
}
