// http собирает роутер локального шлюза brainboost proxy.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/http/handlers"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/http/middleware"
)

// APIPrefix — префикс маршрутов, пробрасываемых к бэкенду.
const APIPrefix = "/api"

type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(s handlers.Session, api handlers.Forwarder, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),
		middleware.RequestID(), // до логирования
		middleware.Logging(opts.Logger),
		middleware.AuthBearer(),
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout))
	}

	h := handlers.New(s, api, APIPrefix)

	root.Post("/auth/login", h.Login)
	root.Post("/auth/logout", h.Logout)
	root.Get("/auth/state", h.State)

	root.HandleFunc(APIPrefix, h.Forward)
	root.HandleFunc(APIPrefix+"/*", h.Forward)

	return root
}
