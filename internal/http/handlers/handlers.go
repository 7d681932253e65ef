// handlers — HTTP-обработчики локального шлюза: вход/выход сессии
// и проброс /api/* к бэкенду через аутентифицированный клиент.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/auth"
)

// Session — то, что шлюзу нужно от auth.Session.
type Session interface {
	LoginWithCredentials(ctx context.Context, username, password string, remember bool) (auth.State, error)
	LoginWithTokenPair(ctx context.Context, access, refresh string, remember bool) (auth.State, error)
	Logout(ctx context.Context)
	State() auth.State
}

// Forwarder — то, что шлюзу нужно от client.Client.
type Forwarder interface {
	Forward(ctx context.Context, method, pathAndQuery string, header http.Header, body io.Reader) (*http.Response, error)
}

type Handlers struct {
	Session Session
	API     Forwarder
	// APIPrefix снимается с пути перед пробросом ("/api").
	APIPrefix string
}

func New(s Session, api Forwarder, prefix string) *Handlers {
	return &Handlers{Session: s, API: api, APIPrefix: prefix}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — JSON-декодер без неизвестных полей.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}
