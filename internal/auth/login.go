package auth

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/errors"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/models"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/pkg/redact"
)

// LoginWithCredentials меняет логин/пароль на пару токенов.
// remember == true — токены переживают перезапуск процесса.
func (s *Session) LoginWithCredentials(ctx context.Context, username, password string, remember bool) (State, error) {
	const op = "auth.LoginWithCredentials"

	s.log.Info("login_attempt",
		slog.String("op", op),
		slog.String("username", redact.Username(username)),
		slog.Bool("remember", remember),
	)

	in := map[string]string{"username": username, "password": password}
	pair, err := s.exchange(ctx, s.client.Endpoints().Login, in)
	if err != nil {
		return State{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.establish(ctx, op, pair, remember)
}

// LoginWithTokenPair принимает уже полученную пару.
func (s *Session) LoginWithTokenPair(ctx context.Context, access, refresh string, remember bool) (State, error) {
	const op = "auth.LoginWithTokenPair"

	return s.establish(ctx, op, models.TokenPair{Access: access, Refresh: refresh}, remember)
}

// LoginWithGoogle меняет Google ID token (credential) на пару токенов бэкенда.
func (s *Session) LoginWithGoogle(ctx context.Context, credential string, remember bool) (State, error) {
	const op = "auth.LoginWithGoogle"

	if credential == "" {
		return State{}, fmt.Errorf("%s: %w: empty credential", op, apierrors.ErrBadRequest)
	}

	pair, err := s.exchange(ctx, s.client.Endpoints().GoogleLogin, map[string]string{"credential": credential})
	if err != nil {
		return State{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.establish(ctx, op, pair, remember)
}

// Logout — без сети: очищает хранилище, токен в памяти и профиль.
func (s *Session) Logout(ctx context.Context) {
	s.store.ClearAll(ctx)
	s.apply("")

	s.log.Info("logout", slog.String("op", "auth.Logout"))
}

func (s *Session) exchange(ctx context.Context, path string, in any) (models.TokenPair, error) {
	var raw json.RawMessage
	if err := s.client.DoPublic(ctx, http.MethodPost, path, in, &raw); err != nil {
		return models.TokenPair{}, err
	}

	pair, err := decodeTokenPair(raw)
	if err != nil {
		return models.TokenPair{}, apierrors.Malformed(http.StatusOK, err)
	}

	return pair, nil
}

func (s *Session) establish(ctx context.Context, op string, pair models.TokenPair, remember bool) (State, error) {
	if !validShape(pair.Access) {
		s.Logout(ctx)
		s.log.Warn("login_rejected",
			slog.String("op", op),
			slog.String("reason", "access token shape"),
		)
		return State{}, fmt.Errorf("%s: %w", op, ErrInvalidCredential)
	}

	s.store.SaveTokens(ctx, pair, remember)
	// Хранилище может оказаться no-op; токен в памяти ставится в любом случае.
	s.apply(pair.Access)

	s.log.Info("login_ok", slog.String("op", op), slog.Bool("remember", remember))

	return s.State(), nil
}

// decodeTokenPair понимает access/access_token/tokens.access
// (и то же для refresh).
func decodeTokenPair(b []byte) (models.TokenPair, error) {
	var body struct {
		Access       string `json:"access"`
		AccessToken  string `json:"access_token"`
		Refresh      string `json:"refresh"`
		RefreshToken string `json:"refresh_token"`
		Tokens       struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		} `json:"tokens"`
	}

	if err := json.Unmarshal(b, &body); err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{
		Access:  cmp.Or(body.Access, body.AccessToken, body.Tokens.Access),
		Refresh: cmp.Or(body.Refresh, body.RefreshToken, body.Tokens.Refresh),
	}, nil
}

// validShape — три непустых сегмента через точку.
func validShape(tok string) bool {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return false
	}

	for _, p := range parts {
		if p == "" {
			return false
		}
	}

	return true
}
