package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/client"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/config"
	apierrors "github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/errors"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/models"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/storage/memory"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/tokenstore"
	"github.com/stretchr/testify/require"
)

// backend — минимальный DRF-бэкенд: login, google, profile.
type backend struct {
	mu       sync.Mutex
	login    any
	status   int
	users    map[string]*models.User // по access-токену
	blocked  map[string]chan struct{}
	profiles atomic.Int32
	gotLogin map[string]string
	lastAuth atomic.Value
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()

	exchange := func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		_ = json.NewDecoder(r.Body).Decode(&b.gotLogin)
		body, status := b.login, b.status
		b.mu.Unlock()

		if status == 0 {
			status = http.StatusOK
		}
		writeJSON(w, status, body)
	}
	mux.HandleFunc("/accounts/api/login/", exchange)
	mux.HandleFunc("/accounts/api/google/", exchange)

	mux.HandleFunc("/accounts/api/profile/", func(w http.ResponseWriter, r *http.Request) {
		b.profiles.Add(1)
		tok := r.Header.Get("Authorization")

		b.mu.Lock()
		gate := b.blocked[tok]
		u := b.users[tok]
		b.mu.Unlock()

		if gate != nil {
			<-gate
		}
		if u == nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
			return
		}
		writeJSON(w, http.StatusOK, u)
	})

	mux.HandleFunc("/echo/", func(w http.ResponseWriter, r *http.Request) {
		b.lastAuth.Store(r.Header.Get("Authorization"))
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type rig struct {
	sess    *Session
	client  *client.Client
	store   *tokenstore.Store
	session *memory.Storage
	durable *memory.Storage
	backend *backend
	srv     *httptest.Server
}

func newRig(t *testing.T) *rig {
	t.Helper()

	b := &backend{users: map[string]*models.User{}, blocked: map[string]chan struct{}{}}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		API: config.APIConfig{BaseURL: srv.URL, UserAgent: "test", LoginPath: "/login"},
		Endpoints: config.EndpointsConfig{
			Login:       "/accounts/api/login/",
			Refresh:     "/accounts/api/token/refresh/",
			Profile:     "/accounts/api/profile/",
			GoogleLogin: "/accounts/api/google/",
		},
		Timeouts: config.TimeoutConfig{Request: 5 * time.Second, Refresh: 5 * time.Second},
	}

	sm, dm := memory.New(), memory.New()
	store := tokenstore.New(sm, dm, nil)
	c, err := client.New(cfg, store, client.Options{})
	require.NoError(t, err)

	s := New(c, nil)
	t.Cleanup(s.Close)

	return &rig{sess: s, client: c, store: store, session: sm, durable: dm, backend: b, srv: srv}
}

func (r *rig) setUser(tok string, u *models.User) {
	r.backend.mu.Lock()
	r.backend.users["Bearer "+tok] = u
	r.backend.mu.Unlock()
}

func (r *rig) setLogin(status int, body any) {
	r.backend.mu.Lock()
	r.backend.status, r.backend.login = status, body
	r.backend.mu.Unlock()
}

func has(t *testing.T, m *memory.Storage, key string) bool {
	t.Helper()
	_, ok, err := m.Get(context.Background(), key)
	require.NoError(t, err)
	return ok
}

func eventuallyUser(t *testing.T, s *Session, username string) {
	t.Helper()
	require.Eventually(t, func() bool {
		u := s.State().User
		return u != nil && u.Username == username
	}, 2*time.Second, 5*time.Millisecond)
}

func TestLoginWithCredentials_RememberPersistsDurableOnly(t *testing.T) {
	t.Parallel()

	r := newRig(t)
	r.setLogin(http.StatusOK, map[string]string{"access": "a.b.c", "refresh": "x.y.z"})
	r.setUser("a.b.c", &models.User{ID: 1, Username: "alice"})

	st, err := r.sess.LoginWithCredentials(context.Background(), "alice", "secret", true)
	require.NoError(t, err)
	require.True(t, st.IsAuthenticated)
	require.Equal(t, "a.b.c", st.AccessToken)
	require.Equal(t, map[string]string{"username": "alice", "password": "secret"}, r.backend.gotLogin)

	for _, k := range tokenstore.Keys {
		require.True(t, has(t, r.durable, k), k)
	}
	require.Zero(t, r.session.Len())
	require.Equal(t, "a.b.c", r.client.Annotator().Token())

	eventuallyUser(t, r.sess, "alice")
}

func TestLoginWithCredentials_WithoutRememberIsSessionScoped(t *testing.T) {
	t.Parallel()

	r := newRig(t)
	r.setLogin(http.StatusOK, map[string]string{"access": "a.b.c", "refresh": "x.y.z"})

	_, err := r.sess.LoginWithCredentials(context.Background(), "alice", "secret", false)
	require.NoError(t, err)
	require.Equal(t, 4, r.session.Len())
	require.Zero(t, r.durable.Len())
}

func TestLoginWithCredentials_RejectsNonTokenShape(t *testing.T) {
	t.Parallel()

	r := newRig(t)
	r.setLogin(http.StatusOK, map[string]string{"access": "not-a-token", "refresh": "x.y.z"})

	st, err := r.sess.LoginWithCredentials(context.Background(), "alice", "bad-secret", true)
	require.ErrorIs(t, err, ErrInvalidCredential)
	require.False(t, st.IsAuthenticated)
	require.False(t, r.sess.State().IsAuthenticated)
	require.Zero(t, r.durable.Len())
	require.Zero(t, r.session.Len())
}

func TestLoginWithCredentials_ToleratedFieldNames(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body any
	}{
		{"snake", map[string]string{"access_token": "a.b.c", "refresh_token": "x.y.z"}},
		{"nested", map[string]any{"tokens": map[string]string{"access": "a.b.c", "refresh": "x.y.z"}}},
		{"mixed", map[string]any{"access": "a.b.c", "tokens": map[string]string{"refresh": "x.y.z"}}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := newRig(t)
			r.setLogin(http.StatusOK, tc.body)

			st, err := r.sess.LoginWithCredentials(context.Background(), "alice", "secret", true)
			require.NoError(t, err)
			require.Equal(t, "a.b.c", st.AccessToken)
			require.Equal(t, "x.y.z", r.store.RefreshToken(context.Background()))
		})
	}
}

func TestLoginWithCredentials_MissingAccess(t *testing.T) {
	t.Parallel()

	r := newRig(t)
	r.setLogin(http.StatusOK, map[string]string{"refresh": "x.y.z"})

	_, err := r.sess.LoginWithCredentials(context.Background(), "alice", "secret", true)
	require.ErrorIs(t, err, ErrInvalidCredential)
	require.Zero(t, r.durable.Len())
}

func TestLoginWithCredentials_BackendRejects(t *testing.T) {
	t.Parallel()

	r := newRig(t)
	r.setLogin(http.StatusBadRequest, map[string][]string{"non_field_errors": {"Unable to log in with provided credentials."}})

	_, err := r.sess.LoginWithCredentials(context.Background(), "alice", "nope", true)
	require.Error(t, err)
	require.Equal(t, "Unable to log in with provided credentials.", apierrors.UserMessage(err))
	require.False(t, r.sess.State().IsAuthenticated)
}

func TestLogin_ProfileFailureKeepsSession(t *testing.T) {
	t.Parallel()

	r := newRig(t)
	// Профиль для a.b.c не задан: бэкенд ответит 500.
	st, err := r.sess.LoginWithTokenPair(context.Background(), "a.b.c", "x.y.z", true)
	require.NoError(t, err)
	require.True(t, st.IsAuthenticated)

	require.Eventually(t, func() bool { return r.backend.profiles.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	r.sess.Close()

	st = r.sess.State()
	require.True(t, st.IsAuthenticated)
	require.Nil(t, st.User)
}

func TestLogin_StaleProfileDiscarded(t *testing.T) {
	t.Parallel()

	r := newRig(t)
	gate := make(chan struct{})
	r.backend.mu.Lock()
	r.backend.blocked["Bearer o.l.d"] = gate
	r.backend.mu.Unlock()
	r.setUser("o.l.d", &models.User{Username: "old"})
	r.setUser("n.e.w", &models.User{Username: "new"})

	ctx := context.Background()
	_, err := r.sess.LoginWithTokenPair(ctx, "o.l.d", "r.e.f", false)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return r.backend.profiles.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	_, err = r.sess.LoginWithTokenPair(ctx, "n.e.w", "r.e.f", false)
	require.NoError(t, err)
	eventuallyUser(t, r.sess, "new")

	close(gate)
	r.sess.Close()
	require.Equal(t, "new", r.sess.State().User.Username)
}

func TestLogout_ClearsEverything(t *testing.T) {
	t.Parallel()

	r := newRig(t)
	ctx := context.Background()

	_, err := r.sess.LoginWithTokenPair(ctx, "a.b.c", "x.y.z", true)
	require.NoError(t, err)
	r.store.Write(ctx, tokenstore.KeyLegacyAccess, "stale.legacy.tok", false)

	r.sess.Logout(ctx)

	st := r.sess.State()
	require.False(t, st.IsAuthenticated)
	require.Empty(t, st.AccessToken)
	require.Nil(t, st.User)
	require.Zero(t, r.session.Len())
	require.Zero(t, r.durable.Len())
	require.Empty(t, r.client.Annotator().Token())

	require.NoError(t, r.client.Do(ctx, http.MethodGet, "/echo/", nil, nil))
	require.Equal(t, "", r.backend.lastAuth.Load())
}

func TestSession_FollowsStoreRotation(t *testing.T) {
	t.Parallel()

	r := newRig(t)
	ctx := context.Background()

	_, err := r.sess.LoginWithTokenPair(ctx, "a.b.c", "x.y.z", true)
	require.NoError(t, err)

	sc, ok := r.store.Rotate(ctx, "x.y.z", "n.e.w", "")
	require.True(t, ok)
	require.Equal(t, tokenstore.Durable, sc)
	require.Equal(t, "n.e.w", r.sess.State().AccessToken)
	require.Equal(t, "n.e.w", r.client.Annotator().Token())

	r.store.ClearAll(ctx)
	require.False(t, r.sess.State().IsAuthenticated)
}

func TestRestore_HydratesFromDurableStore(t *testing.T) {
	t.Parallel()

	r := newRig(t)
	ctx := context.Background()
	require.NoError(t, r.durable.Set(ctx, tokenstore.KeyAccess, "a.b.c"))
	require.NoError(t, r.durable.Set(ctx, tokenstore.KeyRefresh, "x.y.z"))
	r.setUser("a.b.c", &models.User{Username: "alice"})

	st := r.sess.Restore(ctx)
	require.True(t, st.IsAuthenticated)
	require.Equal(t, "a.b.c", r.client.Annotator().Token())
	eventuallyUser(t, r.sess, "alice")
}

func TestRestoreUser_SingleProfileRequest(t *testing.T) {
	t.Parallel()

	r := newRig(t)
	ctx := context.Background()
	require.NoError(t, r.durable.Set(ctx, tokenstore.KeyAccess, "a.b.c"))
	r.setUser("a.b.c", &models.User{Username: "alice"})

	st, err := r.sess.RestoreUser(ctx)
	require.NoError(t, err)
	require.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	require.Equal(t, "alice", st.User.Username)

	r.sess.Close()
	require.Equal(t, int32(1), r.backend.profiles.Load())
}

func TestRestoreUser_NoSession(t *testing.T) {
	t.Parallel()

	r := newRig(t)

	st, err := r.sess.RestoreUser(context.Background())
	require.NoError(t, err)
	require.False(t, st.IsAuthenticated)
	require.Zero(t, r.backend.profiles.Load())
}

func TestRestoreUser_ProfileError(t *testing.T) {
	t.Parallel()

	r := newRig(t)
	ctx := context.Background()
	require.NoError(t, r.durable.Set(ctx, tokenstore.KeyAccess, "a.b.c"))

	st, err := r.sess.RestoreUser(ctx)
	require.Error(t, err)
	require.True(t, st.IsAuthenticated)
	require.Nil(t, st.User)
}

// После Close вход меняет состояние, но фоновая загрузка профиля не стартует.
func TestSession_NoProfileFetchAfterClose(t *testing.T) {
	t.Parallel()

	r := newRig(t)
	r.setUser("a.b.c", &models.User{Username: "alice"})
	r.sess.Close()

	st, err := r.sess.LoginWithTokenPair(context.Background(), "a.b.c", "x.y.z", false)
	require.NoError(t, err)
	require.True(t, st.IsAuthenticated)

	r.sess.Close()
	require.Zero(t, r.backend.profiles.Load())
	require.Nil(t, r.sess.State().User)
}

func TestState_ExpiresAtFromClaims(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)

	r := newRig(t)
	st, err := r.sess.LoginWithTokenPair(context.Background(), tok, "", false)
	require.NoError(t, err)
	require.True(t, st.ExpiresAt.Equal(exp))

	require.True(t, expiresAt("a.b.c").IsZero())
	require.True(t, expiresAt("").IsZero())
}

func TestLoginWithGoogle(t *testing.T) {
	t.Parallel()

	r := newRig(t)
	ctx := context.Background()

	_, err := r.sess.LoginWithGoogle(ctx, "", true)
	require.ErrorIs(t, err, apierrors.ErrBadRequest)

	r.setLogin(http.StatusOK, map[string]string{"access": "g.o.o", "refresh": "g.l.e"})
	st, err := r.sess.LoginWithGoogle(ctx, "google-id-token", true)
	require.NoError(t, err)
	require.Equal(t, "g.o.o", st.AccessToken)
	require.Equal(t, map[string]string{"credential": "google-id-token"}, r.backend.gotLogin)
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	r := newRig(t)
	ctx := context.Background()

	var mu sync.Mutex
	var seen []bool
	cancel := r.sess.Subscribe(func(st State) {
		mu.Lock()
		seen = append(seen, st.IsAuthenticated)
		mu.Unlock()
	})

	_, err := r.sess.LoginWithTokenPair(ctx, "a.b.c", "x.y.z", false)
	require.NoError(t, err)
	r.sess.Close()
	r.sess.Logout(ctx)
	cancel()
	cancel()
	_, err = r.sess.LoginWithTokenPair(ctx, "d.e.f", "x.y.z", false)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	// login, профиль (ошибка 500), logout.
	require.Equal(t, []bool{true, true, false}, seen)
}

func TestValidShape(t *testing.T) {
	t.Parallel()

	require.True(t, validShape("a.b.c"))
	for _, s := range []string{"", "a.b", "a..c", ".b.c", "a.b.c.d", "not-a-token"} {
		require.False(t, validShape(s), s)
	}
}
