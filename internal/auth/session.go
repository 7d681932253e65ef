// auth — сессия пользователя: единственный источник истины о том,
// кто вошёл в систему.
//
// Session подписана на изменения хранилища токенов и держит токен
// Annotator в согласованном состоянии. Профиль пользователя подгружается
// асинхронно при каждой смене access-токена; результаты устаревших
// загрузок отбрасываются.
package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/client"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/client/interceptors"
	apierrors "github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/errors"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/models"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/pkg/log"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/tokenstore"
)

// ErrInvalidCredential — access-значение не похоже на подписанный токен.
// Прокси отдаёт 401 invalid_credential.
var ErrInvalidCredential = apierrors.ErrInvalidCredential

// State — снимок сессии. IsAuthenticated всегда равно AccessToken != "".
type State struct {
	IsAuthenticated bool         `json:"is_authenticated"`
	AccessToken     string       `json:"-"`
	User            *models.User `json:"user"`
	// ExpiresAt — exp из токена (без проверки подписи); нулевое, если claim нет.
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

type Session struct {
	client    *client.Client
	store     *tokenstore.Store
	annotator *interceptors.Annotator
	log       *slog.Logger

	mu     sync.Mutex
	token  string
	user   *models.User
	gen    uint64
	subs   map[int]func(State)
	nextID int
	closed bool

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	unsubscribe func()
}

func New(c *client.Client, lg *slog.Logger) *Session {
	if lg == nil {
		lg = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		client:    c,
		store:     c.Store(),
		annotator: c.Annotator(),
		log:       lg,
		subs:      make(map[int]func(State)),
		ctx:       log.Into(ctx, lg),
		cancel:    cancel,
	}

	s.unsubscribe = s.store.Subscribe(func(key string) {
		if key == tokenstore.KeyAccess || key == tokenstore.KeyLegacyAccess {
			s.sync(s.ctx)
		}
	})

	return s
}

// Restore поднимает токен из хранилища (после перезапуска процесса)
// и запускает загрузку профиля.
func (s *Session) Restore(ctx context.Context) State {
	s.sync(ctx)
	return s.State()
}

// RestoreUser — Restore с синхронной загрузкой профиля: один запрос
// профиля, State уже содержит User. Без токена возвращает State без ошибки.
func (s *Session) RestoreUser(ctx context.Context) (State, error) {
	tok := s.store.AccessToken(ctx)
	gen, _ := s.set(tok, false)
	if tok == "" {
		return s.State(), nil
	}

	u, err := s.client.Profile(ctx)
	return s.setUser(gen, u, err), err
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stateLocked()
}

// Subscribe вызывает fn после каждого изменения состояния.
func (s *Session) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Close отписывается от хранилища и дожидается загрузок профиля.
// После Close новые загрузки профиля не запускаются.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.unsubscribe()
	s.cancel()
	s.wg.Wait()
}

func (s *Session) sync(ctx context.Context) {
	s.apply(s.store.AccessToken(ctx))
}

// apply идемпотентен: повторная установка того же токена ничего не меняет.
func (s *Session) apply(tok string) {
	if gen, ok := s.set(tok, true); ok {
		go s.fetchProfile(gen)
	}
}

// set меняет токен и оповещает подписчиков. async — зарезервировать
// фоновую загрузку профиля (wg.Add под s.mu, пока сессия не закрыта).
// Возвращает поколение токена и признак резервирования.
func (s *Session) set(tok string, async bool) (uint64, bool) {
	s.mu.Lock()
	if tok == s.token {
		gen := s.gen
		s.mu.Unlock()
		return gen, false
	}

	s.token = tok
	s.gen++
	gen := s.gen
	if tok == "" {
		s.user = nil
	}
	s.annotator.SetToken(tok)

	fetch := async && tok != "" && !s.closed
	if fetch {
		s.wg.Add(1)
	}

	st, subs := s.stateLocked(), s.subscribersLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}

	return gen, fetch
}

func (s *Session) fetchProfile(gen uint64) {
	defer s.wg.Done()

	u, err := s.client.Profile(s.ctx)
	s.setUser(gen, u, err)
}

// setUser применяет результат загрузки профиля поколения gen.
// Результат устаревшего поколения отбрасывается.
func (s *Session) setUser(gen uint64, u *models.User, err error) State {
	const op = "auth.fetchProfile"

	s.mu.Lock()
	if gen != s.gen {
		st := s.stateLocked()
		s.mu.Unlock()
		s.log.Debug("profile_stale", slog.String("op", op))
		return st
	}

	if err != nil {
		s.user = nil
		if s.ctx.Err() == nil {
			s.log.Warn("profile_fetch_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
	} else {
		s.user = u
	}

	st, subs := s.stateLocked(), s.subscribersLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}

	return st
}

func (s *Session) stateLocked() State {
	return State{
		IsAuthenticated: s.token != "",
		AccessToken:     s.token,
		User:            s.user,
		ExpiresAt:       expiresAt(s.token),
	}
}

func (s *Session) subscribersLocked() []func(State) {
	out := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func expiresAt(tok string) time.Time {
	if tok == "" {
		return time.Time{}
	}

	t, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}

	exp, err := t.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}

	return exp.Time
}
