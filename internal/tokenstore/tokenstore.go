// tokenstore хранит пару токенов в одном из двух хранилищ:
// session-scoped (живёт с процессом) и durable ("remember me").
//
// Инварианты:
//   - Write кладёт ключ в выбранное хранилище и удаляет его из другого,
//     поэтому ключ всегда находится не более чем в одном из них;
//   - Read сначала смотрит session, затем durable;
//   - ошибки бэкендов логируются (Warn) и проглатываются: чтение даёт "",
//     запись и очистка ничего не делают.
package tokenstore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/models"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/storage"
)

// Ключи хранилища. accessToken/refreshToken дублируют основные
// для совместимости со старыми клиентами.
const (
	KeyAccess        = "access"
	KeyRefresh       = "refresh"
	KeyLegacyAccess  = "accessToken"
	KeyLegacyRefresh = "refreshToken"
)

// Keys — все ключи, которые удаляет ClearAll.
var Keys = []string{KeyAccess, KeyRefresh, KeyLegacyAccess, KeyLegacyRefresh}

// Scope — область хранения.
type Scope uint8

const (
	Session Scope = iota + 1
	Durable
)

func (s Scope) String() string {
	switch s {
	case Session:
		return "session"
	case Durable:
		return "durable"
	default:
		return "unknown"
	}
}

type Store struct {
	session storage.Backend
	durable storage.Backend
	log     *slog.Logger

	// wmu упорядочивает запись, очистку и Rotate внутри процесса.
	wmu sync.Mutex

	mu     sync.Mutex
	subs   map[int]func(key string)
	nextID int
}

// New собирает Store. nil-бэкенд заменяется на storage.Noop.
func New(session, durable storage.Backend, log *slog.Logger) *Store {
	if session == nil {
		session = storage.Noop{}
	}

	if durable == nil {
		durable = storage.Noop{}
	}

	if log == nil {
		log = slog.Default()
	}

	return &Store{
		session: session,
		durable: durable,
		log:     log,
		subs:    make(map[int]func(string)),
	}
}

// Write сохраняет value под key в выбранной области и удаляет key из другой.
func (s *Store) Write(ctx context.Context, key, value string, durable bool) {
	s.wmu.Lock()
	s.write(ctx, key, value, durable)
	s.wmu.Unlock()

	s.notify(key)
}

// Read — значение из session, иначе из durable, иначе "".
func (s *Store) Read(ctx context.Context, key string) string {
	v, _, _ := s.lookup(ctx, key)
	return v
}

// Locate сообщает, в какой области лежит key.
func (s *Store) Locate(ctx context.Context, key string) (Scope, bool) {
	_, sc, ok := s.lookup(ctx, key)
	return sc, ok
}

// Delete удаляет key из обеих областей.
func (s *Store) Delete(ctx context.Context, key string) {
	s.wmu.Lock()
	s.del(ctx, key)
	s.wmu.Unlock()

	s.notify(key)
}

// ClearAll удаляет все ключи токенов из обеих областей.
func (s *Store) ClearAll(ctx context.Context) {
	s.wmu.Lock()
	for _, k := range Keys {
		s.del(ctx, k)
	}
	s.wmu.Unlock()

	s.notify(Keys...)
}

// SaveTokens сохраняет пару вместе с legacy-дубликатами.
// Пустой Refresh удаляет refresh-ключи из обеих областей.
func (s *Store) SaveTokens(ctx context.Context, p models.TokenPair, durable bool) {
	s.wmu.Lock()
	s.write(ctx, KeyAccess, p.Access, durable)
	s.write(ctx, KeyLegacyAccess, p.Access, durable)

	if p.Refresh != "" {
		s.write(ctx, KeyRefresh, p.Refresh, durable)
		s.write(ctx, KeyLegacyRefresh, p.Refresh, durable)
	} else {
		s.del(ctx, KeyRefresh)
		s.del(ctx, KeyLegacyRefresh)
	}
	s.wmu.Unlock()

	s.notify(Keys...)
}

// AccessToken читает access с откатом на legacy-ключ.
func (s *Store) AccessToken(ctx context.Context) string {
	if v := s.Read(ctx, KeyAccess); v != "" {
		return v
	}

	return s.Read(ctx, KeyLegacyAccess)
}

// RefreshToken читает refresh с откатом на legacy-ключ.
func (s *Store) RefreshToken(ctx context.Context) string {
	if v := s.Read(ctx, KeyRefresh); v != "" {
		return v
	}

	return s.Read(ctx, KeyLegacyRefresh)
}

// Rotate сохраняет токены после refresh в ту область, где лежал refresh-токен,
// сохраняя исходный выбор "remember me". Пустой refresh оставляет прежний.
//
// prev — refresh-токен, с которым выполнялся refresh. Если в хранилище его
// уже нет (logout или новый вход во время запроса), ничего не пишется и
// возвращается false.
func (s *Store) Rotate(ctx context.Context, prev, access, refresh string) (Scope, bool) {
	s.wmu.Lock()

	if s.RefreshToken(ctx) != prev {
		s.wmu.Unlock()
		return 0, false
	}

	sc := s.homeScope(ctx)
	durable := sc == Durable

	s.write(ctx, KeyAccess, access, durable)
	s.write(ctx, KeyLegacyAccess, access, durable)

	if refresh != "" {
		s.write(ctx, KeyRefresh, refresh, durable)
		s.write(ctx, KeyLegacyRefresh, refresh, durable)
	}
	s.wmu.Unlock()

	s.notify(Keys...)
	return sc, true
}

// homeScope — область refresh-токена, затем access; по умолчанию Session.
func (s *Store) homeScope(ctx context.Context) Scope {
	for _, k := range [...]string{KeyRefresh, KeyLegacyRefresh, KeyAccess, KeyLegacyAccess} {
		if sc, ok := s.Locate(ctx, k); ok {
			return sc
		}
	}

	return Session
}

// Subscribe регистрирует fn на изменение любого ключа (локальная запись
// или внешнее изменение из Watch). Возвращает функцию отписки.
func (s *Store) Subscribe(fn func(key string)) (cancel func()) {
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

func (s *Store) notify(keys ...string) {
	s.mu.Lock()
	fns := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, k := range keys {
		for _, fn := range fns {
			fn(k)
		}
	}
}

func (s *Store) lookup(ctx context.Context, key string) (string, Scope, bool) {
	for _, sc := range [...]Scope{Session, Durable} {
		v, ok, err := s.backend(sc).Get(ctx, key)
		if err != nil {
			s.warn("tokenstore.Read", key, sc, err)
			continue
		}

		if ok {
			return v, sc, true
		}
	}

	return "", 0, false
}

func (s *Store) write(ctx context.Context, key, value string, durable bool) {
	const op = "tokenstore.Write"

	target, other := Session, Durable
	if durable {
		target, other = Durable, Session
	}

	if err := s.backend(other).Delete(ctx, key); err != nil {
		s.warn(op, key, other, err)
	}

	if err := s.backend(target).Set(ctx, key, value); err != nil {
		s.warn(op, key, target, err)
	}
}

func (s *Store) del(ctx context.Context, key string) {
	const op = "tokenstore.Delete"

	for _, sc := range [...]Scope{Session, Durable} {
		if err := s.backend(sc).Delete(ctx, key); err != nil {
			s.warn(op, key, sc, err)
		}
	}
}

func (s *Store) backend(sc Scope) storage.Backend {
	if sc == Durable {
		return s.durable
	}

	return s.session
}

func (s *Store) warn(op, key string, sc Scope, err error) {
	s.log.Warn("token_store_failed",
		slog.String("op", op),
		slog.String("key", key),
		slog.String("scope", sc.String()),
		slog.String("err", err.Error()),
	)
}
