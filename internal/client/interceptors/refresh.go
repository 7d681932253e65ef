package interceptors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	apierrors "github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/errors"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/metrics"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/tokenstore"
)

var (
	// ErrRefreshFailed — ожидавший в очереди запрос узнал о провале refresh.
	ErrRefreshFailed = errors.New("token refresh failed")
	// ErrNoRefreshToken — обновлять нечем.
	ErrNoRefreshToken = errors.New("no refresh token")
	// errMissingAccess — в ответе refresh нет поля access.
	errMissingAccess = errors.New("refresh response has no access token")
	// ErrSessionChanged — пока шёл refresh, сессия завершилась или сменилась.
	ErrSessionChanged = errors.New("session changed during token refresh")
)

// maxRefreshBody — ограничение на размер тела ответа refresh.
const maxRefreshBody = 1 << 20

// Store — то, что Refresher требует от хранилища токенов.
type Store interface {
	RefreshToken(ctx context.Context) string
	Rotate(ctx context.Context, prev, access, refresh string) (tokenstore.Scope, bool)
	ClearAll(ctx context.Context)
}

// RefresherOptions — параметры Refresher.
// Transport — «голый» транспорт для самого refresh-запроса (без Annotator
// и Refresher), чтобы 401 от refresh не уходил на повторный круг.
type RefresherOptions struct {
	// Host — host:port API; 401 с других origin не обновляют сессию.
	Host      string
	Endpoint  string
	LoginPath string
	Timeout   time.Duration
	Transport http.RoundTripper
	Navigator Navigator
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	// OnRotate вызывается после успешного refresh с новым access.
	OnRotate func(access string)
	// OnLogout вызывается после принудительного завершения сессии.
	OnLogout func()
}

// Refresher — координатор обновления access-токена.
//
// Состояния: Idle и Refreshing (refreshing == true). Первый запрос,
// получивший 401, становится лидером и запускает единственный POST refresh;
// все последующие 401 до его завершения встают в очередь. По завершении
// очередь осушается один раз в порядке постановки: с новым токеном
// (каждый запрос повторяется один раз) или с "" (каждый получает
// ErrSessionExpired). Повторённый запрос повторно не обновляет токен.
type Refresher struct {
	store     Store
	annotator *Annotator
	opts      RefresherOptions
	client    *http.Client
	log       *slog.Logger

	mu         sync.Mutex
	refreshing bool
	queue      []func(token string)
}

func NewRefresher(store Store, annotator *Annotator, opts RefresherOptions) *Refresher {
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}

	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}

	return &Refresher{
		store:     store,
		annotator: annotator,
		opts:      opts,
		client:    &http.Client{Transport: opts.Transport},
		log:       l,
	}
}

type retriedKey struct{}

func isRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}

// Middleware перехватывает 401 и прозрачно повторяет запрос с новым токеном.
// Запросы с собственным токеном вызывающего (CtxAuthToken) и запросы на
// чужой host не обновляются: их 401 относится не к нашей сессии.
func (rf *Refresher) Middleware() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if isRetried(r.Context()) || ctxString(r.Context(), CtxAuthToken) != "" || !sameHost(r, rf.opts.Host) {
				return next.RoundTrip(r)
			}

			r, err := replayable(r)
			if err != nil {
				return nil, err
			}

			resp, err := next.RoundTrip(r)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}

			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxRefreshBody))
			_ = resp.Body.Close()

			tok, err := rf.await(r.Context())
			if err != nil {
				return nil, err
			}

			return rf.retry(next, r, tok)
		})
	}
}

func (rf *Refresher) retry(next http.RoundTripper, r *http.Request, tok string) (*http.Response, error) {
	r2 := r.Clone(context.WithValue(r.Context(), retriedKey{}, true))

	if r.GetBody != nil {
		body, err := r.GetBody()
		if err != nil {
			return nil, err
		}
		r2.Body = body
	}

	r2.Header.Set("Authorization", "Bearer "+tok)
	rf.opts.Metrics.Retried()

	return next.RoundTrip(r2)
}

type outcome struct {
	token string
	err   error
}

// await возвращает новый токен после завершения refresh: запускает его
// (лидер) или встаёт в очередь к уже идущему.
func (rf *Refresher) await(ctx context.Context) (string, error) {
	rf.mu.Lock()
	if rf.refreshing {
		ch := make(chan string, 1)
		rf.enqueueLocked(func(tok string) { ch <- tok })
		rf.mu.Unlock()

		select {
		case tok := <-ch:
			if tok == "" {
				return "", apierrors.SessionExpired(ErrRefreshFailed)
			}
			return tok, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	rf.refreshing = true
	rf.mu.Unlock()

	// Refresh не должен обрываться из-за отмены одного запроса:
	// его результат ждёт вся очередь.
	done := make(chan outcome, 1)
	go func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rf.opts.Timeout)
		defer cancel()
		done <- rf.run(rctx)
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return "", apierrors.SessionExpired(out.err)
		}
		return out.token, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (rf *Refresher) enqueueLocked(fn func(string)) {
	rf.queue = append(rf.queue, fn)
	rf.opts.Metrics.QueueLength(len(rf.queue))
}

// run выполняет refresh, применяет результат и осушает очередь.
//
// Ответ применяется, только если в хранилище всё ещё лежит отправленный
// refresh-токен. Иначе (logout или новый вход во время запроса) ничего не
// сохраняется и очередь осушается с "": завершённая сессия не
// восстанавливается, а новая не затирается.
func (rf *Refresher) run(ctx context.Context) outcome {
	const op = "interceptors.Refresher.run"

	sent, access, refresh, err := rf.refresh(ctx)
	if err == nil {
		sc, ok := rf.store.Rotate(ctx, sent, access, refresh)
		if ok {
			rf.annotator.SetToken(access)
			rf.opts.Metrics.Refresh(metrics.RefreshOK)
			rf.log.Info("token_refreshed",
				slog.String("op", op),
				slog.String("scope", sc.String()),
			)

			if rf.opts.OnRotate != nil {
				rf.opts.OnRotate(access)
			}
		} else {
			access, err = "", fmt.Errorf("%s: %w", op, ErrSessionChanged)
			rf.opts.Metrics.Refresh(metrics.RefreshFailed)
			rf.log.Info("token_refresh_discarded", slog.String("op", op))
		}
	} else {
		access = ""
		rf.fail(ctx, err)
	}

	rf.mu.Lock()
	q := rf.queue
	rf.queue = nil
	rf.refreshing = false
	rf.mu.Unlock()

	rf.opts.Metrics.QueueLength(0)

	for _, fn := range q {
		fn(access)
	}

	return outcome{token: access, err: err}
}

// fail — необратимый провал refresh: сессия закрывается, пользователь
// уводится на страницу входа (если он ещё не там).
func (rf *Refresher) fail(ctx context.Context, err error) {
	const op = "interceptors.Refresher.fail"

	result := metrics.RefreshFailed
	if errors.Is(err, ErrNoRefreshToken) {
		result = metrics.RefreshNoAuth
	}
	rf.opts.Metrics.Refresh(result)
	rf.opts.Metrics.ForcedLogout()

	rf.log.Warn("refresh_failed",
		slog.String("op", op),
		slog.String("err", err.Error()),
	)

	rf.store.ClearAll(ctx)
	rf.annotator.SetToken("")

	if rf.opts.OnLogout != nil {
		rf.opts.OnLogout()
	}

	if nav := rf.opts.Navigator; nav != nil && nav.Location() != rf.opts.LoginPath {
		nav.Redirect(rf.opts.LoginPath)
	}
}

// refresh — POST {refresh} на endpoint; ожидается {access[, refresh]}.
// Первым значением возвращается отправленный refresh-токен.
func (rf *Refresher) refresh(ctx context.Context) (sent, access, refresh string, err error) {
	const op = "interceptors.Refresher.refresh"

	rt := rf.store.RefreshToken(ctx)
	if rt == "" {
		return "", "", "", fmt.Errorf("%s: %w", op, ErrNoRefreshToken)
	}

	body, err := json.Marshal(map[string]string{"refresh": rt})
	if err != nil {
		return rt, "", "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rf.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return rt, "", "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := rf.client.Do(req)
	if err != nil {
		return rt, "", "", fmt.Errorf("%s: %w", op, apierrors.Network(err))
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxRefreshBody))
	if err != nil {
		return rt, "", "", fmt.Errorf("%s: %w", op, apierrors.Network(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rt, "", "", fmt.Errorf("%s: %w", op, apierrors.FromResponse(resp.StatusCode, b, req.Header.Get("X-Request-Id")))
	}

	var out struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return rt, "", "", fmt.Errorf("%s: %w", op, apierrors.Malformed(resp.StatusCode, err))
	}

	if out.Access == "" {
		return rt, "", "", fmt.Errorf("%s: %w", op, apierrors.Malformed(resp.StatusCode, errMissingAccess))
	}

	return rt, out.Access, out.Refresh, nil
}

// replayable гарантирует, что тело запроса можно отправить повторно.
// Запросы из http.NewRequest с bytes/strings-ридером уже имеют GetBody.
func replayable(r *http.Request) (*http.Request, error) {
	if r.Body == nil || r.Body == http.NoBody || r.GetBody != nil {
		return r, nil
	}

	b, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return nil, err
	}

	r2 := r.Clone(r.Context())
	r2.Body = io.NopCloser(bytes.NewReader(b))
	r2.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(b)), nil
	}

	return r2, nil
}
