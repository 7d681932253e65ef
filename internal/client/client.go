// client — аутентифицированный HTTP-клиент REST-бэкенда BrainBoost
// и типизированные ресурсы поверх него (courses.go, chats.go, ...).
//
// Цепочка исходящих запросов (внешний -> внутренний):
//
//	Metadata -> Annotator -> Refresher -> Logging -> Timeout -> base
//
// Публичная цепочка (login, google) не содержит Annotator и Refresher;
// сам refresh-запрос уходит через Logging -> base.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/client/interceptors"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/config"
	apierrors "github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/errors"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/metrics"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/tokenstore"
)

// maxBody — ограничение на размер JSON-ответа.
const maxBody = 8 << 20

type Options struct {
	Logger    *slog.Logger
	Navigator interceptors.Navigator
	Metrics   *metrics.Metrics
	// Transport — базовый транспорт; по умолчанию http.DefaultTransport.
	Transport http.RoundTripper
	// OnRotate/OnLogout пробрасываются в Refresher.
	OnRotate func(access string)
	OnLogout func()
}

type Client struct {
	baseURL   string
	endpoints config.EndpointsConfig
	poll      time.Duration
	log       *slog.Logger

	store     *tokenstore.Store
	annotator *interceptors.Annotator
	refresher *interceptors.Refresher

	http   *http.Client
	public *http.Client
}

func New(cfg *config.Config, store *tokenstore.Store, opts Options) (*Client, error) {
	const op = "client.New"

	if cfg == nil {
		return nil, fmt.Errorf("%s: nil config", op)
	}

	if store == nil {
		return nil, fmt.Errorf("%s: nil token store", op)
	}

	lg := opts.Logger
	if lg == nil {
		lg = slog.Default()
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%s: invalid base url %q", op, cfg.API.BaseURL)
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.API.BaseURL, "/"),
		endpoints: cfg.Endpoints,
		poll:      cfg.Poll.Interval,
		log:       lg,
		store:     store,
		annotator: interceptors.NewAnnotator(store, u.Host),
	}

	c.refresher = interceptors.NewRefresher(store, c.annotator, interceptors.RefresherOptions{
		Host:      u.Host,
		Endpoint:  c.URL(cfg.Endpoints.Refresh),
		LoginPath: cfg.API.LoginPath,
		Timeout:   cfg.Timeouts.Refresh,
		Transport: interceptors.Chain(base, interceptors.Logging(lg)),
		Navigator: opts.Navigator,
		Metrics:   opts.Metrics,
		Logger:    lg,
		OnRotate:  opts.OnRotate,
		OnLogout:  opts.OnLogout,
	})

	c.http = &http.Client{Transport: interceptors.Chain(base,
		interceptors.WithMetadata(cfg.API.UserAgent),
		c.annotator.Middleware(),
		c.refresher.Middleware(),
		interceptors.Logging(lg),
		interceptors.WithTimeout(cfg.Timeouts.Request),
	)}

	c.public = &http.Client{Transport: interceptors.Chain(base,
		interceptors.WithMetadata(cfg.API.UserAgent),
		interceptors.Logging(lg),
		interceptors.WithTimeout(cfg.Timeouts.Request),
	)}

	return c, nil
}

func (c *Client) Annotator() *interceptors.Annotator { return c.annotator }

func (c *Client) Store() *tokenstore.Store { return c.store }

func (c *Client) Endpoints() config.EndpointsConfig { return c.endpoints }

// URL строит абсолютный адрес. Абсолютные ссылки (поле next пагинации DRF,
// ссылки на файлы) возвращаются как есть.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

// Do — JSON-вызов через аутентифицированную цепочку.
// in == nil — без тела; out == nil — тело ответа игнорируется.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	return c.do(ctx, c.http, method, path, in, out)
}

// DoPublic — JSON-вызов без токена и без refresh (login и подобные).
func (c *Client) DoPublic(ctx context.Context, method, path string, in, out any) error {
	return c.do(ctx, c.public, method, path, in, out)
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	const op = "client.Do"

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, transportError(err))
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%s: %w", op, apierrors.Network(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: %w", op, apierrors.FromResponse(resp.StatusCode, b, requestID(resp)))
	}

	if out == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}

	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s: %w", op, apierrors.Malformed(resp.StatusCode, err))
	}

	return nil
}

// transportError — ответа нет. ErrSessionExpired от Refresher сохраняется как есть.
func transportError(err error) error {
	if errors.Is(err, apierrors.ErrSessionExpired) {
		var e *apierrors.Error
		if errors.As(err, &e) {
			return e
		}
		return err
	}

	return apierrors.Network(err)
}

func requestID(resp *http.Response) string {
	if rid := resp.Header.Get("X-Request-Id"); rid != "" {
		return rid
	}

	if resp.Request != nil {
		return resp.Request.Header.Get("X-Request-Id")
	}

	return ""
}

// resource собирает путь вида /courses/12/lessons/.
func resource(base string, parts ...any) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, p := range parts {
		b.WriteByte('/')
		fmt.Fprint(&b, p)
	}
	b.WriteByte('/')

	return b.String()
}
