package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/auth"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/client"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/config"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/metrics"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/storage"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/storage/file"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/storage/memory"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/storage/redis"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/tokenstore"
)

// app — собранные зависимости одной команды.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	registry *prometheus.Registry
	store    *tokenstore.Store
	client   *client.Client
	session  *auth.Session
	nav      *cliNavigator

	closers []func()
}

func newApp(ctx context.Context, g *globalOptions, stderr io.Writer, quiet bool) (*app, error) {
	const op = "main.newApp"

	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg := setupLogger(cfg.Env, stderr, quiet && !g.verbose)
	slog.SetDefault(lg)

	a := &app{
		cfg:      cfg,
		log:      lg,
		registry: prometheus.NewRegistry(),
		nav:      &cliNavigator{w: stderr},
	}

	durable, closeDurable, err := durableBackend(ctx, cfg, lg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.closers = append(a.closers, closeDurable)

	a.store = tokenstore.New(memory.New(), durable, lg)

	a.client, err = client.New(cfg, a.store, client.Options{
		Logger:    lg,
		Navigator: a.nav,
		Metrics:   metrics.New(a.registry),
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.session = auth.New(a.client, lg)
	a.closers = append(a.closers, a.session.Close)

	return a, nil
}

// Close освобождает ресурсы в обратном порядке.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// durableBackend строит хранилище токенов "remember me" по storage.durable.
func durableBackend(ctx context.Context, cfg *config.Config, lg *slog.Logger) (storage.Backend, func(), error) {
	nop := func() {}

	switch cfg.Storage.Durable {
	case config.DurableNone:
		return nil, nop, nil

	case config.DurableRedis:
		st, err := redis.New(ctx, cfg.Storage.RedisURL, cfg.Storage.RedisPrefix, lg)
		if err != nil {
			return nil, nop, err
		}
		return st, func() {
			if err := st.Close(); err != nil {
				lg.Warn("redis_close_failed", slog.String("err", err.Error()))
			}
		}, nil

	default:
		path, err := cfg.Storage.TokenFile()
		if err != nil {
			return nil, nop, err
		}
		st, err := file.New(path, lg)
		if err != nil {
			return nil, nop, err
		}
		return st, nop, nil
	}
}

// cliNavigator — навигация в терминале: вместо перехода на страницу
// входа печатает подсказку один раз.
type cliNavigator struct {
	mu  sync.Mutex
	w   io.Writer
	loc string
}

func (n *cliNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.loc
}

func (n *cliNavigator) Redirect(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.loc == path {
		return
	}
	n.loc = path
	fmt.Fprintln(n.w, "Session expired. Run `brainboost login` to sign in again.")
}
