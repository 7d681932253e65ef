package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	gwhttp "github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/http"
)

func proxyCmd(g *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Serve the BrainBoost API on a local port with the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, g, false, func(ctx context.Context, a *app) error {
				if addr == "" {
					addr = a.cfg.Proxy.Addr()
				}

				ln, err := net.Listen("tcp", addr)
				if err != nil {
					a.log.Error("http_listen_failed", slog.String("addr", addr), slog.String("err", err.Error()))
					return err
				}

				return serve(ctx, a, ln)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}

// serve обслуживает ln до отмены ctx, затем плавно останавливает сервер.
func serve(ctx context.Context, a *app, ln net.Listener) error {
	log := a.log

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Изменения durable-хранилища другим процессом (login в соседнем
	// терминале) подхватываются сессией шлюза.
	watchCtx, stopWatch := context.WithCancel(ctx)
	waitWatch := a.store.Watch(watchCtx)
	defer func() {
		stopWatch()
		waitWatch()
	}()

	st := a.session.Restore(ctx)
	log.Info("proxy_session", slog.Bool("authenticated", st.IsAuthenticated))

	var ready atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if ready.Load() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	mux.Handle("/", gwhttp.NewRouter(a.session, a.client, gwhttp.Options{
		Logger:  log,
		Timeout: a.cfg.Timeouts.Request,
	}))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("http_listen_start", slog.String("addr", ln.Addr().String()))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	ready.Store(true)
	log.Info("proxy_ready")

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown_requested")
	case serveErr = <-serveErrCh:
		if serveErr != nil {
			log.Error("http_serve_failed", slog.String("err", serveErr.Error()))
		}
	}

	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	return serveErr
}
