// brainboost — консольный клиент платформы BrainBoost и локальный
// аутентифицированный шлюз к её REST API (brainboost proxy).
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	apierrors "github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/errors"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// Version выставляется при сборке через -ldflags.
var Version = "dev"

// globalOptions — флаги корневой команды.
type globalOptions struct {
	configPath string
	verbose    bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", apierrors.UserMessage(err))
		cancel()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var g globalOptions

	cmd := &cobra.Command{
		Use:           "brainboost",
		Short:         "BrainBoost learning platform client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "path to config file")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log every request to stderr")

	cmd.AddCommand(
		loginCmd(&g),
		loginTokenCmd(&g),
		logoutCmd(&g),
		whoamiCmd(&g),
		coursesCmd(&g),
		courseCmd(&g),
		lessonCmd(&g),
		testCmd(&g),
		chatsCmd(&g),
		chatCmd(&g),
		notificationsCmd(&g),
		certificatesCmd(&g),
		payCmd(&g),
		proxyCmd(&g),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "brainboost %s\n", Version)
		},
	}
}

// setupLogger: local — текст/debug, dev — JSON/debug, prod — JSON/info.
// quiet поднимает уровень до warn: обычным командам CLI не нужен лог
// каждого запроса.
func setupLogger(env string, w io.Writer, quiet bool) *slog.Logger {
	var (
		level = slog.LevelDebug
		json  bool
	)

	switch env {
	case envLocal:
	case envDev:
		json = true
	case envProd:
		json, level = true, slog.LevelInfo
	}

	if quiet {
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}
