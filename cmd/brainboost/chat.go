package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/models"
)

func chatsCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, g, true, func(ctx context.Context, a *app) error {
				chats, err := a.client.Chats(ctx)
				if err != nil {
					return err
				}

				w := newTable(cmd.OutOrStdout())
				row(w, "ID", "TITLE", "LAST MESSAGE")
				for _, c := range chats {
					row(w, c.ID, excerpt(c.Title, 40), excerpt(c.LastMessage, 60))
				}
				return w.Flush()
			})
		},
	}
}

func chatCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Read and write chat messages",
	}

	var interval time.Duration
	watch := &cobra.Command{
		Use:   "watch <id>",
		Short: "Print new messages until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return run(cmd, g, true, func(ctx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				return a.client.PollMessages(ctx, id, interval, func(m models.Message) {
					fmt.Fprintf(out, "%s %s: %s\n", m.CreatedAt.Local().Format(time.TimeOnly), m.Author, m.Text)
				})
			})
		},
	}
	watch.Flags().DurationVar(&interval, "interval", 0, "poll interval (default from config)")

	send := &cobra.Command{
		Use:   "send <id> <text>...",
		Short: "Send a message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return run(cmd, g, true, func(ctx context.Context, a *app) error {
				m, err := a.client.SendMessage(ctx, id, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sent message %d\n", m.ID)
				return nil
			})
		},
	}

	cmd.AddCommand(watch, send)
	return cmd
}

func notificationsCmd(g *globalOptions) *cobra.Command {
	var read int64

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, g, true, func(ctx context.Context, a *app) error {
				if read > 0 {
					if err := a.client.MarkNotificationRead(ctx, read); err != nil {
						return err
					}
				}

				items, err := a.client.Notifications(ctx)
				if err != nil {
					return err
				}

				w := newTable(cmd.OutOrStdout())
				row(w, "ID", "", "TITLE", "MESSAGE")
				for _, n := range items {
					mark := "*"
					if n.Read {
						mark = ""
					}
					row(w, n.ID, mark, excerpt(n.Title, 40), excerpt(n.Body, 60))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().Int64Var(&read, "read", 0, "mark notification as read first")

	return cmd
}
