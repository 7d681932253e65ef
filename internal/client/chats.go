package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/errors"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/models"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/pkg/log"
)

func (c *Client) Chats(ctx context.Context) ([]models.Chat, error) {
	return ListAll[models.Chat](ctx, c, c.endpoints.Chats)
}

func (c *Client) Messages(ctx context.Context, chatID int64) ([]models.Message, error) {
	return ListAll[models.Message](ctx, c, resource(c.endpoints.Chats, chatID, "messages"))
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (*models.Message, error) {
	const op = "client.SendMessage"

	if text == "" {
		return nil, fmt.Errorf("%s: %w: empty text", op, apierrors.ErrBadRequest)
	}

	in := map[string]string{"text": text}

	var out models.Message
	if err := c.Do(ctx, http.MethodPost, resource(c.endpoints.Chats, chatID, "messages"), in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// PollMessages опрашивает чат каждые interval и передаёт fn только новые
// сообщения (дедупликация по ID). Ошибки опроса логируются и не прерывают
// цикл; завершение сессии (ErrSessionExpired) прерывает. Возвращает nil
// при отмене ctx.
func (c *Client) PollMessages(ctx context.Context, chatID int64, interval time.Duration, fn func(models.Message)) error {
	const op = "client.PollMessages"

	if interval <= 0 {
		interval = c.poll
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}

	lg := log.From(ctx)
	lg.Info("poll_start",
		slog.String("op", op),
		slog.Int64("chat_id", chatID),
		slog.Duration("interval", interval),
	)

	seen := make(map[int64]struct{})
	tick := func() error {
		msgs, err := c.Messages(ctx, chatID)
		if err != nil {
			return err
		}

		for _, m := range msgs {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			fn(m)
		}

		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := tick(); err != nil {
			if errors.Is(err, apierrors.ErrSessionExpired) {
				return fmt.Errorf("%s: %w", op, err)
			}
			if ctx.Err() == nil {
				lg.Warn("poll_tick_error",
					slog.String("op", op),
					slog.String("err", err.Error()),
				)
			}
		}

		select {
		case <-ctx.Done():
			lg.Info("poll_stop", slog.String("op", op))
			return nil
		case <-ticker.C:
		}
	}
}

func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	return ListAll[models.Notification](ctx, c, c.endpoints.Notifications)
}

func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	const op = "client.MarkNotificationRead"

	if err := c.Do(ctx, http.MethodPost, resource(c.endpoints.Notifications, id, "read"), nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
