// redis — durable-хранилище токенов, разделяемое несколькими процессами
// (несколько proxy, CI-раннеры). Ключи живут под общим префиксом;
// каждая запись и удаление публикуются в канал <prefix>changes,
// на который подписывается Watch.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/storage"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "brainboost:"

type Storage struct {
	rdb    *redis.Client
	prefix string
	log    *slog.Logger
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "brainboost:".
func New(ctx context.Context, redisURL, prefix string, log *slog.Logger) (*Storage, error) {
	const op = "storage/redis/New"

	if prefix == "" {
		prefix = defaultPrefix
	}

	if log == nil {
		log = slog.Default()
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w: %v", op, storage.ErrUnavailable, err)
	}

	return &Storage{rdb: rdb, prefix: prefix, log: log}, nil
}

func (s *Storage) key(k string) string { return s.prefix + k }

func (s *Storage) channel() string { return s.prefix + "changes" }

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "storage/redis/Get"

	v, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	return v, true, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	const op = "storage/redis/Set"

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.key(key), value, 0)
	pipe.Publish(ctx, s.channel(), key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	const op = "storage/redis/Delete"

	n, err := s.rdb.Del(ctx, s.key(key)).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return nil
	}

	if err := s.rdb.Publish(ctx, s.channel(), key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Watch подписывается на канал изменений до отмены ctx.
func (s *Storage) Watch(ctx context.Context) (<-chan storage.Change, error) {
	const op = "storage/redis/Watch"

	sub := s.rdb.Subscribe(ctx, s.channel())

	// Receive дожидается подтверждения подписки.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make(chan storage.Change, 16)
	msgs := sub.Channel()

	go func() {
		defer close(out)
		defer sub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}

				select {
				case out <- storage.Change{Key: m.Payload}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	s.log.Debug("token_store_watch_started",
		slog.String("op", op),
		slog.String("channel", s.channel()),
	)

	return out, nil
}

// Close закрывает клиент Redis.
func (s *Storage) Close() error { return s.rdb.Close() }

var (
	_ storage.Backend = (*Storage)(nil)
	_ storage.Watcher = (*Storage)(nil)
)
