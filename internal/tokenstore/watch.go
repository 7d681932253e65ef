package tokenstore

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/storage"
)

// Watch пересылает подписчикам внешние изменения тех бэкендов,
// которые реализуют storage.Watcher. Горутины живут до отмены ctx;
// возвращаемая функция дожидается их завершения.
func (s *Store) Watch(ctx context.Context) (wait func()) {
	const op = "tokenstore.Watch"

	var wg sync.WaitGroup

	for _, sc := range [...]Scope{Session, Durable} {
		w, ok := s.backend(sc).(storage.Watcher)
		if !ok {
			continue
		}

		ch, err := w.Watch(ctx)
		if err != nil {
			s.log.Warn("token_store_watch_failed",
				slog.String("op", op),
				slog.String("scope", sc.String()),
				slog.String("err", err.Error()),
			)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range ch {
				if slices.Contains(Keys, c.Key) {
					s.notify(c.Key)
				}
			}
		}()
	}

	return wg.Wait
}
