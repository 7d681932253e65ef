// file — durable-хранилище токенов в JSON-файле.
//
// Файл создаётся с правами 0600, каталог — 0700. Запись атомарная:
// временный файл в том же каталоге + rename, поэтому читатель никогда
// не видит частично записанный JSON. Get каждый раз перечитывает файл,
// так что изменения другого процесса видны сразу.
//
// Watch следит за каталогом через fsnotify и сравнивает снимки содержимого,
// выдавая по Change на каждый изменившийся ключ (в том числе свои записи).
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/storage"
)

type Storage struct {
	path string
	log  *slog.Logger

	// mu сериализует read-modify-write внутри процесса.
	mu sync.Mutex
}

// New готовит каталог под файл. Сам файл появляется при первой записи.
func New(path string, log *slog.Logger) (*Storage, error) {
	const op = "storage/file/New"

	if path == "" {
		return nil, fmt.Errorf("%s: empty path", op)
	}

	if log == nil {
		log = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, storage.ErrUnavailable, err)
	}

	return &Storage{path: filepath.Clean(path), log: log}, nil
}

// Path — путь к файлу токенов.
func (s *Storage) Path() string { return s.path }

func (s *Storage) Get(_ context.Context, key string) (string, bool, error) {
	const op = "storage/file/Get"

	m, err := s.load()
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	v, ok := m[key]
	return v, ok, nil
}

func (s *Storage) Set(_ context.Context, key, value string) error {
	const op = "storage/file/Set"

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cur, ok := m[key]; ok && cur == value {
		return nil
	}

	m[key] = value
	if err := s.save(m); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	const op = "storage/file/Delete"

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, ok := m[key]; !ok {
		return nil
	}

	delete(m, key)
	if err := s.save(m); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Watch запускает наблюдение за файлом до отмены ctx.
func (s *Storage) Watch(ctx context.Context) (<-chan storage.Change, error) {
	const op = "storage/file/Watch"

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := fsw.Add(filepath.Dir(s.path)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	snapshot, err := s.load()
	if err != nil {
		s.log.Warn("token_file_unreadable",
			slog.String("op", op),
			slog.String("path", s.path),
			slog.String("err", err.Error()),
		)
		snapshot = map[string]string{}
	}

	out := make(chan storage.Change, 16)

	go func() {
		defer close(out)
		defer fsw.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}

				if filepath.Clean(ev.Name) != s.path {
					continue
				}

				cur, err := s.load()
				if err != nil {
					s.log.Warn("token_file_reload_failed",
						slog.String("op", op),
						slog.String("err", err.Error()),
					)
					continue
				}

				for _, key := range diff(snapshot, cur) {
					select {
					case out <- storage.Change{Key: key}:
					case <-ctx.Done():
						return
					}
				}
				snapshot = cur

			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				s.log.Warn("token_file_watch_error",
					slog.String("op", op),
					slog.String("err", err.Error()),
				)
			}
		}
	}()

	return out, nil
}

func (s *Storage) load() (map[string]string, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	m := map[string]string{}
	if len(bytes.TrimSpace(b)) == 0 {
		return m, nil
	}

	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}

	return m, nil
}

func (s *Storage) save(m map[string]string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	// CreateTemp создаёт файл с правами 0600.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tokens-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, s.path)
}

// diff — ключи, значения которых различаются в a и b, по алфавиту.
func diff(a, b map[string]string) []string {
	var keys []string
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			keys = append(keys, k)
		}
	}

	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)
	return keys
}

var (
	_ storage.Backend = (*Storage)(nil)
	_ storage.Watcher = (*Storage)(nil)
)
