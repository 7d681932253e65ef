// storage описывает key-value хранилища, в которых живут токены сессии.
//
// Реализации:
//   - memory — на время жизни процесса (session-scoped);
//   - file — JSON-файл в каталоге конфигурации пользователя (durable);
//   - redis — общее durable-хранилище для нескольких процессов и машин;
//   - Noop — хранилище недоступно: запись ничего не делает, чтение пустое.
package storage

import (
	"context"
	"errors"
)

// ErrUnavailable — бэкенд хранилища недоступен.
var ErrUnavailable = errors.New("storage unavailable")

// Backend — минимальный контракт key-value хранилища.
//
//go:generate mockgen -source=storage.go -destination=../../mocks/storage.go -package=mocks
type Backend interface {
	// Get возвращает значение и признак его наличия.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set сохраняет значение по ключу, перезаписывая прежнее.
	Set(ctx context.Context, key, value string) error
	// Delete удаляет ключ; отсутствие ключа ошибкой не считается.
	Delete(ctx context.Context, key string) error
}

// Change — ключ изменён другим писателем (другим процессом).
type Change struct {
	Key string
}

// Watcher реализуют бэкенды, которые умеют сообщать о внешних изменениях.
// Канал закрывается, когда ctx отменён.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Change, error)
}

// Noop — хранилище, которого нет.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (Noop) Set(context.Context, string, string) error         { return nil }
func (Noop) Delete(context.Context, string) error              { return nil }

var _ Backend = Noop{}
