package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DirSink пишет файлы в локальный каталог (атомарно: temp + rename).
type DirSink struct {
	dir string
}

func NewDirSink(dir string) (*DirSink, error) {
	const op = "export/dir/NewDirSink"

	if dir == "" {
		return nil, fmt.Errorf("%s: empty dir", op)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &DirSink{dir: dir}, nil
}

func (s *DirSink) Dir() string { return s.dir }

func (s *DirSink) Put(ctx context.Context, name, _ string, r io.Reader, _ int64) error {
	const op = "export/dir/Put"

	if name != filepath.Base(name) {
		return fmt.Errorf("%s: invalid name %q", op, name)
	}

	f, err := os.CreateTemp(s.dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Rename(tmp, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
