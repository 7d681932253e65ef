package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/storage"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "brainboost", "tokens.json"), nil)
	require.NoError(t, err)
	return s
}

func TestNew_EmptyPath(t *testing.T) {
	t.Parallel()
	_, err := New("", nil)
	require.Error(t, err)
}

func TestStorage_RoundTripAndPermissions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStorage(t)

	_, ok, err := s.Get(ctx, "refresh")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "refresh", "x.y.z"))
	v, ok, err := s.Get(ctx, "refresh")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "x.y.z", v)

	st, err := os.Stat(s.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	dir, err := os.Stat(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o700), dir.Mode().Perm())

	require.NoError(t, s.Delete(ctx, "refresh"))
	require.NoError(t, s.Delete(ctx, "refresh"))
	_, ok, err = s.Get(ctx, "refresh")
	require.NoError(t, err)
	require.False(t, ok)
}

// Второй экземпляр на том же файле видит записи первого.
func TestStorage_SharedBetweenInstances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a := newStorage(t)

	b, err := New(a.Path(), nil)
	require.NoError(t, err)

	require.NoError(t, a.Set(ctx, "access", "a.b.c"))
	v, ok, err := b.Get(ctx, "access")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a.b.c", v)
}

func TestStorage_CorruptFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStorage(t)

	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	_, _, err := s.Get(ctx, "access")
	require.Error(t, err)
	require.Error(t, s.Set(ctx, "access", "v"))

	// Пустой файл — это пустое хранилище.
	require.NoError(t, os.WriteFile(s.Path(), nil, 0o600))
	_, ok, err := s.Get(ctx, "access")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStorage_Watch_ExternalWrite(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newStorage(t)
	require.NoError(t, s.Set(ctx, "refresh", "old"))

	ch, err := s.Watch(ctx)
	require.NoError(t, err)

	other, err := New(s.Path(), nil)
	require.NoError(t, err)
	require.NoError(t, other.Set(ctx, "access", "a.b.c"))

	select {
	case c := <-ch:
		require.Equal(t, storage.Change{Key: "access"}, c)
	case <-time.After(3 * time.Second):
		t.Fatal("no change event")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, 3*time.Second, 10*time.Millisecond)
}

func TestDiff(t *testing.T) {
	t.Parallel()
	a := map[string]string{"access": "1", "refresh": "r", "gone": "x"}
	b := map[string]string{"access": "2", "refresh": "r", "new": "y"}
	require.Equal(t, []string{"access", "gone", "new"}, diff(a, b))
	require.Empty(t, diff(a, a))
}
