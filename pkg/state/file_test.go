package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "state", "binding.json"))
}

func TestFileStore_LoadAbsent(t *testing.T) {
	s := newTestFileStore(t)

	b, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Binding{}, b)
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestFileStore(t)
	want := Binding{DestinationID: "G1", Origin: OriginJoin, UpdatedAt: testTime}

	require.NoError(t, s.Save(context.Background(), want))

	got, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestFileStore_SaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deeper")
	s := NewFileStore(filepath.Join(dir, "binding.json"))

	require.NoError(t, s.Save(context.Background(), Binding{DestinationID: "U1"}))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileStore_OverwriteIsSingleSlot(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Binding{DestinationID: "G1"}))
	require.NoError(t, s.Save(ctx, Binding{DestinationID: "G2"}))
	require.NoError(t, s.Save(ctx, Binding{DestinationID: "G2"}))

	got, ok, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "G2", got.DestinationID)

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileStore_InvalidBindingKeepsPrevious(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, Binding{DestinationID: "G1"}))

	err := s.Save(ctx, Binding{DestinationID: "  "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidBinding))

	got, ok, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "G1", got.DestinationID)
}

func TestFileStore_CorruptRecordIsAbsent(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o700))

	cases := map[string]string{
		"truncated":  `{"destination_id": "G`,
		"empty":      ``,
		"no_dest":    `{"origin":"join"}`,
		"not_object": `[1,2,3]`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o600))

			b, ok, err := s.Load(context.Background())
			assert.False(t, ok)
			assert.Equal(t, Binding{}, b)
			assert.True(t, errors.Is(err, ErrCorruptBinding), "got %v", err)
		})
	}
}

func TestFileStore_ConcurrentSaves(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.Save(ctx, Binding{DestinationID: fmt.Sprintf("G%d", i)}); err != nil {
				t.Errorf("save %d: %v", i, err)
			}
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := s.Load(ctx); err != nil {
				t.Errorf("concurrent load: %v", err)
			}
		}()
	}
	wg.Wait()

	got, ok, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Regexp(t, `^G\d+$`, got.DestinationID)
}
