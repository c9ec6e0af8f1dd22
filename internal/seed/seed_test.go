package seed

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeSeed(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestFiles(t *testing.T) {
	want := []string{"products.json", "orders.json", "cart.json", "users.json"}
	if diff := cmp.Diff(want, Files()); diff != "" {
		t.Errorf("Files() mismatch (-want +got):\n%s", diff)
	}
}

func TestRestore_ReplacesDataFiles(t *testing.T) {
	seedDir, dataDir := t.TempDir(), filepath.Join(t.TempDir(), "data")
	writeSeed(t, seedDir, map[string]string{
		"products.json": `[{"id":"1","name":"Tee"}]`,
		"orders.json":   `[]`,
		"cart.json":     `[]`,
		"users.json":    `[{"id":"u1","email":"a@b.c","password":"pw"}]`,
	})
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "orders.json"), []byte(`[{"id":9}]`), 0o644))

	require.NoError(t, Restore(context.Background(), seedDir, dataDir, Files()))

	for _, name := range Files() {
		want, err := os.ReadFile(filepath.Join(seedDir, name))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(dataDir, name))
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got), name)
	}
}

func TestRestore_MissingSeedFileWritesNothing(t *testing.T) {
	seedDir, dataDir := t.TempDir(), t.TempDir()
	writeSeed(t, seedDir, map[string]string{
		"products.json": `[]`,
		"orders.json":   `[]`,
		"cart.json":     `[]`,
	})

	err := Restore(context.Background(), seedDir, dataDir, Files())
	require.ErrorIs(t, err, fs.ErrNotExist)

	entries, err := os.ReadDir(dataDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRestore_RejectsInvalidJSON(t *testing.T) {
	seedDir, dataDir := t.TempDir(), t.TempDir()
	writeSeed(t, seedDir, map[string]string{"products.json": `[{`})

	err := Restore(context.Background(), seedDir, dataDir, []string{"products.json"})
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestRestore_CancelledContext(t *testing.T) {
	seedDir, dataDir := t.TempDir(), t.TempDir()
	writeSeed(t, seedDir, map[string]string{"cart.json": `[]`})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, Restore(ctx, seedDir, dataDir, []string{"cart.json"}), context.Canceled)
}
