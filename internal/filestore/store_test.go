package filestore

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestNew_InitializesMissingCollections(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	s, err := New(dir, Collections...)
	require.NoError(t, err)

	for _, name := range Collections {
		data, err := os.ReadFile(s.Path(name))
		require.NoError(t, err, name)
		assert.JSONEq(t, `[]`, string(data), name)
	}
}

func TestNew_KeepsExistingContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.json"), []byte(`[{"name":"a","count":1}]`), 0o644))

	s, err := New(dir, Products)
	require.NoError(t, err)

	var got []counter
	require.NoError(t, s.Read(Products, &got))
	assert.Equal(t, []counter{{Name: "a", Count: 1}}, got)
}

func TestReadWrite_RoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	// missing collections read as empty and get created
	var got []counter
	require.NoError(t, s.Read(Cart, &got))
	assert.Empty(t, got)
	assert.FileExists(t, s.Path(Cart))

	want := []counter{{Name: "x", Count: 2}, {Name: "y", Count: 3}}
	require.NoError(t, s.Write(Cart, want))
	require.NoError(t, s.Read(Cart, &got))
	assert.Equal(t, want, got)

	// nil slices are stored as [] rather than null
	var none []counter
	require.NoError(t, s.Write(Cart, none))
	data, err := os.ReadFile(s.Path(Cart))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestReadRawWriteRaw(t *testing.T) {
	s, err := New(t.TempDir(), Products)
	require.NoError(t, err)

	saved, err := s.ReadRaw(Products)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(saved))

	require.NoError(t, s.Write(Products, []counter{{Name: "a", Count: 1}}))
	require.NoError(t, s.WriteRaw(Products, saved))

	data, err := os.ReadFile(s.Path(Products))
	require.NoError(t, err)
	assert.Equal(t, string(saved), string(data))
}

func TestRead_CorruptFile(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.Path(Orders), []byte(`{not json`), 0o644))

	var got []counter
	assert.Error(t, s.Read(Orders, &got))
}

func TestWithLock_NoLostUpdates(t *testing.T) {
	s, err := New(t.TempDir(), Products)
	require.NoError(t, err)
	require.NoError(t, s.Write(Products, []counter{{Name: "n"}}))

	const workers = 20
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithLock(func() error {
				var items []counter
				if err := s.Read(Products, &items); err != nil {
					return err
				}
				items[0].Count++
				return s.Write(Products, items)
			}, Products)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var items []counter
	require.NoError(t, s.Read(Products, &items))
	assert.Equal(t, workers, items[0].Count)
}

func TestWithLock_OverlappingSetsDoNotDeadlock(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			names := []string{Orders, Products}
			if i%2 == 0 {
				names = []string{Products, Orders, Products}
			}
			assert.NoError(t, s.WithLock(func() error { return nil }, names...))
		}()
	}
	wg.Wait()
}
