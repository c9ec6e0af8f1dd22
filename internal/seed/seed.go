// Package seed restores the data directory from pristine copies.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/redmonkez12/shop-api/internal/filestore"
)

var ErrInvalidJSON = errors.New("seed file is not valid JSON")

// Files lists the collection files restored by default
func Files() []string {
	files := make([]string, 0, len(filestore.Collections))
	for _, name := range filestore.Collections {
		files = append(files, name+".json")
	}
	return files
}

// Restore copies every file from seedDir into dataDir, replacing what is there.
// All seed files are read and checked before anything is written, so a missing or
// corrupt seed file leaves dataDir untouched.
func Restore(ctx context.Context, seedDir, dataDir string, files []string) error {
	contents := make([][]byte, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(seedDir, file))
			if err != nil {
				return fmt.Errorf("read seed %s: %w", file, err)
			}
			if !json.Valid(data) {
				return fmt.Errorf("%w: %s", ErrInvalidJSON, file)
			}
			contents[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	g, gctx = errgroup.WithContext(ctx)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := filestore.WriteFileAtomic(filepath.Join(dataDir, file), contents[i]); err != nil {
				return fmt.Errorf("restore %s: %w", file, err)
			}
			return nil
		})
	}
	return g.Wait()
}
