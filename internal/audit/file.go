package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File keeps latest raw payload in single file.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns new File recorder writing to path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Record overwrites file with raw payload. Readers never see partially written file.
// Source is not stored, the file always holds payload of the latest request.
func (f *File) Record(_ context.Context, _ string, raw []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir, base := filepath.Split(f.path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, base+".*.tmp")
	if err != nil {
		return fmt.Errorf("can't create temporary audit file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("can't write audit file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("can't close audit file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("can't replace audit file: %w", err)
	}

	return nil
}
