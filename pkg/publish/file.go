package publish

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
)

// File publishes the combined reading line to a text file that other tools
// (FlexBV, OBS text sources) pick up. Each write goes to Path+".tmp" first
// and is then renamed onto Path so readers never see a partial line.
type File struct {
	Path string

	// Refresh rewrites the file whenever the line changes. Without it the
	// first write wins and later cycles leave an existing file alone.
	Refresh bool

	mu   sync.Mutex
	last []byte
}

// NewFile creates a publisher for path.
func NewFile(path string, refresh bool) *File {
	return &File{Path: path, Refresh: refresh}
}

// Write publishes line. It reports whether the file was written.
func (f *File) Write(line string) (bool, error) {
	if f.Path == "" {
		return false, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data := []byte(line + "\n")

	if f.Refresh {
		if bytes.Equal(data, f.last) {
			return false, nil
		}
	} else {
		_, err := os.Stat(f.Path)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("failed to stat output file: %w", err)
		}
	}

	if err := writeAtomic(f.Path, data); err != nil {
		return false, err
	}
	f.last = data
	return true, nil
}

// writeAtomic writes data to path via a sibling .tmp file and rename.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename %s: %w", tmp, err)
	}
	return nil
}
