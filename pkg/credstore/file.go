// pkg/credstore/file.go
package credstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the bundle as a mode-0600 JSON file. Writes go through a
// temp file + rename so a crash never leaves a half-written secret behind.
type FileStore struct {
	Path string
}

func (s *FileStore) Load(_ context.Context) (Bundle, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Bundle{}, notFound(s.Path)
		}
		return Bundle{}, fmt.Errorf("credstore: read %s: %w", s.Path, err)
	}
	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return Bundle{}, fmt.Errorf("credstore: parse %s: %w", s.Path, err)
	}
	return b, nil
}

func (s *FileStore) Save(_ context.Context, b Bundle) error {
	raw, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("credstore: encode: %w", err)
	}
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".gdap-cred-*")
	if err != nil {
		return fmt.Errorf("credstore: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("credstore: chmod: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("credstore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("credstore: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("credstore: rename: %w", err)
	}
	return nil
}
