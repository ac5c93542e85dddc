// Package storage persists generated library documentation on the local
// filesystem.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type FSStorage struct {
	Root string
}

func NewFSStorage(root string) *FSStorage {
	return &FSStorage{Root: root}
}

func (s *FSStorage) WriteHTML(ctx context.Context, destPath string, content []byte) error {
	return s.writeFile(destPath, content)
}

func (s *FSStorage) WriteJSON(ctx context.Context, destPath string, content []byte) error {
	return s.writeFile(destPath, content)
}

func (s *FSStorage) WriteXML(ctx context.Context, destPath string, content []byte) error {
	return s.writeFile(destPath, content)
}

// CheckCache reports whether the library was already generated from a
// source file with this digest.
func (s *FSStorage) CheckCache(root string, libName string, sha1 string) bool {
	data, err := os.ReadFile(s.cachePath(root, libName))
	return err == nil && string(data) == sha1
}

func (s *FSStorage) WriteCache(ctx context.Context, root string, libName string, sha1 string) error {
	if root == "" {
		return fmt.Errorf("cache root required")
	}
	return s.writeFileAbsolute(s.cachePath(root, libName), []byte(sha1))
}

func (s *FSStorage) cachePath(root string, libName string) string {
	return filepath.Join(s.Root, "libraries", ".cache", root, libName)
}

func (s *FSStorage) writeFile(destPath string, content []byte) error {
	fullPath := filepath.Join(s.Root, filepath.FromSlash(destPath))
	return s.writeFileAbsolute(fullPath, content)
}

func (s *FSStorage) writeFileAbsolute(fullPath string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	// Remove any existing file or symlink so os.WriteFile does not
	// follow a stale symlink left by an earlier run.
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing: %w", err)
	}
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
