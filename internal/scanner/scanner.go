// Package scanner discovers Python library source files under the
// configured documentation roots.
package scanner

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceFile is one discovered library source file. SHA1 identifies the
// file content and drives the generation cache.
type SourceFile struct {
	Path         string
	RelativePath string
	Name         string
	SHA1         string
}

// Scanner walks documentation roots for *.py files. Hidden directories,
// __pycache__ and underscore-prefixed files are skipped.
type Scanner struct {
	Exclude []string
	Logger  *slog.Logger
}

// Scan returns the library sources under root sorted by relative path.
func (s *Scanner) Scan(root string) ([]SourceFile, error) {
	var files []SourceFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || name == "__pycache__") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".py") || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			return nil
		}
		if s.excluded(name) {
			if s.Logger != nil {
				s.Logger.Debug("skipping excluded library", "path", path)
			}
			return nil
		}
		sum, err := fileSHA1(path)
		if err != nil {
			return fmt.Errorf("hashing %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, SourceFile{
			Path:         path,
			RelativePath: rel,
			Name:         strings.TrimSuffix(name, ".py"),
			SHA1:         sum,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})
	return files, nil
}

func (s *Scanner) excluded(name string) bool {
	for _, pattern := range s.Exclude {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func fileSHA1(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
