package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAbsolute_OverwritesDanglingSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nonexistent")
	dest := filepath.Join(dir, "output.html")

	// Create a dangling symlink at the destination.
	if err := os.Symlink(target, dest); err != nil {
		t.Fatal(err)
	}

	s := &FSStorage{}
	if err := s.writeFileAbsolute(dest, []byte("hello")); err != nil {
		t.Fatalf("writeFileAbsolute failed: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}

	// Ensure it's a regular file, not a symlink.
	info, err := os.Lstat(dest)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t.Fatal("expected regular file, got symlink")
	}
}

func TestWriteFileAbsolute_OverwritesCircularSymlink(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.html")
	b := filepath.Join(dir, "b.html")

	// Create circular symlinks: a -> b -> a
	if err := os.Symlink(b, a); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(a, b); err != nil {
		t.Fatal(err)
	}

	s := &FSStorage{}
	if err := s.writeFileAbsolute(a, []byte("content")); err != nil {
		t.Fatalf("writeFileAbsolute failed: %v", err)
	}

	got, err := os.ReadFile(a)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "content" {
		t.Fatalf("got %q, want %q", got, "content")
	}
}

func TestWriteHTMLCreatesParents(t *testing.T) {
	dir := t.TempDir()
	s := NewFSStorage(dir)

	if err := s.WriteHTML(context.Background(), "libraries/Example.html", []byte("<p>x</p>")); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "libraries", "Example.html"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<p>x</p>" {
		t.Fatalf("got %q", got)
	}
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	s := NewFSStorage(dir)
	ctx := context.Background()

	if s.CheckCache("root", "Example", "abc") {
		t.Fatal("cache hit before write")
	}
	if err := s.WriteCache(ctx, "root", "Example", "abc"); err != nil {
		t.Fatalf("WriteCache failed: %v", err)
	}
	if !s.CheckCache("root", "Example", "abc") {
		t.Fatal("expected cache hit")
	}
	if s.CheckCache("root", "Example", "different") {
		t.Fatal("cache hit with stale digest")
	}
}

func TestWriteCacheRequiresRoot(t *testing.T) {
	s := NewFSStorage(t.TempDir())
	if err := s.WriteCache(context.Background(), "", "Example", "abc"); err == nil {
		t.Fatal("expected error for empty root")
	}
}
