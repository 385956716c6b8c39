package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStoreTaskDirLifecycle(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	dir, err := store.EnsureTaskDir("task-1")
	if err != nil {
		t.Fatalf("EnsureTaskDir: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("task dir not created: %v", err)
	}
	if got := store.TaskDir("task-1"); got != dir {
		t.Fatalf("TaskDir = %q, want %q", got, dir)
	}

	if err := store.RemoveTask("task-1"); err != nil {
		t.Fatalf("RemoveTask: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("task dir survived RemoveTask")
	}
}

func TestFileStoreWriteSanitizesKeys(t *testing.T) {
	base := t.TempDir()
	store, err := NewFileStore(base)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	path, err := store.Write(context.Background(), "tasks/task-1/narration.mp3", []byte("audio"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasPrefix(path, base) {
		t.Fatalf("written path %q escaped base %q", path, base)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "audio" {
		t.Fatalf("read back: %v %q", err, data)
	}

	if _, err := store.Write(context.Background(), "../outside", []byte("x")); err == nil {
		t.Fatal("traversal key was accepted")
	}
	if _, err := store.Write(context.Background(), "  ", []byte("x")); err == nil {
		t.Fatal("blank key was accepted")
	}
}

func TestFileStoreArtifactPaths(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	path := store.ArtifactPath("task-1")
	if filepath.Base(path) != "task-1_final.mp4" {
		t.Fatalf("artifact path = %q", path)
	}
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	if err := store.RemoveArtifact("task-1"); err != nil {
		t.Fatalf("RemoveArtifact: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("artifact survived RemoveArtifact")
	}
	// removing twice is fine
	if err := store.RemoveArtifact("task-1"); err != nil {
		t.Fatalf("second RemoveArtifact: %v", err)
	}
}

func TestFileStoreRejectsPathLikeTaskIDs(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if got := store.TaskDir("../evil"); got != "" {
		t.Fatalf("TaskDir accepted traversal id: %q", got)
	}
	if got := store.ArtifactPath("a/b"); got != "" {
		t.Fatalf("ArtifactPath accepted nested id: %q", got)
	}
}
