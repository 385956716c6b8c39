// Package storage manages the on-disk layout: one exclusive scratch
// directory per task plus a shared output area for finished artifacts.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore roots all task working directories and artifacts under one base
// path on the local filesystem.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(filepath.Join(basePath, "tasks"), 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure tasks path: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(basePath, "output"), 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure output path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// EnsureTaskDir creates (if needed) and returns the task's exclusive working
// directory.
func (s *FileStore) EnsureTaskDir(taskID string) (string, error) {
	dir := s.TaskDir(taskID)
	if dir == "" {
		return "", errors.New("storage: invalid task id")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure task dir: %w", err)
	}
	return dir, nil
}

// TaskDir returns the working directory path for a task without creating it.
func (s *FileStore) TaskDir(taskID string) string {
	cleaned, err := sanitizeKey(taskID)
	if err != nil || strings.Contains(cleaned, "/") {
		return ""
	}
	return filepath.Join(s.basePath, "tasks", cleaned)
}

// RemoveTask deletes a task's working directory and everything in it.
func (s *FileStore) RemoveTask(taskID string) error {
	dir := s.TaskDir(taskID)
	if dir == "" {
		return errors.New("storage: invalid task id")
	}
	return os.RemoveAll(dir)
}

// ArtifactPath returns where the finished video for a task is written.
func (s *FileStore) ArtifactPath(taskID string) string {
	cleaned, err := sanitizeKey(taskID)
	if err != nil || strings.Contains(cleaned, "/") {
		return ""
	}
	return filepath.Join(s.basePath, "output", cleaned+"_final.mp4")
}

// RemoveArtifact deletes a task's finished video if present.
func (s *FileStore) RemoveArtifact(taskID string) error {
	path := s.ArtifactPath(taskID)
	if path == "" {
		return errors.New("storage: invalid task id")
	}
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Write persists the provided bytes at the given relative key and returns the
// absolute path. Keys are cleaned to prevent directory traversal.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return fullPath, nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
