package codegen

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives the generated artifact. The destination path is resolved by
// the caller; the sink owns only the write itself.
type Sink interface {
	WriteFile(path string, content []byte) error
}

// FilesystemSink writes artifacts below a root directory using an atomic
// temp-file-plus-rename so a crashed write never leaves a truncated artifact.
type FilesystemSink struct {
	Root string
}

// NewFilesystemSink creates a sink rooted at dir.
func NewFilesystemSink(dir string) *FilesystemSink {
	return &FilesystemSink{Root: dir}
}

// WriteFile writes content to path within the root, creating parent
// directories as needed.
func (s *FilesystemSink) WriteFile(path string, content []byte) error {
	fullPath := filepath.Join(s.Root, filepath.FromSlash(path))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".oasgen-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set artifact permissions: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}

	return nil
}
