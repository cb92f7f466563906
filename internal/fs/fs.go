// Package fs defines the file-tree capability used by flameup.
// It provides the FS interface and the FileInfo type shared across the system.
package fs

import (
	"context"
	"os"
	"time"
)

type FileInfo struct {
	Path  string
	Name  string
	Size  int64
	Mode  os.FileMode
	MTime time.Time
	Inode uint64
}

// IsDir reports whether the entry is a directory.
func (fi FileInfo) IsDir() bool {
	return fi.Mode.IsDir()
}

type FS interface {
	Stat(path string) (FileInfo, error)
	Exists(path string) (bool, error)
	ReadDir(path string) ([]FileInfo, error)
	TreeSize(path string) (int64, error)
	CopyFile(ctx context.Context, src, dst string) error
	CopyTree(ctx context.Context, src, dst string) error
	Rename(ctx context.Context, oldPath, newPath string) error
	MkdirAll(path string) error
	RemoveAll(path string) error
}
