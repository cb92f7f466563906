package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// implements file and tree copying with retry and source-change detection.
// A file copy is retried if the source changed while it was being copied.

var errSourceChanged = errors.New("source changed during copy")

func copyWithRetry(ctx context.Context, f FS, src, dst string) error {
	return retry(ctx, "copy "+src, func() error {
		return copyChecked(f, src, dst, copyOnce)
	})
}

// copyChecked stats src around the copy and reports errSourceChanged when
// the two stats differ.
func copyChecked(f FS, src, dst string, copyFn func(src, dst string, perm os.FileMode) error) error {
	before, err := f.Stat(src)
	if err != nil {
		return err
	}

	if err := copyFn(src, dst, before.Mode.Perm()); err != nil {
		return err
	}

	after, err := f.Stat(src)
	if err != nil {
		return err
	}
	if sourceChanged(before, after) {
		return fmt.Errorf("%s: %w", src, errSourceChanged)
	}
	return nil
}

func sourceChanged(orig, now FileInfo) bool {
	if now.Inode != 0 && orig.Inode != 0 && now.Inode != orig.Inode {
		return true
	}
	if !now.MTime.Equal(orig.MTime) {
		return true
	}
	if now.Size != orig.Size {
		return true
	}
	return false
}

func copyOnce(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}

	return out.Sync()
}

// copyTree recreates the tree rooted at src under dst. dst itself is created
// with the permissions of src; symlinks are recreated, not followed.
func copyTree(ctx context.Context, f FS, src, dst string) error {
	src, err := filepath.EvalSymlinks(src)
	if err != nil {
		return err
	}
	root, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !root.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			// keep the owner writable so the rest of the tree can be filled in
			return os.MkdirAll(target, info.Mode().Perm()|0o700)

		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)

		case d.Type().IsRegular():
			if err := f.CopyFile(ctx, path, target); err != nil {
				return fmt.Errorf("copying %s: %w", rel, err)
			}
			return nil

		default:
			// sockets, devices and pipes are not part of a snapshot
			return nil
		}
	})
}
