// Package backup implements the snapshot lifecycle: create, list, restore and delete.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/InfernoTsugikuni/FlameUp/internal/config"
	"github.com/InfernoTsugikuni/FlameUp/internal/fs"
	"github.com/InfernoTsugikuni/FlameUp/internal/logging"
	"github.com/InfernoTsugikuni/FlameUp/internal/retention"
	"github.com/InfernoTsugikuni/FlameUp/internal/snapshot"
)

var (
	ErrSourceMissing = errors.New("source path does not exist or is not a directory")
	ErrNotFound      = errors.New("backup not found")
)

type Engine struct {
	fs        fs.FS
	log       logging.Logger
	retention *retention.Engine
	now       func() time.Time
}

type Option func(*Engine)

// WithClock replaces time.Now for snapshot naming.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func New(log logging.Logger, filesystem fs.FS, opts ...Option) *Engine {
	if filesystem == nil {
		filesystem = fs.New()
	}
	e := &Engine{
		fs:        filesystem,
		log:       log,
		retention: retention.New(log, filesystem),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result describes a completed create.
type Result struct {
	ID       string
	Path     string
	Source   string
	Evicted  []string
	Retained int
	Duration time.Duration
}

// Create applies retention under the backup root and copies the source
// into a new snapshot named after the current time.
func (e *Engine) Create(ctx context.Context, cfg config.Config) (Result, error) {
	start := time.Now()

	if err := config.Verify(cfg); err != nil {
		return Result{}, err
	}

	source, err := config.ResolveSource(cfg)
	if err != nil {
		return Result{}, fmt.Errorf("resolving source: %w", err)
	}

	info, err := e.fs.Stat(source)
	if errors.Is(err, os.ErrNotExist) || (err == nil && !info.IsDir()) {
		return Result{}, fmt.Errorf("%w: %s", ErrSourceMissing, source)
	}
	if err != nil {
		return Result{}, fmt.Errorf("checking source: %w", err)
	}

	root := cfg.Backup.Root
	if err := checkRootOutsideSource(source, root); err != nil {
		return Result{}, err
	}

	log := e.log.With("source", source, "root", root)

	if err := e.fs.MkdirAll(root); err != nil {
		return Result{}, fmt.Errorf("creating backup root: %w", err)
	}

	evicted, err := e.retention.Apply(ctx, root, cfg.Backup.Max)
	if err != nil {
		return Result{Evicted: evicted, Source: source}, fmt.Errorf("applying retention: %w", err)
	}

	id, err := snapshot.NewID(e.now())
	if err != nil {
		return Result{Evicted: evicted, Source: source}, err
	}

	final := filepath.Join(root, id)
	staging := filepath.Join(root, retention.StagingPrefix+id)

	log.Info("creating backup", "id", id)

	if err := e.fs.RemoveAll(staging); err != nil {
		return Result{ID: id, Evicted: evicted, Source: source}, fmt.Errorf("clearing staging dir: %w", err)
	}

	if err := e.fs.CopyTree(ctx, source, staging); err != nil {
		if rmErr := e.fs.RemoveAll(staging); rmErr != nil {
			log.Warn("failed to remove staging dir", "path", staging, "error", rmErr)
		}
		return Result{ID: id, Evicted: evicted, Source: source}, fmt.Errorf("copying %s: %w", source, err)
	}

	exists, err := e.fs.Exists(final)
	if err != nil {
		_ = e.fs.RemoveAll(staging)
		return Result{ID: id, Evicted: evicted, Source: source}, fmt.Errorf("checking %s: %w", id, err)
	}
	if exists {
		log.Warn("backup with the same name exists, overwriting", "id", id)
		if err := e.fs.RemoveAll(final); err != nil {
			_ = e.fs.RemoveAll(staging)
			return Result{ID: id, Evicted: evicted, Source: source}, fmt.Errorf("replacing %s: %w", id, err)
		}
	}

	if err := e.fs.Rename(ctx, staging, final); err != nil {
		_ = e.fs.RemoveAll(staging)
		return Result{ID: id, Evicted: evicted, Source: source}, fmt.Errorf("finalizing %s: %w", id, err)
	}

	retained := 0
	if snaps, err := snapshot.List(e.fs, root); err == nil {
		retained = len(snaps)
	}

	res := Result{
		ID:       id,
		Path:     final,
		Source:   source,
		Evicted:  evicted,
		Retained: retained,
		Duration: time.Since(start),
	}
	log.Info("backup created", "id", id, "evicted", len(evicted), "retained", retained, "duration", res.Duration)
	return res, nil
}

// checkRootOutsideSource rejects a backup root inside the source tree,
// which would make every snapshot contain the previous ones.
func checkRootOutsideSource(source, root string) error {
	inside, err := within(source, root)
	if err != nil {
		return err
	}
	if inside {
		return fmt.Errorf("%w: backup root %s lies inside source %s", config.ErrInvalid, root, source)
	}
	return nil
}

// checkRestoreTarget rejects a target that is the entry, contains it, or lies
// inside it. Clearing such a target would destroy the snapshot being restored.
func checkRestoreTarget(entry, target string) error {
	for _, pair := range [][2]string{{target, entry}, {entry, target}} {
		inside, err := within(pair[0], pair[1])
		if err != nil {
			return err
		}
		if inside {
			return fmt.Errorf("%w: restore target %s overlaps backup %s", config.ErrInvalid, target, entry)
		}
	}
	return nil
}

// within reports whether path equals parent or lies below it, after making
// both absolute and resolving symlinks on their existing prefixes.
func within(parent, path string) (bool, error) {
	p, err := filepath.Abs(parent)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", parent, err)
	}
	c, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", path, err)
	}
	if resolved, err := evalExisting(p); err == nil {
		p = resolved
	}
	if resolved, err := evalExisting(c); err == nil {
		c = resolved
	}

	rel, err := filepath.Rel(p, c)
	if err != nil {
		// different volumes
		return false, nil
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))), nil
}

// evalExisting resolves symlinks on the longest existing prefix of path.
func evalExisting(path string) (string, error) {
	var rest []string
	p := path
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			parts := append([]string{resolved}, rest...)
			return filepath.Join(parts...), nil
		}
		parent := filepath.Dir(p)
		if parent == p {
			return path, err
		}
		rest = append([]string{filepath.Base(p)}, rest...)
		p = parent
	}
}

// Report is the outcome of List.
type Report struct {
	Root      string              `json:"root" yaml:"root"`
	Exists    bool                `json:"exists" yaml:"exists"`
	Snapshots []snapshot.Snapshot `json:"backups" yaml:"backups"`
}

// List reports the snapshots under root, newest first, with their sizes.
// It never creates root.
func (e *Engine) List(ctx context.Context, root string) (Report, error) {
	rep := Report{Root: root}

	exists, err := e.fs.Exists(root)
	if err != nil {
		return rep, fmt.Errorf("checking backup root: %w", err)
	}
	if !exists {
		return rep, nil
	}
	rep.Exists = true

	snaps, err := snapshot.List(e.fs, root)
	if err != nil {
		return rep, err
	}
	if err := ctx.Err(); err != nil {
		return rep, err
	}
	if err := snapshot.Measure(e.fs, snaps); err != nil {
		return rep, err
	}
	rep.Snapshots = snapshot.NewestFirst(snaps)
	return rep, nil
}

// Restore copies the named snapshot to target, replacing whatever is there.
func (e *Engine) Restore(ctx context.Context, root, name, target string) error {
	entry, err := e.lookup(root, name)
	if err != nil {
		return err
	}
	if target == "" {
		return fmt.Errorf("%w: restore target is empty", config.ErrInvalid)
	}
	if err := checkRestoreTarget(entry, target); err != nil {
		return err
	}

	log := e.log.With("id", name, "target", target)
	log.Info("restoring backup")

	if err := e.fs.MkdirAll(filepath.Dir(target)); err != nil {
		return fmt.Errorf("creating restore parent: %w", err)
	}
	if err := e.fs.RemoveAll(target); err != nil {
		return fmt.Errorf("clearing restore target: %w", err)
	}
	if err := e.fs.CopyTree(ctx, entry, target); err != nil {
		return fmt.Errorf("restoring %s: %w", name, err)
	}

	log.Info("backup restored")
	return nil
}

// Delete removes the named snapshot.
func (e *Engine) Delete(ctx context.Context, root, name string) error {
	entry, err := e.lookup(root, name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.fs.RemoveAll(entry); err != nil {
		return fmt.Errorf("deleting %s: %w", name, err)
	}
	e.log.Info("backup deleted", "id", name)
	return nil
}

func (e *Engine) lookup(root, name string) (string, error) {
	if err := snapshot.ValidateName(name); err != nil {
		return "", err
	}
	entry := filepath.Join(root, name)
	info, err := e.fs.Stat(entry)
	if errors.Is(err, os.ErrNotExist) || (err == nil && !info.IsDir()) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("checking %s: %w", name, err)
	}
	return entry, nil
}
