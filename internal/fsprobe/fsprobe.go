// Package fsprobe checks whether fsnotify delivers events for a directory.
// Network and container mounts often accept a watch and then stay silent,
// so it performs a real create and rename and waits for the event.
package fsprobe

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultTimeout bounds how long Probe waits for the first event.
const DefaultTimeout = 200 * time.Millisecond

// Result reports whether fsnotify is usable and why.
type Result struct {
	FsnotifySupported bool   // true if events are delivered
	Reason            string // explanation when unsupported
}

func unsupported(format string, args ...any) Result {
	return Result{FsnotifySupported: false, Reason: fmt.Sprintf(format, args...)}
}

// Probe tests whether fsnotify reports changes in dir. A zero timeout uses DefaultTimeout.
func Probe(dir string, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	st, err := os.Stat(dir)
	if err != nil {
		return unsupported("stat failed: %v", err)
	}
	if !st.IsDir() {
		return unsupported("not a directory")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return unsupported("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return unsupported("cannot watch directory: %v", err)
	}

	f, err := os.CreateTemp(dir, ".flameup-probe-*")
	if err != nil {
		return unsupported("cannot create probe file: %v", err)
	}
	tmp := f.Name()
	f.Close()

	final := tmp + ".done"
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return unsupported("rename failed: %v", err)
	}
	defer os.Remove(final)

	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return unsupported("watcher closed")
			}
			if filepath.Dir(ev.Name) == filepath.Clean(dir) &&
				ev.Op&(fsnotify.Rename|fsnotify.Create|fsnotify.Write) != 0 {
				return Result{FsnotifySupported: true}
			}
		case err := <-w.Errors:
			return unsupported("watch error: %v", err)
		case <-deadline:
			return unsupported("no events received within %s", timeout)
		}
	}
}
