package snapshot

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	// Prefix marks a directory under the backup root as a managed snapshot.
	Prefix = "Backup_"

	// fixed-width, big-endian: string order equals time order
	layout = "2006-01-02_15-04-05"
)

var (
	ErrInvalidTime = errors.New("snapshot: cannot derive identifier from time")
	ErrInvalidName = errors.New("snapshot: invalid snapshot name")
)

// NewID derives the snapshot identifier for now, in now's location.
// Times the fixed-width format cannot represent are rejected.
func NewID(now time.Time) (string, error) {
	if now.IsZero() {
		return "", fmt.Errorf("%w: zero time", ErrInvalidTime)
	}
	if y := now.Year(); y < 0 || y > 9999 {
		return "", fmt.Errorf("%w: year %d out of range", ErrInvalidTime, y)
	}
	return Prefix + now.Format(layout), nil
}

// ParseID returns the local creation time encoded in id.
func ParseID(id string) (time.Time, error) {
	if !strings.HasPrefix(id, Prefix) {
		return time.Time{}, fmt.Errorf("%w: %q lacks prefix %q", ErrInvalidName, id, Prefix)
	}
	t, err := time.ParseInLocation(layout, strings.TrimPrefix(id, Prefix), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	return t, nil
}

// IsManaged reports whether a directory name belongs to the catalog.
func IsManaged(name string) bool {
	return strings.HasPrefix(name, Prefix)
}

// ValidateName checks that name can only address an entry directly under the root.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`) || filepath.Base(name) != name:
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case !IsManaged(name):
		return fmt.Errorf("%w: %q does not start with %q", ErrInvalidName, name, Prefix)
	}
	return nil
}
