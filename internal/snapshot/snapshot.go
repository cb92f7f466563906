// Package snapshot names and enumerates the snapshot directories under a backup root.
package snapshot

import "time"

// Snapshot represents a single snapshot directory.
type Snapshot struct {
	ID        string    `json:"name" yaml:"name"`
	Path      string    `json:"path" yaml:"path"`
	Timestamp time.Time `json:"created" yaml:"created"`
	Size      int64     `json:"sizeBytes" yaml:"sizeBytes"`
}
