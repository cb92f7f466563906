package snapshot

import (
	"fmt"
	"sort"

	"github.com/InfernoTsugikuni/FlameUp/internal/fs"
)

// List enumerates the snapshots directly under root, oldest first.
// A missing root is not an error: it simply has no snapshots yet.
// Sizes are not computed here; see Measure.
func List(fsys fs.FS, root string) ([]Snapshot, error) {
	ok, err := fsys.Exists(root)
	if err != nil {
		return nil, fmt.Errorf("checking backup root: %w", err)
	}
	if !ok {
		return nil, nil
	}

	entries, err := fsys.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading backup root: %w", err)
	}

	var snaps []Snapshot
	for _, e := range entries {
		if !e.IsDir() || !IsManaged(e.Name) {
			continue
		}
		// unparseable names are still managed; they just carry no timestamp
		ts, _ := ParseID(e.Name)
		snaps = append(snaps, Snapshot{
			ID:        e.Name,
			Path:      e.Path,
			Timestamp: ts,
		})
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].ID < snaps[j].ID
	})
	return snaps, nil
}

// NewestFirst returns a copy of snaps in descending identifier order.
func NewestFirst(snaps []Snapshot) []Snapshot {
	out := make([]Snapshot, len(snaps))
	copy(out, snaps)
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID > out[j].ID
	})
	return out
}

// IDs extracts the identifiers, preserving order.
func IDs(snaps []Snapshot) []string {
	ids := make([]string, len(snaps))
	for i, s := range snaps {
		ids[i] = s.ID
	}
	return ids
}

// Measure fills in Size for every snapshot.
func Measure(fsys fs.FS, snaps []Snapshot) error {
	for i := range snaps {
		size, err := fsys.TreeSize(snaps[i].Path)
		if err != nil {
			return fmt.Errorf("measuring %s: %w", snaps[i].ID, err)
		}
		snaps[i].Size = size
	}
	return nil
}
