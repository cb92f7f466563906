package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/InfernoTsugikuni/FlameUp/internal/fs"
)

func TestNewID(t *testing.T) {
	now := time.Date(2024, 3, 7, 9, 5, 2, 999, time.Local)
	id, err := NewID(now)
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if want := "Backup_2024-03-07_09-05-02"; id != want {
		t.Errorf("id = %q, want %q", id, want)
	}

	back, err := ParseID(id)
	if err != nil {
		t.Fatalf("ParseID: %v", err)
	}
	if !back.Equal(now.Truncate(time.Second)) {
		t.Errorf("ParseID = %v, want %v", back, now.Truncate(time.Second))
	}
}

func TestNewID_Invalid(t *testing.T) {
	cases := []time.Time{
		{},
		time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(-1, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, c := range cases {
		if _, err := NewID(c); !errors.Is(err, ErrInvalidTime) {
			t.Errorf("NewID(%v) err = %v, want ErrInvalidTime", c, err)
		}
	}
}

func TestNewID_OrderMatchesTime(t *testing.T) {
	base := time.Date(2023, 12, 31, 23, 59, 58, 0, time.UTC)
	steps := []time.Duration{
		time.Second,
		time.Minute,
		time.Hour,
		24 * time.Hour,
		31 * 24 * time.Hour,
		400 * 24 * time.Hour,
	}
	prev, err := NewID(base)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range steps {
		later := base.Add(d)
		id, err := NewID(later)
		if err != nil {
			t.Fatal(err)
		}
		if !(prev < id) {
			t.Errorf("id(%v)=%q not < id(%v)=%q", base, prev, later, id)
		}
	}
}

func TestValidateName(t *testing.T) {
	good := []string{"Backup_2024-01-01_00-00-00", "Backup_custom"}
	for _, n := range good {
		if err := ValidateName(n); err != nil {
			t.Errorf("ValidateName(%q) = %v", n, err)
		}
	}

	bad := []string{"", ".", "..", "../Backup_x", "Backup_x/../../etc", `Backup_a\b`, "notes"}
	for _, n := range bad {
		if err := ValidateName(n); !errors.Is(err, ErrInvalidName) {
			t.Errorf("ValidateName(%q) = %v, want ErrInvalidName", n, err)
		}
	}
}

func TestList(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{
		"Backup_2024-01-02_00-00-00",
		"Backup_2023-12-31_23-59-59",
		"Backup_2024-01-01_12-00-00",
		"other",
	} {
		if err := os.Mkdir(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	// a file carrying the prefix is not a snapshot
	if err := os.WriteFile(filepath.Join(root, "Backup_file"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	snaps, err := List(fs.New(), root)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := []string{
		"Backup_2023-12-31_23-59-59",
		"Backup_2024-01-01_12-00-00",
		"Backup_2024-01-02_00-00-00",
	}
	if got := IDs(snaps); !reflect.DeepEqual(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}
	if got := IDs(NewestFirst(snaps)); !reflect.DeepEqual(got, []string{want[2], want[1], want[0]}) {
		t.Errorf("NewestFirst = %v", got)
	}
	if snaps[0].Timestamp.IsZero() {
		t.Error("timestamp not parsed")
	}
	if snaps[0].Path != filepath.Join(root, want[0]) {
		t.Errorf("path = %q", snaps[0].Path)
	}
}

func TestList_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "absent")

	snaps, err := List(fs.New(), root)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("got %d snapshots, want 0", len(snaps))
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Errorf("List created the root: %v", err)
	}
}

func TestMeasure(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Backup_2024-01-01_00-00-00")
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "f"), make([]byte, 42), 0o644); err != nil {
		t.Fatal(err)
	}

	snaps, err := List(fs.New(), root)
	if err != nil {
		t.Fatal(err)
	}
	if err := Measure(fs.New(), snaps); err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if snaps[0].Size != 42 {
		t.Errorf("size = %d, want 42", snaps[0].Size)
	}
}
