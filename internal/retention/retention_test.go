package retention

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/InfernoTsugikuni/FlameUp/internal/fs"
	"github.com/InfernoTsugikuni/FlameUp/internal/logging"
)

var ids = []string{
	"Backup_2024-01-01_00-00-00",
	"Backup_2024-01-02_00-00-00",
	"Backup_2024-01-03_00-00-00",
	"Backup_2024-01-04_00-00-00",
}

func TestSelectForEviction(t *testing.T) {
	cases := []struct {
		name    string
		ordered []string
		max     int
		want    []string
	}{
		{"below limit", ids[:2], 3, nil},
		{"at limit", ids[:3], 3, ids[:1]},
		{"above limit", ids, 2, ids[:3]},
		{"limit one", ids, 1, ids},
		{"limit zero", ids, 0, ids},
		{"empty", nil, 0, nil},
		{"negative treated as zero", ids[:2], -1, ids[:2]},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := SelectForEviction(c.ordered, c.max)
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("SelectForEviction(%d) = %v, want %v", c.max, got, c.want)
			}
		})
	}
}

func TestSelectForEviction_LeavesRoomForOne(t *testing.T) {
	for max := 1; max <= 6; max++ {
		for n := 0; n <= len(ids); n++ {
			evicted := SelectForEviction(ids[:n], max)
			if left := n - len(evicted); left+1 > max {
				t.Errorf("n=%d max=%d: %d left, adding one exceeds max", n, max, left)
			}
		}
	}
}

func mkdirs(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.MkdirAll(filepath.Join(root, n), 0o755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestEngine_Apply(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, ids...)
	mkdirs(t, root, "unmanaged", ".tmp-"+ids[0]+"x")

	e := New(logging.Discard(), nil)
	evicted, err := e.Apply(context.Background(), root, 2)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !reflect.DeepEqual(evicted, ids[:3]) {
		t.Errorf("evicted = %v, want %v", evicted, ids[:3])
	}

	for _, id := range ids[:3] {
		if _, err := os.Stat(filepath.Join(root, id)); !os.IsNotExist(err) {
			t.Errorf("%s still present", id)
		}
	}
	if _, err := os.Stat(filepath.Join(root, ids[3])); err != nil {
		t.Errorf("newest removed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "unmanaged")); err != nil {
		t.Errorf("unmanaged dir touched: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, ".tmp-"+ids[0]+"x")); !os.IsNotExist(err) {
		t.Errorf("stale staging dir not swept")
	}
}

func TestEngine_Apply_MissingRoot(t *testing.T) {
	e := New(logging.Discard(), nil)
	evicted, err := e.Apply(context.Background(), filepath.Join(t.TempDir(), "none"), 3)
	if err != nil || len(evicted) != 0 {
		t.Fatalf("Apply = %v, %v", evicted, err)
	}
}

func TestEngine_Apply_Negative(t *testing.T) {
	e := New(logging.Discard(), nil)
	if _, err := e.Apply(context.Background(), t.TempDir(), -1); err == nil {
		t.Fatal("expected error for negative max")
	}
}

type failingRemove struct {
	fs.FS
	fail string
}

var errRemove = errors.New("remove refused")

func (f failingRemove) RemoveAll(path string) error {
	if filepath.Base(path) == f.fail {
		return errRemove
	}
	return f.FS.RemoveAll(path)
}

func TestEngine_Apply_RemoveFailure(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, ids...)

	e := New(logging.Discard(), failingRemove{FS: fs.New(), fail: ids[1]})
	evicted, err := e.Apply(context.Background(), root, 1)
	if !errors.Is(err, errRemove) {
		t.Fatalf("err = %v, want errRemove", err)
	}
	if !reflect.DeepEqual(evicted, ids[:1]) {
		t.Errorf("evicted = %v, want %v", evicted, ids[:1])
	}
}
