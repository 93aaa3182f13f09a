package assets

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestDiskPutOpenDelete(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir, 0)
	if err != nil {
		t.Fatalf("NewDisk failed: %v", err)
	}
	ctx := context.Background()

	if err := d.Put(ctx, "model.stl", strings.NewReader("solid cube")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rc, err := d.Open(ctx, "model.stl")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "solid cube" {
		t.Errorf("content = %q, want %q", data, "solid cube")
	}

	if err := d.Delete(ctx, "model.stl"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := d.Open(ctx, "model.stl"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open after delete error = %v, want ErrNotFound", err)
	}
	if err := d.Delete(ctx, "model.stl"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestDiskTooLarge(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir, 4)
	if err != nil {
		t.Fatalf("NewDisk failed: %v", err)
	}

	err = d.Put(context.Background(), "big.stl", strings.NewReader("0123456789"))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Put error = %v, want ErrTooLarge", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("dir has %d entries after rejected upload, want 0", len(entries))
	}
}

func TestDiskRejectsPathNames(t *testing.T) {
	d, err := NewDisk(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewDisk failed: %v", err)
	}

	for _, name := range []string{"", "..", "../etc/passwd", "a/b.stl", `a\b.stl`} {
		if err := d.Put(context.Background(), name, strings.NewReader("x")); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestNewDiskCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	if _, err := NewDisk(dir, 0); err != nil {
		t.Fatalf("NewDisk failed: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("dir not created: %v", err)
	}
}

func TestModelName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	name := ModelName("p-1", now)

	re := regexp.MustCompile(`^model-p-1-1700000000123-\d+\.stl$`)
	if !re.MatchString(name) {
		t.Errorf("ModelName = %q, does not match %s", name, re)
	}
	if err := checkName(name); err != nil {
		t.Errorf("generated name rejected: %v", err)
	}
}
