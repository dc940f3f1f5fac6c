//go:build !darwin

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMoveToTrashFreedesktop(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	src := filepath.Join(t.TempDir(), "report.bin")
	writeSizedFile(t, src, 16)

	if err := moveToTrash(context.Background(), src); err != nil {
		t.Fatalf("moveToTrash() error = %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("source still exists: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataHome, "Trash", "files", "report.bin")); err != nil {
		t.Errorf("trashed file missing: %v", err)
	}
	info, err := os.ReadFile(filepath.Join(dataHome, "Trash", "info", "report.bin.trashinfo"))
	if err != nil {
		t.Fatalf("trashinfo missing: %v", err)
	}
	if !strings.Contains(string(info), "Path="+src) {
		t.Errorf("trashinfo = %q, want Path=%s", info, src)
	}
}

func TestMoveToTrashNameCollision(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	first := filepath.Join(t.TempDir(), "same.bin")
	second := filepath.Join(t.TempDir(), "same.bin")
	writeSizedFile(t, first, 1)
	writeSizedFile(t, second, 2)

	for _, p := range []string{first, second} {
		if err := moveToTrash(context.Background(), p); err != nil {
			t.Fatalf("moveToTrash(%s) error = %v", p, err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(dataHome, "Trash", "files"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("trash holds %d items, want 2", len(entries))
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "same.bin") {
			t.Errorf("unexpected trash entry %s", e.Name())
		}
	}
}

func TestMoveToTrashMissingPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	err := moveToTrash(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if !os.IsNotExist(err) {
		t.Errorf("moveToTrash() error = %v, want not-exist", err)
	}
}

func fakeDevices(mounts map[string]uint64) func(string) (uint64, error) {
	return func(p string) (uint64, error) {
		var best string
		for m := range mounts {
			if (p == m || isAncestor(m, p)) && len(m) > len(best) {
				best = m
			}
		}
		return mounts[best], nil
	}
}

func TestTrashLocationHomeFilesystem(t *testing.T) {
	devs := fakeDevices(map[string]uint64{"/": 1, "/mnt/usb": 2})
	dir, recorded, err := trashLocation("/home/u/old.iso", "/home/u/.local/share/Trash", devs)
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/home/u/.local/share/Trash" || recorded != "/home/u/old.iso" {
		t.Errorf("trashLocation() = %s, %s", dir, recorded)
	}
}

func TestTrashLocationOtherFilesystem(t *testing.T) {
	devs := fakeDevices(map[string]uint64{"/": 1, "/mnt/usb": 2})
	dir, recorded, err := trashLocation("/mnt/usb/media/old.iso", "/home/u/.local/share/Trash", devs)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("/mnt/usb", fmt.Sprintf(".Trash-%d", os.Getuid()))
	if dir != want || recorded != "media/old.iso" {
		t.Errorf("trashLocation() = %s, %s; want %s, media/old.iso", dir, recorded, want)
	}
}

func TestVolumeTrashDirPrefersSharedTrash(t *testing.T) {
	top := t.TempDir()
	if got := volumeTrashDir(top, 1000); got != filepath.Join(top, ".Trash-1000") {
		t.Errorf("without .Trash: %s", got)
	}

	shared := filepath.Join(top, ".Trash")
	if err := os.Mkdir(shared, 0o777); err != nil {
		t.Fatal(err)
	}
	if got := volumeTrashDir(top, 1000); got != filepath.Join(top, ".Trash-1000") {
		t.Errorf(".Trash without the sticky bit must be ignored: %s", got)
	}
	if err := os.Chmod(shared, 0o777|os.ModeSticky); err != nil {
		t.Fatal(err)
	}
	if got := volumeTrashDir(top, 1000); got != filepath.Join(shared, "1000") {
		t.Errorf("with sticky .Trash: %s", got)
	}
}
