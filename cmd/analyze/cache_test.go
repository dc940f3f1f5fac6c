package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestResultCacheHitReturnsSameResult(t *testing.T) {
	dir := t.TempDir()
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	c := newResultCache(nil)
	result := scanResult{
		Entries:    []dirEntry{{Name: "a", Path: filepath.Join(dir, "a"), Size: 10, IsDir: true}},
		LargeFiles: []fileEntry{{Name: "f", Path: filepath.Join(dir, "a", "f"), Size: 10}},
		TotalSize:  10,
		TotalFiles: 1,
	}
	c.put(dir, result, info.ModTime(), false)

	// mutating the caller's slices must not leak into the cache
	result.Entries[0].Size = 999

	entry, ok := c.get(dir)
	if !ok {
		t.Fatal("get() missed a fresh entry")
	}
	got := entry.result()
	if got.TotalSize != 10 || got.TotalFiles != 1 || len(got.Entries) != 1 || got.Entries[0].Size != 10 {
		t.Errorf("cached result = %+v", got)
	}
	if len(got.LargeFiles) != 1 || got.LargeFiles[0].Name != "f" {
		t.Errorf("cached large files = %+v", got.LargeFiles)
	}
}

func TestResultCacheMissAfterModification(t *testing.T) {
	dir := t.TempDir()
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	c := newResultCache(nil)
	c.put(dir, scanResult{TotalSize: 1}, info.ModTime(), false)

	later := info.ModTime().Add(time.Minute)
	if err := os.Chtimes(dir, later, later); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.get(dir); ok {
		t.Fatal("get() should miss after the directory changed")
	}
	if c.len() != 0 {
		t.Errorf("stale entry was not dropped, len = %d", c.len())
	}
}

func TestResultCacheMissForDeletedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	c := newResultCache(nil)
	c.put(dir, scanResult{TotalSize: 1}, time.Now(), false)
	if _, ok := c.get(dir); ok {
		t.Fatal("get() should miss for a directory that no longer exists")
	}
}

func TestResultCacheInvalidateLineage(t *testing.T) {
	c := newResultCache(nil)
	for _, p := range []string{"/a", "/a/b", "/a/b/c", "/a/b/c/d", "/a/x", "/z"} {
		c.entries[p] = cacheEntry{}
	}
	c.invalidateLineage("/a/b/c")

	for _, gone := range []string{"/a", "/a/b", "/a/b/c", "/a/b/c/d"} {
		if _, ok := c.entries[gone]; ok {
			t.Errorf("%s should have been invalidated", gone)
		}
	}
	for _, kept := range []string{"/a/x", "/z"} {
		if _, ok := c.entries[kept]; !ok {
			t.Errorf("%s should have been kept", kept)
		}
	}
}

func TestIsAncestor(t *testing.T) {
	tests := []struct {
		dir, path string
		want      bool
	}{
		{"/a", "/a/b", true},
		{"/a", "/a", false},
		{"/a", "/ab", false},
		{"/", "/a", true},
		{"/a/b", "/a", false},
		{"/a/", "/a/b/c", true},
	}
	for _, tt := range tests {
		if got := isAncestor(tt.dir, tt.path); got != tt.want {
			t.Errorf("isAncestor(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}

func TestResultCacheInvalidatedSince(t *testing.T) {
	c := newResultCache(nil)
	issued := c.generation()

	c.invalidateLineage("/a/b")
	for _, p := range []string{"/a", "/a/b", "/a/b/c"} {
		if !c.invalidatedSince(p, issued) {
			t.Errorf("%s should count as invalidated after generation %d", p, issued)
		}
	}
	if c.invalidatedSince("/z", issued) {
		t.Error("/z is unrelated to /a/b")
	}
	if c.invalidatedSince("/a", c.generation()) {
		t.Error("a scan issued after the invalidation is current")
	}

	issued = c.generation()
	c.invalidate("/q/r")
	if c.invalidatedSince("/q", issued) {
		t.Error("plain invalidate must not reach ancestors")
	}
	if !c.invalidatedSince("/q/r", issued) {
		t.Error("/q/r was invalidated")
	}
}
