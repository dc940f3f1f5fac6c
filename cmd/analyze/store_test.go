package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const testCacheDir = "/cache"

func newMemStore(t *testing.T) (*diskStore, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	s, err := newDiskStore(fsys, testCacheDir, time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatalf("newDiskStore() error = %v", err)
	}
	s.stat = fsys.Stat
	return s, fsys
}

func TestDiskStoreSaveLoad(t *testing.T) {
	s, fsys := newMemStore(t)
	if err := fsys.MkdirAll("/data/proj", 0o755); err != nil {
		t.Fatal(err)
	}
	info, _ := fsys.Stat("/data/proj")

	entry := cacheEntry{
		Entries:    []dirEntry{{Name: "src", Path: "/data/proj/src", Size: 100, IsDir: true}},
		TotalSize:  100,
		TotalFiles: 3,
		ModTime:    info.ModTime(),
		ScanTime:   time.Now(),
	}
	if err := s.save("/data/proj", entry); err != nil {
		t.Fatalf("save() error = %v", err)
	}

	got, err := s.load("/data/proj")
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if got.TotalSize != 100 || got.TotalFiles != 3 || len(got.Entries) != 1 || got.Entries[0].Name != "src" {
		t.Errorf("load() = %+v", got)
	}
}

func TestDiskStoreRejectsModifiedDirectory(t *testing.T) {
	s, fsys := newMemStore(t)
	_ = fsys.MkdirAll("/data", 0o755)
	info, _ := fsys.Stat("/data")

	_ = s.save("/data", cacheEntry{ModTime: info.ModTime(), ScanTime: time.Now()})
	later := info.ModTime().Add(time.Minute)
	if err := fsys.Chtimes("/data", later, later); err != nil {
		t.Fatal(err)
	}
	if _, err := s.load("/data"); !errors.Is(err, errCacheStale) {
		t.Errorf("load() error = %v, want errCacheStale", err)
	}
}

func TestDiskStoreRejectsOldEntries(t *testing.T) {
	s, fsys := newMemStore(t)
	_ = fsys.MkdirAll("/data", 0o755)
	info, _ := fsys.Stat("/data")

	_ = s.save("/data", cacheEntry{ModTime: info.ModTime(), ScanTime: time.Now().Add(-2 * time.Hour)})
	if _, err := s.load("/data"); !errors.Is(err, errCacheExpired) {
		t.Errorf("load() error = %v, want errCacheExpired", err)
	}
}

func TestDiskStoreMiss(t *testing.T) {
	s, _ := newMemStore(t)
	if _, err := s.load("/nowhere"); !errors.Is(err, errCacheMiss) {
		t.Errorf("load() error = %v, want errCacheMiss", err)
	}
}

func TestNilDiskStoreIsDisabled(t *testing.T) {
	var s *diskStore
	if _, err := s.load("/x"); !errors.Is(err, errCacheDisabled) {
		t.Errorf("load() error = %v, want errCacheDisabled", err)
	}
	if _, err := s.loadOverviewSize("/x"); !errors.Is(err, errCacheDisabled) {
		t.Errorf("loadOverviewSize() error = %v, want errCacheDisabled", err)
	}
	s.dropLineage("/x")
}

func TestOverviewSizeRoundTrip(t *testing.T) {
	s, fsys := newMemStore(t)
	if err := s.storeOverviewSize("/home/u", 4096); err != nil {
		t.Fatalf("storeOverviewSize() error = %v", err)
	}

	// a second store reads what the first persisted
	s2, err := newDiskStore(fsys, testCacheDir, time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	size, err := s2.loadOverviewSize("/home/u")
	if err != nil || size != 4096 {
		t.Errorf("loadOverviewSize() = %d, %v; want 4096, nil", size, err)
	}
}

func TestOverviewSizeExpires(t *testing.T) {
	s, fsys := newMemStore(t)
	old := map[string]overviewSizeSnapshot{
		"/home/u": {Size: 10, Updated: time.Now().Add(-overviewCacheTTL - time.Hour)},
	}
	data, _ := json.Marshal(old)
	if err := afero.WriteFile(fsys, filepath.Join(testCacheDir, overviewCacheFile), data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.loadOverviewSize("/home/u"); !errors.Is(err, errCacheExpired) {
		t.Errorf("loadOverviewSize() error = %v, want errCacheExpired", err)
	}
}

func TestCorruptOverviewIndexIsMovedAside(t *testing.T) {
	s, fsys := newMemStore(t)
	indexPath := filepath.Join(testCacheDir, overviewCacheFile)
	if err := afero.WriteFile(fsys, indexPath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.loadOverviewSize("/home/u"); !errors.Is(err, errCacheMiss) {
		t.Errorf("loadOverviewSize() error = %v, want errCacheMiss", err)
	}
	if ok, _ := afero.Exists(fsys, indexPath+".corrupt"); !ok {
		t.Error("corrupt index was not renamed")
	}
	if err := s.storeOverviewSize("/home/u", 1); err != nil {
		t.Fatalf("storeOverviewSize() after corruption error = %v", err)
	}
}

func TestTotalFilesRoundTrip(t *testing.T) {
	s, _ := newMemStore(t)
	if _, err := s.peekTotalFiles("/p"); !errors.Is(err, errCacheMiss) {
		t.Errorf("peekTotalFiles() error = %v, want errCacheMiss", err)
	}
	if err := s.storeTotalFiles("/p", 1200); err != nil {
		t.Fatal(err)
	}
	total, err := s.peekTotalFiles("/p")
	if err != nil || total != 1200 {
		t.Errorf("peekTotalFiles() = %d, %v; want 1200, nil", total, err)
	}
}

func TestDropLineageRemovesAncestors(t *testing.T) {
	s, fsys := newMemStore(t)
	for _, p := range []string{"/a", "/a/b", "/a/b/c", "/z"} {
		_ = fsys.MkdirAll(p, 0o755)
		info, _ := fsys.Stat(p)
		_ = s.save(p, cacheEntry{ModTime: info.ModTime(), ScanTime: time.Now()})
		_ = s.storeOverviewSize(p, 5)
	}

	s.dropLineage("/a/b")

	for _, gone := range []string{"/a", "/a/b"} {
		if _, err := s.load(gone); err == nil {
			t.Errorf("load(%s) should miss after dropLineage", gone)
		}
		if _, err := s.loadOverviewSize(gone); err == nil {
			t.Errorf("loadOverviewSize(%s) should miss after dropLineage", gone)
		}
	}
	for _, kept := range []string{"/a/b/c", "/z"} {
		if _, err := s.load(kept); err != nil {
			t.Errorf("load(%s) error = %v, want hit", kept, err)
		}
	}
}

func TestInvalidateTreeRejectsDescendants(t *testing.T) {
	s, fsys := newMemStore(t)
	earlier := time.Now().Add(-time.Minute)
	for _, p := range []string{"/home", "/home/u", "/home/u/docs", "/other"} {
		_ = fsys.MkdirAll(p, 0o755)
		info, _ := fsys.Stat(p)
		_ = s.save(p, cacheEntry{ModTime: info.ModTime(), ScanTime: earlier})
	}

	s.invalidateTree("/home/u")

	for _, gone := range []string{"/home", "/home/u", "/home/u/docs"} {
		if _, err := s.load(gone); err == nil {
			t.Errorf("load(%s) should miss after invalidateTree", gone)
		}
	}
	if _, err := s.load("/other"); err != nil {
		t.Errorf("load(/other) error = %v, want hit", err)
	}

	// results written after the cutoff are usable again
	info, _ := fsys.Stat("/home/u/docs")
	_ = s.save("/home/u/docs", cacheEntry{ModTime: info.ModTime(), ScanTime: time.Now().Add(time.Second)})
	if _, err := s.load("/home/u/docs"); err != nil {
		t.Errorf("load() of a newer entry error = %v", err)
	}

	// the cutoff survives a restart
	s2, err := newDiskStore(fsys, testCacheDir, time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	s2.stat = fsys.Stat
	_ = s2.save("/home/u", cacheEntry{ModTime: info.ModTime(), ScanTime: earlier})
	if _, err := s2.load("/home/u"); !errors.Is(err, errCacheStale) {
		t.Errorf("load() after restart error = %v, want errCacheStale", err)
	}
}
