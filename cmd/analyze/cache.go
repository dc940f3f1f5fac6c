package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// resultCache holds the last scan per path for the lifetime of a run and
// mirrors it to disk. It is owned by the event loop: only Update touches the
// map, background commands only use the disk store.
type resultCache struct {
	entries map[string]cacheEntry
	store   *diskStore
	stat    func(string) (os.FileInfo, error)
	now     func() time.Time

	// gen advances on every invalidation so results of scans issued earlier
	// can be recognised and dropped.
	gen           uint64
	invalidations []invalidation
}

type invalidation struct {
	path    string
	gen     uint64
	lineage bool
}

func newResultCache(store *diskStore) *resultCache {
	return &resultCache{
		entries: make(map[string]cacheEntry),
		store:   store,
		stat:    os.Stat,
		now:     time.Now,
	}
}

// get returns the cached entry for path. An entry whose directory has been
// modified since it was recorded is dropped and reported as a miss.
func (c *resultCache) get(path string) (cacheEntry, bool) {
	entry, ok := c.entries[path]
	if !ok {
		return cacheEntry{}, false
	}
	info, err := c.stat(path)
	if err != nil || info.ModTime().After(entry.ModTime) {
		delete(c.entries, path)
		return cacheEntry{}, false
	}
	return entry, true
}

// put records result for path. When persist is set the entry is also written
// to disk in the background; failures there are ignored.
func (c *resultCache) put(path string, result scanResult, modTime time.Time, persist bool) {
	entry := cacheEntry{
		Entries:    cloneDirEntries(result.Entries),
		LargeFiles: cloneFileEntries(result.LargeFiles),
		TotalSize:  result.TotalSize,
		TotalFiles: result.TotalFiles,
		ModTime:    modTime,
		ScanTime:   c.now(),
	}
	c.entries[path] = entry
	if !persist || c.store == nil {
		return
	}
	go func(store *diskStore, p string, e cacheEntry) {
		if err := store.save(p, e); err != nil {
			store.log.Debug().Str("path", p).Err(err).Msg("cache write failed")
		}
		_ = store.storeTotalFiles(p, e.TotalFiles)
		if e.TotalSize > 0 {
			_ = store.storeOverviewSize(p, e.TotalSize)
		}
	}(c.store, path, entry)
}

func (c *resultCache) invalidate(path string) {
	delete(c.entries, path)
	c.record(path, false)
}

// invalidateLineage drops path, everything below it, and every ancestor.
func (c *resultCache) invalidateLineage(path string) {
	path = filepath.Clean(path)
	for cached := range c.entries {
		if related(cached, path) {
			delete(c.entries, cached)
		}
	}
	c.record(path, true)
}

func (c *resultCache) record(path string, lineage bool) {
	c.gen++
	c.invalidations = append(c.invalidations, invalidation{path: filepath.Clean(path), gen: c.gen, lineage: lineage})
}

// generation is captured when a scan is issued and handed back to
// invalidatedSince when its result arrives.
func (c *resultCache) generation() uint64 {
	return c.gen
}

// invalidatedSince reports whether path was invalidated after generation gen.
func (c *resultCache) invalidatedSince(path string, gen uint64) bool {
	path = filepath.Clean(path)
	for i := len(c.invalidations) - 1; i >= 0; i-- {
		inv := c.invalidations[i]
		if inv.gen <= gen {
			return false
		}
		if inv.path == path || (inv.lineage && related(inv.path, path)) {
			return true
		}
	}
	return false
}

func (c *resultCache) len() int {
	return len(c.entries)
}

// related reports whether a and b are the same path or one contains the other.
func related(a, b string) bool {
	return a == b || isAncestor(a, b) || isAncestor(b, a)
}

// isAncestor reports whether dir strictly contains path.
func isAncestor(dir, path string) bool {
	dir = filepath.Clean(dir)
	path = filepath.Clean(path)
	if dir == path {
		return false
	}
	if dir == string(filepath.Separator) {
		return strings.HasPrefix(path, dir)
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
