package main

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

var (
	errCacheDisabled = errors.New("cache disabled")
	errCacheStale    = errors.New("cache expired: directory modified")
	errCacheExpired  = errors.New("cache expired: too old")
	errCacheMiss     = errors.New("cache miss")
	errEmptyPath     = errors.New("empty path")
	errCorruptIndex  = errors.New("corrupt cache index")
)

type overviewSizeSnapshot struct {
	Size    int64     `json:"size"`
	Updated time.Time `json:"updated"`
}

// diskStore persists scan results between runs. Every method is safe to call
// from background goroutines, and a nil *diskStore behaves as an empty,
// read-only store.
type diskStore struct {
	fs   afero.Fs
	dir  string
	ttl  time.Duration
	log  zerolog.Logger
	stat func(string) (os.FileInfo, error)

	mu             sync.Mutex
	overview       map[string]overviewSizeSnapshot
	overviewLoaded bool
	totals         map[string]int64
	totalsLoaded   bool
	cutoffs        map[string]time.Time
	cutoffsLoaded  bool
}

func newDiskStore(fsys afero.Fs, dir string, ttl time.Duration, log zerolog.Logger) (*diskStore, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	if ttl <= 0 {
		ttl = diskCacheTTL
	}
	return &diskStore{
		fs:   fsys,
		dir:  dir,
		ttl:  ttl,
		log:  log,
		stat: os.Stat,
	}, nil
}

func (s *diskStore) cachePath(path string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%016x.cache", xxhash.Sum64String(path)))
}

// load returns the stored result for path if the directory has not been
// modified since it was written.
func (s *diskStore) load(path string) (*cacheEntry, error) {
	if s == nil {
		return nil, errCacheDisabled
	}
	file, err := s.fs.Open(s.cachePath(path))
	if err != nil {
		return nil, errCacheMiss
	}
	defer file.Close()

	var entry cacheEntry
	if err := gob.NewDecoder(file).Decode(&entry); err != nil {
		return nil, fmt.Errorf("decode cache: %w", err)
	}

	info, err := s.stat(path)
	if err != nil {
		return nil, err
	}
	if info.ModTime().After(entry.ModTime) || s.cutAfter(path, entry.ScanTime) {
		return nil, errCacheStale
	}
	if time.Since(entry.ScanTime) > s.ttl {
		return nil, errCacheExpired
	}
	return &entry, nil
}

func (s *diskStore) save(path string, entry cacheEntry) error {
	if s == nil {
		return errCacheDisabled
	}
	target := s.cachePath(path)
	tmp := target + ".tmp"
	file, err := s.fs.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(file).Encode(entry); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return s.fs.Rename(tmp, target)
}

func (s *diskStore) remove(path string) {
	if s == nil {
		return
	}
	_ = s.fs.Remove(s.cachePath(path))
}

// dropLineage forgets everything stored for path and each of its ancestors.
func (s *diskStore) dropLineage(path string) {
	if s == nil || path == "" {
		return
	}
	for p := filepath.Clean(path); ; p = filepath.Dir(p) {
		s.remove(p)
		_ = s.forgetOverviewSize(p)
		if p == filepath.Dir(p) {
			return
		}
	}
}

// invalidateTree rejects every stored result at or below path that was
// written before now, and drops the ancestors of path.
func (s *diskStore) invalidateTree(path string) {
	if s == nil || path == "" {
		return
	}
	path = filepath.Clean(path)
	s.mu.Lock()
	if err := s.ensureCutoffsLocked(); err == nil {
		s.cutoffs[path] = time.Now()
		if err := s.writeJSON(scanCutoffsFile, s.cutoffs); err != nil {
			s.log.Debug().Str("path", path).Err(err).Msg("cutoff write failed")
		}
	}
	s.mu.Unlock()
	s.dropLineage(path)
}

// cutAfter reports whether path or one of its ancestors was invalidated at or
// after scanned.
func (s *diskStore) cutAfter(path string, scanned time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureCutoffsLocked(); err != nil || len(s.cutoffs) == 0 {
		return false
	}
	for p := filepath.Clean(path); ; p = filepath.Dir(p) {
		if cut, ok := s.cutoffs[p]; ok && !scanned.After(cut) {
			return true
		}
		if p == filepath.Dir(p) {
			return false
		}
	}
}

func (s *diskStore) ensureCutoffsLocked() error {
	if s.cutoffsLoaded {
		return nil
	}
	cutoffs := make(map[string]time.Time)
	err := s.readJSON(scanCutoffsFile, &cutoffs)
	if err != nil && !errors.Is(err, errCorruptIndex) {
		return err
	}
	if err != nil || cutoffs == nil {
		cutoffs = make(map[string]time.Time)
	}
	s.cutoffs = cutoffs
	s.cutoffsLoaded = true
	return nil
}

func (s *diskStore) jsonPath(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *diskStore) readJSON(name string, v any) error {
	storePath := s.jsonPath(name)
	data, err := afero.ReadFile(s.fs, storePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		// keep the broken file around for inspection
		_ = s.fs.Rename(storePath, storePath+".corrupt")
		s.log.Warn().Str("file", storePath).Err(err).Msg("corrupt cache index moved aside")
		return errCorruptIndex
	}
	return nil
}

func (s *diskStore) writeJSON(name string, v any) error {
	storePath := s.jsonPath(name)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmpPath := storePath + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, data, 0o644); err != nil {
		return err
	}
	return s.fs.Rename(tmpPath, storePath)
}

func (s *diskStore) ensureOverviewLocked() error {
	if s.overviewLoaded {
		return nil
	}
	snapshots := make(map[string]overviewSizeSnapshot)
	err := s.readJSON(overviewCacheFile, &snapshots)
	if err != nil && !errors.Is(err, errCorruptIndex) {
		return err
	}
	if err != nil || snapshots == nil {
		snapshots = make(map[string]overviewSizeSnapshot)
	}
	s.overview = snapshots
	s.overviewLoaded = true
	return nil
}

// loadOverviewSize returns a stored overview size younger than overviewCacheTTL.
func (s *diskStore) loadOverviewSize(path string) (int64, error) {
	if s == nil {
		return 0, errCacheDisabled
	}
	if path == "" {
		return 0, errEmptyPath
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOverviewLocked(); err != nil {
		return 0, err
	}
	snapshot, ok := s.overview[path]
	if !ok || snapshot.Size <= 0 {
		return 0, errCacheMiss
	}
	if time.Since(snapshot.Updated) >= overviewCacheTTL {
		return 0, errCacheExpired
	}
	return snapshot.Size, nil
}

func (s *diskStore) storeOverviewSize(path string, size int64) error {
	if s == nil {
		return errCacheDisabled
	}
	if path == "" || size <= 0 {
		return fmt.Errorf("invalid overview size for %q", path)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOverviewLocked(); err != nil {
		return err
	}
	s.overview[path] = overviewSizeSnapshot{Size: size, Updated: time.Now()}
	return s.writeJSON(overviewCacheFile, s.overview)
}

func (s *diskStore) forgetOverviewSize(path string) error {
	if s == nil {
		return errCacheDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOverviewLocked(); err != nil {
		return err
	}
	if _, ok := s.overview[path]; !ok {
		return nil
	}
	delete(s.overview, path)
	return s.writeJSON(overviewCacheFile, s.overview)
}

func (s *diskStore) ensureTotalsLocked() error {
	if s.totalsLoaded {
		return nil
	}
	totals := make(map[string]int64)
	err := s.readJSON(scanTotalsFile, &totals)
	if err != nil && !errors.Is(err, errCorruptIndex) {
		return err
	}
	if err != nil || totals == nil {
		totals = make(map[string]int64)
	}
	s.totals = totals
	s.totalsLoaded = true
	return nil
}

// peekTotalFiles returns the file count of the last scan of path, regardless
// of freshness. It only seeds a progress bar.
func (s *diskStore) peekTotalFiles(path string) (int64, error) {
	if s == nil {
		return 0, errCacheDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureTotalsLocked(); err != nil {
		return 0, err
	}
	total, ok := s.totals[path]
	if !ok {
		return 0, errCacheMiss
	}
	return total, nil
}

func (s *diskStore) storeTotalFiles(path string, total int64) error {
	if s == nil {
		return errCacheDisabled
	}
	if total <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureTotalsLocked(); err != nil {
		return err
	}
	s.totals[path] = total
	return s.writeJSON(scanTotalsFile, s.totals)
}
