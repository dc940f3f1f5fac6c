package main

import "time"

// dirEntry is one row of a directory or overview listing. Size -1 means the
// entry has not been measured yet.
type dirEntry struct {
	Name       string
	Path       string
	Size       int64
	IsDir      bool
	LastAccess time.Time
}

type fileEntry struct {
	Name string
	Path string
	Size int64
	Kind string
}

type scanResult struct {
	Entries    []dirEntry
	LargeFiles []fileEntry
	TotalSize  int64
	TotalFiles int64
}

type cacheEntry struct {
	Entries    []dirEntry
	LargeFiles []fileEntry
	TotalSize  int64
	TotalFiles int64
	ModTime    time.Time
	ScanTime   time.Time
}

func (e cacheEntry) result() scanResult {
	return scanResult{
		Entries:    cloneDirEntries(e.Entries),
		LargeFiles: cloneFileEntries(e.LargeFiles),
		TotalSize:  e.TotalSize,
		TotalFiles: e.TotalFiles,
	}
}

// historyEntry is a navigation breadcrumb. Its listing is only trusted while
// Dirty is false; a deletion beneath it flips the flag.
type historyEntry struct {
	Path          string
	Entries       []dirEntry
	LargeFiles    []fileEntry
	TotalSize     int64
	TotalFiles    int64
	Selected      int
	EntryOffset   int
	LargeSelected int
	LargeOffset   int
	MultiSelected map[string]bool
	LargeMulti    map[string]bool
	Dirty         bool
	IsOverview    bool
}

type scanResultMsg struct {
	path      string
	result    scanResult
	modTime   time.Time
	fromCache bool
	issued    uint64
	err       error
}

type overviewSizeMsg struct {
	Path string
	Size int64
	Err  error
	Gen  int
}

type deleteProgressMsg struct {
	done    bool
	err     error
	count   int64
	removed []string
}

type openResultMsg struct {
	count int
	err   error
}

type tickMsg time.Time

func cloneDirEntries(entries []dirEntry) []dirEntry {
	if len(entries) == 0 {
		return nil
	}
	copied := make([]dirEntry, len(entries))
	copy(copied, entries)
	return copied
}

func cloneFileEntries(files []fileEntry) []fileEntry {
	if len(files) == 0 {
		return nil
	}
	copied := make([]fileEntry, len(files))
	copy(copied, files)
	return copied
}

func cloneSelection(set map[string]bool) map[string]bool {
	copied := make(map[string]bool, len(set))
	for k, v := range set {
		copied[k] = v
	}
	return copied
}
