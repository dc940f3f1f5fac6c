package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/h2non/filetype"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type scanOptions struct {
	Workers        int
	LargeFileMin   int64
	LargeFileCount int
}

func (o scanOptions) workerCount() int {
	if o.Workers > 0 {
		return o.Workers
	}
	n := runtime.NumCPU() * cpuMultiplier
	return min(max(n, minWorkers), maxWorkers)
}

// scanProgress holds counters a renderer may poll while a scan runs.
// Scanners only ever add to them.
type scanProgress struct {
	files   atomic.Int64
	dirs    atomic.Int64
	bytes   atomic.Int64
	current atomic.Value
}

func newScanProgress() *scanProgress {
	p := &scanProgress{}
	p.current.Store("")
	return p
}

func (p *scanProgress) reset() {
	p.files.Store(0)
	p.dirs.Store(0)
	p.bytes.Store(0)
	p.current.Store("")
}

func (p *scanProgress) snapshot() (files, dirs, bytes int64) {
	return p.files.Load(), p.dirs.Load(), p.bytes.Load()
}

func (p *scanProgress) currentPath() string {
	s, _ := p.current.Load().(string)
	return s
}

type scanner struct {
	opts scanOptions
	log  zerolog.Logger
}

func newScanner(opts scanOptions, log zerolog.Logger) *scanner {
	if opts.LargeFileCount <= 0 {
		opts.LargeFileCount = defaultLargeFileCount
	}
	return &scanner{opts: opts, log: log}
}

// treeWalker is the per-call state of one scan. Nothing in it outlives the call.
type treeWalker struct {
	ctx      context.Context
	group    *errgroup.Group
	rootDev  uint64
	checkDev bool
	tracker  *largeFileTracker
	progress *scanProgress
	files    atomic.Int64
}

func (s *scanner) newWalker(ctx context.Context, root string, progress *scanProgress) *treeWalker {
	if progress == nil {
		progress = newScanProgress()
	}
	g := &errgroup.Group{}
	g.SetLimit(s.opts.workerCount())
	w := &treeWalker{
		ctx:      ctx,
		group:    g,
		tracker:  newLargeFileTracker(s.opts.LargeFileCount, s.opts.LargeFileMin),
		progress: progress,
	}
	if dev, err := deviceOf(root); err == nil {
		w.rootDev = dev
		w.checkDev = true
	}
	return w
}

// scan measures every immediate child of root and collects the largest files
// in the subtree. Unreadable nodes below root are skipped.
func (s *scanner) scan(ctx context.Context, root string, progress *scanProgress) (scanResult, error) {
	start := time.Now()
	children, err := os.ReadDir(root)
	if err != nil {
		return scanResult{}, fmt.Errorf("read %s: %w", root, err)
	}

	w := s.newWalker(ctx, root, progress)
	isRootDir := root == "/"

	type childTotal struct {
		entry dirEntry
		size  atomic.Int64
	}
	totals := make([]*childTotal, 0, len(children))

	for _, child := range children {
		name := child.Name()
		fullPath := filepath.Join(root, name)
		info, err := child.Info()
		if err != nil {
			continue
		}

		if child.IsDir() {
			if isRootDir && skipSystemDirs[name] {
				continue
			}
			ct := &childTotal{entry: dirEntry{Name: name, Path: fullPath, IsDir: true}}
			if !w.sameDevice(info) {
				// Mount points are sized by filesystem usage, never traversed.
				if used, ok := mountUsage(fullPath); ok {
					ct.size.Store(used)
					totals = append(totals, ct)
				}
				continue
			}
			totals = append(totals, ct)
			w.progress.dirs.Add(1)
			trackLarge := !foldDirs[name]
			w.spawn(func() { w.walk(fullPath, &ct.size, trackLarge) })
			continue
		}

		ct := &childTotal{entry: dirEntry{Name: name, Path: fullPath}}
		ct.size.Store(info.Size())
		totals = append(totals, ct)
		w.files.Add(1)
		w.progress.files.Add(1)
		w.progress.bytes.Add(info.Size())
		w.trackFile(fullPath, info.Size())
	}

	_ = w.group.Wait()
	if err := ctx.Err(); err != nil {
		return scanResult{}, err
	}

	var total int64
	entries := make([]dirEntry, 0, len(totals))
	for _, ct := range totals {
		size := ct.size.Load()
		total += size
		if size <= 0 {
			continue
		}
		entry := ct.entry
		entry.Size = size
		entry.LastAccess = lastAccessTime(entry.Path)
		entries = append(entries, entry)
	}
	sortEntriesBySize(entries)

	largeFiles := w.tracker.list()
	labelFileKinds(largeFiles)

	result := scanResult{
		Entries:    entries,
		LargeFiles: largeFiles,
		TotalSize:  total,
		TotalFiles: w.files.Load(),
	}
	s.log.Debug().
		Str("path", root).
		Int64("files", result.TotalFiles).
		Int64("bytes", total).
		Dur("elapsed", time.Since(start)).
		Msg("scan finished")
	return result, nil
}

// measure sums the logical size of root without collecting entries.
func (s *scanner) measure(ctx context.Context, root string, progress *scanProgress) (int64, error) {
	children, err := os.ReadDir(root)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", root, err)
	}
	w := s.newWalker(ctx, root, progress)
	var total atomic.Int64
	local := children[:0:0]
	for _, child := range children {
		if !child.IsDir() {
			local = append(local, child)
			continue
		}
		info, err := child.Info()
		if err != nil || w.sameDevice(info) {
			local = append(local, child)
			continue
		}
		if used, ok := mountUsage(filepath.Join(root, child.Name())); ok {
			total.Add(used)
		}
	}
	w.walkEntries(root, local, &total, false)
	_ = w.group.Wait()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return total.Load(), nil
}

// spawn runs fn on a free worker, or inline when every worker is busy.
func (w *treeWalker) spawn(fn func()) {
	if w.group.TryGo(func() error {
		fn()
		return nil
	}) {
		return
	}
	fn()
}

func (w *treeWalker) sameDevice(info fs.FileInfo) bool {
	if !w.checkDev {
		return true
	}
	dev, ok := deviceOfInfo(info)
	return !ok || dev == w.rootDev
}

func (w *treeWalker) walk(dir string, acc *atomic.Int64, trackLarge bool) {
	if w.ctx.Err() != nil {
		return
	}
	children, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	w.walkEntries(dir, children, acc, trackLarge)
}

func (w *treeWalker) walkEntries(dir string, children []os.DirEntry, acc *atomic.Int64, trackLarge bool) {
	var local, batchBytes, batchFiles int64
	flush := func() {
		acc.Add(local)
		w.files.Add(batchFiles)
		w.progress.files.Add(batchFiles)
		w.progress.bytes.Add(batchBytes)
		local, batchBytes, batchFiles = 0, 0, 0
	}

	w.progress.current.Store(dir)
	for _, child := range children {
		fullPath := filepath.Join(dir, child.Name())
		info, err := child.Info()
		if err != nil {
			continue
		}
		if child.IsDir() {
			if !w.sameDevice(info) {
				continue
			}
			w.progress.dirs.Add(1)
			nested := trackLarge && !foldDirs[child.Name()]
			w.spawn(func() { w.walk(fullPath, acc, nested) })
			continue
		}

		size := info.Size()
		local += size
		batchBytes += size
		batchFiles++
		if trackLarge {
			w.trackFile(fullPath, size)
		}
		if batchFiles >= batchUpdateSize {
			flush()
		}
	}
	flush()
}

func (w *treeWalker) trackFile(path string, size int64) {
	if shouldSkipFileForLargeTracking(path) {
		return
	}
	w.tracker.add(fileEntry{Name: filepath.Base(path), Path: path, Size: size})
}

func shouldSkipFileForLargeTracking(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return skipExtensions[ext]
}

func sortEntriesBySize(entries []dirEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Size != entries[j].Size {
			return entries[i].Size > entries[j].Size
		}
		return entries[i].Name < entries[j].Name
	})
}

// labelFileKinds sniffs the header of each large file for a MIME label.
func labelFileKinds(files []fileEntry) {
	for i := range files {
		kind, err := filetype.MatchFile(files[i].Path)
		if err != nil || kind == filetype.Unknown {
			continue
		}
		files[i].Kind = kind.MIME.Value
	}
}
