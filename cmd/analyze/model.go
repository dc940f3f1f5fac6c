package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

var spinnerFrames = spinner.MiniDot.Frames

// services bundles the long-lived collaborators the model hands to its
// background commands. All of them are safe for concurrent use.
type services struct {
	scanner       *scanner
	deduper       *scanDeduper
	store         *diskStore
	deleter       *deleter
	launcher      *launcher
	log           zerolog.Logger
	overviewSlots int
	maxBatchOpen  int
	diskFree      string
}

type viewMode int

const (
	modeOverview viewMode = iota
	modeDirectory
	modeLargeFiles
	modeDeleteConfirm
	modeDeleting
)

type model struct {
	svc   *services
	cache *resultCache
	keys  keyMap

	path               string
	history            []historyEntry
	entries            []dirEntry
	largeFiles         []fileEntry
	selected           int
	offset             int
	largeSelected      int
	largeOffset        int
	multiSelected      map[string]bool
	largeMultiSelected map[string]bool
	showLargeFiles     bool
	hasResult          bool

	status         string
	totalSize      int64
	totalFiles     int64
	lastTotalFiles int64
	scanning       bool
	spinner        int
	progress       *scanProgress
	bar            progress.Model
	width          int
	height         int

	isOverview          bool
	overviewTargets     []dirEntry
	overviewSizeCache   map[string]int64
	overviewScanning    bool
	overviewScanningSet map[string]bool
	overviewFresh       bool
	overviewGen         int
	overviewProgress    *scanProgress

	deleteConfirm bool
	deleteTarget  *dirEntry
	deletePaths   []string
	deleting      bool
	deleteCounter *atomic.Int64

	// ticking is set while a tick chain is running
	ticking bool
}

func newModel(path string, isOverview bool, svc *services, targets []dirEntry) model {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth*2))
	m := model{
		svc:                 svc,
		cache:               newResultCache(svc.store),
		keys:                defaultKeyMap(),
		path:                path,
		selected:            0,
		status:              "Preparing scan...",
		scanning:            !isOverview,
		isOverview:          isOverview,
		progress:            newScanProgress(),
		overviewProgress:    newScanProgress(),
		bar:                 bar,
		multiSelected:       make(map[string]bool),
		largeMultiSelected:  make(map[string]bool),
		overviewTargets:     cloneDirEntries(targets),
		overviewSizeCache:   make(map[string]int64),
		overviewScanningSet: make(map[string]bool),
		deleteCounter:       &atomic.Int64{},
	}
	if isOverview {
		m.path = "/"
		m.status = "Ready"
		m.hydrateOverviewEntries()
		if hasPendingOverviewEntries(m.entries) {
			m.status = "Scanning..."
		}
	} else if total, err := svc.store.peekTotalFiles(path); err == nil {
		m.lastTotalFiles = total
	}
	m.ticking = !isOverview || hasPendingOverviewEntries(m.entries)
	return m
}

func (m model) Init() tea.Cmd {
	var tick tea.Cmd
	if m.ticking {
		tick = tickCmd()
	}
	if m.isOverview {
		cmd := m.scheduleOverviewScans()
		if cmd == nil {
			return nil
		}
		return tea.Batch(cmd, tick)
	}
	return tea.Batch(m.scanCmd(m.path, false), tick)
}

func (m model) mode() viewMode {
	switch {
	case m.deleting:
		return modeDeleting
	case m.deleteConfirm:
		return modeDeleteConfirm
	case m.inOverviewMode():
		return modeOverview
	case m.showLargeFiles:
		return modeLargeFiles
	default:
		return modeDirectory
	}
}

func (m model) inOverviewMode() bool {
	return m.isOverview
}

// scanCmd loads path from the disk store or scans it. fresh skips the store.
func (m model) scanCmd(path string, fresh bool) tea.Cmd {
	svc, progress := m.svc, m.progress
	issued := m.cache.generation()
	return func() tea.Msg {
		if fresh {
			svc.deduper.Forget(path)
		} else {
			cached, err := svc.store.load(path)
			if err == nil {
				svc.log.Debug().Str("path", path).Msg("disk cache hit")
				return scanResultMsg{path: path, result: cached.result(), modTime: cached.ModTime, fromCache: true, issued: issued}
			}
			svc.log.Debug().Str("path", path).Err(err).Msg("disk cache miss")
		}

		// mtime is taken before the walk so concurrent changes invalidate the result
		var modTime time.Time
		if info, err := os.Stat(path); err == nil {
			modTime = info.ModTime()
		}
		result, _, err := svc.deduper.Scan(context.Background(), path, progress)
		return scanResultMsg{path: path, result: result, modTime: modTime, issued: issued, err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// startTick begins a tick chain unless one is already running.
func (m *model) startTick() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return tickCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampEntrySelection()
		m.clampLargeSelection()
		return m, nil
	case scanResultMsg:
		return m.applyScanResult(msg)
	case overviewSizeMsg:
		cmd := m.applyOverviewSize(msg)
		return m, cmd
	case deleteProgressMsg:
		return m.finishDelete(msg)
	case openResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Failed to open: %v", msg.err)
		}
		return m, nil
	case tickMsg:
		if m.deleting {
			m.status = fmt.Sprintf("Deleting... %s items", formatNumber(m.deleteCounter.Load()))
		}
		if m.scanning || m.deleting || (m.inOverviewMode() && (m.overviewScanning || len(m.overviewScanningSet) > 0)) {
			m.spinner = (m.spinner + 1) % len(spinnerFrames)
			return m, tickCmd()
		}
		m.ticking = false
		return m, nil
	default:
		return m, nil
	}
}

func (m model) applyScanResult(msg scanResultMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil && m.cache.invalidatedSince(msg.path, msg.issued) {
		// issued before a deletion or refresh touched this path; a newer scan
		// is already on its way
		m.svc.log.Debug().Str("path", msg.path).Msg("dropping outdated scan result")
		return m, nil
	}
	if msg.err == nil {
		m.cache.put(msg.path, msg.result, msg.modTime, !msg.fromCache)
		if msg.result.TotalSize > 0 {
			m.overviewSizeCache[msg.path] = msg.result.TotalSize
		}
	}
	if msg.path != m.path || m.inOverviewMode() {
		return m, nil
	}

	m.scanning = false
	if msg.err != nil {
		m.svc.log.Warn().Str("path", msg.path).Err(msg.err).Msg("scan failed")
		var cmd tea.Cmd
		if !m.hasResult {
			cmd = m.restorePrevious()
		}
		m.status = fmt.Sprintf("Scan failed: %v", msg.err)
		return m, cmd
	}

	m.applyResult(msg.result)
	if msg.fromCache {
		m.status = fmt.Sprintf("Cached view for %s", displayPath(m.path))
	} else {
		m.status = fmt.Sprintf("Scanned %s", humanizeBytes(m.totalSize))
	}
	return m, nil
}

// applyResult installs a copy of result as the current listing. Selections
// survive for paths that are still listed.
func (m *model) applyResult(result scanResult) {
	m.entries = m.entries[:0:0]
	for _, e := range result.Entries {
		if e.Size > 0 {
			m.entries = append(m.entries, e)
		}
	}
	m.largeFiles = cloneFileEntries(result.LargeFiles)
	m.totalSize = result.TotalSize
	m.totalFiles = result.TotalFiles
	m.hasResult = true

	present := make(map[string]bool, len(m.entries)+len(m.largeFiles))
	for _, e := range m.entries {
		present[e.Path] = true
	}
	for p := range m.multiSelected {
		if !present[p] {
			delete(m.multiSelected, p)
		}
	}
	clear(present)
	for _, f := range m.largeFiles {
		present[f.Path] = true
	}
	for p := range m.largeMultiSelected {
		if !present[p] {
			delete(m.largeMultiSelected, p)
		}
	}
	m.clampEntrySelection()
	m.clampLargeSelection()
}

// restorePrevious returns to the breadcrumb the failed navigation started from.
func (m *model) restorePrevious() tea.Cmd {
	if len(m.history) == 0 {
		return m.switchToOverviewMode()
	}
	last := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	if last.IsOverview {
		cmd := m.switchToOverviewMode()
		m.restoreOverviewCursor(last)
		return cmd
	}
	m.restoreSnapshot(last)
	return nil
}

// restoreOverviewCursor puts the cursor back on the target that was entered;
// the overview may have been re-sorted since.
func (m *model) restoreOverviewCursor(h historyEntry) {
	m.selected = h.Selected
	m.offset = h.EntryOffset
	if h.Selected >= 0 && h.Selected < len(h.Entries) {
		want := h.Entries[h.Selected].Path
		for i, e := range m.entries {
			if e.Path == want {
				m.selected = i
				break
			}
		}
	}
	m.clampEntrySelection()
}

func (m *model) restoreSnapshot(h historyEntry) {
	m.path = h.Path
	m.isOverview = false
	m.entries = cloneDirEntries(h.Entries)
	m.largeFiles = cloneFileEntries(h.LargeFiles)
	m.totalSize = h.TotalSize
	m.totalFiles = h.TotalFiles
	m.selected = h.Selected
	m.offset = h.EntryOffset
	m.largeSelected = h.LargeSelected
	m.largeOffset = h.LargeOffset
	m.multiSelected = cloneSelection(h.MultiSelected)
	m.largeMultiSelected = cloneSelection(h.LargeMulti)
	m.hasResult = true
	m.scanning = false
	m.clampEntrySelection()
	m.clampLargeSelection()
}

func snapshotFromModel(m model) historyEntry {
	return historyEntry{
		Path:          m.path,
		Entries:       cloneDirEntries(m.entries),
		LargeFiles:    cloneFileEntries(m.largeFiles),
		TotalSize:     m.totalSize,
		TotalFiles:    m.totalFiles,
		Selected:      m.selected,
		EntryOffset:   m.offset,
		LargeSelected: m.largeSelected,
		LargeOffset:   m.largeOffset,
		MultiSelected: cloneSelection(m.multiSelected),
		LargeMulti:    cloneSelection(m.largeMultiSelected),
		IsOverview:    m.isOverview,
	}
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode() {
	case modeDeleteConfirm:
		return m.updateDeleteConfirm(msg)
	case modeDeleting:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	keys := m.keys
	if m.scanning && !m.hasResult && !m.inOverviewMode() {
		// the listing on screen belongs to the parent until the scan lands
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Back):
			return m.goBack()
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Escape):
		if m.showLargeFiles {
			m.showLargeFiles = false
			return m, nil
		}
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, keys.Enter):
		if m.showLargeFiles {
			return m, nil
		}
		return m.enterSelectedDir()
	case key.Matches(msg, keys.Back):
		return m.goBack()
	case key.Matches(msg, keys.Refresh):
		return m.refresh()
	case key.Matches(msg, keys.ToggleLarge):
		if m.inOverviewMode() {
			return m, nil
		}
		m.showLargeFiles = !m.showLargeFiles
		if m.showLargeFiles {
			m.largeSelected = 0
			m.largeOffset = 0
			m.status = fmt.Sprintf("%d large files", len(m.largeFiles))
		} else {
			m.status = fmt.Sprintf("Showing %s", displayPath(m.path))
		}
		m.clampLargeSelection()
	case key.Matches(msg, keys.Select):
		m.toggleSelection()
	case key.Matches(msg, keys.Open):
		return m.launchSelection(launchOpen)
	case key.Matches(msg, keys.Reveal):
		return m.launchSelection(launchReveal)
	case key.Matches(msg, keys.Delete):
		m.beginDelete()
	}
	return m, nil
}

func (m *model) moveCursor(delta int) {
	if m.showLargeFiles {
		m.largeSelected += delta
		m.clampLargeSelection()
		return
	}
	m.selected += delta
	m.clampEntrySelection()
}

func (m model) enterSelectedDir() (tea.Model, tea.Cmd) {
	if len(m.entries) == 0 {
		return m, nil
	}
	selected := m.entries[m.selected]
	if !selected.IsDir {
		m.status = fmt.Sprintf("File: %s (%s)", selected.Name, humanizeBytes(selected.Size))
		return m, nil
	}

	m.history = append(m.history, snapshotFromModel(m))
	m.path = selected.Path
	m.isOverview = false
	m.showLargeFiles = false
	m.selected, m.offset = 0, 0
	m.largeSelected, m.largeOffset = 0, 0
	m.multiSelected = make(map[string]bool)
	m.largeMultiSelected = make(map[string]bool)

	if cached, ok := m.cache.get(m.path); ok {
		m.applyResult(cached.result())
		m.scanning = false
		m.status = fmt.Sprintf("Cached view for %s", displayPath(m.path))
		return m, nil
	}

	m.hasResult = false
	m.scanning = true
	m.status = "Scanning..."
	m.progress.reset()
	m.lastTotalFiles = 0
	if total, err := m.svc.store.peekTotalFiles(m.path); err == nil {
		m.lastTotalFiles = total
	}
	return m, tea.Batch(m.scanCmd(m.path, false), m.startTick())
}

func (m model) goBack() (tea.Model, tea.Cmd) {
	if m.showLargeFiles {
		m.showLargeFiles = false
		return m, nil
	}
	if len(m.history) == 0 {
		if m.inOverviewMode() {
			return m, nil
		}
		cmd := m.switchToOverviewMode()
		return m, cmd
	}

	last := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	m.multiSelected = make(map[string]bool)
	m.largeMultiSelected = make(map[string]bool)

	if last.IsOverview {
		cmd := m.switchToOverviewMode()
		m.restoreOverviewCursor(last)
		return m, cmd
	}

	if last.Dirty {
		m.path = last.Path
		m.isOverview = false
		m.selected = last.Selected
		m.offset = last.EntryOffset
		if cached, ok := m.cache.get(m.path); ok {
			m.applyResult(cached.result())
			m.status = fmt.Sprintf("Cached view for %s", displayPath(m.path))
			return m, nil
		}
		// keep the stale listing visible until the rescan lands
		m.entries = cloneDirEntries(last.Entries)
		m.largeFiles = cloneFileEntries(last.LargeFiles)
		m.hasResult = true
		m.scanning = true
		m.status = "Scanning..."
		m.progress.reset()
		m.lastTotalFiles = last.TotalFiles
		return m, tea.Batch(m.scanCmd(m.path, false), m.startTick())
	}

	m.restoreSnapshot(last)
	m.status = fmt.Sprintf("Cached view for %s", displayPath(m.path))
	return m, nil
}

func (m model) refresh() (tea.Model, tea.Cmd) {
	if m.inOverviewMode() {
		// measurements still in flight keep their slots; their results are
		// discarded by generation and the targets measured again
		m.overviewGen++
		m.overviewSizeCache = make(map[string]int64)
		m.overviewFresh = true
		m.overviewProgress.reset()
		for i := range m.entries {
			m.cache.invalidateLineage(m.entries[i].Path)
			m.svc.store.invalidateTree(m.entries[i].Path)
			m.entries[i].Size = -1
		}
		m.totalSize = 0
		m.status = "Refreshing..."
		cmd := m.scheduleOverviewScans()
		return m, tea.Batch(cmd, m.startTick())
	}

	m.cache.invalidate(m.path)
	m.scanning = true
	m.status = "Refreshing..."
	m.lastTotalFiles = m.totalFiles
	m.progress.reset()
	return m, tea.Batch(m.scanCmd(m.path, true), m.startTick())
}

func (m *model) toggleSelection() {
	if m.inOverviewMode() {
		return
	}
	if m.showLargeFiles {
		if len(m.largeFiles) == 0 {
			return
		}
		path := m.largeFiles[m.largeSelected].Path
		if m.largeMultiSelected[path] {
			delete(m.largeMultiSelected, path)
		} else {
			m.largeMultiSelected[path] = true
		}
	} else {
		if len(m.entries) == 0 {
			return
		}
		path := m.entries[m.selected].Path
		if m.multiSelected[path] {
			delete(m.multiSelected, path)
		} else {
			m.multiSelected[path] = true
		}
	}

	count, size := m.selectionSummary()
	if count == 0 {
		m.status = "Selection cleared"
		return
	}
	m.status = fmt.Sprintf("%d selected (%s)", count, humanizeBytes(size))
}

// activeSelection returns the selected paths of the visible list, sorted.
func (m model) activeSelection() []string {
	set := m.multiSelected
	if m.showLargeFiles {
		set = m.largeMultiSelected
	}
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (m model) selectionSummary() (int, int64) {
	var size int64
	count := 0
	if m.showLargeFiles {
		for _, f := range m.largeFiles {
			if m.largeMultiSelected[f.Path] {
				count++
				size += f.Size
			}
		}
		return count, size
	}
	for _, e := range m.entries {
		if m.multiSelected[e.Path] {
			count++
			size += max(e.Size, 0)
		}
	}
	return count, size
}

// cursorItem returns the entry under the cursor in the visible list.
func (m model) cursorItem() (dirEntry, bool) {
	if m.showLargeFiles {
		if len(m.largeFiles) == 0 {
			return dirEntry{}, false
		}
		f := m.largeFiles[m.largeSelected]
		return dirEntry{Name: f.Name, Path: f.Path, Size: f.Size}, true
	}
	if len(m.entries) == 0 {
		return dirEntry{}, false
	}
	return m.entries[m.selected], true
}

func (m model) launchSelection(mode launchMode) (tea.Model, tea.Cmd) {
	paths := m.activeSelection()
	if len(paths) == 0 {
		item, ok := m.cursorItem()
		if !ok {
			return m, nil
		}
		paths = []string{item.Path}
	}
	if len(paths) > m.svc.maxBatchOpen {
		m.status = fmt.Sprintf("Too many items to open at once (%d, limit %d)", len(paths), m.svc.maxBatchOpen)
		return m, nil
	}

	verb := "Opening"
	if mode == launchReveal {
		verb = "Showing in " + revealLabel
	}
	if len(paths) == 1 {
		m.status = fmt.Sprintf("%s %s...", verb, displayPath(paths[0]))
	} else {
		m.status = fmt.Sprintf("%s %d items...", verb, len(paths))
	}
	return m, launchCmd(m.svc.launcher, mode, paths)
}

func (m *model) beginDelete() {
	if m.inOverviewMode() {
		return
	}
	paths := m.activeSelection()
	if len(paths) == 0 {
		item, ok := m.cursorItem()
		if !ok {
			return
		}
		target := item
		m.deleteTarget = &target
		m.deletePaths = []string{item.Path}
		m.deleteConfirm = true
		return
	}

	count, size := m.selectionSummary()
	m.deleteTarget = &dirEntry{
		Name: fmt.Sprintf("%d items", count),
		Path: paths[0],
		Size: size,
	}
	m.deletePaths = paths
	m.deleteConfirm = true
}

func (m model) updateDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Confirm), key.Matches(msg, m.keys.Delete):
		if len(m.deletePaths) == 0 {
			m.deleteConfirm = false
			m.deleteTarget = nil
			return m, nil
		}
		paths := m.deletePaths
		m.deleteConfirm = false
		m.deleting = true
		m.deleteCounter.Store(0)
		if len(paths) == 1 {
			m.status = fmt.Sprintf("Deleting %s...", m.deleteTarget.Name)
		} else {
			m.status = fmt.Sprintf("Deleting %d items...", len(paths))
		}
		return m, tea.Batch(deletePathsCmd(m.svc.deleter, paths, m.deleteCounter), m.startTick())
	case key.Matches(msg, m.keys.Cancel):
		m.deleteConfirm = false
		m.deleteTarget = nil
		m.deletePaths = nil
		m.status = "Cancelled"
		return m, nil
	}
	return m, nil
}

func (m model) finishDelete(msg deleteProgressMsg) (tea.Model, tea.Cmd) {
	m.deleting = false
	m.deleteTarget = nil
	requested := len(m.deletePaths)
	m.deletePaths = nil
	m.multiSelected = make(map[string]bool)
	m.largeMultiSelected = make(map[string]bool)

	if len(msg.removed) == 0 {
		if msg.err != nil {
			m.status = fmt.Sprintf("Failed to delete: %v", msg.err)
		}
		return m, nil
	}

	for _, p := range msg.removed {
		m.removePathFromView(p)
		m.invalidateAfterDelete(p)
	}
	if msg.err != nil {
		m.status = fmt.Sprintf("Deleted %d of %d, failed: %v", len(msg.removed), requested, msg.err)
	} else if len(msg.removed) == 1 {
		m.status = fmt.Sprintf("Deleted %s items", formatNumber(msg.count))
	} else {
		m.status = fmt.Sprintf("Deleted %d items (%s files)", len(msg.removed), formatNumber(msg.count))
	}

	m.scanning = true
	m.progress.reset()
	m.lastTotalFiles = m.totalFiles
	return m, tea.Batch(m.scanCmd(m.path, true), m.startTick())
}

// removePathFromView drops path and anything beneath it from the visible
// lists and charges its size against the rows that contained it.
func (m *model) removePathFromView(path string) {
	removedSize := int64(-1)
	for i, e := range m.entries {
		if e.Path == path {
			removedSize = max(e.Size, 0)
			m.entries = append(m.entries[:i:i], m.entries[i+1:]...)
			break
		}
	}
	if removedSize < 0 {
		for _, f := range m.largeFiles {
			if f.Path == path {
				removedSize = f.Size
				break
			}
		}
	}

	kept := m.largeFiles[:0:0]
	for _, f := range m.largeFiles {
		if f.Path != path && !isAncestor(path, f.Path) {
			kept = append(kept, f)
		}
	}
	m.largeFiles = kept

	if removedSize > 0 {
		for i := range m.entries {
			if isAncestor(m.entries[i].Path, path) {
				m.entries[i].Size = max(m.entries[i].Size-removedSize, 0)
			}
		}
		m.totalSize = max(m.totalSize-removedSize, 0)
	}
	nonEmpty := m.entries[:0:0]
	for _, e := range m.entries {
		if e.Size > 0 {
			nonEmpty = append(nonEmpty, e)
		}
	}
	m.entries = nonEmpty

	delete(m.multiSelected, path)
	delete(m.largeMultiSelected, path)
	m.clampEntrySelection()
	m.clampLargeSelection()
}

// invalidateAfterDelete forgets cached results for path, its descendants and
// its ancestors, and marks affected breadcrumbs for rescan.
func (m *model) invalidateAfterDelete(path string) {
	m.cache.invalidateLineage(path)
	for p := range m.overviewSizeCache {
		if p == path || isAncestor(p, path) || isAncestor(path, p) {
			delete(m.overviewSizeCache, p)
		}
	}
	for i := range m.history {
		h := &m.history[i]
		if h.IsOverview || h.Path == path || isAncestor(h.Path, path) || isAncestor(path, h.Path) {
			h.Dirty = true
		}
	}
}

func calculateViewport(height int, largeFiles bool) int {
	if height <= 0 {
		return defaultViewport
	}
	reserved := viewportReservedRows
	if largeFiles {
		reserved++
	}
	return max(height-reserved, minViewport)
}

func (m *model) clampEntrySelection() {
	if len(m.entries) == 0 {
		m.selected = 0
		m.offset = 0
		return
	}
	viewport := calculateViewport(m.height, false)
	m.selected = min(max(m.selected, 0), len(m.entries)-1)
	maxOffset := max(len(m.entries)-viewport, 0)
	m.offset = min(max(m.offset, 0), maxOffset)
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+viewport {
		m.offset = m.selected - viewport + 1
	}
}

func (m *model) clampLargeSelection() {
	if len(m.largeFiles) == 0 {
		m.largeSelected = 0
		m.largeOffset = 0
		return
	}
	viewport := calculateViewport(m.height, true)
	m.largeSelected = min(max(m.largeSelected, 0), len(m.largeFiles)-1)
	maxOffset := max(len(m.largeFiles)-viewport, 0)
	m.largeOffset = min(max(m.largeOffset, 0), maxOffset)
	if m.largeSelected < m.largeOffset {
		m.largeOffset = m.largeSelected
	}
	if m.largeSelected >= m.largeOffset+viewport {
		m.largeOffset = m.largeSelected - viewport + 1
	}
}
