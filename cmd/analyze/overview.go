package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shirou/gopsutil/v4/disk"
)

var volumeRoots = []string{"/Volumes", "/media", "/run/media", "/mnt"}

// createOverviewEntries builds the fixed list of top-level probes. Home and
// the per-user library tree are listed separately.
func createOverviewEntries() []dirEntry {
	home := os.Getenv("HOME")
	entries := []dirEntry{}

	if home != "" {
		entries = append(entries, dirEntry{Name: "Home", Path: home, IsDir: true, Size: -1})
		if lib := firstExisting(filepath.Join(home, "Library"), filepath.Join(home, ".local", "share")); lib != "" {
			entries = append(entries, dirEntry{Name: "App Library", Path: lib, IsDir: true, Size: -1})
		}
	}
	if apps := firstExisting("/Applications", "/opt"); apps != "" {
		entries = append(entries, dirEntry{Name: "Applications", Path: apps, IsDir: true, Size: -1})
	}
	if lib := firstExisting("/Library", "/usr/lib"); lib != "" {
		entries = append(entries, dirEntry{Name: "System Library", Path: lib, IsDir: true, Size: -1})
	}

	mounts := externalMountpoints()
	for _, root := range volumeRoots {
		if hasUsefulVolumeMounts(root, mounts) {
			entries = append(entries, dirEntry{Name: "Volumes", Path: root, IsDir: true, Size: -1})
			break
		}
	}
	return entries
}

func firstExisting(paths ...string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p
		}
	}
	return ""
}

// externalMountpoints lists mounted filesystems other than "/".
func externalMountpoints() []string {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil
	}
	var mounts []string
	for _, p := range parts {
		if p.Mountpoint == "/" || p.Mountpoint == "" {
			continue
		}
		mounts = append(mounts, p.Mountpoint)
	}
	return mounts
}

// hasUsefulVolumeMounts reports whether root holds at least one real mount.
// Symlinks such as the synthetic "Macintosh HD" link do not count.
func hasUsefulVolumeMounts(root string, mounts []string) bool {
	for _, m := range mounts {
		if isAncestor(root, m) {
			return true
		}
	}
	if mounts != nil {
		return false
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		info, err := os.Lstat(filepath.Join(root, name))
		if err != nil || info.Mode()&fs.ModeSymlink != 0 {
			continue
		}
		if info.IsDir() {
			return true
		}
	}
	return false
}

// mountUsage reports the bytes used on the filesystem mounted at path.
func mountUsage(path string) (int64, bool) {
	usage, err := disk.Usage(path)
	if err != nil || usage == nil {
		return 0, false
	}
	return int64(usage.Used), true
}

// diskSummary renders "free of total" for the filesystem holding path.
func diskSummary(path string) string {
	usage, err := disk.Usage(path)
	if err != nil || usage == nil || usage.Total == 0 {
		return ""
	}
	return fmt.Sprintf("%s free of %s", humanizeBytes(int64(usage.Free)), humanizeBytes(int64(usage.Total)))
}

// measureOverviewSize sizes one overview target: stored snapshot first (unless
// fresh is set), then a logical walk, then du.
func measureOverviewSize(ctx context.Context, svc *services, path string, fresh bool, progress *scanProgress) (int64, error) {
	if path == "" {
		return 0, errEmptyPath
	}
	path = filepath.Clean(path)
	if !filepath.IsAbs(path) {
		return 0, fmt.Errorf("path must be absolute: %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("cannot access path: %w", err)
	}

	if fresh {
		_ = svc.store.forgetOverviewSize(path)
	} else if cached, err := svc.store.loadOverviewSize(path); err == nil && cached > 0 {
		return cached, nil
	}

	size, err := svc.deduper.Measure(ctx, path, progress)
	if err == nil {
		if size > 0 {
			_ = svc.store.storeOverviewSize(path, size)
		}
		return size, nil
	}
	if ctx.Err() != nil {
		return 0, err
	}

	if duSize, duErr := getDirectorySizeFromDu(ctx, path); duErr == nil && duSize > 0 {
		_ = svc.store.storeOverviewSize(path, duSize)
		return duSize, nil
	}
	return 0, err
}

func getDirectorySizeFromDu(parent context.Context, path string) (int64, error) {
	ctx, cancel := context.WithTimeout(parent, duTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "du", "-sk", path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, fmt.Errorf("du timeout after %v", duTimeout)
		}
		if stderr.Len() > 0 {
			return 0, fmt.Errorf("du failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
		}
		return 0, fmt.Errorf("du failed: %w", err)
	}
	fields := strings.Fields(stdout.String())
	if len(fields) == 0 {
		return 0, errors.New("du output empty")
	}
	kb, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse du output: %w", err)
	}
	return kb * 1024, nil
}

func scanOverviewPathCmd(svc *services, path string, fresh bool, progress *scanProgress, gen int) tea.Cmd {
	return func() tea.Msg {
		size, err := measureOverviewSize(context.Background(), svc, path, fresh, progress)
		if err != nil {
			svc.log.Warn().Str("path", path).Err(err).Msg("overview measure failed")
		}
		return overviewSizeMsg{Path: path, Size: size, Err: err, Gen: gen}
	}
}

// prefetchOverviewCache measures every target lacking a stored size so the
// first overview render already has numbers. report, if set, is called after
// each target.
func prefetchOverviewCache(ctx context.Context, svc *services, targets []dirEntry, report func(target dirEntry, size int64, err error)) {
	for _, target := range targets {
		if ctx.Err() != nil {
			return
		}
		if size, err := svc.store.loadOverviewSize(target.Path); err == nil {
			if report != nil {
				report(target, size, nil)
			}
			continue
		}
		size, err := measureOverviewSize(ctx, svc, target.Path, false, nil)
		if report != nil {
			report(target, size, err)
		}
	}
}

func (m *model) hydrateOverviewEntries() {
	m.entries = cloneDirEntries(m.overviewTargets)
	if m.overviewSizeCache == nil {
		m.overviewSizeCache = make(map[string]int64)
	}
	for i := range m.entries {
		m.entries[i].Size = -1
		if size, ok := m.overviewSizeCache[m.entries[i].Path]; ok {
			m.entries[i].Size = size
			continue
		}
		if size, err := m.svc.store.loadOverviewSize(m.entries[i].Path); err == nil {
			m.entries[i].Size = size
			m.overviewSizeCache[m.entries[i].Path] = size
		}
	}
	m.totalSize = sumKnownEntrySizes(m.entries)
	if !hasPendingOverviewEntries(m.entries) {
		m.sortOverviewEntriesBySize()
	}
}

func (m *model) sortOverviewEntriesBySize() {
	sort.SliceStable(m.entries, func(i, j int) bool {
		return m.entries[i].Size > m.entries[j].Size
	})
}

// scheduleOverviewScans starts probes for pending targets until the
// concurrency ceiling is reached.
func (m *model) scheduleOverviewScans() tea.Cmd {
	if !m.inOverviewMode() {
		return nil
	}
	if m.overviewScanningSet == nil {
		m.overviewScanningSet = make(map[string]bool)
	}

	slots := m.svc.overviewSlots - len(m.overviewScanningSet)
	var pending []int
	for i, entry := range m.entries {
		if len(pending) >= slots {
			break
		}
		if entry.Size < 0 && !m.overviewScanningSet[entry.Path] {
			pending = append(pending, i)
		}
	}

	if len(pending) == 0 {
		if len(m.overviewScanningSet) > 0 {
			return nil
		}
		m.overviewScanning = false
		if !hasPendingOverviewEntries(m.entries) {
			m.sortOverviewEntriesBySize()
			m.overviewFresh = false
			m.status = "Ready"
		}
		return nil
	}

	cmds := make([]tea.Cmd, 0, len(pending))
	for _, idx := range pending {
		entry := m.entries[idx]
		m.overviewScanningSet[entry.Path] = true
		cmds = append(cmds, scanOverviewPathCmd(m.svc, entry.Path, m.overviewFresh, m.overviewProgress, m.overviewGen))
	}

	m.overviewScanning = true
	remaining := 0
	for _, e := range m.entries {
		if e.Size < 0 {
			remaining++
		}
	}
	if len(m.overviewScanningSet) == 1 {
		m.status = fmt.Sprintf("Scanning %s... (%d left)", m.entries[pending[0]].Name, remaining)
	} else {
		m.status = fmt.Sprintf("Scanning %d directories... (%d left)", len(m.overviewScanningSet), remaining)
	}
	return tea.Batch(cmds...)
}

func (m *model) applyOverviewSize(msg overviewSizeMsg) tea.Cmd {
	delete(m.overviewScanningSet, msg.Path)
	if msg.Gen != m.overviewGen {
		// measured before a refresh; the target is measured again
		return m.scheduleOverviewScans()
	}
	if msg.Err == nil {
		m.overviewSizeCache[msg.Path] = msg.Size
	}
	if !m.inOverviewMode() {
		return nil
	}

	for i := range m.entries {
		if m.entries[i].Path == msg.Path {
			if msg.Err == nil {
				m.entries[i].Size = msg.Size
			} else {
				m.entries[i].Size = 0
			}
			break
		}
	}
	m.totalSize = sumKnownEntrySizes(m.entries)

	cmd := m.scheduleOverviewScans()
	if msg.Err != nil {
		m.status = fmt.Sprintf("Unable to measure %s: %v", displayPath(msg.Path), msg.Err)
	}
	return cmd
}

func (m *model) switchToOverviewMode() tea.Cmd {
	m.isOverview = true
	m.path = "/"
	m.scanning = false
	m.showLargeFiles = false
	m.largeFiles = nil
	m.largeSelected = 0
	m.largeOffset = 0
	m.deleteConfirm = false
	m.deleteTarget = nil
	m.selected = 0
	m.offset = 0
	m.multiSelected = make(map[string]bool)
	m.largeMultiSelected = make(map[string]bool)
	m.hydrateOverviewEntries()
	cmd := m.scheduleOverviewScans()
	if cmd == nil {
		if !m.overviewScanning {
			m.status = "Ready"
		}
		return nil
	}
	return tea.Batch(cmd, m.startTick())
}

// sumKnownEntrySizes adds up measured entries. An entry nested inside another
// listed entry (App Library under Home) is already part of its parent.
func sumKnownEntrySizes(entries []dirEntry) int64 {
	var total int64
	for i, entry := range entries {
		if entry.Size <= 0 || nestedInOther(entries, i) {
			continue
		}
		total += entry.Size
	}
	return total
}

func nestedInOther(entries []dirEntry, i int) bool {
	for j, other := range entries {
		if j != i && other.Path != "" && isAncestor(other.Path, entries[i].Path) {
			return true
		}
	}
	return false
}

func hasPendingOverviewEntries(entries []dirEntry) bool {
	for _, entry := range entries {
		if entry.Size < 0 {
			return true
		}
	}
	return false
}
