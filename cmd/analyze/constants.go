package main

import "time"

const (
	defaultLargeFileCount = 20
	defaultLargeFileMin   = 100 << 20 // 100 MB
	barWidth              = 24
	defaultViewport       = 12
	viewportReservedRows  = 9
	minViewport           = 3
	overviewCacheTTL      = 7 * 24 * time.Hour
	overviewCacheFile     = "overview_sizes.json"
	scanTotalsFile        = "scan_totals.json"
	scanCutoffsFile       = "scan_cutoffs.json"
	diskCacheTTL          = 7 * 24 * time.Hour
	duTimeout             = 60 * time.Second
	defaultOverviewSlots  = 3   // concurrent overview probes
	batchUpdateSize       = 100 // flush local counters to the shared atomics every N items
	unusedThresholdDays   = 90
	tickInterval          = 80 * time.Millisecond
	prefetchTimeout       = 30 * time.Second

	minWorkers    = 8
	maxWorkers    = 64
	cpuMultiplier = 2

	defaultTrashTimeout = 30 * time.Second
	defaultOpenTimeout  = 10 * time.Second
	defaultMaxBatchOpen = 20
	launcherPoolSize    = 4
)

// Directories sized as a whole but never mined for large files.
var foldDirs = map[string]bool{
	".git": true,
	".svn": true,
	".hg":  true,

	"node_modules":     true,
	".npm":             true,
	".yarn":            true,
	".pnpm-store":      true,
	".next":            true,
	".nuxt":            true,
	".turbo":           true,
	".parcel-cache":    true,
	"bower_components": true,

	"__pycache__":   true,
	".pytest_cache": true,
	".mypy_cache":   true,
	".ruff_cache":   true,
	".venv":         true,
	"venv":          true,
	".tox":          true,
	"site-packages": true,

	"vendor":  true,
	"target":  true,
	".gradle": true,
	".m2":     true,
	".cargo":  true,
	".rustup": true,

	"build":    true,
	"dist":     true,
	"coverage": true,

	".idea":   true,
	".vscode": true,

	".cache":      true,
	"Caches":      true,
	".Trash":      true,
	"DerivedData": true,
	"Pods":        true,
	".docker":     true,
	".terraform":  true,
}

// Top-level entries skipped when the scan root is "/".
var skipSystemDirs = map[string]bool{
	"dev":                     true,
	"proc":                    true,
	"sys":                     true,
	"run":                     true,
	"tmp":                     true,
	"private":                 true,
	"cores":                   true,
	"net":                     true,
	"System":                  true,
	"sbin":                    true,
	"bin":                     true,
	"etc":                     true,
	"var":                     true,
	"lost+found":              true,
	".vol":                    true,
	".Spotlight-V100":         true,
	".fseventsd":              true,
	".DocumentRevisions-V100": true,
	".TemporaryItems":         true,
}

// Source and text files are never reported as large files.
var skipExtensions = map[string]bool{
	".go":    true,
	".js":    true,
	".ts":    true,
	".tsx":   true,
	".jsx":   true,
	".json":  true,
	".md":    true,
	".txt":   true,
	".yml":   true,
	".yaml":  true,
	".toml":  true,
	".xml":   true,
	".html":  true,
	".css":   true,
	".py":    true,
	".rb":    true,
	".java":  true,
	".kt":    true,
	".rs":    true,
	".swift": true,
	".c":     true,
	".cpp":   true,
	".h":     true,
	".hpp":   true,
	".sh":    true,
	".sql":   true,
	".lock":  true,
}
