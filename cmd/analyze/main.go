package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	debugMode bool
	noCache   bool
)

var rootCmd = &cobra.Command{
	Use:   "mo-analyze [path]",
	Short: "Explore disk usage interactively",
	Long: `Scan a directory and browse its children by size.

Without a path an overview of common locations (home, app library,
applications, system library and mounted volumes) is shown first.
Deletions go to the system Trash.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAnalyze,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/mole/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "write debug logs to the cache directory")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "ignore and do not write the on-disk scan cache")
	rootCmd.AddCommand(warmCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "analyzer error: %v\n", err)
		os.Exit(1)
	}
}

// resolveTarget picks the scan root: the argument, then MO_ANALYZE_PATH.
// An empty result means overview mode.
func resolveTarget(args []string) (string, error) {
	target := os.Getenv("MO_ANALYZE_PATH")
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	if target == "" {
		return "", nil
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("cannot resolve %q: %w", target, err)
	}
	return abs, nil
}

// setup loads configuration and wires the shared services. The returned
// cleanup releases the launcher pool and closes the log file.
func setup() (*Config, *services, func(), error) {
	cfg, err := loadConfig(viper.New(), cfgFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, logCloser, err := newLogger(cfg.Cache.Dir, cfg.Log.Level, debugMode)
	if err != nil {
		// logging is best effort; the UI still works without it
		log = zerolog.Nop()
	}

	var store *diskStore
	if !noCache {
		store, err = newDiskStore(afero.NewOsFs(), cfg.Cache.Dir, cfg.Cache.TTL, log)
		if err != nil {
			log.Warn().Err(err).Msg("disk cache unavailable")
			store = nil
		}
	}

	sc := newScanner(cfg.scanOptions(), log)
	l, err := newLauncher(cfg.Open.Timeout, log)
	if err != nil {
		closeQuietly(logCloser)
		return nil, nil, nil, err
	}

	svc := &services{
		scanner:       sc,
		deduper:       newScanDeduper(sc.scan, sc.measure),
		store:         store,
		deleter:       newDeleter(cfg.Delete.Timeout, store, log),
		launcher:      l,
		log:           log,
		overviewSlots: cfg.Overview.Concurrency,
		maxBatchOpen:  cfg.Open.MaxBatch,
	}
	cleanup := func() {
		l.release()
		closeQuietly(logCloser)
	}
	return cfg, svc, cleanup, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	target, err := resolveTarget(args)
	if err != nil {
		return err
	}

	_, svc, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	svc.diskFree = diskSummary("/")
	isOverview := target == ""
	svc.log.Info().Str("path", target).Bool("overview", isOverview).Msg("analyze started")

	targets := createOverviewEntries()
	ctx, cancel := context.WithTimeout(context.Background(), prefetchTimeout)
	defer cancel()
	go prefetchOverviewCache(ctx, svc, targets, nil)

	p := tea.NewProgram(newModel(target, isOverview, svc, targets), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
