package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

var errTrashTimeout = errors.New("timeout moving to Trash")

type trashFunc func(ctx context.Context, path string) error

// deleter moves paths to the system trash one at a time, deepest first.
type deleter struct {
	trash   trashFunc
	timeout time.Duration
	store   *diskStore
	log     zerolog.Logger
}

func newDeleter(timeout time.Duration, store *diskStore, log zerolog.Logger) *deleter {
	if timeout <= 0 {
		timeout = defaultTrashTimeout
	}
	return &deleter{trash: moveToTrash, timeout: timeout, store: store, log: log}
}

type deleteOutcome struct {
	count   int64
	removed []string
	err     error
}

// deleteError keeps every per-path failure of a batch.
type deleteError struct {
	errs []error
}

func (e *deleteError) Error() string {
	msgs := make([]string, 0, 3)
	for _, err := range e.errs[:min(3, len(e.errs))] {
		msgs = append(msgs, err.Error())
	}
	if len(e.errs) > 3 {
		msgs = append(msgs, fmt.Sprintf("and %d more", len(e.errs)-3))
	}
	return strings.Join(msgs, "; ")
}

func (e *deleteError) Unwrap() []error { return e.errs }

func deletePathsCmd(d *deleter, paths []string, counter *atomic.Int64) tea.Cmd {
	return func() tea.Msg {
		out := d.deletePaths(paths, counter)
		return deleteProgressMsg{
			done:    true,
			err:     out.err,
			count:   out.count,
			removed: out.removed,
		}
	}
}

// sortDeepestFirst orders paths by separator count, descending.
func sortDeepestFirst(paths []string) []string {
	sorted := append([]string(nil), paths...)
	sort.SliceStable(sorted, func(i, j int) bool {
		di := strings.Count(sorted[i], string(filepath.Separator))
		dj := strings.Count(sorted[j], string(filepath.Separator))
		if di != dj {
			return di > dj
		}
		return sorted[i] < sorted[j]
	})
	return sorted
}

func (d *deleter) deletePaths(paths []string, counter *atomic.Int64) deleteOutcome {
	var out deleteOutcome
	var errs []error

	for _, path := range sortDeepestFirst(paths) {
		count, err := d.trashPathWithProgress(path, counter)
		out.count += count
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			d.log.Warn().Str("path", path).Err(err).Msg("delete failed")
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		out.removed = append(out.removed, path)
		d.store.dropLineage(path)
	}

	if len(errs) > 0 {
		out.err = &deleteError{errs: errs}
	}
	d.log.Info().
		Int("requested", len(paths)).
		Int("removed", len(out.removed)).
		Int64("items", out.count).
		Msg("delete finished")
	return out
}

// trashPathWithProgress counts the items under root for display, then moves
// root to the trash within the configured timeout.
func (d *deleter) trashPathWithProgress(root string, counter *atomic.Int64) (int64, error) {
	// Lstat so broken symlinks still count as present.
	info, err := os.Lstat(root)
	if err != nil {
		return 0, err
	}

	var count int64
	if info.IsDir() {
		_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() {
				count++
				if counter != nil {
					counter.Add(1)
				}
			}
			return nil
		})
	} else {
		count = 1
		if counter != nil {
			counter.Add(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.trash(ctx, root); err != nil {
		if errors.Is(err, errTrashTimeout) {
			d.log.Error().Str("path", root).Dur("timeout", d.timeout).Msg("trash timed out")
		}
		return 0, err
	}
	return count, nil
}
