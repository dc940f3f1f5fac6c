package main

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
)

type launchMode int

const (
	launchOpen launchMode = iota
	launchReveal
)

// launcher runs open/reveal commands on a small goroutine pool so a burst of
// selections never forks more than a handful of processes at once.
type launcher struct {
	pool    *ants.Pool
	timeout time.Duration
	run     func(ctx context.Context, name string, args ...string) error
	log     zerolog.Logger
}

func newLauncher(timeout time.Duration, log zerolog.Logger) (*launcher, error) {
	pool, err := ants.NewPool(launcherPoolSize)
	if err != nil {
		return nil, fmt.Errorf("create launcher pool: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultOpenTimeout
	}
	return &launcher{pool: pool, timeout: timeout, run: runCommand, log: log}, nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (l *launcher) release() {
	if l != nil && l.pool != nil {
		l.pool.Release()
	}
}

// launch runs the command for every path and waits for all of them.
func (l *launcher) launch(mode launchMode, paths []string) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, path := range paths {
		name, args := openCommand(path)
		if mode == launchReveal {
			name, args = revealCommand(path)
		}
		wg.Add(1)
		task := func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
			defer cancel()
			if err := l.run(ctx, name, args...); err != nil {
				l.log.Debug().Str("path", path).Err(err).Msg("launch failed")
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}
		if err := l.pool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
	}
	wg.Wait()
	return errors.Join(errs...)
}

func launchCmd(l *launcher, mode launchMode, paths []string) tea.Cmd {
	return func() tea.Msg {
		err := l.launch(mode, paths)
		return openResultMsg{count: len(paths), err: err}
	}
}
