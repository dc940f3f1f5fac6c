package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

func writeSizedFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// newTestServices wires real scanning with a trash that simply removes and a
// launcher that runs nothing.
func newTestServices(t *testing.T) *services {
	t.Helper()
	log := zerolog.Nop()
	sc := newScanner(scanOptions{Workers: 4, LargeFileMin: 1, LargeFileCount: 10}, log)

	d := newDeleter(time.Second, nil, log)
	d.trash = func(_ context.Context, path string) error {
		return os.RemoveAll(path)
	}

	l, err := newLauncher(time.Second, log)
	if err != nil {
		t.Fatalf("newLauncher() error = %v", err)
	}
	l.run = func(context.Context, string, ...string) error { return nil }
	t.Cleanup(l.release)

	return &services{
		scanner:       sc,
		deduper:       newScanDeduper(sc.scan, sc.measure),
		deleter:       d,
		launcher:      l,
		log:           log,
		overviewSlots: 2,
		maxBatchOpen:  defaultMaxBatchOpen,
	}
}

// runCmds executes cmd and every command it produces, feeding the messages
// back into the model. Ticks are dropped so the loop ends.
func runCmds(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 1000 {
			t.Fatal("command loop did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, tickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, nc := m.Update(msg)
			m = next.(model)
			queue = append(queue, nc)
		}
	}
	return m
}

func press(t *testing.T, m model, msg tea.KeyMsg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func runeKey(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}
