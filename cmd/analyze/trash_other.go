//go:build !darwin

package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// trashHome follows the freedesktop.org trash layout.
func trashHome() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "Trash"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "Trash"), nil
}

// reserveTrashName creates the .trashinfo record for name, picking a unique
// suffix when a previous item already uses it.
func reserveTrashName(infoDir, filesDir, name, original string) (string, string, error) {
	candidate := name
	for attempt := 0; attempt < 5; attempt++ {
		infoPath := filepath.Join(infoDir, candidate+".trashinfo")
		f, err := os.OpenFile(infoPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			if _, statErr := os.Lstat(filepath.Join(filesDir, candidate)); statErr == nil {
				f.Close()
				_ = os.Remove(infoPath)
			} else {
				_, err = fmt.Fprintf(f, "[Trash Info]\nPath=%s\nDeletionDate=%s\n",
					(&url.URL{Path: original}).EscapedPath(),
					time.Now().Format("2006-01-02T15:04:05"))
				closeErr := f.Close()
				if err == nil {
					err = closeErr
				}
				if err != nil {
					_ = os.Remove(infoPath)
					return "", "", err
				}
				return candidate, infoPath, nil
			}
		} else if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		candidate = fmt.Sprintf("%s.%s", name, uuid.NewString()[:8])
	}
	return "", "", fmt.Errorf("no free trash name for %s", name)
}

// trashLocation picks the trash directory for absPath and the Path= value
// recorded for it. Items on the home trash's filesystem go to the home trash
// with an absolute path; anything else goes to the trash at the top of its
// own filesystem with a path relative to that top directory.
func trashLocation(absPath, home string, devOf func(string) (uint64, error)) (string, string, error) {
	itemDev, err := devOf(filepath.Dir(absPath))
	if err != nil {
		return "", "", err
	}
	if homeDev, err := devOf(home); err == nil && homeDev == itemDev {
		return home, absPath, nil
	}

	top := filepath.Dir(absPath)
	for {
		parent := filepath.Dir(top)
		if parent == top {
			break
		}
		dev, err := devOf(parent)
		if err != nil || dev != itemDev {
			break
		}
		top = parent
	}
	rel, err := filepath.Rel(top, absPath)
	if err != nil {
		return "", "", err
	}
	return volumeTrashDir(top, os.Getuid()), rel, nil
}

// volumeTrashDir prefers an administrator-provided $top/.Trash (a real sticky
// directory) and falls back to $top/.Trash-$uid.
func volumeTrashDir(top string, uid int) string {
	shared := filepath.Join(top, ".Trash")
	if info, err := os.Lstat(shared); err == nil && info.IsDir() && info.Mode()&os.ModeSticky != 0 {
		return filepath.Join(shared, strconv.Itoa(uid))
	}
	return filepath.Join(top, fmt.Sprintf(".Trash-%d", uid))
}

// moveToTrash moves path into the freedesktop trash of its filesystem.
func moveToTrash(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if _, err := os.Lstat(absPath); err != nil {
		return err
	}

	home, err := trashHome()
	if err != nil {
		return fmt.Errorf("locate trash: %w", err)
	}
	if err := os.MkdirAll(home, 0o700); err != nil {
		return fmt.Errorf("create trash: %w", err)
	}
	trashDir, recorded, err := trashLocation(absPath, home, deviceOf)
	if err != nil {
		return fmt.Errorf("locate trash: %w", err)
	}

	filesDir := filepath.Join(trashDir, "files")
	infoDir := filepath.Join(trashDir, "info")
	for _, dir := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create trash: %w", err)
		}
	}

	name, infoPath, err := reserveTrashName(infoDir, filesDir, filepath.Base(absPath), recorded)
	if err != nil {
		return fmt.Errorf("failed to move to Trash: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- os.Rename(absPath, filepath.Join(filesDir, name))
	}()

	select {
	case err := <-done:
		if err != nil {
			_ = os.Remove(infoPath)
			return fmt.Errorf("failed to move to Trash: %w", err)
		}
		return nil
	case <-ctx.Done():
		return errTrashTimeout
	}
}
