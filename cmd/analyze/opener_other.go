//go:build !darwin

package main

import "path/filepath"

func openCommand(path string) (string, []string) {
	return "xdg-open", []string{path}
}

// xdg-open has no "select this item" mode, so reveal opens the parent folder.
func revealCommand(path string) (string, []string) {
	return "xdg-open", []string{filepath.Dir(path)}
}

const revealLabel = "file manager"
