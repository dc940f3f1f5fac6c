//go:build darwin

package main

func openCommand(path string) (string, []string) {
	return "open", []string{path}
}

func revealCommand(path string) (string, []string) {
	return "open", []string{"-R", path}
}

const revealLabel = "Finder"
