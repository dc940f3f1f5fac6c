package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

const nameColumnWidth = 28

func displayPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == home || isAncestor(home, path) {
		return "~" + strings.TrimPrefix(path, home)
	}
	return path
}

// shortenPath keeps the tail of p within width columns.
func shortenPath(p string, width int) string {
	if runewidth.StringWidth(p) <= width {
		return p
	}
	return "..." + runewidth.TruncateLeft(p, runewidth.StringWidth(p)-width+3, "")
}

func formatNumber(n int64) string {
	return humanize.Comma(n)
}

func humanizeBytes(size int64) string {
	if size < 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(size))
}

func coloredProgressBar(value, max int64, percent float64) string {
	if max <= 0 || value < 0 {
		return grayStyle.Render(strings.Repeat("░", barWidth))
	}

	filled := min(int((value*int64(barWidth))/max), barWidth)
	var filledPart strings.Builder
	for i := 0; i < filled; i++ {
		if i < filled-1 {
			filledPart.WriteString("█")
			continue
		}
		// last cell shows the remainder
		remainder := (value * int64(barWidth)) % max
		switch {
		case remainder > max/2:
			filledPart.WriteString("█")
		case remainder > max/4:
			filledPart.WriteString("▓")
		default:
			filledPart.WriteString("▒")
		}
	}
	return barStyle(percent).Render(filledPart.String()) +
		grayStyle.Render(strings.Repeat("░", barWidth-filled))
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// trimName shortens name to the name column, counting wide runes twice.
func trimName(name string) string {
	if runewidth.StringWidth(name) <= nameColumnWidth {
		return name
	}
	return runewidth.Truncate(name, nameColumnWidth, "...")
}

func padName(name string, targetWidth int) string {
	currentWidth := displayWidth(name)
	if currentWidth >= targetWidth {
		return name
	}
	return name + strings.Repeat(" ", targetWidth-currentWidth)
}

// formatUnusedTime labels entries not accessed for at least three months.
func formatUnusedTime(lastAccess time.Time) string {
	return formatUnusedSince(lastAccess, time.Now())
}

func formatUnusedSince(lastAccess, now time.Time) string {
	if lastAccess.IsZero() {
		return ""
	}
	days := int(now.Sub(lastAccess).Hours() / 24)
	if days < unusedThresholdDays {
		return ""
	}

	months := days / 30
	years := days / 365
	switch {
	case years >= 2:
		return fmt.Sprintf(">%dyr unused", years)
	case years >= 1:
		return ">1yr unused"
	case months >= 3:
		return fmt.Sprintf(">%dmo unused", months)
	}
	return ""
}
