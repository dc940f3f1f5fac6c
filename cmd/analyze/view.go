package main

import (
	"fmt"
	"strings"
)

func (m model) View() string {
	var b strings.Builder
	fmt.Fprintln(&b)

	if m.deleteConfirm && m.deleteTarget != nil {
		fmt.Fprintln(&b, confirmStyle.Render(fmt.Sprintf(
			"Delete: %s (%s)? Press Enter to confirm, ESC to cancel",
			m.deleteTarget.Name, humanizeBytes(m.deleteTarget.Size))))
		fmt.Fprintln(&b)
	}

	m.renderHeader(&b)

	if m.inOverviewMode() && hasPendingOverviewEntries(m.entries) {
		files, dirs, bytes := m.overviewProgress.snapshot()
		m.renderScanLine(&b, files, dirs, bytes, m.overviewProgress.currentPath())
	}
	if m.scanning && !m.inOverviewMode() {
		files, dirs, bytes := m.progress.snapshot()
		m.renderScanLine(&b, files, dirs, bytes, m.progress.currentPath())
		if m.lastTotalFiles > 0 {
			ratio := min(float64(files)/float64(m.lastTotalFiles), 1)
			fmt.Fprintf(&b, "%s\n", m.bar.ViewAs(ratio))
		}
		if !m.hasResult {
			return b.String()
		}
	}

	fmt.Fprintln(&b)
	switch {
	case m.showLargeFiles:
		m.renderLargeFiles(&b)
	case len(m.entries) == 0:
		fmt.Fprintln(&b, "  Empty directory")
	default:
		m.renderEntries(&b)
	}

	fmt.Fprintln(&b)
	if m.status != "" {
		fmt.Fprintf(&b, "  %s\n", m.status)
	}
	fmt.Fprintln(&b, grayStyle.Render(m.footer()))
	return b.String()
}

func (m model) renderHeader(b *strings.Builder) {
	if m.inOverviewMode() {
		fmt.Fprint(b, titleStyle.Render("Analyze Disk"))
		if m.svc.diskFree != "" {
			fmt.Fprintf(b, "  %s", grayStyle.Render(m.svc.diskFree))
		}
		fmt.Fprintln(b)
		fmt.Fprintln(b, grayStyle.Render("Select a location to explore:"))
		return
	}

	fmt.Fprintf(b, "%s  %s", titleStyle.Render("Analyze Disk"), grayStyle.Render(displayPath(m.path)))
	if !m.scanning || m.hasResult {
		fmt.Fprintf(b, "  |  Total: %s", humanizeBytes(m.totalSize))
		if m.totalFiles > 0 {
			fmt.Fprintf(b, "  |  %s files", formatNumber(m.totalFiles))
		}
	}
	fmt.Fprintln(b)
}

func (m model) renderScanLine(b *strings.Builder, files, dirs, bytes int64, current string) {
	fmt.Fprintf(b, "\n%s Scanning: %s, %s, %s\n",
		cursorStyle.Render(spinnerFrames[m.spinner%len(spinnerFrames)]),
		yellowStyle.Render(formatNumber(files)+" files"),
		yellowStyle.Render(formatNumber(dirs)+" dirs"),
		greenStyle.Render(humanizeBytes(bytes)))
	if current != "" {
		fmt.Fprintln(b, grayStyle.Render(shortenPath(displayPath(current), 60)))
	}
}

func (m model) rowPrefix(cursor, marked bool) string {
	mark := " "
	if marked {
		mark = checkStyle.Render("●")
	}
	if cursor {
		return fmt.Sprintf(" %s%s ", cursorStyle.Render("▶"), mark)
	}
	return fmt.Sprintf("  %s ", mark)
}

func (m model) renderEntries(b *strings.Builder) {
	maxSize := int64(1)
	for _, entry := range m.entries {
		maxSize = max(maxSize, entry.Size)
	}

	viewport := calculateViewport(m.height, false)
	start := max(m.offset, 0)
	end := min(start+viewport, len(m.entries))

	for idx := start; idx < end; idx++ {
		entry := m.entries[idx]
		icon := "📄"
		if entry.IsDir {
			icon = "📁"
		}

		var percent float64
		percentStr := "  --  "
		if m.totalSize > 0 && entry.Size >= 0 {
			percent = float64(entry.Size) / float64(m.totalSize) * 100
			percentStr = fmt.Sprintf("%5.1f%%", percent)
		}
		sizeText := "pending.."
		if entry.Size >= 0 {
			sizeText = humanizeBytes(entry.Size)
		}
		style := grayStyle
		if entry.Size >= 0 && m.totalSize > 0 {
			style = sizeStyle(percent)
		}

		bar := coloredProgressBar(max(entry.Size, 0), maxSize, percent)
		nameSegment := fmt.Sprintf("%s %s", icon, padName(trimName(entry.Name), nameColumnWidth))
		if idx == m.selected {
			nameSegment = boldStyle.Render(nameSegment)
		}
		prefix := m.rowPrefix(idx == m.selected, m.multiSelected[entry.Path])

		line := fmt.Sprintf("%s%2d. %s %s  |  %s %s",
			prefix, idx+1, bar, percentStr, nameSegment, style.Render(fmt.Sprintf("%10s", sizeText)))
		if label := formatUnusedTime(entry.LastAccess); label != "" {
			line += "  " + grayStyle.Render(label)
		}
		fmt.Fprintln(b, line)
	}
}

func (m model) renderLargeFiles(b *strings.Builder) {
	if len(m.largeFiles) == 0 {
		fmt.Fprintln(b, "  No large files found")
		return
	}

	maxSize := int64(1)
	for _, file := range m.largeFiles {
		maxSize = max(maxSize, file.Size)
	}

	viewport := calculateViewport(m.height, true)
	start := max(m.largeOffset, 0)
	end := min(start+viewport, len(m.largeFiles))

	for idx := start; idx < end; idx++ {
		file := m.largeFiles[idx]
		shortPath := displayPath(file.Path)
		if displayWidth(shortPath) > 56 {
			shortPath = shortenPath(shortPath, 56)
		}
		prefix := m.rowPrefix(idx == m.largeSelected, m.largeMultiSelected[file.Path])
		bar := coloredProgressBar(file.Size, maxSize, 0)
		line := fmt.Sprintf("%s%2d. %s  |  📄 %s %s",
			prefix, idx+1, bar, padName(shortPath, 56), grayStyle.Render(fmt.Sprintf("%10s", humanizeBytes(file.Size))))
		if file.Kind != "" {
			line += "  " + grayStyle.Render(file.Kind)
		}
		fmt.Fprintln(b, line)
	}
}

func (m model) footer() string {
	switch m.mode() {
	case modeDeleteConfirm:
		return "  Enter Confirm  |  Esc Cancel"
	case modeDeleting:
		return "  Deleting...  |  Ctrl+C Quit"
	case modeOverview:
		return "  ↑↓←→ Navigate  |  Enter Explore  |  O Open  |  F Reveal  |  R Refresh  |  Q Quit"
	case modeLargeFiles:
		return "  ↑↓ Navigate  |  Space Select  |  O Open  |  F Reveal  |  ⌫ Delete  |  T Back  |  Q Quit"
	}
	if n := len(m.largeFiles); n > 0 {
		return fmt.Sprintf("  ↑↓←→ Navigate  |  Space Select  |  O Open  |  F Reveal  |  ⌫ Delete  |  R Refresh  |  T Large(%d)  |  Q Quit", n)
	}
	return "  ↑↓←→ Navigate  |  Space Select  |  O Open  |  F Reveal  |  ⌫ Delete  |  R Refresh  |  Q Quit"
}
