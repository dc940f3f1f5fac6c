package main

import (
	"strings"
	"testing"
	"time"
)

func TestHumanizeBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{-1, "0 B"},
		{0, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KiB"},
		{5 << 30, "5.0 GiB"},
	}
	for _, tt := range tests {
		if got := humanizeBytes(tt.in); got != tt.want {
			t.Errorf("humanizeBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	if got := formatNumber(1234567); got != "1,234,567" {
		t.Errorf("formatNumber() = %q", got)
	}
}

func TestTrimAndPadName(t *testing.T) {
	long := strings.Repeat("x", 40)
	trimmed := trimName(long)
	if displayWidth(trimmed) > nameColumnWidth || !strings.HasSuffix(trimmed, "...") {
		t.Errorf("trimName() = %q", trimmed)
	}
	if got := trimName("short"); got != "short" {
		t.Errorf("trimName(short) = %q", got)
	}

	wide := strings.Repeat("文", 20)
	if w := displayWidth(trimName(wide)); w > nameColumnWidth {
		t.Errorf("wide name trimmed to width %d", w)
	}

	if got := padName("ab", 5); got != "ab   " {
		t.Errorf("padName() = %q", got)
	}
	if got := padName("文", 4); displayWidth(got) != 4 {
		t.Errorf("padName(wide) width = %d, want 4", displayWidth(got))
	}
}

func TestFormatUnusedSince(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	tests := []struct {
		age  time.Duration
		want string
	}{
		{30 * day, ""},
		{100 * day, ">3mo unused"},
		{400 * day, ">1yr unused"},
		{800 * day, ">2yr unused"},
	}
	for _, tt := range tests {
		if got := formatUnusedSince(now.Add(-tt.age), now); got != tt.want {
			t.Errorf("age %v: got %q, want %q", tt.age, got, tt.want)
		}
	}
	if got := formatUnusedSince(time.Time{}, now); got != "" {
		t.Errorf("zero time: got %q", got)
	}
}

func TestDisplayPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if got := displayPath(home + "/docs"); got != "~/docs" {
		t.Errorf("displayPath() = %q, want ~/docs", got)
	}
	if got := displayPath(home + "x/docs"); got != home+"x/docs" {
		t.Errorf("sibling path rewritten: %q", got)
	}
}

func TestShortenPath(t *testing.T) {
	p := "/very/long/path/that/keeps/going/and/going/forever/file.bin"
	got := shortenPath(p, 20)
	if displayWidth(got) > 20 || !strings.HasSuffix(got, "file.bin") || !strings.HasPrefix(got, "...") {
		t.Errorf("shortenPath() = %q", got)
	}
	if got := shortenPath("/short", 20); got != "/short" {
		t.Errorf("shortenPath(short) = %q", got)
	}
}

func TestColoredProgressBarWidth(t *testing.T) {
	for _, v := range []int64{0, 1, 50, 100} {
		bar := coloredProgressBar(v, 100, float64(v))
		if w := displayWidth(stripANSI(bar)); w != barWidth {
			t.Errorf("bar for %d has width %d, want %d", v, w, barWidth)
		}
	}
}

// stripANSI drops CSI sequences so widths can be compared.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
