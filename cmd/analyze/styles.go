package main

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)

	grayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	cyanStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	boldStyle   = lipgloss.NewStyle().Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)

	checkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)

	confirmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)
)

// sizeStyle colors a size by its share of the listing total.
func sizeStyle(percent float64) lipgloss.Style {
	switch {
	case percent >= 50:
		return redStyle
	case percent >= 20:
		return yellowStyle
	case percent >= 5:
		return cyanStyle
	default:
		return grayStyle
	}
}

func barStyle(percent float64) lipgloss.Style {
	if percent < 5 {
		return greenStyle
	}
	return sizeStyle(percent)
}
