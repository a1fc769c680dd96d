package ui

import (
	"github.com/charmbracelet/lipgloss"

	"glass-radar.klederson.com/internal/fingerprint"
)

// Matrix palette plus the indicator colors
var (
	ColorMatrixGreen = lipgloss.Color("#00FF41")
	ColorGreen       = lipgloss.Color("#00CC33")
	ColorMidGreen    = lipgloss.Color("#008F11")
	ColorDimGreen    = lipgloss.Color("#004A0A")
	ColorBorderNorm  = lipgloss.Color("#00AA22")
	ColorWarning     = lipgloss.Color("#FFAA00")

	ColorAlert    = lipgloss.Color("#FF1A1A")
	ColorAlertDim = lipgloss.Color("#4A0000")
	ColorIdle     = lipgloss.Color("#1F3A93") // dim blue "scanning"

	ColorTierHigh   = lipgloss.Color("#FF3333")
	ColorTierMedium = lipgloss.Color("#FFAA00")
	ColorTierLow    = lipgloss.Color("#33CCFF")
)

var (
	StyleMenuBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#002200")).
			Foreground(ColorMatrixGreen).
			Bold(true).
			Padding(0, 1)

	StyleMenuKey = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true)

	StyleMenuLabel = lipgloss.NewStyle().
			Foreground(ColorGreen)

	StyleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#002200")).
			Foreground(ColorGreen).
			Padding(0, 1)

	StyleStatusScanning = lipgloss.NewStyle().
				Foreground(ColorMatrixGreen).
				Bold(true)

	StyleStatusAlert = lipgloss.NewStyle().
				Foreground(ColorAlert).
				Bold(true)

	StylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderNorm)

	StylePanelAlert = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAlert)

	StylePanelTitle = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true).
			Padding(0, 1)

	StyleSeparator = lipgloss.NewStyle().
			Foreground(ColorMidGreen)

	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorMidGreen)

	StyleValue = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true)

	StyleDeviceMAC = lipgloss.NewStyle().
			Foreground(ColorMidGreen)

	StyleDeviceRSSI = lipgloss.NewStyle().
			Foreground(ColorGreen)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorDimGreen)

	StyleCursorLine = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(ColorMatrixGreen).
			Bold(true)

	StyleLampOn = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorAlert).
			Bold(true)

	StyleLampOff = lipgloss.NewStyle().
			Foreground(ColorAlert).
			Background(ColorAlertDim)

	StyleLampIdle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8FA8FF")).
			Background(ColorIdle)
)

// TierStyle colors text by detection tier.
func TierStyle(t fingerprint.Tier) lipgloss.Style {
	switch t {
	case fingerprint.TierHigh:
		return lipgloss.NewStyle().Foreground(ColorTierHigh).Bold(true)
	case fingerprint.TierMedium:
		return lipgloss.NewStyle().Foreground(ColorTierMedium)
	default:
		return lipgloss.NewStyle().Foreground(ColorTierLow)
	}
}

// proximityColor goes from red (close) through amber to green (far).
func proximityColor(rssi int) lipgloss.Color {
	switch {
	case rssi >= -55:
		return ColorAlert
	case rssi >= -65:
		return ColorWarning
	default:
		return ColorGreen
	}
}
