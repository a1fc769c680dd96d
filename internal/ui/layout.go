package ui

import "github.com/charmbracelet/lipgloss"

// ComposeLayout puts the radar left of the side panels, with the menu bar on
// top and the status bar on the bottom.
func ComposeLayout(menuBar, radarPanel, alertPanel, trackedList, statusBar string) string {
	side := lipgloss.JoinVertical(lipgloss.Left, alertPanel, trackedList)
	middle := lipgloss.JoinHorizontal(lipgloss.Top, radarPanel, side)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar)
}
