package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"glass-radar.klederson.com/internal/config"
)

// RenderMenuBar renders the top menu bar.
func RenderMenuBar(width int, source string, alerting bool) string {
	title := fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion)

	keys := []struct{ key, label string }{
		{"↑↓", " select"},
		{"C", "lear log"},
		{"Q", "uit"},
	}

	var menu strings.Builder
	for _, k := range keys {
		menu.WriteString("  " + StyleMenuKey.Render("["+k.key+"]") + StyleMenuLabel.Render(k.label))
	}

	status := StyleStatusScanning.Render("SCANNING")
	if alerting {
		status = StyleStatusAlert.Render("GLASSES NEARBY")
	}

	left := StyleMenuKey.Render(title) + menu.String()
	right := status + "  " + StyleMenuLabel.Render("Source: "+source) + " "

	// Two columns go to the bar's horizontal padding.
	gap := max(0, width-2-lipgloss.Width(left)-lipgloss.Width(right))
	return StyleMenuBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
