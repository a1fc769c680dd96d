package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Counters is what the status bar shows.
type Counters struct {
	Uptime     time.Duration
	Scans      uint64
	Seen       uint64
	Detections uint64
	Tracked    int
	Capacity   int
	RSSIGate   int
	Tiers      string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, alerting bool, c Counters) string {
	status := StyleStatusScanning.Render("[SCANNING]")
	if alerting {
		status = StyleStatusAlert.Render("[ALERT]")
	}

	info := fmt.Sprintf(" Up: %s  Scans: %d  Adv: %d  Detections: %d  Tracked: %d/%d  Gate: %ddBm  Tiers: %s",
		c.Uptime.Truncate(time.Second), c.Scans, c.Seen, c.Detections, c.Tracked, c.Capacity, c.RSSIGate, c.Tiers)

	content := status + StyleStatusBar.Render(info)
	gap := max(0, width-2-lipgloss.Width(content))
	return StyleStatusBar.Width(width).Render(content + strings.Repeat(" ", gap))
}
