package ui

import (
	"fmt"
	"strings"
	"time"

	"glass-radar.klederson.com/internal/bluetooth"
	"glass-radar.klederson.com/internal/radar"
	"glass-radar.klederson.com/internal/tracker"
)

// RenderTrackedList renders the tracker table, strongest first, keeping the
// cursor row in view. labels maps addresses to the product last detected.
func RenderTrackedList(entries []tracker.Entry, labels map[bluetooth.MAC]string, capacity, width, height, cursor int, now time.Time) string {
	innerW := max(10, width-4)
	innerH := max(3, height-2)

	header := []string{
		StylePanelTitle.Render(fmt.Sprintf("TRACKED [%d/%d]", len(entries), capacity)),
		StyleSeparator.Render(strings.Repeat("-", innerW)),
	}
	space := max(1, innerH-len(header))

	var body []string
	if len(entries) == 0 {
		body = append(body, StyleHelp.Render(" Nothing tracked yet"))
	} else {
		const linesPerEntry = 3
		visible := max(1, space/linesPerEntry)
		start := 0
		if cursor >= visible {
			start = cursor - visible + 1
		}
		for i := start; i < len(entries) && len(body) < space; i++ {
			body = append(body, renderEntry(entries[i], labels[entries[i].Address], innerW, i == cursor, now)...)
		}
	}
	if len(body) > space {
		body = body[:space]
	}
	for len(body) < space {
		body = append(body, "")
	}

	content := strings.Join(append(header, body...), "\n")
	rendered := StylePanelBorder.Width(width - 2).Height(innerH).Render(content)

	// lipgloss Height only pads; clamp overflow.
	out := strings.Split(rendered, "\n")
	if len(out) > height {
		out = out[:height]
	}
	return strings.Join(out, "\n")
}

func renderEntry(e tracker.Entry, label string, w int, isCursor bool, now time.Time) []string {
	if label == "" {
		label = "unknown"
	}
	symbol := "*"
	if e.HasCamera {
		symbol = "@"
	}

	cur := "  "
	if isCursor {
		cur = ">>"
	}

	raw1 := pad(fmt.Sprintf("%s %s %s", cur, symbol, label), w)
	raw2 := pad(fmt.Sprintf("     %s  %s", e.Address, e.Tier), w)
	raw3 := pad(fmt.Sprintf("     %ddBm  ~%.1fm  %s", e.RSSI, radar.Distance(e.RSSI), seenAgo(now.Sub(e.LastSeen))), w)

	if isCursor {
		return []string{StyleCursorLine.Render(raw1), StyleCursorLine.Render(raw2), StyleCursorLine.Render(raw3)}
	}
	return []string{
		TierStyle(e.Tier).Render(raw1),
		StyleDeviceMAC.Render(raw2),
		StyleDeviceRSSI.Render(raw3),
	}
}

func seenAgo(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	default:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
}

// pad pads or truncates s to exactly w runes.
func pad(s string, w int) string {
	s = truncate(s, w)
	if n := len([]rune(s)); n < w {
		s += strings.Repeat(" ", w-n)
	}
	return s
}
