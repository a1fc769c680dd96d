package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"glass-radar.klederson.com/internal/alert"
	"glass-radar.klederson.com/internal/radar"
	"glass-radar.klederson.com/internal/report"
)

// RenderAlertPanel shows the lamp, the latest detection and a short log of
// earlier ones. log is in chronological order.
func RenderAlertPanel(f alert.Frame, log []report.Detection, width, height int) string {
	innerW := max(20, width-4)

	lines := []string{
		StylePanelTitle.Render("ALERT") + "  " + RenderLamp(f),
		StyleSeparator.Render(strings.Repeat("-", innerW)),
	}

	if len(log) == 0 {
		lines = append(lines, "", StyleHelp.Render(" No glasses detected yet"))
	} else {
		last := log[len(log)-1]
		camera := "no"
		if last.HasCamera {
			camera = "YES"
		}
		fields := []struct{ label, value string }{
			{"Product", last.Product},
			{"Company", last.Company},
			{"MAC", last.MAC},
			{"Tier", fmt.Sprintf("%s  camera: %s", last.Tier, camera)},
			{"Distance", fmt.Sprintf("~%.1fm", radar.Distance(last.RSSI))},
		}
		for _, fl := range fields {
			lines = append(lines, StyleLabel.Render(fmt.Sprintf("  %-9s", fl.label))+StyleValue.Render(truncate(fl.value, innerW-11)))
		}
		lines = append(lines, StyleHelp.Render("  "+truncate(last.Reason, innerW-2)))

		barW := max(10, innerW-20)
		lines = append(lines, StyleLabel.Render("  Signal   ")+renderSignalBar(last.RSSI, barW)+
			StyleValue.Render(fmt.Sprintf(" %ddBm", last.RSSI)))

		if len(log) > 1 {
			rssi := make([]int, len(log))
			for i, d := range log {
				rssi[i] = d.RSSI
			}
			lines = append(lines, StyleLabel.Render("  History  ")+
				lipgloss.NewStyle().Foreground(ColorGreen).Render(renderSparkline(rssi, innerW-11)))
		}

		lines = append(lines, "")
		for i := len(log) - 1; i >= 0 && len(lines) < height-2; i-- {
			d := log[i]
			entry := fmt.Sprintf("  %6.1fs %-6s %s", float64(d.TS)/1000, d.Tier, d.Product)
			lines = append(lines, TierStyle(d.Tier).Render(truncate(entry, innerW)))
		}
	}

	if len(lines) > height-2 {
		lines = lines[:max(0, height-2)]
	}
	style := StylePanelBorder
	if f.Alerting {
		style = StylePanelAlert
	}
	return style.Width(width - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}

// renderSignalBar maps -100..-30 dBm onto width cells.
func renderSignalBar(rssi, width int) string {
	ratio := math.Min(1, math.Max(0, float64(rssi+100)/70))
	filled := int(math.Round(ratio * float64(width)))

	full := lipgloss.NewStyle().Foreground(proximityColor(rssi)).Render(strings.Repeat("|", filled))
	empty := lipgloss.NewStyle().Foreground(ColorDimGreen).Render(strings.Repeat("-", width-filled))
	return StyleHelp.Render("[") + full + empty + StyleHelp.Render("]")
}

// renderSparkline plots the last width values scaled to their own range.
func renderSparkline(values []int, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []byte{'_', '.', '-', '~', '^'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := max(1, hi-lo)

	out := make([]byte, len(values))
	for i, v := range values {
		out[i] = chars[(v-lo)*(len(chars)-1)/span]
	}
	return string(out)
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if r := []rune(s); len(r) > w {
		return string(r[:w])
	}
	return s
}
