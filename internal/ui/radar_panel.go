package ui

// RenderRadarPanel wraps radar content with a border that turns red while
// an alert is active.
func RenderRadarPanel(width, height int, radarContent, legend string, alerting bool) string {
	style := StylePanelBorder
	if alerting {
		style = StylePanelAlert
	}
	return style.Width(width - 2).Height(height - 2).Render(radarContent + "\n" + legend)
}
