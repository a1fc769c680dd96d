package ui

import (
	"fmt"

	"glass-radar.klederson.com/internal/alert"
)

// RenderLamp draws the terminal stand-in for the indicator LED: dim blue
// while idle, a red lamp following the blink square wave while alerting.
func RenderLamp(f alert.Frame) string {
	if !f.Alerting {
		return StyleLampIdle.Render(" ( ) SCANNING ")
	}
	label := fmt.Sprintf(" %s %s %ddBm ", lampGlyph(f.On), f.Band, f.State.RSSI)
	if f.On {
		return StyleLampOn.Render(label)
	}
	return StyleLampOff.Render(label)
}

func lampGlyph(on bool) string {
	if on {
		return "(#)"
	}
	return "( )"
}
