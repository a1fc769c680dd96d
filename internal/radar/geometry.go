package radar

import (
	"crypto/sha256"
	"math"

	"glass-radar.klederson.com/internal/bluetooth"
	"glass-radar.klederson.com/internal/config"
)

// grid maps terminal cells to polar coordinates around a center cell,
// correcting for the tall aspect of terminal characters.
type grid struct {
	cx, cy int
}

// polar returns distance (in columns) and bearing (radians, 0=north,
// clockwise) of a cell.
func (g grid) polar(col, row int) (dist, bearing float64) {
	dx := float64(col - g.cx)
	dy := float64(row-g.cy) / config.AspectRatio
	return math.Hypot(dx, dy), NormalizeAngle(math.Atan2(dx, -dy))
}

// cell converts a polar position back to the nearest cell.
func (g grid) cell(radius, bearing float64) (col, row int) {
	col = g.cx + int(math.Round(radius*math.Sin(bearing)))
	row = g.cy - int(math.Round(radius*math.Cos(bearing)*config.AspectRatio))
	return col, row
}

// ringGlyphs are indexed by octant starting north.
var ringGlyphs = [8]rune{'-', '/', '|', '\\', '-', '/', '|', '\\'}

func ringChar(bearing float64) rune {
	octant := int(math.Round(NormalizeAngle(bearing)/(math.Pi/4))) % 8
	return ringGlyphs[octant]
}

// NormalizeAngle wraps an angle to [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Bearing gives every address a stable pseudo-direction. Received signal
// strength carries no direction, so the angle only spreads blips apart.
func Bearing(addr bluetooth.MAC) float64 {
	h := sha256.Sum256(addr[:])
	return float64(uint16(h[0])<<8|uint16(h[1])) / 65536 * 2 * math.Pi
}

// Distance estimates meters from RSSI with the log-distance path loss
// model.
func Distance(rssi int) float64 {
	return bluetooth.RSSIToDistance(float64(rssi), config.MeasuredPower, config.PathLossExp)
}

// metersToRadius scales meters onto the radar radius, clamping to the rim.
func metersToRadius(meters, radius float64) float64 {
	if meters > config.MaxRange {
		return radius
	}
	return meters / config.MaxRange * radius
}
