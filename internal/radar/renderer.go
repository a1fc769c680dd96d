// Package radar draws tracked devices on a circular ASCII radar, placing each
// one at its estimated distance from the sensor.
package radar

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"glass-radar.klederson.com/internal/config"
	"glass-radar.klederson.com/internal/fingerprint"
	"glass-radar.klederson.com/internal/tracker"
)

var (
	colorBright = lipgloss.Color("#00FF41")
	colorMid    = lipgloss.Color("#008F11")
	colorDim    = lipgloss.Color("#004A0A")

	tierColors = map[fingerprint.Tier]lipgloss.Color{
		fingerprint.TierHigh:   lipgloss.Color("#FF3333"),
		fingerprint.TierMedium: lipgloss.Color("#FFAA00"),
		fingerprint.TierLow:    lipgloss.Color("#33CCFF"),
	}

	styleCenter = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleRing   = lipgloss.NewStyle().Foreground(colorMid)
	styleDot    = lipgloss.NewStyle().Foreground(colorDim)
	styleLegend = lipgloss.NewStyle().Foreground(colorMid)
)

const maxLabelLen = 8

// Blip is one device on the radar.
type Blip struct {
	Label     string
	Meters    float64
	Bearing   float64
	Tier      fingerprint.Tier
	HasCamera bool
}

// BlipFor places a tracked device.
func BlipFor(e tracker.Entry, label string) Blip {
	if label == "" {
		label = e.Address.String()[9:]
	}
	if len(label) > maxLabelLen {
		label = label[:maxLabelLen]
	}
	return Blip{
		Label:     label,
		Meters:    Distance(e.RSSI),
		Bearing:   Bearing(e.Address),
		Tier:      e.Tier,
		HasCamera: e.HasCamera,
	}
}

// Symbol is '@' for devices with a camera and '*' otherwise.
func (b Blip) Symbol() byte {
	if b.HasCamera {
		return '@'
	}
	return '*'
}

type placed struct {
	blip     Blip
	col, row int
	labelCol int
	labelRow int
	label    string
}

type span struct{ start, end int }

// occupancy records used column spans per row.
type occupancy map[int][]span

func (o occupancy) free(row, start, end int) bool {
	for _, s := range o[row] {
		if start < s.end && end > s.start {
			return false
		}
	}
	return true
}

func (o occupancy) take(row, start, end int) {
	o[row] = append(o[row], span{start, end})
}

// Render produces the radar as a styled string of height lines.
func Render(width, height int, blips []Blip, sweep *Sweep) string {
	if width < 10 || height < 5 {
		return ""
	}

	g := grid{cx: width / 2, cy: height / 2}
	radius := math.Max(3, math.Min(float64(g.cx-1), float64(g.cy-1)/config.AspectRatio))

	rings := make([]float64, config.RingCount)
	for i := range rings {
		rings[i] = radius * float64(i+1) / float64(config.RingCount)
	}

	ps := place(g, radius, width, blips)
	symbols := make(map[[2]int]*placed, len(ps))
	labels := make(map[[2]int]byte)
	owners := make(map[[2]int]*placed)
	for i := range ps {
		p := &ps[i]
		symbols[[2]int{p.col, p.row}] = p
		for ci := 0; ci < len(p.label); ci++ {
			key := [2]int{p.labelCol + ci, p.labelRow}
			labels[key] = p.label[ci]
			owners[key] = p
		}
	}

	var sb strings.Builder
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			key := [2]int{col, row}
			dist, bearing := g.polar(col, row)
			lit := sweep.Intensity(bearing) > 0.5

			switch {
			case symbols[key] != nil:
				sb.WriteString(blipStyle(symbols[key].blip, lit).Render(string(symbols[key].blip.Symbol())))
			case owners[key] != nil:
				sb.WriteString(blipStyle(owners[key].blip, false).Faint(!lit).Render(string(labels[key])))
			default:
				sb.WriteString(background(g, col, row, dist, bearing, radius, rings, sweep))
			}
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// place computes blip cells and puts each label right of its symbol, or
// left near the edge, trying the row below and then above on collision.
// Labels that fit nowhere are dropped.
func place(g grid, radius float64, width int, blips []Blip) []placed {
	occ := occupancy{}
	out := make([]placed, 0, len(blips))

	for _, b := range blips {
		col, row := g.cell(metersToRadius(b.Meters, radius), b.Bearing)
		p := placed{blip: b, col: col, row: row, label: b.Label}

		lc := col + 2
		if lc+len(p.label) >= width {
			lc = col - len(p.label) - 1
		}
		if lc < 0 {
			lc = 0
		}
		p.labelCol = lc

		p.label = ""
		for _, lr := range []int{row, row + 1, row - 1} {
			if occ.free(lr, lc, lc+len(b.Label)) {
				p.label, p.labelRow = b.Label, lr
				break
			}
		}

		occ.take(row, col, col+1)
		if p.label != "" {
			occ.take(p.labelRow, lc, lc+len(p.label))
		}
		out = append(out, p)
	}
	return out
}

func blipStyle(b Blip, lit bool) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(tierColors[b.Tier])
	if lit || b.Tier == fingerprint.TierHigh {
		s = s.Bold(true)
	}
	return s
}

func background(g grid, col, row int, dist, bearing, radius float64, rings []float64, sweep *Sweep) string {
	if dist > radius+0.5 {
		return " "
	}
	if col == g.cx && row == g.cy {
		return styleCenter.Render("+")
	}

	glyph, style := '.', styleDot
	switch {
	case col == g.cx:
		glyph, style = '|', styleRing
	case row == g.cy:
		glyph, style = '-', styleRing
	default:
		for _, r := range rings {
			if math.Abs(dist-r) < 0.8 {
				glyph, style = ringChar(bearing), styleRing
				break
			}
		}
	}

	if c := sweepColor(sweep.Intensity(bearing)); c != "" {
		style = lipgloss.NewStyle().Foreground(c)
	}
	return style.Render(string(glyph))
}

func sweepColor(intensity float64) lipgloss.Color {
	switch {
	case intensity <= 0:
		return ""
	case intensity > 0.8:
		return "#00FF41"
	case intensity > 0.5:
		return "#00CC33"
	case intensity > 0.3:
		return "#00AA22"
	default:
		return "#005511"
	}
}

// RenderLegend produces the legend line centered in width.
func RenderLegend(width int) string {
	legend := styleLegend.Render("@ camera  * no camera  ") +
		lipgloss.NewStyle().Foreground(tierColors[fingerprint.TierHigh]).Render("HIGH ") +
		lipgloss.NewStyle().Foreground(tierColors[fingerprint.TierMedium]).Render("MEDIUM ") +
		lipgloss.NewStyle().Foreground(tierColors[fingerprint.TierLow]).Render("LOW") +
		styleLegend.Render("  rings "+ringLabel())

	pad := (width - lipgloss.Width(legend)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + legend
}

func ringLabel() string {
	return fmt.Sprintf("%gm apart", config.MaxRange/config.RingCount)
}
