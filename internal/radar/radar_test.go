package radar

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glass-radar.klederson.com/internal/bluetooth"
	"glass-radar.klederson.com/internal/fingerprint"
	"glass-radar.klederson.com/internal/tracker"
)

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, 0, NormalizeAngle(2*math.Pi), 1e-9)
	assert.InDelta(t, 3*math.Pi/2, NormalizeAngle(-math.Pi/2), 1e-9)
	assert.InDelta(t, math.Pi, NormalizeAngle(5*math.Pi), 1e-9)
}

func TestBearing_StableAndInRange(t *testing.T) {
	a := bluetooth.MAC{0xCC, 0x66, 0x0A, 0x01, 0x02, 0x03}
	b := bluetooth.MAC{0xCC, 0x66, 0x0A, 0x01, 0x02, 0x04}

	assert.Equal(t, Bearing(a), Bearing(a))
	assert.NotEqual(t, Bearing(a), Bearing(b))
	for _, m := range []bluetooth.MAC{a, b, {}} {
		assert.GreaterOrEqual(t, Bearing(m), 0.0)
		assert.Less(t, Bearing(m), 2*math.Pi)
	}
}

func TestDistance_GrowsAsSignalWeakens(t *testing.T) {
	assert.Less(t, Distance(-50), Distance(-65))
	assert.Less(t, Distance(-65), Distance(-80))
	assert.InDelta(t, 1.0, Distance(-59), 1e-9)
}

func TestSweep(t *testing.T) {
	start := time.Unix(0, 0)
	s := NewSweep(start)

	s.Update(start.Add(500 * time.Millisecond)) // quarter turn at 30rpm
	assert.InDelta(t, 90, s.Degrees(), 1e-6)

	assert.InDelta(t, 1, s.Intensity(s.Angle), 1e-9)
	assert.InDelta(t, 0.5, s.Intensity(s.Angle-math.Pi/6), 1e-9)
	assert.Zero(t, s.Intensity(s.Angle+0.1), "ahead of the beam is dark")
}

func TestRingChar(t *testing.T) {
	assert.Equal(t, '-', ringChar(0))
	assert.Equal(t, '|', ringChar(math.Pi/2))
	assert.Equal(t, '/', ringChar(math.Pi/4))
	assert.Equal(t, '\\', ringChar(-math.Pi/4))
}

func TestBlipFor(t *testing.T) {
	e := tracker.Entry{
		Address:   bluetooth.MAC{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF},
		RSSI:      -59,
		Tier:      fingerprint.TierHigh,
		HasCamera: true,
	}

	b := BlipFor(e, "")
	assert.Equal(t, "DD:EE:FF", b.Label)
	assert.InDelta(t, 1.0, b.Meters, 1e-9)
	assert.Equal(t, byte('@'), b.Symbol())

	e.HasCamera = false
	b = BlipFor(e, "Ray-Ban Meta")
	assert.Equal(t, "Ray-Ban ", b.Label)
	assert.Equal(t, byte('*'), b.Symbol())
}

func TestPlace_LabelCollisionMovesOrDrops(t *testing.T) {
	g := grid{cx: 20, cy: 10}
	same := Blip{Label: "GLASSES", Meters: 0, Bearing: 0}

	ps := place(g, 10, 40, []Blip{same, same, same, same})
	require.Len(t, ps, 4)
	assert.Equal(t, 10, ps[0].labelRow)
	assert.Equal(t, 11, ps[1].labelRow)
	assert.Equal(t, 9, ps[2].labelRow)
	assert.Empty(t, ps[3].label, "no room left")
}

func TestRender_Shape(t *testing.T) {
	s := NewSweep(time.Unix(0, 0))
	blips := []Blip{{Label: "RB", Meters: 2, Bearing: math.Pi / 2, Tier: fingerprint.TierHigh, HasCamera: true}}

	out := ansi.Strip(Render(40, 15, blips, s))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 15)
	for _, l := range lines {
		assert.Len(t, []rune(l), 40)
	}
	assert.Contains(t, out, "@")
	assert.Contains(t, out, "RB")
	assert.Contains(t, out, "+")

	assert.Empty(t, Render(5, 3, blips, s))
	assert.Contains(t, ansi.Strip(RenderLegend(80)), "HIGH")
}
