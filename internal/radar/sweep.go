package radar

import (
	"math"
	"time"

	"glass-radar.klederson.com/internal/config"
)

// Sweep is the rotating beam. Its angle is a pure function of elapsed time.
type Sweep struct {
	Angle float64 // radians [0, 2π)
	start time.Time
	trail float64
}

// NewSweep creates a sweep pointing north at start.
func NewSweep(start time.Time) *Sweep {
	return &Sweep{
		start: start,
		trail: config.SweepTrailDeg * math.Pi / 180,
	}
}

// Update moves the beam to its position at now.
func (s *Sweep) Update(now time.Time) {
	rps := float64(config.SweepSpeedRPM) / 60
	s.Angle = NormalizeAngle(now.Sub(s.start).Seconds() * rps * 2 * math.Pi)
}

// Degrees returns the beam angle in degrees.
func (s *Sweep) Degrees() float64 {
	return s.Angle * 180 / math.Pi
}

// Intensity is 1 under the beam, fading linearly to 0 at the end of the
// trail behind it.
func (s *Sweep) Intensity(bearing float64) float64 {
	behind := NormalizeAngle(s.Angle - bearing)
	if behind > s.trail {
		return 0
	}
	return 1 - behind/s.trail
}
