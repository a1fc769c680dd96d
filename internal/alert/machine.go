// Package alert turns accepted detections into a time-bounded blinking
// indicator whose rate encodes proximity.
package alert

import (
	"time"

	"glass-radar.klederson.com/internal/fingerprint"
)

// Bands are the RSSI thresholds (dBm) that select the blink rate.
type Bands struct {
	Close  int // at or above: strobe
	Medium int // at or above: fast, below: slow
}

// Band is the proximity class selected by the alert RSSI.
type Band uint8

const (
	BandSlow Band = iota
	BandFast
	BandStrobe
)

func (b Band) String() string {
	switch b {
	case BandStrobe:
		return "STROBE"
	case BandFast:
		return "FAST"
	default:
		return "SLOW"
	}
}

// Blink holds the three half-periods of the square wave.
type Blink struct {
	Strobe time.Duration
	Fast   time.Duration
	Slow   time.Duration
}

// State is the alert record set by the last accepted detection.
type State struct {
	Active    bool
	Start     time.Time
	RSSI      int
	Tier      fingerprint.Tier
	HasCamera bool
}

// Frame is what the indicator should show at one render tick.
type Frame struct {
	Alerting   bool
	On         bool
	HalfPeriod time.Duration
	Band       Band
	State      State
}

// Machine is the Idle/Alerting state machine. It has no timers; expiry is
// observed lazily by Tick. Not safe for concurrent use.
type Machine struct {
	duration time.Duration
	bands    Bands
	blink    Blink
	state    State
}

// NewMachine creates an idle machine.
func NewMachine(duration time.Duration, bands Bands, blink Blink) *Machine {
	return &Machine{duration: duration, bands: bands, blink: blink}
}

// Trigger starts (or restarts) the alert with the detection's parameters.
// The newest detection always wins.
func (m *Machine) Trigger(now time.Time, rssi int, tier fingerprint.Tier, hasCamera bool) {
	m.state = State{
		Active:    true,
		Start:     now,
		RSSI:      rssi,
		Tier:      tier,
		HasCamera: hasCamera,
	}
}

// Tick expires the alert once more than the alert duration has passed since
// it started, and returns the frame to render at now.
func (m *Machine) Tick(now time.Time) Frame {
	if m.state.Active && now.Sub(m.state.Start) > m.duration {
		m.state.Active = false
	}
	if !m.state.Active {
		return Frame{State: m.state}
	}

	band := m.Band(m.state.RSSI)
	half := m.blink.halfPeriod(band)
	return Frame{
		Alerting:   true,
		On:         squareWave(now, half),
		HalfPeriod: half,
		Band:       band,
		State:      m.state,
	}
}

// Active reports the alert flag as of the last Trigger or Tick.
func (m *Machine) Active() bool {
	return m.state.Active
}

// State returns a copy of the alert record.
func (m *Machine) State() State {
	return m.state
}

// Band maps signal strength onto the three proximity bands.
func (m *Machine) Band(rssi int) Band {
	switch {
	case rssi >= m.bands.Close:
		return BandStrobe
	case rssi >= m.bands.Medium:
		return BandFast
	default:
		return BandSlow
	}
}

// HalfPeriod is the configured blink half-period for rssi.
func (m *Machine) HalfPeriod(rssi int) time.Duration {
	return m.blink.halfPeriod(m.Band(rssi))
}

func (b Blink) halfPeriod(band Band) time.Duration {
	switch band {
	case BandStrobe:
		return b.Strobe
	case BandFast:
		return b.Fast
	default:
		return b.Slow
	}
}

// squareWave is on during even half-periods of wall-clock milliseconds.
func squareWave(now time.Time, half time.Duration) bool {
	ms := half.Milliseconds()
	if ms <= 0 {
		return true
	}
	return (now.UnixMilli()/ms)%2 == 0
}
