package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glass-radar.klederson.com/internal/fingerprint"
)

var (
	testBands = Bands{Close: -55, Medium: -65}
	testBlink = Blink{Strobe: 50 * time.Millisecond, Fast: 125 * time.Millisecond, Slow: 500 * time.Millisecond}
)

func newTestMachine() *Machine {
	return NewMachine(5*time.Second, testBands, testBlink)
}

func TestHalfPeriod_Bands(t *testing.T) {
	m := newTestMachine()
	tests := []struct {
		rssi int
		want time.Duration
	}{
		{rssi: -30, want: testBlink.Strobe},
		{rssi: -55, want: testBlink.Strobe},
		{rssi: -56, want: testBlink.Fast},
		{rssi: -65, want: testBlink.Fast},
		{rssi: -66, want: testBlink.Slow},
		{rssi: -90, want: testBlink.Slow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.HalfPeriod(tt.rssi), "rssi %d", tt.rssi)
	}
}

func TestTick_IdleByDefault(t *testing.T) {
	m := newTestMachine()
	f := m.Tick(time.UnixMilli(0))
	assert.False(t, f.Alerting)
	assert.False(t, f.On)
	assert.False(t, m.Active())
}

func TestTick_ExpiresAfterDuration(t *testing.T) {
	m := newTestMachine()
	start := time.UnixMilli(10_000)
	m.Trigger(start, -60, fingerprint.TierHigh, true)

	assert.True(t, m.Tick(start.Add(5*time.Second-time.Millisecond)).Alerting)
	assert.True(t, m.Tick(start.Add(5*time.Second)).Alerting, "expiry is strictly after the duration")
	assert.False(t, m.Tick(start.Add(5*time.Second+time.Millisecond)).Alerting)
	assert.False(t, m.Active())
}

func TestTrigger_RestartsAndOverwrites(t *testing.T) {
	m := newTestMachine()
	start := time.UnixMilli(0)
	m.Trigger(start, -80, fingerprint.TierMedium, false)

	later := start.Add(4 * time.Second)
	m.Trigger(later, -50, fingerprint.TierHigh, true)

	f := m.Tick(start.Add(6 * time.Second))
	require.True(t, f.Alerting, "timer restarted by second trigger")
	assert.Equal(t, testBlink.Strobe, f.HalfPeriod)
	assert.Equal(t, State{Active: true, Start: later, RSSI: -50, Tier: fingerprint.TierHigh, HasCamera: true}, f.State)

	assert.False(t, m.Tick(later.Add(5*time.Second+time.Millisecond)).Alerting)
}

func TestTick_SquareWave(t *testing.T) {
	m := newTestMachine()
	m.Trigger(time.UnixMilli(1_000), -70, fingerprint.TierHigh, true) // slow: 500ms

	tests := []struct {
		ms   int64
		want bool
	}{
		{ms: 1_000, want: true},  // 1000/500 = 2
		{ms: 1_499, want: true},  // 2
		{ms: 1_500, want: false}, // 3
		{ms: 1_999, want: false},
		{ms: 2_000, want: true}, // 4
	}
	for _, tt := range tests {
		f := m.Tick(time.UnixMilli(tt.ms))
		require.True(t, f.Alerting)
		assert.Equal(t, tt.want, f.On, "t=%dms", tt.ms)
	}
}

func TestTick_BlinkFollowsAlertRSSI(t *testing.T) {
	m := newTestMachine()
	now := time.UnixMilli(0)

	for _, tc := range []struct {
		rssi int
		want time.Duration
	}{{-50, testBlink.Strobe}, {-60, testBlink.Fast}, {-72, testBlink.Slow}} {
		m.Trigger(now, tc.rssi, fingerprint.TierHigh, true)
		assert.Equal(t, tc.want, m.Tick(now).HalfPeriod)
	}
}

func TestTick_BandIndependentOfBlinkTiming(t *testing.T) {
	slow := Blink{Strobe: 300 * time.Millisecond, Fast: 600 * time.Millisecond, Slow: time.Second}
	m := NewMachine(5*time.Second, testBands, slow)
	now := time.UnixMilli(0)

	for _, tc := range []struct {
		rssi int
		band Band
		half time.Duration
	}{{-50, BandStrobe, slow.Strobe}, {-60, BandFast, slow.Fast}, {-72, BandSlow, slow.Slow}} {
		m.Trigger(now, tc.rssi, fingerprint.TierHigh, true)
		f := m.Tick(now)
		assert.Equal(t, tc.band, f.Band, "rssi %d", tc.rssi)
		assert.Equal(t, tc.half, f.HalfPeriod, "rssi %d", tc.rssi)
	}
	assert.Equal(t, "STROBE", BandStrobe.String())
	assert.Equal(t, "FAST", BandFast.String())
	assert.Equal(t, "SLOW", BandSlow.String())
}

func TestSquareWave_ZeroHalfPeriodStaysOn(t *testing.T) {
	assert.True(t, squareWave(time.UnixMilli(123), 0))
}
