package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glass-radar.klederson.com/internal/alert"
	"glass-radar.klederson.com/internal/bluetooth"
	"glass-radar.klederson.com/internal/config"
	"glass-radar.klederson.com/internal/engine"
	"glass-radar.klederson.com/internal/fingerprint"
	"glass-radar.klederson.com/internal/report"
)

// fakeScanner delivers one scripted batch per scan phase and cancels the
// run after the last one.
type fakeScanner struct {
	mu        sync.Mutex
	phases    [][]bluetooth.Advertisement
	scans     int
	cancel    context.CancelFunc
	enableErr error
	scanErr   error
}

func (s *fakeScanner) Enable() error { return s.enableErr }

func (s *fakeScanner) Scan(_ context.Context, _ time.Duration, h bluetooth.Handler) error {
	s.mu.Lock()
	i := s.scans
	s.scans++
	s.mu.Unlock()

	if i < len(s.phases) {
		for _, adv := range s.phases[i] {
			h(adv)
		}
	}
	if i+1 >= len(s.phases) {
		s.cancel()
	}
	return s.scanErr
}

func (s *fakeScanner) Clear() uint64 { return 0 }

type recordingSink struct {
	mu     sync.Mutex
	events []report.Event
	err    error
}

func (s *recordingSink) Emit(ev report.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *recordingSink) byKind(kind string) []report.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []report.Event
	for _, ev := range s.events {
		if ev.Kind() == kind {
			out = append(out, ev)
		}
	}
	return out
}

type recordingIndicator struct {
	mu     sync.Mutex
	frames []alert.Frame
}

func (r *recordingIndicator) Show(f alert.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return nil
}

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	db, err := fingerprint.Builtin()
	require.NoError(t, err)
	return engine.New(db, config.DefaultConfig().Engine(), time.Now(), zerolog.Nop())
}

func testLoopConfig() LoopConfig {
	return LoopConfig{
		ScanDuration:      time.Millisecond,
		StatusInterval:    0,
		HeartbeatInterval: time.Hour,
		RenderInterval:    time.Millisecond,
		Board:             "test",
		Version:           config.AppVersion,
	}
}

var rayBanAdv = bluetooth.Advertisement{
	Address:          bluetooth.MAC{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
	RSSI:             -60,
	ManufacturerData: []byte{0xAB, 0x01, 0x02, 0x15},
}

func TestLoop_ScanCyclesAndEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := testEngine(t)
	scanner := &fakeScanner{
		phases: [][]bluetooth.Advertisement{
			{rayBanAdv},
			{rayBanAdv}, // within cooldown
			{{Address: bluetooth.MAC{0x02, 0, 0, 0, 0, 9}, RSSI: -40, Name: "JBL Flip 6"}},
		},
		cancel: cancel,
	}
	sink := &recordingSink{}
	ind := &recordingIndicator{}

	loop := NewLoop(testLoopConfig(), eng, scanner, sink, ind, zerolog.Nop())
	require.NoError(t, loop.Run(ctx))

	assert.Equal(t, 3, scanner.scans)

	require.NotEmpty(t, sink.events)
	boot, ok := sink.events[0].(report.Boot)
	require.True(t, ok, "boot comes first")
	assert.Equal(t, "test", boot.Board)
	assert.Equal(t, config.AppVersion, boot.Version)
	assert.NotEmpty(t, boot.Session)

	detections := sink.byKind("detection")
	require.Len(t, detections, 1)
	d := detections[0].(report.Detection)
	assert.Equal(t, "Ray-Ban Meta", d.Product)
	assert.Equal(t, "0x01AB", d.CompanyID)

	statuses := sink.byKind("status")
	require.Len(t, statuses, 3)
	last := statuses[2].(report.Status)
	assert.Equal(t, uint64(3), last.TotalScans)
	assert.Equal(t, uint64(1), last.TotalDetections)
	assert.Equal(t, 1, last.TrackedDevices)
	assert.True(t, last.AlertActive)

	assert.Empty(t, sink.byKind("heartbeat"))

	ind.mu.Lock()
	defer ind.mu.Unlock()
	require.GreaterOrEqual(t, len(ind.frames), 7)
	for i := 0; i < 6; i++ {
		assert.Equal(t, i%2 == 0, ind.frames[i].On, "boot blink frame %d", i)
	}
	assert.Equal(t, alert.Frame{}, ind.frames[len(ind.frames)-1], "indicator off on exit")
}

func TestLoop_Heartbeat(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testLoopConfig()
	cfg.StatusInterval = time.Hour
	cfg.HeartbeatInterval = 0

	sink := &recordingSink{}
	scanner := &fakeScanner{phases: make([][]bluetooth.Advertisement, 2), cancel: cancel}
	require.NoError(t, NewLoop(cfg, testEngine(t), scanner, sink, nil, zerolog.Nop()).Run(ctx))

	assert.Len(t, sink.byKind("heartbeat"), 2)
	assert.Empty(t, sink.byKind("status"))
}

func TestLoop_EnableFailure(t *testing.T) {
	boom := errors.New("adapter missing")
	sink := &recordingSink{}
	scanner := &fakeScanner{enableErr: boom, cancel: func() {}}

	err := NewLoop(testLoopConfig(), testEngine(t), scanner, sink, nil, zerolog.Nop()).Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, sink.events)
	assert.Zero(t, scanner.scans)
}

func TestLoop_SinkErrorsDoNotStopTheLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{err: errors.New("disk full")}
	scanner := &fakeScanner{phases: [][]bluetooth.Advertisement{{rayBanAdv}, {}}, cancel: cancel}

	require.NoError(t, NewLoop(testLoopConfig(), testEngine(t), scanner, sink, nil, zerolog.Nop()).Run(ctx))
	assert.Equal(t, 2, scanner.scans)
	assert.Len(t, sink.byKind("detection"), 1)
}

func TestLoop_RepeatedScanErrorsLoggedOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testLoopConfig()
	cfg.RetryMax = time.Millisecond

	var buf bytes.Buffer
	scanner := &fakeScanner{
		phases:  make([][]bluetooth.Advertisement, 4),
		cancel:  cancel,
		scanErr: errors.New("adapter not powered"),
	}
	require.NoError(t, NewLoop(cfg, testEngine(t), scanner, &recordingSink{}, nil, zerolog.New(&buf)).Run(ctx))

	assert.Equal(t, 4, scanner.scans)
	assert.Equal(t, 1, strings.Count(buf.String(), `"message":"scan phase failed"`))
	assert.Equal(t, 3, strings.Count(buf.String(), `"message":"scan phase failed again"`))
}

func TestLoop_RetryDelay(t *testing.T) {
	l := &Loop{cfg: LoopConfig{Pause: 100 * time.Millisecond, RetryMax: 2 * time.Second}}
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, retryBase},
		{2, 2 * retryBase},
		{3, 4 * retryBase},
		{4, 2 * time.Second},
		{50, 2 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, l.retryDelay(tt.failures), "failures %d", tt.failures)
	}

	noBackoff := &Loop{cfg: LoopConfig{Pause: 100 * time.Millisecond}}
	assert.Equal(t, 100*time.Millisecond, noBackoff.retryDelay(5))
}
