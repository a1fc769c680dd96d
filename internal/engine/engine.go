// Package engine ties the matcher, device tracker and alert machine into
// one detection pipeline shared by the scan callback and the renderer.
package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"glass-radar.klederson.com/internal/alert"
	"glass-radar.klederson.com/internal/bluetooth"
	"glass-radar.klederson.com/internal/detect"
	"glass-radar.klederson.com/internal/fingerprint"
	"glass-radar.klederson.com/internal/logging"
	"glass-radar.klederson.com/internal/tracker"
)

// Options configures the pipeline.
type Options struct {
	RSSIGate      int // advertisements weaker than this are ignored
	Tiers         detect.TierMask
	Cooldown      time.Duration
	Capacity      int
	AlertDuration time.Duration
	Bands         alert.Bands
	Blink         alert.Blink
}

// Detection is an accepted, non-suppressed classification.
type Detection struct {
	Advertisement bluetooth.Advertisement
	Result        detect.Result
	At            time.Time
}

// Status is a point-in-time view of the counters.
type Status struct {
	Uptime          time.Duration
	TotalScans      uint64
	TotalSeen       uint64
	TotalDetections uint64
	TrackedDevices  int
	AlertActive     bool
	Alert           alert.State
	Tiers           detect.TierMask
	RSSIThreshold   int
}

// Engine is safe for concurrent use. Process is called from the scanner's
// goroutine while Render runs on the render loop.
type Engine struct {
	matcher *detect.Matcher
	tracker *tracker.Tracker
	log     zerolog.Logger
	gate    int
	start   time.Time

	mu         sync.Mutex
	alert      *alert.Machine
	scans      uint64
	seen       uint64
	detections uint64
}

// New builds an engine over db. start is the reference for uptime and event
// timestamps.
func New(db *fingerprint.Database, opts Options, start time.Time, log zerolog.Logger) *Engine {
	return &Engine{
		matcher: detect.NewMatcher(db, opts.Tiers),
		tracker: tracker.New(opts.Capacity, opts.Cooldown),
		alert:   alert.NewMachine(opts.AlertDuration, opts.Bands, opts.Blink),
		log:     logging.Component(log, "engine"),
		gate:    opts.RSSIGate,
		start:   start,
	}
}

// Process runs one advertisement through the RSSI gate, the matcher and the
// cooldown check. On acceptance the device is recorded, the detection
// counter is incremented and the alert is (re)triggered.
func (e *Engine) Process(adv bluetooth.Advertisement, now time.Time) (Detection, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.seen++
	if adv.RSSI < e.gate {
		e.log.Trace().Str("mac", adv.Address.String()).Int("rssi", adv.RSSI).Msg("below RSSI gate")
		return Detection{}, false
	}

	result, ok := e.matcher.Classify(adv)
	if !ok {
		ev := e.log.Trace().Str("mac", adv.Address.String())
		if id, has := adv.CompanyID(); has {
			ev = ev.Str("company", bluetooth.LookupManufacturer(id))
		}
		ev.Msg("no fingerprint match")
		return Detection{}, false
	}

	if e.tracker.ShouldSuppress(adv.Address, now) {
		e.log.Debug().
			Str("mac", adv.Address.String()).
			Str("product", result.Product).
			Msg("suppressed by cooldown")
		return Detection{}, false
	}

	e.tracker.Record(adv.Address, now, adv.RSSI, result.Tier, result.HasCamera)
	e.detections++
	e.alert.Trigger(now, adv.RSSI, result.Tier, result.HasCamera)

	return Detection{Advertisement: adv, Result: result, At: now}, true
}

// Render advances the alert machine and returns the frame to display.
func (e *Engine) Render(now time.Time) alert.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alert.Tick(now)
}

// NoteScan counts a completed scan phase.
func (e *Engine) NoteScan() {
	e.mu.Lock()
	e.scans++
	e.mu.Unlock()
}

// Status snapshots the counters at now.
func (e *Engine) Status(now time.Time) Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.alert.Tick(now).State
	return Status{
		Uptime:          now.Sub(e.start),
		TotalScans:      e.scans,
		TotalSeen:       e.seen,
		TotalDetections: e.detections,
		TrackedDevices:  e.tracker.Len(),
		AlertActive:     st.Active,
		Alert:           st,
		Tiers:           e.matcher.Tiers(),
		RSSIThreshold:   e.gate,
	}
}

// Tracked returns the tracked devices, strongest first.
func (e *Engine) Tracked() []tracker.Entry {
	return e.tracker.Snapshot()
}

// Start returns the reference time passed to New.
func (e *Engine) Start() time.Time {
	return e.start
}

// Since converts t to milliseconds since start.
func (e *Engine) Since(t time.Time) int64 {
	return t.Sub(e.start).Milliseconds()
}
