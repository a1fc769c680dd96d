// Package app runs the scan cycle and hosts the terminal monitor.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"glass-radar.klederson.com/internal/alert"
	"glass-radar.klederson.com/internal/bluetooth"
	"glass-radar.klederson.com/internal/engine"
	"glass-radar.klederson.com/internal/logging"
	"glass-radar.klederson.com/internal/report"
)

// Scanner is a radio that can run timed scan phases.
type Scanner interface {
	Enable() error
	// Scan blocks for d (or until ctx is done) delivering results to h.
	Scan(ctx context.Context, d time.Duration, h bluetooth.Handler) error
	// Clear drops the per-phase results and returns how many there were.
	Clear() uint64
}

// retryBase is the first wait after a failed scan phase when Pause is shorter.
const retryBase = 250 * time.Millisecond

// LoopConfig holds the cycle timing.
type LoopConfig struct {
	ScanDuration      time.Duration
	Pause             time.Duration
	StatusInterval    time.Duration
	HeartbeatInterval time.Duration
	RenderInterval    time.Duration
	BootPulse         time.Duration
	RetryMax          time.Duration // cap of the wait after failed scan phases
	Board             string
	Version           string
}

// Loop is the cooperative main loop: scan, clear, report, pause, repeat.
// The indicator is refreshed on its own ticker so blinking never waits for
// a scan phase to end.
type Loop struct {
	cfg       LoopConfig
	engine    *engine.Engine
	scanner   Scanner
	sink      report.Sink
	indicator alert.Indicator
	log       zerolog.Logger

	now     func() time.Time
	freeMem func(context.Context) uint64
}

// NewLoop wires a loop.
func NewLoop(cfg LoopConfig, eng *engine.Engine, scanner Scanner, sink report.Sink, ind alert.Indicator, log zerolog.Logger) *Loop {
	if ind == nil {
		ind = alert.Nop{}
	}
	return &Loop{
		cfg:       cfg,
		engine:    eng,
		scanner:   scanner,
		sink:      sink,
		indicator: ind,
		log:       logging.Component(log, "loop"),
		now:       time.Now,
		freeMem:   report.FreeMemory,
	}
}

// Run enables the scanner and cycles until ctx is done. It returns an error
// only when the scanner cannot be enabled.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.scanner.Enable(); err != nil {
		return err
	}

	session := uuid.NewString()
	l.emit(report.NewBoot(l.cfg.Board, l.cfg.Version, session))
	l.log.Info().Str("session", session).Str("board", l.cfg.Board).Msg("sensor started")

	if err := alert.BootBlink(l.indicator, l.cfg.BootPulse); err != nil {
		l.log.Warn().Err(err).Msg("boot blink failed")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.render(ctx)
	}()
	defer wg.Wait()

	lastStatus, lastHeartbeat := l.now(), l.now()
	failures := 0
	for ctx.Err() == nil {
		if err := l.scanner.Scan(ctx, l.cfg.ScanDuration, l.handle); err != nil {
			if failures == 0 {
				l.log.Error().Err(err).Msg("scan phase failed")
			} else {
				l.log.Debug().Err(err).Int("failures", failures+1).Msg("scan phase failed again")
			}
			failures++
		} else if failures > 0 {
			l.log.Info().Int("failures", failures).Msg("scanning recovered")
			failures = 0
		}
		l.engine.NoteScan()
		n := l.scanner.Clear()
		l.log.Debug().Uint64("results", n).Msg("scan phase done")

		now := l.now()
		if now.Sub(lastStatus) >= l.cfg.StatusInterval {
			l.emit(report.NewStatus(l.cfg.Board, l.engine.Status(now), l.freeMem(ctx)))
			lastStatus = now
		}
		if now.Sub(lastHeartbeat) >= l.cfg.HeartbeatInterval {
			l.emit(report.NewHeartbeat(l.engine.Status(now), l.freeMem(ctx)))
			lastHeartbeat = now
		}

		select {
		case <-ctx.Done():
		case <-time.After(l.retryDelay(failures)):
		}
	}
	return nil
}

// retryDelay is the pause before the next scan phase. It doubles with each
// consecutive failure, up to RetryMax.
func (l *Loop) retryDelay(failures int) time.Duration {
	if failures == 0 || l.cfg.RetryMax <= l.cfg.Pause {
		return l.cfg.Pause
	}
	delay := max(l.cfg.Pause, retryBase)
	for i := 1; i < failures && delay < l.cfg.RetryMax; i++ {
		delay *= 2
	}
	return min(delay, l.cfg.RetryMax)
}

// handle runs on the scanner's goroutine.
func (l *Loop) handle(adv bluetooth.Advertisement) {
	now := l.now()
	d, ok := l.engine.Process(adv, now)
	if !ok {
		return
	}
	l.log.Info().
		Str("mac", adv.Address.String()).
		Str("product", d.Result.Product).
		Str("tier", d.Result.Tier.String()).
		Int("rssi", adv.RSSI).
		Str("method", d.Result.Method.String()).
		Msg("glasses detected")
	l.emit(report.NewDetection(d, l.engine.Since(now)))
}

func (l *Loop) render(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.RenderInterval)
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-ctx.Done():
			if err := l.indicator.Show(alert.Frame{}); err != nil {
				l.log.Warn().Err(err).Msg("indicator off failed")
			}
			return
		case <-ticker.C:
			err := l.indicator.Show(l.engine.Render(l.now()))
			if err != nil && !failing {
				l.log.Warn().Err(err).Msg("indicator update failed")
			}
			failing = err != nil
		}
	}
}

func (l *Loop) emit(ev report.Event) {
	if err := l.sink.Emit(ev); err != nil {
		l.log.Warn().Err(err).Str("type", ev.Kind()).Msg("event not delivered")
	}
}
