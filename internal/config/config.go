package config

import (
	"runtime"
	"time"

	"glass-radar.klederson.com/internal/alert"
	"glass-radar.klederson.com/internal/detect"
	"glass-radar.klederson.com/internal/engine"
)

const (
	// RSSI to distance estimation
	MeasuredPower = -59.0 // RSSI at 1 meter (dBm)
	PathLossExp   = 2.5   // Path loss exponent (N)

	// Radar display
	MaxRange      = 15.0 // Maximum range in meters
	AspectRatio   = 0.5  // Terminal char aspect correction (chars are ~2:1 tall)
	RingCount     = 3    // One ring per proximity band
	SweepSpeedRPM = 30   // Sweep rotations per minute (1 rotation per 2 seconds)
	SweepTrailDeg = 60.0 // Sweep trail angle in degrees
	TargetFPS     = 30   // Target frames per second

	// Indicator
	RenderInterval = 10 * time.Millisecond  // LED refresh, well under the strobe half-period
	BootPulse      = 100 * time.Millisecond // Boot blink on/off time

	// Scan loop
	ScanRetryMax = 30 * time.Second // Longest wait between failing scan phases

	// Monitor
	DetectionLogSize = 64 // Detections kept for the monitor

	// App
	AppName    = "GLASS-RADAR"
	AppVersion = "2.0.0"
)

// Config is the runtime configuration.
type Config struct {
	Log      LogConfig      `koanf:"log"`
	Scan     ScanConfig     `koanf:"scan"`
	RSSI     RSSIConfig     `koanf:"rssi"`
	Tiers    TierConfig     `koanf:"tiers"`
	Alert    AlertConfig    `koanf:"alert"`
	Blink    BlinkConfig    `koanf:"blink"`
	Tracker  TrackerConfig  `koanf:"tracker"`
	Report   ReportConfig   `koanf:"report"`
	Database DatabaseConfig `koanf:"database"`

	Board   string `koanf:"board" validate:"required"`
	Adapter string `koanf:"adapter"`
	Demo    bool   `koanf:"demo"`
	TUI     bool   `koanf:"tui"`
	LED     string `koanf:"led"` // sysfs LED directory, empty for none
	Out     string `koanf:"out"` // event stream file, empty for stdout
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console text json"`
}

// ScanConfig holds the scan cycle timing. Interval and Window are the
// controller duty cycle; host stacks that manage it themselves ignore them.
type ScanConfig struct {
	Duration time.Duration `koanf:"duration" validate:"gt=0"`
	Interval time.Duration `koanf:"interval" validate:"gt=0"`
	Window   time.Duration `koanf:"window" validate:"gt=0,ltefield=Interval"`
	Pause    time.Duration `koanf:"pause" validate:"gte=0"`
}

// RSSIConfig holds the detection gate and the proximity bands (dBm).
type RSSIConfig struct {
	Threshold int `koanf:"threshold" validate:"gte=-127,lte=20"`
	Close     int `koanf:"close" validate:"gtfield=Medium"`
	Medium    int `koanf:"medium" validate:"gtfield=Far"`
	Far       int `koanf:"far" validate:"gte=-127"`
}

// TierConfig enables the optional tiers. HIGH is always on.
type TierConfig struct {
	Medium bool `koanf:"medium"`
	Low    bool `koanf:"low"`
}

type AlertConfig struct {
	Duration time.Duration `koanf:"duration" validate:"gt=0"`
}

// BlinkConfig holds the half-periods of the alert square wave.
type BlinkConfig struct {
	Strobe time.Duration `koanf:"strobe" validate:"gt=0"`
	Fast   time.Duration `koanf:"fast" validate:"gt=0"`
	Slow   time.Duration `koanf:"slow" validate:"gt=0"`
}

type TrackerConfig struct {
	Cooldown time.Duration `koanf:"cooldown" validate:"gte=0"`
	Capacity int           `koanf:"capacity" validate:"min=1,max=4096"`
}

type ReportConfig struct {
	Status    time.Duration `koanf:"status" validate:"gt=0"`
	Heartbeat time.Duration `koanf:"heartbeat" validate:"gt=0"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"` // empty uses the embedded database
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "console"},
		Scan: ScanConfig{
			Duration: 5 * time.Second,
			Interval: 100 * time.Millisecond,
			Window:   80 * time.Millisecond,
			Pause:    100 * time.Millisecond,
		},
		RSSI:    RSSIConfig{Threshold: -75, Close: -55, Medium: -65, Far: -75},
		Tiers:   TierConfig{Medium: true, Low: false},
		Alert:   AlertConfig{Duration: 5 * time.Second},
		Blink:   BlinkConfig{Strobe: 50 * time.Millisecond, Fast: 125 * time.Millisecond, Slow: 500 * time.Millisecond},
		Tracker: TrackerConfig{Cooldown: 10 * time.Second, Capacity: 32},
		Report:  ReportConfig{Status: 10 * time.Second, Heartbeat: 30 * time.Second},
		Board:   runtime.GOOS + "/" + runtime.GOARCH,
		Adapter: "hci0",
	}
}

// DefaultConfigAsMap flattens DefaultConfig for koanf's confmap provider.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"log.level":  def.Log.Level,
		"log.format": def.Log.Format,

		"scan.duration": def.Scan.Duration,
		"scan.interval": def.Scan.Interval,
		"scan.window":   def.Scan.Window,
		"scan.pause":    def.Scan.Pause,

		"rssi.threshold": def.RSSI.Threshold,
		"rssi.close":     def.RSSI.Close,
		"rssi.medium":    def.RSSI.Medium,
		"rssi.far":       def.RSSI.Far,

		"tiers.medium": def.Tiers.Medium,
		"tiers.low":    def.Tiers.Low,

		"alert.duration": def.Alert.Duration,

		"blink.strobe": def.Blink.Strobe,
		"blink.fast":   def.Blink.Fast,
		"blink.slow":   def.Blink.Slow,

		"tracker.cooldown": def.Tracker.Cooldown,
		"tracker.capacity": def.Tracker.Capacity,

		"report.status":    def.Report.Status,
		"report.heartbeat": def.Report.Heartbeat,

		"database.path": def.Database.Path,

		"board":   def.Board,
		"adapter": def.Adapter,
		"demo":    def.Demo,
		"tui":     def.TUI,
		"led":     def.LED,
		"out":     def.Out,
	}
}

// TierMask returns the company-ID tier gate.
func (c Config) TierMask() detect.TierMask {
	return detect.TierMask{Medium: c.Tiers.Medium, Low: c.Tiers.Low}
}

// Engine returns the detection pipeline options.
func (c Config) Engine() engine.Options {
	return engine.Options{
		RSSIGate:      c.RSSI.Threshold,
		Tiers:         c.TierMask(),
		Cooldown:      c.Tracker.Cooldown,
		Capacity:      c.Tracker.Capacity,
		AlertDuration: c.Alert.Duration,
		Bands:         alert.Bands{Close: c.RSSI.Close, Medium: c.RSSI.Medium},
		Blink:         alert.Blink{Strobe: c.Blink.Strobe, Fast: c.Blink.Fast, Slow: c.Blink.Slow},
	}
}
