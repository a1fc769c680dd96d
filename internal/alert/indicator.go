package alert

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Indicator displays frames.
type Indicator interface {
	Show(Frame) error
}

// Nop discards frames.
type Nop struct{}

func (Nop) Show(Frame) error { return nil }

// SysfsLED drives a Linux LED class device, e.g. /sys/class/leds/led0.
// Idle keeps the LED off.
type SysfsLED struct {
	dir  string
	max  int
	last int
}

// OpenSysfsLED reads max_brightness from dir and switches the LED off.
func OpenSysfsLED(dir string) (*SysfsLED, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "max_brightness"))
	if err != nil {
		return nil, fmt.Errorf("open led %s: %w", dir, err)
	}
	maxBrightness, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || maxBrightness <= 0 {
		return nil, fmt.Errorf("open led %s: bad max_brightness %q", dir, strings.TrimSpace(string(raw)))
	}
	led := &SysfsLED{dir: dir, max: maxBrightness, last: -1}
	if err := led.set(0); err != nil {
		return nil, err
	}
	return led, nil
}

// Show writes the brightness only when it changes.
func (l *SysfsLED) Show(f Frame) error {
	level := 0
	if f.Alerting && f.On {
		level = l.max
	}
	if level == l.last {
		return nil
	}
	return l.set(level)
}

func (l *SysfsLED) set(level int) error {
	path := filepath.Join(l.dir, "brightness")
	if err := os.WriteFile(path, []byte(strconv.Itoa(level)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	l.last = level
	return nil
}

// BootBlink flashes the indicator three times to show the sensor is alive.
func BootBlink(ind Indicator, pulse time.Duration) error {
	on := Frame{Alerting: true, On: true}
	for i := 0; i < 3; i++ {
		if err := ind.Show(on); err != nil {
			return err
		}
		time.Sleep(pulse)
		if err := ind.Show(Frame{}); err != nil {
			return err
		}
		time.Sleep(pulse)
	}
	return nil
}
