package bluetooth

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"tinygo.org/x/bluetooth"

	"glass-radar.klederson.com/internal/logging"
)

// Bounds of the retry delay when StopScan fails because the adapter has not
// finished starting the scan yet.
const (
	stopRetryMin = 10 * time.Millisecond
	stopRetryMax = 250 * time.Millisecond
)

// radio is the part of *bluetooth.Adapter the scanner drives.
type radio interface {
	Enable() error
	Scan(callback func(*bluetooth.Adapter, bluetooth.ScanResult)) error
	StopScan() error
}

// BLEScanner runs timed scan phases on a host Bluetooth adapter.
type BLEScanner struct {
	adapter radio
	log     zerolog.Logger

	// services are checked on every result; the adapter does not expose the
	// full advertised UUID list on all platforms.
	services []serviceFilter

	mu   sync.Mutex
	seen atomic.Uint64
}

type serviceFilter struct {
	short uint16
	uuid  bluetooth.UUID
}

// NewBLEScanner creates a scanner on the named adapter. serviceUUIDs are
// the 16-bit UUIDs worth reporting in Advertisement.ServiceUUIDs.
func NewBLEScanner(adapterID string, serviceUUIDs []uint16, log zerolog.Logger) *BLEScanner {
	filters := make([]serviceFilter, 0, len(serviceUUIDs))
	for _, u := range serviceUUIDs {
		filters = append(filters, serviceFilter{short: u, uuid: bluetooth.New16BitUUID(u)})
	}
	return &BLEScanner{
		adapter:  hostAdapter(adapterID),
		log:      logging.Component(log, "ble.scanner"),
		services: filters,
	}
}

// Enable powers up the adapter.
func (s *BLEScanner) Enable() error {
	if err := s.adapter.Enable(); err != nil {
		return fmt.Errorf("failed to enable BLE adapter: %w (try running with sudo or setcap cap_net_admin+ep)", err)
	}
	return nil
}

// Scan listens for advertisements for d, or until ctx is done, calling h
// for each result. It blocks until the scan has stopped.
func (s *BLEScanner) Scan(ctx context.Context, d time.Duration, h Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- s.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			adv, ok := s.convert(result)
			if !ok {
				return
			}
			s.seen.Add(1)
			h(adv)
		})
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case err := <-done:
		// Scan returned on its own, usually an adapter error.
		if err != nil {
			return fmt.Errorf("ble scan: %w", err)
		}
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}

	if err := s.stop(done); err != nil {
		return fmt.Errorf("ble scan: %w", err)
	}
	return nil
}

// stop ends the running scan and waits for it to return. BlueZ only accepts
// StopScan once discovery has actually started, so a stop issued right after
// Scan was called fails; it is retried until the scan goroutine returns.
func (s *BLEScanner) stop(done <-chan error) error {
	delay := stopRetryMin
	for attempt := 1; ; attempt++ {
		err := s.adapter.StopScan()
		if err == nil {
			return <-done
		}
		if attempt == 1 {
			s.log.Debug().Err(err).Msg("stop scan failed, retrying")
		}

		select {
		case err := <-done:
			return err
		case <-time.After(delay):
		}
		delay = min(2*delay, stopRetryMax)
	}
}

// Clear resets the per-phase result counter and returns its value.
func (s *BLEScanner) Clear() uint64 {
	return s.seen.Swap(0)
}

func (s *BLEScanner) convert(result bluetooth.ScanResult) (Advertisement, bool) {
	addr, err := ParseMAC(result.Address.String())
	if err != nil {
		// macOS reports opaque UUIDs instead of addresses.
		s.log.Debug().Str("address", result.Address.String()).Msg("skipping result without MAC address")
		return Advertisement{}, false
	}

	adv := Advertisement{
		Address: addr,
		RSSI:    int(result.RSSI),
		Name:    result.LocalName(),
	}
	if mfrs := result.ManufacturerData(); len(mfrs) > 0 {
		adv.ManufacturerData = ManufacturerBlock(mfrs[0].CompanyID, mfrs[0].Data)
	}
	for _, p := range s.services {
		if result.HasServiceUUID(p.uuid) {
			adv.ServiceUUIDs = append(adv.ServiceUUIDs, p.short)
		}
	}
	return adv, true
}
