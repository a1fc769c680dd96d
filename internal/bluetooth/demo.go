package bluetooth

import (
	"context"
	"math"
	"math/rand"
	"sync/atomic"
	"time"
)

var demoTemplates = []struct {
	Name      string
	CompanyID uint16
	Payload   []byte
	Services  []uint16
	OUI       [3]byte
}{
	// glasses
	{Name: "", CompanyID: 0x01AB, Payload: []byte{0x02, 0x15}},
	{Name: "", CompanyID: 0x058E, Payload: []byte("META_RB_GLASS")},
	{Name: "My Ray-Ban Stories"},
	{Name: "Spectacles 4F2A", CompanyID: 0x03C2},
	{Name: "", Services: []uint16{0xFD5F}},
	{Name: "XREAL Air 2"},
	{Name: "", OUI: [3]byte{0x98, 0x59, 0x49}},
	{Name: "", CompanyID: 0x00E0, Payload: []byte{0x00}},
	// everything else
	{Name: "iPhone 15 Pro", CompanyID: 0x004C, Payload: []byte{0x10, 0x05}},
	{Name: "Galaxy Buds Pro", CompanyID: 0x0075},
	{Name: "Fitbit Charge 6"},
	{Name: "Tile Tracker", CompanyID: 0x067C},
	{Name: "", CompanyID: 0x0006, Payload: []byte{0x01, 0x09}},
	{Name: "JBL Flip 6"},
}

type demoDevice struct {
	adv       Advertisement
	baseRSSI  float64
	phase     float64
	amplitude float64
	active    bool
}

// DemoScanner synthesises advertisements from a fixed population of fake
// devices, some of them glasses.
type DemoScanner struct {
	devices []demoDevice
	rng     *rand.Rand
	start   time.Time
	seen    atomic.Uint64

	// Interval between emission rounds.
	Interval time.Duration
}

// NewDemoScanner creates a demo scanner seeded with seed.
func NewDemoScanner(seed int64) *DemoScanner {
	rng := rand.New(rand.NewSource(seed))

	devices := make([]demoDevice, len(demoTemplates))
	for i, tmpl := range demoTemplates {
		addr := randomMAC(rng)
		if tmpl.OUI != ([3]byte{}) {
			copy(addr[:3], tmpl.OUI[:])
		}
		adv := Advertisement{
			Address:      addr,
			Name:         tmpl.Name,
			ServiceUUIDs: tmpl.Services,
		}
		if tmpl.CompanyID != 0 {
			adv.ManufacturerData = ManufacturerBlock(tmpl.CompanyID, tmpl.Payload)
		}
		devices[i] = demoDevice{
			adv:       adv,
			baseRSSI:  -45 - rng.Float64()*45, // -45 to -90 dBm
			phase:     rng.Float64() * 2 * math.Pi,
			amplitude: 3 + rng.Float64()*8, // 3-11 dBm fluctuation
			active:    rng.Intn(3) > 0,
		}
	}

	return &DemoScanner{
		devices:  devices,
		rng:      rng,
		start:    time.Now(),
		Interval: 200 * time.Millisecond,
	}
}

// Enable is a no-op.
func (s *DemoScanner) Enable() error { return nil }

// Scan emits a round of advertisements every Interval until d has elapsed
// or ctx is done.
func (s *DemoScanner) Scan(ctx context.Context, d time.Duration, h Handler) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	deadline := time.NewTimer(d)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-deadline.C:
			return nil
		case now := <-ticker.C:
			s.emit(now.Sub(s.start).Seconds(), h)
		}
	}
}

// Clear resets the per-phase result counter and returns its value.
func (s *DemoScanner) Clear() uint64 {
	return s.seen.Swap(0)
}

func (s *DemoScanner) emit(t float64, h Handler) {
	for i := range s.devices {
		d := &s.devices[i]

		// Randomly toggle device visibility (appear/disappear)
		if s.rng.Float64() < 0.01 {
			d.active = !d.active
		}
		if !d.active {
			continue
		}

		// Sinusoidal RSSI fluctuation + noise
		rssi := d.baseRSSI + d.amplitude*math.Sin(t*0.5+d.phase) + (s.rng.Float64()-0.5)*4

		adv := d.adv
		adv.RSSI = int(rssi)
		s.seen.Add(1)
		h(adv)
	}
}

func randomMAC(rng *rand.Rand) MAC {
	var m MAC
	for i := range m {
		m[i] = byte(rng.Intn(256))
	}
	return m
}
