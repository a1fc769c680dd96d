package bluetooth

import (
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"slices"
)

// MAC is a 6-byte physical address in transmission order (OUI first).
type MAC [6]byte

// ParseMAC parses "AA:BB:CC:DD:EE:FF" style addresses.
func ParseMAC(s string) (MAC, error) {
	var m MAC
	hw, err := net.ParseMAC(s)
	if err != nil {
		return m, err
	}
	if len(hw) != len(m) {
		return m, fmt.Errorf("address %q is not 6 bytes", s)
	}
	copy(m[:], hw)
	return m, nil
}

func (m MAC) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", m[0], m[1], m[2], m[3], m[4], m[5])
}

// OUI returns the vendor prefix.
func (m MAC) OUI() [3]byte {
	return [3]byte{m[0], m[1], m[2]}
}

// Advertisement is one observed BLE advertisement.
type Advertisement struct {
	Address MAC
	RSSI    int
	Name    string

	// ManufacturerData is the raw manufacturer specific block, company
	// identifier included (little-endian, first two bytes).
	ManufacturerData []byte
	ServiceUUIDs     []uint16
}

// CompanyID decodes the manufacturer identifier. It reports false when the
// block is shorter than two bytes.
func (a *Advertisement) CompanyID() (uint16, bool) {
	if len(a.ManufacturerData) < 2 {
		return 0, false
	}
	return binary.LittleEndian.Uint16(a.ManufacturerData), true
}

// HasService reports whether uuid is in the advertised service set.
func (a *Advertisement) HasService(uuid uint16) bool {
	return slices.Contains(a.ServiceUUIDs, uuid)
}

// ManufacturerBlock rebuilds a raw manufacturer block from a company
// identifier and its payload.
func ManufacturerBlock(companyID uint16, payload []byte) []byte {
	b := make([]byte, 2, 2+len(payload))
	binary.LittleEndian.PutUint16(b, companyID)
	return append(b, payload...)
}

// Handler receives advertisements from a scanner. It is called from the
// scanner's own goroutine.
type Handler func(Advertisement)

// RSSIToDistance estimates distance from RSSI using the log-distance path loss model.
// Formula: d = 10^((measuredPower - rssi) / (10 * n))
func RSSIToDistance(rssi, measuredPower, pathLossExp float64) float64 {
	if rssi >= 0 {
		return 0.1
	}
	d := math.Pow(10, (measuredPower-rssi)/(10*pathLossExp))
	if d < 0.1 {
		return 0.1
	}
	return d
}
