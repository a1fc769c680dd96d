package bluetooth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyID(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		wantID uint16
		wantOK bool
	}{
		{name: "absent", data: nil},
		{name: "one byte", data: []byte{0xAB}},
		{name: "exactly two", data: []byte{0xAB, 0x01}, wantID: 0x01AB, wantOK: true},
		{name: "with payload", data: []byte{0x8E, 0x05, 0x4D, 0x45}, wantID: 0x058E, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adv := Advertisement{ManufacturerData: tt.data}
			id, ok := adv.CompanyID()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestManufacturerBlock_RoundTripsCompanyID(t *testing.T) {
	block := ManufacturerBlock(0x01AB, []byte{0x02, 0x15})
	assert.Equal(t, []byte{0xAB, 0x01, 0x02, 0x15}, block)

	adv := Advertisement{ManufacturerData: block}
	id, ok := adv.CompanyID()
	require.True(t, ok)
	assert.Equal(t, uint16(0x01AB), id)
}

func TestHasService(t *testing.T) {
	adv := Advertisement{ServiceUUIDs: []uint16{0x180F, 0xFD5F}}
	assert.True(t, adv.HasService(0xFD5F))
	assert.False(t, adv.HasService(0xFEAA))
	assert.False(t, (&Advertisement{}).HasService(0xFD5F))
}

func TestParseMAC(t *testing.T) {
	m, err := ParseMAC("7c:2a:9e:01:02:03")
	require.NoError(t, err)
	assert.Equal(t, MAC{0x7C, 0x2A, 0x9E, 0x01, 0x02, 0x03}, m)
	assert.Equal(t, "7C:2A:9E:01:02:03", m.String())
	assert.Equal(t, [3]byte{0x7C, 0x2A, 0x9E}, m.OUI())

	_, err = ParseMAC("not-a-mac")
	assert.Error(t, err)

	// EUI-64 parses but is not a BLE address.
	_, err = ParseMAC("02:00:5e:10:00:00:00:01")
	assert.Error(t, err)
}

func TestRSSIToDistance(t *testing.T) {
	assert.InDelta(t, 1.0, RSSIToDistance(-59, -59, 2.5), 0.001)
	assert.InDelta(t, 10.0, RSSIToDistance(-84, -59, 2.5), 0.001)
	assert.Equal(t, 0.1, RSSIToDistance(3, -59, 2.5))
	assert.Equal(t, 0.1, RSSIToDistance(-1, -59, 2.5))
}

func TestLookupManufacturer(t *testing.T) {
	assert.Equal(t, "Apple", LookupManufacturer(0x004C))
	assert.Equal(t, "", LookupManufacturer(0xFFFF))
}
