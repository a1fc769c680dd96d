// Package fingerprint holds the smart glasses fingerprint database: company
// identifiers, service UUIDs, device name patterns, address prefixes and
// manufacturer payload signatures.
package fingerprint

import (
	"encoding/hex"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tier is the confidence class of a fingerprint. The numeric values are
// part of the detection event wire format.
type Tier uint8

const (
	TierHigh Tier = iota
	TierMedium
	TierLow
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "HIGH"
	case TierMedium:
		return "MEDIUM"
	case TierLow:
		return "LOW"
	default:
		return fmt.Sprintf("TIER(%d)", uint8(t))
	}
}

// ParseTier accepts "high", "medium" or "low" in any case, or the wire
// numbers 0 to 2.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "0":
		return TierHigh, nil
	case "medium", "1":
		return TierMedium, nil
	case "low", "2":
		return TierLow, nil
	}
	return 0, fmt.Errorf("%w: unknown tier %q", ErrInvalidRecord, s)
}

func (t *Tier) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseTier(value.Value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// OUI is the three byte vendor prefix of a physical address.
type OUI [3]byte

func (o OUI) String() string {
	return fmt.Sprintf("%02X:%02X:%02X", o[0], o[1], o[2])
}

// ParseOUI parses "AA:BB:CC" or "AA-BB-CC".
func ParseOUI(s string) (OUI, error) {
	var o OUI
	raw, err := hex.DecodeString(strings.NewReplacer(":", "", "-", "").Replace(s))
	if err != nil || len(raw) != len(o) {
		return o, fmt.Errorf("%w: bad OUI prefix %q", ErrInvalidRecord, s)
	}
	copy(o[:], raw)
	return o, nil
}

func (o *OUI) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseOUI(value.Value)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// CompanyRecord maps a Bluetooth SIG company identifier to a product.
type CompanyRecord struct {
	ID        uint16 `yaml:"id"`
	Company   string `yaml:"company" validate:"required"`
	Product   string `yaml:"product" validate:"required"`
	HasCamera bool   `yaml:"camera"`
	Tier      Tier   `yaml:"tier" validate:"lte=2"`
}

// UnmarshalYAML requires an explicit tier: the zero value is HIGH, which
// would make a row that forgot it impossible to disable.
func (c *CompanyRecord) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		ID        uint16 `yaml:"id"`
		Company   string `yaml:"company"`
		Product   string `yaml:"product"`
		HasCamera bool   `yaml:"camera"`
		Tier      *Tier  `yaml:"tier"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Tier == nil {
		return fmt.Errorf("%w: company 0x%04X (%s) has no tier", ErrInvalidRecord, raw.ID, raw.Company)
	}
	*c = CompanyRecord{
		ID:        raw.ID,
		Company:   raw.Company,
		Product:   raw.Product,
		HasCamera: raw.HasCamera,
		Tier:      *raw.Tier,
	}
	return nil
}

// ServiceRecord is a 16-bit service UUID advertised by glasses.
type ServiceRecord struct {
	UUID        uint16 `yaml:"uuid" validate:"required"`
	Owner       string `yaml:"owner" validate:"required"`
	Description string `yaml:"description" validate:"required"`
}

// NamePattern is a case-insensitive substring of an advertised local name.
type NamePattern struct {
	Pattern   string `yaml:"pattern" validate:"required"`
	Product   string `yaml:"product" validate:"required"`
	HasCamera bool   `yaml:"camera"`
}

// OUIRecord is an address prefix registered to a glasses vendor.
type OUIRecord struct {
	Prefix OUI    `yaml:"prefix"`
	Vendor string `yaml:"vendor" validate:"required"`
}

// PayloadPattern is a byte signature inside manufacturer data that narrows
// a company match down to one product.
type PayloadPattern struct {
	CompanyID   uint16 `yaml:"company_id"`
	Hex         string `yaml:"hex" validate:"required"`
	Description string `yaml:"description" validate:"required"`

	Pattern []byte `yaml:"-"`
}

// Database is the immutable set of fingerprint tables. Every table is
// scanned in order and the first hit wins.
type Database struct {
	Companies []CompanyRecord  `yaml:"companies" validate:"dive"`
	Services  []ServiceRecord  `yaml:"services" validate:"dive"`
	Names     []NamePattern    `yaml:"names" validate:"dive"`
	OUIs      []OUIRecord      `yaml:"ouis" validate:"dive"`
	Payloads  []PayloadPattern `yaml:"payloads" validate:"dive"`
}

// Summary is a one-line description of the table sizes.
func (db *Database) Summary() string {
	return fmt.Sprintf("%d company IDs, %d service UUIDs, %d name patterns, %d OUI prefixes, %d payload signatures",
		len(db.Companies), len(db.Services), len(db.Names), len(db.OUIs), len(db.Payloads))
}
