// Package detect classifies BLE advertisements against the fingerprint
// database.
package detect

import (
	"bytes"
	"fmt"
	"strings"

	"glass-radar.klederson.com/internal/bluetooth"
	"glass-radar.klederson.com/internal/fingerprint"
)

// Method identifies which fingerprint table produced a match.
type Method int

const (
	MethodCompanyID Method = iota
	MethodServiceUUID
	MethodName
	MethodOUI
)

func (m Method) String() string {
	switch m {
	case MethodCompanyID:
		return "company_id"
	case MethodServiceUUID:
		return "service_uuid"
	case MethodName:
		return "name"
	case MethodOUI:
		return "oui"
	default:
		return "unknown"
	}
}

// OUIProduct is the product label of an address-prefix match.
const OUIProduct = "Smart Glasses (OUI match)"

// Result describes a positive classification.
type Result struct {
	Company   string
	Product   string
	Reason    string
	HasCamera bool
	Tier      fingerprint.Tier
	Method    Method
}

// Matcher runs the fingerprint cascade: company ID, service UUID, device
// name, then OUI prefix. The first method that matches wins.
type Matcher struct {
	db    *fingerprint.Database
	tiers TierMask
}

// NewMatcher creates a matcher over db with the given company-ID tier mask.
func NewMatcher(db *fingerprint.Database, tiers TierMask) *Matcher {
	return &Matcher{db: db, tiers: tiers}
}

// Tiers returns the tier mask in effect.
func (m *Matcher) Tiers() TierMask {
	return m.tiers
}

// Classify matches adv against the database. It has no side effects.
func (m *Matcher) Classify(adv bluetooth.Advertisement) (Result, bool) {
	if id, ok := adv.CompanyID(); ok {
		if r, ok := m.matchCompany(id, adv.ManufacturerData); ok {
			return r, true
		}
	}
	if r, ok := m.matchService(adv); ok {
		return r, true
	}
	if adv.Name != "" {
		if r, ok := m.matchName(adv.Name); ok {
			return r, true
		}
	}
	return m.matchOUI(adv.Address)
}

// matchCompany skips rows of disabled tiers and keeps scanning, so a later
// row with the same ID and an enabled tier can still match.
func (m *Matcher) matchCompany(id uint16, data []byte) (Result, bool) {
	for _, rec := range m.db.Companies {
		if rec.ID != id || !m.tiers.Enabled(rec.Tier) {
			continue
		}
		r := Result{
			Company:   rec.Company,
			Product:   rec.Product,
			Reason:    fmt.Sprintf("Company ID 0x%04X (%s)", id, rec.Company),
			HasCamera: rec.HasCamera,
			Tier:      rec.Tier,
			Method:    MethodCompanyID,
		}
		if p, ok := m.matchPayload(id, data[2:]); ok {
			r.Product = p.Description
			r.Reason += ", payload matches " + p.Description
		}
		return r, true
	}
	return Result{}, false
}

func (m *Matcher) matchPayload(id uint16, payload []byte) (fingerprint.PayloadPattern, bool) {
	for _, p := range m.db.Payloads {
		if p.CompanyID == id && bytes.Contains(payload, p.Pattern) {
			return p, true
		}
	}
	return fingerprint.PayloadPattern{}, false
}

func (m *Matcher) matchService(adv bluetooth.Advertisement) (Result, bool) {
	for _, rec := range m.db.Services {
		if !adv.HasService(rec.UUID) {
			continue
		}
		return Result{
			Company:   rec.Owner,
			Product:   rec.Description,
			Reason:    fmt.Sprintf("Service UUID 0x%04X (%s)", rec.UUID, rec.Owner),
			HasCamera: true,
			Tier:      fingerprint.TierHigh,
			Method:    MethodServiceUUID,
		}, true
	}
	return Result{}, false
}

func (m *Matcher) matchName(name string) (Result, bool) {
	lower := strings.ToLower(name)
	for _, rec := range m.db.Names {
		if !strings.Contains(lower, strings.ToLower(rec.Pattern)) {
			continue
		}
		return Result{
			Company:   rec.Product,
			Product:   rec.Product,
			Reason:    fmt.Sprintf("Device name '%s' matches '%s'", name, rec.Pattern),
			HasCamera: rec.HasCamera,
			Tier:      fingerprint.TierHigh,
			Method:    MethodName,
		}, true
	}
	return Result{}, false
}

// matchOUI is not tier gated.
func (m *Matcher) matchOUI(addr bluetooth.MAC) (Result, bool) {
	prefix := fingerprint.OUI(addr.OUI())
	for _, rec := range m.db.OUIs {
		if rec.Prefix != prefix {
			continue
		}
		return Result{
			Company:   rec.Vendor,
			Product:   OUIProduct,
			Reason:    fmt.Sprintf("OUI prefix %s (%s)", prefix, rec.Vendor),
			HasCamera: true,
			Tier:      fingerprint.TierMedium,
			Method:    MethodOUI,
		}, true
	}
	return Result{}, false
}
