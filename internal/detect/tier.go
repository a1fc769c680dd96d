package detect

import "glass-radar.klederson.com/internal/fingerprint"

// TierMask selects which company-ID tiers may produce a detection. HIGH has
// no switch and is always enabled.
type TierMask struct {
	Medium bool
	Low    bool
}

// Enabled reports whether company records of tier t take part in matching.
func (m TierMask) Enabled(t fingerprint.Tier) bool {
	switch t {
	case fingerprint.TierHigh:
		return true
	case fingerprint.TierMedium:
		return m.Medium
	case fingerprint.TierLow:
		return m.Low
	default:
		return false
	}
}
