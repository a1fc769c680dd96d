// Package report emits the newline-delimited JSON event stream: boot,
// detection, status and heartbeat records.
package report

import (
	"fmt"

	"glass-radar.klederson.com/internal/engine"
	"glass-radar.klederson.com/internal/fingerprint"
)

// Event is any record of the stream.
type Event interface {
	Kind() string
}

// Boot is emitted once at startup.
type Boot struct {
	Type    string `json:"type"`
	Board   string `json:"board"`
	Version string `json:"version"`
	Session string `json:"session"`
}

// Detection is emitted for every accepted detection.
type Detection struct {
	Type       string           `json:"type"`
	MAC        string           `json:"mac"`
	Company    string           `json:"company"`
	Product    string           `json:"product"`
	Reason     string           `json:"reason"`
	RSSI       int              `json:"rssi"`
	HasCamera  bool             `json:"hasCamera"`
	Tier       fingerprint.Tier `json:"tier"`
	DeviceName string           `json:"deviceName,omitempty"`
	CompanyID  string           `json:"companyId,omitempty"`
	TS         int64            `json:"ts"`
}

// Status is the periodic counter report.
type Status struct {
	Type            string `json:"type"`
	Board           string `json:"board"`
	Uptime          int64  `json:"uptime"`
	FreeHeap        uint64 `json:"freeHeap"`
	TotalScans      uint64 `json:"totalScans"`
	TotalDetections uint64 `json:"totalDetections"`
	TrackedDevices  int    `json:"trackedDevices"`
	AlertActive     bool   `json:"alertActive"`
	TierHigh        bool   `json:"tierHigh"`
	TierMedium      bool   `json:"tierMedium"`
	TierLow         bool   `json:"tierLow"`
	RSSIThreshold   int    `json:"rssiThreshold"`
}

// Heartbeat is the periodic liveness record.
type Heartbeat struct {
	Type     string `json:"type"`
	Uptime   int64  `json:"uptime"`
	FreeHeap uint64 `json:"freeHeap"`
}

func (Boot) Kind() string      { return "boot" }
func (Detection) Kind() string { return "detection" }
func (Status) Kind() string    { return "status" }
func (Heartbeat) Kind() string { return "heartbeat" }

// NewBoot builds the boot record.
func NewBoot(board, version, session string) Boot {
	return Boot{Type: "boot", Board: board, Version: version, Session: session}
}

// NewDetection builds a detection record. ts is milliseconds since start.
func NewDetection(d engine.Detection, ts int64) Detection {
	adv := d.Advertisement
	ev := Detection{
		Type:       "detection",
		MAC:        adv.Address.String(),
		Company:    d.Result.Company,
		Product:    d.Result.Product,
		Reason:     d.Result.Reason,
		RSSI:       adv.RSSI,
		HasCamera:  d.Result.HasCamera,
		Tier:       d.Result.Tier,
		DeviceName: adv.Name,
		TS:         ts,
	}
	if id, ok := adv.CompanyID(); ok {
		ev.CompanyID = fmt.Sprintf("0x%04X", id)
	}
	return ev
}

// NewStatus builds a status record from an engine snapshot.
func NewStatus(board string, st engine.Status, freeHeap uint64) Status {
	return Status{
		Type:            "status",
		Board:           board,
		Uptime:          int64(st.Uptime.Seconds()),
		FreeHeap:        freeHeap,
		TotalScans:      st.TotalScans,
		TotalDetections: st.TotalDetections,
		TrackedDevices:  st.TrackedDevices,
		AlertActive:     st.AlertActive,
		TierHigh:        st.Tiers.Enabled(fingerprint.TierHigh),
		TierMedium:      st.Tiers.Medium,
		TierLow:         st.Tiers.Low,
		RSSIThreshold:   st.RSSIThreshold,
	}
}

// NewHeartbeat builds a heartbeat record.
func NewHeartbeat(st engine.Status, freeHeap uint64) Heartbeat {
	return Heartbeat{Type: "heartbeat", Uptime: int64(st.Uptime.Seconds()), FreeHeap: freeHeap}
}
