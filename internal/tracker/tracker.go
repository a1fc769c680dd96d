// Package tracker suppresses repeat detections of the same physical address
// within a cooldown window, using a fixed-capacity table.
package tracker

import (
	"sort"
	"sync"
	"time"

	"glass-radar.klederson.com/internal/bluetooth"
	"glass-radar.klederson.com/internal/fingerprint"
)

// Entry is one tracked device.
type Entry struct {
	Address   bluetooth.MAC
	LastSeen  time.Time
	RSSI      int
	Tier      fingerprint.Tier
	HasCamera bool
}

// Tracker is a thread-safe bounded table of recently detected devices.
// When full, inserting a new address evicts the entry seen longest ago.
type Tracker struct {
	mu       sync.Mutex
	entries  []Entry
	cooldown time.Duration
}

// New creates a tracker holding at most capacity entries. Capacity below 1
// is raised to 1.
func New(capacity int, cooldown time.Duration) *Tracker {
	if capacity < 1 {
		capacity = 1
	}
	return &Tracker{
		entries:  make([]Entry, 0, capacity),
		cooldown: cooldown,
	}
}

// ShouldSuppress reports whether addr was recorded less than the cooldown
// ago. When the entry exists but its cooldown has expired, its last-seen
// time is reset to now, so probing alone restarts the window.
func (t *Tracker) ShouldSuppress(addr bluetooth.MAC, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(addr)
	if i < 0 {
		return false
	}
	if now.Sub(t.entries[i].LastSeen) < t.cooldown {
		return true
	}
	t.entries[i].LastSeen = now
	return false
}

// Record refreshes last-seen and RSSI of an existing entry, or inserts a new
// one, evicting the oldest entry if the table is full.
func (t *Tracker) Record(addr bluetooth.MAC, now time.Time, rssi int, tier fingerprint.Tier, hasCamera bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i := t.indexOf(addr); i >= 0 {
		t.entries[i].LastSeen = now
		t.entries[i].RSSI = rssi
		return
	}

	e := Entry{Address: addr, LastSeen: now, RSSI: rssi, Tier: tier, HasCamera: hasCamera}
	if len(t.entries) < cap(t.entries) {
		t.entries = append(t.entries, e)
		return
	}
	t.entries[t.oldest()] = e
}

// Len returns the number of tracked devices.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Capacity returns the maximum number of tracked devices.
func (t *Tracker) Capacity() int {
	return cap(t.entries)
}

// Snapshot returns a copy of all entries (strongest RSSI first).
func (t *Tracker) Snapshot() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]Entry, len(t.entries))
	copy(result, t.entries)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RSSI > result[j].RSSI
	})
	return result
}

func (t *Tracker) indexOf(addr bluetooth.MAC) int {
	for i := range t.entries {
		if t.entries[i].Address == addr {
			return i
		}
	}
	return -1
}

// oldest returns the first entry with the smallest last-seen time.
func (t *Tracker) oldest() int {
	oldest := 0
	for i := 1; i < len(t.entries); i++ {
		if t.entries[i].LastSeen.Before(t.entries[oldest].LastSeen) {
			oldest = i
		}
	}
	return oldest
}
