package app

import (
	"sync"

	"glass-radar.klederson.com/internal/report"
)

// DetectionLog is a circular buffer of the most recent detections.
type DetectionLog struct {
	mu    sync.Mutex
	buf   []report.Detection
	pos   int
	count int
}

// NewDetectionLog creates a log holding at most capacity detections.
func NewDetectionLog(capacity int) *DetectionLog {
	return &DetectionLog{buf: make([]report.Detection, max(1, capacity))}
}

// Push adds a detection, overwriting the oldest when full.
func (r *DetectionLog) Push(d report.Detection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.pos] = d
	r.pos = (r.pos + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Values returns the stored detections oldest first.
func (r *DetectionLog) Values() []report.Detection {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		return nil
	}
	out := make([]report.Detection, 0, r.count)
	if r.count < len(r.buf) {
		return append(out, r.buf[:r.count]...)
	}
	out = append(out, r.buf[r.pos:]...)
	return append(out, r.buf[:r.pos]...)
}

// Len returns the number of stored detections.
func (r *DetectionLog) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Reset empties the log.
func (r *DetectionLog) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pos, r.count = 0, 0
}
