package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"glass-radar.klederson.com/internal/report"
)

// TickMsg triggers a frame update.
type TickMsg time.Time

// DetectionMsg carries an emitted detection into the monitor.
type DetectionMsg report.Detection

// Detection converts back to the event.
func (m DetectionMsg) Detection() report.Detection {
	return report.Detection(m)
}

// LoopDoneMsg reports that the scan loop returned.
type LoopDoneMsg struct {
	Err error
}

// ProgramSink forwards detection events to a running program.
func ProgramSink(p *tea.Program) report.Sink {
	return report.SinkFunc(func(ev report.Event) error {
		if d, ok := ev.(report.Detection); ok {
			p.Send(DetectionMsg(d))
		}
		return nil
	})
}
