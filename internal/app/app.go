package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"glass-radar.klederson.com/internal/alert"
	"glass-radar.klederson.com/internal/bluetooth"
	"glass-radar.klederson.com/internal/config"
	"glass-radar.klederson.com/internal/engine"
	"glass-radar.klederson.com/internal/radar"
	"glass-radar.klederson.com/internal/tracker"
	"glass-radar.klederson.com/internal/ui"
)

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	engine *engine.Engine
	sweep  *radar.Sweep
	log    *DetectionLog
	labels map[bluetooth.MAC]string
	cancel context.CancelFunc
}

// Monitor is the root Bubble Tea model. It reads the engine on every tick;
// the scan loop runs separately and feeds detections in as DetectionMsg.
type Monitor struct {
	width  int
	height int

	source   string
	capacity int
	cursor   int
	loopErr  error

	shared *shared

	// Cached snapshot
	now     time.Time
	frame   alert.Frame
	tracked []tracker.Entry
	status  engine.Status
}

// NewMonitor creates the model. cancel stops the scan loop on quit.
func NewMonitor(eng *engine.Engine, source string, capacity int, cancel context.CancelFunc) Monitor {
	return Monitor{
		source:   source,
		capacity: capacity,
		shared: &shared{
			engine: eng,
			sweep:  radar.NewSweep(eng.Start()),
			log:    NewDetectionLog(config.DetectionLogSize),
			labels: make(map[bluetooth.MAC]string),
			cancel: cancel,
		},
	}
}

// Err returns the scan loop error, if it stopped with one.
func (m Monitor) Err() error {
	return m.loopErr
}

func (m Monitor) Init() tea.Cmd {
	return tickCmd()
}

func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		m.refresh(time.Time(msg))
		return m, tickCmd()

	case DetectionMsg:
		m.shared.log.Push(msg.Detection())
		if addr, err := bluetooth.ParseMAC(msg.MAC); err == nil {
			m.shared.labels[addr] = msg.Product
		}
		return m, nil

	case LoopDoneMsg:
		m.loopErr = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

func (m Monitor) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		if m.shared.cancel != nil {
			m.shared.cancel()
		}
		return m, tea.Quit

	case "c", "C":
		m.shared.log.Reset()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.tracked)-1 {
			m.cursor++
		}

	case "home":
		m.cursor = 0

	case "end":
		if len(m.tracked) > 0 {
			m.cursor = len(m.tracked) - 1
		}
	}

	return m, nil
}

func (m *Monitor) refresh(now time.Time) {
	m.now = now
	m.shared.sweep.Update(now)
	m.frame = m.shared.engine.Render(now)
	m.tracked = m.shared.engine.Tracked()
	m.status = m.shared.engine.Status(now)
	m.pruneLabels()
	if m.cursor >= len(m.tracked) {
		m.cursor = max(0, len(m.tracked)-1)
	}
}

// pruneLabels drops labels of addresses the tracker has evicted, so the map
// never outgrows the tracker.
func (m *Monitor) pruneLabels() {
	if len(m.shared.labels) <= len(m.tracked) {
		return
	}
	live := make(map[bluetooth.MAC]struct{}, len(m.tracked))
	for _, e := range m.tracked {
		live[e.Address] = struct{}{}
	}
	for addr := range m.shared.labels {
		if _, ok := live[addr]; !ok {
			delete(m.shared.labels, addr)
		}
	}
}

func (m Monitor) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing " + config.AppName + "..."
	}

	bodyH := max(5, m.height-2)

	radarW := max(30, m.width*3/5)
	sideW := m.width - radarW
	if sideW < 24 {
		sideW = 24
		radarW = m.width - sideW
	}

	alerting := m.frame.Alerting
	menuBar := ui.RenderMenuBar(m.width, m.source, alerting)

	blips := make([]radar.Blip, len(m.tracked))
	for i, e := range m.tracked {
		blips[i] = radar.BlipFor(e, m.shared.labels[e.Address])
	}
	radarContent := radar.Render(max(5, radarW-4), max(3, bodyH-4), blips, m.shared.sweep)
	radarPanel := ui.RenderRadarPanel(radarW, bodyH, radarContent, radar.RenderLegend(max(5, radarW-4)), alerting)

	alertH := bodyH / 2
	alertPanel := ui.RenderAlertPanel(m.frame, m.shared.log.Values(), sideW, alertH)
	trackedList := ui.RenderTrackedList(m.tracked, m.shared.labels, m.capacity, sideW, bodyH-alertH, m.cursor, m.now)

	statusBar := ui.RenderStatusBar(m.width, alerting, ui.Counters{
		Uptime:     m.status.Uptime,
		Scans:      m.status.TotalScans,
		Seen:       m.status.TotalSeen,
		Detections: m.status.TotalDetections,
		Tracked:    m.status.TrackedDevices,
		Capacity:   m.capacity,
		RSSIGate:   m.status.RSSIThreshold,
		Tiers:      tierFlags(m.status),
	})

	return ui.ComposeLayout(menuBar, radarPanel, alertPanel, trackedList, statusBar)
}

func tierFlags(st engine.Status) string {
	flag := func(on bool, s string) string {
		if on {
			return s
		}
		return "-"
	}
	return "H" + flag(st.Tiers.Medium, "M") + flag(st.Tiers.Low, "L")
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(config.TargetFPS), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
