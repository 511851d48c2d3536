package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/posegraph/internal/animator"
	"github.com/san-kum/posegraph/internal/driver"
	"github.com/san-kum/posegraph/internal/montage"
	"github.com/san-kum/posegraph/internal/rig"
	"github.com/san-kum/posegraph/internal/timing"
)

const (
	canvasWidth     = 48
	canvasHeight    = 18
	historyCapacity = 120
	markerCapacity  = 6
)

type TickMsg time.Time

// markerLog is shared between copies of Model so listeners registered once keep
// writing to the live log.
type markerLog struct {
	lines []string
}

func (l *markerLog) add(ev montage.MarkerEvent) {
	l.lines = append(l.lines, fmt.Sprintf("t%-5d %s/%s", ev.Tick, ev.Montage, ev.Marker))
	if len(l.lines) > markerCapacity {
		l.lines = l.lines[len(l.lines)-markerCapacity:]
	}
}

// Model drives an arms rig instance in real time.
type Model struct {
	rig           *rig.Rig
	instance      *animator.Instance[rig.Input]
	script        animator.InputFunc[rig.Input]
	observers     []animator.Observer
	framesPerTick int
	frame         int

	pending  rig.Input
	speed    float64
	mirrored bool
	running  bool

	canvas        *Canvas
	view          View
	theme         Theme
	styles        Styles
	recoilHistory []float64
	markers       *markerLog
}

type Option func(*Model)

// WithScript feeds scripted input; key presses are layered on top.
func WithScript(fn animator.InputFunc[rig.Input]) Option {
	return func(m *Model) { m.script = fn }
}

func WithObserver(o animator.Observer) Option {
	return func(m *Model) { m.observers = append(m.observers, o) }
}

func WithTheme(name string) Option {
	return func(m *Model) { m.theme = ThemeByName(name) }
}

func NewModel(r *rig.Rig, instance *animator.Instance[rig.Input], framesPerTick int, opts ...Option) Model {
	if framesPerTick < 1 {
		framesPerTick = 1
	}
	m := Model{
		rig:           r,
		instance:      instance,
		framesPerTick: framesPerTick,
		running:       true,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		view:          DefaultView,
		theme:         Themes[0],
		recoilHistory: make([]float64, 0, historyCapacity),
		markers:       &markerLog{},
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.styles = NewStyles(m.theme)
	instance.Montages().OnTimeMarker(m.markers.add)
	return m
}

func (m Model) frameInterval() time.Duration {
	return time.Second / time.Duration(timing.TicksPerSecond*m.framesPerTick)
}

func (m Model) Init() tea.Cmd {
	return m.nextFrame()
}

func (m Model) nextFrame() tea.Cmd {
	return tea.Tick(m.frameInterval(), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "a":
			m.pending.Play = append(m.pending.Play, "attack")
		case "i":
			m.pending.Play = append(m.pending.Play, "inspect")
		case "f":
			m.pending.Play = append(m.pending.Play, "flinch")
		case "x":
			m.pending.Interrupt = append(m.pending.Interrupt, rig.MainSlot)
		case "w", "up":
			m.speed = min(m.speed+0.1, 1)
		case "s", "down":
			m.speed = max(m.speed-0.1, 0)
		case "m":
			m.mirrored = !m.mirrored
		case "k":
			m.pending.Recoil += 0.1
		case "r":
			m.instance.Reset()
			m.recoilHistory = m.recoilHistory[:0]
		case "t":
			m.theme = nextTheme(m.theme.Name)
			m.styles = NewStyles(m.theme)
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, m.nextFrame()
	}
	return m, nil
}

// advance renders one frame, ticking the instance first on tick boundaries.
func (m *Model) advance() {
	if m.frame == 0 {
		m.instance.Tick(m.input())
		m.pending = rig.Input{}

		recoil := driver.Value(m.instance.Drivers(), m.rig.RecoilKey())
		m.recoilHistory = append(m.recoilHistory, recoil)
		if len(m.recoilHistory) > historyCapacity {
			m.recoilHistory = m.recoilHistory[1:]
		}
	}

	partial := float64(m.frame) / float64(m.framesPerTick)
	p := m.instance.Pose(partial)
	m.canvas.Clear()
	DrawArms(m.canvas, p, m.view)

	if len(m.observers) > 0 {
		f := animator.Frame{
			Tick:         m.instance.Ticks() - 1,
			PartialTicks: partial,
			Pose:         p,
			Drivers:      m.instance.Drivers(),
			Montages:     m.instance.Montages().Snapshot(partial),
		}
		for _, o := range m.observers {
			o.OnFrame(f)
		}
	}

	m.frame = (m.frame + 1) % m.framesPerTick
}

func (m Model) input() rig.Input {
	in := rig.Input{Speed: m.speed, Mirrored: m.mirrored}
	if m.script != nil {
		in = m.script(m.instance.Ticks())
	}
	in.Play = append(in.Play, m.pending.Play...)
	in.Interrupt = append(in.Interrupt, m.pending.Interrupt...)
	in.Recoil += m.pending.Recoil
	return in
}

func (m Model) View() string {
	s := m.styles

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	var side strings.Builder
	side.WriteString(s.Status.Render(status) + "\n\n")
	side.WriteString(s.Label.Render("tick") + s.Value.Render(fmt.Sprintf("%d", m.instance.Ticks())) + "\n")
	side.WriteString(s.Label.Render("speed") + s.WeightBar(m.speed, 10) + "\n")
	side.WriteString(s.Label.Render("mirrored") + s.Value.Render(fmt.Sprintf("%t", m.mirrored)) + "\n")
	side.WriteString(s.Label.Render("recoil") + s.Sparkline(m.recoilHistory, 20) + "\n\n")

	side.WriteString(s.Title.Render("MONTAGES") + "\n")
	stack := m.instance.Montages().Snapshot(0)
	if len(stack) == 0 {
		side.WriteString(s.Subtle.Render("none") + "\n")
	}
	for _, info := range stack {
		name := info.Montage
		if info.Interrupted {
			name += "*"
		}
		side.WriteString(s.Label.Render(name) + s.WeightBar(info.Weight, 10) +
			s.Subtle.Render(fmt.Sprintf(" %s/%s", info.Elapsed, info.Length)) + "\n")
	}

	side.WriteString("\n" + s.Title.Render("MARKERS") + "\n")
	for _, line := range m.markers.lines {
		side.WriteString(s.Subtle.Render(line) + "\n")
	}

	arms := s.Panel.Render(m.canvas.String())
	body := lipgloss.JoinHorizontal(lipgloss.Top, arms, "  ", side.String())
	help := s.Subtle.Render("space pause · a/i/f play · x interrupt · w/s speed · m mirror · k recoil · r reset · t theme · q quit")
	return s.Title.Render("POSEGRAPH · "+m.theme.Name) + "\n\n" + body + "\n" + help + "\n"
}
