package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles derived from a Theme.
type Styles struct {
	Title  lipgloss.Style
	Panel  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Subtle lipgloss.Style
	Status lipgloss.Style
	high   lipgloss.Style
	mid    lipgloss.Style
	low    lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(t.Muted),
		Panel:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Muted).Padding(0, 1),
		Label:  lipgloss.NewStyle().Foreground(t.Muted).Width(14),
		Value:  lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		Subtle: lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Status: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		high:   lipgloss.NewStyle().Foreground(t.High),
		mid:    lipgloss.NewStyle().Foreground(t.Mid),
		low:    lipgloss.NewStyle().Foreground(t.Low),
	}
}

func (s Styles) graded(norm float64, text string) string {
	switch {
	case norm > 0.7:
		return s.high.Render(text)
	case norm > 0.3:
		return s.mid.Render(text)
	}
	return s.low.Render(text)
}

// WeightBar renders a blend weight in [0,1] as a filled bar.
func (s Styles) WeightBar(weight float64, width int) string {
	filled := int(weight*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return s.graded(weight, strings.Repeat("█", filled)) + s.Subtle.Render(strings.Repeat("░", width-filled))
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders the most recent width values, scaled to their own range.
func (s Styles) Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return s.Subtle.Render(strings.Repeat("─", width))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for _, v := range values {
		norm := (v - lo) / span
		idx := int(norm * float64(len(sparkChars)-1))
		b.WriteString(s.graded(norm, string(sparkChars[idx])))
	}
	return b.String()
}

// MetricsTable lists metrics sorted by name.
func (s Styles) MetricsTable(metrics map[string]float64) string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(s.Label.Width(24).Render(name))
		b.WriteString(s.Value.Render(fmt.Sprintf("%.4f", metrics[name])))
		b.WriteByte('\n')
	}
	return b.String()
}
