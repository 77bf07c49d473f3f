// SPDX-License-Identifier: MIT

// Package tui renders the terminal front-end: live peak meters with gain
// control, and a browsable device list.
package tui

import (
	"fmt"
	"strings"
	"time"

	"sidegain/internal/audio"
	"sidegain/internal/dsp"
	"sidegain/internal/param"
	"sidegain/internal/state"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// meterRefreshInterval paces meter redraws at roughly 30 Hz.
const meterRefreshInterval = 33 * time.Millisecond

// gainStepDB is the per-keypress gain adjustment.
const gainStepDB = 1.0

var (
	meterLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Bold(true)

	meterBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065"))

	meterBarHotStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#D94F4F"))

	meterValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A0A0A0"))
)

// MeterEngine is the slice of the engine the meter view needs.
type MeterEngine interface {
	Processor() *audio.Processor
	SetDisplayActive(active bool)
}

// MeterModel is the Bubble Tea model for the live meter display.
type MeterModel struct {
	engine MeterEngine
	editor state.EditorState
	ready  bool
}

type tickMsg time.Time

// NewMeterModel creates a meter display bound to the given engine. The
// stored editor geometry seeds the initial layout until the first
// WindowSizeMsg arrives.
func NewMeterModel(engine MeterEngine, editor state.EditorState) MeterModel {
	return MeterModel{engine: engine, editor: editor}
}

// EditorState returns the last observed display geometry, for persistence.
func (m MeterModel) EditorState() state.EditorState {
	return m.editor
}

func tick() tea.Cmd {
	return tea.Tick(meterRefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init marks the display as active so the real-time path feeds the meters.
func (m MeterModel) Init() tea.Cmd {
	m.engine.SetDisplayActive(true)
	return tick()
}

func (m MeterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.editor.Width = msg.Width
		m.editor.Height = msg.Height
		m.ready = true

	case tickMsg:
		// Meters are re-read from the processor on every View call; the
		// tick only forces a redraw.
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))):
			m.engine.SetDisplayActive(false)
			return m, tea.Quit

		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			adjustGain(m.engine.Processor().Gain(), gainStepDB)

		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			adjustGain(m.engine.Processor().Gain(), -gainStepDB)

		case key.Matches(msg, key.NewBinding(key.WithKeys("right", "l"))):
			adjustGain(m.engine.Processor().SideChainGain(), gainStepDB)

		case key.Matches(msg, key.NewBinding(key.WithKeys("left", "h"))):
			adjustGain(m.engine.Processor().SideChainGain(), -gainStepDB)

		case key.Matches(msg, key.NewBinding(key.WithKeys("r"))):
			m.engine.Processor().MainPeak().Reset()
			m.engine.Processor().SideChainPeak().Reset()
		}
	}

	return m, nil
}

// adjustGain nudges a gain parameter by deltaDB, clamping to the parameter's
// range so key repeats park at the endpoints instead of erroring.
func adjustGain(p *param.Parameter, deltaDB float64) {
	db := dsp.GainToDb(p.Target()) + deltaDB

	minDB := dsp.GainToDb(p.Range().Min())
	maxDB := dsp.GainToDb(p.Range().Max())
	if db < minDB {
		db = minDB
	}
	if db > maxDB {
		db = maxDB
	}

	// Values this close to the floor mean "off".
	gain := 0.0
	if db > dsp.MinusInfinityDB {
		gain = dsp.DbToGain(db)
	}
	_ = p.SetTarget(gain)
}

// View renders both meters and the current gain settings.
func (m MeterModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	p := m.engine.Processor()

	barWidth := m.editor.Width - 30
	if barWidth < 10 {
		barWidth = 10
	}

	var sb strings.Builder
	sb.WriteString(meterLabelStyle.Render("Gain Stage"))
	sb.WriteString("\n\n")
	sb.WriteString(renderMeter("Main", p.MainPeak().Load(), barWidth))
	sb.WriteString("\n")
	sb.WriteString(renderMeter("Side", p.SideChainPeak().Load(), barWidth))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("  Gain: %s    Side-Chain Gain: %s\n",
		p.Gain().Format(p.Gain().Target()),
		p.SideChainGain().Format(p.SideChainGain().Target())))
	sb.WriteString("\n")
	sb.WriteString(meterValueStyle.Render(
		"↑/↓: Gain • ←/→: Side-Chain Gain • r: Reset Meters • q: Quit"))
	return sb.String()
}

// renderMeter draws one horizontal peak bar with its dB readout.
func renderMeter(label string, peak float64, width int) string {
	db := dsp.GainToDb(peak)
	filled := int(dsp.MeterNormalized(db) * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	style := meterBarStyle
	if db > -3.0 {
		style = meterBarHotStyle
	}

	return fmt.Sprintf("  %-5s %s %s", label, style.Render(bar), meterValueStyle.Render(formatDB(db)))
}

// formatDB renders a dBFS readout with the silence floor shown as -inf.
func formatDB(db float64) string {
	if db <= dsp.MinusInfinityDB {
		return "  -inf dBFS"
	}
	return fmt.Sprintf("%6.1f dBFS", db)
}

// RunMeterUI runs the meter display until the user quits and returns the
// final display geometry for persistence.
func RunMeterUI(engine MeterEngine, editor state.EditorState) (state.EditorState, error) {
	p := tea.NewProgram(
		NewMeterModel(engine, editor),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	engine.SetDisplayActive(false)
	if err != nil {
		return editor, err
	}
	if mm, ok := final.(MeterModel); ok {
		return mm.EditorState(), nil
	}
	return editor, nil
}
