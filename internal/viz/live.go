package viz

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/rk4sim/internal/dynamo"
	"github.com/san-kum/rk4sim/internal/integrators"
)

const (
	historyCapacity = 600
	maxStepsPerTick = 64
	chartWidth      = 60
	chartHeight     = 12
	tickRate        = time.Second / 30
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Live is an interactive stepping view over a single RK4 integrator.
type Live struct {
	name    string
	sys     dynamo.System
	initial dynamo.System
	integ   *integrators.RK4

	x0 float64
	y0 dynamo.State
	h0 float64

	labels  []string
	times   []float64
	history [][]float64

	running      bool
	stepsPerTick int
	paramKeys    []string
	selected     int
	err          error
}

// NewLive builds the view and its integrator. The initial conditions are
// kept so that reset can restore them.
func NewLive(name string, sys dynamo.System, h, x0 float64, y0 dynamo.State) (*Live, error) {
	integ, err := integrators.NewRK4(sys.Derive, h, x0, y0)
	if err != nil {
		return nil, err
	}

	var keys []string
	if c, ok := sys.(dynamo.Configurable); ok {
		for k := range c.GetParams() {
			keys = append(keys, k)
		}
		slices.Sort(keys)
	}

	m := &Live{
		name:         name,
		sys:          sys,
		initial:      sys,
		integ:        integ,
		x0:           x0,
		y0:           y0.Clone(),
		h0:           h,
		labels:       sys.Labels(),
		running:      true,
		stepsPerTick: 1,
		paramKeys:    keys,
	}
	m.clearHistory()
	return m, nil
}

func (m *Live) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.advance(1)
			}
		case "r":
			m.reset()
		case "+", "=":
			m.setStepSize(m.integ.StepSize() * 2)
		case "-", "_":
			m.setStepSize(m.integ.StepSize() / 2)
		case "d":
			m.setStepSize(-m.integ.StepSize())
		case "f":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "s":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "t":
			SetTheme(NextTheme(CurrentTheme.Name))
		}
	case TickMsg:
		if m.running {
			m.advance(m.stepsPerTick)
		}
		return m, tick()
	}
	return m, nil
}

// advance performs n steps, pausing on the first failure.
func (m *Live) advance(n int) {
	for i := 0; i < n; i++ {
		if err := m.integ.IntegrateStep(); err != nil {
			m.err = err
			m.running = false
			return
		}
		m.record()
	}
}

func (m *Live) record() {
	m.times = append(m.times, m.integ.CurrentPoint())
	for i, v := range m.integ.CurrentValues() {
		m.history[i] = append(m.history[i], v)
	}
	if len(m.times) > historyCapacity {
		m.times = m.times[1:]
		for i := range m.history {
			m.history[i] = m.history[i][1:]
		}
	}
}

func (m *Live) clearHistory() {
	m.times = m.times[:0]
	m.history = make([][]float64, m.integ.Dim())
	for i := range m.history {
		m.history[i] = make([]float64, 0, historyCapacity)
	}
	m.record()
}

func (m *Live) setStepSize(h float64) {
	if err := m.integ.SetStepSize(h); err != nil {
		m.err = err
		return
	}
	m.err = nil
}

// reset restores the initial system, step size and initial conditions.
func (m *Live) reset() {
	m.sys = m.initial
	err := errors.Join(
		m.integ.SetFunction(m.initial.Derive),
		m.integ.SetStepSize(m.h0),
		m.integ.SetInitialPoint(m.x0),
		m.integ.SetInitialValues(m.y0),
	)
	m.err = err
	m.clearHistory()
}

func (m *Live) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

// adjustParam scales the selected parameter and swaps the integrator's
// derivative function for the retuned system.
func (m *Live) adjustParam(factor float64) {
	c, ok := m.sys.(dynamo.Configurable)
	if !ok || len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	next, err := c.WithParam(key, c.GetParams()[key]*factor)
	if err != nil {
		m.err = err
		return
	}
	if err := m.integ.SetFunction(next.Derive); err != nil {
		m.err = err
		return
	}
	m.sys = next
	m.err = nil
}

func (m *Live) Params() map[string]float64 {
	if c, ok := m.sys.(dynamo.Configurable); ok {
		return c.GetParams()
	}
	return nil
}

func (m *Live) Integrator() *integrators.RK4 { return m.integ }
func (m *Live) Running() bool                { return m.running }
func (m *Live) Err() error                   { return m.err }

// View renders the chart and the stats panel side by side.
func (m *Live) View() string {
	header := HeaderStyle.Foreground(CurrentTheme.Primary).Render(strings.ToUpper(m.name))

	status := StatusRunning.Render("RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}

	chart := ""
	if len(m.times) > 1 {
		opts := PlotOptions{Width: chartWidth, Height: chartHeight, Precision: 3}
		chart, _ = PlotSeries(m.history, m.labels, opts)
	}

	var s strings.Builder
	s.WriteString(row("x", fmt.Sprintf("%.4f", m.integ.CurrentPoint())))
	s.WriteString(row("h", fmt.Sprintf("%.4g", m.integ.StepSize())))
	s.WriteString(row("steps/tick", fmt.Sprintf("%d", m.stepsPerTick)))
	s.WriteString(row("evals", fmt.Sprintf("%d", m.integ.Evaluations())))
	s.WriteString(Separator(30) + "\n")

	y := m.integ.CurrentValues()
	fractions := inUnitInterval(y)
	for i, v := range y {
		label := fmt.Sprintf("y%d", i)
		if i < len(m.labels) {
			label = m.labels[i]
		}
		s.WriteString(row(label, fmt.Sprintf("%.6g", v)))
		if fractions {
			s.WriteString("  " + ProgressBar(v, 20) + "\n")
		} else {
			s.WriteString("  " + SparklineChart(m.history[i], 20) + "\n")
		}
	}

	s.WriteString("\nPARAMETERS\n")
	params := m.Params()
	if len(m.paramKeys) == 0 {
		s.WriteString(Subtle.Render("  (none)") + "\n")
	}
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-10s %.4g", k, params[k])
		if i == m.selected {
			s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true).Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + MetricLabel.Render(line) + "\n")
		}
	}

	if m.err != nil {
		s.WriteString("\n" + ErrorStyle.Render(m.err.Error()) + "\n")
	}

	s.WriteString("\n" + KeyHint.Render("SP:Pause N:Step R:Reset Q:Quit\n+/-:h D:Reverse F/S:Speed\nTab:Param ↑↓:Tune T:Theme"))

	stats := GlassPanel.Render(s.String())
	return lipgloss.JoinVertical(lipgloss.Left,
		header+"  "+status,
		lipgloss.JoinHorizontal(lipgloss.Top, chart, "  ", stats),
	)
}

func row(label, value string) string {
	return MetricLabel.Width(12).Render(label) + MetricValue.Render(value) + "\n"
}

func inUnitInterval(y dynamo.State) bool {
	for _, v := range y {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// RunLive starts the interactive program on the current terminal.
func RunLive(m *Live) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
