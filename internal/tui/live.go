// Package tui renders a burn live in the terminal while the driver runs.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kestrel-aero/motorsim/internal/sim"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

const historyLen = 72

type stateMsg sim.State

type doneMsg struct {
	result *sim.Result
	err    error
}

type model struct {
	motor   string
	maxTime float64
	cancel  context.CancelFunc

	last     sim.State
	steps    int
	thrust   []float64
	pressure []float64

	result *sim.Result
	err    error
	done   bool

	width  int
	height int
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "escape":
			m.cancel()
			if m.done {
				return m, tea.Quit
			}
			return m, nil
		case "enter":
			if m.done {
				return m, tea.Quit
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case stateMsg:
		m.last = sim.State(msg)
		m.steps++
		m.thrust = push(m.thrust, m.last.Thrust)
		m.pressure = push(m.pressure, m.last.Pressure)
		return m, nil
	case doneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func push(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyLen {
		hist = hist[1:]
	}
	return hist
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("   ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("        " + cyan.Render("m o t o r s i m") + "\n")
	b.WriteString(dimmer.Render("   ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n\n")

	status := green.Render("● burning")
	if m.done {
		switch {
		case m.err != nil:
			status = red.Render("✗ " + m.err.Error())
		case m.result != nil && m.result.Status == sim.Failed:
			status = red.Render("✗ failed")
		case m.result != nil && m.result.Truncated:
			status = yellow.Render("○ truncated at time limit")
		default:
			status = green.Render("✓ burnout")
		}
	}
	b.WriteString("   " + cyan.Render(m.motor) + "  " + status + "\n")

	progress := 0.0
	if m.maxTime > 0 {
		progress = m.last.Time / m.maxTime
	}
	if progress > 1 {
		progress = 1
	}
	barWidth := 36
	filled := int(progress * float64(barWidth))
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s\n\n", bar, dim.Render(fmt.Sprintf("t=%.2fs", m.last.Time))))

	b.WriteString("   " + dim.Render("thrust   ") + cyan.Render(sparkline(m.thrust, 48)) + "\n")
	b.WriteString("   " + dim.Render("pressure ") + yellow.Render(sparkline(m.pressure, 48)) + "\n\n")

	b.WriteString("   " + row("P", m.last.Pressure/1e5, "bar") +
		row("F", m.last.Thrust, "N") +
		row("Isp", m.last.Isp, "s") + "\n")
	b.WriteString("   " + row("r", m.last.Radius*1000, "mm") +
		row("ṁ", m.last.MassFlow, "kg/s") +
		ofRow(m.last.MixtureRatio) + "\n")

	if m.done && m.result != nil {
		s := m.result.Summary
		b.WriteString("\n" + dimmer.Render("   "+strings.Repeat("─", 48)) + "\n")
		b.WriteString(fmt.Sprintf("   %s %s   %s %s\n",
			dim.Render("total impulse"), white.Render(fmt.Sprintf("%.1f N·s", s.TotalImpulse)),
			dim.Render("burn time"), white.Render(fmt.Sprintf("%.2f s", s.BurnTime))))
		b.WriteString(fmt.Sprintf("   %s %s   %s %s\n",
			dim.Render("peak thrust  "), white.Render(fmt.Sprintf("%.1f N", s.MaxThrust)),
			dim.Render("delivered isp"), white.Render(fmt.Sprintf("%.1f s", s.DeliveredIsp))))
		b.WriteString("\n" + dim.Render("   enter or q to exit") + "\n")
	} else {
		b.WriteString("\n" + dim.Render("   q abort") + "\n")
	}

	return b.String()
}

func row(label string, v float64, unit string) string {
	return dim.Render(label+"=") + white.Render(fmt.Sprintf("%.2f", v)) + dim.Render(unit) + "  "
}

func ofRow(of float64) string {
	if of == 0 {
		return ""
	}
	return dim.Render("O/F=") + white.Render(fmt.Sprintf("%.2f", of))
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return dimmer.Render(strings.Repeat("─", width))
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		idx := int((data[i*step] - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

type programObserver struct {
	p *tea.Program
}

func (o programObserver) OnStep(s sim.State) {
	o.p.Send(stateMsg(s))
}

// Run drives one simulation and streams every committed state into the
// terminal view. It returns the run result once the view exits.
func Run(ctx context.Context, d *sim.Driver, motor string, maxTime float64) (*sim.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := model{motor: motor, maxTime: maxTime, cancel: cancel, width: 80, height: 24}
	p := tea.NewProgram(m, tea.WithContext(ctx))

	d.AddObserver(programObserver{p: p})

	var result *sim.Result
	var runErr error
	finished := make(chan struct{})
	go func() {
		result, runErr = d.Run(ctx)
		p.Send(doneMsg{result: result, err: runErr})
		close(finished)
	}()

	_, viewErr := p.Run()
	cancel()
	<-finished
	if runErr == nil && viewErr != nil && !errors.Is(viewErr, context.Canceled) {
		runErr = viewErr
	}
	return result, runErr
}
