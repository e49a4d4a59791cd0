package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/multiphys/internal/coupling"
	"github.com/san-kum/multiphys/internal/sim"
)

const (
	graphWidth      = 64
	graphHeight     = 10
	historyCapacity = 600
	stepsPerFrame   = 5
	frameInterval   = 50 * time.Millisecond
)

// trace selects which history the graph panel draws.
type trace int

const (
	traceEnergy trace = iota
	traceEntropy
	traceCount
)

func (t trace) label() string {
	switch t {
	case traceEntropy:
		return "total entropy"
	default:
		return "total energy"
	}
}

type TickMsg time.Time

// Model drives a runner from the animation loop and renders the system
// state each frame.
type Model struct {
	runner *sim.Runner
	orch   *coupling.Orchestrator

	running bool
	graphed trace

	energyHist  []float64
	entropyHist []float64
	lastErr     string
}

func NewModel(runner *sim.Runner) Model {
	return Model{
		runner:      runner,
		orch:        runner.Orchestrator(),
		running:     true,
		energyHist:  make([]float64, 0, historyCapacity),
		entropyHist: make([]float64, 0, historyCapacity),
	}
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.runner.Reset()
			m.energyHist = m.energyHist[:0]
			m.entropyHist = m.entropyHist[:0]
			m.lastErr = ""
			m.running = true
		case "tab":
			m.graphed = (m.graphed + 1) % traceCount
		}
		return m, nil

	case TickMsg:
		if m.running && m.lastErr == "" {
			for i := 0; i < stepsPerFrame; i++ {
				if err := m.orch.Step(m.runner.Config().Dt); err != nil {
					m.lastErr = err.Error()
					m.running = false
					break
				}
			}
			snap := m.orch.Snapshot()
			m.energyHist = appendBounded(m.energyHist, snap.Energy)
			m.entropyHist = appendBounded(m.entropyHist, snap.Entropy)
		}
		return m, tick()
	}
	return m, nil
}

func appendBounded(hist []float64, v float64) []float64 {
	if len(hist) >= historyCapacity {
		hist = hist[1:]
	}
	return append(hist, v)
}

func (m Model) View() string {
	var b strings.Builder

	title := fmt.Sprintf("multiphys · %s", m.runner.Config().Name)
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	b.WriteString(m.renderGraph())
	b.WriteString("\n")

	left := m.renderRings()
	right := m.renderStats()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))

	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(alertStyle.Render("fault: " + m.lastErr))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space pause · r reset · tab graph · q quit"))
	return b.String()
}

func (m Model) renderGraph() string {
	hist := m.energyHist
	if m.graphed == traceEntropy {
		hist = m.entropyHist
	}
	if len(hist) < 2 {
		return graphStyle.Render("collecting samples...")
	}
	graph := asciigraph.Plot(hist,
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.Caption(m.graphed.label()),
	)
	return graphStyle.Render(graph)
}

func (m Model) renderRings() string {
	var b strings.Builder
	for _, id := range m.orch.RingIDs() {
		r, _ := m.orch.Ring(id)
		e := r.Energy()
		s := r.Entropy()
		b.WriteString(fmt.Sprintf("%s  E=%10.4f  S=%8.4f\n",
			labelStyle.Render(id), e.Total, s.Total))
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderStats() string {
	snap := m.orch.Snapshot()

	status := statusRunning.Render("running")
	if !m.running {
		status = statusPaused.Render("paused")
	}

	rows := []struct {
		k, v string
	}{
		{"status", status},
		{"time", fmt.Sprintf("%.3f", snap.Time)},
		{"steps", fmt.Sprintf("%d", m.orch.Steps())},
		{"energy", fmt.Sprintf("%.6f", snap.Energy)},
		{"entropy", fmt.Sprintf("%.6f", snap.Entropy)},
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(labelStyle.Render(row.k))
		b.WriteString(valueStyle.Render(row.v))
		b.WriteString("\n")
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderTrace plots a finished run's series without the interactive loop,
// for the plain `run` command output.
func RenderTrace(values []float64, caption string) string {
	if len(values) < 2 {
		return ""
	}
	samples := values
	if len(samples) > graphWidth*4 {
		stride := len(samples) / (graphWidth * 4)
		down := make([]float64, 0, graphWidth*4)
		for i := 0; i < len(samples); i += stride {
			down = append(down, samples[i])
		}
		samples = down
	}
	return asciigraph.Plot(samples,
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.Caption(caption),
	)
}

// SummaryTable formats a run's final record as aligned key/value lines,
// keys sorted for stable output.
func SummaryTable(record map[string]float64) string {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("  %-28s %g\n", k, record[k]))
	}
	return b.String()
}
