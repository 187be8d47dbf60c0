package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-resilience/pkg/algorithms"
	"github.com/dd0wney/cluso-resilience/pkg/analysis"
	"github.com/dd0wney/cluso-resilience/pkg/attack"
	"github.com/dd0wney/cluso-resilience/pkg/config"
	"github.com/dd0wney/cluso-resilience/pkg/geo"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
	"github.com/dd0wney/cluso-resilience/pkg/precomputed"
	"github.com/dd0wney/cluso-resilience/pkg/robustness"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	curveBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFFF00")).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	overviewView view = iota
	hubsView
	attackView
	regionsView
)

var tabs = []string{"Overview", "Hubs", "Attack", "Regions"}

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Enter    key.Binding
	Strategy key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run / select"),
	),
	Strategy: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "next strategy"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.Strategy, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Enter, k.Strategy},
		{k.Up, k.Down, k.Quit},
	}
}

type tickMsg time.Time

// attackDoneMsg carries a finished simulation back to the model
type attackDoneMsg struct {
	report  attack.SimulateReport
	elapsed time.Duration
}

type model struct {
	svc      *analysis.Service
	full     *graph.Graph
	network  *graph.Graph
	defaults config.AttackConfig

	regions []precomputed.Region
	region  int // -1 is the whole network

	currentView view
	stats       algorithms.GraphStats
	hubTable    table.Model
	regionTable table.Model
	help        help.Model

	strategy int
	running  bool
	report   *attack.SimulateReport
	elapsed  time.Duration

	width      int
	height     int
	message    string
	messageErr bool
	startTime  time.Time
}

func initialModel(svc *analysis.Service, g *graph.Graph, defaults config.AttackConfig) model {
	hubColumns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "IATA", Width: 6},
		{Title: "Name", Width: 36},
		{Title: "Country", Width: 18},
		{Title: "Degree", Width: 8},
	}
	hubTable := table.New(
		table.WithColumns(hubColumns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	regionColumns := []table.Column{
		{Title: "Key", Width: 16},
		{Title: "Name", Width: 20},
		{Title: "Latitude", Width: 16},
		{Title: "Longitude", Width: 18},
	}
	regionTable := table.New(
		table.WithColumns(regionColumns),
		table.WithFocused(true),
		table.WithHeight(8),
	)

	m := model{
		svc:         svc,
		full:        g,
		defaults:    defaults,
		regions:     precomputed.Regions(),
		region:      -1,
		currentView: overviewView,
		hubTable:    hubTable,
		regionTable: regionTable,
		help:        help.New(),
		startTime:   time.Now(),
	}
	if s, err := attack.ParseStrategy(defaults.Strategy); err == nil {
		for i, candidate := range attack.Strategies() {
			if candidate == s {
				m.strategy = i
			}
		}
	}
	m.regionTable.SetRows(m.regionRows())
	m.selectRegion(-1)
	return m
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tickCmd()
}

// selectRegion narrows the analysed network to region i, or the whole
// network when i is -1, and refreshes the derived views.
func (m *model) selectRegion(i int) {
	m.region = i
	m.network = m.full
	if i >= 0 {
		m.network = geo.Filter(m.full, m.regions[i].BBox)
	}
	m.stats = m.svc.GetStats(m.network)
	m.report = nil
	m.hubTable.SetRows(m.hubRows())
}

func (m model) regionName() string {
	if m.region < 0 {
		return "All airports"
	}
	return m.regions[m.region].Name
}

func (m model) currentStrategy() attack.Strategy {
	return attack.Strategies()[m.strategy]
}

func (m model) hubRows() []table.Row {
	ranking := m.svc.TopHubs(m.network, 15)
	rows := make([]table.Row, 0, len(ranking.ByDegree))
	for i, h := range ranking.ByDegree {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			h.Code,
			h.Name,
			h.Country,
			fmt.Sprintf("%.0f", h.Score),
		})
	}
	return rows
}

func (m model) regionRows() []table.Row {
	rows := []table.Row{{"all", "All airports", "", ""}}
	for _, r := range m.regions {
		rows = append(rows, table.Row{
			r.Key,
			r.Name,
			fmt.Sprintf("%.1f .. %.1f", *r.BBox.MinLat, *r.BBox.MaxLat),
			fmt.Sprintf("%.1f .. %.1f", *r.BBox.MinLon, *r.BBox.MaxLon),
		})
	}
	return rows
}

// runAttack simulates the selected strategy off the UI goroutine
func (m model) runAttack() tea.Cmd {
	svc, g, strategy := m.svc, m.network, m.currentStrategy()
	opts := attack.SimulateOptions{
		Fractions: m.defaults.Fractions,
		Runs:      m.defaults.Runs,
		Seed:      m.defaults.Seed,
		Adaptive:  m.defaults.Adaptive,
	}
	if !robustness.ValidFractions(opts.Fractions) {
		opts.Fractions = robustness.DefaultFractions()
	}
	return func() tea.Msg {
		start := time.Now()
		report := svc.SimulateAttack(g, strategy, opts)
		return attackDoneMsg{report: report, elapsed: time.Since(start)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		cmds = append(cmds, tickCmd())

	case attackDoneMsg:
		m.running = false
		m.report = &msg.report
		m.elapsed = msg.elapsed
		m.message = fmt.Sprintf("%s finished, R = %.4f", msg.report.Strategy.LegacyName(), msg.report.Curve.RIndex())
		m.messageErr = false

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Tab):
			m.currentView = (m.currentView + 1) % view(len(tabs))
			m.message = ""

		case key.Matches(msg, keys.ShiftTab):
			m.currentView = (m.currentView + view(len(tabs)) - 1) % view(len(tabs))
			m.message = ""

		case key.Matches(msg, keys.Strategy) && m.currentView == attackView:
			m.strategy = (m.strategy + 1) % len(attack.Strategies())
			m.report = nil

		case key.Matches(msg, keys.Enter):
			switch m.currentView {
			case attackView:
				if m.running {
					break
				}
				if m.network.NodeCount() == 0 {
					m.message = "no airports in " + m.regionName()
					m.messageErr = true
					break
				}
				m.running = true
				m.message = "simulating " + string(m.currentStrategy()) + "..."
				m.messageErr = false
				cmds = append(cmds, m.runAttack())
			case regionsView:
				m.selectRegion(m.regionTable.Cursor() - 1)
				m.message = "region: " + m.regionName()
				m.messageErr = false
			}

		default:
			var cmd tea.Cmd
			switch m.currentView {
			case hubsView:
				m.hubTable, cmd = m.hubTable.Update(msg)
			case regionsView:
				m.regionTable, cmd = m.regionTable.Update(msg)
			}
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("✈ Airline Network Resilience"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n")

	switch m.currentView {
	case overviewView:
		s.WriteString(m.renderOverview())
	case hubsView:
		s.WriteString(m.renderHubs())
	case attackView:
		s.WriteString(m.renderAttack())
	case regionsView:
		s.WriteString(m.renderRegions())
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.View(keys)))

	return s.String()
}

func (m model) renderTabs() string {
	var renderedTabs []string

	for i, tab := range tabs {
		if view(i) == m.currentView {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

func (m model) renderOverview() string {
	uptime := time.Since(m.startTime).Round(time.Second)

	statsContent := fmt.Sprintf(`Network: %s
───────────────────
Airports:    %d
Routes:      %d
Components:  %d
Largest CC:  %.4f
Diameter:    %d
Clustering:  %.4f`,
		m.regionName(),
		m.stats.Nodes,
		m.stats.Edges,
		m.stats.Components,
		m.stats.LCCNorm,
		m.stats.Diameter,
		m.stats.Clustering,
	)

	sessionContent := fmt.Sprintf(`Session
───────────────────
Uptime:      %s
Strategy:    %s
Loaded:      %d airports`,
		uptime,
		m.currentStrategy(),
		m.full.NodeCount(),
	)
	if m.report != nil {
		sessionContent += fmt.Sprintf("\nLast R:      %.4f", m.report.Curve.RIndex())
	}

	return contentStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Top, statsBoxStyle.Render(statsContent), statsBoxStyle.Render(sessionContent)),
	)
}

func (m model) renderHubs() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Top hubs by degree: " + m.regionName()))
	s.WriteString("\n\n")
	s.WriteString(m.hubTable.View())

	return contentStyle.Render(s.String())
}

func (m model) renderAttack() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render(fmt.Sprintf("Attack: %s on %s", m.currentStrategy().LegacyName(), m.regionName())))
	s.WriteString("\n\n")

	switch {
	case m.running:
		s.WriteString(helpStyle.Render("Running..."))
	case m.report == nil:
		s.WriteString(helpStyle.Render("Press enter to simulate, s to change strategy"))
	default:
		s.WriteString(curveBoxStyle.Render(curveChart(m.report.Curve, 40)))
		s.WriteString("\n")
		s.WriteString(fmt.Sprintf("R = %.4f  runs %d  adaptive %v  %s",
			m.report.Curve.RIndex(), m.report.Runs, m.report.Adaptive, m.elapsed.Round(time.Millisecond)))
		if m.report.Fallbacks > 0 {
			s.WriteString("\n")
			s.WriteString(errorStyle.Render(fmt.Sprintf("pagerank fell back to degree %d times", m.report.Fallbacks)))
		}
	}

	return contentStyle.Render(s.String())
}

func (m model) renderRegions() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Regions"))
	s.WriteString("\n\n")
	s.WriteString(m.regionTable.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("Press enter to analyse the highlighted region"))

	return contentStyle.Render(s.String())
}

// curveChart draws one bar per removal fraction, scaled to width
func curveChart(c robustness.Curve, width int) string {
	var s strings.Builder
	for _, p := range c {
		n := int(p.LCCNorm*float64(width) + 0.5)
		s.WriteString(fmt.Sprintf("%5.2f │%-*s %.3f\n", p.Fraction, width, strings.Repeat("█", n), p.LCCNorm))
	}
	return strings.TrimRight(s.String(), "\n")
}
