package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-resilience/pkg/analysis"
	"github.com/dd0wney/cluso-resilience/pkg/attack"
	"github.com/dd0wney/cluso-resilience/pkg/config"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
	"github.com/dd0wney/cluso-resilience/pkg/robustness"
)

func testModel(t *testing.T) model {
	t.Helper()
	g := graph.New()
	airports := []struct {
		id       graph.NodeID
		code     string
		lat, lon float64
	}{
		{1, "SIN", 1.35, 103.99},
		{2, "KUL", 2.74, 101.70},
		{3, "BKK", 13.69, 100.75},
		{4, "LHR", 51.47, -0.45},
	}
	for _, a := range airports {
		g.AddNode(a.id, graph.NodeAttrs{Name: a.code + " Airport", Code: a.code, Lat: a.lat, Lon: a.lon, HasCoords: true})
	}
	for _, r := range [][2]graph.NodeID{{1, 2}, {1, 3}, {2, 3}, {4, 1}} {
		require.NoError(t, g.AddEdge(r[0], r[1], graph.EdgeAttrs{}))
	}
	defaults := config.AttackConfig{Strategy: "degree", Fractions: []float64{0, 0.5, 1}, Runs: 1, Adaptive: true}
	return initialModel(analysis.NewService(), g, defaults)
}

func press(t *testing.T, m model, msg tea.KeyMsg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(model)
	require.True(t, ok)
	return updated, cmd
}

// drain runs cmd and returns the first attackDoneMsg it yields
func drain(t *testing.T, cmd tea.Cmd) attackDoneMsg {
	t.Helper()
	require.NotNil(t, cmd)
	switch msg := cmd().(type) {
	case attackDoneMsg:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if done, ok := c().(attackDoneMsg); ok {
				return done
			}
		}
	}
	t.Fatal("no attack result")
	return attackDoneMsg{}
}

func TestInitialModel(t *testing.T) {
	m := testModel(t)

	assert.Equal(t, overviewView, m.currentView)
	assert.Equal(t, 4, m.stats.Nodes)
	assert.Equal(t, 4, m.stats.Edges)
	assert.Equal(t, attack.Degree, m.currentStrategy())
	assert.Len(t, m.hubTable.Rows(), 4)
	assert.Equal(t, "SIN", m.hubTable.Rows()[0][1])
	assert.Contains(t, m.View(), "All airports")
}

func TestTabNavigation(t *testing.T) {
	m := testModel(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, hubsView, m.currentView)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, regionsView, m.currentView)
	assert.Contains(t, m.View(), "Southeast Asia")
}

func TestSelectRegion(t *testing.T) {
	m := testModel(t)
	m.currentView = regionsView

	// row 0 is the whole network, row 1 Southeast Asia
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "Southeast Asia", m.regionName())
	assert.Equal(t, 3, m.stats.Nodes)
	assert.Equal(t, 3, m.stats.Edges)
	assert.Len(t, m.hubTable.Rows(), 3)
	assert.Contains(t, m.message, "Southeast Asia")
}

func TestRunAttack(t *testing.T) {
	m := testModel(t)
	m.currentView = attackView

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.Equal(t, attack.Betweenness, m.currentStrategy())

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.running)
	assert.Contains(t, m.View(), "Running")

	// a second enter while running is ignored
	_, again := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)

	done := drain(t, cmd)
	assert.Equal(t, attack.Betweenness, done.report.Strategy)
	require.Len(t, done.report.Curve, 3)

	next, _ := m.Update(done)
	m = next.(model)
	assert.False(t, m.running)
	require.NotNil(t, m.report)
	assert.InDelta(t, 1.0, m.report.Curve[0].LCCNorm, 1e-9)
	assert.Contains(t, m.View(), "R = ")
	assert.Contains(t, m.message, "betweenness_targeted_attack")
}

func TestCurveChart(t *testing.T) {
	chart := curveChart(robustness.Curve{
		{Fraction: 0, LCCNorm: 1},
		{Fraction: 0.5, LCCNorm: 0.5},
	}, 10)

	assert.Contains(t, chart, "██████████ 1.000")
	assert.Contains(t, chart, "█████      0.500")
}
