package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-resilience/pkg/algorithms"
	"github.com/dd0wney/cluso-resilience/pkg/analysis"
	"github.com/dd0wney/cluso-resilience/pkg/attack"
	"github.com/dd0wney/cluso-resilience/pkg/redundancy"
	"github.com/dd0wney/cluso-resilience/pkg/robustness"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF99"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Width(22)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00"))
)

// render writes v as indented JSON with --output json, otherwise as text
func render[T any](a *app, v T, text func(io.Writer, T)) error {
	if strings.EqualFold(a.v.GetString(keyOutput), "json") {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(a.out, v)
	return nil
}

func row(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "%s %v\n", labelStyle.Render(label), value)
}

func renderStats(w io.Writer, s algorithms.GraphStats) {
	fmt.Fprintln(w, titleStyle.Render("Network"))
	row(w, "nodes", s.Nodes)
	row(w, "edges", s.Edges)
	row(w, "components", s.Components)
	row(w, "largest component", fmt.Sprintf("%.4f", s.LCCNorm))
	row(w, "diameter", s.Diameter)
	row(w, "avg shortest path", fmt.Sprintf("%.4f", s.ASPL))
	row(w, "triangles", s.Triangles)
	row(w, "avg clustering", fmt.Sprintf("%.4f", s.Clustering))
}

func renderCurve(w io.Writer, c robustness.Curve) {
	fmt.Fprintf(w, "  %8s %8s %10s %9s\n", "fraction", "removed", "lcc_norm", "diameter")
	for _, p := range c {
		fmt.Fprintf(w, "  %8.3f %8d %10.4f %9.2f\n", p.Fraction, p.Removed, p.LCCNorm, p.Diameter)
	}
}

func renderSimulation(w io.Writer, r attack.SimulateReport) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Attack: %s", r.Strategy.LegacyName())))
	row(w, "adaptive", r.Adaptive)
	row(w, "runs", r.Runs)
	row(w, "R", fmt.Sprintf("%.4f", r.Curve.RIndex()))
	if r.Fallbacks > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("pagerank fell back to degree %d times", r.Fallbacks)))
	}
	renderCurve(w, r.Curve)
}

func renderDefense(w io.Writer, d analysis.DefenseImpact) {
	fmt.Fprintln(w, titleStyle.Render("Effective-resistance reinforcement"))
	row(w, "method", d.Defense.Method)
	row(w, "candidates scored", d.Defense.Scored)
	row(w, "routes added", len(d.AddedEdges))
	row(w, "edges before", d.BaselineOriginal.Edges)
	row(w, "edges after", d.BaselineReinforced.Edges)
	row(w, "attack", d.Strategy.LegacyName())
	row(w, "R original", fmt.Sprintf("%.4f", d.RIndexOriginal))
	row(w, "R reinforced", fmt.Sprintf("%.4f", d.RIndexReinforced))
	if d.Defense.Fallback {
		fmt.Fprintln(w, warnStyle.Render("fallback: "+d.Defense.FallbackReason))
	}
}

func renderSwap(w io.Writer, s analysis.SwapImpact) {
	fmt.Fprintln(w, titleStyle.Render("Onion rewiring"))
	row(w, "trials", s.Info.Trials)
	row(w, "accepted swaps", s.Info.AcceptedSwaps)
	row(w, "stopped by patience", s.Info.StoppedByPatience)
	row(w, "R initial", fmt.Sprintf("%.4f", s.Info.RInitial))
	row(w, "R best", fmt.Sprintf("%.4f", s.Info.RBest))
	row(w, "attack", s.Strategy.LegacyName())
	row(w, "R original", fmt.Sprintf("%.4f", s.AttackOriginal.Curve.RIndex()))
	row(w, "R optimized", fmt.Sprintf("%.4f", s.AttackOptimized.Curve.RIndex()))
}

func renderSuggestions(w io.Writer, suggestions []redundancy.Suggestion) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Backup routes (%d)", len(suggestions))))
	for _, s := range suggestions {
		fmt.Fprintf(w, "  %-4s - %-4s %8.0f km  lcc %+.4f  aspl %+.4f\n",
			s.SourceCode, s.TargetCode, s.DistanceKM, s.LCCGain, s.ASPLGain)
	}
}

func renderPrecompute(w io.Writer, s PrecomputeSummary) {
	fmt.Fprintln(w, titleStyle.Render("Precomputed regions"))
	row(w, "file", s.Path)
	row(w, "regions", strings.Join(s.Regions, ", "))
	if s.Uploaded != "" {
		row(w, "uploaded", s.Uploaded)
	}
}
