package attack

import (
	"gonum.org/v1/gonum/stat"

	"github.com/dd0wney/cluso-resilience/pkg/algorithms"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
	"github.com/dd0wney/cluso-resilience/pkg/parallel"
	"github.com/dd0wney/cluso-resilience/pkg/robustness"
)

// SimulateOptions configures Simulate.
//
// Runs > 1 only applies to the random strategy: run i is seeded Seed+i and the
// samples are averaged. Workers > 1 spreads those runs over a worker pool; the
// output does not depend on scheduling.
type SimulateOptions struct {
	Fractions []float64
	Runs      int
	Seed      int64
	Adaptive  bool
	Workers   int
}

// DefaultSimulateOptions returns an adaptive single-run simulation over the
// default fraction ladder.
func DefaultSimulateOptions() SimulateOptions {
	return SimulateOptions{
		Fractions: robustness.DefaultFractions(),
		Runs:      1,
		Adaptive:  true,
	}
}

// SimulateReport carries the curve plus how it was produced
type SimulateReport struct {
	Strategy  Strategy         `json:"strategy"`
	Adaptive  bool             `json:"adaptive"`
	Runs      int              `json:"runs"`
	Fallbacks int              `json:"fallbacks"`
	Curve     robustness.Curve `json:"curve"`
}

// Simulate removes nodes of g in the order given by strategy and samples the
// robustness curve at every fraction. The output has one point per fraction,
// removal counts never decrease, and sizes are normalized by the original
// node count. g is not modified.
func Simulate(g *graph.Graph, s Strategy, opts SimulateOptions) robustness.Curve {
	return SimulateWithReport(g, s, opts).Curve
}

// SimulateWithReport is Simulate plus fallback accounting
func SimulateWithReport(g *graph.Graph, s Strategy, opts SimulateOptions) SimulateReport {
	fractions := opts.Fractions
	if len(fractions) == 0 {
		fractions = robustness.DefaultFractions()
	}

	runs := 1
	if s == Random && opts.Runs > 1 {
		runs = opts.Runs
	}
	report := SimulateReport{Strategy: s, Adaptive: opts.Adaptive, Runs: runs}

	ix := graph.NewIndex(g)
	n0 := ix.Len()
	if n0 == 0 {
		report.Curve = zeroCurve(fractions)
		return report
	}

	// The ordering only needs to reach the largest removal target
	limit := 0
	for _, f := range fractions {
		limit = max(limit, robustness.RemovalTarget(f, n0))
	}

	curves := make([]robustness.Curve, runs)
	fallbacks := make([]int, runs)
	runOne := func(i int) {
		rank := RankOptions{Adaptive: opts.Adaptive, Seed: opts.Seed + int64(i)}
		order, fb := rankHandles(ix, s, limit, rank)
		curves[i] = sampleCurve(ix, order, fractions)
		fallbacks[i] = fb
	}

	if opts.Workers > 1 && runs > 1 {
		// a panicking run leaves its slot empty and is left out of the mean
		_ = parallel.RunIndexed(opts.Workers, runs, runOne)
	} else {
		for i := 0; i < runs; i++ {
			runOne(i)
		}
	}

	completed := curves[:0]
	for i, c := range curves {
		if c != nil {
			completed = append(completed, c)
			report.Fallbacks += fallbacks[i]
		}
	}
	if len(completed) == 0 {
		report.Curve = zeroCurve(fractions)
		return report
	}
	report.Runs = len(completed)
	report.Curve = averageCurves(completed)
	return report
}

func zeroCurve(fractions []float64) robustness.Curve {
	curve := make(robustness.Curve, len(fractions))
	for i, f := range fractions {
		curve[i] = robustness.Point{Fraction: f}
	}
	return curve
}

// sampleCurve consumes order incrementally: at each fraction it removes nodes
// until floor(fraction × N0) are gone, then samples LCC size (÷ N0) and
// diameter of what remains.
func sampleCurve(ix *graph.Index, order []int, fractions []float64) robustness.Curve {
	n0 := ix.Len()
	alive := allAlive(n0)
	curve := make(robustness.Curve, len(fractions))

	removed := 0
	for i, f := range fractions {
		target := robustness.RemovalTarget(f, n0)
		for removed < target && removed < len(order) {
			alive[order[removed]] = false
			removed++
		}

		curve[i] = robustness.Point{
			Fraction: f,
			Removed:  removed,
			LCCNorm:  float64(algorithms.LargestComponentSize(ix, alive)) / float64(n0),
			Diameter: float64(algorithms.DiameterOf(ix, alive)),
		}
	}
	return curve
}

// averageCurves takes the per-fraction arithmetic mean across runs
func averageCurves(curves []robustness.Curve) robustness.Curve {
	if len(curves) == 1 {
		return curves[0]
	}

	out := make(robustness.Curve, len(curves[0]))
	lcc := make([]float64, len(curves))
	diam := make([]float64, len(curves))
	for i := range out {
		for r, c := range curves {
			lcc[r] = c[i].LCCNorm
			diam[r] = c[i].Diameter
		}
		out[i] = robustness.Point{
			Fraction: curves[0][i].Fraction,
			Removed:  curves[0][i].Removed,
			LCCNorm:  stat.Mean(lcc, nil),
			Diameter: stat.Mean(diam, nil),
		}
	}
	return out
}
