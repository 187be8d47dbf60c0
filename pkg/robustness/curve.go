// Package robustness holds the robustness-curve abstraction shared by the
// attack simulator and the optimizers: sampled curves, fraction ladders, the
// integrated R-index and the union-find curve evaluator.
package robustness

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
)

// Point is one sample of a robustness curve
type Point struct {
	Fraction float64 `json:"fraction"`
	Removed  int     `json:"removed"`
	LCCNorm  float64 `json:"lcc_norm"`
	Diameter float64 `json:"diameter"`
}

// Curve is an ordered sequence of samples with non-decreasing fractions.
// LCCNorm is always relative to the original node count.
type Curve []Point

// Fractions returns the fraction axis
func (c Curve) Fractions() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.Fraction
	}
	return out
}

// LCCNorms returns the normalized largest-component sizes
func (c Curve) LCCNorms() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.LCCNorm
	}
	return out
}

// Diameters returns the diameter samples
func (c Curve) Diameters() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.Diameter
	}
	return out
}

// RIndex integrates the curve's LCCNorm over its fraction axis
func (c Curve) RIndex() float64 {
	return RIndex(c.Fractions(), c.LCCNorms())
}

// DefaultFractions returns the attack ladder 0.00, 0.05, ..., 0.50
func DefaultFractions() []float64 {
	out := make([]float64, 11)
	for i := range out {
		out[i] = float64(i) / 20
	}
	return out
}

// DefaultWindow returns the R-index sampling window: 21 points over [0, 0.30]
func DefaultWindow() []float64 {
	return FractionLadder(0, 0.30, 21)
}

// FractionLadder returns points evenly spaced values from start to stop inclusive
func FractionLadder(start, stop float64, points int) []float64 {
	switch {
	case points <= 0:
		return nil
	case points == 1:
		return []float64{start}
	}

	out := make([]float64, points)
	step := (stop - start) / float64(points-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[points-1] = stop
	return out
}

// fractionEpsilon absorbs binary rounding so that 0.35*20 counts as 7
const fractionEpsilon = 1e-9

// RemovalTarget returns floor(fraction × n0) clamped to [0, n0]
func RemovalTarget(fraction float64, n0 int) int {
	r := int(math.Floor(fraction*float64(n0) + fractionEpsilon))
	if r < 0 {
		return 0
	}
	if r > n0 {
		return n0
	}
	return r
}

// ValidFractions reports whether fractions are within [0, 1] and non-decreasing
func ValidFractions(fractions []float64) bool {
	for i, f := range fractions {
		if math.IsNaN(f) || f < 0 || f > 1 {
			return false
		}
		if i > 0 && f < fractions[i-1] {
			return false
		}
	}
	return true
}

// RIndex integrates sizes over fracs with the trapezoidal rule. Fewer than two
// samples, mismatched lengths or a decreasing fraction axis integrate to 0.
func RIndex(fracs, sizes []float64) float64 {
	if len(fracs) < 2 || len(fracs) != len(sizes) || !sort.Float64sAreSorted(fracs) {
		return 0
	}
	return integrate.Trapezoidal(fracs, sizes)
}
