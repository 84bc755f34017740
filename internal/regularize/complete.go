package regularize

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/ironsheep/shape-tools-mcp/internal/geometry"
)

// ErrInsufficientPoints is returned when a polyline has too few distinct
// vertices to fit a cubic spline through.
var ErrInsufficientPoints = errors.New("insufficient points for spline completion")

const (
	// MinSplinePoints is the smallest vertex count a cubic fit accepts.
	MinSplinePoints = 4

	// gapSamples is the number of parameter values taken across a gap,
	// endpoints included. Only the interior ones are inserted.
	gapSamples = 5
)

// InsertedPerGap is the number of vertices Complete adds for every gap.
const InsertedPerGap = gapSamples - 2

// Complete fits one interpolating cubic spline through every vertex of p,
// parametrized by normalized cumulative chord length, and inserts
// InsertedPerGap spline samples inside each gap edge (p[i], p[i+1]) named in
// gaps. Vertices are otherwise copied unchanged and in order.
//
// An error wrapping ErrInsufficientPoints is returned when p has fewer than
// MinSplinePoints vertices or two consecutive vertices coincide.
func Complete(p geometry.Polyline, gaps []int) (geometry.Polyline, error) {
	if len(gaps) == 0 {
		return p.Clone(), nil
	}
	if len(p) < MinSplinePoints {
		return nil, fmt.Errorf("%w: have %d vertices, need %d", ErrInsufficientPoints, len(p), MinSplinePoints)
	}

	u, err := chordParameters(p)
	if err != nil {
		return nil, err
	}

	xs, ys := p.Coordinates()
	var sx, sy interp.NotAKnotCubic
	if err := sx.Fit(u, xs); err != nil {
		return nil, fmt.Errorf("failed to fit x spline: %w", err)
	}
	if err := sy.Fit(u, ys); err != nil {
		return nil, fmt.Errorf("failed to fit y spline: %w", err)
	}

	isGap := make(map[int]bool, len(gaps))
	for _, g := range gaps {
		if g < 0 || g >= len(p)-1 {
			return nil, fmt.Errorf("gap index %d out of range for %d vertices", g, len(p))
		}
		isGap[g] = true
	}

	out := make(geometry.Polyline, 0, len(p)+InsertedPerGap*len(isGap))
	samples := make([]float64, gapSamples)
	for i := 0; i < len(p)-1; i++ {
		out = append(out, p[i])
		if !isGap[i] {
			continue
		}
		floats.Span(samples, u[i], u[i+1])
		for _, t := range samples[1 : gapSamples-1] {
			out = append(out, geometry.Point{sx.Predict(t), sy.Predict(t)})
		}
	}
	out = append(out, p[len(p)-1])
	return out, nil
}

// chordParameters returns the cumulative chord length at each vertex,
// scaled to [0, 1]. The parameters must increase strictly.
func chordParameters(p geometry.Polyline) ([]float64, error) {
	edges := p.EdgeLengths()
	u := make([]float64, len(p))
	for i, d := range edges {
		if d == 0 {
			return nil, fmt.Errorf("%w: vertices %d and %d coincide", ErrInsufficientPoints, i, i+1)
		}
		u[i+1] = u[i] + d
	}
	floats.Scale(1/u[len(u)-1], u)
	return u, nil
}
