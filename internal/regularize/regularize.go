// Package regularize turns classified polylines into their idealized form and
// repairs drawing discontinuities by spline interpolation.
package regularize

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/shape-tools-mcp/internal/detection"
	"github.com/ironsheep/shape-tools-mcp/internal/geometry"
)

// CircleVertices is the number of vertices emitted for a regularized circle.
const CircleVertices = 100

type transform func(p geometry.Polyline, c detection.Classification) geometry.Polyline

var transforms = map[detection.Kind]transform{
	detection.KindRectangle:      square,
	detection.KindCircle:         circle,
	detection.KindRegularPolygon: regularPolygon,
	detection.KindStar:           starPolygon,
}

// Regularize returns the idealized replacement for p according to c. An
// irregular or unknown classification returns a copy of p unchanged. The
// input is never modified.
func Regularize(p geometry.Polyline, c detection.Classification) geometry.Polyline {
	if fn, ok := transforms[c.Kind]; ok {
		return fn(p, c)
	}
	return p.Clone()
}

// square replaces a rectangle by a square centred on its centroid. The
// vertex distance from the centre is half the mean of the four side lengths
// (including the closing side), and the vertices sit at 0°, 90°, 180° and
// 270°. The original aspect ratio is not kept.
func square(p geometry.Polyline, c detection.Classification) geometry.Polyline {
	half := geometry.Mean(p.ClosedEdgeLengths()) / 2
	return onCircle(c.Centroid, evenAngles(4), func(int) float64 { return half })
}

// circle samples CircleVertices points at the mean radius. The angles are
// 2πk/CircleVertices, so the last vertex stops one step short of the first
// and the outline is left open.
func circle(_ geometry.Polyline, c detection.Classification) geometry.Polyline {
	return onCircle(c.Centroid, evenAngles(CircleVertices), func(int) float64 { return c.Radius })
}

func regularPolygon(p geometry.Polyline, c detection.Classification) geometry.Polyline {
	return onCircle(c.Centroid, evenAngles(len(p)), func(int) float64 { return c.Radius })
}

// starPolygon alternates between the even-index and odd-index radii.
func starPolygon(p geometry.Polyline, c detection.Classification) geometry.Polyline {
	return onCircle(c.Centroid, evenAngles(len(p)), func(i int) float64 {
		if i%2 == 0 {
			return c.InnerRadius
		}
		return c.OuterRadius
	})
}

// evenAngles returns n angles evenly spaced over one turn, starting at 0 and
// excluding 2π.
func evenAngles(n int) []float64 {
	if n <= 0 {
		return nil
	}
	angles := make([]float64, n+1)
	floats.Span(angles, 0, 2*math.Pi)
	return angles[:n]
}

func onCircle(centre geometry.Point, angles []float64, radius func(i int) float64) geometry.Polyline {
	out := make(geometry.Polyline, len(angles))
	for i, theta := range angles {
		r := radius(i)
		out[i] = geometry.Point{centre[0] + r*math.Cos(theta), centre[1] + r*math.Sin(theta)}
	}
	return out
}
