package detection

import (
	"math"

	"github.com/ironsheep/shape-tools-mcp/internal/geometry"
)

// symmetryTolerance applies to both the distance match and the angular
// match of a reflective pair.
const symmetryTolerance = 0.1

// Symmetry is the result of a reflective symmetry test.
type Symmetry struct {
	// Symmetric is true when at least one vertex pair mirrors through the
	// centroid.
	Symmetric bool `json:"symmetric"`

	// Centroid is the centre the test was made about.
	Centroid geometry.Point `json:"centroid"`

	// Pair holds the indices of the first mirrored pair found. It is only
	// meaningful when Symmetric is true.
	Pair [2]int `json:"pair"`
}

// DetectSymmetry tests every unordered vertex pair (i, j) for a mirror
// image through the centroid: the two vertices must be at the same distance
// from the centroid (within 0.1) and half a turn apart (within 0.1 rad).
// The first pair found decides the result.
//
// The function has no side effects. Callers decide what, if anything, to do
// with the result.
func DetectSymmetry(p geometry.Polyline) Symmetry {
	c := p.Centroid()
	dist := p.Distances(c)
	angles := p.Angles(c)

	for i := 0; i < len(p); i++ {
		for j := i + 1; j < len(p); j++ {
			if !closeTo(dist[i], dist[j], symmetryTolerance) {
				continue
			}
			if closeTo(math.Abs(angles[i]-angles[j]), math.Pi, symmetryTolerance) {
				return Symmetry{Symmetric: true, Centroid: c, Pair: [2]int{i, j}}
			}
		}
	}
	return Symmetry{Centroid: c}
}

// closeTo reports whether a and b agree within an absolute tolerance plus a
// small relative term, the same test numeric libraries use for "isclose".
func closeTo(a, b, atol float64) bool {
	const rtol = 1e-5
	return math.Abs(a-b) <= atol+rtol*math.Abs(b)
}
