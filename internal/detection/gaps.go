package detection

import "github.com/ironsheep/shape-tools-mcp/internal/geometry"

// gapFactor is how many times longer than the mean edge an edge must be to
// count as a discontinuity.
const gapFactor = 2.0

// FindGaps returns, in ascending order, the indices i of the edges
// (p[i], p[i+1]) longer than twice the polyline's mean edge length.
//
// Polylines with fewer than two vertices have no edges. When every vertex
// coincides the mean edge length is zero and no gaps are reported.
func FindGaps(p geometry.Polyline) []int {
	edges := p.EdgeLengths()
	if len(edges) == 0 {
		return nil
	}
	mean := geometry.Mean(edges)
	if mean == 0 {
		return nil
	}

	var gaps []int
	for i, d := range edges {
		if d > gapFactor*mean {
			gaps = append(gaps, i)
		}
	}
	return gaps
}
