package geometry

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrDegenerateGeometry is returned when a ratio such as the coefficient of
// variation is undefined because its denominator is zero.
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// Point is a planar coordinate pair.
type Point = orb.Point

// Polyline is an ordered sequence of points in drawing order.
type Polyline []Point

// Path groups polylines that shared an input grouping id.
type Path struct {
	// ID is the input grouping id. It is a provenance label only.
	ID float64 `json:"id"`

	// Polylines are kept in input order.
	Polylines []Polyline `json:"polylines"`
}

// PathCollection is an ordered list of paths.
type PathCollection []Path

// Centroid returns the arithmetic mean of the vertices.
// An empty polyline has a zero centroid.
func (p Polyline) Centroid() Point {
	if len(p) == 0 {
		return Point{}
	}
	xs, ys := p.Coordinates()
	return Point{stat.Mean(xs, nil), stat.Mean(ys, nil)}
}

// Coordinates splits the polyline into its x and y columns.
func (p Polyline) Coordinates() (xs, ys []float64) {
	xs = make([]float64, len(p))
	ys = make([]float64, len(p))
	for i, pt := range p {
		xs[i] = pt[0]
		ys[i] = pt[1]
	}
	return xs, ys
}

// Distances returns the Euclidean distance from c to each vertex.
func (p Polyline) Distances(c Point) []float64 {
	d := make([]float64, len(p))
	for i, pt := range p {
		d[i] = Distance(c, pt)
	}
	return d
}

// Angles returns atan2 of each vertex relative to c.
func (p Polyline) Angles(c Point) []float64 {
	a := make([]float64, len(p))
	for i, pt := range p {
		a[i] = math.Atan2(pt[1]-c[1], pt[0]-c[0])
	}
	return a
}

// EdgeLengths returns the lengths of the n-1 edges between consecutive
// vertices. The polyline is treated as open.
func (p Polyline) EdgeLengths() []float64 {
	if len(p) < 2 {
		return nil
	}
	d := make([]float64, len(p)-1)
	for i := 0; i < len(p)-1; i++ {
		d[i] = Distance(p[i], p[i+1])
	}
	return d
}

// ClosedEdgeLengths returns the n edge lengths including the wrap edge from
// the last vertex back to the first.
func (p Polyline) ClosedEdgeLengths() []float64 {
	if len(p) == 0 {
		return nil
	}
	return append(p.EdgeLengths(), Distance(p[len(p)-1], p[0]))
}

// EdgeAngles returns atan2 of each of the n-1 open edge vectors.
func (p Polyline) EdgeAngles() []float64 {
	if len(p) < 2 {
		return nil
	}
	a := make([]float64, len(p)-1)
	for i := 0; i < len(p)-1; i++ {
		a[i] = math.Atan2(p[i+1][1]-p[i][1], p[i+1][0]-p[i][0])
	}
	return a
}

// Bound returns the axis-aligned bounding box of the polyline.
func (p Polyline) Bound() orb.Bound {
	return orb.LineString(p).Bound()
}

// IsFinite reports whether every coordinate is finite.
func (p Polyline) IsFinite() bool {
	for _, pt := range p {
		if !IsFinite(pt) {
			return false
		}
	}
	return true
}

// Finite returns a copy of p without any point that has a non-finite coordinate.
func (p Polyline) Finite() Polyline {
	out := make(Polyline, 0, len(p))
	for _, pt := range p {
		if IsFinite(pt) {
			out = append(out, pt)
		}
	}
	return out
}

// Clone returns a copy of p that shares no memory with it.
func (p Polyline) Clone() Polyline {
	if p == nil {
		return nil
	}
	out := make(Polyline, len(p))
	copy(out, p)
	return out
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return floats.Distance(a[:], b[:], 2)
}

// IsFinite reports whether both coordinates of pt are finite.
func IsFinite(pt Point) bool {
	return !math.IsNaN(pt[0]) && !math.IsInf(pt[0], 0) &&
		!math.IsNaN(pt[1]) && !math.IsInf(pt[1], 0)
}

// CV returns the coefficient of variation of values: the population standard
// deviation divided by the mean. It returns ErrDegenerateGeometry when values
// is empty or its mean is zero.
func CV(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrDegenerateGeometry
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0, ErrDegenerateGeometry
	}
	return std / mean, nil
}

// Mean returns the arithmetic mean of values, or 0 when values is empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Flatten returns every polyline of the collection in traversal order: paths
// in order, then polylines within each path in order.
func (c PathCollection) Flatten() []Polyline {
	var out []Polyline
	for _, path := range c {
		out = append(out, path.Polylines...)
	}
	return out
}

// Count returns the total number of polylines in the collection.
func (c PathCollection) Count() int {
	n := 0
	for _, path := range c {
		n += len(path.Polylines)
	}
	return n
}

// Bound returns the bounding box of every finite point in the collection,
// or the zero box when there are none.
func (c PathCollection) Bound() orb.Bound {
	var mp orb.MultiPoint
	for _, path := range c {
		for _, p := range path.Polylines {
			mp = append(mp, p.Finite()...)
		}
	}
	if len(mp) == 0 {
		return orb.Bound{}
	}
	return mp.Bound()
}

// Singletons wraps each polyline in its own Path. Path i has ID i.
func Singletons(polylines []Polyline) PathCollection {
	out := make(PathCollection, len(polylines))
	for i, p := range polylines {
		out[i] = Path{ID: float64(i), Polylines: []Polyline{p}}
	}
	return out
}
