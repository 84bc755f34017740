package detection

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/shape-tools-mcp/internal/geometry"
)

// ring returns n points at radius r around c, starting at angle phase. Each
// radius is scaled by 1 + jitter*sin(7θ).
func ring(c geometry.Point, r float64, n int, phase, jitter float64) geometry.Polyline {
	p := make(geometry.Polyline, n)
	for i := range p {
		theta := phase + 2*math.Pi*float64(i)/float64(n)
		rr := r * (1 + jitter*math.Sin(7*theta))
		p[i] = geometry.Point{c[0] + rr*math.Cos(theta), c[1] + rr*math.Sin(theta)}
	}
	return p
}

// star returns n points alternating between radius inner (even index) and
// outer (odd index).
func star(n int, inner, outer float64) geometry.Polyline {
	p := make(geometry.Polyline, n)
	for i := range p {
		r := inner
		if i%2 == 1 {
			r = outer
		}
		theta := 2 * math.Pi * float64(i) / float64(n)
		p[i] = geometry.Point{r * math.Cos(theta), r * math.Sin(theta)}
	}
	return p
}

func TestClassify_Default(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name     string
		polyline geometry.Polyline
		wantKind Kind
		wantRule string
	}{
		{"perfect square", geometry.Polyline{{0, 0}, {4, 0}, {4, 4}, {0, 4}}, KindRectangle, "rectangle"},
		{"wide rectangle", geometry.Polyline{{0, 0}, {10, 0}, {10, 2}, {0, 2}}, KindRectangle, "rectangle"},
		{"slightly skewed rectangle", geometry.Polyline{{0, 0}, {4, 0.1}, {4.1, 4}, {0, 4.05}}, KindRectangle, "rectangle"},
		{"clockwise square", geometry.Polyline{{0, 0}, {0, 4}, {4, 4}, {4, 0}}, KindRectangle, "rectangle"},
		{"jittered circle", ring(geometry.Point{0, 0}, 5, 40, 0, 0.02), KindCircle, "round-or-keep"},
		{"triangle", geometry.Polyline{{0, 0}, {10, 0}, {0, 1}}, KindIrregular, "round-or-keep"},
		{"regular pentagon collapses to circle", ring(geometry.Point{1, 1}, 3, 5, 0, 0), KindCircle, "round-or-keep"},
		{"star stays irregular", star(11, 1, 3), KindIrregular, "round-or-keep"},
		{"coincident points", geometry.Polyline{{1, 1}, {1, 1}, {1, 1}}, KindIrregular, "round-or-keep"},
		{"segment", geometry.Polyline{{0, 0}, {5, 5}}, KindIrregular, ""},
		{"single point", geometry.Polyline{{3, 3}}, KindIrregular, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.polyline)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantRule, got.Rule)
		})
	}
}

func TestClassify_DefaultNeverReachesPolygonOrStar(t *testing.T) {
	c := NewClassifier()
	for n := 3; n <= 25; n++ {
		for _, p := range []geometry.Polyline{ring(geometry.Point{0, 0}, 2, n, 0.3, 0), star(n, 1, 2)} {
			kind := c.Classify(p).Kind
			assert.NotEqual(t, KindRegularPolygon, kind, "n=%d", n)
			assert.NotEqual(t, KindStar, kind, "n=%d", n)
		}
	}
}

func TestClassify_RotatedSquareIsNotRectangle(t *testing.T) {
	// The turn between consecutive edge directions is not wrapped, so a
	// square drawn at 45° fails the right-angle test and falls through to
	// the roundness rule, which accepts it as a circle.
	p := geometry.Polyline{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	got := NewClassifier().Classify(p)
	assert.Equal(t, KindCircle, got.Kind)
	assert.InDelta(t, 1.0, got.Radius, 1e-12)
}

func TestClassify_CircleParameters(t *testing.T) {
	p := ring(geometry.Point{0, 0}, 5, 64, 0, 0.02)
	got := NewClassifier().Classify(p)
	require.Equal(t, KindCircle, got.Kind)
	assert.InDelta(t, 0, got.Centroid[0], 1e-9)
	assert.InDelta(t, 0, got.Centroid[1], 1e-9)
	assert.InDelta(t, 5, got.Radius, 0.05)
	assert.Less(t, got.CV, 0.1)
}

func TestClassify_Independent(t *testing.T) {
	c := NewClassifier(IndependentRules()...)

	tests := []struct {
		name     string
		polyline geometry.Polyline
		wantKind Kind
	}{
		{"square", geometry.Polyline{{0, 0}, {4, 0}, {4, 4}, {0, 4}}, KindRectangle},
		{"pentagon", ring(geometry.Point{0, 0}, 3, 5, 0, 0), KindRegularPolygon},
		{"star", star(11, 1, 3), KindStar},
		{"dense circle", ring(geometry.Point{0, 0}, 3, 50, 0, 0.01), KindCircle},
		{"irregular", geometry.Polyline{{0, 0}, {10, 0}, {0, 1}}, KindIrregular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, c.Classify(tt.polyline).Kind)
		})
	}
}

func TestClassify_StarRadii(t *testing.T) {
	got := NewClassifier(IndependentRules()...).Classify(star(9, 2, 5))
	require.Equal(t, KindStar, got.Kind)
	// An odd vertex count pulls the centroid slightly off the origin.
	assert.InDelta(t, 2, got.InnerRadius, 0.05)
	assert.InDelta(t, 5, got.OuterRadius, 0.05)
}

func TestClassifierRules(t *testing.T) {
	assert.Equal(t, []string{"rectangle", "round-or-keep", "regular-polygon", "star"}, NewClassifier().Rules())
}

func TestKind_Text(t *testing.T) {
	for kind, name := range kindNames {
		b, err := json.Marshal(kind)
		require.NoError(t, err)
		assert.Equal(t, `"`+name+`"`, string(b))

		var back Kind
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, kind, back)
	}

	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("hexagon")))
	assert.Equal(t, "kind(42)", Kind(42).String())
}
