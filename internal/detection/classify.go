package detection

import (
	"fmt"
	"math"

	"github.com/ironsheep/shape-tools-mcp/internal/geometry"
)

// Kind identifies the canonical shape family a polyline was matched to.
type Kind int

const (
	// KindIrregular means no rule matched; the geometry is kept as drawn.
	KindIrregular Kind = iota

	// KindRectangle is a 4-vertex contour with right-angle turns.
	KindRectangle

	// KindCircle is a contour whose vertices sit at a near-constant distance
	// from the centroid.
	KindCircle

	// KindRegularPolygon is a contour with near-constant centroid distance,
	// regularized to evenly spaced vertices.
	KindRegularPolygon

	// KindStar is an odd-count contour whose even and odd vertices each sit
	// at their own near-constant radius.
	KindStar
)

var kindNames = map[Kind]string{
	KindIrregular:      "irregular",
	KindRectangle:      "rectangle",
	KindCircle:         "circle",
	KindRegularPolygon: "regular_polygon",
	KindStar:           "star",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown shape kind: %q", string(b))
}

const (
	// angleTolerance is the allowed deviation from a right angle, in radians.
	angleTolerance = 0.1

	// roundnessThreshold is the coefficient of variation of centroid
	// distances below which a contour counts as round.
	roundnessThreshold = 0.1
)

// Classification is the outcome of classifying one polyline, together with
// the parameters the regularizer needs. It is never persisted.
type Classification struct {
	// Kind is the matched shape family.
	Kind Kind `json:"kind"`

	// Rule is the name of the rule that produced the result, empty when no
	// rule matched.
	Rule string `json:"rule,omitempty"`

	// Centroid is the mean of the vertices.
	Centroid geometry.Point `json:"centroid"`

	// Radius is the mean centroid distance (circle and regular polygon).
	Radius float64 `json:"radius,omitempty"`

	// InnerRadius and OuterRadius are the mean centroid distances of the
	// even-index and odd-index vertices (star only).
	InnerRadius float64 `json:"inner_radius,omitempty"`
	OuterRadius float64 `json:"outer_radius,omitempty"`

	// CV is the coefficient of variation of the centroid distances, when the
	// rule computed one.
	CV float64 `json:"cv,omitempty"`
}

// Rule is one entry of a classification chain. Match reports whether the
// rule claims the polyline; a claimed polyline is not offered to later rules,
// even when the returned kind is KindIrregular.
type Rule struct {
	Name  string
	Match func(p geometry.Polyline) (Classification, bool)
}

// Classifier evaluates its rules in order and returns the first match.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns a classifier over rules. With no rules it uses
// DefaultRules.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Rules returns the names of the rules in evaluation order.
func (c *Classifier) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

// Classify returns the result of the first rule that matches p. A polyline
// no rule claims is irregular.
func (c *Classifier) Classify(p geometry.Polyline) Classification {
	for _, r := range c.rules {
		if res, ok := r.Match(p); ok {
			res.Rule = r.Name
			return res
		}
	}
	return Classification{Kind: KindIrregular, Centroid: p.Centroid()}
}

// DefaultRules is the standard priority chain:
//
//  1. rectangle
//  2. round-or-keep: any polyline with more than two vertices is claimed,
//     as a circle when its centroid distances are near-constant and as
//     irregular otherwise
//  3. regular-polygon
//  4. star
//
// Rule 2 claims everything rules 3 and 4 would accept, so neither can
// match in this chain.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "rectangle", Match: matchRectangle},
		{Name: "round-or-keep", Match: matchRoundOrKeep},
		{Name: "regular-polygon", Match: matchRegularPolygon},
		{Name: "star", Match: matchStar},
	}
}

// maxIndependentPolygonVertices bounds the regular-polygon rule in the
// independent chain, so that densely sampled round contours still reach the
// circle rule.
const maxIndependentPolygonVertices = 12

// IndependentRules is an alternative chain in which every family is
// reachable: rectangle, star, regular polygon (at most 12 vertices), then
// circle. It differs from DefaultRules and is only used when
// explicitly configured.
func IndependentRules() []Rule {
	return []Rule{
		{Name: "rectangle", Match: matchRectangle},
		{Name: "star", Match: func(p geometry.Polyline) (Classification, bool) {
			res, ok := matchStar(p)
			if !ok {
				return res, false
			}
			// Equal radii is a regular polygon, not a star.
			spread := math.Abs(res.OuterRadius - res.InnerRadius)
			return res, spread > roundnessThreshold*math.Max(res.InnerRadius, res.OuterRadius)
		}},
		{Name: "regular-polygon", Match: func(p geometry.Polyline) (Classification, bool) {
			if len(p) > maxIndependentPolygonVertices {
				return Classification{}, false
			}
			return matchRegularPolygon(p)
		}},
		{Name: "circle", Match: func(p geometry.Polyline) (Classification, bool) {
			res, ok := matchRoundOrKeep(p)
			return res, ok && res.Kind == KindCircle
		}},
	}
}

// matchRectangle accepts exactly four vertices whose drawn edges turn by a
// right angle at each interior vertex. The turn is the plain difference of
// consecutive atan2 edge directions, without wrapping into (-π, π].
func matchRectangle(p geometry.Polyline) (Classification, bool) {
	if len(p) != 4 {
		return Classification{}, false
	}
	angles := p.EdgeAngles()
	for i := 1; i < len(angles); i++ {
		turn := math.Abs(angles[i] - angles[i-1])
		if !closeTo(turn, math.Pi/2, angleTolerance) {
			return Classification{}, false
		}
	}
	return Classification{Kind: KindRectangle, Centroid: p.Centroid()}, true
}

func matchRoundOrKeep(p geometry.Polyline) (Classification, bool) {
	if len(p) <= 2 {
		return Classification{}, false
	}
	c := p.Centroid()
	d := p.Distances(c)
	cv, err := geometry.CV(d)
	if err != nil {
		// All vertices on the centroid: nothing to idealize.
		return Classification{Kind: KindIrregular, Centroid: c}, true
	}
	if cv < roundnessThreshold {
		return Classification{Kind: KindCircle, Centroid: c, Radius: geometry.Mean(d), CV: cv}, true
	}
	return Classification{Kind: KindIrregular, Centroid: c, CV: cv}, true
}

func matchRegularPolygon(p geometry.Polyline) (Classification, bool) {
	if len(p) < 3 {
		return Classification{}, false
	}
	c := p.Centroid()
	d := p.Distances(c)
	cv, err := geometry.CV(d)
	if err != nil || cv >= roundnessThreshold {
		return Classification{}, false
	}
	return Classification{Kind: KindRegularPolygon, Centroid: c, Radius: geometry.Mean(d), CV: cv}, true
}

func matchStar(p geometry.Polyline) (Classification, bool) {
	if len(p) < 5 || len(p)%2 == 0 {
		return Classification{}, false
	}
	c := p.Centroid()
	even, odd := splitAlternate(p.Distances(c))
	evenCV, err := geometry.CV(even)
	if err != nil || evenCV >= roundnessThreshold {
		return Classification{}, false
	}
	oddCV, err := geometry.CV(odd)
	if err != nil || oddCV >= roundnessThreshold {
		return Classification{}, false
	}
	return Classification{
		Kind:        KindStar,
		Centroid:    c,
		InnerRadius: geometry.Mean(even),
		OuterRadius: geometry.Mean(odd),
	}, true
}

// splitAlternate returns the even-index and odd-index elements of v.
func splitAlternate(v []float64) (even, odd []float64) {
	for i, x := range v {
		if i%2 == 0 {
			even = append(even, x)
		} else {
			odd = append(odd, x)
		}
	}
	return even, odd
}
