// Package detection analyses hand-drawn polylines: it classifies each one
// against the canonical shape families, tests it for reflective symmetry, and
// locates drawing discontinuities.
//
// Every function here is a pure function of a single polyline. Nothing is
// cached and nothing is shared between calls, so callers may analyse many
// polylines concurrently.
//
// # Classification
//
// A Classifier walks an ordered list of Rules and stops at the first rule
// that claims the polyline. DefaultRules is the standard chain:
//
//  1. Rectangle: exactly four vertices whose drawn edges turn by π/2
//     (within 0.1 rad) at every interior vertex.
//  2. Round-or-keep: any polyline with more than two vertices. It is a
//     Circle when the coefficient of variation of its centroid distances is
//     below 0.1, and Irregular otherwise.
//  3. Regular polygon and 4. Star: present in the chain but unreachable,
//     because rule 2 already claims every polyline they accept.
//
// Anything with two or fewer vertices is Irregular. IndependentRules offers a
// chain in which every family is reachable; it is an opt-in deviation from
// the standard behaviour.
//
// # Degenerate Input
//
// Ratios with a zero denominator are not errors here. A polyline whose
// vertices all sit on the centroid is Irregular, and a polyline whose edges
// all have zero length has no gaps.
//
// # Symmetry
//
// DetectSymmetry looks for a vertex pair mirrored through the centroid. The
// result is informational; it does not feed back into regularization.
//
// # Gaps
//
// FindGaps reports edges longer than twice the mean edge length. Closing
// them is the job of the regularize package.
package detection
