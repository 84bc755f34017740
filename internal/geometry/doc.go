// Package geometry provides the planar data model shared by the shape
// regularization packages.
//
// A drawing is ingested as a PathCollection: an ordered list of Paths, each
// of which groups one or more Polylines under a provenance id. A Polyline is
// an ordered list of points in drawing order. Nothing closes a polyline
// implicitly; if the first and last points coincide, that is the caller's
// convention.
//
// # Coordinates
//
// Points are orb.Point values (X at index 0, Y at index 1). Coordinates must
// be finite. Ingestion rejects non-finite values and exporters drop them, so
// the analysis packages never have to check.
//
// # Flattening
//
// Processing loses the two-level grouping. Flatten walks Paths in order and
// Polylines within each Path in order; Singletons wraps each result in its own
// Path so that output group i holds exactly one polyline.
//
// # Immutability
//
// Nothing in this package mutates its receiver. Operations that produce new
// geometry return fresh slices.
package geometry
