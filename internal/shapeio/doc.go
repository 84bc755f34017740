// Package shapeio moves drawings in and out of the module: it ingests point
// tables, caches them by path, and exports processed drawings as CSV point
// tables or SVG outlines.
//
// # Point Tables
//
// A point table is comma-separated text with one point per row:
//
//	path_id,polyline_id,x,y
//
// There is no header row. Lines starting with '#' are comments. Ids are
// numbers; they only group rows and need not be contiguous.
//
// # Error Handling
//
// Ingestion never returns a partial drawing. Any bad row aborts the load
// with an *IngestionError naming the line, and errors.Is can match
// ErrMalformedRow or ErrEmptyInput. Exporters drop non-finite points rather
// than failing.
package shapeio
