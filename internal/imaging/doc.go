// Package imaging turns point collections into raster plots for callers that
// want to look at a drawing.
//
// Render draws each output group as open strokes on a square canvas with
// equal x and y scales, cycling through the seven stroke colours of Palette.
// RenderDiff renders two collections over the same data window and returns
// their per-pixel difference, which makes the effect of regularization and
// curve completion visible at a glance.
//
// # Coordinate System
//
// Plots use data coordinates with y growing upward. The data window is the
// bound of the drawing padded by five percent and widened on its short side
// so that the window is square.
//
// # Thread Safety
//
// Every call builds its own plot and canvas. There is no package-level
// drawing state, so rendering functions are safe for concurrent use.
//
// # Output
//
// Images are returned as base64-encoded PNG together with their pixel size
// and a legend that maps each drawn group to its stroke colour.
package imaging
