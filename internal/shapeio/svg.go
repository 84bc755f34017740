package shapeio

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/ironsheep/shape-tools-mcp/internal/geometry"
)

// SVGOptions controls vector export. Zero values select the defaults.
type SVGOptions struct {
	// Margin is the blank border around the drawing, in drawing units.
	// Default 10.
	Margin float64

	// StrokeWidth is the outline width in drawing units. Default 1.
	StrokeWidth float64
}

func (o SVGOptions) withDefaults() SVGOptions {
	if o.Margin <= 0 {
		o.Margin = 10
	}
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = 1
	}
	return o
}

// WriteSVG writes every polyline of coll as a closed, black, unfilled
// polygon. Points with a non-finite coordinate are dropped before the
// polygon is emitted, and a polyline left without points is skipped.
//
// The canvas is sized to the bounding box of the drawing plus the margin,
// and the drawing is translated so that the box starts at the margin. One
// drawing unit is one SVG user unit. SVG has y growing downward; the canvas
// flips the axis so the drawing keeps its orientation.
func WriteSVG(w io.Writer, coll geometry.PathCollection, opts SVGOptions) error {
	opts = opts.withDefaults()

	b := coll.Bound()
	width := math.Max(b.Max[0]-b.Min[0], 1) + 2*opts.Margin
	height := math.Max(b.Max[1]-b.Min[1], 1) + 2*opts.Margin

	c := vgsvg.New(vg.Length(width), vg.Length(height))
	c.SetColor(color.Black)
	c.SetLineWidth(vg.Length(opts.StrokeWidth))

	offX := opts.Margin - b.Min[0]
	offY := opts.Margin - b.Min[1]

	for _, path := range coll {
		for _, p := range path.Polylines {
			pts := p.Finite()
			if len(pts) == 0 {
				continue
			}
			var vp vg.Path
			for k, pt := range pts {
				at := vg.Point{X: vg.Length(pt[0] + offX), Y: vg.Length(pt[1] + offY)}
				if k == 0 {
					vp.Move(at)
				} else {
					vp.Line(at)
				}
			}
			vp.Close()
			c.Stroke(vp)
		}
	}

	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write svg: %w", err)
	}
	return nil
}
