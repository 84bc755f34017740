package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/paulmach/orb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/ironsheep/shape-tools-mcp/internal/geometry"
)

// DefaultRenderSize is the canvas side, in pixels, used when RenderOptions
// leaves Size unset.
const DefaultRenderSize = 512

const (
	mimePNG     = "image/png"
	strokeWidth = 1.5
	// framePad widens the data window so strokes on the bound stay visible.
	framePad = 1.05
	// canvasDPI makes one vg point one pixel.
	canvasDPI = 72
)

// RenderOptions controls plot rendering. Zero values select the defaults.
type RenderOptions struct {
	// Title is drawn above the plot. Empty means no title.
	Title string

	// Size is the side of the square canvas in pixels.
	Size int

	// Scale resizes the finished image. 0 and 1 keep the canvas size.
	Scale float64

	// Frame is the data window to draw. The zero Bound selects the bound of
	// the collection being drawn.
	Frame orb.Bound
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Size <= 0 {
		o.Size = DefaultRenderSize
	}
	return o
}

// RenderResult contains a rendered plot as base64-encoded PNG data.
type RenderResult struct {
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	ImageBase64 string   `json:"image_base64"`
	MimeType    string   `json:"mime_type"`
	Legend      []Swatch `json:"legend"`
}

// Render draws every group of coll as open strokes on a square canvas with
// equal axis scales. Group i uses ColorFor(i). Points with a non-finite
// coordinate are skipped. Each call builds its own plot, so Render is safe
// for concurrent use.
func Render(coll geometry.PathCollection, opts RenderOptions) (*RenderResult, error) {
	opts = opts.withDefaults()

	img, legend, err := rasterize(coll, opts)
	if err != nil {
		return nil, err
	}
	return encode(rescale(img, opts.Scale), legend)
}

// rasterize draws coll onto a fresh Size x Size canvas.
func rasterize(coll geometry.PathCollection, opts RenderOptions) (image.Image, []Swatch, error) {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	legend := []Swatch{}
	for i, path := range coll {
		drawn := false
		for _, pl := range path.Polylines {
			pts := pl.Finite()
			if len(pts) == 0 {
				continue
			}
			xys := make(plotter.XYs, len(pts))
			for k, pt := range pts {
				xys[k] = plotter.XY{X: pt[0], Y: pt[1]}
			}
			line, err := plotter.NewLine(xys)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to build stroke for group %d: %w", i, err)
			}
			line.Color = ColorFor(i)
			line.Width = vg.Points(strokeWidth)
			p.Add(line)
			drawn = true
		}
		if drawn {
			legend = append(legend, SwatchFor(i))
		}
	}

	frame := opts.Frame
	if frame == (orb.Bound{}) {
		frame = coll.Bound()
	}
	setSquareWindow(p, frame)

	side := vg.Length(opts.Size)
	c := vgimg.NewWith(vgimg.UseWH(side, side), vgimg.UseDPI(canvasDPI))
	p.Draw(draw.New(c))
	return c.Image(), legend, nil
}

// setSquareWindow fixes both axes to the same span, centred on b, so one data
// unit has the same length along x and y.
func setSquareWindow(p *plot.Plot, b orb.Bound) {
	center := b.Center()
	half := math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]) / 2 * framePad
	if half == 0 {
		half = 1
	}
	p.X.Min, p.X.Max = center[0]-half, center[0]+half
	p.Y.Min, p.Y.Max = center[1]-half, center[1]+half
}

func rescale(img image.Image, scale float64) image.Image {
	if scale <= 0 || scale == 1 {
		return img
	}
	w := int(math.Max(1, math.Round(float64(img.Bounds().Dx())*scale)))
	h := int(math.Max(1, math.Round(float64(img.Bounds().Dy())*scale)))
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

func encode(img image.Image, legend []Swatch) (*RenderResult, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode plot: %w", err)
	}
	return &RenderResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    mimePNG,
		Legend:      legend,
	}, nil
}
