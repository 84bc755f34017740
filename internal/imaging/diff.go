package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blend"
	"github.com/paulmach/orb"

	"github.com/ironsheep/shape-tools-mcp/internal/geometry"
)

// DiffResult is a difference image of two renders plus how much of the
// canvas changed.
type DiffResult struct {
	RenderResult

	// ChangedPixels counts pixels whose colour differs between the renders.
	ChangedPixels int `json:"changed_pixels"`

	// ChangedRatio is ChangedPixels divided by the canvas area.
	ChangedRatio float64 `json:"changed_ratio"`
}

// RenderDiff renders before and after over one shared data window and blends
// them with a per-channel absolute difference. Identical drawings give a
// black image and a zero ratio. The legend lists the groups of after.
//
// opts.Frame, when set, overrides the shared window. opts.Scale applies to
// the difference image only; the pixel counts are taken at canvas size.
func RenderDiff(before, after geometry.PathCollection, opts RenderOptions) (*DiffResult, error) {
	opts = opts.withDefaults()
	if opts.Frame == (orb.Bound{}) {
		opts.Frame = unionFrame(before, after)
	}

	a, _, err := rasterize(before, opts)
	if err != nil {
		return nil, err
	}
	b, legend, err := rasterize(after, opts)
	if err != nil {
		return nil, err
	}

	diff := blend.Difference(a, b)
	changed := countChanged(diff)

	res, err := encode(rescale(diff, opts.Scale), legend)
	if err != nil {
		return nil, err
	}
	area := diff.Bounds().Dx() * diff.Bounds().Dy()
	out := &DiffResult{RenderResult: *res, ChangedPixels: changed}
	if area > 0 {
		out.ChangedRatio = float64(changed) / float64(area)
	}
	return out, nil
}

// unionFrame is the bound of every finite point of both collections.
func unionFrame(a, b geometry.PathCollection) orb.Bound {
	both := make(geometry.PathCollection, 0, len(a)+len(b))
	both = append(both, a...)
	return append(both, b...).Bound()
}

func countChanged(img *image.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			if img.Pix[i] != 0 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 {
				n++
			}
		}
	}
	return n
}
