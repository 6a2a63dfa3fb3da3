package processing

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/menta2k/image-probe/pkg/types"
)

var (
	roiColor     = color.NRGBA{255, 204, 0, 255}
	contourColor = color.NRGBA{0, 255, 0, 255}
)

// CreateOverlay renders base scaled up by scale with the ROI footprint and
// the contours drawn on top. Footprint corners are in matrix space, where
// pixel (i, j) covers [j, j+1) x [i, i+1); contour points are sample
// positions and are drawn through pixel centres.
func (p *Processor) CreateOverlay(base image.Image, footprint [4]types.Point, contours types.ContourSet, scale int) *image.NRGBA {
	if scale < 1 {
		scale = 1
	}
	b := base.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	if scale == 1 {
		draw.Draw(dst, dst.Bounds(), base, b.Min, draw.Src)
	} else {
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), base, b, draw.Src, nil)
	}

	s := float64(scale)
	stroke := int(math.Max(1, float64(scale)/2))

	for i := range footprint {
		a, c := footprint[i], footprint[(i+1)%len(footprint)]
		drawLine(dst, a.Scale(s), c.Scale(s), roiColor, stroke)
	}

	centre := types.Point{X: 0.5, Y: 0.5}
	for _, line := range contours.Lines {
		pts := line.Points
		for i := 1; i < len(pts); i++ {
			drawLine(dst, pts[i-1].Add(centre).Scale(s), pts[i].Add(centre).Scale(s), contourColor, stroke)
		}
		if line.Closed && len(pts) > 2 {
			drawLine(dst, pts[len(pts)-1].Add(centre).Scale(s), pts[0].Add(centre).Scale(s), contourColor, stroke)
		}
	}

	return dst
}

// drawLine plots a straight line from a to b in image coordinates, one
// square dab of side stroke per unit step.
func drawLine(img *image.NRGBA, a, b types.Point, c color.NRGBA, stroke int) {
	d := b.Sub(a)
	steps := int(math.Ceil(math.Max(math.Abs(d.X), math.Abs(d.Y))))
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		q := a.Add(d.Scale(float64(i) / float64(steps)))
		dab(img, int(math.Floor(q.X)), int(math.Floor(q.Y)), c, stroke)
	}
}

func dab(img *image.NRGBA, x, y int, c color.NRGBA, stroke int) {
	half := stroke / 2
	r := image.Rect(x-half, y-half, x-half+stroke, y-half+stroke).Intersect(img.Bounds())
	for py := r.Min.Y; py < r.Max.Y; py++ {
		i := img.PixOffset(r.Min.X, py)
		for px := r.Min.X; px < r.Max.X; px++ {
			img.Pix[i+0] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = c.A
			i += 4
		}
	}
}
