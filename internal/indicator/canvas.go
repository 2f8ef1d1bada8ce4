package indicator

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Canvas is the drawing capability the renderer needs. Coordinates, radii,
// line widths and font sizes are in logical units; angles are radians,
// growing clockwise from the positive x axis.
type Canvas interface {
	// FillCircle fills a full circle.
	FillCircle(cx, cy, r float64, c color.Color)

	// StrokeArc strokes the arc from start to end. A full turn is closed.
	StrokeArc(cx, cy, r, start, end, width float64, c color.Color)

	// EraseArc clears everything under a stroke of the arc to transparent.
	EraseArc(cx, cy, r, start, end, width float64)

	// Text draws s with its ink box centered on (cx, cy).
	Text(s string, size, cx, cy float64, c color.Color)
}

var (
	fontOnce sync.Once
	fontTT   *opentype.Font
	fontErr  error
)

// loadFont parses the embedded sans-serif face once.
func loadFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		fontTT, fontErr = opentype.Parse(goregular.TTF)
		if fontErr != nil {
			fontErr = fmt.Errorf("failed to parse font: %w", fontErr)
		}
	})
	return fontTT, fontErr
}

// Raster is a Canvas backed by an in-memory RGBA image. Logical units are
// multiplied by the scale factor before rasterization.
type Raster struct {
	img   *image.RGBA
	scale float64
	font  *opentype.Font
	err   error
}

// NewRaster allocates a transparent square surface of side pixels.
func NewRaster(side int, scale float64) (*Raster, error) {
	tt, err := loadFont()
	if err != nil {
		return nil, err
	}
	return &Raster{
		img:   image.NewRGBA(image.Rect(0, 0, side, side)),
		scale: scale,
		font:  tt,
	}, nil
}

// Image returns the surface drawn so far.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// Err returns the first error met while drawing, if any.
func (r *Raster) Err() error {
	return r.err
}

func (r *Raster) size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

// FillCircle implements Canvas.
func (r *Raster) FillCircle(cx, cy, radius float64, c color.Color) {
	w, h := r.size()
	filler := rasterx.NewFiller(w, h, rasterx.NewScannerGV(w, h, r.img, r.img.Bounds()))
	filler.SetColor(c)
	r.addArc(filler, cx, cy, radius, 0, 2*math.Pi)
	filler.Stop(true)
	filler.Draw()
}

// StrokeArc implements Canvas.
func (r *Raster) StrokeArc(cx, cy, radius, start, end, width float64, c color.Color) {
	r.stroke(r.img, cx, cy, radius, start, end, width, c)
}

// EraseArc implements Canvas. The stroke is rendered into a coverage mask
// and the surface is scaled by one minus that coverage.
func (r *Raster) EraseArc(cx, cy, radius, start, end, width float64) {
	b := r.img.Bounds()
	mask := image.NewAlpha(b)
	r.stroke(mask, cx, cy, radius, start, end, width, color.Opaque)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := mask.Pix[mask.PixOffset(x, y)]
			if a == 0 {
				continue
			}
			keep := 255 - uint32(a)
			i := r.img.PixOffset(x, y)
			px := r.img.Pix[i : i+4 : i+4]
			for j := range px {
				// Channels are premultiplied, so scaling all four keeps the pixel valid.
				px[j] = uint8((uint32(px[j])*keep + 127) / 255)
			}
		}
	}
}

func (r *Raster) stroke(dst draw.Image, cx, cy, radius, start, end, width float64, c color.Color) {
	w, h := r.size()
	dasher := rasterx.NewDasher(w, h, rasterx.NewScannerGV(w, h, dst, dst.Bounds()))
	dasher.SetStroke(
		fixed.Int26_6(width*r.scale*64),
		fixed.Int26_6(10*64),
		rasterx.ButtCap, rasterx.ButtCap,
		rasterx.FlatGap, rasterx.Round,
		nil, 0,
	)
	dasher.SetColor(c)
	r.addArc(dasher, cx, cy, radius, start, end)
	dasher.Stop(isFullTurn(start, end))
	dasher.Draw()
}

// addArc approximates an arc with short line segments, in device pixels.
func (r *Raster) addArc(p rasterx.Adder, cx, cy, radius, start, end float64) {
	cx, cy, radius = cx*r.scale, cy*r.scale, radius*r.scale

	steps := int(math.Ceil(math.Abs(end-start) / (math.Pi / 90)))
	if steps < 1 {
		steps = 1
	}
	full := isFullTurn(start, end)
	for i := 0; i <= steps; i++ {
		if full && i == steps {
			// Stop(true) closes the loop.
			break
		}
		a := start + (end-start)*float64(i)/float64(steps)
		pt := rasterx.ToFixedP(cx+radius*math.Cos(a), cy+radius*math.Sin(a))
		if i == 0 {
			p.Start(pt)
		} else {
			p.Line(pt)
		}
	}
}

func isFullTurn(start, end float64) bool {
	return math.Abs(end-start) >= 2*math.Pi-1e-9
}

// Text implements Canvas.
func (r *Raster) Text(s string, size, cx, cy float64, c color.Color) {
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size * r.scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("failed to create %.0fpt face: %w", size, err)
		}
		return
	}
	defer face.Close()

	// Center the ink box, not the advance box, like cairo text extents.
	bounds, _ := font.BoundString(face, s)
	inkW := bounds.Max.X - bounds.Min.X
	inkH := bounds.Max.Y - bounds.Min.Y
	x := toFixed(cx*r.scale) - (inkW/2 + bounds.Min.X)
	y := toFixed(cy*r.scale) - (inkH/2 + bounds.Min.Y)

	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: x, Y: y},
	}
	d.DrawString(s)
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
