// Package compositor paints a full-screen lock frame: the background
// (solid color, image or tiled image) with the indicator centered on every
// physical display.
package compositor

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/phinze/ringlock/internal/paint"
)

// Presenter makes a composed frame visible. Implementations install it as
// the lock window's background, clear the window so it repaints, and flush.
type Presenter interface {
	Present(frame *image.RGBA) error
}

// Frame describes one full-screen composition.
type Frame struct {
	// Width and Height are the root resolution in pixels.
	Width, Height int

	// Background is painted when non-nil; otherwise BackgroundColor fills
	// the screen.
	Background      image.Image
	Tile            bool
	BackgroundColor paint.RGB

	// Indicator is the rendered indicator surface, or nil when the
	// indicator is disabled.
	Indicator image.Image

	// Displays are the physical display rectangles. Empty means unknown.
	Displays []image.Rectangle
}

// Compose paints f onto a new surface of exactly Width×Height pixels.
func Compose(f Frame) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(f.Width, 0), max(f.Height, 0)))
	bounds := dst.Bounds()

	switch {
	case f.Background != nil && f.Tile:
		tile(dst, f.Background)
	case f.Background != nil:
		src := f.Background.Bounds()
		draw.Draw(dst, bounds, f.Background, src.Min, draw.Over)
	default:
		draw.Draw(dst, bounds, image.NewUniform(f.BackgroundColor.Background()), image.Point{}, draw.Src)
	}

	if f.Indicator == nil {
		return dst
	}

	ib := f.Indicator.Bounds()
	side := ib.Dx()
	for _, at := range Placements(f.Width, f.Height, f.Displays, side) {
		r := image.Rectangle{Min: at, Max: at.Add(image.Pt(side, ib.Dy()))}
		draw.Draw(dst, r, f.Indicator, ib.Min, draw.Over)
	}
	return dst
}

// tile repeats src across dst starting at the origin.
func tile(dst *image.RGBA, src image.Image) {
	sb := src.Bounds()
	if sb.Empty() {
		return
	}
	db := dst.Bounds()
	for y := db.Min.Y; y < db.Max.Y; y += sb.Dy() {
		for x := db.Min.X; x < db.Max.X; x += sb.Dx() {
			r := image.Rect(x, y, x+sb.Dx(), y+sb.Dy())
			draw.Draw(dst, r, src, sb.Min, draw.Over)
		}
	}
}

// Placements returns the top-left corner of the indicator on each display.
// With no display information the indicator is centered on the root
// window.
func Placements(width, height int, displays []image.Rectangle, side int) []image.Point {
	if len(displays) == 0 {
		return []image.Point{{
			X: width/2 - side/2,
			Y: height/2 - side/2,
		}}
	}

	out := make([]image.Point, 0, len(displays))
	for _, d := range displays {
		out = append(out, image.Point{
			X: d.Min.X + (d.Dx()/2 - side/2),
			Y: d.Min.Y + (d.Dy()/2 - side/2),
		})
	}
	return out
}
