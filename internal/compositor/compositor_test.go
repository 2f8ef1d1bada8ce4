package compositor

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"

	"github.com/phinze/ringlock/internal/paint"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

var (
	red   = color.RGBA{255, 0, 0, 255}
	white = color.RGBA{255, 255, 255, 255}
	blue  = color.RGBA{0, 0, 255, 255}
)

func TestPlacementsCentered(t *testing.T) {
	const diameter = 190

	single := Placements(1920, 1080, []image.Rectangle{image.Rect(0, 0, 1920, 1080)}, diameter)
	require.Len(t, single, 1)
	assert.Equal(t, image.Pt(960-diameter/2, 540-diameter/2), single[0])

	fallback := Placements(1920, 1080, nil, diameter)
	assert.Equal(t, single, fallback)
}

func TestPlacementsMultiHead(t *testing.T) {
	displays := []image.Rectangle{
		image.Rect(0, 0, 1920, 1080),
		image.Rect(1920, 0, 1920+2560, 1440),
	}

	got := Placements(4480, 1440, displays, 380)
	assert.Equal(t, []image.Point{
		{X: 960 - 190, Y: 540 - 190},
		{X: 1920 + 1280 - 190, Y: 720 - 190},
	}, got)
}

func TestComposeSizeIndependentOfIndicator(t *testing.T) {
	for _, ind := range []image.Image{nil, solid(190, 190, red)} {
		out := Compose(Frame{Width: 800, Height: 600, BackgroundColor: paint.Parse("ffffff"), Indicator: ind})
		assert.Equal(t, image.Rect(0, 0, 800, 600), out.Bounds())
	}
}

func TestComposeIndicatorPosition(t *testing.T) {
	out := Compose(Frame{
		Width:           1920,
		Height:          1080,
		BackgroundColor: paint.Parse("ffffff"),
		Indicator:       solid(190, 190, red),
		Displays:        []image.Rectangle{image.Rect(0, 0, 1920, 1080)},
	})

	assert.Equal(t, red, out.RGBAAt(865, 445))
	assert.Equal(t, red, out.RGBAAt(865+189, 445+189))
	assert.Equal(t, white, out.RGBAAt(864, 445))
	assert.Equal(t, white, out.RGBAAt(865, 444))
	assert.Equal(t, white, out.RGBAAt(865+190, 445))
}

func TestComposeIndicatorBlendsOverBackground(t *testing.T) {
	empty := image.NewRGBA(image.Rect(0, 0, 190, 190))
	out := Compose(Frame{
		Width:           400,
		Height:          400,
		BackgroundColor: paint.Parse("0000ff"),
		Indicator:       empty,
	})

	assert.Equal(t, blue, out.RGBAAt(200, 200))
}

func TestComposeImageAtOrigin(t *testing.T) {
	bg := solid(100, 50, red)
	out := Compose(Frame{Width: 300, Height: 200, Background: bg})

	assert.Equal(t, red, out.RGBAAt(0, 0))
	assert.Equal(t, red, out.RGBAAt(99, 49))
	assert.Equal(t, uint8(0), out.RGBAAt(100, 0).A)
	assert.Equal(t, uint8(0), out.RGBAAt(0, 50).A)
}

func TestComposeImageClipped(t *testing.T) {
	bg := solid(1000, 1000, red)
	out := Compose(Frame{Width: 300, Height: 200, Background: bg})

	assert.Equal(t, image.Rect(0, 0, 300, 200), out.Bounds())
	assert.Equal(t, red, out.RGBAAt(299, 199))
}

func TestComposeTiled(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 2, 1))
	bg.SetRGBA(0, 0, red)
	bg.SetRGBA(1, 0, blue)

	out := Compose(Frame{Width: 5, Height: 3, Background: bg, Tile: true})

	for y := 0; y < 3; y++ {
		assert.Equal(t, red, out.RGBAAt(0, y))
		assert.Equal(t, blue, out.RGBAAt(1, y))
		assert.Equal(t, red, out.RGBAAt(2, y))
		assert.Equal(t, blue, out.RGBAAt(3, y))
		assert.Equal(t, red, out.RGBAAt(4, y))
	}
}

func TestComposeTileWithoutImage(t *testing.T) {
	out := Compose(Frame{Width: 4, Height: 4, Tile: true, BackgroundColor: paint.Parse("336699")})

	assert.Equal(t, color.RGBA{0x33, 0x66, 0x99, 0xff}, out.RGBAAt(3, 3))
}

func TestComposeIdempotent(t *testing.T) {
	f := Frame{
		Width:           640,
		Height:          480,
		BackgroundColor: paint.Parse("336699"),
		Indicator:       solid(190, 190, red),
	}

	assert.Equal(t, Compose(f).Pix, Compose(f).Pix)
}
