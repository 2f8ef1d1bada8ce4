// Package indicator draws the circular unlock indicator: ring, fill, clock,
// modifier label and the keystroke notch.
package indicator

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"strconv"

	"github.com/phinze/ringlock/internal/state"
)

// Geometry in logical units (96 DPI).
const (
	Radius   = 90.0
	Margin   = 5.0
	Center   = Radius + Margin
	Diameter = 2 * (Radius + Margin)

	RingWidth      = 3.0
	EraseWidth     = 4.0
	SeparatorWidth = 10.0

	ClockSize   = 32.0
	LabelSize   = 14.0
	LabelOffset = 28.0

	// NotchSweep is the angle of the erased highlight arc (100°).
	NotchSweep = math.Pi / 2.5
	// SeparatorSweep is the angle of each cap drawn at the notch ends.
	SeparatorSweep = math.Pi / 128.0
)

// ReferenceDPI is the density logical units are defined at.
const ReferenceDPI = 96.0

// ScaleFor returns the scaling factor for a display density.
func ScaleFor(dpi float64) float64 {
	if dpi <= 0 {
		return 1
	}
	return dpi / ReferenceDPI
}

// Side returns the device pixel size of the indicator surface.
func Side(scale float64) int {
	return int(math.Ceil(scale * Diameter))
}

// Rand supplies the notch start angle. *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Input is everything one indicator frame depends on.
type Input struct {
	Model   state.Model
	Palette state.Palette

	// Clock is the time label drawn at the center.
	Clock string

	// ShowFailedAttempts draws the failed attempt counter above the clock
	// when it is non-zero.
	ShowFailedAttempts bool
}

// Renderer draws indicator frames.
type Renderer struct {
	rand   Rand
	logger *slog.Logger
}

// New creates a Renderer drawing notch angles from rnd.
func New(rnd Rand, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{rand: rnd, logger: logger}
}

// Render allocates a fresh surface for the given scale and draws one frame
// on it.
func (r *Renderer) Render(in Input, scale float64) (*image.RGBA, error) {
	side := Side(scale)
	r.logger.Debug("rendering indicator",
		slog.String("scaling_factor", strconv.FormatFloat(scale, 'f', 2, 64)),
		slog.Int("diameter_px", side))

	canvas, err := NewRaster(side, scale)
	if err != nil {
		return nil, fmt.Errorf("failed to create indicator surface: %w", err)
	}
	r.Draw(canvas, in)
	return canvas.Image(), canvas.Err()
}

// Draw runs the drawing sequence on c. Later steps composite over earlier
// ones.
func (r *Renderer) Draw(c Canvas, in Input) {
	base := in.Palette.Color(in.Model.Tone())
	fill, line := base.Fill(), base.Line()

	// Ring: interior first, then the border over it.
	c.FillCircle(Center, Center, Radius, fill)
	c.StrokeArc(Center, Center, Radius, 0, 2*math.Pi, RingWidth, line)

	c.Text(in.Clock, ClockSize, Center, Center, line)

	if in.Model.Phase == state.WrongCredential && in.Model.Modifiers != "" {
		c.Text(in.Model.Modifiers, LabelSize, Center, Center+LabelOffset, line)
	}

	if in.ShowFailedAttempts && in.Model.FailedAttempts > 0 {
		c.Text(strconv.Itoa(in.Model.FailedAttempts), LabelSize, Center, Center-LabelOffset, line)
	}

	if in.Model.Activity != state.None {
		start := r.rand.Float64() * 2 * math.Pi
		end := start + NotchSweep

		c.EraseArc(Center, Center, Radius, start, end, EraseWidth)
		c.StrokeArc(Center, Center, Radius, start, start+SeparatorSweep, SeparatorWidth, line)
		c.StrokeArc(Center, Center, Radius, end, end+SeparatorSweep, SeparatorWidth, line)
	}
}
