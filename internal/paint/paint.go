// Package paint turns RRGGBB color specs into the paint sources used by the
// unlock indicator: opaque background, translucent line/text and a lighter,
// mostly transparent fill.
package paint

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Alpha values carried by each role.
const (
	LineAlpha = 0.8
	FillAlpha = 0.2
)

// RGB is a parsed color spec with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// Parse reads a six digit hex spec (no '#') into its channels. Each pair of
// digits is read the way strtol reads it: leading hex digits count, parsing
// stops at the first other character, and a pair without a leading digit is
// zero. Parse never fails; format checks belong to the caller (see Valid).
func Parse(spec string) RGB {
	var groups [3]string
	for i := range groups {
		lo, hi := 2*i, 2*i+2
		if lo >= len(spec) {
			break
		}
		if hi > len(spec) {
			hi = len(spec)
		}
		groups[i] = spec[lo:hi]
	}
	return RGB{
		R: parseGroup(groups[0]),
		G: parseGroup(groups[1]),
		B: parseGroup(groups[2]),
	}
}

// Valid reports whether spec is exactly six hex digits.
func Valid(spec string) bool {
	if len(spec) != 6 {
		return false
	}
	for i := 0; i < len(spec); i++ {
		if _, ok := hexDigit(spec[i]); !ok {
			return false
		}
	}
	return true
}

// parseGroup parses a two character group with strtol(..., 16) rules.
func parseGroup(s string) uint8 {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	v := 0
	for ; i < len(s); i++ {
		d, ok := hexDigit(s[i])
		if !ok {
			break
		}
		v = v*16 + d
	}

	// A negative value wraps to a huge unsigned channel, which ends up
	// clamped to full intensity once normalized.
	if neg && v != 0 {
		return 255
	}
	return uint8(v)
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

// Lighten moves every channel halfway toward white, truncating.
func (c RGB) Lighten() RGB {
	return RGB{
		R: lightenChannel(c.R),
		G: lightenChannel(c.G),
		B: lightenChannel(c.B),
	}
}

func lightenChannel(v uint8) uint8 {
	return uint8(float64(255-v)*0.5 + float64(v))
}

// Colorful returns the channels scaled to [0,1].
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return c.Colorful().Hex()
}

// Spec formats the color the way it is configured (rrggbb, no prefix).
func (c RGB) Spec() string {
	return c.Hex()[1:]
}

// Background is the opaque paint used for the screen fill.
func (c RGB) Background() color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Line is the paint used for the ring border, the clock text and the notch
// separators.
func (c RGB) Line() color.Color {
	return withAlpha(c, LineAlpha)
}

// Fill is the paint used for the ring interior: the lightened color at low
// opacity.
func (c RGB) Fill() color.Color {
	return withAlpha(c.Lighten(), FillAlpha)
}

func withAlpha(c RGB, alpha float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(alpha*255 + 0.5)}
}
