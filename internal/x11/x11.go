// Package x11 connects the lock screen to an X server: screen geometry,
// pixel density and a window the frames are presented on.
package x11

import (
	"bufio"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb/xinerama"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// DefaultDPI is reported when the server does not publish Xft.dpi.
const DefaultDPI = 96.0

// Conn is a connection to the X server. It reports the geometry of the
// root window.
type Conn struct {
	X        *xgbutil.XUtil
	xinerama bool
	logger   *slog.Logger
}

// Connect opens the display named by $DISPLAY.
func Connect(logger *slog.Logger) (*Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}

	X, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	c := &Conn{X: X, logger: logger}
	if err := xinerama.Init(X.Conn()); err != nil {
		logger.Debug("xinerama unavailable", slog.Any("error", err))
	} else {
		c.xinerama = true
	}
	return c, nil
}

// Close releases the connection.
func (c *Conn) Close() {
	c.X.Conn().Close()
}

// Resolution returns the root window size.
func (c *Conn) Resolution() (width, height int) {
	s := c.X.Screen()
	return int(s.WidthInPixels), int(s.HeightInPixels)
}

// Displays returns the physical display rectangles, or nil when Xinerama
// is missing or inactive.
func (c *Conn) Displays() []image.Rectangle {
	if !c.xinerama {
		return nil
	}

	reply, err := xinerama.QueryScreens(c.X.Conn()).Reply()
	if err != nil {
		c.logger.Debug("xinerama query failed", slog.Any("error", err))
		return nil
	}

	rects := make([]image.Rectangle, 0, len(reply.ScreenInfo))
	for _, s := range reply.ScreenInfo {
		x, y := int(s.XOrg), int(s.YOrg)
		rects = append(rects, image.Rect(x, y, x+int(s.Width), y+int(s.Height)))
	}
	return rects
}

// DPI returns Xft.dpi from the root RESOURCE_MANAGER property.
func (c *Conn) DPI() float64 {
	reply, err := xprop.GetProperty(c.X, c.X.RootWin(), "RESOURCE_MANAGER")
	if err != nil {
		return DefaultDPI
	}
	resources, err := xprop.PropValStr(reply, nil)
	if err != nil {
		return DefaultDPI
	}
	if dpi, ok := ParseXftDPI(resources); ok {
		return dpi
	}
	return DefaultDPI
}

// ParseXftDPI extracts the Xft.dpi entry from an X resource database
// string.
func ParseXftDPI(resources string) (float64, bool) {
	sc := bufio.NewScanner(strings.NewReader(resources))
	for sc.Scan() {
		name, value, ok := strings.Cut(sc.Text(), ":")
		if !ok || strings.TrimSpace(name) != "Xft.dpi" {
			continue
		}
		dpi, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || dpi <= 0 {
			return 0, false
		}
		return dpi, true
	}
	return 0, false
}

// screenInfo is the part of Conn a Window reports through.
type screenInfo interface {
	Displays() []image.Rectangle
	DPI() float64
}

// Window is a top-level window frames are presented on. It reports its own
// size as the resolution so a preview lays out like a full screen.
type Window struct {
	conn   *Conn
	screen screenInfo
	win    *xwindow.Window
	width  int
	height int

	// fullscreen is set when the window covers the root, so the physical
	// display layout applies to it.
	fullscreen bool
}

// OpenWindow creates and maps a window of the given size. Zero dimensions
// cover the root window.
func (c *Conn) OpenWindow(width, height int) (*Window, error) {
	fullscreen := width <= 0 || height <= 0
	if fullscreen {
		width, height = c.Resolution()
	}

	win, err := xwindow.Generate(c.X)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window: %w", err)
	}
	win.Create(c.X.RootWin(), 0, 0, width, height,
		xproto.CwBackPixel|xproto.CwEventMask,
		0, xproto.EventMaskStructureNotify)
	win.Map()

	return &Window{
		conn:       c,
		screen:     c,
		win:        win,
		width:      width,
		height:     height,
		fullscreen: fullscreen,
	}, nil
}

// Resolution returns the window size.
func (w *Window) Resolution() (width, height int) {
	return w.width, w.height
}

// Displays returns the Xinerama layout for a window covering the root. A
// smaller window is treated as a single display.
func (w *Window) Displays() []image.Rectangle {
	if !w.fullscreen {
		return nil
	}
	return w.screen.Displays()
}

// DPI returns the server density.
func (w *Window) DPI() float64 {
	return w.screen.DPI()
}

// Present uploads frame as the window background and repaints it.
func (w *Window) Present(frame *image.RGBA) error {
	ximg := xgraphics.NewConvert(w.conn.X, frame)
	defer ximg.Destroy()

	if err := ximg.XSurfaceSet(w.win.Id); err != nil {
		return fmt.Errorf("failed to create pixmap: %w", err)
	}
	ximg.XDraw()
	ximg.XPaint(w.win.Id)
	w.conn.X.Sync()
	return nil
}

// Close destroys the window.
func (w *Window) Close() {
	w.win.Destroy()
}
