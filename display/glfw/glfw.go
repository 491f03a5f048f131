// Package glfw enumerates displays through GLFW 3.3, available as
// provider "glfw" once imported.
package glfw

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/devblok/rendersys/display"
)

// Name is the name the provider registers under.
const Name = "glfw"

func init() {
	display.RegisterProvider(Name, Open)
}

// Open initializes GLFW. The returned func terminates it. Both must run
// on the main thread.
func Open() (display.Provider, func(), error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, errors.Wrap(err, "glfw.Init")
	}
	return Provider{}, glfw.Terminate, nil
}

// Provider lists GLFW monitors. GLFW must be initialized.
type Provider struct{}

// EachMonitor implements display.Provider.
func (Provider) EachMonitor(fn func(display.Monitor) bool) error {
	primary := glfw.GetPrimaryMonitor()
	for _, m := range glfw.GetMonitors() {
		if !fn(monitor{m, m == primary}) {
			break
		}
	}
	return nil
}

type monitor struct {
	m       *glfw.Monitor
	primary bool
}

func (m monitor) Name() string { return m.m.GetName() }
func (m monitor) Primary() bool { return m.primary }

func (m monitor) Bounds() display.Bounds {
	x, y := m.m.GetPos()
	b := display.Bounds{X: int32(x), Y: int32(y)}
	if mode := m.m.GetVideoMode(); mode != nil {
		b.Width, b.Height = uint32(mode.Width), uint32(mode.Height)
	}
	return b
}

func (m monitor) CurrentMode() (display.RawMode, error) {
	mode := m.m.GetVideoMode()
	if mode == nil {
		return display.RawMode{}, errors.Newf("no video mode for monitor %q", m.Name())
	}
	return rawMode(mode), nil
}

func (m monitor) EachMode(fn func(display.RawMode) bool) error {
	for _, mode := range m.m.GetVideoModes() {
		if !fn(rawMode(mode)) {
			break
		}
	}
	return nil
}

func rawMode(mode *glfw.VidMode) display.RawMode {
	r := display.RawMode{
		Width:       uint32(mode.Width),
		Height:      uint32(mode.Height),
		RefreshRate: uint32(mode.RefreshRate),
	}
	if mode.Width > 0 {
		r.Fields |= display.FieldWidth
	}
	if mode.Height > 0 {
		r.Fields |= display.FieldHeight
	}
	if mode.RefreshRate > 0 {
		r.Fields |= display.FieldRefreshRate
	}
	return r
}
