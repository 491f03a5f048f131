// Package sdl enumerates displays through SDL2. Register it by importing
// the package for its side effects; it is available as provider "sdl".
package sdl

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/rendersys/display"
)

// Name is the name the provider registers under.
const Name = "sdl"

func init() {
	display.RegisterProvider(Name, Open)
}

// Open initializes the SDL video subsystem. Call the returned func to
// shut it down again. SDL must be driven from the main thread.
func Open() (display.Provider, func(), error) {
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return nil, nil, errors.Wrap(err, "sdl.InitSubSystem")
	}
	return Provider{}, func() { sdl.QuitSubSystem(sdl.INIT_VIDEO) }, nil
}

// Provider lists SDL video displays. The video subsystem must be initialized.
type Provider struct{}

// EachMonitor implements display.Provider.
func (Provider) EachMonitor(fn func(display.Monitor) bool) error {
	count, err := sdl.GetNumVideoDisplays()
	if err != nil {
		return errors.Wrap(err, "sdl.GetNumVideoDisplays")
	}

	for i := 0; i < count; i++ {
		m, err := newMonitor(i)
		if err != nil {
			return err
		}
		if !fn(m) {
			break
		}
	}
	return nil
}

type monitor struct {
	index  int
	name   string
	bounds sdl.Rect
}

func newMonitor(index int) (*monitor, error) {
	name, err := sdl.GetDisplayName(index)
	if err != nil {
		return nil, errors.Wrapf(err, "sdl.GetDisplayName(%d)", index)
	}
	bounds, err := sdl.GetDisplayBounds(index)
	if err != nil {
		return nil, errors.Wrapf(err, "sdl.GetDisplayBounds(%d)", index)
	}
	return &monitor{index: index, name: name, bounds: bounds}, nil
}

func (m *monitor) Name() string { return m.name }

func (m *monitor) Bounds() display.Bounds {
	return display.Bounds{
		X:      m.bounds.X,
		Y:      m.bounds.Y,
		Width:  uint32(m.bounds.W),
		Height: uint32(m.bounds.H),
	}
}

// Primary reports whether the display sits at the desktop origin,
// which is where SDL places the primary display.
func (m *monitor) Primary() bool {
	return m.bounds.X == 0 && m.bounds.Y == 0
}

func (m *monitor) CurrentMode() (display.RawMode, error) {
	mode, err := sdl.GetCurrentDisplayMode(m.index)
	if err != nil {
		return display.RawMode{}, errors.Wrapf(err, "sdl.GetCurrentDisplayMode(%d)", m.index)
	}
	return rawMode(mode), nil
}

func (m *monitor) EachMode(fn func(display.RawMode) bool) error {
	count, err := sdl.GetNumDisplayModes(m.index)
	if err != nil {
		return errors.Wrapf(err, "sdl.GetNumDisplayModes(%d)", m.index)
	}

	for i := 0; i < count; i++ {
		mode, err := sdl.GetDisplayMode(m.index, i)
		if err != nil {
			return errors.Wrapf(err, "sdl.GetDisplayMode(%d, %d)", m.index, i)
		}
		if !fn(rawMode(mode)) {
			break
		}
	}
	return nil
}

// rawMode converts an SDL mode. SDL reports zero for anything it does not know.
func rawMode(mode sdl.DisplayMode) display.RawMode {
	r := display.RawMode{
		Width:       uint32(mode.W),
		Height:      uint32(mode.H),
		RefreshRate: uint32(mode.RefreshRate),
	}
	if mode.W > 0 {
		r.Fields |= display.FieldWidth
	}
	if mode.H > 0 {
		r.Fields |= display.FieldHeight
	}
	if mode.RefreshRate > 0 {
		r.Fields |= display.FieldRefreshRate
	}
	return r
}
