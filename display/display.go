// Package display enumerates the monitors connected to the machine and
// the video modes they support. Enumeration is snapshot based: call
// QueryDisplays again to observe hot-plugged monitors.
package display

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slices"
)

// DefaultRefreshRate is assumed for a current mode whose refresh rate
// the platform does not report.
const DefaultRefreshRate = 60

// Mode is a resolution and refresh rate.
type Mode struct {
	Width       uint32 `json:"width"`
	Height      uint32 `json:"height"`
	RefreshRate uint32 `json:"refreshRate"`
}

// Descriptor is a snapshot of one monitor.
type Descriptor struct {
	DeviceName  string `json:"deviceName"`
	OffsetX     int32  `json:"offsetX"`
	OffsetY     int32  `json:"offsetY"`
	Primary     bool   `json:"primary"`
	CurrentMode Mode   `json:"currentMode"`
	Modes       []Mode `json:"modes"`
}

// Field marks which fields of a RawMode the platform populated.
type Field uint32

// Mode fields
const (
	FieldWidth Field = 1 << iota
	FieldHeight
	FieldRefreshRate

	FieldAll = FieldWidth | FieldHeight | FieldRefreshRate
)

// RawMode is a mode record as the platform reports it.
type RawMode struct {
	Width       uint32
	Height      uint32
	RefreshRate uint32
	Fields      Field
}

// Complete reports whether width, height and refresh rate are all populated.
func (r RawMode) Complete() bool {
	return r.Fields&FieldAll == FieldAll
}

// Mode drops the field mask.
func (r RawMode) Mode() Mode {
	return Mode{Width: r.Width, Height: r.Height, RefreshRate: r.RefreshRate}
}

// Bounds is a monitor's rectangle in virtual desktop space.
type Bounds struct {
	X      int32
	Y      int32
	Width  uint32
	Height uint32
}

// Monitor is one connected output device, valid for the duration of
// the enumeration callback it was handed to.
type Monitor interface {
	Name() string
	Bounds() Bounds
	Primary() bool

	// CurrentMode is the mode the monitor is driven at
	CurrentMode() (RawMode, error)

	// EachMode calls fn for every mode record, stopping when fn returns false
	EachMode(fn func(RawMode) bool) error
}

// Provider enumerates monitors through the platform.
type Provider interface {
	// EachMonitor calls fn synchronously for every connected monitor,
	// stopping when fn returns false
	EachMonitor(fn func(Monitor) bool) error
}

// collector accumulates the results of a single QueryDisplays call.
type collector struct {
	descriptors []Descriptor
	err         error
}

func (c *collector) add(m Monitor) bool {
	d, err := describe(m)
	if err != nil {
		c.err = errors.Wrapf(err, "monitor %q", m.Name())
		return false
	}
	c.descriptors = append(c.descriptors, d)
	return true
}

// QueryDisplays builds one descriptor per connected monitor, in the
// order the provider reports them.
func QueryDisplays(p Provider) ([]Descriptor, error) {
	c := &collector{}
	if err := p.EachMonitor(c.add); err != nil {
		return nil, errors.Wrap(err, "enumerate monitors")
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.descriptors, nil
}

func describe(m Monitor) (Descriptor, error) {
	b := m.Bounds()
	d := Descriptor{
		DeviceName: m.Name(),
		OffsetX:    b.X,
		OffsetY:    b.Y,
		Primary:    m.Primary(),
	}

	current, err := m.CurrentMode()
	if err != nil {
		return d, errors.Wrap(err, "current mode")
	}
	d.CurrentMode = currentMode(current, b)

	if d.Modes, err = QuerySupportedModes(m); err != nil {
		return d, err
	}
	return d, nil
}

// currentMode fills what the platform left out of the current mode:
// the resolution from the bounds and the refresh rate from DefaultRefreshRate.
func currentMode(r RawMode, b Bounds) Mode {
	mode := r.Mode()
	if r.Fields&FieldWidth == 0 {
		mode.Width = b.Width
	}
	if r.Fields&FieldHeight == 0 {
		mode.Height = b.Height
	}
	if r.Fields&FieldRefreshRate == 0 || mode.RefreshRate == 0 {
		mode.RefreshRate = DefaultRefreshRate
	}
	return mode
}

// QuerySupportedModes lists the modes of m. Records missing any field
// are dropped; the rest are sorted and deduplicated by FinalizeModes.
func QuerySupportedModes(m Monitor) ([]Mode, error) {
	var modes []Mode
	err := m.EachMode(func(r RawMode) bool {
		if r.Complete() {
			modes = append(modes, r.Mode())
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrap(err, "enumerate modes")
	}
	return FinalizeModes(modes), nil
}

// FinalizeModes sorts modes by width, height and refresh rate, all
// ascending, and removes exact duplicates. It sorts in place.
func FinalizeModes(modes []Mode) []Mode {
	slices.SortFunc(modes, compareModes)
	return slices.Compact(modes)
}

func compareModes(a, b Mode) int {
	switch {
	case a.Width != b.Width:
		return cmp(a.Width, b.Width)
	case a.Height != b.Height:
		return cmp(a.Height, b.Height)
	}
	return cmp(a.RefreshRate, b.RefreshRate)
}

func cmp(a, b uint32) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
