//go:build windows

// Package win32 enumerates displays with the user32 monitor API, available
// as provider "win32" once imported.
package win32

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"

	"github.com/devblok/rendersys/display"
)

// Name is the name the provider registers under.
const Name = "win32"

const (
	dmPelsWidth        = 0x00080000
	dmPelsHeight       = 0x00100000
	dmDisplayFrequency = 0x00400000

	monitorInfoPrimary  = 0x00000001
	enumCurrentSettings = 0xFFFFFFFF
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW     = user32.NewProc("GetMonitorInfoW")
	procEnumDisplaySettings = user32.NewProc("EnumDisplaySettingsW")

	enumCallback = windows.NewCallback(enumMonitor)
)

func init() {
	display.RegisterProvider(Name, Open)
}

// Open returns the provider. There is nothing to release.
func Open() (display.Provider, func(), error) {
	if err := procEnumDisplayMonitors.Find(); err != nil {
		return nil, nil, errors.Wrap(err, "user32")
	}
	return Provider{}, func() {}, nil
}

type monitorInfo struct {
	Size    uint32
	Monitor windows.Rect
	Work    windows.Rect
	Flags   uint32
	Device  [32]uint16
}

// devMode is DEVMODEW with the display variant of its union.
type devMode struct {
	DeviceName       [32]uint16
	SpecVersion      uint16
	DriverVersion    uint16
	Size             uint16
	DriverExtra      uint16
	Fields           uint32
	PositionX        int32
	PositionY        int32
	Orientation      uint32
	FixedOutput      uint32
	Color            int16
	Duplex           int16
	YResolution      int16
	TTOption         int16
	Collate          int16
	FormName         [32]uint16
	LogPixels        uint16
	BitsPerPel       uint32
	PelsWidth        uint32
	PelsHeight       uint32
	DisplayFlags     uint32
	DisplayFrequency uint32
	ICMMethod        uint32
	ICMIntent        uint32
	MediaType        uint32
	DitherType       uint32
	Reserved1        uint32
	Reserved2        uint32
	PanningWidth     uint32
	PanningHeight    uint32
}

// enumeration collects the monitor handles of one EnumDisplayMonitors call.
type enumeration struct {
	handles []windows.Handle
}

// The OS callback cannot carry a Go pointer, so each enumeration is
// looked up by the id passed through the callback's data argument.
var (
	enumerationsMu sync.Mutex
	enumerations   = map[uintptr]*enumeration{}
	enumerationID  atomic.Uintptr
)

func enumMonitor(handle, hdc, rect, data uintptr) uintptr {
	enumerationsMu.Lock()
	e := enumerations[data]
	enumerationsMu.Unlock()
	if e == nil {
		return 0
	}
	e.handles = append(e.handles, windows.Handle(handle))
	return 1
}

func monitorHandles() ([]windows.Handle, error) {
	id := enumerationID.Add(1)
	e := &enumeration{}

	enumerationsMu.Lock()
	enumerations[id] = e
	enumerationsMu.Unlock()
	defer func() {
		enumerationsMu.Lock()
		delete(enumerations, id)
		enumerationsMu.Unlock()
	}()

	ok, _, err := procEnumDisplayMonitors.Call(0, 0, enumCallback, id)
	if ok == 0 {
		return nil, errors.Wrap(err, "EnumDisplayMonitors")
	}
	return e.handles, nil
}

// Provider lists monitors attached to the desktop.
type Provider struct{}

// EachMonitor implements display.Provider.
func (Provider) EachMonitor(fn func(display.Monitor) bool) error {
	handles, err := monitorHandles()
	if err != nil {
		return err
	}

	for _, h := range handles {
		info := monitorInfo{Size: uint32(unsafe.Sizeof(monitorInfo{}))}
		ok, _, err := procGetMonitorInfoW.Call(uintptr(h), uintptr(unsafe.Pointer(&info)))
		if ok == 0 {
			return errors.Wrap(err, "GetMonitorInfoW")
		}
		if !fn(&monitor{info: info}) {
			break
		}
	}
	return nil
}

type monitor struct {
	info monitorInfo
}

func (m *monitor) Name() string { return windows.UTF16ToString(m.info.Device[:]) }
func (m *monitor) Primary() bool { return m.info.Flags&monitorInfoPrimary != 0 }

func (m *monitor) Bounds() display.Bounds {
	r := m.info.Monitor
	return display.Bounds{
		X:      r.Left,
		Y:      r.Top,
		Width:  uint32(r.Right - r.Left),
		Height: uint32(r.Bottom - r.Top),
	}
}

func (m *monitor) settings(index uint32, dm *devMode) bool {
	*dm = devMode{Size: uint16(unsafe.Sizeof(devMode{}))}
	ok, _, _ := procEnumDisplaySettings.Call(
		uintptr(unsafe.Pointer(&m.info.Device[0])),
		uintptr(index),
		uintptr(unsafe.Pointer(dm)),
	)
	return ok != 0
}

func (m *monitor) CurrentMode() (display.RawMode, error) {
	var dm devMode
	if !m.settings(enumCurrentSettings, &dm) {
		// Reported as unknown so the caller falls back to the monitor rectangle.
		return display.RawMode{}, nil
	}
	return rawMode(&dm), nil
}

func (m *monitor) EachMode(fn func(display.RawMode) bool) error {
	var dm devMode
	for i := uint32(0); m.settings(i, &dm); i++ {
		if !fn(rawMode(&dm)) {
			break
		}
	}
	return nil
}

func rawMode(dm *devMode) display.RawMode {
	r := display.RawMode{
		Width:       dm.PelsWidth,
		Height:      dm.PelsHeight,
		RefreshRate: dm.DisplayFrequency,
	}
	if dm.Fields&dmPelsWidth != 0 {
		r.Fields |= display.FieldWidth
	}
	if dm.Fields&dmPelsHeight != 0 {
		r.Fields |= display.FieldHeight
	}
	if dm.Fields&dmDisplayFrequency != 0 {
		r.Fields |= display.FieldRefreshRate
	}
	return r
}
