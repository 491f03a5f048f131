//go:build windows

package win32

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devblok/rendersys/display"
)

func TestDevModeLayout(t *testing.T) {
	assert.Equal(t, uintptr(220), unsafe.Sizeof(devMode{}))
	assert.Equal(t, uintptr(172), unsafe.Offsetof(devMode{}.PelsWidth))
	assert.Equal(t, uintptr(184), unsafe.Offsetof(devMode{}.DisplayFrequency))
	assert.Equal(t, uintptr(104), unsafe.Sizeof(monitorInfo{}))
}

func TestRawModeFields(t *testing.T) {
	dm := devMode{
		Fields:           dmPelsWidth | dmPelsHeight,
		PelsWidth:        1920,
		PelsHeight:       1080,
		DisplayFrequency: 60,
	}
	r := rawMode(&dm)
	assert.False(t, r.Complete())

	dm.Fields |= dmDisplayFrequency
	r = rawMode(&dm)
	assert.True(t, r.Complete())
	assert.Equal(t, display.Mode{Width: 1920, Height: 1080, RefreshRate: 60}, r.Mode())
}

func TestQueryDisplays(t *testing.T) {
	displays, err := display.Query(Name)
	require.NoError(t, err)
	for _, d := range displays {
		assert.NotEmpty(t, d.DeviceName)
		assert.NotZero(t, d.CurrentMode.RefreshRate)
	}
}
