package sdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/rendersys/display"
)

func TestRawMode(t *testing.T) {
	full := rawMode(sdl.DisplayMode{W: 1920, H: 1080, RefreshRate: 60})
	assert.True(t, full.Complete())
	assert.Equal(t, display.Mode{Width: 1920, Height: 1080, RefreshRate: 60}, full.Mode())

	unknownRate := rawMode(sdl.DisplayMode{W: 1280, H: 720})
	assert.False(t, unknownRate.Complete())
	assert.Equal(t, display.FieldWidth|display.FieldHeight, unknownRate.Fields)
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, display.Providers(), Name)
}
