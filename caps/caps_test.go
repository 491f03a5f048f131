package caps_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devblok/rendersys/caps"
)

func TestVendorByID(t *testing.T) {
	assert.Equal(t, "NVIDIA Corporation", caps.VendorByID(0x10DE))
	assert.Equal(t, "Intel Corporation", caps.VendorByID(caps.VendorIntel))
	assert.Equal(t, "Unknown", caps.VendorByID(0xdead))
}

func TestAPIVersionString(t *testing.T) {
	assert.Equal(t, "1.2.131", caps.APIVersionString(1<<22|2<<12|131))
	assert.Equal(t, "0.0.0", caps.APIVersionString(0))
}

func TestRequiredInstanceExtensions(t *testing.T) {
	available := []string{
		caps.DebugReportExtension,
		"VK_KHR_get_physical_device_properties2",
		caps.Win32SurfaceExtension,
		caps.SurfaceExtension,
	}

	assert.Equal(t,
		[]string{caps.Win32SurfaceExtension, caps.SurfaceExtension},
		caps.RequiredInstanceExtensions(available, "windows", false))
	assert.Equal(t,
		[]string{caps.DebugReportExtension, caps.Win32SurfaceExtension, caps.SurfaceExtension},
		caps.RequiredInstanceExtensions(available, "windows", true))
	assert.Equal(t,
		[]string{caps.SurfaceExtension},
		caps.RequiredInstanceExtensions(available, "linux", false))
}

func TestRequiredLayers(t *testing.T) {
	available := []string{caps.ValidationLayer, "VK_LAYER_MESA_overlay", caps.OptimusLayer}

	assert.Equal(t, []string{caps.OptimusLayer}, caps.RequiredLayers(available, false))
	assert.Equal(t, []string{caps.ValidationLayer, caps.OptimusLayer}, caps.RequiredLayers(available, true))
	assert.Empty(t, caps.RequiredLayers([]string{"VK_LAYER_MESA_overlay"}, true))
}

func TestMissing(t *testing.T) {
	assert.Equal(t, []string{"b"}, caps.Missing([]string{"a", "c"}, []string{"a", "b"}))
	assert.Empty(t, caps.Missing([]string{"a"}, nil))
}

func TestCapabilitiesSupports(t *testing.T) {
	c := caps.Capabilities{ShadingLanguages: []caps.ShadingLanguage{caps.SPIRV}}
	assert.True(t, c.Supports(caps.SPIRV))
	assert.False(t, c.Supports(caps.HLSL))
}

func TestHasPlatformSurface(t *testing.T) {
	assert.True(t, caps.HasPlatformSurface([]string{caps.SurfaceExtension, caps.XcbSurfaceExtension}, "linux"))
	assert.False(t, caps.HasPlatformSurface([]string{caps.SurfaceExtension}, "linux"))
	assert.False(t, caps.HasPlatformSurface([]string{caps.Win32SurfaceExtension}, "windows"))
	assert.False(t, caps.HasPlatformSurface([]string{caps.SurfaceExtension, caps.XlibSurfaceExtension}, "windows"))
}
