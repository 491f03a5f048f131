package caps

import "golang.org/x/exp/slices"

// Instance extensions
const (
	SurfaceExtension        = "VK_KHR_surface"
	Win32SurfaceExtension   = "VK_KHR_win32_surface"
	XlibSurfaceExtension    = "VK_KHR_xlib_surface"
	XcbSurfaceExtension     = "VK_KHR_xcb_surface"
	WaylandSurfaceExtension = "VK_KHR_wayland_surface"
	MetalSurfaceExtension   = "VK_EXT_metal_surface"
	AndroidSurfaceExtension = "VK_KHR_android_surface"
	DebugReportExtension    = "VK_EXT_debug_report"
)

// Device extensions
const (
	SwapchainExtension                 = "VK_KHR_swapchain"
	ConservativeRasterizationExtension = "VK_EXT_conservative_rasterization"
	TransformFeedbackExtension         = "VK_EXT_transform_feedback"
)

// Layers
const (
	OptimusLayer    = "VK_LAYER_NV_optimus"
	ValidationLayer = "VK_LAYER_KHRONOS_validation"
)

// SurfaceExtensions returns the surface extensions a platform needs,
// keyed by GOOS.
func SurfaceExtensions(goos string) []string {
	switch goos {
	case "windows":
		return []string{SurfaceExtension, Win32SurfaceExtension}
	case "darwin", "ios":
		return []string{SurfaceExtension, MetalSurfaceExtension}
	case "android":
		return []string{SurfaceExtension, AndroidSurfaceExtension}
	default:
		return []string{SurfaceExtension, XlibSurfaceExtension, XcbSurfaceExtension, WaylandSurfaceExtension}
	}
}

// HasPlatformSurface reports whether enabled holds the generic surface
// extension and at least one surface extension of goos.
func HasPlatformSurface(enabled []string, goos string) bool {
	wanted := SurfaceExtensions(goos)
	if !slices.Contains(enabled, wanted[0]) {
		return false
	}
	for _, name := range wanted[1:] {
		if slices.Contains(enabled, name) {
			return true
		}
	}
	return false
}

// RequiredInstanceExtensions filters the available instance extensions
// down to the ones the render system enables. Surface extensions for
// goos are always taken, the debug report extension only when debug is set.
// The result keeps the order of available.
func RequiredInstanceExtensions(available []string, goos string, debug bool) []string {
	wanted := SurfaceExtensions(goos)
	if debug {
		wanted = append(wanted, DebugReportExtension)
	}
	return filter(available, wanted)
}

// RequiredLayers filters the available layers down to the ones the render
// system enables. The vendor optimization layer is taken whenever present,
// the validation layer only when debug is set.
func RequiredLayers(available []string, debug bool) []string {
	wanted := []string{OptimusLayer}
	if debug {
		wanted = append(wanted, ValidationLayer)
	}
	return filter(available, wanted)
}

// Missing returns the names in required that are absent from available.
func Missing(available, required []string) []string {
	var missing []string
	for _, name := range required {
		if !slices.Contains(available, name) {
			missing = append(missing, name)
		}
	}
	return missing
}

func filter(available, wanted []string) []string {
	var out []string
	for _, name := range available {
		if slices.Contains(wanted, name) && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}
