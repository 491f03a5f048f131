// Package device describes the boundary between the render system and a
// native driver: instances, physical devices and logical devices, along
// with plain records of their properties. Backends implement these
// interfaces on top of a real API.
package device

import "github.com/devblok/rendersys/caps"

// Driver is the entry point of a native graphics API.
type Driver interface {
	// Name is the API name, e.g. "Vulkan"
	Name() string

	// Conventions are the fixed coordinate and shader conventions of the API
	Conventions() Conventions

	// InstanceLayers lists the optional layers the driver offers
	InstanceLayers() ([]LayerProperties, error)

	// InstanceExtensions lists the instance level extensions the driver offers
	InstanceExtensions() ([]ExtensionProperties, error)

	// CreateInstance connects to the driver. The returned Instance
	// must be destroyed after every device it produced.
	CreateInstance(InstanceCreateInfo) (Instance, error)
}

// Instance is an active connection to the driver.
type Instance interface {
	// PhysicalDevices returns the devices in the driver's enumeration order
	PhysicalDevices() ([]PhysicalDevice, error)

	// LoadExtensions resolves the entry points of the enabled
	// instance extensions
	LoadExtensions() error

	// InstallDebugCallback routes driver diagnostics to cb.
	// It requires the debug report extension to be enabled.
	InstallDebugCallback(cb DebugCallback) error

	// RemoveDebugCallback uninstalls the callback, if any
	RemoveDebugCallback()

	// Destroy destroys internal members
	Destroy()
}

// PhysicalDevice is a GPU reported by the driver.
type PhysicalDevice interface {
	// Describe reads the device's properties, limits, features,
	// memory layout, extensions and queue families
	Describe() (Description, error)

	// CreateLogicalDevice opens the device with the given queues
	CreateLogicalDevice(LogicalDeviceCreateInfo) (LogicalDevice, error)
}

// LogicalDevice is an opened physical device.
type LogicalDevice interface {
	// WaitIdle blocks until the device finished all submitted work
	WaitIdle() error

	// Destroy destroys internal members
	Destroy()
}

// Conventions an API imposes on everything built on it.
type Conventions struct {
	ShadingLanguage caps.ShadingLanguage
	ScreenOrigin    caps.ScreenOrigin
	ClippingRange   caps.ClippingRange
}

// MakeVersion packs a version the way driver APIs expect it.
func MakeVersion(major, minor, patch uint32) uint32 {
	return major<<22 | minor<<12 | patch
}

// InstanceCreateInfo describes the connection to create.
type InstanceCreateInfo struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	APIVersion         uint32

	Layers     []string
	Extensions []string
}

// LogicalDeviceCreateInfo describes a logical device to create.
type LogicalDeviceCreateInfo struct {
	Queues     []QueueCreateInfo
	Extensions []string
	Features   Features
}

// QueueCreateInfo requests queues from one family.
type QueueCreateInfo struct {
	Family     uint32
	Priorities []float32
}

// LayerProperties describes an optional driver layer.
type LayerProperties struct {
	Name                  string
	Description           string
	SpecVersion           uint32
	ImplementationVersion uint32
}

// ExtensionProperties describes an optional driver extension.
type ExtensionProperties struct {
	Name        string
	SpecVersion uint32
}

// LayerNames returns the names of the given layers in order.
func LayerNames(layers []LayerProperties) []string {
	names := make([]string, len(layers))
	for i, l := range layers {
		names[i] = l.Name
	}
	return names
}

// ExtensionNames returns the names of the given extensions in order.
func ExtensionNames(extensions []ExtensionProperties) []string {
	names := make([]string, len(extensions))
	for i, e := range extensions {
		names[i] = e.Name
	}
	return names
}
