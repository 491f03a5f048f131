package device

// Type is the kind of a physical device.
type Type int

// Physical device types
const (
	TypeOther Type = iota
	TypeIntegratedGPU
	TypeDiscreteGPU
	TypeVirtualGPU
	TypeCPU
)

func (t Type) String() string {
	switch t {
	case TypeIntegratedGPU:
		return "integrated"
	case TypeDiscreteGPU:
		return "discrete"
	case TypeVirtualGPU:
		return "virtual"
	case TypeCPU:
		return "cpu"
	}
	return "other"
}

// Description is everything a physical device reports about itself.
type Description struct {
	Properties    Properties
	Features      Features
	Memory        MemoryProperties
	Extensions    []string
	Layers        []string
	QueueFamilies []QueueFamily
}

// HasExtensions reports whether every one of names is among the
// device's extensions.
func (d Description) HasExtensions(names ...string) bool {
	for _, name := range names {
		found := false
		for _, ext := range d.Extensions {
			if ext == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Properties are the general properties of a physical device.
type Properties struct {
	Name          string
	Type          Type
	VendorID      uint32
	DeviceID      uint32
	APIVersion    uint32
	DriverVersion uint32
	Limits        Limits
}

// Limits are the numeric limits of a physical device.
type Limits struct {
	MaxImageDimension1D          uint32
	MaxImageDimension2D          uint32
	MaxImageDimension3D          uint32
	MaxImageDimensionCube        uint32
	MaxImageArrayLayers          uint32
	MaxUniformBufferRange        uint32
	MaxStorageBufferRange        uint32
	MaxTessellationPatchSize     uint32
	MaxComputeWorkGroupCount     [3]uint32
	MaxComputeWorkGroupSize      [3]uint32
	MaxSamplerAnisotropy         float32
	MaxColorAttachments          uint32
	MaxViewports                 uint32
	MaxMemoryAllocationCount     uint32
	FramebufferColorSampleCounts uint32
}

// Features are the optional features of a physical device.
type Features struct {
	GeometryShader            bool
	TessellationShader        bool
	MultiViewport             bool
	SamplerAnisotropy         bool
	ImageCubeArray            bool
	DrawIndirectFirstInstance bool
}

// MemoryProperties is the memory layout of a physical device.
type MemoryProperties struct {
	Heaps []MemoryHeap
	Types []MemoryType
}

// MemoryHeap is one memory heap.
type MemoryHeap struct {
	Size        uint64
	DeviceLocal bool
}

// MemoryType is one memory type and the heap it lives in.
type MemoryType struct {
	HeapIndex    uint32
	DeviceLocal  bool
	HostVisible  bool
	HostCoherent bool
	HostCached   bool
}

// Total returns the summed size of every heap.
func (m MemoryProperties) Total() uint64 {
	var total uint64
	for _, h := range m.Heaps {
		total += h.Size
	}
	return total
}

// LargestDeviceLocalHeap returns the size of the biggest device local heap.
func (m MemoryProperties) LargestDeviceLocalHeap() uint64 {
	var largest uint64
	for _, h := range m.Heaps {
		if h.DeviceLocal && h.Size > largest {
			largest = h.Size
		}
	}
	return largest
}

// QueueFamily describes one queue family of a physical device.
type QueueFamily struct {
	Index    uint32
	Count    uint32
	Graphics bool
	Compute  bool
	Transfer bool
	Present  bool
}
