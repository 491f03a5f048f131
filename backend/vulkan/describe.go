package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/rendersys/device"
)

func (p physicalDevice) Describe() (device.Description, error) {
	var d device.Description

	var numExtensions uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(p.handle, "", &numExtensions, nil)); err != nil {
		return d, errors.Wrap(err, "vk.EnumerateDeviceExtensionProperties()")
	}
	extensions := make([]vk.ExtensionProperties, numExtensions)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(p.handle, "", &numExtensions, extensions)); err != nil {
		return d, errors.Wrap(err, "vk.EnumerateDeviceExtensionProperties()")
	}
	d.Extensions = device.ExtensionNames(extensionProperties(extensions))

	var numLayers uint32
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(p.handle, &numLayers, nil)); err != nil {
		return d, errors.Wrap(err, "vk.EnumerateDeviceLayerProperties()")
	}
	layers := make([]vk.LayerProperties, numLayers)
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(p.handle, &numLayers, layers)); err != nil {
		return d, errors.Wrap(err, "vk.EnumerateDeviceLayerProperties()")
	}
	d.Layers = device.LayerNames(layerProperties(layers))

	d.Properties = p.properties()
	d.Features = p.features()
	d.Memory = p.memoryProperties()
	d.QueueFamilies = p.queueFamilies()
	return d, nil
}

func (p physicalDevice) properties() device.Properties {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(p.handle, &props)
	props.Deref()
	props.Limits.Deref()
	l := props.Limits

	return device.Properties{
		Name:          vk.ToString(props.DeviceName[:]),
		Type:          deviceType(props.DeviceType),
		VendorID:      props.VendorID,
		DeviceID:      props.DeviceID,
		APIVersion:    props.ApiVersion,
		DriverVersion: props.DriverVersion,
		Limits: device.Limits{
			MaxImageDimension1D:          l.MaxImageDimension1D,
			MaxImageDimension2D:          l.MaxImageDimension2D,
			MaxImageDimension3D:          l.MaxImageDimension3D,
			MaxImageDimensionCube:        l.MaxImageDimensionCube,
			MaxImageArrayLayers:          l.MaxImageArrayLayers,
			MaxUniformBufferRange:        l.MaxUniformBufferRange,
			MaxStorageBufferRange:        l.MaxStorageBufferRange,
			MaxTessellationPatchSize:     l.MaxTessellationPatchSize,
			MaxComputeWorkGroupCount:     l.MaxComputeWorkGroupCount,
			MaxComputeWorkGroupSize:      l.MaxComputeWorkGroupSize,
			MaxSamplerAnisotropy:         l.MaxSamplerAnisotropy,
			MaxColorAttachments:          l.MaxColorAttachments,
			MaxViewports:                 l.MaxViewports,
			MaxMemoryAllocationCount:     l.MaxMemoryAllocationCount,
			FramebufferColorSampleCounts: uint32(l.FramebufferColorSampleCounts),
		},
	}
}

func deviceType(t vk.PhysicalDeviceType) device.Type {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return device.TypeIntegratedGPU
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return device.TypeDiscreteGPU
	case vk.PhysicalDeviceTypeVirtualGpu:
		return device.TypeVirtualGPU
	case vk.PhysicalDeviceTypeCpu:
		return device.TypeCPU
	}
	return device.TypeOther
}

func (p physicalDevice) features() device.Features {
	var f vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(p.handle, &f)
	f.Deref()
	return device.Features{
		GeometryShader:            f.GeometryShader.B(),
		TessellationShader:        f.TessellationShader.B(),
		MultiViewport:             f.MultiViewport.B(),
		SamplerAnisotropy:         f.SamplerAnisotropy.B(),
		ImageCubeArray:            f.ImageCubeArray.B(),
		DrawIndirectFirstInstance: f.DrawIndirectFirstInstance.B(),
	}
}

func (p physicalDevice) memoryProperties() device.MemoryProperties {
	var mp vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(p.handle, &mp)
	mp.Deref()

	var m device.MemoryProperties
	for i := uint32(0); i < mp.MemoryHeapCount; i++ {
		mp.MemoryHeaps[i].Deref()
		heap := mp.MemoryHeaps[i]
		m.Heaps = append(m.Heaps, device.MemoryHeap{
			Size:        uint64(heap.Size),
			DeviceLocal: heap.Flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0,
		})
	}
	for i := uint32(0); i < mp.MemoryTypeCount; i++ {
		mp.MemoryTypes[i].Deref()
		t := mp.MemoryTypes[i]
		m.Types = append(m.Types, device.MemoryType{
			HeapIndex:    t.HeapIndex,
			DeviceLocal:  t.PropertyFlags&vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit) != 0,
			HostVisible:  t.PropertyFlags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) != 0,
			HostCoherent: t.PropertyFlags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit) != 0,
			HostCached:   t.PropertyFlags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostCachedBit) != 0,
		})
	}
	return m
}

// queueFamilies reports present support together with graphics, since
// no surface exists while the device is being chosen.
func (p physicalDevice) queueFamilies() []device.QueueFamily {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(p.handle, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(p.handle, &count, props)

	families := make([]device.QueueFamily, len(props))
	for i := range props {
		props[i].Deref()
		flags := props[i].QueueFlags
		graphics := flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0
		families[i] = device.QueueFamily{
			Index:    uint32(i),
			Count:    props[i].QueueCount,
			Graphics: graphics,
			Compute:  flags&vk.QueueFlags(vk.QueueComputeBit) != 0,
			Transfer: flags&vk.QueueFlags(vk.QueueTransferBit) != 0,
			Present:  graphics,
		}
	}
	return families
}

func layerProperties(list []vk.LayerProperties) []device.LayerProperties {
	layers := make([]device.LayerProperties, len(list))
	for i := range list {
		list[i].Deref()
		layers[i] = device.LayerProperties{
			Name:                  vk.ToString(list[i].LayerName[:]),
			Description:           vk.ToString(list[i].Description[:]),
			SpecVersion:           list[i].SpecVersion,
			ImplementationVersion: list[i].ImplementationVersion,
		}
	}
	return layers
}

func extensionProperties(list []vk.ExtensionProperties) []device.ExtensionProperties {
	extensions := make([]device.ExtensionProperties, len(list))
	for i := range list {
		list[i].Deref()
		extensions[i] = device.ExtensionProperties{
			Name:        vk.ToString(list[i].ExtensionName[:]),
			SpecVersion: list[i].SpecVersion,
		}
	}
	return extensions
}
