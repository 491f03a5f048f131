// Package vulkan is the Vulkan backend. Importing it registers the backend
// under the name "vulkan" with the highest priority; opening it fails
// when no Vulkan loader can be found.
package vulkan

import (
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
	"golang.org/x/exp/slices"

	"github.com/devblok/rendersys/backend"
	"github.com/devblok/rendersys/caps"
	"github.com/devblok/rendersys/core"
	"github.com/devblok/rendersys/device"
)

// Name the backend registers under.
const Name = "vulkan"

func init() {
	backend.Register(Name, 100, func(opts backend.Options) (core.Backend, error) {
		return New(opts)
	})
}

var (
	loaderOnce sync.Once
	loaderErr  error
)

// loadLoader resolves the global entry points once per process.
// A nil procAddr selects the system loader.
func loadLoader(procAddr unsafe.Pointer) error {
	loaderOnce.Do(func() {
		if procAddr == nil {
			if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
				loaderErr = errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()")
				return
			}
		} else {
			vk.SetGetInstanceProcAddr(procAddr)
		}
		if err := vk.Init(); err != nil {
			loaderErr = errors.Wrap(err, "vk.Init()")
		}
	})
	return loaderErr
}

// Backend implements core.Backend on Vulkan.
type Backend struct {
	opts backend.Options
	log  logrus.FieldLogger
}

// New loads the Vulkan loader and returns the backend.
func New(opts backend.Options) (*Backend, error) {
	if err := loadLoader(opts.ProcAddr); err != nil {
		return nil, errors.Mark(err, backend.ErrNotAvailable)
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Backend{opts: opts, log: log.WithField("backend", Name)}, nil
}

// Driver implements core.Backend.
func (b *Backend) Driver() device.Driver {
	return driver{b}
}

// BindFactories implements core.Backend. Textures, render targets and
// queries are left unsupported.
func (b *Backend) BindFactories(info core.BindInfo) (core.Factories, error) {
	ld, ok := info.Device.(*logicalDevice)
	if !ok {
		return core.Factories{}, errors.Newf("vulkan: foreign logical device %T", info.Device)
	}

	f := &factories{
		device: ld.device,
		memory: info.Description.Memory,
		queues: info.Queues,
		log:    info.Logger,
	}
	if err := f.createPipelineCache(); err != nil {
		return core.Factories{}, err
	}
	ld.onDestroy = f.destroy

	return core.Factories{
		Buffers:         f,
		Samplers:        f,
		Shaders:         f,
		Pipelines:       f,
		RenderContexts:  f,
		CommandEncoders: f,
	}, nil
}

type driver struct {
	b *Backend
}

func (driver) Name() string {
	return "Vulkan"
}

func (driver) Conventions() device.Conventions {
	return device.Conventions{
		ShadingLanguage: caps.SPIRV,
		ScreenOrigin:    caps.UpperLeft,
		ClippingRange:   caps.ZeroToOne,
	}
}

func (driver) InstanceLayers() ([]device.LayerProperties, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceLayerProperties()")
	}
	list := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, list)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceLayerProperties()")
	}
	return layerProperties(list), nil
}

func (driver) InstanceExtensions() ([]device.ExtensionProperties, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceExtensionProperties()")
	}
	list := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, list)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceExtensionProperties()")
	}
	return extensionProperties(list), nil
}

func (d driver) CreateInstance(info device.InstanceCreateInfo) (device.Instance, error) {
	extensions := info.Extensions
	for _, ext := range d.b.opts.InstanceExtensions {
		if !slices.Contains(extensions, ext) {
			extensions = append(extensions, ext)
		}
	}

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         info.APIVersion,
		ApplicationVersion: info.ApplicationVersion,
		PApplicationName:   safeString(info.ApplicationName),
		EngineVersion:      info.EngineVersion,
		PEngineName:        safeString(info.EngineName),
	}
	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(info.Layers)),
		PpEnabledLayerNames:     safeStrings(info.Layers),
	}

	var handle vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &handle)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateInstance()")
	}
	return &instance{handle: handle, log: d.b.log}, nil
}

type instance struct {
	handle   vk.Instance
	log      logrus.FieldLogger
	callback vk.DebugReportCallback
	forward  device.DebugCallback
}

func (i *instance) PhysicalDevices() ([]device.PhysicalDevice, error) {
	var count uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(i.handle, &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}
	handles := make([]vk.PhysicalDevice, count)
	if err := vk.Error(vk.EnumeratePhysicalDevices(i.handle, &count, handles)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}

	devices := make([]device.PhysicalDevice, len(handles))
	for idx, h := range handles {
		devices[idx] = physicalDevice{handle: h}
	}
	return devices, nil
}

func (i *instance) LoadExtensions() error {
	if err := vk.InitInstance(i.handle); err != nil {
		return errors.Wrap(err, "vk.InitInstance()")
	}
	return nil
}

func (i *instance) RemoveDebugCallback() {
	if i.callback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(i.handle, i.callback, nil)
		i.callback = vk.NullDebugReportCallback
	}
	i.forward = nil
}

func (i *instance) Destroy() {
	vk.DestroyInstance(i.handle, nil)
}

type physicalDevice struct {
	handle vk.PhysicalDevice
}

func (p physicalDevice) CreateLogicalDevice(info device.LogicalDeviceCreateInfo) (device.LogicalDevice, error) {
	queueInfos := make([]vk.DeviceQueueCreateInfo, len(info.Queues))
	for i, q := range info.Queues {
		queueInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: q.Family,
			QueueCount:       uint32(len(q.Priorities)),
			PQueuePriorities: q.Priorities,
		}
	}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: safeStrings(info.Extensions),
		PEnabledFeatures: []vk.PhysicalDeviceFeatures{{
			GeometryShader:            bool32(info.Features.GeometryShader),
			TessellationShader:        bool32(info.Features.TessellationShader),
			MultiViewport:             bool32(info.Features.MultiViewport),
			SamplerAnisotropy:         bool32(info.Features.SamplerAnisotropy),
			ImageCubeArray:            bool32(info.Features.ImageCubeArray),
			DrawIndirectFirstInstance: bool32(info.Features.DrawIndirectFirstInstance),
		}},
	}

	var handle vk.Device
	if err := vk.Error(vk.CreateDevice(p.handle, &dci, nil, &handle)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateDevice()")
	}
	return &logicalDevice{device: handle}, nil
}

type logicalDevice struct {
	device vk.Device

	// onDestroy releases what the bound factories keep on the device
	onDestroy func()
}

func (d *logicalDevice) WaitIdle() error {
	if err := vk.Error(vk.DeviceWaitIdle(d.device)); err != nil {
		return errors.Wrap(err, "vk.DeviceWaitIdle()")
	}
	return nil
}

func (d *logicalDevice) Destroy() {
	if d.onDestroy != nil {
		d.onDestroy()
	}
	vk.DestroyDevice(d.device, nil)
}

func bool32(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}
