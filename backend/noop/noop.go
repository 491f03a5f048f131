// Package noop is a backend that runs entirely in memory. It behaves like
// a small, well behaved GPU and can be scripted to misbehave, which makes
// it the backend of choice for tests and dry runs.
package noop

import (
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/devblok/rendersys/backend"
	"github.com/devblok/rendersys/caps"
	"github.com/devblok/rendersys/core"
	"github.com/devblok/rendersys/device"
)

// Name the backend registers under.
const Name = "noop"

func init() {
	backend.Register(Name, 0, func(backend.Options) (core.Backend, error) {
		return New(Options{}), nil
	})
}

// Resource kinds that can be left unsupported through Options.Unsupported
const (
	KindBuffers         = "buffers"
	KindTextures        = "textures"
	KindSamplers        = "samplers"
	KindRenderTargets   = "render-targets"
	KindShaders         = "shaders"
	KindPipelines       = "pipelines"
	KindQueries         = "queries"
	KindRenderContexts  = "render-contexts"
	KindCommandEncoders = "command-encoders"
)

// Device scripts one physical device.
type Device struct {
	Description       device.Description
	FailDescribe      bool
	FailLogicalDevice bool
}

// Options script the backend. The zero value yields one capable device.
type Options struct {
	Devices    []Device
	Layers     []string
	Extensions []string

	FailInstance       bool
	FailLoadExtensions bool
	FailDebugCallback  bool
	FailBind           bool

	// Unsupported lists resource kinds whose factory is left nil
	Unsupported []string

	// Messages are delivered as soon as a debug callback is installed
	Messages []device.DebugMessage
}

// Journal records destruction and lifecycle events in order.
type Journal struct {
	mu     sync.Mutex
	events []string
}

// Record appends an event.
func (j *Journal) Record(event string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
}

// Events returns a copy of the recorded events.
func (j *Journal) Events() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.events...)
}

// Backend implements core.Backend in memory.
type Backend struct {
	opts    Options
	journal *Journal

	callback         device.DebugCallback
	lastInstanceInfo device.InstanceCreateInfo
	lastDeviceInfo   device.LogicalDeviceCreateInfo
}

// New creates a backend scripted by opts.
func New(opts Options) *Backend {
	if opts.Devices == nil {
		opts.Devices = []Device{{Description: DefaultDescription("Noop Device")}}
	}
	if opts.Layers == nil {
		opts.Layers = []string{caps.ValidationLayer, caps.OptimusLayer}
	}
	if opts.Extensions == nil {
		opts.Extensions = append(caps.SurfaceExtensions(runtime.GOOS), caps.DebugReportExtension)
	}
	return &Backend{opts: opts, journal: &Journal{}}
}

// DefaultDescription describes a capable device called name.
func DefaultDescription(name string) device.Description {
	return device.Description{
		Properties: device.Properties{
			Name:          name,
			Type:          device.TypeDiscreteGPU,
			VendorID:      caps.VendorMesa,
			DeviceID:      1,
			APIVersion:    device.MakeVersion(1, 2, 0),
			DriverVersion: device.MakeVersion(0, 1, 0),
			Limits: device.Limits{
				MaxImageDimension1D:      16384,
				MaxImageDimension2D:      16384,
				MaxImageDimension3D:      2048,
				MaxImageDimensionCube:    16384,
				MaxImageArrayLayers:      2048,
				MaxUniformBufferRange:    65536,
				MaxStorageBufferRange:    1 << 27,
				MaxTessellationPatchSize: 32,
				MaxComputeWorkGroupCount: [3]uint32{65535, 65535, 65535},
				MaxComputeWorkGroupSize:  [3]uint32{1024, 1024, 64},
				MaxSamplerAnisotropy:     16,
				MaxColorAttachments:      8,
				MaxViewports:             16,
				MaxMemoryAllocationCount: 4096,
			},
		},
		Features: device.Features{
			GeometryShader:     true,
			TessellationShader: true,
			MultiViewport:      true,
			SamplerAnisotropy:  true,
			ImageCubeArray:     true,
		},
		Memory: device.MemoryProperties{
			Heaps: []device.MemoryHeap{
				{Size: 256 << 20, DeviceLocal: true},
				{Size: 1 << 30},
			},
			Types: []device.MemoryType{
				{HeapIndex: 0, DeviceLocal: true},
				{HeapIndex: 1, HostVisible: true, HostCoherent: true},
			},
		},
		Extensions: []string{caps.SwapchainExtension},
		QueueFamilies: []device.QueueFamily{
			{Index: 0, Count: 16, Graphics: true, Compute: true, Transfer: true, Present: true},
			{Index: 1, Count: 2, Transfer: true},
		},
	}
}

// Journal returns the event journal.
func (b *Backend) Journal() *Journal {
	return b.journal
}

// Emit delivers m to the installed debug callback, if any.
func (b *Backend) Emit(m device.DebugMessage) {
	if b.callback != nil {
		b.callback(m)
	}
}

// LastInstanceInfo returns what the last instance was created with.
func (b *Backend) LastInstanceInfo() device.InstanceCreateInfo {
	return b.lastInstanceInfo
}

// LastDeviceInfo returns what the last logical device was created with.
func (b *Backend) LastDeviceInfo() device.LogicalDeviceCreateInfo {
	return b.lastDeviceInfo
}

// Driver implements core.Backend.
func (b *Backend) Driver() device.Driver {
	return driver{b}
}

// BindFactories implements core.Backend.
func (b *Backend) BindFactories(info core.BindInfo) (core.Factories, error) {
	if b.opts.FailBind {
		return core.Factories{}, errors.New("noop: bind failed")
	}
	f := factories{journal: b.journal}
	all := core.Factories{
		Buffers:         f,
		Textures:        f,
		Samplers:        f,
		RenderTargets:   f,
		Shaders:         f,
		Pipelines:       f,
		Queries:         f,
		RenderContexts:  f,
		CommandEncoders: f,
	}
	for _, kind := range b.opts.Unsupported {
		switch kind {
		case KindBuffers:
			all.Buffers = nil
		case KindTextures:
			all.Textures = nil
		case KindSamplers:
			all.Samplers = nil
		case KindRenderTargets:
			all.RenderTargets = nil
		case KindShaders:
			all.Shaders = nil
		case KindPipelines:
			all.Pipelines = nil
		case KindQueries:
			all.Queries = nil
		case KindRenderContexts:
			all.RenderContexts = nil
		case KindCommandEncoders:
			all.CommandEncoders = nil
		}
	}
	return all, nil
}

type driver struct {
	b *Backend
}

func (driver) Name() string {
	return "Noop"
}

func (driver) Conventions() device.Conventions {
	return device.Conventions{
		ShadingLanguage: caps.SPIRV,
		ScreenOrigin:    caps.UpperLeft,
		ClippingRange:   caps.ZeroToOne,
	}
}

func (d driver) InstanceLayers() ([]device.LayerProperties, error) {
	layers := make([]device.LayerProperties, len(d.b.opts.Layers))
	for i, name := range d.b.opts.Layers {
		layers[i] = device.LayerProperties{Name: name, SpecVersion: device.MakeVersion(1, 2, 0)}
	}
	return layers, nil
}

func (d driver) InstanceExtensions() ([]device.ExtensionProperties, error) {
	extensions := make([]device.ExtensionProperties, len(d.b.opts.Extensions))
	for i, name := range d.b.opts.Extensions {
		extensions[i] = device.ExtensionProperties{Name: name, SpecVersion: 1}
	}
	return extensions, nil
}

func (d driver) CreateInstance(info device.InstanceCreateInfo) (device.Instance, error) {
	if d.b.opts.FailInstance {
		return nil, errors.New("noop: instance creation rejected")
	}
	d.b.lastInstanceInfo = info
	d.b.journal.Record("create instance")
	return instance{d.b}, nil
}

type instance struct {
	b *Backend
}

func (i instance) PhysicalDevices() ([]device.PhysicalDevice, error) {
	devices := make([]device.PhysicalDevice, len(i.b.opts.Devices))
	for idx, d := range i.b.opts.Devices {
		devices[idx] = physicalDevice{b: i.b, d: d}
	}
	return devices, nil
}

func (i instance) LoadExtensions() error {
	if i.b.opts.FailLoadExtensions {
		return errors.New("noop: extension entry points missing")
	}
	return nil
}

func (i instance) InstallDebugCallback(cb device.DebugCallback) error {
	if i.b.opts.FailDebugCallback {
		return errors.New("noop: debug callback rejected")
	}
	i.b.callback = cb
	i.b.journal.Record("install debug callback")
	for _, m := range i.b.opts.Messages {
		cb(m)
	}
	return nil
}

func (i instance) RemoveDebugCallback() {
	i.b.callback = nil
	i.b.journal.Record("remove debug callback")
}

func (i instance) Destroy() {
	i.b.journal.Record("destroy instance")
}

type physicalDevice struct {
	b *Backend
	d Device
}

func (p physicalDevice) Describe() (device.Description, error) {
	if p.d.FailDescribe {
		return device.Description{}, errors.Newf("noop: %s lost", p.d.Description.Properties.Name)
	}
	return p.d.Description, nil
}

func (p physicalDevice) CreateLogicalDevice(info device.LogicalDeviceCreateInfo) (device.LogicalDevice, error) {
	p.b.lastDeviceInfo = info
	if p.d.FailLogicalDevice {
		return nil, errors.New("noop: logical device rejected")
	}
	p.b.journal.Record("create device")
	return logicalDevice{p.b.journal}, nil
}

type logicalDevice struct {
	journal *Journal
}

func (d logicalDevice) WaitIdle() error {
	d.journal.Record("wait idle")
	return nil
}

func (d logicalDevice) Destroy() {
	d.journal.Record("destroy device")
}
