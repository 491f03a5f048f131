package core

import (
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/loov/hrtime"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/devblok/rendersys/caps"
	"github.com/devblok/rendersys/device"
	"github.com/devblok/rendersys/registry"
)

// Connection records what was negotiated with the driver.
type Connection struct {
	Layers        []string `json:"layers"`
	Extensions    []string `json:"extensions"`
	Debug         bool     `json:"debug"`
	DebugCallback bool     `json:"debugCallback"`
}

// RenderSystem is the device manager. It owns the driver connection,
// the logical device and one registry per resource kind.
type RenderSystem struct {
	id      uuid.UUID
	backend Backend
	driver  device.Driver
	config  Configuration
	log     logrus.FieldLogger

	state        State
	conn         Connection
	instance     device.Instance
	physical     device.PhysicalDevice
	description  device.Description
	capabilities caps.Capabilities
	info         caps.RendererInfo
	published    bool
	logical      device.LogicalDevice
	queues       QueueFamilies
	factories    Factories

	buffers           *registry.Registry[Buffer]
	bufferArrays      *registry.Registry[BufferArray]
	textures          *registry.Registry[Texture]
	textureArrays     *registry.Registry[TextureArray]
	samplers          *registry.Registry[Sampler]
	samplerArrays     *registry.Registry[SamplerArray]
	renderTargets     *registry.Registry[RenderTarget]
	shaders           *registry.Registry[Shader]
	shaderPrograms    *registry.Registry[ShaderProgram]
	graphicsPipelines *registry.Registry[GraphicsPipeline]
	computePipelines  *registry.Registry[ComputePipeline]
	queries           *registry.Registry[Query]
	renderContexts    *registry.Registry[RenderContext]
	commandEncoders   *registry.Registry[CommandEncoder]
}

// New creates an uninitialized render system on top of b.
func New(b Backend, cfg Configuration) *RenderSystem {
	id := uuid.New()
	driver := b.Driver()
	return &RenderSystem{
		id:      id,
		backend: b,
		driver:  driver,
		config:  cfg,
		log: cfg.logger().WithFields(logrus.Fields{
			"system":  id.String(),
			"backend": driver.Name(),
		}),

		buffers:           registry.New[Buffer](),
		bufferArrays:      registry.New[BufferArray](),
		textures:          registry.New[Texture](),
		textureArrays:     registry.New[TextureArray](),
		samplers:          registry.New[Sampler](),
		samplerArrays:     registry.New[SamplerArray](),
		renderTargets:     registry.New[RenderTarget](),
		shaders:           registry.New[Shader](),
		shaderPrograms:    registry.New[ShaderProgram](),
		graphicsPipelines: registry.New[GraphicsPipeline](),
		computePipelines:  registry.New[ComputePipeline](),
		queries:           registry.New[Query](),
		renderContexts:    registry.New[RenderContext](),
		commandEncoders:   registry.New[CommandEncoder](),
	}
}

// Open runs every initialization step in order.
func (rs *RenderSystem) Open(app AppInfo, debug bool) error {
	start := hrtime.Now()
	steps := []func() error{
		func() error { return rs.Initialize(app, debug) },
		rs.SelectPhysicalDevice,
		rs.QueryCapabilities,
		rs.CreateLogicalDevice,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	rs.log.WithField("elapsed", hrtime.Since(start).String()).Info("render system operational")
	return nil
}

// Initialize connects to the driver. It enables the platform surface
// extensions, the vendor optimization layer when present, and with debug
// set the validation layer and debug report extension. The debug callback
// failing to install is logged and otherwise ignored.
func (rs *RenderSystem) Initialize(app AppInfo, debug bool) error {
	if err := rs.expect(StateUninitialized); err != nil {
		return err
	}
	start := hrtime.Now()

	layers, err := rs.driver.InstanceLayers()
	if err != nil {
		return rs.fail(initializationError(err, "query instance layers"))
	}
	extensions, err := rs.driver.InstanceExtensions()
	if err != nil {
		return rs.fail(initializationError(err, "query instance extensions"))
	}

	conn := Connection{
		Layers:     caps.RequiredLayers(device.LayerNames(layers), debug),
		Extensions: caps.RequiredInstanceExtensions(device.ExtensionNames(extensions), runtime.GOOS, debug),
		Debug:      debug,
	}
	if !caps.HasPlatformSurface(conn.Extensions, runtime.GOOS) {
		return rs.fail(errors.Mark(
			errors.Newf("driver lacks the surface extensions for %s", runtime.GOOS),
			ErrInitialization))
	}
	if debug && !slices.Contains(conn.Extensions, caps.DebugReportExtension) {
		rs.log.Warn("debug requested but the debug report extension is unavailable")
	}

	inst, err := rs.driver.CreateInstance(device.InstanceCreateInfo{
		ApplicationName:    app.Name,
		ApplicationVersion: app.Version,
		EngineName:         app.EngineName,
		EngineVersion:      app.EngineVersion,
		APIVersion:         app.APIVersion,
		Layers:             conn.Layers,
		Extensions:         conn.Extensions,
	})
	if err != nil {
		return rs.fail(initializationError(err, "create instance"))
	}
	rs.instance, rs.conn = inst, conn
	rs.state = StateConnectionCreated

	if err := inst.LoadExtensions(); err != nil {
		return rs.fail(initializationError(err, "load instance extensions"))
	}
	rs.state = StateExtensionsLoaded

	if debug {
		if err := inst.InstallDebugCallback(rs.forwardDebugMessage); err != nil {
			rs.log.WithError(err).Warn("debug callback could not be installed")
		} else {
			rs.conn.DebugCallback = true
		}
	}

	rs.log.WithFields(logrus.Fields{
		"layers":     conn.Layers,
		"extensions": conn.Extensions,
		"elapsed":    hrtime.Since(start).String(),
	}).Debug("driver connection created")
	return nil
}

// SelectPhysicalDevice picks the first device, in enumeration order,
// that exposes every required device extension.
func (rs *RenderSystem) SelectPhysicalDevice() error {
	if err := rs.expect(StateExtensionsLoaded); err != nil {
		return err
	}

	candidates, err := rs.instance.PhysicalDevices()
	if err != nil {
		return rs.fail(errors.Mark(errors.Wrap(err, "enumerate physical devices"), ErrNoSuitableDevice))
	}

	required := rs.requiredDeviceExtensions()
	for i, pd := range candidates {
		d, err := pd.Describe()
		if err != nil {
			rs.log.WithError(err).WithField("index", i).Debug("physical device could not be described")
			continue
		}
		if missing := caps.Missing(d.Extensions, required); len(missing) > 0 {
			rs.log.WithFields(logrus.Fields{
				"index":   i,
				"device":  d.Properties.Name,
				"missing": missing,
			}).Debug("physical device rejected")
			continue
		}

		rs.physical, rs.description = pd, d
		rs.state = StateDeviceSelected
		rs.log.WithFields(logrus.Fields{
			"index":  i,
			"device": d.Properties.Name,
			"vendor": caps.VendorByID(d.Properties.VendorID),
			"type":   d.Properties.Type.String(),
		}).Info("physical device selected")
		return nil
	}

	return rs.fail(errors.Mark(
		errors.Newf("none of %d physical devices exposes %v", len(candidates), required),
		ErrNoSuitableDevice))
}

// QueryCapabilities publishes the capabilities and renderer identity of
// the selected device. Calling it again returns the published record.
func (rs *RenderSystem) QueryCapabilities() error {
	if rs.published && rs.state >= StateDeviceSelected && rs.state <= StateOperational {
		return nil
	}
	if err := rs.expect(StateDeviceSelected); err != nil {
		return err
	}

	conv := rs.driver.Conventions()
	rs.capabilities = NormalizeCapabilities(rs.description, conv)
	rs.info = NewRendererInfo(rs.driver.Name(), rs.description, conv)
	rs.published = true

	rs.log.WithFields(logrus.Fields{
		"renderer": rs.info.RendererName,
		"device":   rs.info.DeviceName,
		"vendor":   rs.info.VendorName,
	}).Info("capabilities published")
	return nil
}

// CreateLogicalDevice opens the selected device with one queue per unique
// queue family and binds the backend factories.
func (rs *RenderSystem) CreateLogicalDevice() error {
	if err := rs.expect(StateDeviceSelected); err != nil {
		return err
	}
	if err := rs.QueryCapabilities(); err != nil {
		return err
	}

	queues, err := SelectQueueFamilies(rs.description.QueueFamilies)
	if err != nil {
		return rs.fail(err)
	}

	ld, err := rs.physical.CreateLogicalDevice(device.LogicalDeviceCreateInfo{
		Queues:     queueCreateInfos(queues),
		Extensions: rs.requiredDeviceExtensions(),
		// every feature the published capabilities advertise
		Features: rs.description.Features,
	})
	if err != nil {
		return rs.fail(errors.Mark(errors.Wrap(err, "create logical device"), ErrDeviceCreation))
	}
	rs.logical, rs.queues = ld, queues
	rs.state = StateLogicalDeviceReady

	factories, err := rs.backend.BindFactories(BindInfo{
		PhysicalDevice: rs.physical,
		Device:         ld,
		Description:    rs.description,
		Queues:         queues,
		Capabilities:   rs.capabilities,
		Logger:         rs.log,
	})
	if err != nil {
		return rs.fail(errors.Mark(errors.Wrap(err, "bind resource factories"), ErrDeviceCreation))
	}
	rs.factories = factories
	rs.state = StateOperational

	rs.log.WithField("queues", queues.Unique()).Debug("logical device created")
	return nil
}

// Shutdown force-releases every live resource, then destroys the
// logical device and finally the driver connection. It is idempotent.
func (rs *RenderSystem) Shutdown() {
	if rs.state == StateShutDown {
		return
	}
	rs.teardown()
	rs.state = StateShutDown
	rs.log.Info("render system shut down")
}

// State returns the current state.
func (rs *RenderSystem) State() State {
	return rs.state
}

// ID identifies this render system in logs.
func (rs *RenderSystem) ID() uuid.UUID {
	return rs.id
}

// Connection returns what was negotiated with the driver.
func (rs *RenderSystem) Connection() Connection {
	return rs.conn
}

// Capabilities returns the published capabilities.
func (rs *RenderSystem) Capabilities() (caps.Capabilities, bool) {
	return rs.capabilities, rs.published
}

// RendererInfo returns the published renderer identity.
func (rs *RenderSystem) RendererInfo() (caps.RendererInfo, bool) {
	return rs.info, rs.published
}

// QueueFamilies returns the negotiated queue families.
func (rs *RenderSystem) QueueFamilies() (QueueFamilies, bool) {
	return rs.queues, rs.logical != nil
}

// PhysicalDeviceInfo summarizes the selected physical device.
func (rs *RenderSystem) PhysicalDeviceInfo() (device.PhysicalDeviceInfo, bool) {
	if rs.physical == nil {
		return device.PhysicalDeviceInfo{}, false
	}
	return device.Info(rs.description), true
}

// LiveResources counts live resources per kind, omitting empty kinds.
func (rs *RenderSystem) LiveResources() map[string]int {
	live := map[string]int{}
	for _, r := range rs.registries() {
		if n := r.Len(); n > 0 {
			live[r.kind] = n
		}
	}
	return live
}

func (rs *RenderSystem) requiredDeviceExtensions() []string {
	required := []string{caps.SwapchainExtension}
	for _, ext := range rs.config.Renderer.DeviceExtensions {
		if !slices.Contains(required, ext) {
			required = append(required, ext)
		}
	}
	return required
}

func (rs *RenderSystem) forwardDebugMessage(m device.DebugMessage) {
	entry := rs.log.WithFields(logrus.Fields{
		"layer":    m.LayerPrefix,
		"code":     m.Code,
		"severity": m.Severity.String(),
	})
	switch m.Severity {
	case device.SeverityError:
		entry.Error(m.Text)
	case device.SeverityWarning, device.SeverityPerformance:
		entry.Warn(m.Text)
	case device.SeverityInformation:
		entry.Info(m.Text)
	default:
		entry.Debug(m.Text)
	}
}

func (rs *RenderSystem) expect(want State) error {
	if rs.state != want {
		return errors.Mark(errors.Newf("render system is %s, need %s", rs.state, want), ErrInvalidState)
	}
	return nil
}

func (rs *RenderSystem) fail(err error) error {
	rs.log.WithError(err).WithField("state", rs.state.String()).Error("render system initialization failed")
	rs.teardown()
	rs.state = StateFailed
	return err
}

type clearable interface {
	Len() int
	Clear() int
}

type kindRegistry struct {
	kind string
	clearable
}

// registries lists every registry in teardown order: dependents before
// what they depend on.
func (rs *RenderSystem) registries() []kindRegistry {
	return []kindRegistry{
		{"command encoder", rs.commandEncoders},
		{"graphics pipeline", rs.graphicsPipelines},
		{"compute pipeline", rs.computePipelines},
		{"shader program", rs.shaderPrograms},
		{"shader", rs.shaders},
		{"sampler array", rs.samplerArrays},
		{"sampler", rs.samplers},
		{"render target", rs.renderTargets},
		{"texture array", rs.textureArrays},
		{"texture", rs.textures},
		{"buffer array", rs.bufferArrays},
		{"buffer", rs.buffers},
		{"query", rs.queries},
		{"render context", rs.renderContexts},
	}
}

func (rs *RenderSystem) teardown() {
	for _, r := range rs.registries() {
		if n := r.Clear(); n > 0 {
			rs.log.WithFields(logrus.Fields{
				"kind":  r.kind,
				"count": n,
			}).Warn("force-released live resources")
		}
	}
	rs.factories = Factories{}

	if rs.logical != nil {
		if err := rs.logical.WaitIdle(); err != nil {
			rs.log.WithError(err).Warn("device did not go idle before destruction")
		}
		rs.logical.Destroy()
		rs.logical = nil
	}
	rs.physical = nil

	if rs.instance != nil {
		if rs.conn.DebugCallback {
			rs.instance.RemoveDebugCallback()
			rs.conn.DebugCallback = false
		}
		rs.instance.Destroy()
		rs.instance = nil
	}
}

func initializationError(err error, op string) error {
	return errors.Mark(errors.Wrap(err, op), ErrInitialization)
}
