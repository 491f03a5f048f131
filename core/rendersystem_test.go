package core_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devblok/rendersys/backend/noop"
	"github.com/devblok/rendersys/caps"
	"github.com/devblok/rendersys/core"
	"github.com/devblok/rendersys/device"
)

func newSystem(t *testing.T, opts noop.Options) (*core.RenderSystem, *noop.Backend, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	b := noop.New(opts)
	cfg := core.DefaultConfiguration()
	cfg.Logger = logger
	return core.New(b, cfg), b, hook
}

func openSystem(t *testing.T, opts noop.Options) (*core.RenderSystem, *noop.Backend) {
	t.Helper()
	rs, b, _ := newSystem(t, opts)
	require.NoError(t, rs.Open(core.DefaultAppInfo, true))
	t.Cleanup(rs.Shutdown)
	return rs, b
}

func withoutSwapchain(name string) noop.Device {
	d := noop.DefaultDescription(name)
	d.Extensions = []string{"VK_KHR_maintenance1"}
	return noop.Device{Description: d}
}

func TestOpenReachesOperational(t *testing.T) {
	rs, b := openSystem(t, noop.Options{})
	assert.Equal(t, core.StateOperational, rs.State())

	info, ok := rs.RendererInfo()
	require.True(t, ok)
	assert.Equal(t, caps.RendererInfo{
		RendererName:        "Noop 1.2.0",
		DeviceName:          "Noop Device",
		VendorName:          "Mesa",
		ShadingLanguageName: "SPIR-V",
	}, info)

	conn := rs.Connection()
	assert.True(t, conn.Debug)
	assert.True(t, conn.DebugCallback)
	assert.Equal(t, []string{caps.ValidationLayer, caps.OptimusLayer}, conn.Layers)
	assert.Contains(t, conn.Extensions, caps.DebugReportExtension)
	assert.Contains(t, conn.Extensions, caps.SurfaceExtension)
	assert.Equal(t, conn.Layers, b.LastInstanceInfo().Layers)
	assert.Equal(t, "rendersys", b.LastInstanceInfo().ApplicationName)
}

func TestInitializeWithoutDebug(t *testing.T) {
	rs, _, _ := newSystem(t, noop.Options{})
	require.NoError(t, rs.Initialize(core.DefaultAppInfo, false))
	assert.Equal(t, core.StateExtensionsLoaded, rs.State())

	conn := rs.Connection()
	assert.Equal(t, []string{caps.OptimusLayer}, conn.Layers)
	assert.NotContains(t, conn.Extensions, caps.DebugReportExtension)
	assert.False(t, conn.DebugCallback)
	rs.Shutdown()
}

func TestStepsWalkTheStateMachine(t *testing.T) {
	rs, _, _ := newSystem(t, noop.Options{})
	defer rs.Shutdown()

	assert.Equal(t, core.StateUninitialized, rs.State())
	assert.True(t, errors.Is(rs.SelectPhysicalDevice(), core.ErrInvalidState))

	require.NoError(t, rs.Initialize(core.DefaultAppInfo, false))
	assert.True(t, errors.Is(rs.Initialize(core.DefaultAppInfo, false), core.ErrInvalidState))
	assert.True(t, errors.Is(rs.CreateLogicalDevice(), core.ErrInvalidState))

	require.NoError(t, rs.SelectPhysicalDevice())
	assert.Equal(t, core.StateDeviceSelected, rs.State())
	_, published := rs.Capabilities()
	assert.False(t, published)

	require.NoError(t, rs.QueryCapabilities())
	_, published = rs.Capabilities()
	assert.True(t, published)

	require.NoError(t, rs.CreateLogicalDevice())
	assert.Equal(t, core.StateOperational, rs.State())
	require.NoError(t, rs.QueryCapabilities())
}

func TestSelectsFirstSuitableDevice(t *testing.T) {
	rs, _ := openSystem(t, noop.Options{Devices: []noop.Device{
		withoutSwapchain("A"),
		{Description: noop.DefaultDescription("B")},
		{Description: noop.DefaultDescription("C")},
	}})

	info, ok := rs.PhysicalDeviceInfo()
	require.True(t, ok)
	assert.Equal(t, "B", info.Name)
}

func TestSelectionSkipsUndescribableDevices(t *testing.T) {
	rs, _ := openSystem(t, noop.Options{Devices: []noop.Device{
		{Description: noop.DefaultDescription("lost"), FailDescribe: true},
		{Description: noop.DefaultDescription("B")},
	}})

	info, _ := rs.PhysicalDeviceInfo()
	assert.Equal(t, "B", info.Name)
}

func TestRequiresConfiguredDeviceExtensions(t *testing.T) {
	withMesh := noop.DefaultDescription("mesh")
	withMesh.Extensions = append(withMesh.Extensions, "VK_EXT_mesh_shader")

	b := noop.New(noop.Options{Devices: []noop.Device{
		{Description: noop.DefaultDescription("plain")},
		{Description: withMesh},
	}})
	cfg := core.DefaultConfiguration()
	cfg.Logger, _ = test.NewNullLogger()
	cfg.Renderer.DeviceExtensions = []string{"VK_EXT_mesh_shader", caps.SwapchainExtension}
	rs := core.New(b, cfg)
	require.NoError(t, rs.Open(core.DefaultAppInfo, false))
	defer rs.Shutdown()

	info, _ := rs.PhysicalDeviceInfo()
	assert.Equal(t, "mesh", info.Name)
	assert.Equal(t, []string{caps.SwapchainExtension, "VK_EXT_mesh_shader"}, b.LastDeviceInfo().Extensions)
}

func TestNoSuitableDevice(t *testing.T) {
	rs, b, _ := newSystem(t, noop.Options{Devices: []noop.Device{
		withoutSwapchain("A"),
		withoutSwapchain("B"),
	}})

	err := rs.Open(core.DefaultAppInfo, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNoSuitableDevice))
	assert.True(t, core.IsFatal(err))
	assert.Equal(t, core.StateFailed, rs.State())
	assert.Equal(t, []string{"create instance", "destroy instance"}, b.Journal().Events())

	_, err = rs.CreateBuffer(core.BufferDescriptor{Kind: core.VertexBuffer, Size: 16}, nil)
	assert.True(t, errors.Is(err, core.ErrInvalidState))
}

func TestInitializationFailures(t *testing.T) {
	for name, opts := range map[string]noop.Options{
		"instance rejected":  {FailInstance: true},
		"no entry points":    {FailLoadExtensions: true},
		"no surface support": {Extensions: []string{caps.DebugReportExtension}},
	} {
		t.Run(name, func(t *testing.T) {
			rs, _, hook := newSystem(t, opts)
			err := rs.Open(core.DefaultAppInfo, true)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrInitialization))
			assert.True(t, core.IsFatal(err))
			assert.Equal(t, core.StateFailed, rs.State())
			assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
		})
	}
}

func TestDeviceCreationFailure(t *testing.T) {
	for name, opts := range map[string]noop.Options{
		"rejected": {Devices: []noop.Device{{Description: noop.DefaultDescription("gpu"), FailLogicalDevice: true}}},
		"bind":     {FailBind: true},
	} {
		t.Run(name, func(t *testing.T) {
			rs, b, _ := newSystem(t, opts)
			err := rs.Open(core.DefaultAppInfo, false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrDeviceCreation))
			assert.Equal(t, core.StateFailed, rs.State())

			events := b.Journal().Events()
			assert.Equal(t, "destroy instance", events[len(events)-1])
		})
	}
}

func TestNoGraphicsQueue(t *testing.T) {
	d := noop.DefaultDescription("compute only")
	d.QueueFamilies = []device.QueueFamily{{Index: 0, Count: 1, Compute: true}}

	rs, _, _ := newSystem(t, noop.Options{Devices: []noop.Device{{Description: d}}})
	err := rs.Open(core.DefaultAppInfo, false)
	assert.True(t, errors.Is(err, core.ErrDeviceCreation))
}

func TestLogicalDeviceQueues(t *testing.T) {
	rs, b := openSystem(t, noop.Options{})

	queues, ok := rs.QueueFamilies()
	require.True(t, ok)
	assert.Equal(t, core.QueueFamilies{Graphics: 0, Compute: 0, Transfer: 1, Present: 0}, queues)

	info := b.LastDeviceInfo()
	assert.Equal(t, []device.QueueCreateInfo{
		{Family: 0, Priorities: []float32{1}},
		{Family: 1, Priorities: []float32{1}},
	}, info.Queues)
	assert.Equal(t, []string{caps.SwapchainExtension}, info.Extensions)
	assert.Equal(t, device.Features{
		GeometryShader:     true,
		TessellationShader: true,
		MultiViewport:      true,
		SamplerAnisotropy:  true,
		ImageCubeArray:     true,
	}, info.Features)
}

func TestLogicalDeviceEnablesAdvertisedFeatures(t *testing.T) {
	desc := noop.DefaultDescription("Minimal Device")
	desc.Features = device.Features{TessellationShader: true}
	rs, b := openSystem(t, noop.Options{Devices: []noop.Device{{Description: desc}}})

	c, ok := rs.Capabilities()
	require.True(t, ok)
	assert.False(t, c.HasGeometryShaders)
	assert.True(t, c.HasTessellationShaders)
	assert.Equal(t, device.Features{TessellationShader: true}, b.LastDeviceInfo().Features)
}

func TestDebugCallbackFailureIsNotFatal(t *testing.T) {
	rs, b, hook := newSystem(t, noop.Options{FailDebugCallback: true})
	require.NoError(t, rs.Open(core.DefaultAppInfo, true))
	defer rs.Shutdown()

	assert.False(t, rs.Connection().DebugCallback)
	assert.NotContains(t, b.Journal().Events(), "install debug callback")

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "debug callback could not be installed" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestDebugMessagesAreLogged(t *testing.T) {
	rs, b, hook := newSystem(t, noop.Options{Messages: []device.DebugMessage{{
		Severity:    device.SeverityError,
		LayerPrefix: "Validation",
		Code:        42,
		Text:        "vkCreateBuffer: size is zero",
	}}})
	require.NoError(t, rs.Open(core.DefaultAppInfo, true))
	defer rs.Shutdown()

	var found *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "vkCreateBuffer: size is zero" {
			found = e
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, logrus.ErrorLevel, found.Level)
	assert.Equal(t, "Validation", found.Data["layer"])
	assert.Equal(t, int32(42), found.Data["code"])
	assert.Equal(t, rs.ID().String(), found.Data["system"])

	hook.Reset()
	b.Emit(device.DebugMessage{Severity: device.SeverityPerformance, Text: "slow path"})
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestShutdownOrder(t *testing.T) {
	rs, b, _ := newSystem(t, noop.Options{})
	require.NoError(t, rs.Open(core.DefaultAppInfo, true))

	_, err := rs.CreateBuffer(core.BufferDescriptor{Kind: core.VertexBuffer, Size: 64}, nil)
	require.NoError(t, err)
	_, err = rs.CreateRenderContext(core.RenderContextDescriptor{})
	require.NoError(t, err)
	vert, err := rs.CreateShader(core.ShaderDescriptor{Name: "tri", Stage: core.VertexStage, Code: []byte{3, 2, 35, 7}})
	require.NoError(t, err)
	program, err := rs.CreateShaderProgram(core.ShaderProgramDescriptor{Shaders: []core.ShaderHandle{vert}})
	require.NoError(t, err)
	require.NoError(t, rs.LinkShaderProgram(program))
	_, err = rs.CreateGraphicsPipeline(core.GraphicsPipelineDescriptor{Program: program})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"buffer":            1,
		"render context":    1,
		"shader":            1,
		"shader program":    1,
		"graphics pipeline": 1,
	}, rs.LiveResources())

	rs.Shutdown()
	assert.Equal(t, core.StateShutDown, rs.State())
	assert.Empty(t, rs.LiveResources())

	events := b.Journal().Events()
	start := 0
	for i, e := range events {
		if e == "create device" {
			start = i + 1
		}
	}
	assert.Equal(t, []string{
		"destroy graphics pipeline",
		"destroy shader program",
		"destroy shader",
		"destroy buffer",
		"destroy render context",
		"wait idle",
		"destroy device",
		"remove debug callback",
		"destroy instance",
	}, events[start:])

	rs.Shutdown()
	assert.Equal(t, len(events), len(b.Journal().Events()))
	assert.True(t, errors.Is(rs.ReleaseShader(vert), core.ErrUseAfterRelease))

	_, err = rs.CreateBuffer(core.BufferDescriptor{Kind: core.VertexBuffer, Size: 64}, nil)
	assert.True(t, errors.Is(err, core.ErrInvalidState))
}

func TestShutdownBeforeInitialize(t *testing.T) {
	rs, b, _ := newSystem(t, noop.Options{})
	rs.Shutdown()
	assert.Equal(t, core.StateShutDown, rs.State())
	assert.Empty(t, b.Journal().Events())
	assert.True(t, errors.Is(rs.Initialize(core.DefaultAppInfo, false), core.ErrInvalidState))
}
