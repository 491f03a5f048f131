package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devblok/rendersys/backend/noop"
	"github.com/devblok/rendersys/caps"
	"github.com/devblok/rendersys/core"
	"github.com/devblok/rendersys/device"
)

var vulkanConventions = device.Conventions{
	ShadingLanguage: caps.SPIRV,
	ScreenOrigin:    caps.UpperLeft,
	ClippingRange:   caps.ZeroToOne,
}

func TestNormalizeCapabilities(t *testing.T) {
	d := noop.DefaultDescription("gpu")
	c := core.NormalizeCapabilities(d, vulkanConventions)

	assert.Equal(t, uint32(16384), c.Max2DTextureSize)
	assert.Equal(t, uint32(16384), c.MaxCubeTextureSize)
	assert.Equal(t, uint32(2048), c.Max3DTextureSize)
	assert.Equal(t, [3]uint32{65535, 65535, 65535}, c.MaxNumComputeShaderWorkGroups)
	assert.Equal(t, [3]uint32{1024, 1024, 64}, c.MaxComputeShaderWorkGroupSize)
	assert.Equal(t, uint32(8), c.MaxNumRenderTargetAttachments)
	assert.Equal(t, uint32(65536), c.MaxConstantBufferSize)
	assert.Equal(t, uint32(16), c.MaxAnisotropy)
	assert.Equal(t, uint64(256<<20), c.MaxBufferSize)

	assert.Equal(t, caps.UpperLeft, c.ScreenOrigin)
	assert.Equal(t, caps.ZeroToOne, c.ClippingRange)
	assert.True(t, c.Supports(caps.SPIRV))
	assert.False(t, c.Supports(caps.GLSL))

	assert.True(t, c.HasGeometryShaders)
	assert.True(t, c.HasCubeTextureArrays)
	assert.True(t, c.HasComputeShaders)
	assert.False(t, c.HasConservativeRasterization)
	assert.False(t, c.HasStreamOutputs)
}

func TestNormalizeCapabilitiesFollowsDevice(t *testing.T) {
	d := noop.DefaultDescription("gpu")
	d.Features = device.Features{}
	d.Extensions = append(d.Extensions, caps.ConservativeRasterizationExtension, caps.TransformFeedbackExtension)

	c := core.NormalizeCapabilities(d, vulkanConventions)
	assert.False(t, c.HasGeometryShaders)
	assert.False(t, c.HasTessellationShaders)
	assert.False(t, c.HasViewportArrays)
	assert.False(t, c.HasCubeTextureArrays)
	assert.True(t, c.HasConservativeRasterization)
	assert.True(t, c.HasStreamOutputs)
}

func TestNewRendererInfo(t *testing.T) {
	d := noop.DefaultDescription("GeForce GTX 1080")
	d.Properties.VendorID = caps.VendorNVIDIA
	d.Properties.APIVersion = device.MakeVersion(1, 1, 130)

	info := core.NewRendererInfo("Vulkan", d, vulkanConventions)
	assert.Equal(t, caps.RendererInfo{
		RendererName:        "Vulkan 1.1.130",
		DeviceName:          "GeForce GTX 1080",
		VendorName:          "NVIDIA Corporation",
		ShadingLanguageName: "SPIR-V",
	}, info)
}
