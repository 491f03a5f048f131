package core

import (
	"github.com/devblok/rendersys/caps"
	"github.com/devblok/rendersys/device"
)

// NormalizeCapabilities maps a device description onto the capability
// record. Limits are copied as they are, narrowing types only.
func NormalizeCapabilities(d device.Description, conv device.Conventions) caps.Capabilities {
	limits := d.Properties.Limits
	features := d.Features

	return caps.Capabilities{
		ScreenOrigin:     conv.ScreenOrigin,
		ClippingRange:    conv.ClippingRange,
		ShadingLanguages: []caps.ShadingLanguage{conv.ShadingLanguage},

		HasRenderTargets:             true,
		Has3DTextures:                true,
		HasCubeTextures:              true,
		HasTextureArrays:             true,
		HasCubeTextureArrays:         features.ImageCubeArray,
		HasMultiSampleTextures:       true,
		HasSamplers:                  true,
		HasConstantBuffers:           true,
		HasStorageBuffers:            true,
		HasUniforms:                  true,
		HasGeometryShaders:           features.GeometryShader,
		HasTessellationShaders:       features.TessellationShader,
		HasComputeShaders:            true,
		HasInstancing:                true,
		HasOffsetInstancing:          true,
		HasViewportArrays:            features.MultiViewport,
		HasConservativeRasterization: d.HasExtensions(caps.ConservativeRasterizationExtension),
		HasStreamOutputs:             d.HasExtensions(caps.TransformFeedbackExtension),

		MaxNumTextureArrayLayers:      limits.MaxImageArrayLayers,
		MaxNumRenderTargetAttachments: limits.MaxColorAttachments,
		MaxConstantBufferSize:         limits.MaxUniformBufferRange,
		MaxPatchVertices:              limits.MaxTessellationPatchSize,
		Max1DTextureSize:              limits.MaxImageDimension1D,
		Max2DTextureSize:              limits.MaxImageDimension2D,
		Max3DTextureSize:              limits.MaxImageDimension3D,
		MaxCubeTextureSize:            limits.MaxImageDimensionCube,
		MaxAnisotropy:                 uint32(limits.MaxSamplerAnisotropy),
		MaxNumComputeShaderWorkGroups: limits.MaxComputeWorkGroupCount,
		MaxComputeShaderWorkGroupSize: limits.MaxComputeWorkGroupSize,
		MaxBufferSize:                 d.Memory.LargestDeviceLocalHeap(),
	}
}

// NewRendererInfo builds the identity published to clients.
func NewRendererInfo(apiName string, d device.Description, conv device.Conventions) caps.RendererInfo {
	return caps.RendererInfo{
		RendererName:        apiName + " " + caps.APIVersionString(d.Properties.APIVersion),
		DeviceName:          d.Properties.Name,
		VendorName:          caps.VendorByID(d.Properties.VendorID),
		ShadingLanguageName: string(conv.ShadingLanguage),
	}
}
