// Package caps holds the normalized view of what a rendering device can
// do, the identity of the renderer, and the catalog of optional driver
// layers and extensions the render system negotiates at start up.
package caps

// ScreenOrigin is the origin of screen space coordinates.
type ScreenOrigin int

// Screen origins
const (
	LowerLeft ScreenOrigin = iota
	UpperLeft
)

func (o ScreenOrigin) String() string {
	if o == UpperLeft {
		return "upper-left"
	}
	return "lower-left"
}

// ClippingRange is the depth range of normalized device coordinates.
type ClippingRange int

// Clipping ranges
const (
	MinusOneToOne ClippingRange = iota
	ZeroToOne
)

func (c ClippingRange) String() string {
	if c == ZeroToOne {
		return "[0, 1]"
	}
	return "[-1, 1]"
}

// ShadingLanguage identifies a shader bytecode or source dialect.
type ShadingLanguage string

// Known shading languages
const (
	SPIRV ShadingLanguage = "SPIR-V"
	GLSL  ShadingLanguage = "GLSL"
	HLSL  ShadingLanguage = "HLSL"
)

// RendererInfo identifies the renderer to clients.
type RendererInfo struct {
	RendererName        string `json:"rendererName"`
	DeviceName          string `json:"deviceName"`
	VendorName          string `json:"vendorName"`
	ShadingLanguageName string `json:"shadingLanguageName"`
}

// Capabilities is an immutable snapshot of the features and limits
// of the selected device.
type Capabilities struct {
	ScreenOrigin     ScreenOrigin      `json:"screenOrigin"`
	ClippingRange    ClippingRange     `json:"clippingRange"`
	ShadingLanguages []ShadingLanguage `json:"shadingLanguages"`

	HasRenderTargets             bool `json:"hasRenderTargets"`
	Has3DTextures                bool `json:"has3DTextures"`
	HasCubeTextures              bool `json:"hasCubeTextures"`
	HasTextureArrays             bool `json:"hasTextureArrays"`
	HasCubeTextureArrays         bool `json:"hasCubeTextureArrays"`
	HasMultiSampleTextures       bool `json:"hasMultiSampleTextures"`
	HasSamplers                  bool `json:"hasSamplers"`
	HasConstantBuffers           bool `json:"hasConstantBuffers"`
	HasStorageBuffers            bool `json:"hasStorageBuffers"`
	HasUniforms                  bool `json:"hasUniforms"`
	HasGeometryShaders           bool `json:"hasGeometryShaders"`
	HasTessellationShaders       bool `json:"hasTessellationShaders"`
	HasComputeShaders            bool `json:"hasComputeShaders"`
	HasInstancing                bool `json:"hasInstancing"`
	HasOffsetInstancing          bool `json:"hasOffsetInstancing"`
	HasViewportArrays            bool `json:"hasViewportArrays"`
	HasConservativeRasterization bool `json:"hasConservativeRasterization"`
	HasStreamOutputs             bool `json:"hasStreamOutputs"`

	MaxNumTextureArrayLayers      uint32    `json:"maxNumTextureArrayLayers"`
	MaxNumRenderTargetAttachments uint32    `json:"maxNumRenderTargetAttachments"`
	MaxConstantBufferSize         uint32    `json:"maxConstantBufferSize"`
	MaxPatchVertices              uint32    `json:"maxPatchVertices"`
	Max1DTextureSize              uint32    `json:"max1DTextureSize"`
	Max2DTextureSize              uint32    `json:"max2DTextureSize"`
	Max3DTextureSize              uint32    `json:"max3DTextureSize"`
	MaxCubeTextureSize            uint32    `json:"maxCubeTextureSize"`
	MaxAnisotropy                 uint32    `json:"maxAnisotropy"`
	MaxNumComputeShaderWorkGroups [3]uint32 `json:"maxNumComputeShaderWorkGroups"`
	MaxComputeShaderWorkGroupSize [3]uint32 `json:"maxComputeShaderWorkGroupSize"`

	// MaxBufferSize is the size of the largest device local heap.
	// Zero means the limit is unknown and buffer sizes are not checked.
	MaxBufferSize uint64 `json:"maxBufferSize"`
}

// Supports reports whether lang is one of the device's shading languages.
func (c Capabilities) Supports(lang ShadingLanguage) bool {
	for _, l := range c.ShadingLanguages {
		if l == lang {
			return true
		}
	}
	return false
}
