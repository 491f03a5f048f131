package core

// BufferKind is a set of uses a buffer is created for.
type BufferKind uint32

// Buffer kinds
const (
	VertexBuffer BufferKind = 1 << iota
	IndexBuffer
	ConstantBuffer
	StorageBuffer
	StreamOutputBuffer
)

// Has reports whether every bit of other is set in k.
func (k BufferKind) Has(other BufferKind) bool {
	return k&other == other
}

// CPUAccess describes how the host may touch a resource's memory.
type CPUAccess int

// CPU access modes
const (
	CPUAccessNone CPUAccess = iota
	CPUAccessRead
	CPUAccessWrite
	CPUAccessReadWrite
)

// BufferDescriptor describes a buffer.
type BufferDescriptor struct {
	Kind      BufferKind
	Size      uint64
	CPUAccess CPUAccess
	Label     string
}

// Format is a pixel format.
type Format int

// Pixel formats
const (
	FormatUndefined Format = iota
	FormatRGBA8UNorm
	FormatBGRA8UNorm
	FormatR32Float
	FormatRGBA32Float
	FormatD16UNorm
	FormatD24UNormS8UInt
	FormatD32Float
)

// Size returns the number of bytes one pixel takes.
func (f Format) Size() uint32 {
	switch f {
	case FormatRGBA8UNorm, FormatBGRA8UNorm, FormatR32Float, FormatD24UNormS8UInt, FormatD32Float:
		return 4
	case FormatRGBA32Float:
		return 16
	case FormatD16UNorm:
		return 2
	}
	return 0
}

// IsDepth reports whether f is a depth or depth-stencil format.
func (f Format) IsDepth() bool {
	return f == FormatD16UNorm || f == FormatD24UNormS8UInt || f == FormatD32Float
}

// TextureType is the dimensionality of a texture.
type TextureType int

// Texture types
const (
	Texture1D TextureType = iota
	Texture2D
	Texture3D
	TextureCube
	Texture1DArray
	Texture2DArray
	TextureCubeArray
	Texture2DMS
	Texture2DMSArray
)

// IsArray reports whether t has array layers.
func (t TextureType) IsArray() bool {
	return t == Texture1DArray || t == Texture2DArray || t == TextureCubeArray || t == Texture2DMSArray
}

// IsMultiSample reports whether t is multi-sampled.
func (t TextureType) IsMultiSample() bool {
	return t == Texture2DMS || t == Texture2DMSArray
}

// IsCube reports whether t is a cube map.
func (t TextureType) IsCube() bool {
	return t == TextureCube || t == TextureCubeArray
}

// TextureDescriptor describes a texture.
type TextureDescriptor struct {
	Type      TextureType
	Format    Format
	Width     uint32
	Height    uint32
	Depth     uint32
	Layers    uint32
	MipLevels uint32
	Samples   uint32
}

// ImageData is host side pixel data.
type ImageData struct {
	Format Format
	Width  uint32
	Height uint32
	Depth  uint32
	Data   []byte
}

// TextureRegion selects part of one mip level of a texture.
type TextureRegion struct {
	X, Y, Z              uint32
	Width, Height, Depth uint32
	MipLevel             uint32
}

// Filter is a texture filter.
type Filter int

// Filters
const (
	FilterNearest Filter = iota
	FilterLinear
)

// AddressMode decides how coordinates outside [0, 1] are handled.
type AddressMode int

// Address modes
const (
	AddressRepeat AddressMode = iota
	AddressMirror
	AddressClamp
	AddressBorder
	AddressMirrorOnce
)

// CompareOp is a depth or sampler comparison.
type CompareOp int

// Compare operations
const (
	CompareNever CompareOp = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

// SamplerDescriptor describes a sampler.
type SamplerDescriptor struct {
	MinFilter      Filter
	MagFilter      Filter
	MipMapFilter   Filter
	MipMapping     bool
	AddressU       AddressMode
	AddressV       AddressMode
	AddressW       AddressMode
	MipLODBias     float32
	MinLOD         float32
	MaxLOD         float32
	MaxAnisotropy  uint32
	CompareEnabled bool
	CompareOp      CompareOp
	BorderColor    [4]float32
}

// DefaultSamplerDescriptor is a trilinear repeating sampler.
var DefaultSamplerDescriptor = SamplerDescriptor{
	MinFilter:    FilterLinear,
	MagFilter:    FilterLinear,
	MipMapFilter: FilterLinear,
	MipMapping:   true,
	MaxLOD:       1000,
	CompareOp:    CompareLess,
}

// RenderTargetDescriptor describes an offscreen render target.
type RenderTargetDescriptor struct {
	Width       uint32
	Height      uint32
	Samples     uint32
	Attachments []Format
}

// ShaderStage is the pipeline stage a shader runs in.
type ShaderStage int

// Shader stages
const (
	VertexStage ShaderStage = iota
	TessControlStage
	TessEvaluationStage
	GeometryStage
	FragmentStage
	ComputeStage
)

var shaderStageNames = [...]string{
	VertexStage:         "vert",
	TessControlStage:    "tesc",
	TessEvaluationStage: "tese",
	GeometryStage:       "geom",
	FragmentStage:       "frag",
	ComputeStage:        "comp",
}

func (s ShaderStage) String() string {
	if int(s) < len(shaderStageNames) {
		return shaderStageNames[s]
	}
	return "unknown"
}

// ParseShaderStage maps a stage suffix such as "vert" or "frag" to its stage.
func ParseShaderStage(name string) (ShaderStage, bool) {
	for stage, n := range shaderStageNames {
		if n == name {
			return ShaderStage(stage), true
		}
	}
	return 0, false
}

// ShaderDescriptor describes a shader built from compiled bytecode.
type ShaderDescriptor struct {
	Name       string
	Stage      ShaderStage
	EntryPoint string
	Code       []byte
}

// ShaderProgramDescriptor lists the shaders a program starts with.
// More can be attached before the program is linked.
type ShaderProgramDescriptor struct {
	Shaders []ShaderHandle
}

// PrimitiveTopology decides how vertices are assembled.
type PrimitiveTopology int

// Primitive topologies
const (
	TriangleList PrimitiveTopology = iota
	TriangleStrip
	LineList
	LineStrip
	PointList
	PatchList
)

// CullMode selects faces to discard.
type CullMode int

// Cull modes
const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// GraphicsPipelineDescriptor describes a graphics pipeline.
type GraphicsPipelineDescriptor struct {
	Program       ShaderProgramHandle
	Topology      PrimitiveTopology
	CullMode      CullMode
	FrontCCW      bool
	DepthTest     bool
	DepthWrite    bool
	DepthCompare  CompareOp
	Blending      bool
	PatchVertices uint32
	ViewportCount uint32
}

// ComputePipelineDescriptor describes a compute pipeline.
type ComputePipelineDescriptor struct {
	Program ShaderProgramHandle
}

// QueryType is the kind of a GPU query.
type QueryType int

// Query types
const (
	QuerySamplesPassed QueryType = iota
	QueryAnySamplesPassed
	QueryTimeElapsed
	QueryPipelineStatistics
	QueryStreamOutPrimitivesWritten
)

// QueryDescriptor describes a query pool.
type QueryDescriptor struct {
	Type  QueryType
	Count uint32
}

// RenderContextDescriptor describes a render context.
type RenderContextDescriptor struct {
	Width         uint32
	Height        uint32
	SwapchainSize uint32
	ColorFormat   Format
	DepthFormat   Format
	Samples       uint32
	VSync         bool
}

// CommandEncoderDescriptor describes a command encoder.
type CommandEncoderDescriptor struct {
	// Secondary encoders are recorded into primary ones
	Secondary bool
}
