package core

import (
	"github.com/sirupsen/logrus"

	"github.com/devblok/rendersys/caps"
	"github.com/devblok/rendersys/device"
)

// Backend pairs a driver with the factories that build resources on it.
// It is chosen once, when the RenderSystem is created.
type Backend interface {
	// Driver is the native API the render system initializes
	Driver() device.Driver

	// BindFactories is called once the logical device is ready
	BindFactories(BindInfo) (Factories, error)
}

// BindInfo is what factories are built against.
type BindInfo struct {
	PhysicalDevice device.PhysicalDevice
	Device         device.LogicalDevice
	Description    device.Description
	Queues         QueueFamilies
	Capabilities   caps.Capabilities
	Logger         logrus.FieldLogger
}

// Factories holds one factory per resource kind. A nil factory
// means the backend does not support that kind at all.
type Factories struct {
	Buffers         BufferFactory
	Textures        TextureFactory
	Samplers        SamplerFactory
	RenderTargets   RenderTargetFactory
	Shaders         ShaderFactory
	Pipelines       PipelineFactory
	Queries         QueryFactory
	RenderContexts  RenderContextFactory
	CommandEncoders CommandEncoderFactory
}

// BufferFactory builds buffers.
type BufferFactory interface {
	// CreateBuffer builds a buffer, with optional initial contents
	CreateBuffer(desc BufferDescriptor, initial []byte) (Buffer, error)
	CreateBufferArray(buffers []Buffer) (BufferArray, error)
	WriteBuffer(b Buffer, offset uint64, data []byte) error
	MapBuffer(b Buffer, access CPUAccess) ([]byte, error)
	UnmapBuffer(b Buffer) error
}

// TextureFactory builds textures.
type TextureFactory interface {
	// CreateTexture builds a texture, with optional initial contents
	CreateTexture(desc TextureDescriptor, initial *ImageData) (Texture, error)
	CreateTextureArray(textures []Texture) (TextureArray, error)
	WriteTexture(t Texture, region TextureRegion, data ImageData) error
	ReadTexture(t Texture, mipLevel uint32) (ImageData, error)
	GenerateMips(t Texture) error
}

// SamplerFactory builds samplers.
type SamplerFactory interface {
	CreateSampler(desc SamplerDescriptor) (Sampler, error)
	CreateSamplerArray(samplers []Sampler) (SamplerArray, error)
}

// RenderTargetFactory builds render targets.
type RenderTargetFactory interface {
	CreateRenderTarget(desc RenderTargetDescriptor) (RenderTarget, error)
}

// ShaderFactory builds shaders and shader programs.
type ShaderFactory interface {
	CreateShader(desc ShaderDescriptor) (Shader, error)
	CreateShaderProgram() (ShaderProgram, error)
}

// PipelineFactory builds pipelines. Graphics pipelines are built against
// a render context, whose render pass they must be compatible with.
type PipelineFactory interface {
	CreateGraphicsPipeline(desc GraphicsPipelineDescriptor, program ShaderProgram, ctx RenderContext) (GraphicsPipeline, error)
	CreateComputePipeline(desc ComputePipelineDescriptor, program ShaderProgram) (ComputePipeline, error)
}

// QueryFactory builds queries.
type QueryFactory interface {
	CreateQuery(desc QueryDescriptor) (Query, error)
}

// RenderContextFactory builds render contexts.
type RenderContextFactory interface {
	CreateRenderContext(desc RenderContextDescriptor) (RenderContext, error)
}

// CommandEncoderFactory builds command encoders sized to a render context.
type CommandEncoderFactory interface {
	CreateCommandEncoder(desc CommandEncoderDescriptor, ctx RenderContext) (CommandEncoder, error)
}
