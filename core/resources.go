package core

import "github.com/devblok/rendersys/registry"

// Buffer is a block of GPU memory.
type Buffer interface {
	registry.Destroyer
	Descriptor() BufferDescriptor
}

// BufferArray groups buffers for binding.
type BufferArray interface {
	registry.Destroyer
	Len() int
}

// Texture is a GPU image.
type Texture interface {
	registry.Destroyer
	Descriptor() TextureDescriptor
}

// TextureArray groups textures for binding.
type TextureArray interface {
	registry.Destroyer
	Len() int
}

// Sampler is a texture sampling state.
type Sampler interface {
	registry.Destroyer
	Descriptor() SamplerDescriptor
}

// SamplerArray groups samplers for binding.
type SamplerArray interface {
	registry.Destroyer
	Len() int
}

// RenderTarget is an offscreen set of attachments.
type RenderTarget interface {
	registry.Destroyer
	Descriptor() RenderTargetDescriptor
}

// Shader is a compiled shader of one stage.
type Shader interface {
	registry.Destroyer
	Name() string
	Stage() ShaderStage
}

// ShaderProgram is a set of shaders linked for use in a pipeline.
type ShaderProgram interface {
	registry.Destroyer

	// Attach adds a shader. Attaching after Link is an error.
	Attach(Shader) error

	// Link validates the stage combination
	Link() error

	// Linked reports whether Link succeeded
	Linked() bool

	// Shaders returns the attached shaders in attach order
	Shaders() []Shader
}

// GraphicsPipeline is a complete graphics pipeline state.
type GraphicsPipeline interface {
	registry.Destroyer
}

// ComputePipeline is a compute pipeline state.
type ComputePipeline interface {
	registry.Destroyer
}

// Query is a pool of GPU queries.
type Query interface {
	registry.Destroyer
	Descriptor() QueryDescriptor
}

// RenderContext holds what pipelines and command encoders render into.
type RenderContext interface {
	registry.Destroyer
	Descriptor() RenderContextDescriptor
}

// CommandEncoder records commands for submission.
type CommandEncoder interface {
	registry.Destroyer
}

// Handles, one type per resource kind
type (
	BufferHandle           = registry.Handle[Buffer]
	BufferArrayHandle      = registry.Handle[BufferArray]
	TextureHandle          = registry.Handle[Texture]
	TextureArrayHandle     = registry.Handle[TextureArray]
	SamplerHandle          = registry.Handle[Sampler]
	SamplerArrayHandle     = registry.Handle[SamplerArray]
	RenderTargetHandle     = registry.Handle[RenderTarget]
	ShaderHandle           = registry.Handle[Shader]
	ShaderProgramHandle    = registry.Handle[ShaderProgram]
	GraphicsPipelineHandle = registry.Handle[GraphicsPipeline]
	ComputePipelineHandle  = registry.Handle[ComputePipeline]
	QueryHandle            = registry.Handle[Query]
	RenderContextHandle    = registry.Handle[RenderContext]
	CommandEncoderHandle   = registry.Handle[CommandEncoder]
)

// ValidateStages checks that shaders form a complete program: either one
// compute shader, or a vertex shader with at most one shader per stage.
func ValidateStages(shaders []Shader) error {
	if len(shaders) == 0 {
		return preconditionError("program has no shaders")
	}
	seen := map[ShaderStage]bool{}
	for _, s := range shaders {
		if seen[s.Stage()] {
			return preconditionError("program has more than one %s shader", s.Stage())
		}
		seen[s.Stage()] = true
	}
	if seen[ComputeStage] {
		if len(shaders) > 1 {
			return preconditionError("compute shaders cannot be linked with other stages")
		}
		return nil
	}
	if !seen[VertexStage] {
		return preconditionError("program has no vertex shader")
	}
	if seen[TessControlStage] != seen[TessEvaluationStage] {
		return preconditionError("tessellation needs both control and evaluation shaders")
	}
	return nil
}
