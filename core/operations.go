package core

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/devblok/rendersys/registry"
)

func create[T registry.Destroyer](rs *RenderSystem, reg *registry.Registry[T], kind string, build func() (T, error)) (registry.Handle[T], error) {
	if err := rs.expect(StateOperational); err != nil {
		return registry.Handle[T]{}, err
	}
	resource, err := build()
	if err != nil {
		return registry.Handle[T]{}, errors.Wrapf(err, "create %s", kind)
	}
	h := reg.Insert(resource)
	rs.log.WithFields(logrus.Fields{"kind": kind, "handle": h.String()}).Debug("resource created")
	return h, nil
}

func release[T registry.Destroyer](rs *RenderSystem, reg *registry.Registry[T], kind string, h registry.Handle[T]) error {
	if err := reg.Remove(h); err != nil {
		return errors.Wrapf(err, "release %s", kind)
	}
	rs.log.WithFields(logrus.Fields{"kind": kind, "handle": h.String()}).Debug("resource released")
	return nil
}

func lookup[T registry.Destroyer](reg *registry.Registry[T], kind string, h registry.Handle[T]) (T, error) {
	resource, err := reg.Get(h)
	if err != nil {
		return resource, errors.Wrap(err, kind)
	}
	return resource, nil
}

func lookupAll[T registry.Destroyer](reg *registry.Registry[T], kind string, handles []registry.Handle[T]) ([]T, error) {
	if len(handles) == 0 {
		return nil, preconditionError("%s array needs at least one element", kind)
	}
	resources := make([]T, len(handles))
	for i, h := range handles {
		r, err := lookup(reg, kind, h)
		if err != nil {
			return nil, err
		}
		resources[i] = r
	}
	return resources, nil
}

// CreateBuffer creates a buffer, optionally filled with initial.
func (rs *RenderSystem) CreateBuffer(desc BufferDescriptor, initial []byte) (BufferHandle, error) {
	return create(rs, rs.buffers, "buffer", func() (Buffer, error) {
		if rs.factories.Buffers == nil {
			return nil, UnsupportedError("buffers")
		}
		if err := rs.validateBuffer(desc, initial); err != nil {
			return nil, err
		}
		return rs.factories.Buffers.CreateBuffer(desc, initial)
	})
}

func (rs *RenderSystem) validateBuffer(desc BufferDescriptor, initial []byte) error {
	c := rs.capabilities
	switch {
	case desc.Size == 0:
		return preconditionError("buffer size must be greater than zero")
	case c.MaxBufferSize > 0 && desc.Size > c.MaxBufferSize:
		return preconditionError("buffer size %d exceeds device limit %d", desc.Size, c.MaxBufferSize)
	case uint64(len(initial)) > desc.Size:
		return preconditionError("initial data of %d bytes does not fit a %d byte buffer", len(initial), desc.Size)
	case desc.Kind.Has(ConstantBuffer) && !c.HasConstantBuffers:
		return UnsupportedError("constant buffers")
	case desc.Kind.Has(ConstantBuffer) && c.MaxConstantBufferSize > 0 && desc.Size > uint64(c.MaxConstantBufferSize):
		return preconditionError("constant buffer size %d exceeds device limit %d", desc.Size, c.MaxConstantBufferSize)
	case desc.Kind.Has(StorageBuffer) && !c.HasStorageBuffers:
		return UnsupportedError("storage buffers")
	case desc.Kind.Has(StreamOutputBuffer) && !c.HasStreamOutputs:
		return UnsupportedError("stream output buffers")
	}
	return nil
}

// CreateBufferArray groups live buffers.
func (rs *RenderSystem) CreateBufferArray(handles ...BufferHandle) (BufferArrayHandle, error) {
	return create(rs, rs.bufferArrays, "buffer array", func() (BufferArray, error) {
		if rs.factories.Buffers == nil {
			return nil, UnsupportedError("buffer arrays")
		}
		buffers, err := lookupAll(rs.buffers, "buffer", handles)
		if err != nil {
			return nil, err
		}
		return rs.factories.Buffers.CreateBufferArray(buffers)
	})
}

// WriteBuffer copies data into a buffer at offset.
func (rs *RenderSystem) WriteBuffer(h BufferHandle, offset uint64, data []byte) error {
	b, err := rs.operationalBuffer(h)
	if err != nil {
		return err
	}
	if size := b.Descriptor().Size; offset > size || uint64(len(data)) > size-offset {
		return preconditionError("write of %d bytes at offset %d overflows a %d byte buffer", len(data), offset, size)
	}
	return rs.factories.Buffers.WriteBuffer(b, offset, data)
}

// MapBuffer maps a buffer into host memory.
func (rs *RenderSystem) MapBuffer(h BufferHandle, access CPUAccess) ([]byte, error) {
	b, err := rs.operationalBuffer(h)
	if err != nil {
		return nil, err
	}
	return rs.factories.Buffers.MapBuffer(b, access)
}

// UnmapBuffer releases a mapping made by MapBuffer.
func (rs *RenderSystem) UnmapBuffer(h BufferHandle) error {
	b, err := rs.operationalBuffer(h)
	if err != nil {
		return err
	}
	return rs.factories.Buffers.UnmapBuffer(b)
}

func (rs *RenderSystem) operationalBuffer(h BufferHandle) (Buffer, error) {
	if err := rs.expect(StateOperational); err != nil {
		return nil, err
	}
	b, err := lookup(rs.buffers, "buffer", h)
	if err != nil {
		return nil, err
	}
	if rs.factories.Buffers == nil {
		return nil, UnsupportedError("buffers")
	}
	return b, nil
}

// ReleaseBuffer releases a buffer.
func (rs *RenderSystem) ReleaseBuffer(h BufferHandle) error {
	return release(rs, rs.buffers, "buffer", h)
}

// ReleaseBufferArray releases a buffer array. The buffers stay live.
func (rs *RenderSystem) ReleaseBufferArray(h BufferArrayHandle) error {
	return release(rs, rs.bufferArrays, "buffer array", h)
}

// CreateTexture creates a texture, optionally filled with initial.
func (rs *RenderSystem) CreateTexture(desc TextureDescriptor, initial *ImageData) (TextureHandle, error) {
	return create(rs, rs.textures, "texture", func() (Texture, error) {
		if rs.factories.Textures == nil {
			return nil, UnsupportedError("textures")
		}
		desc = normalizeTexture(desc)
		if err := rs.validateTexture(desc); err != nil {
			return nil, err
		}
		return rs.factories.Textures.CreateTexture(desc, initial)
	})
}

func normalizeTexture(desc TextureDescriptor) TextureDescriptor {
	for _, v := range []*uint32{&desc.Height, &desc.Depth, &desc.Layers, &desc.MipLevels, &desc.Samples} {
		if *v == 0 {
			*v = 1
		}
	}
	return desc
}

func (rs *RenderSystem) validateTexture(desc TextureDescriptor) error {
	c := rs.capabilities
	if desc.Width == 0 {
		return preconditionError("texture width must be greater than zero")
	}

	var limit uint32
	switch desc.Type {
	case Texture1D, Texture1DArray:
		limit = c.Max1DTextureSize
	case Texture3D:
		if !c.Has3DTextures {
			return UnsupportedError("3D textures")
		}
		limit = c.Max3DTextureSize
	case TextureCube, TextureCubeArray:
		if !c.HasCubeTextures {
			return UnsupportedError("cube textures")
		}
		if desc.Width != desc.Height {
			return preconditionError("cube texture faces must be square, got %dx%d", desc.Width, desc.Height)
		}
		limit = c.MaxCubeTextureSize
	default:
		limit = c.Max2DTextureSize
	}
	if limit > 0 && (desc.Width > limit || desc.Height > limit || desc.Depth > limit) {
		return preconditionError("texture extent %dx%dx%d exceeds device limit %d", desc.Width, desc.Height, desc.Depth, limit)
	}

	if desc.Type.IsArray() {
		if !c.HasTextureArrays {
			return UnsupportedError("texture arrays")
		}
		if desc.Type == TextureCubeArray && !c.HasCubeTextureArrays {
			return UnsupportedError("cube texture arrays")
		}
		if c.MaxNumTextureArrayLayers > 0 && desc.Layers > c.MaxNumTextureArrayLayers {
			return preconditionError("%d array layers exceed device limit %d", desc.Layers, c.MaxNumTextureArrayLayers)
		}
	}
	if desc.Type.IsMultiSample() && !c.HasMultiSampleTextures {
		return UnsupportedError("multi-sample textures")
	}
	return nil
}

// CreateTextureArray groups live textures.
func (rs *RenderSystem) CreateTextureArray(handles ...TextureHandle) (TextureArrayHandle, error) {
	return create(rs, rs.textureArrays, "texture array", func() (TextureArray, error) {
		if rs.factories.Textures == nil {
			return nil, UnsupportedError("texture arrays")
		}
		textures, err := lookupAll(rs.textures, "texture", handles)
		if err != nil {
			return nil, err
		}
		return rs.factories.Textures.CreateTextureArray(textures)
	})
}

// QueryTextureDescriptor returns the descriptor a texture was created with.
func (rs *RenderSystem) QueryTextureDescriptor(h TextureHandle) (TextureDescriptor, error) {
	t, err := lookup(rs.textures, "texture", h)
	if err != nil {
		return TextureDescriptor{}, err
	}
	return t.Descriptor(), nil
}

// WriteTexture uploads data into a region of a texture.
func (rs *RenderSystem) WriteTexture(h TextureHandle, region TextureRegion, data ImageData) error {
	t, err := rs.operationalTexture(h)
	if err != nil {
		return err
	}
	desc := t.Descriptor()
	if region.MipLevel >= desc.MipLevels {
		return preconditionError("mip level %d out of range, texture has %d", region.MipLevel, desc.MipLevels)
	}
	w, hgt, d := mipExtent(desc, region.MipLevel)
	if !within(region.X, region.Width, w) || !within(region.Y, region.Height, hgt) || !within(region.Z, region.Depth, d) {
		return preconditionError("region exceeds mip level %d extent %dx%dx%d", region.MipLevel, w, hgt, d)
	}
	return rs.factories.Textures.WriteTexture(t, region, data)
}

// within reports whether [offset, offset+length) fits in extent.
func within(offset, length, extent uint32) bool {
	return offset <= extent && length <= extent-offset
}

// ReadTexture downloads one mip level of a texture.
func (rs *RenderSystem) ReadTexture(h TextureHandle, mipLevel uint32) (ImageData, error) {
	t, err := rs.operationalTexture(h)
	if err != nil {
		return ImageData{}, err
	}
	if levels := t.Descriptor().MipLevels; mipLevel >= levels {
		return ImageData{}, preconditionError("mip level %d out of range, texture has %d", mipLevel, levels)
	}
	return rs.factories.Textures.ReadTexture(t, mipLevel)
}

// GenerateMips fills every mip level below the first.
func (rs *RenderSystem) GenerateMips(h TextureHandle) error {
	t, err := rs.operationalTexture(h)
	if err != nil {
		return err
	}
	return rs.factories.Textures.GenerateMips(t)
}

func (rs *RenderSystem) operationalTexture(h TextureHandle) (Texture, error) {
	if err := rs.expect(StateOperational); err != nil {
		return nil, err
	}
	t, err := lookup(rs.textures, "texture", h)
	if err != nil {
		return nil, err
	}
	if rs.factories.Textures == nil {
		return nil, UnsupportedError("textures")
	}
	return t, nil
}

func mipExtent(desc TextureDescriptor, level uint32) (uint32, uint32, uint32) {
	shrink := func(v uint32) uint32 {
		if v >>= level; v > 0 {
			return v
		}
		return 1
	}
	return shrink(desc.Width), shrink(desc.Height), shrink(desc.Depth)
}

// ReleaseTexture releases a texture.
func (rs *RenderSystem) ReleaseTexture(h TextureHandle) error {
	return release(rs, rs.textures, "texture", h)
}

// ReleaseTextureArray releases a texture array. The textures stay live.
func (rs *RenderSystem) ReleaseTextureArray(h TextureArrayHandle) error {
	return release(rs, rs.textureArrays, "texture array", h)
}

// CreateSampler creates a sampler.
func (rs *RenderSystem) CreateSampler(desc SamplerDescriptor) (SamplerHandle, error) {
	return create(rs, rs.samplers, "sampler", func() (Sampler, error) {
		if rs.factories.Samplers == nil || !rs.capabilities.HasSamplers {
			return nil, UnsupportedError("samplers")
		}
		if limit := rs.capabilities.MaxAnisotropy; desc.MaxAnisotropy > limit {
			return nil, preconditionError("anisotropy %d exceeds device limit %d", desc.MaxAnisotropy, limit)
		}
		return rs.factories.Samplers.CreateSampler(desc)
	})
}

// CreateSamplerArray groups live samplers.
func (rs *RenderSystem) CreateSamplerArray(handles ...SamplerHandle) (SamplerArrayHandle, error) {
	return create(rs, rs.samplerArrays, "sampler array", func() (SamplerArray, error) {
		if rs.factories.Samplers == nil {
			return nil, UnsupportedError("sampler arrays")
		}
		samplers, err := lookupAll(rs.samplers, "sampler", handles)
		if err != nil {
			return nil, err
		}
		return rs.factories.Samplers.CreateSamplerArray(samplers)
	})
}

// ReleaseSampler releases a sampler.
func (rs *RenderSystem) ReleaseSampler(h SamplerHandle) error {
	return release(rs, rs.samplers, "sampler", h)
}

// ReleaseSamplerArray releases a sampler array. The samplers stay live.
func (rs *RenderSystem) ReleaseSamplerArray(h SamplerArrayHandle) error {
	return release(rs, rs.samplerArrays, "sampler array", h)
}

// CreateRenderTarget creates an offscreen render target.
func (rs *RenderSystem) CreateRenderTarget(desc RenderTargetDescriptor) (RenderTargetHandle, error) {
	return create(rs, rs.renderTargets, "render target", func() (RenderTarget, error) {
		c := rs.capabilities
		if rs.factories.RenderTargets == nil || !c.HasRenderTargets {
			return nil, UnsupportedError("render targets")
		}
		if desc.Width == 0 || desc.Height == 0 {
			return nil, preconditionError("render target extent must be greater than zero")
		}
		if c.Max2DTextureSize > 0 && (desc.Width > c.Max2DTextureSize || desc.Height > c.Max2DTextureSize) {
			return nil, preconditionError("render target extent %dx%d exceeds device limit %d", desc.Width, desc.Height, c.Max2DTextureSize)
		}
		var colors uint32
		for _, f := range desc.Attachments {
			if !f.IsDepth() {
				colors++
			}
		}
		if c.MaxNumRenderTargetAttachments > 0 && colors > c.MaxNumRenderTargetAttachments {
			return nil, preconditionError("%d color attachments exceed device limit %d", colors, c.MaxNumRenderTargetAttachments)
		}
		return rs.factories.RenderTargets.CreateRenderTarget(desc)
	})
}

// ReleaseRenderTarget releases a render target.
func (rs *RenderSystem) ReleaseRenderTarget(h RenderTargetHandle) error {
	return release(rs, rs.renderTargets, "render target", h)
}

// CreateShader creates a shader from compiled bytecode.
func (rs *RenderSystem) CreateShader(desc ShaderDescriptor) (ShaderHandle, error) {
	return create(rs, rs.shaders, "shader", func() (Shader, error) {
		if rs.factories.Shaders == nil {
			return nil, UnsupportedError("shaders")
		}
		if len(desc.Code) == 0 {
			return nil, preconditionError("shader %q has no code", desc.Name)
		}
		if err := rs.validateStage(desc.Stage); err != nil {
			return nil, err
		}
		if desc.EntryPoint == "" {
			desc.EntryPoint = "main"
		}
		return rs.factories.Shaders.CreateShader(desc)
	})
}

func (rs *RenderSystem) validateStage(stage ShaderStage) error {
	c := rs.capabilities
	switch stage {
	case GeometryStage:
		if !c.HasGeometryShaders {
			return UnsupportedError("geometry shaders")
		}
	case TessControlStage, TessEvaluationStage:
		if !c.HasTessellationShaders {
			return UnsupportedError("tessellation shaders")
		}
	case ComputeStage:
		if !c.HasComputeShaders {
			return UnsupportedError("compute shaders")
		}
	case VertexStage, FragmentStage:
	default:
		return preconditionError("unknown shader stage %d", stage)
	}
	return nil
}

// ReleaseShader releases a shader. A shader attached to a live program
// cannot be released until the program is.
func (rs *RenderSystem) ReleaseShader(h ShaderHandle) error {
	if s, err := rs.shaders.Get(h); err == nil {
		if program, ok := rs.programUsing(s); ok {
			return preconditionError("shader %s is attached to shader program %s", h, program)
		}
	}
	return release(rs, rs.shaders, "shader", h)
}

func (rs *RenderSystem) programUsing(s Shader) (ShaderProgramHandle, bool) {
	var (
		user  ShaderProgramHandle
		found bool
	)
	rs.shaderPrograms.Each(func(h ShaderProgramHandle, p ShaderProgram) bool {
		for _, attached := range p.Shaders() {
			if attached == s {
				user, found = h, true
				return false
			}
		}
		return true
	})
	return user, found
}

// CreateShaderProgram creates a program with the given shaders attached.
func (rs *RenderSystem) CreateShaderProgram(desc ShaderProgramDescriptor) (ShaderProgramHandle, error) {
	return create(rs, rs.shaderPrograms, "shader program", func() (ShaderProgram, error) {
		if rs.factories.Shaders == nil {
			return nil, UnsupportedError("shader programs")
		}
		shaders := make([]Shader, len(desc.Shaders))
		for i, h := range desc.Shaders {
			s, err := lookup(rs.shaders, "shader", h)
			if err != nil {
				return nil, err
			}
			shaders[i] = s
		}

		program, err := rs.factories.Shaders.CreateShaderProgram()
		if err != nil {
			return nil, err
		}
		for _, s := range shaders {
			if err := program.Attach(s); err != nil {
				program.Destroy()
				return nil, err
			}
		}
		return program, nil
	})
}

// AttachShader attaches a shader to an unlinked program.
func (rs *RenderSystem) AttachShader(program ShaderProgramHandle, shader ShaderHandle) error {
	if err := rs.expect(StateOperational); err != nil {
		return err
	}
	p, err := lookup(rs.shaderPrograms, "shader program", program)
	if err != nil {
		return err
	}
	s, err := lookup(rs.shaders, "shader", shader)
	if err != nil {
		return err
	}
	if p.Linked() {
		return preconditionError("shader program %s is already linked", program)
	}
	return p.Attach(s)
}

// LinkShaderProgram links a program so pipelines can use it.
func (rs *RenderSystem) LinkShaderProgram(program ShaderProgramHandle) error {
	if err := rs.expect(StateOperational); err != nil {
		return err
	}
	p, err := lookup(rs.shaderPrograms, "shader program", program)
	if err != nil {
		return err
	}
	return p.Link()
}

// ReleaseShaderProgram releases a shader program. Its shaders stay live.
func (rs *RenderSystem) ReleaseShaderProgram(h ShaderProgramHandle) error {
	return release(rs, rs.shaderPrograms, "shader program", h)
}

func (rs *RenderSystem) linkedProgram(h ShaderProgramHandle) (ShaderProgram, error) {
	p, err := lookup(rs.shaderPrograms, "shader program", h)
	if err != nil {
		return nil, err
	}
	if !p.Linked() {
		return nil, preconditionError("shader program %s is not linked", h)
	}
	return p, nil
}

// CreateGraphicsPipeline creates a graphics pipeline compatible with the
// oldest live render context. At least one render context must exist.
func (rs *RenderSystem) CreateGraphicsPipeline(desc GraphicsPipelineDescriptor) (GraphicsPipelineHandle, error) {
	return create(rs, rs.graphicsPipelines, "graphics pipeline", func() (GraphicsPipeline, error) {
		if rs.factories.Pipelines == nil {
			return nil, UnsupportedError("graphics pipelines")
		}
		_, ctx, ok := rs.renderContexts.Oldest()
		if !ok {
			return nil, preconditionError("cannot create graphics pipeline without a render context")
		}
		program, err := rs.linkedProgram(desc.Program)
		if err != nil {
			return nil, err
		}
		c := rs.capabilities
		if desc.Topology == PatchList {
			if !c.HasTessellationShaders {
				return nil, UnsupportedError("patch list topology")
			}
			if c.MaxPatchVertices > 0 && desc.PatchVertices > c.MaxPatchVertices {
				return nil, preconditionError("%d patch vertices exceed device limit %d", desc.PatchVertices, c.MaxPatchVertices)
			}
		}
		if desc.ViewportCount > 1 && !c.HasViewportArrays {
			return nil, UnsupportedError("viewport arrays")
		}
		return rs.factories.Pipelines.CreateGraphicsPipeline(desc, program, ctx)
	})
}

// CreateComputePipeline creates a compute pipeline.
func (rs *RenderSystem) CreateComputePipeline(desc ComputePipelineDescriptor) (ComputePipelineHandle, error) {
	return create(rs, rs.computePipelines, "compute pipeline", func() (ComputePipeline, error) {
		if rs.factories.Pipelines == nil || !rs.capabilities.HasComputeShaders {
			return nil, UnsupportedError("compute pipelines")
		}
		program, err := rs.linkedProgram(desc.Program)
		if err != nil {
			return nil, err
		}
		return rs.factories.Pipelines.CreateComputePipeline(desc, program)
	})
}

// ReleaseGraphicsPipeline releases a graphics pipeline.
func (rs *RenderSystem) ReleaseGraphicsPipeline(h GraphicsPipelineHandle) error {
	return release(rs, rs.graphicsPipelines, "graphics pipeline", h)
}

// ReleaseComputePipeline releases a compute pipeline.
func (rs *RenderSystem) ReleaseComputePipeline(h ComputePipelineHandle) error {
	return release(rs, rs.computePipelines, "compute pipeline", h)
}

// CreateQuery creates a query pool.
func (rs *RenderSystem) CreateQuery(desc QueryDescriptor) (QueryHandle, error) {
	return create(rs, rs.queries, "query", func() (Query, error) {
		if rs.factories.Queries == nil {
			return nil, UnsupportedError("queries")
		}
		if desc.Count == 0 {
			return nil, preconditionError("query count must be greater than zero")
		}
		if desc.Type == QueryStreamOutPrimitivesWritten && !rs.capabilities.HasStreamOutputs {
			return nil, UnsupportedError("stream output queries")
		}
		return rs.factories.Queries.CreateQuery(desc)
	})
}

// ReleaseQuery releases a query pool.
func (rs *RenderSystem) ReleaseQuery(h QueryHandle) error {
	return release(rs, rs.queries, "query", h)
}

// CreateRenderContext creates a render context. Zero fields take the
// configured screen size, swapchain size and default formats.
func (rs *RenderSystem) CreateRenderContext(desc RenderContextDescriptor) (RenderContextHandle, error) {
	return create(rs, rs.renderContexts, "render context", func() (RenderContext, error) {
		if rs.factories.RenderContexts == nil {
			return nil, UnsupportedError("render contexts")
		}
		desc = rs.normalizeRenderContext(desc)
		c := rs.capabilities
		if desc.Width == 0 || desc.Height == 0 {
			return nil, preconditionError("render context resolution must be greater than zero")
		}
		if c.Max2DTextureSize > 0 && (desc.Width > c.Max2DTextureSize || desc.Height > c.Max2DTextureSize) {
			return nil, preconditionError("render context resolution %dx%d exceeds device limit %d", desc.Width, desc.Height, c.Max2DTextureSize)
		}
		if desc.DepthFormat != FormatUndefined && !desc.DepthFormat.IsDepth() {
			return nil, preconditionError("depth format %d is not a depth format", desc.DepthFormat)
		}
		return rs.factories.RenderContexts.CreateRenderContext(desc)
	})
}

func (rs *RenderSystem) normalizeRenderContext(desc RenderContextDescriptor) RenderContextDescriptor {
	r := rs.config.Renderer
	if desc.Width == 0 && desc.Height == 0 {
		desc.Width, desc.Height = r.ScreenWidth, r.ScreenHeight
	}
	if desc.SwapchainSize == 0 {
		desc.SwapchainSize = r.SwapchainSize
	}
	if desc.SwapchainSize == 0 {
		desc.SwapchainSize = 2
	}
	if desc.ColorFormat == FormatUndefined {
		desc.ColorFormat = FormatBGRA8UNorm
	}
	if desc.Samples == 0 {
		desc.Samples = 1
	}
	return desc
}

// ReleaseRenderContext releases a render context.
func (rs *RenderSystem) ReleaseRenderContext(h RenderContextHandle) error {
	return release(rs, rs.renderContexts, "render context", h)
}

// CreateCommandEncoder creates a command encoder sized to the oldest live
// render context. At least one render context must exist.
func (rs *RenderSystem) CreateCommandEncoder(desc CommandEncoderDescriptor) (CommandEncoderHandle, error) {
	return create(rs, rs.commandEncoders, "command encoder", func() (CommandEncoder, error) {
		if rs.factories.CommandEncoders == nil {
			return nil, UnsupportedError("command encoders")
		}
		_, ctx, ok := rs.renderContexts.Oldest()
		if !ok {
			return nil, preconditionError("cannot create command encoder without a render context")
		}
		return rs.factories.CommandEncoders.CreateCommandEncoder(desc, ctx)
	})
}

// ReleaseCommandEncoder releases a command encoder.
func (rs *RenderSystem) ReleaseCommandEncoder(h CommandEncoderHandle) error {
	return release(rs, rs.commandEncoders, "command encoder", h)
}
