package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/rendersys/core"
	"github.com/devblok/rendersys/device"
)

type factories struct {
	device vk.Device
	memory device.MemoryProperties
	queues core.QueueFamilies
	log    logrus.FieldLogger

	pipelineCache vk.PipelineCache
}

func (f *factories) createPipelineCache() error {
	pcci := vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}
	var cache vk.PipelineCache
	if err := vk.Error(vk.CreatePipelineCache(f.device, &pcci, nil, &cache)); err != nil {
		return errors.Wrap(err, "vk.CreatePipelineCache()")
	}
	f.pipelineCache = cache
	return nil
}

func (f *factories) destroy() {
	vk.DestroyPipelineCache(f.device, f.pipelineCache, nil)
}

type buffer struct {
	device vk.Device
	desc   core.BufferDescriptor
	buffer vk.Buffer
	memory vk.DeviceMemory
}

func (b *buffer) Descriptor() core.BufferDescriptor { return b.desc }

func (b *buffer) Destroy() {
	vk.DestroyBuffer(b.device, b.buffer, nil)
	vk.FreeMemory(b.device, b.memory, nil)
}

func (b *buffer) write(offset uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var mapped unsafe.Pointer
	if err := vk.Error(vk.MapMemory(b.device, b.memory, vk.DeviceSize(offset), vk.DeviceSize(len(data)), 0, &mapped)); err != nil {
		return errors.Wrap(err, "vk.MapMemory()")
	}
	defer vk.UnmapMemory(b.device, b.memory)

	if n := vk.Memcopy(mapped, data); n != len(data) {
		return errors.Newf("copied %d of %d bytes", n, len(data))
	}
	return nil
}

// CreateBuffer places every buffer in host visible, coherent memory.
func (f *factories) CreateBuffer(desc core.BufferDescriptor, initial []byte) (core.Buffer, error) {
	bci := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(desc.Size),
		Usage:       bufferUsage(desc.Kind),
		SharingMode: vk.SharingModeExclusive,
	}
	var handle vk.Buffer
	if err := vk.Error(vk.CreateBuffer(f.device, &bci, nil, &handle)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateBuffer()")
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(f.device, handle, &requirements)
	requirements.Deref()

	typeIndex, err := memoryType(f.memory, requirements.MemoryTypeBits, true, true)
	if err != nil {
		vk.DestroyBuffer(f.device, handle, nil)
		return nil, err
	}

	mai := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: typeIndex,
	}
	var memory vk.DeviceMemory
	if err := vk.Error(vk.AllocateMemory(f.device, &mai, nil, &memory)); err != nil {
		vk.DestroyBuffer(f.device, handle, nil)
		return nil, errors.Wrap(err, "vk.AllocateMemory()")
	}

	b := &buffer{device: f.device, desc: desc, buffer: handle, memory: memory}
	if err := vk.Error(vk.BindBufferMemory(f.device, handle, memory, 0)); err != nil {
		b.Destroy()
		return nil, errors.Wrap(err, "vk.BindBufferMemory()")
	}
	if err := b.write(0, initial); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

func (f *factories) CreateBufferArray([]core.Buffer) (core.BufferArray, error) {
	return nil, core.UnsupportedError("buffer arrays")
}

func (f *factories) WriteBuffer(b core.Buffer, offset uint64, data []byte) error {
	vb, ok := b.(*buffer)
	if !ok {
		return errors.Newf("vulkan: foreign buffer %T", b)
	}
	return vb.write(offset, data)
}

func (f *factories) MapBuffer(core.Buffer, core.CPUAccess) ([]byte, error) {
	return nil, core.UnsupportedError("buffer mapping")
}

func (f *factories) UnmapBuffer(core.Buffer) error {
	return core.UnsupportedError("buffer mapping")
}

type sampler struct {
	device  vk.Device
	desc    core.SamplerDescriptor
	sampler vk.Sampler
}

func (s *sampler) Descriptor() core.SamplerDescriptor { return s.desc }

func (s *sampler) Destroy() {
	vk.DestroySampler(s.device, s.sampler, nil)
}

func (f *factories) CreateSampler(desc core.SamplerDescriptor) (core.Sampler, error) {
	mipmapMode := vk.SamplerMipmapModeLinear
	if desc.MipMapFilter == core.FilterNearest {
		mipmapMode = vk.SamplerMipmapModeNearest
	}
	maxLOD := desc.MaxLOD
	if !desc.MipMapping {
		maxLOD = 0
	}

	sci := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               filter(desc.MagFilter),
		MinFilter:               filter(desc.MinFilter),
		MipmapMode:              mipmapMode,
		AddressModeU:            addressMode(desc.AddressU),
		AddressModeV:            addressMode(desc.AddressV),
		AddressModeW:            addressMode(desc.AddressW),
		MipLodBias:              desc.MipLODBias,
		AnisotropyEnable:        bool32(desc.MaxAnisotropy > 1),
		MaxAnisotropy:           float32(desc.MaxAnisotropy),
		CompareEnable:           bool32(desc.CompareEnabled),
		CompareOp:               compareOp(desc.CompareOp),
		MinLod:                  desc.MinLOD,
		MaxLod:                  maxLOD,
		BorderColor:             vk.BorderColorFloatTransparentBlack,
		UnnormalizedCoordinates: vk.False,
	}
	var handle vk.Sampler
	if err := vk.Error(vk.CreateSampler(f.device, &sci, nil, &handle)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateSampler()")
	}
	return &sampler{device: f.device, desc: desc, sampler: handle}, nil
}

// group only bundles resources that stay owned by their own handles.
type group struct {
	n int
}

func (g group) Len() int { return g.n }

func (group) Destroy() {}

func (f *factories) CreateSamplerArray(samplers []core.Sampler) (core.SamplerArray, error) {
	return group{n: len(samplers)}, nil
}

type shader struct {
	device vk.Device
	desc   core.ShaderDescriptor
	module vk.ShaderModule
}

func (s *shader) Name() string { return s.desc.Name }

func (s *shader) Stage() core.ShaderStage { return s.desc.Stage }

func (s *shader) Destroy() {
	vk.DestroyShaderModule(s.device, s.module, nil)
}

func (f *factories) CreateShader(desc core.ShaderDescriptor) (core.Shader, error) {
	if len(desc.Code)%4 != 0 {
		return nil, errors.Mark(errors.Newf("shader %q is not SPIR-V, %d bytes", desc.Name, len(desc.Code)), core.ErrPrecondition)
	}
	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(desc.Code)),
		PCode:    sliceUint32(desc.Code),
	}
	var module vk.ShaderModule
	if err := vk.Error(vk.CreateShaderModule(f.device, &smci, nil, &module)); err != nil {
		return nil, errors.Wrapf(err, "vk.CreateShaderModule(%s)", desc.Stage)
	}
	return &shader{device: f.device, desc: desc, module: module}, nil
}

type program struct {
	shaders []core.Shader
	linked  bool
}

func (p *program) Attach(s core.Shader) error {
	if p.linked {
		return errors.Mark(errors.New("program is linked"), core.ErrPrecondition)
	}
	p.shaders = append(p.shaders, s)
	return nil
}

func (p *program) Link() error {
	if err := core.ValidateStages(p.shaders); err != nil {
		return err
	}
	p.linked = true
	return nil
}

func (p *program) Linked() bool { return p.linked }

func (p *program) Shaders() []core.Shader { return p.shaders }

// Destroy leaves the shader modules alone, they belong to their handles.
func (p *program) Destroy() {}

func (f *factories) CreateShaderProgram() (core.ShaderProgram, error) {
	return &program{}, nil
}

type renderContext struct {
	device     vk.Device
	desc       core.RenderContextDescriptor
	renderPass vk.RenderPass
	layout     vk.PipelineLayout
}

func (r *renderContext) Descriptor() core.RenderContextDescriptor { return r.desc }

func (r *renderContext) Destroy() {
	vk.DestroyPipelineLayout(r.device, r.layout, nil)
	vk.DestroyRenderPass(r.device, r.renderPass, nil)
}

// CreateRenderContext builds the render pass and pipeline layout that
// pipelines and command encoders share. The color attachment is
// presented, the depth attachment is optional.
func (f *factories) CreateRenderContext(desc core.RenderContextDescriptor) (core.RenderContext, error) {
	attachments := []vk.AttachmentDescription{{
		Format:         format(desc.ColorFormat),
		Samples:        sampleCount(desc.Samples),
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}
	colorRefs := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorRefs)),
		PColorAttachments:    colorRefs,
	}
	if desc.DepthFormat != core.FormatUndefined {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         format(desc.DepthFormat),
			Samples:        sampleCount(desc.Samples),
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		})
		subpass.PDepthStencilAttachment = &vk.AttachmentReference{
			Attachment: 1,
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
	}
	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
	var renderPass vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(f.device, &rpci, nil, &renderPass)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateRenderPass()")
	}

	plci := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}
	var layout vk.PipelineLayout
	if err := vk.Error(vk.CreatePipelineLayout(f.device, &plci, nil, &layout)); err != nil {
		vk.DestroyRenderPass(f.device, renderPass, nil)
		return nil, errors.Wrap(err, "vk.CreatePipelineLayout()")
	}

	return &renderContext{device: f.device, desc: desc, renderPass: renderPass, layout: layout}, nil
}

type graphicsPipeline struct {
	device   vk.Device
	pipeline vk.Pipeline
}

func (p *graphicsPipeline) Destroy() {
	vk.DestroyPipeline(p.device, p.pipeline, nil)
}

func (f *factories) CreateGraphicsPipeline(desc core.GraphicsPipelineDescriptor, program core.ShaderProgram, ctx core.RenderContext) (core.GraphicsPipeline, error) {
	rc, ok := ctx.(*renderContext)
	if !ok {
		return nil, errors.Newf("vulkan: foreign render context %T", ctx)
	}

	var stages []vk.PipelineShaderStageCreateInfo
	for _, s := range program.Shaders() {
		vs, ok := s.(*shader)
		if !ok {
			return nil, errors.Newf("vulkan: foreign shader %T", s)
		}
		if vs.desc.Stage == core.ComputeStage {
			return nil, errors.Mark(errors.New("graphics pipeline with a compute program"), core.ErrPrecondition)
		}
		stages = append(stages, vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  shaderStage(vs.desc.Stage),
			Module: vs.module,
			PName:  safeString(vs.desc.EntryPoint),
		})
	}

	viewports := desc.ViewportCount
	if viewports == 0 {
		viewports = 1
	}
	frontFace := vk.FrontFaceClockwise
	if desc.FrontCCW {
		frontFace = vk.FrontFaceCounterClockwise
	}
	depthCompare := compareOp(desc.DepthCompare)
	if desc.DepthCompare == core.CompareNever && desc.DepthTest {
		depthCompare = vk.CompareOpLessOrEqual
	}
	stencil := vk.StencilOpState{
		FailOp:    vk.StencilOpKeep,
		PassOp:    vk.StencilOpKeep,
		CompareOp: vk.CompareOpAlways,
	}
	blend := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: 0xF,
		BlendEnable:    bool32(desc.Blending),
	}
	if desc.Blending {
		blend.SrcColorBlendFactor = vk.BlendFactorSrcAlpha
		blend.DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
		blend.ColorBlendOp = vk.BlendOpAdd
		blend.SrcAlphaBlendFactor = vk.BlendFactorOne
		blend.DstAlphaBlendFactor = vk.BlendFactorZero
		blend.AlphaBlendOp = vk.BlendOpAdd
	}

	gpci := []vk.GraphicsPipelineCreateInfo{{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: topology(desc.Topology),
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: viewports,
			ScissorCount:  viewports,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(cullMode(desc.CullMode)),
			FrontFace:   frontFace,
			LineWidth:   1.0,
		},
		PDepthStencilState: &vk.PipelineDepthStencilStateCreateInfo{
			SType:             vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:   bool32(desc.DepthTest),
			DepthWriteEnable:  bool32(desc.DepthWrite),
			DepthCompareOp:    depthCompare,
			StencilTestEnable: vk.False,
			Front:             stencil,
			Back:              stencil,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: sampleCount(rc.desc.Samples),
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: 1,
			PAttachments:    []vk.PipelineColorBlendAttachmentState{blend},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates: []vk.DynamicState{
				vk.DynamicStateScissor,
				vk.DynamicStateViewport,
			},
		},
		Layout:     rc.layout,
		RenderPass: rc.renderPass,
	}}
	if desc.Topology == core.PatchList {
		gpci[0].PTessellationState = &vk.PipelineTessellationStateCreateInfo{
			SType:              vk.StructureTypePipelineTessellationStateCreateInfo,
			PatchControlPoints: desc.PatchVertices,
		}
	}

	pipelines := make([]vk.Pipeline, len(gpci))
	if err := vk.Error(vk.CreateGraphicsPipelines(f.device, f.pipelineCache, uint32(len(gpci)), gpci, nil, pipelines)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateGraphicsPipelines()")
	}
	return &graphicsPipeline{device: f.device, pipeline: pipelines[0]}, nil
}

func (f *factories) CreateComputePipeline(core.ComputePipelineDescriptor, core.ShaderProgram) (core.ComputePipeline, error) {
	return nil, core.UnsupportedError("compute pipelines")
}

type commandEncoder struct {
	device  vk.Device
	pool    vk.CommandPool
	buffers []vk.CommandBuffer
}

func (c *commandEncoder) Destroy() {
	vk.FreeCommandBuffers(c.device, c.pool, uint32(len(c.buffers)), c.buffers)
	vk.DestroyCommandPool(c.device, c.pool, nil)
}

// CreateCommandEncoder allocates one command buffer per swapchain image
// of ctx from a pool on the graphics queue family.
func (f *factories) CreateCommandEncoder(desc core.CommandEncoderDescriptor, ctx core.RenderContext) (core.CommandEncoder, error) {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: f.queues.Graphics,
	}
	var pool vk.CommandPool
	if err := vk.Error(vk.CreateCommandPool(f.device, &cpci, nil, &pool)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateCommandPool()")
	}

	level := vk.CommandBufferLevelPrimary
	if desc.Secondary {
		level = vk.CommandBufferLevelSecondary
	}
	count := ctx.Descriptor().SwapchainSize
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              level,
		CommandBufferCount: count,
	}
	buffers := make([]vk.CommandBuffer, count)
	if err := vk.Error(vk.AllocateCommandBuffers(f.device, &cbai, buffers)); err != nil {
		vk.DestroyCommandPool(f.device, pool, nil)
		return nil, errors.Wrap(err, "vk.AllocateCommandBuffers()")
	}

	f.log.WithField("buffers", count).Debug("command buffers allocated")
	return &commandEncoder{device: f.device, pool: pool, buffers: buffers}, nil
}
