package noop

import (
	"github.com/cockroachdb/errors"

	"github.com/devblok/rendersys/core"
)

// factories implements every core factory interface in memory.
type factories struct {
	journal *Journal
}

type resource struct {
	kind    string
	journal *Journal
}

func (r resource) Destroy() {
	r.journal.Record("destroy " + r.kind)
}

func (f factories) resource(kind string) resource {
	return resource{kind: kind, journal: f.journal}
}

type buffer struct {
	resource
	desc   core.BufferDescriptor
	data   []byte
	mapped bool
}

func (b *buffer) Descriptor() core.BufferDescriptor { return b.desc }

// Bytes returns the buffer contents.
func (b *buffer) Bytes() []byte { return b.data }

func (f factories) CreateBuffer(desc core.BufferDescriptor, initial []byte) (core.Buffer, error) {
	b := &buffer{resource: f.resource("buffer"), desc: desc, data: make([]byte, desc.Size)}
	copy(b.data, initial)
	return b, nil
}

type array struct {
	resource
	n int
}

func (a array) Len() int { return a.n }

func (f factories) CreateBufferArray(buffers []core.Buffer) (core.BufferArray, error) {
	return array{resource: f.resource("buffer array"), n: len(buffers)}, nil
}

func (f factories) WriteBuffer(b core.Buffer, offset uint64, data []byte) error {
	nb, err := asBuffer(b)
	if err != nil {
		return err
	}
	copy(nb.data[offset:], data)
	return nil
}

func (f factories) MapBuffer(b core.Buffer, access core.CPUAccess) ([]byte, error) {
	nb, err := asBuffer(b)
	if err != nil {
		return nil, err
	}
	if nb.mapped {
		return nil, errors.Mark(errors.New("buffer is already mapped"), core.ErrPrecondition)
	}
	if access == core.CPUAccessNone {
		return nil, errors.Mark(errors.New("mapping needs read or write access"), core.ErrPrecondition)
	}
	nb.mapped = true
	return nb.data, nil
}

func (f factories) UnmapBuffer(b core.Buffer) error {
	nb, err := asBuffer(b)
	if err != nil {
		return err
	}
	if !nb.mapped {
		return errors.Mark(errors.New("buffer is not mapped"), core.ErrPrecondition)
	}
	nb.mapped = false
	return nil
}

func asBuffer(b core.Buffer) (*buffer, error) {
	nb, ok := b.(*buffer)
	if !ok {
		return nil, errors.Newf("noop: foreign buffer %T", b)
	}
	return nb, nil
}

type texture struct {
	resource
	desc   core.TextureDescriptor
	levels [][]byte
}

func (t *texture) Descriptor() core.TextureDescriptor { return t.desc }

func (t *texture) extent(level uint32) (uint32, uint32, uint32) {
	shrink := func(v uint32) uint32 {
		if v >>= level; v > 0 {
			return v
		}
		return 1
	}
	return shrink(t.desc.Width), shrink(t.desc.Height), shrink(t.desc.Depth) * t.desc.Layers
}

// MaxTextureBytes caps the memory held by one in-memory texture,
// all mip levels included.
const MaxTextureBytes = 1 << 30

func (f factories) CreateTexture(desc core.TextureDescriptor, initial *core.ImageData) (core.Texture, error) {
	pixel := desc.Format.Size()
	if pixel == 0 {
		return nil, errors.Mark(errors.Newf("format %d has no size", desc.Format), core.ErrPrecondition)
	}
	t := &texture{resource: f.resource("texture"), desc: desc}
	sizes := make([]uint64, desc.MipLevels)
	var total uint64
	for level := range sizes {
		w, h, d := t.extent(uint32(level))
		sizes[level] = uint64(w) * uint64(h) * uint64(d) * uint64(pixel)
		total += sizes[level]
	}
	if total > MaxTextureBytes {
		return nil, errors.Newf("noop: texture needs %d bytes, more than %d", total, uint64(MaxTextureBytes))
	}
	for _, size := range sizes {
		t.levels = append(t.levels, make([]byte, size))
	}
	if initial != nil {
		copy(t.levels[0], initial.Data)
	}
	return t, nil
}

func (f factories) CreateTextureArray(textures []core.Texture) (core.TextureArray, error) {
	return array{resource: f.resource("texture array"), n: len(textures)}, nil
}

func (f factories) WriteTexture(t core.Texture, region core.TextureRegion, data core.ImageData) error {
	nt, ok := t.(*texture)
	if !ok {
		return errors.Newf("noop: foreign texture %T", t)
	}
	pixel := nt.desc.Format.Size()
	depth := region.Depth
	if depth == 0 {
		depth = 1
	}
	row := region.Width * pixel
	if uint64(len(data.Data)) < uint64(row)*uint64(region.Height)*uint64(depth) {
		return errors.Mark(errors.Newf("%d bytes do not cover the region", len(data.Data)), core.ErrPrecondition)
	}

	w, h, _ := nt.extent(region.MipLevel)
	level := nt.levels[region.MipLevel]
	src := data.Data
	for z := uint32(0); z < depth; z++ {
		for y := uint32(0); y < region.Height; y++ {
			dst := (((region.Z+z)*h+region.Y+y)*w + region.X) * pixel
			copy(level[dst:dst+row], src[:row])
			src = src[row:]
		}
	}
	return nil
}

func (f factories) ReadTexture(t core.Texture, mipLevel uint32) (core.ImageData, error) {
	nt, ok := t.(*texture)
	if !ok {
		return core.ImageData{}, errors.Newf("noop: foreign texture %T", t)
	}
	w, h, d := nt.extent(mipLevel)
	return core.ImageData{
		Format: nt.desc.Format,
		Width:  w,
		Height: h,
		Depth:  d,
		Data:   append([]byte(nil), nt.levels[mipLevel]...),
	}, nil
}

// GenerateMips fills lower levels by point sampling the level above.
func (f factories) GenerateMips(t core.Texture) error {
	nt, ok := t.(*texture)
	if !ok {
		return errors.Newf("noop: foreign texture %T", t)
	}
	pixel := nt.desc.Format.Size()
	for level := uint32(1); level < uint32(len(nt.levels)); level++ {
		pw, ph, _ := nt.extent(level - 1)
		w, h, d := nt.extent(level)
		src, dst := nt.levels[level-1], nt.levels[level]
		for z := uint32(0); z < d; z++ {
			for y := uint32(0); y < h; y++ {
				for x := uint32(0); x < w; x++ {
					sx, sy := min(x*2, pw-1), min(y*2, ph-1)
					from := ((z*ph+sy)*pw + sx) * pixel
					to := ((z*h+y)*w + x) * pixel
					copy(dst[to:to+pixel], src[from:from+pixel])
				}
			}
		}
	}
	return nil
}

type sampler struct {
	resource
	desc core.SamplerDescriptor
}

func (s sampler) Descriptor() core.SamplerDescriptor { return s.desc }

func (f factories) CreateSampler(desc core.SamplerDescriptor) (core.Sampler, error) {
	return sampler{resource: f.resource("sampler"), desc: desc}, nil
}

func (f factories) CreateSamplerArray(samplers []core.Sampler) (core.SamplerArray, error) {
	return array{resource: f.resource("sampler array"), n: len(samplers)}, nil
}

type renderTarget struct {
	resource
	desc core.RenderTargetDescriptor
}

func (r renderTarget) Descriptor() core.RenderTargetDescriptor { return r.desc }

func (f factories) CreateRenderTarget(desc core.RenderTargetDescriptor) (core.RenderTarget, error) {
	return renderTarget{resource: f.resource("render target"), desc: desc}, nil
}

type shader struct {
	resource
	desc core.ShaderDescriptor
}

func (s shader) Name() string { return s.desc.Name }
func (s shader) Stage() core.ShaderStage { return s.desc.Stage }

func (f factories) CreateShader(desc core.ShaderDescriptor) (core.Shader, error) {
	return shader{resource: f.resource("shader"), desc: desc}, nil
}

type program struct {
	resource
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

func (f factories) CreateShaderProgram() (core.ShaderProgram, error) {
	return &program{resource: f.resource("shader program")}, nil
}

type graphicsPipeline struct {
	resource
	context core.RenderContextDescriptor
}

// Context returns the descriptor of the render context the pipeline was built for.
func (p graphicsPipeline) Context() core.RenderContextDescriptor { return p.context }

func (f factories) CreateGraphicsPipeline(desc core.GraphicsPipelineDescriptor, program core.ShaderProgram, ctx core.RenderContext) (core.GraphicsPipeline, error) {
	for _, s := range program.Shaders() {
		if s.Stage() == core.ComputeStage {
			return nil, errors.Mark(errors.New("graphics pipeline with a compute program"), core.ErrPrecondition)
		}
	}
	return graphicsPipeline{resource: f.resource("graphics pipeline"), context: ctx.Descriptor()}, nil
}

func (f factories) CreateComputePipeline(desc core.ComputePipelineDescriptor, program core.ShaderProgram) (core.ComputePipeline, error) {
	shaders := program.Shaders()
	if len(shaders) != 1 || shaders[0].Stage() != core.ComputeStage {
		return nil, errors.Mark(errors.New("compute pipeline needs a compute program"), core.ErrPrecondition)
	}
	return f.resource("compute pipeline"), nil
}

type query struct {
	resource
	desc core.QueryDescriptor
}

func (q query) Descriptor() core.QueryDescriptor { return q.desc }

func (f factories) CreateQuery(desc core.QueryDescriptor) (core.Query, error) {
	return query{resource: f.resource("query"), desc: desc}, nil
}

type renderContext struct {
	resource
	desc core.RenderContextDescriptor
}

func (r renderContext) Descriptor() core.RenderContextDescriptor { return r.desc }

func (f factories) CreateRenderContext(desc core.RenderContextDescriptor) (core.RenderContext, error) {
	return renderContext{resource: f.resource("render context"), desc: desc}, nil
}

type commandEncoder struct {
	resource
	buffers uint32
}

// Buffers is the number of command buffers, one per swapchain image.
func (c commandEncoder) Buffers() uint32 { return c.buffers }

func (f factories) CreateCommandEncoder(desc core.CommandEncoderDescriptor, ctx core.RenderContext) (core.CommandEncoder, error) {
	return commandEncoder{resource: f.resource("command encoder"), buffers: ctx.Descriptor().SwapchainSize}, nil
}
