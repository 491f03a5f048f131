package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/rendersys/core"
	"github.com/devblok/rendersys/device"
)

// sliceUint32 reslices bytes into uint32 words, the way shader
// modules are submitted. Trailing bytes that do not fill a word are dropped.
func sliceUint32(data []byte) []uint32 {
	if len(data) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}

func safeString(s string) string {
	return s + "\x00"
}

func safeStrings(sgs []string) []string {
	safe := make([]string, len(sgs))
	for i, s := range sgs {
		safe[i] = safeString(s)
	}
	return safe
}

// memoryType finds a memory type allowed by typeBits that has every
// one of the wanted properties.
func memoryType(m device.MemoryProperties, typeBits uint32, hostVisible, hostCoherent bool) (uint32, error) {
	for idx, t := range m.Types {
		if typeBits&(1<<uint(idx)) == 0 {
			continue
		}
		if (!hostVisible || t.HostVisible) && (!hostCoherent || t.HostCoherent) {
			return uint32(idx), nil
		}
	}
	return 0, errors.New("requested memory type not found")
}

func bufferUsage(kind core.BufferKind) vk.BufferUsageFlags {
	usage := vk.BufferUsageTransferDstBit
	if kind.Has(core.VertexBuffer) {
		usage |= vk.BufferUsageVertexBufferBit
	}
	if kind.Has(core.IndexBuffer) {
		usage |= vk.BufferUsageIndexBufferBit
	}
	if kind.Has(core.ConstantBuffer) {
		usage |= vk.BufferUsageUniformBufferBit
	}
	if kind.Has(core.StorageBuffer) || kind.Has(core.StreamOutputBuffer) {
		usage |= vk.BufferUsageStorageBufferBit
	}
	return vk.BufferUsageFlags(usage)
}

func format(f core.Format) vk.Format {
	switch f {
	case core.FormatRGBA8UNorm:
		return vk.FormatR8g8b8a8Unorm
	case core.FormatBGRA8UNorm:
		return vk.FormatB8g8r8a8Unorm
	case core.FormatR32Float:
		return vk.FormatR32Sfloat
	case core.FormatRGBA32Float:
		return vk.FormatR32g32b32a32Sfloat
	case core.FormatD16UNorm:
		return vk.FormatD16Unorm
	case core.FormatD24UNormS8UInt:
		return vk.FormatD24UnormS8Uint
	case core.FormatD32Float:
		return vk.FormatD32Sfloat
	}
	return vk.FormatUndefined
}

func sampleCount(samples uint32) vk.SampleCountFlagBits {
	switch {
	case samples >= 64:
		return vk.SampleCount64Bit
	case samples >= 32:
		return vk.SampleCount32Bit
	case samples >= 16:
		return vk.SampleCount16Bit
	case samples >= 8:
		return vk.SampleCount8Bit
	case samples >= 4:
		return vk.SampleCount4Bit
	case samples >= 2:
		return vk.SampleCount2Bit
	}
	return vk.SampleCount1Bit
}

func shaderStage(s core.ShaderStage) vk.ShaderStageFlagBits {
	switch s {
	case core.TessControlStage:
		return vk.ShaderStageTessellationControlBit
	case core.TessEvaluationStage:
		return vk.ShaderStageTessellationEvaluationBit
	case core.GeometryStage:
		return vk.ShaderStageGeometryBit
	case core.FragmentStage:
		return vk.ShaderStageFragmentBit
	case core.ComputeStage:
		return vk.ShaderStageComputeBit
	}
	return vk.ShaderStageVertexBit
}

func topology(t core.PrimitiveTopology) vk.PrimitiveTopology {
	switch t {
	case core.TriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip
	case core.LineList:
		return vk.PrimitiveTopologyLineList
	case core.LineStrip:
		return vk.PrimitiveTopologyLineStrip
	case core.PointList:
		return vk.PrimitiveTopologyPointList
	case core.PatchList:
		return vk.PrimitiveTopologyPatchList
	}
	return vk.PrimitiveTopologyTriangleList
}

func cullMode(c core.CullMode) vk.CullModeFlagBits {
	switch c {
	case core.CullFront:
		return vk.CullModeFrontBit
	case core.CullBack:
		return vk.CullModeBackBit
	}
	return vk.CullModeNone
}

func compareOp(c core.CompareOp) vk.CompareOp {
	switch c {
	case core.CompareLess:
		return vk.CompareOpLess
	case core.CompareEqual:
		return vk.CompareOpEqual
	case core.CompareLessEqual:
		return vk.CompareOpLessOrEqual
	case core.CompareGreater:
		return vk.CompareOpGreater
	case core.CompareNotEqual:
		return vk.CompareOpNotEqual
	case core.CompareGreaterEqual:
		return vk.CompareOpGreaterOrEqual
	case core.CompareAlways:
		return vk.CompareOpAlways
	}
	return vk.CompareOpNever
}

func filter(f core.Filter) vk.Filter {
	if f == core.FilterNearest {
		return vk.FilterNearest
	}
	return vk.FilterLinear
}

func addressMode(a core.AddressMode) vk.SamplerAddressMode {
	switch a {
	case core.AddressMirror:
		return vk.SamplerAddressModeMirroredRepeat
	case core.AddressClamp:
		return vk.SamplerAddressModeClampToEdge
	case core.AddressBorder:
		return vk.SamplerAddressModeClampToBorder
	case core.AddressMirrorOnce:
		return vk.SamplerAddressModeMirrorClampToEdge
	}
	return vk.SamplerAddressModeRepeat
}
