package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/rendersys/core"
	"github.com/devblok/rendersys/device"
)

func TestSliceUint32(t *testing.T) {
	data := []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00, 0xff}
	words := sliceUint32(data)
	require.Len(t, words, 2)
	assert.Equal(t, uint32(0x07230203), words[0])
	assert.Nil(t, sliceUint32([]byte{1, 2}))
}

func TestSafeStrings(t *testing.T) {
	assert.Equal(t, "main\x00", safeString("main"))
	assert.Equal(t, []string{"VK_KHR_surface\x00", "VK_KHR_xcb_surface\x00"},
		safeStrings([]string{"VK_KHR_surface", "VK_KHR_xcb_surface"}))
	assert.Empty(t, safeStrings(nil))
}

func TestMemoryType(t *testing.T) {
	m := device.MemoryProperties{Types: []device.MemoryType{
		{HeapIndex: 0, DeviceLocal: true},
		{HeapIndex: 1, HostVisible: true},
		{HeapIndex: 1, HostVisible: true, HostCoherent: true},
	}}

	idx, err := memoryType(m, 0b111, true, true)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), idx)

	idx, err = memoryType(m, 0b111, false, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), idx)

	_, err = memoryType(m, 0b011, true, true)
	assert.Error(t, err)
}

func TestSeverityOf(t *testing.T) {
	cases := map[vk.DebugReportFlagBits]device.Severity{
		vk.DebugReportErrorBit:              device.SeverityError,
		vk.DebugReportWarningBit:            device.SeverityWarning,
		vk.DebugReportPerformanceWarningBit: device.SeverityPerformance,
		vk.DebugReportInformationBit:        device.SeverityInformation,
		vk.DebugReportDebugBit:              device.SeverityDebug,
	}
	for bit, want := range cases {
		assert.Equal(t, want, severityOf(vk.DebugReportFlags(bit)))
	}
	assert.Equal(t, device.SeverityError,
		severityOf(vk.DebugReportFlags(vk.DebugReportErrorBit|vk.DebugReportDebugBit)))
}

func TestDescriptorMapping(t *testing.T) {
	assert.Equal(t, vk.FormatB8g8r8a8Unorm, format(core.FormatBGRA8UNorm))
	assert.Equal(t, vk.FormatD16Unorm, format(core.FormatD16UNorm))
	assert.Equal(t, vk.FormatUndefined, format(core.FormatUndefined))

	assert.Equal(t, vk.SampleCount1Bit, sampleCount(0))
	assert.Equal(t, vk.SampleCount4Bit, sampleCount(6))

	usage := bufferUsage(core.VertexBuffer | core.ConstantBuffer)
	assert.NotZero(t, usage&vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	assert.NotZero(t, usage&vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit))
	assert.Zero(t, usage&vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))

	assert.Equal(t, vk.ShaderStageFragmentBit, shaderStage(core.FragmentStage))
	assert.Equal(t, vk.PrimitiveTopologyPatchList, topology(core.PatchList))
}

func BenchmarkSliceUint32Small(b *testing.B) {
	data := make([]byte, 100)
	for idx := 0; idx < b.N; idx++ {
		sliceUint32(data)
	}
}

func BenchmarkSliceUint32Big(b *testing.B) {
	data := make([]byte, 100000)
	for idx := 0; idx < b.N; idx++ {
		sliceUint32(data)
	}
}
