package device_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devblok/rendersys/device"
)

type fakeInstance struct {
	devices []device.PhysicalDevice
}

func (f fakeInstance) PhysicalDevices() ([]device.PhysicalDevice, error) { return f.devices, nil }
func (fakeInstance) LoadExtensions() error { return nil }
func (fakeInstance) InstallDebugCallback(device.DebugCallback) error { return nil }
func (fakeInstance) RemoveDebugCallback() {}
func (fakeInstance) Destroy() {}

type fakePhysicalDevice struct {
	desc device.Description
	err  error
}

func (f fakePhysicalDevice) Describe() (device.Description, error) { return f.desc, f.err }
func (fakePhysicalDevice) CreateLogicalDevice(device.LogicalDeviceCreateInfo) (device.LogicalDevice, error) {
	return nil, errors.New("not implemented")
}

func TestPhysicalDevicesInfo(t *testing.T) {
	inst := fakeInstance{devices: []device.PhysicalDevice{
		fakePhysicalDevice{desc: device.Description{
			Properties: device.Properties{Name: "gpu0", VendorID: 0x10DE, DeviceID: 7, Type: device.TypeDiscreteGPU},
			Memory: device.MemoryProperties{Heaps: []device.MemoryHeap{
				{Size: 1 << 30, DeviceLocal: true},
				{Size: 1 << 20},
			}},
			Extensions: []string{"VK_KHR_swapchain"},
		}},
		fakePhysicalDevice{err: errors.New("lost")},
	}}

	info, err := device.PhysicalDevicesInfo(inst)
	require.NoError(t, err)
	require.Len(t, info, 2)

	assert.Equal(t, "gpu0", info[0].Name)
	assert.Equal(t, 0x10DE, info[0].VendorID)
	assert.Equal(t, 7, info[0].ID)
	assert.Equal(t, "discrete", info[0].Type)
	assert.Equal(t, uint64(1<<30+1<<20), info[0].Memory)
	assert.False(t, info[0].Invalid)
	assert.True(t, info[1].Invalid)
}

func TestHasExtensions(t *testing.T) {
	d := device.Description{Extensions: []string{"a", "b"}}
	assert.True(t, d.HasExtensions())
	assert.True(t, d.HasExtensions("b", "a"))
	assert.False(t, d.HasExtensions("a", "c"))
}

func TestLargestDeviceLocalHeap(t *testing.T) {
	m := device.MemoryProperties{Heaps: []device.MemoryHeap{
		{Size: 4 << 30},
		{Size: 2 << 30, DeviceLocal: true},
		{Size: 3 << 30, DeviceLocal: true},
	}}
	assert.Equal(t, uint64(3<<30), m.LargestDeviceLocalHeap())
	assert.Equal(t, uint64(9<<30), m.Total())
}

func TestMakeVersion(t *testing.T) {
	assert.Equal(t, uint32(1<<22|2<<12|3), device.MakeVersion(1, 2, 3))
}
