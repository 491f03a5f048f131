package noop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devblok/rendersys/backend/noop"
	"github.com/devblok/rendersys/core"
	"github.com/devblok/rendersys/device"
)

func TestDriverDefaults(t *testing.T) {
	b := noop.New(noop.Options{})
	drv := b.Driver()

	layers, err := drv.InstanceLayers()
	require.NoError(t, err)
	assert.Len(t, layers, 2)

	inst, err := drv.CreateInstance(device.InstanceCreateInfo{ApplicationName: "test"})
	require.NoError(t, err)
	devices, err := inst.PhysicalDevices()
	require.NoError(t, err)
	require.Len(t, devices, 1)

	d, err := devices[0].Describe()
	require.NoError(t, err)
	assert.Equal(t, "Noop Device", d.Properties.Name)

	var received []device.DebugMessage
	require.NoError(t, inst.InstallDebugCallback(func(m device.DebugMessage) {
		received = append(received, m)
	}))
	b.Emit(device.DebugMessage{Text: "hello"})
	inst.RemoveDebugCallback()
	b.Emit(device.DebugMessage{Text: "dropped"})
	require.Len(t, received, 1)

	inst.Destroy()
	assert.Equal(t, []string{
		"create instance",
		"install debug callback",
		"remove debug callback",
		"destroy instance",
	}, b.Journal().Events())
}

func TestUnsupportedKinds(t *testing.T) {
	b := noop.New(noop.Options{Unsupported: []string{noop.KindBuffers, noop.KindCommandEncoders}})
	f, err := b.BindFactories(core.BindInfo{})
	require.NoError(t, err)
	assert.Nil(t, f.Buffers)
	assert.Nil(t, f.CommandEncoders)
	assert.NotNil(t, f.Textures)
}
