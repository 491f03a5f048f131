package core_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devblok/rendersys/core"
	"github.com/devblok/rendersys/device"
)

func TestSelectQueueFamilies(t *testing.T) {
	cases := []struct {
		name     string
		families []device.QueueFamily
		want     core.QueueFamilies
	}{
		{
			name:     "single universal family",
			families: []device.QueueFamily{{Index: 0, Count: 1, Graphics: true, Compute: true, Transfer: true, Present: true}},
			want:     core.QueueFamilies{},
		},
		{
			name: "dedicated compute and transfer",
			families: []device.QueueFamily{
				{Index: 0, Count: 16, Graphics: true, Compute: true, Transfer: true, Present: true},
				{Index: 1, Count: 2, Transfer: true},
				{Index: 2, Count: 8, Compute: true, Transfer: true},
			},
			want: core.QueueFamilies{Graphics: 0, Compute: 2, Transfer: 1, Present: 0},
		},
		{
			name: "present on a separate family",
			families: []device.QueueFamily{
				{Index: 0, Count: 1, Graphics: true},
				{Index: 1, Count: 1, Present: true},
			},
			want: core.QueueFamilies{Graphics: 0, Compute: 0, Transfer: 0, Present: 1},
		},
		{
			name: "empty families are skipped",
			families: []device.QueueFamily{
				{Index: 0, Count: 0, Graphics: true, Present: true},
				{Index: 1, Count: 4, Graphics: true, Present: true},
			},
			want: core.QueueFamilies{Graphics: 1, Compute: 1, Transfer: 1, Present: 1},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := core.SelectQueueFamilies(c.families)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestSelectQueueFamiliesErrors(t *testing.T) {
	_, err := core.SelectQueueFamilies([]device.QueueFamily{{Index: 0, Count: 1, Compute: true, Present: true}})
	assert.True(t, errors.Is(err, core.ErrDeviceCreation))

	_, err = core.SelectQueueFamilies([]device.QueueFamily{{Index: 0, Count: 1, Graphics: true}})
	assert.True(t, errors.Is(err, core.ErrDeviceCreation))
}

func TestUniqueQueueFamilies(t *testing.T) {
	q := core.QueueFamilies{Graphics: 2, Compute: 0, Transfer: 2, Present: 1}
	assert.Equal(t, []uint32{0, 1, 2}, q.Unique())
}
