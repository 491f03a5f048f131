package core

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/devblok/rendersys/device"
)

// QueueFamilies are the queue family indices negotiated for each role.
// Roles may share a family.
type QueueFamilies struct {
	Graphics uint32 `json:"graphics"`
	Compute  uint32 `json:"compute"`
	Transfer uint32 `json:"transfer"`
	Present  uint32 `json:"present"`
}

// Unique returns the distinct families in ascending order.
func (q QueueFamilies) Unique() []uint32 {
	set := map[uint32]struct{}{
		q.Graphics: {},
		q.Compute:  {},
		q.Transfer: {},
		q.Present:  {},
	}
	families := maps.Keys(set)
	slices.Sort(families)
	return families
}

// SelectQueueFamilies assigns a family to every queue role. Graphics is
// the first family with graphics support. Present prefers the graphics
// family and otherwise takes the first family that can present. Compute
// and transfer take the first dedicated family and fall back to graphics.
func SelectQueueFamilies(families []device.QueueFamily) (QueueFamilies, error) {
	var (
		q                                    QueueFamilies
		graphics, compute, transfer, present bool
	)
	for _, f := range families {
		if f.Count == 0 {
			continue
		}
		if f.Graphics && !graphics {
			q.Graphics, graphics = f.Index, true
		}
		if f.Compute && !f.Graphics && !compute {
			q.Compute, compute = f.Index, true
		}
		if f.Transfer && !f.Graphics && !f.Compute && !transfer {
			q.Transfer, transfer = f.Index, true
		}
	}
	if !graphics {
		return q, errors.Mark(errors.New("no queue family with graphics support"), ErrDeviceCreation)
	}

	for _, f := range families {
		if f.Count > 0 && f.Present && f.Index == q.Graphics {
			q.Present, present = f.Index, true
		}
	}
	if !present {
		for _, f := range families {
			if f.Count > 0 && f.Present {
				q.Present, present = f.Index, true
				break
			}
		}
	}
	if !present {
		return q, errors.Mark(errors.New("no queue family with present support"), ErrDeviceCreation)
	}

	if !compute {
		q.Compute = q.Graphics
	}
	if !transfer {
		q.Transfer = q.Graphics
	}
	return q, nil
}

// queueCreateInfos requests one queue per unique family, all at priority 1.
func queueCreateInfos(q QueueFamilies) []device.QueueCreateInfo {
	unique := q.Unique()
	infos := make([]device.QueueCreateInfo, len(unique))
	for i, family := range unique {
		infos[i] = device.QueueCreateInfo{
			Family:     family,
			Priorities: []float32{1.0},
		}
	}
	return infos
}
