package device

// PhysicalDeviceInfo describes available physical properties of a rendering device
type PhysicalDeviceInfo struct {
	ID            int      `json:"id"`
	VendorID      int      `json:"vendorId"`
	DriverVersion int      `json:"driverVersion"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Invalid       bool     `json:"invalid"`
	Extensions    []string `json:"extensions"`
	Layers        []string `json:"layers"`
	Memory        uint64   `json:"memory"`
	Features      Features `json:"features"`
}

// Info summarizes a description.
func Info(d Description) PhysicalDeviceInfo {
	return PhysicalDeviceInfo{
		ID:            int(d.Properties.DeviceID),
		VendorID:      int(d.Properties.VendorID),
		DriverVersion: int(d.Properties.DriverVersion),
		Name:          d.Properties.Name,
		Type:          d.Properties.Type.String(),
		Extensions:    d.Extensions,
		Layers:        d.Layers,
		Memory:        d.Memory.Total(),
		Features:      d.Features,
	}
}

// PhysicalDevicesInfo returns a struct for each physical device of inst.
// Devices that fail to describe themselves are reported as Invalid.
func PhysicalDevicesInfo(inst Instance) ([]PhysicalDeviceInfo, error) {
	devices, err := inst.PhysicalDevices()
	if err != nil {
		return nil, err
	}
	pdi := make([]PhysicalDeviceInfo, len(devices))
	for i, pd := range devices {
		d, err := pd.Describe()
		if err != nil {
			pdi[i].Invalid = true
			continue
		}
		pdi[i] = Info(d)
	}
	return pdi, nil
}
