package caps

import "fmt"

// PCI vendor identifiers of common GPU vendors
const (
	VendorAMD       uint32 = 0x1002
	VendorImgTec    uint32 = 0x1010
	VendorApple     uint32 = 0x106B
	VendorNVIDIA    uint32 = 0x10DE
	VendorARM       uint32 = 0x13B5
	VendorMicrosoft uint32 = 0x1414
	VendorQualcomm  uint32 = 0x5143
	VendorIntel     uint32 = 0x8086
	VendorMesa      uint32 = 0x10005
)

var vendorNames = map[uint32]string{
	VendorAMD:       "Advanced Micro Devices, Inc.",
	VendorImgTec:    "Imagination Technologies",
	VendorApple:     "Apple Inc.",
	VendorNVIDIA:    "NVIDIA Corporation",
	VendorARM:       "ARM Limited",
	VendorMicrosoft: "Microsoft Corporation",
	VendorQualcomm:  "Qualcomm Technologies, Inc.",
	VendorIntel:     "Intel Corporation",
	VendorMesa:      "Mesa",
}

// VendorByID returns the vendor name for a PCI vendor id.
func VendorByID(id uint32) string {
	if name, ok := vendorNames[id]; ok {
		return name
	}
	return "Unknown"
}

// APIVersionString formats a version packed as major(10 bits),
// minor(10 bits), patch(12 bits).
func APIVersionString(version uint32) string {
	return fmt.Sprintf("%d.%d.%d", version>>22, (version>>12)&0x3ff, version&0xfff)
}
