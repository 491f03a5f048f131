package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/rendersys/device"
)

const debugReportFlags = vk.DebugReportErrorBit |
	vk.DebugReportWarningBit |
	vk.DebugReportPerformanceWarningBit |
	vk.DebugReportInformationBit |
	vk.DebugReportDebugBit

func (i *instance) InstallDebugCallback(cb device.DebugCallback) error {
	i.forward = cb
	info := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(debugReportFlags),
		PfnCallback: i.report,
	}

	var callback vk.DebugReportCallback
	if err := vk.Error(vk.CreateDebugReportCallback(i.handle, &info, nil, &callback)); err != nil {
		i.forward = nil
		return errors.Wrap(err, "vk.CreateDebugReportCallback()")
	}
	i.callback = callback
	return nil
}

func (i *instance) report(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	if forward := i.forward; forward != nil {
		forward(device.DebugMessage{
			Severity:    severityOf(flags),
			LayerPrefix: pLayerPrefix,
			Code:        messageCode,
			Object:      object,
			Text:        pMessage,
		})
	}
	return vk.False
}

func severityOf(flags vk.DebugReportFlags) device.Severity {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return device.SeverityError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		return device.SeverityWarning
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		return device.SeverityPerformance
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		return device.SeverityInformation
	}
	return device.SeverityDebug
}
