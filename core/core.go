// Package core brings a graphics driver to a usable state and owns every
// GPU resource created through it.
//
// A RenderSystem walks a one way state machine: it connects to the
// driver, loads instance extensions, selects the first physical device
// that has every required device extension, publishes the device's
// normalized capabilities and finally opens a logical device. Once
// operational, resource creation calls are validated against the
// capabilities, built by the backend's factories and registered in one
// registry per resource kind. Handles stay valid until released; the
// render system is not safe for concurrent use.
package core

import "github.com/devblok/rendersys/device"

// AppInfo describes the application to the driver.
type AppInfo struct {
	Name          string
	Version       uint32
	EngineName    string
	EngineVersion uint32
	APIVersion    uint32
}

// DefaultAppInfo application info describes a rendersys application
var DefaultAppInfo = AppInfo{
	Name:          "rendersys",
	Version:       device.MakeVersion(1, 0, 0),
	EngineName:    "rendersys",
	EngineVersion: device.MakeVersion(1, 0, 0),
	APIVersion:    device.MakeVersion(1, 0, 0),
}
