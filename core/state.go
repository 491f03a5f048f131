package core

// State of the render system. Transitions only move forward.
type State int

// States in the order initialization walks through them
const (
	StateUninitialized State = iota
	StateConnectionCreated
	StateExtensionsLoaded
	StateDeviceSelected
	StateLogicalDeviceReady
	StateOperational
	StateFailed
	StateShutDown
)

var stateNames = [...]string{
	StateUninitialized:      "uninitialized",
	StateConnectionCreated:  "connection-created",
	StateExtensionsLoaded:   "extensions-loaded",
	StateDeviceSelected:     "device-selected",
	StateLogicalDeviceReady: "logical-device-ready",
	StateOperational:        "operational",
	StateFailed:             "failed",
	StateShutDown:           "shut-down",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

