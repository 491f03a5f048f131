// Command rsinfo reports what the render system sees on this machine:
// physical devices, the capabilities of the selected device and the
// connected displays. It also builds and lists shader packs.
package main

import (
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
)

func init() {
	// SDL and GLFW display enumeration must happen on the main thread
	runtime.LockOSThread()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.WithError(err).Error("rsinfo failed")
		os.Exit(1)
	}
}
