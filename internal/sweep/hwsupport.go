package sweep

import (
	"os"
	"runtime"
)

// RenderNodePath is the VAAPI render node the hardware path binds to.
// Its presence is used only as an existence check; the device is opened by
// FFmpeg, never by this process.
const RenderNodePath = "/dev/dri/renderD128"

// HardwareSupported reports whether the host can run the VAAPI hardware
// path: Linux with the render node present. Non-Linux hosts always report
// false.
func HardwareSupported() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	_, err := os.Stat(RenderNodePath)
	return err == nil
}
