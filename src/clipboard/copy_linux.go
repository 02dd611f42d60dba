package clipboard

import "os"

const copyModifier = "ctrl"

// robotgo injects keys through X11; a pure Wayland session has no target.
func copySupported() bool {
	return os.Getenv("DISPLAY") != "" && os.Getenv("XDG_SESSION_TYPE") != "wayland"
}
