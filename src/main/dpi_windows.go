package main

import (
	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

// enableDPIAwareness sets per-monitor DPI awareness so cursor positions,
// display bounds and window placement all use physical pixels.
func enableDPIAwareness(log zerolog.Logger) {
	const processPerMonitorDPIAware = 2
	setProcessDpiAwareness := windows.NewLazySystemDLL("Shcore.dll").NewProc("SetProcessDpiAwareness")
	if err := setProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Debug().Msg("per-monitor DPI awareness enabled")
		} else {
			log.Warn().Uint64("hresult", uint64(ret)).Msg("SetProcessDpiAwareness failed")
		}
		return
	}

	setProcessDPIAware := windows.NewLazySystemDLL("user32.dll").NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err != nil {
		log.Warn().Msg("no DPI awareness API available")
		return
	}
	if ret, _, _ := setProcessDPIAware.Call(); ret == 0 {
		log.Warn().Msg("SetProcessDPIAware failed")
	}
}
