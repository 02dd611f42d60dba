//go:build !windows

package hotkey

import gohook "github.com/robotn/gohook"

func eventCode(ev gohook.Event) uint16 { return ev.Keycode }

var modifierVariants = map[string][]string{
	"ctrl":  {"ctrl", "rctrl"},
	"alt":   {"alt", "ralt"},
	"shift": {"shift", "rshift"},
	"cmd":   {"cmd", "rcmd"},
}

// keyCodes looks names up in gohook's portable keycode table.
func keyCodes(name string) []uint16 {
	names := modifierVariants[name]
	if names == nil {
		names = []string{name}
	}
	var codes []uint16
	for _, n := range names {
		if c, ok := gohook.Keycode[n]; ok {
			codes = append(codes, c)
		}
	}
	return codes
}
