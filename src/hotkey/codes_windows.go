package hotkey

import gohook "github.com/robotn/gohook"

// On Windows gohook's virtual keycodes are unreliable for modifiers, so
// chords match on the Windows VK rawcode.
func eventCode(ev gohook.Event) uint16 { return ev.Rawcode }

// keyCodes maps a key name to its Windows virtual key codes; modifiers map to
// both the left and right variants.
func keyCodes(name string) []uint16 {
	switch {
	case len(name) == 1 && name[0] >= 'a' && name[0] <= 'z':
		return []uint16{uint16(name[0]-'a') + 0x41}
	case len(name) == 1 && name[0] >= '0' && name[0] <= '9':
		return []uint16{uint16(name[0]-'0') + 0x30}
	}
	if n, ok := functionKey(name); ok {
		return []uint16{uint16(0x70 + n - 1)} // VK_F1..VK_F24
	}
	switch name {
	case "ctrl":
		return []uint16{162, 163} // VK_LCONTROL, VK_RCONTROL
	case "alt":
		return []uint16{164, 165} // VK_LMENU, VK_RMENU
	case "shift":
		return []uint16{160, 161} // VK_LSHIFT, VK_RSHIFT
	case "cmd":
		return []uint16{91, 92} // VK_LWIN, VK_RWIN
	case "space":
		return []uint16{32}
	case "enter", "return":
		return []uint16{13}
	case "esc", "escape":
		return []uint16{27}
	case "tab":
		return []uint16{9}
	}
	return nil
}
