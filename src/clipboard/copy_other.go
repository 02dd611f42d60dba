//go:build !darwin && !windows && !linux

package clipboard

const copyModifier = "ctrl"

func copySupported() bool { return false }
