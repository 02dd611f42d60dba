//go:build !darwin && !linux && !windows

package screenshot

func platformTools() []tool { return nil }
