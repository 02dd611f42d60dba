package screenshot

func platformTools() []tool {
	// -i interactive selection, -x no shutter sound.
	return []tool{{name: "screencapture", run: command("screencapture", "-i", "-x")}}
}
