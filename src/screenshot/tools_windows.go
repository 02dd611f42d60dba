package screenshot

import (
	"context"
	"os"
	"os/exec"
	"time"

	"golang.design/x/clipboard"
)

// snipTimeout bounds how long the Snip & Sketch overlay may stay open.
const snipTimeout = 2 * time.Minute

func platformTools() []tool {
	return []tool{{name: "explorer.exe", run: screenClip}}
}

// screenClip opens the system snipping overlay. It places the selection on
// the clipboard, so the first clipboard image after launch is the result.
// Closing the overlay leaves the clipboard alone and ends as a timeout.
func screenClip(ctx context.Context, out string) error {
	wctx, cancel := context.WithTimeout(ctx, snipTimeout)
	defer cancel()
	images := clipboard.Watch(wctx, clipboard.FmtImage)

	if err := exec.CommandContext(ctx, "explorer.exe", "ms-screenclip:").Start(); err != nil {
		return err
	}
	data, ok := <-images
	if !ok {
		return wctx.Err()
	}
	return os.WriteFile(out, data, 0o600)
}
