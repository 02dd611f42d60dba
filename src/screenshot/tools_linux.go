package screenshot

import (
	"context"
	"os/exec"
	"strings"
)

func platformTools() []tool {
	return []tool{
		{name: "gnome-screenshot", run: command("gnome-screenshot", "-a", "-f")},
		{name: "spectacle", run: command("spectacle", "-r", "-b", "-n", "-o")},
		{name: "slurp", run: grimSlurp},
		{name: "maim", run: command("maim", "-s")},
	}
}

// grimSlurp selects with slurp and captures with grim (wlroots compositors).
func grimSlurp(ctx context.Context, out string) error {
	geom, err := exec.CommandContext(ctx, "slurp").Output()
	if err != nil {
		return err
	}
	return exec.CommandContext(ctx, "grim", "-g", strings.TrimSpace(string(geom)), out).Run()
}
