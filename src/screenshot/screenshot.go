// Package screenshot captures a user-selected screen region as PNG using the
// platform's own selection tool.
package screenshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/kbinani/screenshot"
	"github.com/rs/zerolog"
)

// ErrCancelled means the user aborted the selection.
var ErrCancelled = errors.New("screenshot: selection cancelled")

// tool is one external region-selection program. run must write a PNG to
// out, or leave it missing/empty when the user cancels.
type tool struct {
	name string
	run  func(ctx context.Context, out string) error
}

type Capturer struct {
	log      zerolog.Logger
	tools    []tool
	lookPath func(string) (string, error)
	// fallback captures the display under the cursor when no tool exists.
	fallback func(cursor image.Point) ([]byte, error)
}

func New(logger zerolog.Logger) *Capturer {
	return &Capturer{
		log:      logger.With().Str("cmp", "screenshot").Logger(),
		tools:    platformTools(),
		lookPath: exec.LookPath,
		fallback: CaptureDisplayAt,
	}
}

// Capture adapts Select to the capture coordinator: cancellation is reported
// as cancelled=true with a nil error.
func (c *Capturer) Capture(ctx context.Context, cursor image.Point) ([]byte, bool, error) {
	data, err := c.Select(ctx, cursor)
	if errors.Is(err, ErrCancelled) {
		return nil, true, nil
	}
	return data, false, err
}

// Select runs the first available selection tool and returns the PNG.
func (c *Capturer) Select(ctx context.Context, cursor image.Point) ([]byte, error) {
	for _, t := range c.tools {
		if _, err := c.lookPath(t.name); err != nil {
			continue
		}
		c.log.Debug().Str("tool", t.name).Msg("starting region selection")
		return c.runTool(ctx, t)
	}
	if c.fallback == nil {
		return nil, errors.New("no screenshot tool available")
	}
	c.log.Info().Msg("no region selection tool found, capturing the display under the cursor")
	return c.fallback(cursor)
}

func (c *Capturer) runTool(ctx context.Context, t tool) ([]byte, error) {
	dir, err := os.MkdirTemp("", "kairo-shot-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	out := filepath.Join(dir, "region.png")

	runErr := t.run(ctx, out)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	data, readErr := os.ReadFile(out)
	if readErr != nil || len(data) == 0 {
		// Selection tools exit non-zero or write nothing when Escape is pressed.
		c.log.Debug().AnErr("tool_err", runErr).Msg("no image produced")
		return nil, ErrCancelled
	}
	if runErr != nil {
		c.log.Warn().Err(runErr).Str("tool", t.name).Msg("tool reported an error but produced an image")
	}
	return data, nil
}

func command(name string, args ...string) func(ctx context.Context, out string) error {
	return func(ctx context.Context, out string) error {
		return exec.CommandContext(ctx, name, append(args, out)...).Run()
	}
}

// CaptureDisplayAt captures the whole display containing p.
func CaptureDisplayAt(p image.Point) ([]byte, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	bounds := screenshot.GetDisplayBounds(0)
	for i := 0; i < n; i++ {
		if b := screenshot.GetDisplayBounds(i); p.In(b) {
			bounds = b
			break
		}
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture display: %w", err)
	}
	return EncodePNG(img)
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
