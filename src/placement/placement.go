// Package placement computes where the action picker appears relative to the
// cursor and the bounds of the display under it. It never shows windows.
package placement

import (
	"image"

	"kairo/src/content"
)

// TextOffset is the gap kept between the cursor and the top edge of a text
// popup, so the popup does not cover the selection just made.
const TextOffset = 20

// DefaultSize is the action picker size used when the UI does not report one.
var DefaultSize = image.Pt(540, 120)

// Compute returns the top-left corner of a popup of the given size.
//
// The popup is centred horizontally on the cursor. Text popups sit
// TextOffset pixels below the cursor; image popups are centred vertically on
// it. The result is then shifted fully inside the display containing the
// cursor. When the popup is larger than the display it is pinned to the
// display's top-left corner.
func Compute(cursor image.Point, displays []image.Rectangle, size image.Point, kind content.Kind) image.Point {
	if size.X <= 0 || size.Y <= 0 {
		size = DefaultSize
	}

	pos := image.Pt(cursor.X-size.X/2, 0)
	if kind == content.KindImage {
		pos.Y = cursor.Y - size.Y/2
	} else {
		pos.Y = cursor.Y + TextOffset
	}

	bounds, ok := DisplayFor(cursor, displays)
	if !ok {
		return pos
	}
	return clamp(pos, size, bounds)
}

// DisplayFor picks the display containing p. Rectangles are half-open, so a
// cursor exactly on the shared edge of two monitors belongs to the right or
// lower one. When no display contains p the nearest one wins.
func DisplayFor(p image.Point, displays []image.Rectangle) (image.Rectangle, bool) {
	if len(displays) == 0 {
		return image.Rectangle{}, false
	}
	for _, d := range displays {
		if p.In(d) {
			return d, true
		}
	}

	best := displays[0]
	bestDist := distanceSq(p, best)
	for _, d := range displays[1:] {
		if dist := distanceSq(p, d); dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best, true
}

func distanceSq(p image.Point, r image.Rectangle) int {
	dx := axisDistance(p.X, r.Min.X, r.Max.X-1)
	dy := axisDistance(p.Y, r.Min.Y, r.Max.Y-1)
	return dx*dx + dy*dy
}

func axisDistance(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	default:
		return 0
	}
}

// clamp shifts the rectangle at pos inside bounds without resizing it.
func clamp(pos, size image.Point, bounds image.Rectangle) image.Point {
	if pos.X+size.X > bounds.Max.X {
		pos.X = bounds.Max.X - size.X
	}
	if pos.Y+size.Y > bounds.Max.Y {
		pos.Y = bounds.Max.Y - size.Y
	}
	if pos.X < bounds.Min.X {
		pos.X = bounds.Min.X
	}
	if pos.Y < bounds.Min.Y {
		pos.Y = bounds.Min.Y
	}
	return pos
}

// Rect returns the popup rectangle at pos.
func Rect(pos, size image.Point) image.Rectangle {
	return image.Rectangle{Min: pos, Max: pos.Add(size)}
}
