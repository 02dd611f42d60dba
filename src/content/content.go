// Package content holds the captured payload types shared by the capture
// pipeline, the action catalog and the chat surface.
package content

import "strconv"

// Kind discriminates text captures from screenshot captures within a session.
type Kind int

const (
	KindText Kind = iota
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Text is selected text as classified once per session.
type Text struct {
	Text          string
	LooksLikeList bool
}

// Image is a screenshot capture. The PNG is carried as-is, never decoded
// beyond its header.
type Image struct {
	Base64PNG string
	Width     int
	Height    int
}

// DataURL returns the image as a data: URL suitable for vision requests.
func (i Image) DataURL() string {
	return "data:image/png;base64," + i.Base64PNG
}

// Content is exactly one of Text or Image. The zero value is empty.
type Content struct {
	Kind  Kind
	Text  *Text
	Image *Image
}

// FromText wraps classified text.
func FromText(t Text) Content {
	return Content{Kind: KindText, Text: &t}
}

// FromImage wraps a screenshot.
func FromImage(img Image) Content {
	return Content{Kind: KindImage, Image: &img}
}

// Empty reports whether the content carries nothing usable.
func (c Content) Empty() bool {
	return c.Text == nil && c.Image == nil
}

// Summary is a short log-safe description.
func (c Content) Summary() string {
	switch {
	case c.Text != nil:
		return "text(" + strconv.Itoa(len(c.Text.Text)) + " bytes)"
	case c.Image != nil:
		return "image(" + strconv.Itoa(c.Image.Width) + "x" + strconv.Itoa(c.Image.Height) + ")"
	default:
		return "empty"
	}
}
