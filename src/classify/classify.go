// Package classify inspects captured clipboard text and screenshots. Every
// function here is pure: same input, same output, no I/O.
package classify

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"regexp"
	"strings"

	"kairo/src/content"
)

// ErrNotPNG is returned by Image when the payload is not a PNG stream.
var ErrNotPNG = errors.New("screenshot is not a PNG image")

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

// minListLines is both the minimum number of non-blank lines and the minimum
// number of lines that must carry a lead-in for text to count as a list.
const minListLines = 2

var leadIns = []*regexp.Regexp{
	// enumeration and transition words
	regexp.MustCompile(`^(?i:first(ly)?|second(ly)?|third(ly)?|fourth|fifth|next|then|also|additionally|finally|lastly|however|moreover|furthermore|besides|meanwhile|another)\b`),
	// Capitalised word followed by a comma: "Yesterday, ..."
	regexp.MustCompile(`^\p{Lu}\p{Ll}+,`),
	// bullet glyphs
	regexp.MustCompile(`^[•◦▪▫‣·∙○●■□➤►–—*+-]\s*\S`),
	// "1." / "2)" / "a)"
	regexp.MustCompile(`^(\d{1,3}|[a-zA-Z])[.)]\s+\S`),
}

// Text classifies selected text. The text itself is never rewritten.
func Text(s string) content.Text {
	return content.Text{Text: s, LooksLikeList: LooksLikeList(s)}
}

// LooksLikeList reports whether at least two non-blank lines start with a
// lead-in pattern. Lines may match different patterns.
func LooksLikeList(s string) bool {
	lines := nonBlankLines(s)
	if len(lines) < minListLines {
		return false
	}
	matches := 0
	for _, line := range lines {
		if hasLeadIn(line) {
			matches++
			if matches >= minListLines {
				return true
			}
		}
	}
	return false
}

func hasLeadIn(line string) bool {
	for _, re := range leadIns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func nonBlankLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Image wraps a PNG screenshot. Only the header is decoded, for dimensions.
func Image(data []byte) (content.Image, error) {
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		return content.Image{}, ErrNotPNG
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return content.Image{}, fmt.Errorf("read png header: %w", err)
	}
	return content.Image{
		Base64PNG: base64.StdEncoding.EncodeToString(data),
		Width:     cfg.Width,
		Height:    cfg.Height,
	}, nil
}
