package render

import (
	"bytes"
	"encoding/xml"
	"strings"
)

const (
	fontHeightRatio = 0.5
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 24.0
)

// FontSize returns the label font size that fits b.
func FontSize(b Box) float64 { return fontSizeFor(b.W, b.H, len([]rune(b.Text()))) }

func fontSizeFor(availWidth, availHeight float64, textLen int) float64 {
	n := max(1, textLen)
	byHeight := availHeight * fontHeightRatio
	byWidth := (availWidth * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// TruncateLabel shortens the box text with a ".." suffix when it does not
// fit the box width at [FontSize].
func TruncateLabel(b Box) string {
	label := []rune(b.Text())
	charWidth := FontSize(b) * fontCharWidth
	maxChars := max(3, int(b.W*fontWidthRatio/charWidth))
	if len(label) <= maxChars {
		return string(label)
	}
	return string(label[:maxChars-2]) + ".."
}

// EscapeXML escapes s for use in XML text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func joinNames(names []string) string { return strings.Join(names, ", ") }
