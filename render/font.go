package render

import (
	"image/color"

	"gocv.io/x/gocv"
)

// Alignment is the side of the image a label panel is drawn against
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// left returns the x position of a label of the given width on an image of
// imgWidth pixels
func (a Alignment) left(imgWidth, width int) int {
	switch a {
	case AlignCenter:
		return (imgWidth - width) / 2
	case AlignRight:
		return imgWidth - width
	}

	return 0
}

// Font is the text style of panel labels
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	// Padding is the space in pixels between the text and each edge of its
	// label background
	Padding int
	Align   Alignment
}

// DefaultFont returns white anti-aliased text sized for a 640 pixel wide
// frame
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.6,
		Color:     White,
		Thickness: 1,
		Padding:   6,
		Align:     AlignLeft,
	}
}

// ScaledTo returns the font grown in proportion to imgWidth when the image
// is wider than baseWidth, so labels keep their relative size on large frames
func (f Font) ScaledTo(imgWidth, baseWidth int) Font {

	if baseWidth <= 0 || imgWidth <= baseWidth {
		return f
	}

	ratio := float64(imgWidth) / float64(baseWidth)

	f.Scale *= ratio
	f.Padding = int(float64(f.Padding) * ratio)

	if t := int(float64(f.Thickness) * ratio); t > f.Thickness {
		f.Thickness = t
	}

	return f
}
