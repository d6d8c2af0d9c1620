package render

import (
	"image"
	"image/color"

	"github.com/swdee/go-posture"
	"gocv.io/x/gocv"
)

// Panel is a block of text lines drawn in the top corner of an image, the
// Title on a colored label and each Line on a black label below it
type Panel struct {
	Title string
	Lines []string
	Color color.RGBA
}

// VerdictColor returns green for a correct posture, red for a wrong one and
// grey for anything else
func VerdictColor(verdict string) color.RGBA {
	switch verdict {
	case posture.CorrectPosture.String():
		return Green
	case posture.WrongPosture.String():
		return Red
	}

	return Grey
}

// textLabel is a precalculated label rendering
type textLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// Labels renders the panel onto img, stacking one label per line from the
// top of the image against the side given by the font alignment
func Labels(img *gocv.Mat, panel Panel, font Font) {

	if img.Empty() {
		return
	}

	texts := append([]string{panel.Title}, panel.Lines...)
	labels := make([]textLabel, 0, len(texts))
	top := 0

	for i, text := range texts {

		if text == "" {
			continue
		}

		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)
		width := textSize.X + 2*font.Padding
		height := textSize.Y + 2*font.Padding
		left := font.Align.left(img.Cols(), width)

		useClr := Black

		if i == 0 {
			useClr = panel.Color
		}

		labels = append(labels, textLabel{
			rect:    image.Rect(left, top, left+width, top+height),
			clr:     useClr,
			text:    text,
			textPos: image.Pt(left+font.Padding, top+font.Padding+textSize.Y),
		})

		top += height
	}

	for _, l := range labels {
		gocv.Rectangle(img, l.rect, l.clr, -1)
		gocv.PutTextWithParams(img, l.text, l.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			gocv.LineAA, false)
	}
}

// Verdict renders a posture verdict and its correction tips onto img
func Verdict(img *gocv.Mat, verdict string, tips []string, font Font) {
	Labels(img, Panel{
		Title: verdict,
		Lines: tips,
		Color: VerdictColor(verdict),
	}, font)
}
