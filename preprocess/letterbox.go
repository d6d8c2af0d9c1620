package preprocess

import (
	"errors"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Letterbox fits frames of any size into a fixed model input, scaling them to
// keep their aspect ratio and filling the uncovered border with a constant
// color.  The geometry follows the last frame fitted so points found in the
// model input can be mapped back to normalized frame coordinates.  It reuses
// a scratch Mat and must not be shared between goroutines
type Letterbox struct {
	input image.Point
	frame image.Point
	// inner is the area of the model input covered by the scaled frame
	inner  image.Rectangle
	scale  float64
	pad    color.RGBA
	scaled gocv.Mat
}

// NewLetterbox returns a Letterbox producing inputWidth x inputHeight
// images padded with pad
func NewLetterbox(inputWidth, inputHeight int, pad color.RGBA) *Letterbox {
	return &Letterbox{
		input:  image.Pt(inputWidth, inputHeight),
		pad:    pad,
		scaled: gocv.NewMat(),
	}
}

// fit recalculates the scale and inner area for a frame of width x height.
// Integer arithmetic keeps the scaled side exact for common camera sizes
func (l *Letterbox) fit(width, height int) {

	if l.frame.X == width && l.frame.Y == height {
		return
	}

	l.frame = image.Pt(width, height)

	var size image.Point

	if l.input.X*height <= l.input.Y*width {
		// width is the limiting side
		size = image.Pt(l.input.X, height*l.input.X/width)
		l.scale = float64(l.input.X) / float64(width)
	} else {
		size = image.Pt(width*l.input.Y/height, l.input.Y)
		l.scale = float64(l.input.Y) / float64(height)
	}

	offset := l.input.Sub(size).Div(2)
	l.inner = image.Rectangle{Min: offset, Max: offset.Add(size)}
}

// Into scales frame into dest at the model input size.  The caller owns dest
func (l *Letterbox) Into(frame gocv.Mat, dest *gocv.Mat) error {

	if frame.Empty() {
		return errors.New("cannot letterbox an empty frame")
	}

	l.fit(frame.Cols(), frame.Rows())

	gocv.Resize(frame, &l.scaled, l.inner.Size(), 0, 0, gocv.InterpolationArea)

	gocv.CopyMakeBorder(l.scaled, dest,
		l.inner.Min.Y, l.input.Y-l.inner.Max.Y,
		l.inner.Min.X, l.input.X-l.inner.Max.X,
		gocv.BorderConstant, l.pad)

	return nil
}

// Normalize maps a pixel position in the model input to normalized [0,1]
// coordinates of the last frame fitted.  Points inside the border map
// outside [0,1] and are left unclamped
func (l *Letterbox) Normalize(px, py float32) (x, y float64) {

	if l.frame.X == 0 || l.frame.Y == 0 {
		return 0, 0
	}

	x = (float64(px) - float64(l.inner.Min.X)) / l.scale / float64(l.frame.X)
	y = (float64(py) - float64(l.inner.Min.Y)) / l.scale / float64(l.frame.Y)

	return x, y
}

// Inner returns the area of the model input covered by the last frame
func (l *Letterbox) Inner() image.Rectangle {
	return l.inner
}

// Scale returns the frame to model input scale of the last frame
func (l *Letterbox) Scale() float64 {
	return l.scale
}

// Close frees the scratch Mat
func (l *Letterbox) Close() error {
	return l.scaled.Close()
}
