// Package preprocess turns raw encoded frames into the pixel grids consumed
// by keypoint extractors.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/swdee/go-posture"
	"gocv.io/x/gocv"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

const (
	// DefaultWidth is the canonical working frame width
	DefaultWidth = 640
	// DefaultHeight is the canonical working frame height
	DefaultHeight = 480
)

// fallbackDecoders decode formats OpenCV may have been built without
var fallbackDecoders = map[string]func(r *bytes.Reader) (image.Image, error){
	"image/bmp":  func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) },
	"image/tiff": func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) },
	"image/webp": func(r *bytes.Reader) (image.Image, error) { return webp.Decode(r) },
}

// Normalizer decodes raw frames, resizes them to a fixed working resolution
// and converts them to RGB channel order.  It holds no per frame state and is
// safe for concurrent use
type Normalizer struct {
	width  int
	height int
	interp gocv.InterpolationFlags
}

// NewNormalizer returns a Normalizer producing frames of width x height
func NewNormalizer(width, height int) (*Normalizer, error) {

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}

	return &Normalizer{
		width:  width,
		height: height,
		interp: gocv.InterpolationArea,
	}, nil
}

// NewDefaultNormalizer returns a Normalizer producing 640x480 frames
func NewDefaultNormalizer() *Normalizer {
	return &Normalizer{
		width:  DefaultWidth,
		height: DefaultHeight,
		interp: gocv.InterpolationArea,
	}
}

// Size returns the working frame dimensions
func (n *Normalizer) Size() (width, height int) {
	return n.width, n.height
}

// Normalize decodes raw into an RGB Mat of the working resolution.  The
// caller must Close the returned Mat.  Any failure is a *posture.DecodeError
func (n *Normalizer) Normalize(raw []byte) (gocv.Mat, error) {

	bgr, err := Decode(raw)

	if err != nil {
		return gocv.NewMat(), err
	}

	defer bgr.Close()

	resized := gocv.NewMat()
	defer resized.Close()

	gocv.Resize(bgr, &resized, image.Pt(n.width, n.height), 0, 0, n.interp)

	rgb := gocv.NewMat()
	gocv.CvtColor(resized, &rgb, gocv.ColorBGRToRGB)

	if rgb.Empty() {
		rgb.Close()
		return gocv.NewMat(), &posture.DecodeError{Reason: "color conversion produced an empty frame"}
	}

	return rgb, nil
}

// Decode decodes raw into a BGR Mat at its original resolution.  The caller
// must Close the returned Mat
func Decode(raw []byte) (gocv.Mat, error) {

	if len(raw) == 0 {
		return gocv.NewMat(), &posture.DecodeError{Reason: "empty image buffer"}
	}

	mime := mimetype.Detect(raw)

	if !strings.HasPrefix(mime.String(), "image/") {
		return gocv.NewMat(), &posture.DecodeError{
			Reason: fmt.Sprintf("unsupported frame type %s", mime.String()),
		}
	}

	mat, err := gocv.IMDecode(raw, gocv.IMReadColor)

	if err == nil && !mat.Empty() {
		return mat, nil
	}

	mat.Close()

	decode, ok := fallbackDecoders[mime.String()]

	if !ok {
		return gocv.NewMat(), &posture.DecodeError{
			Reason: fmt.Sprintf("could not decode %s frame", mime.String()),
			Err:    err,
		}
	}

	img, ferr := decode(bytes.NewReader(raw))

	if ferr != nil {
		return gocv.NewMat(), &posture.DecodeError{
			Reason: fmt.Sprintf("could not decode %s frame", mime.String()),
			Err:    ferr,
		}
	}

	return imageToBGR(img)
}

// imageToBGR converts img into a 3 channel Mat in OpenCV's BGR order
func imageToBGR(img image.Image) (gocv.Mat, error) {

	if img.Bounds().Empty() {
		return gocv.NewMat(), &posture.DecodeError{Reason: "frame has zero size"}
	}

	rgb, err := gocv.ImageToMatRGB(img)

	if err != nil {
		return gocv.NewMat(), &posture.DecodeError{Reason: "could not build frame", Err: err}
	}

	defer rgb.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgb, &bgr, gocv.ColorRGBToBGR)

	return bgr, nil
}
