package render

import (
	"image"

	"github.com/swdee/go-posture"
	"gocv.io/x/gocv"
)

// limb is a line drawn between two joints of the skeleton
type limb struct {
	from, to posture.Joint
}

// skeleton defines the pose skeleton joints to draw lines between, legs
// first then torso, arms and face.  It pairs one to one with limbColors
var skeleton = []limb{
	{posture.LeftAnkle, posture.LeftKnee},
	{posture.LeftKnee, posture.LeftHip},
	{posture.RightAnkle, posture.RightKnee},
	{posture.RightKnee, posture.RightHip},
	{posture.LeftHip, posture.RightHip},
	{posture.LeftShoulder, posture.LeftHip},
	{posture.RightShoulder, posture.RightHip},
	{posture.LeftShoulder, posture.RightShoulder},
	{posture.LeftShoulder, posture.LeftElbow},
	{posture.RightShoulder, posture.RightElbow},
	{posture.LeftElbow, posture.LeftWrist},
	{posture.RightElbow, posture.RightWrist},
	{posture.LeftEye, posture.RightEye},
	{posture.Nose, posture.LeftEye},
	{posture.Nose, posture.RightEye},
	{posture.LeftEye, posture.LeftEar},
	{posture.RightEye, posture.RightEar},
	{posture.LeftEar, posture.LeftShoulder},
	{posture.RightEar, posture.RightShoulder},
}

// Style holds the parameters for drawing a skeleton
type Style struct {
	LineThickness int
	CircleRadius  int
	// MinVisibility hides joints, and the limbs attached to them, scored
	// below it
	MinVisibility float64
}

// DefaultStyle returns the default skeleton style
func DefaultStyle() Style {
	return Style{
		LineThickness: 2,
		CircleRadius:  3,
		MinVisibility: 0,
	}
}

// toPixel converts a normalized landmark into pixel coordinates of img
func toPixel(img *gocv.Mat, lm posture.Landmark) image.Point {
	return image.Pt(int(lm.X*float64(img.Cols())), int(lm.Y*float64(img.Rows())))
}

// Skeleton renders the landmarks in set onto img.  Landmarks are normalized
// so the skeleton scales to whatever resolution img has.  Joints missing from
// set are skipped
func Skeleton(img *gocv.Mat, set *posture.LandmarkSet, style Style) {

	if set == nil || img.Empty() {
		return
	}

	visible := func(j posture.Joint) (posture.Landmark, bool) {
		lm, ok := set.Get(j)
		return lm, ok && lm.Visibility >= style.MinVisibility
	}

	// draw skeleton lines
	for i, l := range skeleton {
		a, ok := visible(l.from)

		if !ok {
			continue
		}

		b, ok := visible(l.to)

		if !ok {
			continue
		}

		gocv.Line(img, toPixel(img, a), toPixel(img, b), limbColors[i], style.LineThickness)
	}

	// draw circles at skeleton joints
	set.Each(func(j posture.Joint, lm posture.Landmark) {
		if lm.Visibility < style.MinVisibility {
			return
		}

		gocv.Circle(img, toPixel(img, lm), style.CircleRadius, keyPointColors[j], -1)
	})
}
