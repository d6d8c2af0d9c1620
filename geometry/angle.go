// Package geometry measures joint angles and slopes from body landmarks.
package geometry

import (
	"fmt"
	"math"

	"github.com/swdee/go-posture"
	"gonum.org/v1/gonum/spatial/r2"
)

// minNorm is the length below which a ray is treated as zero length
const minNorm = 1e-12

// point converts a landmark to a 2D vector, ignoring visibility
func point(lm posture.Landmark) r2.Vec {
	return r2.Vec{X: lm.X, Y: lm.Y}
}

// finite reports whether both coordinates of lm are real numbers
func finite(lm posture.Landmark) bool {
	return !math.IsNaN(lm.X) && !math.IsInf(lm.X, 0) &&
		!math.IsNaN(lm.Y) && !math.IsInf(lm.Y, 0)
}

// Angle returns the angle in degrees at vertex b between the rays b->a and
// b->c.  The result is in the range [0,180].  If either ray has zero length,
// or any point has a NaN or infinite coordinate, the angle is undefined and
// an error wrapping posture.ErrDegenerateAngle is returned
func Angle(a, b, c posture.Landmark) (float64, error) {

	if !finite(a) || !finite(b) || !finite(c) {
		return 0, fmt.Errorf("%w: non-finite coordinate", posture.ErrDegenerateAngle)
	}

	ba := r2.Sub(point(a), point(b))
	bc := r2.Sub(point(c), point(b))

	nba := r2.Norm(ba)
	nbc := r2.Norm(bc)

	if nba < minNorm {
		return 0, fmt.Errorf("%w: first point coincides with vertex", posture.ErrDegenerateAngle)
	}

	if nbc < minNorm {
		return 0, fmt.Errorf("%w: last point coincides with vertex", posture.ErrDegenerateAngle)
	}

	cos := r2.Dot(ba, bc) / (nba * nbc)

	// floating point error can push the cosine just outside the domain of
	// acos
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi, nil
}

// AngleOf resolves the joints of q in set and returns their Angle
func AngleOf(set *posture.LandmarkSet, q posture.AngleQuery) (float64, error) {

	a, err := lookup(set, q.A)

	if err != nil {
		return 0, err
	}

	b, err := lookup(set, q.Vertex)

	if err != nil {
		return 0, err
	}

	c, err := lookup(set, q.C)

	if err != nil {
		return 0, err
	}

	deg, err := Angle(a, b, c)

	if err != nil {
		return 0, fmt.Errorf("angle %s: %w", q, err)
	}

	return deg, nil
}

// VerticalOffset returns the absolute difference between the y coordinates
// of a and b, ie: how far a line between them is from level
func VerticalOffset(a, b posture.Landmark) float64 {
	return math.Abs(a.Y - b.Y)
}

// OffsetOf resolves joints j1 and j2 in set and returns their VerticalOffset.
// A joint with a NaN or infinite coordinate returns an error wrapping
// posture.ErrDegenerateAngle
func OffsetOf(set *posture.LandmarkSet, j1, j2 posture.Joint) (float64, error) {

	a, err := lookup(set, j1)

	if err != nil {
		return 0, err
	}

	b, err := lookup(set, j2)

	if err != nil {
		return 0, err
	}

	if !finite(a) || !finite(b) {
		return 0, fmt.Errorf("%w: offset %s-%s has a non-finite coordinate",
			posture.ErrDegenerateAngle, j1, j2)
	}

	return VerticalOffset(a, b), nil
}

func lookup(set *posture.LandmarkSet, j posture.Joint) (posture.Landmark, error) {

	lm, ok := set.Get(j)

	if !ok {
		return posture.Landmark{}, &posture.MissingJointError{Joint: j}
	}

	return lm, nil
}
