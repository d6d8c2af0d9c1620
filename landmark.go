package posture

import (
	"fmt"
	"strings"
)

// Joint identifies a body keypoint in the extractor vocabulary.  The values
// follow the COCO keypoint order used by YOLOv8-pose models
type Joint int

const (
	Nose Joint = iota
	LeftEye
	RightEye
	LeftEar
	RightEar
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
)

// JointCount is the number of joints in the vocabulary
const JointCount = 17

var jointNames = [JointCount]string{
	"NOSE",
	"LEFT_EYE",
	"RIGHT_EYE",
	"LEFT_EAR",
	"RIGHT_EAR",
	"LEFT_SHOULDER",
	"RIGHT_SHOULDER",
	"LEFT_ELBOW",
	"RIGHT_ELBOW",
	"LEFT_WRIST",
	"RIGHT_WRIST",
	"LEFT_HIP",
	"RIGHT_HIP",
	"LEFT_KNEE",
	"RIGHT_KNEE",
	"LEFT_ANKLE",
	"RIGHT_ANKLE",
}

// String returns the joint name, eg: LEFT_SHOULDER
func (j Joint) String() string {
	if !j.Valid() {
		return fmt.Sprintf("JOINT(%d)", int(j))
	}

	return jointNames[j]
}

// Valid reports whether j is part of the vocabulary
func (j Joint) Valid() bool {
	return j >= 0 && j < JointCount
}

// ParseJoint returns the Joint for a name such as "LEFT_KNEE" or "left-knee"
func ParseJoint(name string) (Joint, error) {

	key := strings.ToUpper(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, " ", "_")

	for i, n := range jointNames {
		if n == key {
			return Joint(i), nil
		}
	}

	return 0, fmt.Errorf("unknown joint %q", name)
}

// Landmark is the position of a joint in normalized image space.  The origin
// is the top left corner of the frame and coordinates are conventionally in
// the range [0,1], but are not clamped
type Landmark struct {
	X float64
	Y float64
	// Visibility is the extractor confidence that the joint is visible, low
	// values indicate an occluded joint
	Visibility float64
}

// LandmarkSet is the set of landmarks for one person in one frame.  It is
// built once by the extractor and has no mutating methods
type LandmarkSet struct {
	points  [JointCount]Landmark
	present [JointCount]bool
	count   int
}

// NewLandmarkSet returns a LandmarkSet holding a copy of the given landmarks.
// Joints outside the vocabulary are ignored
func NewLandmarkSet(points map[Joint]Landmark) *LandmarkSet {

	s := &LandmarkSet{}

	for j, lm := range points {
		if !j.Valid() {
			continue
		}

		s.points[j] = lm
		s.present[j] = true
		s.count++
	}

	return s
}

// Get returns the landmark for joint j and whether it is present
func (s *LandmarkSet) Get(j Joint) (Landmark, bool) {
	if s == nil || !j.Valid() || !s.present[j] {
		return Landmark{}, false
	}

	return s.points[j], true
}

// Has reports whether joint j is present
func (s *LandmarkSet) Has(j Joint) bool {
	_, ok := s.Get(j)
	return ok
}

// Len returns the number of joints present
func (s *LandmarkSet) Len() int {
	if s == nil {
		return 0
	}

	return s.count
}

// Joints returns the present joints in vocabulary order
func (s *LandmarkSet) Joints() []Joint {

	joints := make([]Joint, 0, s.Len())

	s.Each(func(j Joint, _ Landmark) {
		joints = append(joints, j)
	})

	return joints
}

// Each calls fn for every present joint in vocabulary order
func (s *LandmarkSet) Each(fn func(Joint, Landmark)) {
	if s == nil {
		return
	}

	for i := 0; i < JointCount; i++ {
		if s.present[i] {
			fn(Joint(i), s.points[i])
		}
	}
}

// AngleQuery names the three joints of an angle measurement, the angle is
// taken at Vertex between the rays towards A and C
type AngleQuery struct {
	A      Joint
	Vertex Joint
	C      Joint
}

// String returns the query as A-Vertex-C
func (q AngleQuery) String() string {
	return fmt.Sprintf("%s-%s-%s", q.A, q.Vertex, q.C)
}
