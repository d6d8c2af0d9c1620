// Package rules classifies a posture by applying threshold rules for the
// selected mode to joint angles and slopes.
package rules

import (
	"fmt"

	"github.com/swdee/go-posture"
	"github.com/swdee/go-posture/geometry"
)

// Correction tips raised by the rule set
const (
	TipShouldersLevel = "Keep shoulders level."
	TipHipsEven       = "Align hips evenly."
	TipSquatDeeper    = "Bend knees more."
	TipSquatTooLow    = "Do not squat too low."
	TipPushUpLower    = "Lower your body more."
	TipPushUpTooLow   = "Do not go too low."
	TipBackStraight   = "Keep your back straight."
	TipLungeDeeper    = "Bend your knee more."
	TipLungeTooDeep   = "Do not over-bend your knee."
)

// measure computes one value from a landmark set
type measure func(set *posture.LandmarkSet) (float64, error)

// rule raises tip when violated returns true for the measured value
type rule struct {
	measure  int
	violated func(v float64) bool
	tip      string
}

// ruleSet is the measurements and rules of one mode.  Rules index into
// measures so a value shared by several rules is computed once
type ruleSet struct {
	measures []measure
	rules    []rule
}

// limb holds the joints of one body side
type limb struct {
	shoulder, elbow, wrist, hip, knee, ankle posture.Joint
}

func limbFor(s Side) limb {
	if s == SideRight {
		return limb{posture.RightShoulder, posture.RightElbow, posture.RightWrist,
			posture.RightHip, posture.RightKnee, posture.RightAnkle}
	}

	return limb{posture.LeftShoulder, posture.LeftElbow, posture.LeftWrist,
		posture.LeftHip, posture.LeftKnee, posture.LeftAnkle}
}

func angle(a, vertex, c posture.Joint) measure {
	q := posture.AngleQuery{A: a, Vertex: vertex, C: c}

	return func(set *posture.LandmarkSet) (float64, error) {
		return geometry.AngleOf(set, q)
	}
}

func offset(j1, j2 posture.Joint) measure {
	return func(set *posture.LandmarkSet) (float64, error) {
		return geometry.OffsetOf(set, j1, j2)
	}
}

func above(limit float64) func(float64) bool {
	return func(v float64) bool { return v > limit }
}

func below(limit float64) func(float64) bool {
	return func(v float64) bool { return v < limit }
}

func outside(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v < lo || v > hi }
}

// Evaluator applies the rule set of a mode to a LandmarkSet.  It holds no
// per call state and is safe for concurrent use
type Evaluator struct {
	thresholds Thresholds
	sets       map[posture.Mode]ruleSet
}

// NewEvaluator returns an Evaluator using the given thresholds
func NewEvaluator(t Thresholds) (*Evaluator, error) {

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return &Evaluator{
		thresholds: t,
		sets:       buildRuleSets(t),
	}, nil
}

// NewDefaultEvaluator returns an Evaluator using DefaultThresholds
func NewDefaultEvaluator() *Evaluator {
	t := DefaultThresholds()

	return &Evaluator{
		thresholds: t,
		sets:       buildRuleSets(t),
	}
}

// Thresholds returns the limits the evaluator was built with
func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

func buildRuleSets(t Thresholds) map[posture.Mode]ruleSet {

	l := limbFor(t.Side)

	return map[posture.Mode]ruleSet{
		posture.Standing: {
			measures: []measure{
				offset(posture.LeftShoulder, posture.RightShoulder),
				offset(posture.LeftHip, posture.RightHip),
			},
			rules: []rule{
				{0, above(t.ShoulderSlope), TipShouldersLevel},
				{1, above(t.HipSlope), TipHipsEven},
			},
		},
		posture.Squat: {
			measures: []measure{angle(l.hip, l.knee, l.ankle)},
			rules: []rule{
				{0, above(t.SquatKneeMax), TipSquatDeeper},
				{0, below(t.SquatKneeMin), TipSquatTooLow},
			},
		},
		posture.PushUp: {
			measures: []measure{angle(l.shoulder, l.elbow, l.wrist)},
			rules: []rule{
				{0, above(t.PushUpElbowMax), TipPushUpLower},
				{0, below(t.PushUpElbowMin), TipPushUpTooLow},
			},
		},
		posture.Plank: {
			measures: []measure{angle(l.shoulder, l.hip, l.knee)},
			rules: []rule{
				{0, outside(t.PlankBackMin, t.PlankBackMax), TipBackStraight},
			},
		},
		posture.Lunge: {
			measures: []measure{angle(l.hip, l.knee, l.ankle)},
			rules: []rule{
				{0, above(t.LungeKneeMax), TipLungeDeeper},
				{0, below(t.LungeKneeMin), TipLungeTooDeep},
			},
		},
	}
}

// Evaluate applies every rule of mode to set.  Failures to measure, such as
// a missing joint or degenerate angle, are returned as an EvaluationError
// result rather than an error
func (e *Evaluator) Evaluate(set *posture.LandmarkSet, mode posture.Mode) (res posture.Result) {

	defer func() {
		if r := recover(); r != nil {
			res = posture.Failed(fmt.Errorf("%w: rule evaluation panicked: %v", posture.ErrInternal, r))
		}
	}()

	rs, ok := e.sets[mode]

	if !ok {
		return posture.Failed(fmt.Errorf("%w: %s", posture.ErrUnknownMode, mode))
	}

	values := make([]float64, len(rs.measures))

	for i, m := range rs.measures {
		v, err := m(set)

		if err != nil {
			return posture.Failed(err)
		}

		values[i] = v
	}

	var tips []string

	for _, r := range rs.rules {
		if r.violated(values[r.measure]) {
			tips = append(tips, r.tip)
		}
	}

	return posture.Wrong(tips)
}
