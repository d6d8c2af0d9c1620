package rules

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Side selects which side of the body angle rules are measured on
type Side int

const (
	// SideLeft measures angles on the left joints, this suits a camera
	// facing the left side of the body
	SideLeft Side = iota
	SideRight
)

// String returns "left" or "right"
func (s Side) String() string {
	if s == SideRight {
		return "right"
	}

	return "left"
}

// ParseSide returns the Side for "left" or "right"
func ParseSide(name string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "left":
		return SideLeft, nil
	case "right":
		return SideRight, nil
	}

	return SideLeft, fmt.Errorf("unknown body side %q", name)
}

// Thresholds are the tunable limits of the rule set.  Slopes are in
// normalized image units, angles are in degrees
type Thresholds struct {
	// ShoulderSlope is the maximum vertical offset between the shoulders
	// when Standing
	ShoulderSlope float64 `mapstructure:"shoulder_slope" validate:"gte=0,lte=1"`
	// HipSlope is the maximum vertical offset between the hips when Standing
	HipSlope float64 `mapstructure:"hip_slope" validate:"gte=0,lte=1"`

	SquatKneeMax float64 `mapstructure:"squat_knee_max" validate:"gte=0,lte=180,gtfield=SquatKneeMin"`
	SquatKneeMin float64 `mapstructure:"squat_knee_min" validate:"gte=0,lte=180"`

	PushUpElbowMax float64 `mapstructure:"pushup_elbow_max" validate:"gte=0,lte=180,gtfield=PushUpElbowMin"`
	PushUpElbowMin float64 `mapstructure:"pushup_elbow_min" validate:"gte=0,lte=180"`

	// PlankBackMin and PlankBackMax bound the shoulder-hip-knee angle.  The
	// angle never exceeds 180 so only PlankBackMin can trigger with the
	// default of 190
	PlankBackMin float64 `mapstructure:"plank_back_min" validate:"gte=0,lte=180"`
	PlankBackMax float64 `mapstructure:"plank_back_max" validate:"gtefield=PlankBackMin"`

	LungeKneeMax float64 `mapstructure:"lunge_knee_max" validate:"gte=0,lte=180,gtfield=LungeKneeMin"`
	LungeKneeMin float64 `mapstructure:"lunge_knee_min" validate:"gte=0,lte=180"`

	// Side is the body side angle rules read joints from
	Side Side `mapstructure:"-"`
}

// DefaultThresholds returns the standard rule limits
func DefaultThresholds() Thresholds {
	return Thresholds{
		ShoulderSlope:  0.02,
		HipSlope:       0.02,
		SquatKneeMax:   100,
		SquatKneeMin:   60,
		PushUpElbowMax: 160,
		PushUpElbowMin: 90,
		PlankBackMin:   170,
		PlankBackMax:   190,
		LungeKneeMax:   110,
		LungeKneeMin:   70,
		Side:           SideLeft,
	}
}

// Validate checks the thresholds are within range and each max is above its
// min
func (t Thresholds) Validate() error {

	if err := validator.New().Struct(t); err != nil {
		return fmt.Errorf("invalid rule thresholds: %w", err)
	}

	return nil
}
