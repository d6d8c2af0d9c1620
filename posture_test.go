package posture

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"Standing", Standing},
		{"Squat", Squat},
		{"squat", Squat},
		{"Push-Up", PushUp},
		{"pushup", PushUp},
		{"push_up", PushUp},
		{" Plank ", Plank},
		{"LUNGE", Lunge},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseModeRoundTrip(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestParseModeUnknown(t *testing.T) {
	got, err := ParseMode("Deadlift")
	require.ErrorIs(t, err, ErrUnknownMode)
	assert.Equal(t, DefaultMode, got)
	assert.Equal(t, KindUnknownMode, KindOf(err))
}

func TestParseJoint(t *testing.T) {
	j, err := ParseJoint("left-knee")
	require.NoError(t, err)
	assert.Equal(t, LeftKnee, j)
	assert.Equal(t, "LEFT_KNEE", j.String())

	_, err = ParseJoint("tail")
	assert.Error(t, err)
}

func TestLandmarkSetCopiesInput(t *testing.T) {
	in := map[Joint]Landmark{
		RightHip:     {X: 0.6, Y: 0.5, Visibility: 0.9},
		LeftShoulder: {X: 0.4, Y: 0.2, Visibility: 0.8},
		Joint(99):    {X: 1, Y: 1},
	}

	set := NewLandmarkSet(in)
	in[LeftShoulder] = Landmark{}

	lm, ok := set.Get(LeftShoulder)
	require.True(t, ok)
	assert.Equal(t, 0.2, lm.Y)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []Joint{LeftShoulder, RightHip}, set.Joints())
	assert.False(t, set.Has(LeftKnee))
}

func TestNilLandmarkSet(t *testing.T) {
	var set *LandmarkSet

	_, ok := set.Get(Nose)
	assert.False(t, ok)
	assert.Equal(t, 0, set.Len())
	assert.Empty(t, set.Joints())
}

func TestResultConfidence(t *testing.T) {
	tests := []struct {
		name       string
		tips       []string
		verdict    Verdict
		confidence int
	}{
		{"no tips", nil, CorrectPosture, 100},
		{"one tip", []string{"a"}, WrongPosture, 90},
		{"two tips", []string{"a", "b"}, WrongPosture, 80},
		{"floored", make([]string, 12), WrongPosture, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Wrong(tt.tips)
			assert.Equal(t, tt.verdict, r.Verdict())
			assert.Equal(t, tt.confidence, r.Confidence())
			assert.True(t, r.HasConfidence())
		})
	}
}

func TestResultTipsAreCopied(t *testing.T) {
	r := Wrong([]string{"Keep shoulders level."})

	tips := r.Tips()
	tips[0] = "changed"

	assert.Equal(t, []string{"Keep shoulders level."}, r.Tips())
}

func TestNotDetectedAndFailed(t *testing.T) {
	nd := NotDetected()
	assert.Equal(t, ExtractionFailed, nd.Verdict())
	assert.False(t, nd.HasConfidence())
	assert.Equal(t, []string{TipNoPosture}, nd.Tips())
	assert.Equal(t, KindExtractionAbsent, nd.Kind())

	f := Failed(&MissingJointError{Joint: LeftKnee})
	assert.Equal(t, EvaluationError, f.Verdict())
	assert.Equal(t, 0, f.Confidence())
	assert.Equal(t, []string{"missing joint: LEFT_KNEE"}, f.Tips())
	assert.Equal(t, KindMissingJoint, f.Kind())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindNone},
		{&DecodeError{Reason: "empty image buffer"}, KindDecode},
		{fmt.Errorf("angle: %w", ErrDegenerateAngle), KindDegenerateAngle},
		{&MissingJointError{Joint: Nose}, KindMissingJoint},
		{fmt.Errorf("%w: npu", ErrExtractor), KindExtractor},
		{errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "error %v", tt.err)
	}
}

func TestDecodeErrorUnwrap(t *testing.T) {
	inner := errors.New("bad header")
	err := error(&DecodeError{Reason: "imdecode", Err: inner})

	assert.ErrorIs(t, err, ErrDecode)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "image decode failed: imdecode: bad header", err.Error())
}
