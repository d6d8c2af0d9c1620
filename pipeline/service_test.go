package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-posture"
	"github.com/swdee/go-posture/preprocess"
	"github.com/swdee/go-posture/rules"
	"gocv.io/x/gocv"
)

// bent returns three landmarks bent to deg degrees at the middle one
func bent(deg float64) (a, vertex, c posture.Landmark) {
	rad := deg * math.Pi / 180
	v := posture.Landmark{X: 0.5, Y: 0.5, Visibility: 1}

	a = posture.Landmark{X: v.X, Y: v.Y - 0.2, Visibility: 1}
	c = posture.Landmark{X: v.X + 0.2*math.Sin(rad), Y: v.Y - 0.2*math.Cos(rad), Visibility: 1}

	return a, v, c
}

func squatSet(deg float64) *posture.LandmarkSet {
	hip, knee, ankle := bent(deg)

	return posture.NewLandmarkSet(map[posture.Joint]posture.Landmark{
		posture.LeftHip:   hip,
		posture.LeftKnee:  knee,
		posture.LeftAnkle: ankle,
	})
}

func plankSet(deg float64) *posture.LandmarkSet {
	shoulder, hip, knee := bent(deg)

	return posture.NewLandmarkSet(map[posture.Joint]posture.Landmark{
		posture.LeftShoulder: shoulder,
		posture.LeftHip:      hip,
		posture.LeftKnee:     knee,
	})
}

func frame(t *testing.T) []byte {
	t.Helper()

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 120, 150, 0), 240, 320, gocv.MatTypeCV8UC3)
	defer img.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	require.NoError(t, err)
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...)
}

func newService(ex posture.Extractor, opts Options) *Service {
	return NewService(preprocess.NewDefaultNormalizer(), posture.NewSinglePool(ex),
		rules.NewDefaultEvaluator(), opts, zerolog.Nop())
}

func encode(t *testing.T, r Response) string {
	t.Helper()

	b, err := json.Marshal(r)
	require.NoError(t, err)

	return string(b)
}

func TestProcessEndToEnd(t *testing.T) {
	tests := []struct {
		name string
		set  *posture.LandmarkSet
		mode string
		want string
	}{
		{
			name: "squat too shallow",
			set:  squatSet(120),
			mode: "Squat",
			want: `{"status":"success","posture":"Wrong Posture","corrections":["Bend knees more."],"confidence":90}`,
		},
		{
			name: "straight plank",
			set:  plankSet(180),
			mode: "Plank",
			want: `{"status":"success","posture":"Correct Posture","corrections":["Great job!"],"confidence":100}`,
		},
		{
			name: "sagging plank",
			set:  plankSet(150),
			mode: "plank",
			want: `{"status":"success","posture":"Wrong Posture","corrections":["Keep your back straight."],"confidence":90}`,
		},
		{
			name: "standing misaligned",
			set: posture.NewLandmarkSet(map[posture.Joint]posture.Landmark{
				posture.LeftShoulder:  {X: 0.4, Y: 0.30},
				posture.RightShoulder: {X: 0.6, Y: 0.35},
				posture.LeftHip:       {X: 0.4, Y: 0.60},
				posture.RightHip:      {X: 0.6, Y: 0.65},
			}),
			mode: "Standing",
			want: `{"status":"success","posture":"Wrong Posture","corrections":["Keep shoulders level.","Align hips evenly."],"confidence":80}`,
		},
		{
			name: "missing joint",
			set:  plankSet(180),
			mode: "Squat",
			want: `{"status":"error","message":"missing joint: LEFT_ANKLE"}`,
		},
	}

	raw := frame(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(&posture.FixedExtractor{Set: tt.set}, DefaultOptions())

			resp := svc.Process(context.Background(), raw, tt.mode)
			assert.JSONEq(t, tt.want, encode(t, resp))
		})
	}
}

func TestProcessNoBody(t *testing.T) {
	raw := frame(t)
	want := `{"status":"error","message":"No posture detected. Ensure full body is visible and lighting is good."}`

	for _, m := range posture.Modes {
		svc := newService(&posture.FixedExtractor{}, DefaultOptions())

		resp := svc.Process(context.Background(), raw, m.String())
		assert.JSONEq(t, want, encode(t, resp), "mode %s", m)
		assert.Equal(t, posture.KindExtractionAbsent, resp.Kind)
	}
}

func TestProcessDecodeError(t *testing.T) {
	ex := &posture.FixedExtractor{Set: squatSet(80)}
	svc := newService(ex, DefaultOptions())

	before := testutil.ToFloat64(DecodeFailures())

	for _, raw := range [][]byte{nil, {}, []byte("garbage bytes")} {
		resp := svc.Process(context.Background(), raw, "Squat")

		assert.Equal(t, StatusError, resp.Status)
		assert.Equal(t, posture.KindDecode, resp.Kind)
		assert.Contains(t, resp.Message, "image decode failed")
		assert.Nil(t, resp.Confidence)
	}

	assert.Equal(t, 0, ex.Calls())
	assert.Equal(t, before+3, testutil.ToFloat64(DecodeFailures()))
}

func TestProcessUnknownMode(t *testing.T) {
	raw := frame(t)

	svc := newService(&posture.FixedExtractor{Set: squatSet(120)}, DefaultOptions())
	ins := svc.Inspect(context.Background(), raw, "Deadlift")

	assert.Equal(t, posture.Squat, ins.Mode)
	assert.Equal(t, []string{rules.TipSquatDeeper}, ins.Response.Corrections)

	strict := DefaultOptions()
	strict.UnknownModePolicy = PolicyReject

	svc = newService(&posture.FixedExtractor{Set: squatSet(120)}, strict)
	resp := svc.Process(context.Background(), raw, "Deadlift")

	assert.JSONEq(t, `{"status":"error","message":"unknown posture mode: \"Deadlift\""}`, encode(t, resp))
	assert.Equal(t, posture.KindUnknownMode, resp.Kind)
}

func TestProcessEmptyModeUsesDefault(t *testing.T) {
	opts := DefaultOptions()
	opts.DefaultMode = posture.Lunge

	svc := newService(&posture.FixedExtractor{Set: squatSet(130)}, opts)
	ins := svc.Inspect(context.Background(), frame(t), "")

	assert.Equal(t, posture.Lunge, ins.Mode)
	assert.Equal(t, []string{rules.TipLungeDeeper}, ins.Response.Corrections)
	assert.NotNil(t, ins.Landmarks)
}

type panickingExtractor struct{}

func (panickingExtractor) Extract(gocv.Mat) (*posture.LandmarkSet, error) {
	panic("model handle corrupted")
}

func (panickingExtractor) Close() error { return nil }

func TestProcessExtractorFailures(t *testing.T) {
	raw := frame(t)

	svc := newService(&posture.FixedExtractor{Err: errors.New("npu timeout")}, DefaultOptions())
	resp := svc.Process(context.Background(), raw, "Squat")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, posture.KindExtractor, resp.Kind)
	assert.Equal(t, "keypoint extractor failed: npu timeout", resp.Message)

	// errors already classified by the extractor keep their message
	wrapped := fmt.Errorf("%w: inference: npu", posture.ErrExtractor)
	ex := &posture.FixedExtractor{Set: squatSet(80), Err: wrapped}

	svc = newService(ex, DefaultOptions())
	ins := svc.Inspect(context.Background(), raw, "Squat")

	assert.Equal(t, StatusError, ins.Response.Status)
	assert.Equal(t, posture.KindExtractor, ins.Response.Kind)
	assert.Equal(t, "keypoint extractor failed: inference: npu", ins.Response.Message)
	assert.Nil(t, ins.Landmarks)
	assert.Equal(t, 1, ex.Calls())

	svc = newService(panickingExtractor{}, DefaultOptions())

	require.NotPanics(t, func() {
		resp = svc.Process(context.Background(), raw, "Squat")
	})
	assert.Equal(t, posture.KindExtractor, resp.Kind)

	// the session went back to the pool and later calls still work
	resp = svc.Process(context.Background(), raw, "Squat")
	assert.Equal(t, posture.KindExtractor, resp.Kind)
}

func TestProcessClosedPool(t *testing.T) {
	pool := posture.NewSinglePool(&posture.FixedExtractor{Set: squatSet(80)})
	svc := NewService(preprocess.NewDefaultNormalizer(), pool, rules.NewDefaultEvaluator(),
		DefaultOptions(), zerolog.Nop())

	pool.Close()

	resp := svc.Process(context.Background(), frame(t), "Squat")
	assert.Equal(t, posture.KindExtractor, resp.Kind)
	assert.Contains(t, resp.Message, "extractor pool is closed")
}

func TestProcessCountsEvaluations(t *testing.T) {
	svc := newService(&posture.FixedExtractor{Set: squatSet(80)}, DefaultOptions())
	counter := Evaluations().WithLabelValues("Squat", "Correct Posture")

	before := testutil.ToFloat64(counter)
	svc.Process(context.Background(), frame(t), "Squat")

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestParseModePolicy(t *testing.T) {
	p, err := ParseModePolicy("Reject")
	require.NoError(t, err)
	assert.Equal(t, PolicyReject, p)

	p, err = ParseModePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyDefault, p)

	_, err = ParseModePolicy("ignore")
	assert.Error(t, err)
}
