// Package extractor provides a posture.Extractor running a YOLOv8-pose model
// on the Rockchip NPU via go-rknnlite.
package extractor

import (
	"fmt"
	"image/color"

	"github.com/swdee/go-posture"
	"github.com/swdee/go-posture/postprocess"
	"github.com/swdee/go-posture/preprocess"
	"github.com/swdee/go-rknnlite"
	"gocv.io/x/gocv"
)

// strideCount is the number of detection heads of a YOLOv8-pose model, the
// keypoint tensor is the output after them
const strideCount = 3

var padColor = color.RGBA{R: 0, G: 0, B: 0, A: 255}

// RKNN is a keypoint extractor session holding one NPU runtime.  A session
// reuses its input buffers and must not be shared between goroutines, use a
// posture.Pool to serve concurrent callers
type RKNN struct {
	rt      *rknnlite.Runtime
	decoder *postprocess.PoseDecoder
	cfg     posture.ExtractorConfig
	// lb follows the size of the frames passed to Extract
	lb    *preprocess.Letterbox
	input gocv.Mat
}

// NewRKNN loads the YOLOv8-pose RKNN model file on the given NPU core
func NewRKNN(modelFile string, core rknnlite.CoreMask, cfg posture.ExtractorConfig) (*RKNN, error) {

	rt, err := rknnlite.NewRuntime(modelFile, core)

	if err != nil {
		return nil, fmt.Errorf("error initializing RKNN runtime: %w", err)
	}

	// leave the detection heads as int8, the keypoint head is converted
	// from float16 by the runtime
	rt.SetWantFloat(false)

	inputs := rt.InputAttrs()
	outputs := rt.OutputAttrs()

	if len(inputs) != 1 || len(outputs) < strideCount+1 {
		rt.Close()
		return nil, fmt.Errorf("model %s is not a YOLOv8-pose model: %d inputs, %d outputs",
			modelFile, len(inputs), len(outputs))
	}

	// input tensor is NHWC
	inHeight := int(inputs[0].Dims[1])
	inWidth := int(inputs[0].Dims[2])

	r := &RKNN{
		rt:      rt,
		decoder: postprocess.NewPoseDecoder(postprocess.COCOPoseParams(float32(cfg.MinDetectionConfidence))),
		cfg:     cfg,
		lb:      preprocess.NewLetterbox(inWidth, inHeight, padColor),
		input:   gocv.NewMat(),
	}

	return r, nil
}

// Extract runs pose estimation on an RGB frame and returns the landmarks of
// the highest scoring person, or nil if nobody reached the detection
// threshold
func (r *RKNN) Extract(frame gocv.Mat) (*posture.LandmarkSet, error) {

	if frame.Empty() {
		return nil, fmt.Errorf("%w: empty frame", posture.ErrExtractor)
	}

	if err := r.lb.Into(frame, &r.input); err != nil {
		return nil, fmt.Errorf("%w: %v", posture.ErrExtractor, err)
	}

	outputs, err := r.rt.Inference([]gocv.Mat{r.input})

	if err != nil {
		return nil, fmt.Errorf("%w: inference: %v", posture.ErrExtractor, err)
	}

	defer outputs.Free()

	if len(outputs.Output) < strideCount+1 {
		return nil, fmt.Errorf("%w: expected %d outputs, got %d", posture.ErrExtractor,
			strideCount+1, len(outputs.Output))
	}

	attrs := r.rt.OutputAttrs()
	strides := make([]postprocess.Stride, strideCount)

	for i := 0; i < strideCount; i++ {
		strides[i] = postprocess.Stride{
			Data:  outputs.Output[i].BufInt,
			ZP:    attrs[i].ZP,
			Scale: attrs[i].Scale,
			GridH: int(attrs[i].Dims[2]),
			GridW: int(attrs[i].Dims[3]),
		}
	}

	person, ok, err := r.decoder.Best(strides, outputs.Output[strideCount].BufFloat)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", posture.ErrExtractor, err)
	}

	if !ok {
		return nil, nil
	}

	return r.landmarks(person), nil
}

// landmarks maps a decoded person from model input pixels to normalized
// frame coordinates
func (r *RKNN) landmarks(p postprocess.Person) *posture.LandmarkSet {

	points := make(map[posture.Joint]posture.Landmark, len(p.KeyPoints))

	for j, kp := range p.KeyPoints {
		x, y := r.lb.Normalize(kp.X, kp.Y)

		points[posture.Joint(j)] = posture.Landmark{
			X:          x,
			Y:          y,
			Visibility: float64(kp.Score),
		}
	}

	return posture.NewLandmarkSet(points)
}

// Config returns the thresholds the session was created with
func (r *RKNN) Config() posture.ExtractorConfig {
	return r.cfg
}

// Close releases the NPU runtime and buffers
func (r *RKNN) Close() error {

	r.lb.Close()
	r.input.Close()

	return r.rt.Close()
}
