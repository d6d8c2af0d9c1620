// Package postprocess decodes the output tensors of a YOLOv8-pose model into
// body keypoints.
package postprocess

import (
	"fmt"
)

// dflLen is the number of box regression channels preceding the class
// confidence channel in each stride tensor
const dflLen = 64

// PoseParams defines the YOLOv8-pose decoding parameters
type PoseParams struct {
	// BoxThreshold is the minimum person confidence for a detection to be
	// kept
	BoxThreshold float32
	// KeyPointsNumber is the number of COCO keypoints the model outputs
	KeyPointsNumber int
}

// COCOPoseParams returns PoseParams for a model trained on COCO keypoints
// using the given box threshold
func COCOPoseParams(boxThreshold float32) PoseParams {
	return PoseParams{
		BoxThreshold:    boxThreshold,
		KeyPointsNumber: 17,
	}
}

// Stride is one quantized detection head output of the model
type Stride struct {
	// Data is the int8 tensor laid out as [channel][gridH][gridW]
	Data  []int8
	ZP    int32
	Scale float32
	GridH int
	GridW int
}

// KeyPoint is a keypoint position in model input pixels
type KeyPoint struct {
	X     float32
	Y     float32
	Score float32
}

// Person is a single decoded pose detection
type Person struct {
	// Score is the person confidence
	Score float32
	// Anchor is the index of the grid cell the detection came from across
	// all strides
	Anchor    int
	KeyPoints []KeyPoint
}

// PoseDecoder decodes YOLOv8-pose outputs
type PoseDecoder struct {
	Params PoseParams
}

// NewPoseDecoder returns a PoseDecoder for the given parameters
func NewPoseDecoder(p PoseParams) *PoseDecoder {
	return &PoseDecoder{Params: p}
}

// Best returns the highest scoring person at or above the box threshold.
// keyPoints is the float keypoint tensor laid out as
// [keypoint][x,y,score][anchor].  The bool is false when nobody was found
func (d *PoseDecoder) Best(strides []Stride, keyPoints []float32) (Person, bool, error) {

	anchors := 0

	for _, s := range strides {
		if len(s.Data) < (dflLen+1)*s.GridH*s.GridW {
			return Person{}, false, fmt.Errorf("stride tensor %dx%d too short: %d values",
				s.GridH, s.GridW, len(s.Data))
		}

		anchors += s.GridH * s.GridW
	}

	if want := d.Params.KeyPointsNumber * 3 * anchors; len(keyPoints) < want {
		return Person{}, false, fmt.Errorf("keypoint tensor too short: got %d values, want %d",
			len(keyPoints), want)
	}

	best := Person{Anchor: -1}
	index := 0

	for _, s := range strides {
		score, anchor := d.bestInStride(s, index)

		if anchor >= 0 && score > best.Score {
			best.Score = score
			best.Anchor = anchor
		}

		index += s.GridH * s.GridW
	}

	if best.Anchor < 0 {
		return Person{}, false, nil
	}

	best.KeyPoints = make([]KeyPoint, d.Params.KeyPointsNumber)

	for j := 0; j < d.Params.KeyPointsNumber; j++ {
		best.KeyPoints[j] = KeyPoint{
			X:     keyPoints[j*3*anchors+0*anchors+best.Anchor],
			Y:     keyPoints[j*3*anchors+1*anchors+best.Anchor],
			Score: keyPoints[j*3*anchors+2*anchors+best.Anchor],
		}
	}

	return best, true, nil
}

// bestInStride returns the highest person confidence in the stride and its
// anchor index, or -1 if no cell reaches the box threshold
func (d *PoseDecoder) bestInStride(s Stride, index int) (float32, int) {

	thresI8 := qntF32ToAffine(unsigmoid(d.Params.BoxThreshold), s.ZP, s.Scale)
	cells := s.GridH * s.GridW

	bestScore := float32(0)
	bestAnchor := -1

	for h := 0; h < s.GridH; h++ {
		for w := 0; w < s.GridW; w++ {

			// single class model, the person confidence follows the box
			// regression channels
			offset := dflLen*cells + h*s.GridW + w

			if s.Data[offset] < thresI8 {
				continue
			}

			score := sigmoid(deqntAffineToF32(s.Data[offset], s.ZP, s.Scale))

			if score >= d.Params.BoxThreshold && score > bestScore {
				bestScore = score
				bestAnchor = index + h*s.GridW + w
			}
		}
	}

	return bestScore, bestAnchor
}
