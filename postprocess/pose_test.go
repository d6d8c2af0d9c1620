package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stride returns a 2x2 stride tensor where every confidence is low apart
// from the given cells
func stride(hot map[int]int8) Stride {
	cells := 4
	data := make([]int8, (dflLen+1)*cells)

	for c := 0; c < cells; c++ {
		data[dflLen*cells+c] = -50
	}

	for c, v := range hot {
		data[dflLen*cells+c] = v
	}

	return Stride{Data: data, ZP: 0, Scale: 0.1, GridH: 2, GridW: 2}
}

// keyPointTensor fills in keypoints where anchor a has x = 100*a + j,
// y = 200 + j and score 0.9
func keyPointTensor(n, anchors int) []float32 {
	kp := make([]float32, n*3*anchors)

	for j := 0; j < n; j++ {
		for a := 0; a < anchors; a++ {
			kp[j*3*anchors+0*anchors+a] = float32(100*a + j)
			kp[j*3*anchors+1*anchors+a] = float32(200 + j)
			kp[j*3*anchors+2*anchors+a] = 0.9
		}
	}

	return kp
}

func TestPoseDecoderBest(t *testing.T) {
	d := NewPoseDecoder(COCOPoseParams(0.5))

	strides := []Stride{
		stride(map[int]int8{1: 10}),
		stride(map[int]int8{2: 30}),
	}

	p, ok, err := d.Best(strides, keyPointTensor(17, 8))
	require.NoError(t, err)
	require.True(t, ok)

	// second stride, cell 2
	assert.Equal(t, 6, p.Anchor)
	assert.InDelta(t, 0.9526, p.Score, 1e-3)
	require.Len(t, p.KeyPoints, 17)
	assert.Equal(t, KeyPoint{X: 605, Y: 205, Score: 0.9}, p.KeyPoints[5])
}

func TestPoseDecoderNobody(t *testing.T) {
	d := NewPoseDecoder(COCOPoseParams(0.5))

	_, ok, err := d.Best([]Stride{stride(nil)}, keyPointTensor(17, 4))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPoseDecoderThreshold(t *testing.T) {
	// sigmoid(1.0) is 0.73 which passes 0.5 but not 0.8
	strides := []Stride{stride(map[int]int8{0: 10})}

	_, ok, err := NewPoseDecoder(COCOPoseParams(0.5)).Best(strides, keyPointTensor(17, 4))
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = NewPoseDecoder(COCOPoseParams(0.8)).Best(strides, keyPointTensor(17, 4))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPoseDecoderShortTensors(t *testing.T) {
	d := NewPoseDecoder(COCOPoseParams(0.5))

	_, _, err := d.Best([]Stride{{Data: make([]int8, 3), GridH: 2, GridW: 2}}, nil)
	assert.Error(t, err)

	_, _, err = d.Best([]Stride{stride(nil)}, make([]float32, 10))
	assert.Error(t, err)
}

func TestQuantization(t *testing.T) {
	assert.Equal(t, int8(127), qntF32ToAffine(100, 0, 0.1))
	assert.Equal(t, int8(-128), qntF32ToAffine(-100, 0, 0.1))
	assert.Equal(t, int8(5), qntF32ToAffine(2.5, 0, 0.5))
	assert.InDelta(t, 2.5, deqntAffineToF32(5, 0, 0.5), 1e-6)
	assert.InDelta(t, 0.0, unsigmoid(0.5), 1e-6)
	assert.InDelta(t, 0.5, sigmoid(0), 1e-6)
}
