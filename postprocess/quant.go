package postprocess

import "math"

// deqntAffineToF32 converts a quantized int8 value back to a float32 using
// the provided zero point and scale
func deqntAffineToF32(qnt int8, zp int32, scale float32) float32 {
	return (float32(qnt) - float32(zp)) * scale
}

// qntF32ToAffine converts a float32 value to an int8 using quantization
// parameters: zero point and scale
func qntF32ToAffine(f32 float32, zp int32, scale float32) int8 {

	dst := (f32 / scale) + float32(zp)

	switch {
	case dst <= -128:
		return -128
	case dst >= 127:
		return 127
	}

	return int8(dst)
}

func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(float64(-x))))
}

// unsigmoid is the inverse of sigmoid, used to move a probability threshold
// into logit space so it can be compared against raw tensor values
func unsigmoid(y float32) float32 {
	return float32(-math.Log(1/float64(y) - 1))
}
