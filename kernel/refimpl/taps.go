// Package refimpl is the default KernelFactory: resize resampling built on
// golang.org/x/image/draw's Kernel type, colorspace matrix/transfer
// conversion generalized from a fixed-point YUV matrix into a float64
// Kr/Kb-parametrized family, and depth/dither conversion with ordered,
// random (local LCG), and error-feedback quantization noise shaping.
package refimpl

import (
	"math"

	"golang.org/x/image/draw"
)

// tapSet is one output sample's convolution: the half-open input range
// [First,Last) and the matching per-sample weights, already normalized to
// sum to 1.
type tapSet struct {
	First, Last uint32
	Weights     []float64
}

// buildTaps precomputes, for every output index in [0,dstDim), the input
// range and weights a polyphase resampler needs. shift offsets the sampling
// center in source-pixel units (the chroma/field shift math of spec.md
// §4.5.2); subWidth restricts sampling to an active sub-window narrower
// than srcDim. This follows the same center/support/normalize convolution
// x/image/draw's own scaler builds around a Kernel, just driven directly
// off a Kernel value rather than through draw.Scale.
func buildTaps(k draw.Kernel, srcDim, dstDim uint32, shift, subWidth float64) []tapSet {
	if subWidth <= 0 {
		subWidth = float64(srcDim)
	}
	scale := subWidth / float64(dstDim)
	filterScale := scale
	if filterScale < 1 {
		filterScale = 1
	}
	support := k.Support * filterScale

	taps := make([]tapSet, dstDim)
	for j := uint32(0); j < dstDim; j++ {
		center := (float64(j)+0.5)*scale - 0.5 + shift

		first := int64(math.Ceil(center - support))
		last := int64(math.Floor(center+support)) + 1
		if first == last {
			last++
		}
		if first < 0 {
			first = 0
		}
		if last > int64(srcDim) {
			last = int64(srcDim)
		}
		if last <= first {
			last = first + 1
			if last > int64(srcDim) {
				first, last = int64(srcDim)-1, int64(srcDim)
			}
		}

		weights := make([]float64, last-first)
		sum := 0.0
		for i := first; i < last; i++ {
			w := k.At((center - float64(i)) / filterScale)
			weights[i-first] = w
			sum += w
		}
		if sum != 0 {
			for i := range weights {
				weights[i] /= sum
			}
		}
		taps[j] = tapSet{First: uint32(first), Last: uint32(last), Weights: weights}
	}
	return taps
}

func box(t float64) float64 {
	if t >= -0.5 && t < 0.5 {
		return 1
	}
	return 0
}

func spline16(t float64) float64 {
	t = math.Abs(t)
	switch {
	case t < 1:
		return ((t-9.0/5.0)*t-1.0/5.0)*t + 1
	case t < 2:
		return ((-1.0/3.0*(t-1)+4.0/5.0)*(t-1)-7.0/15.0)*(t-1) - 0
	default:
		return 0
	}
}

func spline36(t float64) float64 {
	t = math.Abs(t)
	switch {
	case t < 1:
		return ((13.0/11.0*t-453.0/209.0)*t-3.0/209.0)*t + 1
	case t < 2:
		return ((-6.0/11.0*(t-1)+270.0/209.0)*(t-1)-156.0/209.0)*(t-1) + 0
	case t < 3:
		return ((1.0/11.0*(t-2)-45.0/209.0)*(t-2)+26.0/209.0)*(t-2) + 0
	default:
		return 0
	}
}

func lanczos(taps int) func(float64) float64 {
	a := float64(taps)
	return func(t float64) float64 {
		t = math.Abs(t)
		if t == 0 {
			return 1
		}
		if t >= a {
			return 0
		}
		pit := math.Pi * t
		return a * math.Sin(pit) * math.Sin(pit/a) / (pit * pit)
	}
}

// mitchellNetravali builds the parametrized bicubic family (b,c); (0,0.5)
// is Catmull-Rom, (1/3,1/3) is the classic Mitchell filter.
func mitchellNetravali(b, c float64) func(float64) float64 {
	p0 := (6 - 2*b) / 6
	p2 := (-18 + 12*b + 6*c) / 6
	p3 := (12 - 9*b - 6*c) / 6
	q0 := (8*b + 24*c) / 6
	q1 := (-12*b - 48*c) / 6
	q2 := (6*b + 30*c) / 6
	q3 := (-b - 6*c) / 6
	return func(t float64) float64 {
		t = math.Abs(t)
		switch {
		case t < 1:
			return p0 + t*t*(p2+t*p3)
		case t < 2:
			return q0 + t*(q1+t*(q2+t*q3))
		default:
			return 0
		}
	}
}
