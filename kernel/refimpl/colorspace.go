package refimpl

import (
	"math"

	"github.com/deepteams/zimg/filter"
	"github.com/deepteams/zimg/kernel"
	"github.com/deepteams/zimg/linebuffer"
	"github.com/deepteams/zimg/pixel"
	"github.com/deepteams/zimg/zerror"
)

// mat3 is a row-major 3x3 matrix, generalizing the teacher's hardcoded
// fixed-point YUV<->RGB constants (internal/dsp/yuv.go's kYScale/kRCr/...)
// into a floating-point coefficient table addressed by pixel.Matrix, so one
// engine covers every ITU/SMPTE matrix instead of one baked-in BT.601 path.
type mat3 [3][3]float64

func identity3() mat3 {
	return mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// rgbToYUVMatrix returns the forward (R,G,B)->(Y,Cb,Cr) matrix for m, built
// from the standard luma coefficients Kr,Kb the way libwebp's yuv.h derives
// its own fixed-point constants (kRGBToY0.. in internal/dsp/yuv.go) from
// Kr=0.299, Kb=0.114 for BT.601.
func rgbToYUVMatrix(m pixel.Matrix) mat3 {
	kr, kb := krKb(m)
	if m == pixel.MatrixYCgCo {
		return mat3{
			{0.25, 0.5, 0.25},
			{-0.25, 0.5, -0.25},
			{0.5, 0, -0.5},
		}
	}
	kg := 1 - kr - kb
	cbScale := 0.5 / (1 - kb)
	crScale := 0.5 / (1 - kr)
	return mat3{
		{kr, kg, kb},
		{-kr * cbScale, -kg * cbScale, (1 - kb) * cbScale},
		{(1 - kr) * crScale, -kg * crScale, -kb * crScale},
	}
}

func krKb(m pixel.Matrix) (kr, kb float64) {
	switch m {
	case pixel.MatrixREC709, pixel.MatrixChromaticityDerivedNCL, pixel.MatrixChromaticityDerivedCL:
		return 0.2126, 0.0722
	case pixel.MatrixREC2020NCL, pixel.MatrixREC2020CL, pixel.MatrixREC2100ICtCp:
		return 0.2627, 0.0593
	default: // MatrixREC601 and unrecognized fall back to BT.601, matching the teacher's sole hardcoded matrix.
		return 0.299, 0.114
	}
}

func invert3(m mat3) mat3 {
	a, b, c := m[0][0], m[0][1], m[0][2]
	d, e, f := m[1][0], m[1][1], m[1][2]
	g, h, i := m[2][0], m[2][1], m[2][2]
	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if det == 0 {
		return identity3()
	}
	inv := 1 / det
	return mat3{
		{(e*i - f*h) * inv, (c*h - b*i) * inv, (b*f - c*e) * inv},
		{(f*g - d*i) * inv, (a*i - c*g) * inv, (c*d - a*f) * inv},
		{(d*h - e*g) * inv, (b*g - a*h) * inv, (a*e - b*d) * inv},
	}
}

func mulVec3(m mat3, v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// oetf/eotf pairs map between scene-linear light and the transfer-encoded
// domain the matrix above expects its chroma derivation to operate in.
// REC709's OETF also covers REC601 (both use the same ~1/0.45 gamma knee).
func eotf(t pixel.Transfer, peak float64) func(float64) float64 {
	switch t {
	case pixel.TransferLinear:
		return func(v float64) float64 { return v }
	case pixel.TransferST2084:
		return func(v float64) float64 { return pqEOTF(v) * peak / 10000 }
	case pixel.TransferARIBB67:
		return hlgEOTF
	default:
		return bt709EOTF
	}
}

func oetf(t pixel.Transfer, peak float64) func(float64) float64 {
	switch t {
	case pixel.TransferLinear:
		return func(v float64) float64 { return v }
	case pixel.TransferST2084:
		return func(v float64) float64 { return pqOETF(v * 10000 / peak) }
	case pixel.TransferARIBB67:
		return hlgOETF
	default:
		return bt709OETF
	}
}

func bt709OETF(v float64) float64 {
	if v < 0.018 {
		return 4.5 * v
	}
	return 1.099*math.Pow(v, 0.45) - 0.099
}

func bt709EOTF(v float64) float64 {
	if v < 0.081 {
		return v / 4.5
	}
	return math.Pow((v+0.099)/1.099, 1/0.45)
}

const (
	pqM1 = 2610.0 / 16384
	pqM2 = 2523.0 / 4096 * 128
	pqC1 = 3424.0 / 4096
	pqC2 = 2413.0 / 4096 * 32
	pqC3 = 2392.0 / 4096 * 32
)

func pqOETF(v float64) float64 {
	if v < 0 {
		v = 0
	}
	ym1 := math.Pow(v/10000, pqM1)
	return math.Pow((pqC1+pqC2*ym1)/(1+pqC3*ym1), pqM2)
}

func pqEOTF(v float64) float64 {
	ym2 := math.Pow(v, 1/pqM2)
	num := ym2 - pqC1
	if num < 0 {
		num = 0
	}
	return 10000 * math.Pow(num/(pqC2-pqC3*ym2), 1/pqM1)
}

const (
	hlgA = 0.17883277
	hlgB = 1 - 4*hlgA
	hlgC = 0.5 - hlgA*math.Log(4*hlgA)
)

func hlgOETF(v float64) float64 {
	if v <= 1.0/12 {
		return math.Sqrt(3 * v)
	}
	return hlgA*math.Log(12*v-hlgB) + hlgC
}

func hlgEOTF(v float64) float64 {
	if v <= 0.5 {
		return v * v / 3
	}
	return (math.Exp((v-hlgC)/hlgA) + hlgB) / 12
}

// colorMatrix is the 3-plane joint filter the builder's colorspace pass
// attaches (spec.md §4.5.1 step 2). Grounded on internal/dsp/yuv.go's
// fixed-point YUVToR/G/B trio, generalized to a full forward matrix ->
// transfer remap -> inverse matrix pipeline operating in float64.
type colorMatrix struct {
	filter.Base
	attr      filter.Attributes
	toRGB     mat3
	fromRGB   mat3
	srcFamily pixel.ColorFamily
	dstFamily pixel.ColorFamily
	srcEOTF   func(float64) float64
	dstOETF   func(float64) float64
}

func newColorMatrix(spec kernel.ColorspaceSpec, width, height uint32, typ pixel.Type) *colorMatrix {
	toRGB := identity3()
	if spec.SrcFamily != pixel.RGB {
		toRGB = invert3(rgbToYUVMatrix(spec.Src.Matrix))
	}
	fromRGB := identity3()
	if spec.DstFamily != pixel.RGB {
		fromRGB = rgbToYUVMatrix(spec.Dst.Matrix)
	}
	peak := spec.PeakLuminance
	if peak <= 0 {
		peak = 100
	}
	return &colorMatrix{
		attr:      filter.Attributes{Width: width, Height: height, Type: typ},
		toRGB:     toRGB,
		fromRGB:   fromRGB,
		srcFamily: spec.SrcFamily,
		dstFamily: spec.DstFamily,
		srcEOTF:   eotf(spec.Src.Transfer, peak),
		dstOETF:   oetf(spec.Dst.Transfer, peak),
	}
}

func (c *colorMatrix) GetFlags() filter.Flags        { return filter.Flags{SameRow: true, Color: true} }
func (c *colorMatrix) Attributes() filter.Attributes { return c.attr }

func (c *colorMatrix) Process(ctx []byte, in, out []linebuffer.Buffer, tmp []byte, row, left, right uint32) {
	for col := left; col < right; col++ {
		v := [3]float64{
			linebuffer.GetSample(in[0], row, col),
			linebuffer.GetSample(in[1], row, col),
			linebuffer.GetSample(in[2], row, col),
		}
		rgb := mulVec3(c.toRGB, v)
		if c.srcEOTF != nil {
			for i := range rgb {
				rgb[i] = c.srcEOTF(rgb[i])
			}
		}
		if c.dstOETF != nil {
			for i := range rgb {
				rgb[i] = c.dstOETF(rgb[i])
			}
		}
		out3 := mulVec3(c.fromRGB, rgb)
		linebuffer.SetSample(out[0], row, col, out3[0])
		linebuffer.SetSample(out[1], row, col, out3[1])
		linebuffer.SetSample(out[2], row, col, out3[2])
	}
}

// ColorspaceFilter implements kernel.KernelFactory.
func (f *DefaultFactory) ColorspaceFilter(spec kernel.ColorspaceSpec, width, height uint32, typ pixel.Type) (filter.Filter, error) {
	if spec.Src.Matrix == pixel.MatrixRGB && spec.Dst.Matrix != pixel.MatrixRGB && spec.SrcFamily != pixel.RGB {
		return nil, zerror.New(zerror.NoColorspaceConversion, "cannot derive RGB matrix from non-RGB source family")
	}
	return newColorMatrix(spec, width, height, typ), nil
}
