// Package kernel declares the opaque dispatch surface the builder reaches
// through for every filter whose body is a concrete numeric kernel: resize
// resampling, colorspace matrix/transfer conversion, and depth/dither
// conversion. The graph and builder packages only ever see the KernelFactory
// interface; they never branch on which concrete resampler or matrix a
// factory happens to return (spec.md §2, §4.5.1 passes 2, 4, 5).
package kernel

import (
	"github.com/deepteams/zimg/filter"
	"github.com/deepteams/zimg/pixel"
)

// Axis selects which spatial dimension a resize filter operates along. The
// builder always attaches horizontal and vertical resize as separate filter
// nodes (spec.md §4.5.1 step 4's h-first/v-first decomposition).
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// ResizeFilterKind names a resampling kernel shape (spec.md §6 BuildParams).
type ResizeFilterKind int

const (
	Point ResizeFilterKind = iota
	Bilinear
	Bicubic
	Spline16
	Spline36
	Lanczos
)

// ResizeSpec describes one axis of one resize filter attachment.
type ResizeSpec struct {
	Kind ResizeFilterKind

	// BicubicB, BicubicC parametrize the Mitchell-Netravali family when
	// Kind == Bicubic (the classic b=1/3, c=1/3; b=0, c=0.5 is Catmull-Rom).
	BicubicB, BicubicC float64
	// LanczosTaps is the support radius when Kind == Lanczos.
	LanczosTaps int

	SrcDim, DstDim uint32
	// Shift offsets the resampling center in source-pixel units, carrying
	// the chroma/field shift math from spec.md §4.5.2.
	Shift float64
	// SubWidth restricts sampling to an active sub-window of the source
	// axis narrower than SrcDim (spec.md §4.5's active window / unresize).
	SubWidth float64

	Unresize bool
}

// ColorspaceSpec describes one 3-plane joint colorspace conversion.
type ColorspaceSpec struct {
	SrcFamily pixel.ColorFamily
	DstFamily pixel.ColorFamily
	Src, Dst  pixel.Colorspace
	SrcFormat pixel.Format
	DstFormat pixel.Format

	PeakLuminance     float64
	ApproximateGamma  bool
	SceneReferred     bool
}

// DitherKind selects the quantization noise-shaping strategy a depth
// converter applies when narrowing precision (spec.md §6 BuildParams).
type DitherKind int

const (
	DitherNone DitherKind = iota
	DitherOrdered
	DitherRandom
	DitherErrorDiffusion
)

// DepthSpec describes one plane's bit-depth / range conversion.
type DepthSpec struct {
	SrcFormat pixel.Format
	DstFormat pixel.Format
	Dither    DitherKind
}

// KernelFactory manufactures the concrete numeric filters a builder pass
// needs, given only the shape of the conversion requested. It is the one
// seam in the core that a caller may override (spec.md §6 BuildParams
// `cpu`/factory hint) to swap in SIMD or vendor-specific kernels without
// touching the planner or engine.
type KernelFactory interface {
	// ResizeFilter returns a filter resampling one axis of one plane.
	ResizeFilter(axis Axis, spec ResizeSpec, width, height uint32, typ pixel.Type) (filter.Filter, error)
	// ColorspaceFilter returns the 3-plane joint matrix/transfer filter.
	ColorspaceFilter(spec ColorspaceSpec, width, height uint32, typ pixel.Type) (filter.Filter, error)
	// DepthFilter returns a single-plane bit-depth/range converter.
	DepthFilter(spec DepthSpec, width, height uint32) (filter.Filter, error)
}
