// Package zimg is the external façade: it resolves a source ImageState and
// a target ImageState into a runnable conversion graph.Graph. Everything
// else in this module (pixel, filter, kernel, graph, builder) is an
// implementation detail a caller only needs when writing its own
// KernelFactory.
package zimg

import (
	"github.com/deepteams/zimg/builder"
	"github.com/deepteams/zimg/graph"
	"github.com/deepteams/zimg/kernel"
	"github.com/deepteams/zimg/kernel/refimpl"
	"github.com/deepteams/zimg/pixel"
	"github.com/deepteams/zimg/zerror"
)

// Re-exported so callers describing images need only import this package.
type (
	ImageState      = pixel.ImageState
	ColorFamily     = pixel.ColorFamily
	AlphaType       = pixel.AlphaType
	FieldParity     = pixel.FieldParity
	ChromaLocationW = pixel.ChromaLocationW
	ChromaLocationH = pixel.ChromaLocationH
	Matrix          = pixel.Matrix
	Transfer        = pixel.Transfer
	Primaries       = pixel.Primaries
	Colorspace      = pixel.Colorspace
	PixelType       = pixel.Type
	Format          = pixel.Format
)

const (
	Grey = pixel.Grey
	RGB  = pixel.RGB
	YUV  = pixel.YUV
)

const (
	AlphaNone          = pixel.AlphaNone
	AlphaStraight      = pixel.AlphaStraight
	AlphaPremultiplied = pixel.AlphaPremultiplied
)

const (
	Progressive = pixel.Progressive
	Top         = pixel.Top
	Bottom      = pixel.Bottom
)

const (
	ChromaLeft    = pixel.ChromaLeft
	ChromaCenterW = pixel.ChromaCenterW
)

const (
	ChromaCenterH = pixel.ChromaCenterH
	ChromaTop     = pixel.ChromaTop
	ChromaBottom  = pixel.ChromaBottom
)

const (
	MatrixUnspecified             = pixel.MatrixUnspecified
	MatrixRGB                     = pixel.MatrixRGB
	MatrixREC601                  = pixel.MatrixREC601
	MatrixREC709                  = pixel.MatrixREC709
	MatrixREC2020NCL              = pixel.MatrixREC2020NCL
	MatrixREC2020CL               = pixel.MatrixREC2020CL
	MatrixYCgCo                   = pixel.MatrixYCgCo
	MatrixREC2100ICtCp            = pixel.MatrixREC2100ICtCp
	MatrixChromaticityDerivedNCL  = pixel.MatrixChromaticityDerivedNCL
	MatrixChromaticityDerivedCL   = pixel.MatrixChromaticityDerivedCL
)

const (
	TransferUnspecified = pixel.TransferUnspecified
	TransferLinear      = pixel.TransferLinear
	TransferREC709      = pixel.TransferREC709
	TransferST2084      = pixel.TransferST2084
	TransferARIBB67     = pixel.TransferARIBB67
)

const (
	PrimariesUnspecified = pixel.PrimariesUnspecified
	PrimariesREC709      = pixel.PrimariesREC709
	PrimariesREC2020     = pixel.PrimariesREC2020
	PrimariesSMPTEC      = pixel.PrimariesSMPTEC
	PrimariesDCIP3       = pixel.PrimariesDCIP3
	PrimariesDCIP3D65    = pixel.PrimariesDCIP3D65
)

const (
	U8  = pixel.U8
	U16 = pixel.U16
	F16 = pixel.F16
	F32 = pixel.F32
)

// ResizeFilterKind and DitherKind are re-exported from kernel so BuildParams
// can be populated without importing kernel directly.
type (
	ResizeFilterKind = kernel.ResizeFilterKind
	DitherKind       = kernel.DitherKind
	KernelFactory    = kernel.KernelFactory
)

const (
	Point    = kernel.Point
	Bilinear = kernel.Bilinear
	Bicubic  = kernel.Bicubic
	Spline16 = kernel.Spline16
	Spline36 = kernel.Spline36
	Lanczos  = kernel.Lanczos
)

const (
	DitherNone           = kernel.DitherNone
	DitherOrdered        = kernel.DitherOrdered
	DitherRandom         = kernel.DitherRandom
	DitherErrorDiffusion = kernel.DitherErrorDiffusion
)

// ResizeConfig and BuildParams mirror builder's planner parameters;
// aliased here so a caller configuring a conversion never has to import
// the builder package by name.
type (
	ResizeConfig = builder.ResizeConfig
	BuildParams  = builder.Params
)

// PlaneBuffers, Callback, and Graph are re-exported so the whole external
// API in spec.md §6 is reachable from this one package.
type (
	PlaneBuffers = graph.PlaneBuffers
	Callback     = graph.Callback
	Graph        = graph.Graph
)

// Error kind sentinels, usable with errors.Is against any error this
// module returns (spec.md §4.6, §7).
var (
	ErrOutOfMemory             = zerror.Sentinel(zerror.OutOfMemory)
	ErrInvalidImageSize        = zerror.Sentinel(zerror.InvalidImageSize)
	ErrGreyscaleSubsampling    = zerror.Sentinel(zerror.GreyscaleSubsampling)
	ErrColorFamilyMismatch     = zerror.Sentinel(zerror.ColorFamilyMismatch)
	ErrUnsupportedSubsampling  = zerror.Sentinel(zerror.UnsupportedSubsampling)
	ErrImageNotDivisible       = zerror.Sentinel(zerror.ImageNotDivisible)
	ErrBitDepthOverflow        = zerror.Sentinel(zerror.BitDepthOverflow)
	ErrNoFieldParityConversion = zerror.Sentinel(zerror.NoFieldParityConversion)
	ErrNoColorspaceConversion  = zerror.Sentinel(zerror.NoColorspaceConversion)
	ErrResamplingNotAvailable  = zerror.Sentinel(zerror.ResamplingNotAvailable)
	ErrInternalError           = zerror.Sentinel(zerror.InternalError)
	ErrUserCallbackFailed      = zerror.Sentinel(zerror.UserCallbackFailed)
)

// DefaultKernelFactory returns the pure-Go reference KernelFactory used
// when BuildGraph is given a nil factory.
func DefaultKernelFactory() KernelFactory { return refimpl.NewDefaultFactory() }

// BuildGraph plans and freezes a conversion graph from source to target
// under params. A nil factory selects DefaultKernelFactory. The returned
// Graph is safe for concurrent, repeated Process calls (spec.md §4.4.3).
func BuildGraph(source, target ImageState, params BuildParams, factory KernelFactory) (*Graph, error) {
	if factory == nil {
		factory = DefaultKernelFactory()
	}
	return builder.Build(source, target, params, factory)
}
