package pixel

import (
	"math"

	"github.com/deepteams/zimg/zerror"
)

// ImageState fully describes one side (source or target) of a conversion:
// geometry, sample encoding, color interpretation, subsampling, field
// parity, chroma siting, the active (sampled) subregion, and alpha
// semantics.
type ImageState struct {
	Width, Height uint32

	Type      Type
	Depth     uint32
	FullRange bool

	Color      ColorFamily
	Colorspace Colorspace

	SubsampleW, SubsampleH uint32 // 0, 1, or 2

	Parity FieldParity

	ChromaLocationW ChromaLocationW
	ChromaLocationH ChromaLocationH

	ActiveLeft, ActiveTop, ActiveWidth, ActiveHeight float64

	Alpha AlphaType
}

// Format returns the plane encoding implied by the color fields of s.
func (s ImageState) Format() Format {
	return Format{Type: s.Type, Depth: s.Depth, FullRange: s.FullRange}
}

func invalid(kind zerror.Kind, msg string) *zerror.Error { return zerror.New(kind, "%s", msg) }

// Validate checks the invariants from spec.md §3. It returns a
// *zerror.Error tagged with the matching error kind (InvalidImageSize,
// GreyscaleSubsampling, ColorFamilyMismatch, UnsupportedSubsampling,
// ImageNotDivisible, BitDepthOverflow).
func (s ImageState) Validate() error {
	if s.Width == 0 || s.Height == 0 {
		return invalid(zerror.InvalidImageSize, "width and height must be positive")
	}
	if s.Width > MaxWidth(s.Type) {
		return invalid(zerror.InvalidImageSize, "width exceeds addressable maximum for pixel type")
	}

	switch s.Color {
	case Grey:
		if s.SubsampleW != 0 || s.SubsampleH != 0 {
			return invalid(zerror.GreyscaleSubsampling, "greyscale images cannot be subsampled")
		}
		if s.Colorspace.Matrix == MatrixRGB {
			return invalid(zerror.ColorFamilyMismatch, "greyscale images cannot use the RGB matrix")
		}
	case RGB:
		if s.SubsampleW != 0 || s.SubsampleH != 0 {
			return invalid(zerror.UnsupportedSubsampling, "RGB images cannot be subsampled")
		}
		if s.Colorspace.Matrix != MatrixUnspecified && s.Colorspace.Matrix != MatrixRGB {
			return invalid(zerror.ColorFamilyMismatch, "RGB images require the RGB (or unspecified) matrix")
		}
	case YUV:
		if s.Colorspace.Matrix == MatrixRGB {
			return invalid(zerror.ColorFamilyMismatch, "YUV images cannot use the RGB matrix")
		}
	default:
		return invalid(zerror.ColorFamilyMismatch, "unknown color family")
	}

	if s.SubsampleW > 2 || s.SubsampleH > 2 {
		return invalid(zerror.UnsupportedSubsampling, "subsample factor must be 0, 1, or 2")
	}
	if s.SubsampleH > 1 && s.Parity != Progressive {
		return invalid(zerror.UnsupportedSubsampling, "vertical subsampling greater than one requires progressive parity")
	}

	if s.Width%(1<<s.SubsampleW) != 0 {
		return invalid(zerror.ImageNotDivisible, "width not divisible by horizontal subsample factor")
	}
	if s.Height%(1<<s.SubsampleH) != 0 {
		return invalid(zerror.ImageNotDivisible, "height not divisible by vertical subsample factor")
	}

	if s.Depth > MaxDepth(s.Type) {
		return invalid(zerror.BitDepthOverflow, "depth exceeds type maximum")
	}
	if !IsFloat(s.Type) {
		if !s.FullRange && s.Depth < 8 {
			return invalid(zerror.BitDepthOverflow, "limited-range integer formats require depth >= 8")
		}
	}

	if !isFinite(s.ActiveLeft) || !isFinite(s.ActiveTop) || !isFinite(s.ActiveWidth) || !isFinite(s.ActiveHeight) {
		return invalid(zerror.InvalidImageSize, "active window must be finite")
	}
	if s.ActiveWidth <= 0 || s.ActiveHeight <= 0 {
		return invalid(zerror.InvalidImageSize, "active window must have positive extent")
	}

	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// WithDefaultActiveWindow returns s with ActiveWidth/ActiveHeight defaulted
// to the full plane when left unset (zero), matching the common case where
// a caller only fills in geometry and color fields.
func (s ImageState) WithDefaultActiveWindow() ImageState {
	if s.ActiveWidth == 0 {
		s.ActiveWidth = float64(s.Width)
	}
	if s.ActiveHeight == 0 {
		s.ActiveHeight = float64(s.Height)
	}
	return s
}

// PlaneDims returns the pixel dimensions of the given plane id (0=Y/G,
// 1=U/B, 2=V/R, 3=A) under this state's subsampling. Chroma planes (1, 2)
// are only meaningful when Color == YUV.
func (s ImageState) PlaneDims(planeID int) (width, height uint32) {
	switch planeID {
	case 1, 2:
		if s.Color == YUV {
			return s.Width >> s.SubsampleW, s.Height >> s.SubsampleH
		}
		return s.Width, s.Height
	default:
		return s.Width, s.Height
	}
}

// HasAlpha reports whether this state carries an alpha plane.
func (s ImageState) HasAlpha() bool { return s.Alpha != AlphaNone }

// NumColorPlanes returns how many non-alpha planes this state has (1 for
// Grey, 3 for RGB/YUV).
func (s ImageState) NumColorPlanes() int {
	if s.Color == Grey {
		return 1
	}
	return 3
}
