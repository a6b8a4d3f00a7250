package filter

import (
	"github.com/deepteams/zimg/linebuffer"
	"github.com/deepteams/zimg/pixel"
)

// ValueInit fills a plane with a constant sample value, grounded on the
// original graph's ValueInitializeFilter_GE. It has no inputs: used by the
// builder for "add fake chroma" (mid-grey U/V constant fill) and "add
// opaque alpha" (max-value or 1.0 fill).
type ValueInit struct {
	Base
	attr  Attributes
	value float64
}

// NewValueInit builds a ValueInit filter that writes value (already in the
// output format's native numeric domain) to every sample.
func NewValueInit(width, height uint32, typ pixel.Type, value float64) *ValueInit {
	return &ValueInit{attr: Attributes{Width: width, Height: height, Type: typ}, value: value}
}

// MidGreyValue returns the constant-chroma fill value for a format: the
// integer midpoint 1<<(depth-1), or 0.0 for float formats (spec.md §4.5.1
// step 6).
func MidGreyValue(f pixel.Format) float64 {
	if pixel.IsFloat(f.Type) {
		return 0
	}
	return float64(uint32(1) << (f.Depth - 1))
}

// OpaqueAlphaValue returns the fully-opaque constant for a format: the
// integer maximum (2^depth - 1), or 1.0 for float formats (spec.md §4.5.1
// step 8).
func OpaqueAlphaValue(f pixel.Format) float64 {
	if pixel.IsFloat(f.Type) {
		return 1
	}
	return float64((uint32(1) << f.Depth) - 1)
}

func (v *ValueInit) GetFlags() Flags { return Flags{SameRow: true} }

func (v *ValueInit) Attributes() Attributes { return v.attr }

func (v *ValueInit) Process(ctx []byte, in []linebuffer.Buffer, out []linebuffer.Buffer, tmp []byte, row, left, right uint32) {
	for col := left; col < right; col++ {
		linebuffer.SetSample(out[0], row, col, v.value)
	}
}
