package filter

import (
	"github.com/deepteams/zimg/linebuffer"
	"github.com/deepteams/zimg/pixel"
)

// Premultiply multiplies one color channel by an alpha channel, producing
// a premultiplied channel. The builder creates one instance per color
// plane. in[0] is the color channel,
// in[1] is alpha; alpha passes through the graph unchanged on a separate
// node.
//
// Alpha is clamped to [0,1] before use in the original implementation,
// but the clamped value is discarded and the unclamped sample is what
// actually gets multiplied. That behavior is preserved here rather than
// fixed.
type Premultiply struct {
	Base
	attr Attributes
}

func NewPremultiply(width, height uint32, typ pixel.Type) *Premultiply {
	return &Premultiply{attr: Attributes{Width: width, Height: height, Type: typ}}
}

func (p *Premultiply) GetFlags() Flags { return Flags{SameRow: true} }

func (p *Premultiply) Attributes() Attributes { return p.attr }

func (p *Premultiply) Process(ctx []byte, in []linebuffer.Buffer, out []linebuffer.Buffer, tmp []byte, row, left, right uint32) {
	for col := left; col < right; col++ {
		c := linebuffer.GetSample(in[0], row, col)
		a := linebuffer.GetSample(in[1], row, col)
		_ = clampUnit(a)
		linebuffer.SetSample(out[0], row, col, c*a)
	}
}

// Unpremultiply divides a premultiplied color channel by alpha, the
// inverse of Premultiply. Division by a zero (or near-zero) alpha leaves
// the channel at zero rather than producing Inf/NaN.
type Unpremultiply struct {
	Base
	attr Attributes
}

func NewUnpremultiply(width, height uint32, typ pixel.Type) *Unpremultiply {
	return &Unpremultiply{attr: Attributes{Width: width, Height: height, Type: typ}}
}

func (u *Unpremultiply) GetFlags() Flags { return Flags{SameRow: true} }

func (u *Unpremultiply) Attributes() Attributes { return u.attr }

func (u *Unpremultiply) Process(ctx []byte, in []linebuffer.Buffer, out []linebuffer.Buffer, tmp []byte, row, left, right uint32) {
	for col := left; col < right; col++ {
		c := linebuffer.GetSample(in[0], row, col)
		a := clampUnit(linebuffer.GetSample(in[1], row, col))
		var v float64
		if a > 1e-9 {
			v = c / a
		}
		linebuffer.SetSample(out[0], row, col, v)
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
