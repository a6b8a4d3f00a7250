package refimpl

import (
	"golang.org/x/image/draw"

	"github.com/deepteams/zimg/filter"
	"github.com/deepteams/zimg/kernel"
	"github.com/deepteams/zimg/linebuffer"
	"github.com/deepteams/zimg/pixel"
	"github.com/deepteams/zimg/zerror"
)

// kernelFor maps a kernel.ResizeFilterKind onto a draw.Kernel. Bilinear
// reuses draw.BiLinear directly; Bicubic with b=0,c=0.5 (the default
// builder.Params.Normalize fills in) reuses draw.CatmullRom, since
// Catmull-Rom is that member of the Mitchell-Netravali family. Bicubic
// with b=c=0 is replaced by the Mitchell filter (b=c=1/3). Every other
// shape is a locally built draw.Kernel value, since x/image/draw does not
// ship Lanczos, the splines, or the general (b,c) bicubic family.
func kernelFor(spec kernel.ResizeSpec) (draw.Kernel, error) {
	switch spec.Kind {
	case kernel.Point:
		return draw.Kernel{Support: 0.5, At: box}, nil
	case kernel.Bilinear:
		return draw.BiLinear, nil
	case kernel.Bicubic:
		if spec.BicubicB == 0 && spec.BicubicC == 0.5 {
			return draw.CatmullRom, nil
		}
		b, c := spec.BicubicB, spec.BicubicC
		if b == 0 && c == 0 {
			b, c = 1.0/3, 1.0/3
		}
		return draw.Kernel{Support: 2, At: mitchellNetravali(b, c)}, nil
	case kernel.Spline16:
		return draw.Kernel{Support: 2, At: spline16}, nil
	case kernel.Spline36:
		return draw.Kernel{Support: 3, At: spline36}, nil
	case kernel.Lanczos:
		taps := spec.LanczosTaps
		if taps <= 0 {
			taps = 3
		}
		return draw.Kernel{Support: float64(taps), At: lanczos(taps)}, nil
	default:
		return draw.Kernel{}, zerror.New(zerror.ResamplingNotAvailable, "unknown resize filter kind %d", spec.Kind)
	}
}

// hresize resamples along the row axis: output row i depends only on input
// row i (SameRow), reading a per-column support window. Declared EntireRow,
// so the engine drives the whole graph at single-tile width whenever a
// resize node is present (see DESIGN.md).
type hresize struct {
	filter.Base
	attr filter.Attributes
	taps []tapSet
}

func newHResize(k draw.Kernel, spec kernel.ResizeSpec, height uint32, typ pixel.Type) *hresize {
	return &hresize{
		attr: filter.Attributes{Width: spec.DstDim, Height: height, Type: typ},
		taps: buildTaps(k, spec.SrcDim, spec.DstDim, spec.Shift, spec.SubWidth),
	}
}

func (h *hresize) GetFlags() filter.Flags          { return filter.Flags{SameRow: true, EntireRow: true} }
func (h *hresize) Attributes() filter.Attributes   { return h.attr }
func (h *hresize) MaxBuffering() uint32            { return 1 }
func (h *hresize) ColDeps(left, right uint32) (uint32, uint32) {
	first, last := h.attr.Width, uint32(0)
	for c := left; c < right && c < uint32(len(h.taps)); c++ {
		t := h.taps[c]
		if t.First < first {
			first = t.First
		}
		if t.Last > last {
			last = t.Last
		}
	}
	if last <= first {
		return 0, h.attr.Width
	}
	return first, last
}

func (h *hresize) Process(ctx []byte, in, out []linebuffer.Buffer, tmp []byte, row, left, right uint32) {
	for col := left; col < right; col++ {
		t := h.taps[col]
		sum := 0.0
		for i, w := range t.Weights {
			sum += w * linebuffer.GetSample(in[0], row, t.First+uint32(i))
		}
		linebuffer.SetSample(out[0], row, col, sum)
	}
}

// vresize resamples along the column axis: output row i reads a support
// window of input rows [RowDeps(i)) and writes the full row range it is
// asked for in one column-only pass (not SameRow, not EntireRow: its column
// range can still be tiled since the row support, not the column support,
// is what varies here).
type vresize struct {
	filter.Base
	attr filter.Attributes
	taps []tapSet
	mb   uint32
}

func newVResize(k draw.Kernel, spec kernel.ResizeSpec, width uint32, typ pixel.Type) *vresize {
	taps := buildTaps(k, spec.SrcDim, spec.DstDim, spec.Shift, spec.SubWidth)
	mb := uint32(0)
	for _, t := range taps {
		if span := t.Last - t.First; span > mb {
			mb = span
		}
	}
	return &vresize{attr: filter.Attributes{Width: width, Height: spec.DstDim, Type: typ}, taps: taps, mb: mb}
}

func (v *vresize) GetFlags() filter.Flags        { return filter.Flags{} }
func (v *vresize) Attributes() filter.Attributes { return v.attr }
func (v *vresize) MaxBuffering() uint32          { return v.mb }

func (v *vresize) RowDeps(i uint32) (uint32, uint32) {
	if int(i) >= len(v.taps) {
		return i, i + 1
	}
	t := v.taps[i]
	return t.First, t.Last
}

func (v *vresize) Process(ctx []byte, in, out []linebuffer.Buffer, tmp []byte, row, left, right uint32) {
	t := v.taps[row]
	for col := left; col < right; col++ {
		sum := 0.0
		for i, w := range t.Weights {
			sum += w * linebuffer.GetSample(in[0], t.First+uint32(i), col)
		}
		linebuffer.SetSample(out[0], row, col, sum)
	}
}

// ResizeFilter implements kernel.KernelFactory.
func (f *DefaultFactory) ResizeFilter(axis kernel.Axis, spec kernel.ResizeSpec, width, height uint32, typ pixel.Type) (filter.Filter, error) {
	k, err := kernelFor(spec)
	if err != nil {
		return nil, err
	}
	if spec.SrcDim == spec.DstDim && spec.Shift == 0 && spec.SubWidth == 0 {
		return filter.NewCopy(width, height, typ), nil
	}
	switch axis {
	case kernel.Horizontal:
		return newHResize(k, spec, height, typ), nil
	case kernel.Vertical:
		return newVResize(k, spec, width, typ), nil
	default:
		return nil, zerror.New(zerror.InternalError, "unknown resize axis %d", axis)
	}
}
