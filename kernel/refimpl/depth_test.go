package refimpl

import (
	"math"
	"testing"

	"github.com/deepteams/zimg/kernel"
	"github.com/deepteams/zimg/linebuffer"
	"github.com/deepteams/zimg/pixel"
)

func intBuf(typ pixel.Type, w uint32) linebuffer.Buffer {
	sz := pixel.ByteSize(typ)
	return linebuffer.New(make([]byte, int(w)*sz), int(w)*sz, linebuffer.AllOnes, typ)
}

func TestDepthConvertUpscale(t *testing.T) {
	f := NewDefaultFactory()
	spec := kernel.DepthSpec{
		SrcFormat: pixel.Format{Type: pixel.U8, Depth: 8, FullRange: true},
		DstFormat: pixel.Format{Type: pixel.U16, Depth: 16, FullRange: true},
	}
	filt, err := f.DepthFilter(spec, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	in := []linebuffer.Buffer{intBuf(pixel.U8, 1)}
	out := []linebuffer.Buffer{intBuf(pixel.U16, 1)}
	linebuffer.SetSample(in[0], 0, 0, 255)
	filt.Process(nil, in, out, nil, 0, 0, 1)
	if got := linebuffer.GetSample(out[0], 0, 0); got != 65535 {
		t.Fatalf("255/8bit -> 16bit = %v, want 65535", got)
	}
}

func TestDepthConvertRejectsInvalidFormat(t *testing.T) {
	f := NewDefaultFactory()
	_, err := f.DepthFilter(kernel.DepthSpec{
		SrcFormat: pixel.Format{Type: pixel.U8, Depth: 20},
		DstFormat: pixel.Format{Type: pixel.U8, Depth: 8, FullRange: true},
	}, 1, 1)
	if err == nil {
		t.Fatal("expected error for depth exceeding type maximum")
	}
}

func TestRangeLowHighLimited(t *testing.T) {
	low, high := rangeLowHigh(pixel.Format{Type: pixel.U8, Depth: 8, FullRange: false})
	if low != 16 || high != 235 {
		t.Fatalf("limited 8-bit range = [%v,%v], want [16,235]", low, high)
	}
}

func TestErrorDiffusionStaysInRange(t *testing.T) {
	d := newDepthConvert(kernel.DepthSpec{
		SrcFormat: pixel.Format{Type: pixel.F32, FullRange: true},
		DstFormat: pixel.Format{Type: pixel.U8, Depth: 1, FullRange: true},
		Dither:    kernel.DitherErrorDiffusion,
	}, 64, 1)
	in := []linebuffer.Buffer{intBuf(pixel.F32, 64)}
	out := []linebuffer.Buffer{intBuf(pixel.U8, 64)}
	for i := uint32(0); i < 64; i++ {
		linebuffer.SetSample(in[0], 0, i, 0.5)
	}
	d.Process(nil, in, out, nil, 0, 0, 64)
	ones := 0
	for i := uint32(0); i < 64; i++ {
		v := linebuffer.GetSample(out[0], 0, i)
		if v != 0 && v != 1 {
			t.Fatalf("1-bit output sample out of range: %v", v)
		}
		if v == 1 {
			ones++
		}
	}
	if math.Abs(float64(ones)-32) > 4 {
		t.Fatalf("error diffusion of constant 0.5 should average near half-on, got %d/64", ones)
	}
}
