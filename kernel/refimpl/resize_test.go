package refimpl

import (
	"math"
	"testing"

	"golang.org/x/image/draw"

	"github.com/deepteams/zimg/kernel"
	"github.com/deepteams/zimg/pixel"
)

func TestBuildTapsWeightsSumToOne(t *testing.T) {
	taps := buildTaps(draw.CatmullRom, 17, 41, 0, 0)
	if len(taps) != 41 {
		t.Fatalf("got %d tap sets, want 41", len(taps))
	}
	for j, ts := range taps {
		sum := 0.0
		for _, w := range ts.Weights {
			sum += w
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("tap %d: weights sum to %v, want 1", j, sum)
		}
		if ts.Last > 17 || ts.First >= ts.Last {
			t.Errorf("tap %d: invalid range [%d,%d)", j, ts.First, ts.Last)
		}
	}
}

func TestBuildTapsDownscale(t *testing.T) {
	taps := buildTaps(draw.BiLinear, 100, 10, 0, 0)
	if len(taps) != 10 {
		t.Fatalf("got %d taps, want 10", len(taps))
	}
	if taps[0].Last <= taps[0].First+1 {
		t.Error("downscaling should widen the support beyond one sample")
	}
}

func TestResizeFilterNoopReturnsCopy(t *testing.T) {
	f := NewDefaultFactory()
	filt, err := f.ResizeFilter(kernel.Horizontal, kernel.ResizeSpec{Kind: kernel.Bicubic, SrcDim: 32, DstDim: 32}, 32, 16, pixel.U8)
	if err != nil {
		t.Fatal(err)
	}
	if filt.Attributes().Width != 32 {
		t.Fatalf("width = %d, want 32", filt.Attributes().Width)
	}
}

func TestKernelForUnknownRejected(t *testing.T) {
	if _, err := kernelFor(kernel.ResizeSpec{Kind: kernel.ResizeFilterKind(99)}); err == nil {
		t.Fatal("expected error for unknown resize kind")
	}
}
