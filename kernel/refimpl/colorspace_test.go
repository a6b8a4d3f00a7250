package refimpl

import (
	"math"
	"testing"

	"github.com/deepteams/zimg/kernel"
	"github.com/deepteams/zimg/linebuffer"
	"github.com/deepteams/zimg/pixel"
)

func planeBuf(w uint32) linebuffer.Buffer {
	sz := pixel.ByteSize(pixel.F32)
	return linebuffer.New(make([]byte, int(w)*sz), int(w)*sz, linebuffer.AllOnes, pixel.F32)
}

func TestColorMatrixGreyYUVDecodesToGreyRGB(t *testing.T) {
	f := NewDefaultFactory()
	spec := kernel.ColorspaceSpec{
		SrcFamily: pixel.YUV, DstFamily: pixel.RGB,
		Src: pixel.Colorspace{Matrix: pixel.MatrixREC709, Transfer: pixel.TransferLinear},
		Dst: pixel.Colorspace{Matrix: pixel.MatrixRGB, Transfer: pixel.TransferLinear},
	}
	filt, err := f.ColorspaceFilter(spec, 4, 1, pixel.F32)
	if err != nil {
		t.Fatal(err)
	}
	in := []linebuffer.Buffer{planeBuf(4), planeBuf(4), planeBuf(4)}
	out := []linebuffer.Buffer{planeBuf(4), planeBuf(4), planeBuf(4)}
	for _, p := range []struct {
		buf linebuffer.Buffer
		v   float64
	}{{in[0], 0.7}, {in[1], 0}, {in[2], 0}} {
		linebuffer.SetSample(p.buf, 0, 0, p.v)
	}
	filt.Process(nil, in, out, nil, 0, 0, 4)

	r := linebuffer.GetSample(out[0], 0, 0)
	g := linebuffer.GetSample(out[1], 0, 0)
	b := linebuffer.GetSample(out[2], 0, 0)
	// grey input (Cb=Cr=0) should map to equal R=G=B.
	if math.Abs(r-g) > 1e-6 || math.Abs(g-b) > 1e-6 {
		t.Fatalf("grey YUV should decode to grey RGB, got %v %v %v", r, g, b)
	}
	if math.Abs(r-0.7) > 1e-6 {
		t.Fatalf("luma 0.7 should map to R=G=B=0.7, got %v", r)
	}
}

func TestKrKbFamilies(t *testing.T) {
	kr709, kb709 := krKb(pixel.MatrixREC709)
	if kr709 != 0.2126 || kb709 != 0.0722 {
		t.Fatalf("REC709 Kr/Kb = %v/%v", kr709, kb709)
	}
	kr601, kb601 := krKb(pixel.MatrixREC601)
	if kr601 != 0.299 || kb601 != 0.114 {
		t.Fatalf("REC601 Kr/Kb = %v/%v", kr601, kb601)
	}
}

func TestInvert3Identity(t *testing.T) {
	m := rgbToYUVMatrix(pixel.MatrixREC709)
	inv := invert3(m)
	prod := mulVec3(inv, mulVec3(m, [3]float64{1, 0.3, -0.2}))
	want := [3]float64{1, 0.3, -0.2}
	for i := range want {
		if math.Abs(prod[i]-want[i]) > 1e-9 {
			t.Fatalf("invert3(m)*m*v = %v, want %v", prod, want)
		}
	}
}

func TestPQRoundTrip(t *testing.T) {
	for _, v := range []float64{0.001, 0.1, 0.5, 0.9} {
		got := pqEOTF(pqOETF(v))
		if math.Abs(got-v) > 1e-6 {
			t.Errorf("pqEOTF(pqOETF(%v)) = %v", v, got)
		}
	}
}

func TestHLGRoundTrip(t *testing.T) {
	for _, v := range []float64{0.01, 0.05, 0.3, 0.8} {
		got := hlgEOTF(hlgOETF(v))
		if math.Abs(got-v) > 1e-6 {
			t.Errorf("hlgEOTF(hlgOETF(%v)) = %v", v, got)
		}
	}
}
