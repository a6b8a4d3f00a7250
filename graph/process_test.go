package graph

import (
	"testing"

	"github.com/deepteams/zimg/filter"
	"github.com/deepteams/zimg/linebuffer"
	"github.com/deepteams/zimg/pixel"
)

func testBuf(w, h uint32, typ pixel.Type) linebuffer.Buffer {
	sz := pixel.ByteSize(typ)
	stride := int(w) * sz
	return linebuffer.New(make([]byte, stride*int(h)), stride, linebuffer.AllOnes, typ)
}

// TestProcessSubsampledNoop covers spec.md §8 boundary scenario 2: a
// 640x480 YUV 4:2:0-shaped graph (chroma planes half luma's width and
// height, well past the 512px tile threshold) with nothing but a
// per-plane copy filter must reproduce every plane byte-exact. Before the
// per-node column-range fix, the chroma copy's column range was borrowed
// from luma's wider tile bounds and sliced past the chroma buffer's own
// stride.
func TestProcessSubsampledNoop(t *testing.T) {
	g := New()
	ySrc := g.AddSource(0, 640, 480, pixel.U8)
	uSrc := g.AddSource(1, 320, 240, pixel.U8)
	vSrc := g.AddSource(2, 320, 240, pixel.U8)

	type in = struct {
		Node   NodeID
		Output int
	}
	yFilt := g.AddFilter(filter.NewCopy(640, 480, pixel.U8), []in{{Node: ySrc, Output: 0}})
	uFilt := g.AddFilter(filter.NewCopy(320, 240, pixel.U8), []in{{Node: uSrc, Output: 0}})
	vFilt := g.AddFilter(filter.NewCopy(320, 240, pixel.U8), []in{{Node: vSrc, Output: 0}})

	g.SetSink([4]NodeID{yFilt, uFilt, vFilt, invalidNode}, [4]int{0, 0, 0, -1})
	if err := g.Complete(); err != nil {
		t.Fatal(err)
	}

	src := PlaneBuffers{testBuf(640, 480, pixel.U8), testBuf(320, 240, pixel.U8), testBuf(320, 240, pixel.U8)}
	dst := PlaneBuffers{testBuf(640, 480, pixel.U8), testBuf(320, 240, pixel.U8), testBuf(320, 240, pixel.U8)}
	for y := uint32(0); y < 480; y++ {
		row := src[0].Row(y)
		for x := range row {
			row[x] = byte((x + int(y)) & 0xff)
		}
	}
	for y := uint32(0); y < 240; y++ {
		uRow, vRow := src[1].Row(y), src[2].Row(y)
		for x := range uRow {
			uRow[x] = byte(x & 0xff)
			vRow[x] = byte((x + int(y) + 7) & 0xff)
		}
	}

	tmp := make([]byte, g.TmpSize())
	if err := g.Process(src, dst, tmp, nil, nil); err != nil {
		t.Fatal(err)
	}

	for y := uint32(0); y < 480; y++ {
		if string(dst[0].Row(y)) != string(src[0].Row(y)) {
			t.Fatalf("luma row %d mismatch", y)
		}
	}
	for y := uint32(0); y < 240; y++ {
		if string(dst[1].Row(y)) != string(src[1].Row(y)) {
			t.Fatalf("U row %d mismatch", y)
		}
		if string(dst[2].Row(y)) != string(src[2].Row(y)) {
			t.Fatalf("V row %d mismatch", y)
		}
	}
}

// TestProcessCallbackCancellation covers spec.md §8 boundary scenario 6:
// an unpack callback erroring on the first row aborts Process with
// UserCallbackFailed, and no destination row is ever copied.
func TestProcessCallbackCancellation(t *testing.T) {
	g := New()
	src := g.AddSource(0, 8, 4, pixel.U8)
	filt := g.AddFilter(filter.NewCopy(8, 4, pixel.U8), []struct {
		Node   NodeID
		Output int
	}{{Node: src, Output: 0}})
	g.SetSink([4]NodeID{filt, invalidNode, invalidNode, invalidNode}, [4]int{0, -1, -1, -1})
	if err := g.Complete(); err != nil {
		t.Fatal(err)
	}

	srcBuf := PlaneBuffers{testBuf(8, 4, pixel.U8), {}, {}, {}}
	dstBuf := PlaneBuffers{testBuf(8, 4, pixel.U8), {}, {}, {}}
	for i := range dstBuf[0].Bytes {
		dstBuf[0].Bytes[i] = 0xAA
	}

	tmp := make([]byte, g.TmpSize())
	unpack := func(row, left, right uint32) error {
		return errCancel
	}
	err := g.Process(srcBuf, dstBuf, tmp, unpack, nil)
	if err == nil {
		t.Fatal("expected an error from the cancelled callback")
	}
	for _, b := range dstBuf[0].Bytes {
		if b != 0xAA {
			t.Fatal("destination was written to despite cancellation on row 0")
		}
	}
}

type cancelErr struct{}

func (cancelErr) Error() string { return "cancelled" }

var errCancel = cancelErr{}
