package zimg

import (
	"crypto/sha1"
	"testing"

	"github.com/deepteams/zimg/linebuffer"
)

// TestNoopSHA1Fingerprint covers spec.md §8 boundary scenario 1: building
// a graph from a state to itself produces a pure copy, and the SHA-1 of
// the output plane equals the SHA-1 of the input plane.
func TestNoopSHA1Fingerprint(t *testing.T) {
	s := ImageState{
		Width: 640, Height: 480,
		Type: U8, Depth: 8, FullRange: false,
		Color:      Grey,
		Colorspace: Colorspace{Matrix: MatrixUnspecified, Transfer: TransferLinear},
	}.WithDefaultActiveWindow()

	g, err := BuildGraph(s, s, BuildParams{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	stride := 640
	srcBytes := make([]byte, stride*480)
	for i := range srcBytes {
		srcBytes[i] = byte(i*37 + 11)
	}
	dstBytes := make([]byte, stride*480)

	src := PlaneBuffers{linebuffer.New(srcBytes, stride, linebuffer.AllOnes, U8)}
	dst := PlaneBuffers{linebuffer.New(dstBytes, stride, linebuffer.AllOnes, U8)}

	tmp := make([]byte, g.TmpSize())
	if err := g.Process(src, dst, tmp, nil, nil); err != nil {
		t.Fatal(err)
	}

	want := sha1.Sum(srcBytes)
	got := sha1.Sum(dstBytes)
	if want != got {
		t.Fatalf("SHA-1 mismatch: got %x, want %x", got, want)
	}
}

// TestBuildGraphNilFactoryUsesDefault covers the façade's default-factory
// fallback path, distinct from builder's own nil-factory rejection test.
func TestBuildGraphNilFactoryUsesDefault(t *testing.T) {
	s := ImageState{
		Width: 4, Height: 4,
		Type: F32, Depth: 32, FullRange: true,
		Color:      RGB,
		Colorspace: Colorspace{Matrix: MatrixRGB, Transfer: TransferLinear},
	}.WithDefaultActiveWindow()

	if _, err := BuildGraph(s, s, BuildParams{}, nil); err != nil {
		t.Fatalf("expected nil factory to default successfully, got %v", err)
	}
}
