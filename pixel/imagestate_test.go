package pixel

import (
	"errors"
	"testing"

	"github.com/deepteams/zimg/zerror"
)

func baseState() ImageState {
	return ImageState{
		Width: 64, Height: 64,
		Type: U8, Depth: 8, FullRange: true,
		Color:      YUV,
		Colorspace: Colorspace{Matrix: MatrixREC709},
	}.WithDefaultActiveWindow()
}

func TestValidateOK(t *testing.T) {
	s := baseState()
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateKinds(t *testing.T) {
	tests := []struct {
		name string
		mod  func(s ImageState) ImageState
		kind zerror.Kind
	}{
		{"zero width", func(s ImageState) ImageState { s.Width = 0; return s }, zerror.InvalidImageSize},
		{"grey subsampled", func(s ImageState) ImageState {
			s.Color = Grey
			s.SubsampleW = 1
			return s
		}, zerror.GreyscaleSubsampling},
		{"rgb subsampled", func(s ImageState) ImageState {
			s.Color = RGB
			s.Colorspace.Matrix = MatrixUnspecified
			s.SubsampleW = 1
			return s
		}, zerror.UnsupportedSubsampling},
		{"yuv rgb matrix", func(s ImageState) ImageState {
			s.Colorspace.Matrix = MatrixRGB
			return s
		}, zerror.ColorFamilyMismatch},
		{"not divisible", func(s ImageState) ImageState {
			s.Width = 63
			s.SubsampleW = 1
			return s
		}, zerror.ImageNotDivisible},
		{"depth overflow", func(s ImageState) ImageState { s.Depth = 9; return s }, zerror.BitDepthOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mod(baseState()).Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var zerr *zerror.Error
			if !errors.As(err, &zerr) {
				t.Fatalf("expected *zerror.Error, got %T", err)
			}
			if zerr.Kind != tt.kind {
				t.Fatalf("got kind %s, want %s", zerr.Kind, tt.kind)
			}
		})
	}
}

func TestPlaneDims(t *testing.T) {
	s := baseState()
	s.SubsampleW, s.SubsampleH = 1, 1
	if w, h := s.PlaneDims(0); w != 64 || h != 64 {
		t.Fatalf("luma dims = %d,%d", w, h)
	}
	if w, h := s.PlaneDims(1); w != 32 || h != 32 {
		t.Fatalf("chroma dims = %d,%d", w, h)
	}

	rgb := s
	rgb.Color = RGB
	rgb.SubsampleW, rgb.SubsampleH = 0, 0
	if w, h := rgb.PlaneDims(1); w != 64 || h != 64 {
		t.Fatalf("rgb plane 1 dims = %d,%d", w, h)
	}
}

func TestEquivalentForGrey(t *testing.T) {
	a := Colorspace{Matrix: MatrixREC709}
	b := Colorspace{Matrix: MatrixREC601}
	if a.EquivalentForGrey(b, RGB) {
		t.Fatal("RGB source should require exact matrix match")
	}
	if !a.EquivalentForGrey(b, YUV) {
		t.Fatal("non-RGB source should ignore matrix for grey equivalence")
	}
}
