package linebuffer

import (
	"testing"

	"github.com/deepteams/zimg/pixel"
)

func TestGetSetSampleRoundTrip(t *testing.T) {
	tests := []struct {
		typ   pixel.Type
		value float64
		want  float64
	}{
		{pixel.U8, 200, 200},
		{pixel.U8, 300, 255}, // clamps
		{pixel.U16, 40000, 40000},
		{pixel.F32, 0.125, 0.125},
		{pixel.F16, 0.5, 0.5},
	}
	for _, tt := range tests {
		buf := New(make([]byte, 16*pixel.ByteSize(tt.typ)), 16*pixel.ByteSize(tt.typ), AllOnes, tt.typ)
		SetSample(buf, 0, 3, tt.value)
		got := GetSample(buf, 0, 3)
		if got != tt.want {
			t.Errorf("%v: got %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestCircularWraparound(t *testing.T) {
	const stride = 4
	buf := New(make([]byte, stride*4), stride, MaskFor(4), pixel.U8)
	SetSample(buf, 1, 0, 11)
	if got := GetSample(buf, 5, 0); got != 11 {
		t.Fatalf("row 5 should alias row 1, got %v", got)
	}
}

func TestNextPow2(t *testing.T) {
	cases := map[uint32]uint32{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 8: 8, 9: 16}
	for in, want := range cases {
		if got := NextPow2(in); got != want {
			t.Errorf("NextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}
