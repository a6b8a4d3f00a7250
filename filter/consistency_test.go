package filter

import (
	"testing"

	"github.com/deepteams/zimg/linebuffer"
)

type fakeFilter struct {
	Base
	flags Flags
	mb    uint32
	step  uint32
}

func (f fakeFilter) GetFlags() Flags        { return f.flags }
func (f fakeFilter) Attributes() Attributes { return Attributes{} }
func (f fakeFilter) MaxBuffering() uint32 {
	if f.mb != 0 {
		return f.mb
	}
	return f.Base.MaxBuffering()
}
func (f fakeFilter) Step() uint32 {
	if f.step != 0 {
		return f.step
	}
	return f.Base.Step()
}
func (f fakeFilter) Process(ctx []byte, in, out []linebuffer.Buffer, tmp []byte, row, left, right uint32) {
}

func TestCheckConsistencyRejectsInPlaceWithoutSameRow(t *testing.T) {
	f := fakeFilter{flags: Flags{InPlace: true}}
	if err := CheckConsistency(f); err == nil {
		t.Fatal("expected error: in_place without same_row")
	}
}

func TestCheckConsistencyRejectsEntirePlaneWithoutEntireRow(t *testing.T) {
	f := fakeFilter{flags: Flags{EntirePlane: true}, mb: BufferMax, step: BufferMax}
	if err := CheckConsistency(f); err == nil {
		t.Fatal("expected error: entire_plane without entire_row")
	}
}

func TestCheckConsistencyRequiresBufferMaxForEntirePlane(t *testing.T) {
	f := fakeFilter{flags: Flags{EntirePlane: true, EntireRow: true}}
	if err := CheckConsistency(f); err == nil {
		t.Fatal("expected error: entire_plane requires BufferMax buffering/step")
	}
}

func TestCheckConsistencyAcceptsValidFlags(t *testing.T) {
	f := fakeFilter{flags: Flags{SameRow: true, InPlace: true}}
	if err := CheckConsistency(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
