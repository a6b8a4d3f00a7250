// Package filter defines the abstract per-plane streaming contract every
// graph node filter satisfies (spec.md §4.3), plus the small set of filters
// that are first-class parts of the core rather than products of an
// external kernel factory: copy, constant value-init, and premultiply /
// unpremultiply. Grey-to-color channel extension has no filter of its own;
// the builder aliases plane ids or uses value-init instead.
package filter

import (
	"github.com/deepteams/zimg/linebuffer"
	"github.com/deepteams/zimg/pixel"
)

// BufferMax denotes "the entire plane" wherever a buffering/step count is
// returned: max_buffering(), step(), and therefore the cache mask the
// graph engine assigns, all fall back to the whole-plane case.
const BufferMax = ^uint32(0)

// Flags describes capability bits the graph engine and builder use to
// decide caching, in-place merging, and tiling strategy.
type Flags struct {
	// HasState: filter retains per-frame state and must be invoked on
	// strictly ascending row indices, stride == Step().
	HasState bool
	// SameRow: output row i depends only on input row i.
	SameRow bool
	// InPlace: output may alias the input buffer.
	InPlace bool
	// EntireRow: filter requires the full image width per call.
	EntireRow bool
	// EntirePlane: filter requires all rows in one batch (e.g. error
	// diffusion dither).
	EntirePlane bool
	// Color: one invocation reads/writes three planes simultaneously.
	Color bool
}

// Attributes is the size/type of one output row (shared across all three
// planes for a Color filter).
type Attributes struct {
	Width, Height uint32
	Type          pixel.Type
}

// Filter is the abstract per-plane (or, when Color is set, per-triple)
// streaming transform. The graph engine and builder only ever see this
// interface — never a concrete filter's internals.
type Filter interface {
	// GetFlags returns the capability flags.
	GetFlags() Flags
	// Attributes returns the output row format.
	Attributes() Attributes
	// RowDeps returns the half-open input row range [first,last) read to
	// produce the simultaneous-line group starting at output row i.
	RowDeps(i uint32) (first, last uint32)
	// ColDeps returns the half-open input column range read to produce
	// output columns [left,right).
	ColDeps(left, right uint32) (first, last uint32)
	// Step returns how many output rows one Process call emits.
	Step() uint32
	// MaxBuffering returns max_i (RowDeps(i).last - RowDeps(i).first),
	// or BufferMax for "entire plane".
	MaxBuffering() uint32
	// ContextSize returns the size in bytes of this filter's per-frame
	// context allocation.
	ContextSize() int
	// TmpSize returns the size in bytes of the scratch region needed to
	// process columns [left,right).
	TmpSize(left, right uint32) int
	// InitContext zero-initializes or seeds the per-frame context.
	InitContext(ctx []byte)
	// Process computes Step() rows of output starting at row i, over
	// columns [left,right), reading only RowDeps(i) rows and ColDeps
	// columns from in, writing to out.
	Process(ctx []byte, in []linebuffer.Buffer, out []linebuffer.Buffer, tmp []byte, row, left, right uint32)
}
