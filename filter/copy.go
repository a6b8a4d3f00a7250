package filter

import (
	"github.com/deepteams/zimg/linebuffer"
	"github.com/deepteams/zimg/pixel"
)

// Copy is a single-plane passthrough filter, grounded on the original
// graph's CopyFilter (graph/copy_filter.h / basic_filter2.h
// CopyFilter_GE): same_row and in_place, so the planner's inplace-merge
// pass can fold its output into its parent's cache when that parent is a
// filter node with no other consumer.
type Copy struct {
	Base
	attr Attributes
}

// NewCopy builds a Copy filter producing rows of the given width/height/type.
func NewCopy(width, height uint32, typ pixel.Type) *Copy {
	return &Copy{attr: Attributes{Width: width, Height: height, Type: typ}}
}

func (c *Copy) GetFlags() Flags { return Flags{SameRow: true, InPlace: true} }

func (c *Copy) Attributes() Attributes { return c.attr }

func (c *Copy) Process(ctx []byte, in []linebuffer.Buffer, out []linebuffer.Buffer, tmp []byte, row, left, right uint32) {
	src := in[0].RowRange(row, left, right)
	dst := out[0].RowRange(row, left, right)
	copy(dst, src)
}
