package graph

import (
	"github.com/deepteams/zimg/filter"
	"github.com/deepteams/zimg/linebuffer"
	"github.com/deepteams/zimg/pixel"
	"github.com/deepteams/zimg/zerror"
)

// PlaneBuffers holds up to four LineBuffer views (Y/U/V/A or R/G/B/A).
// An unused slot has a nil Bytes field.
type PlaneBuffers [4]linebuffer.Buffer

// Callback is the caller-supplied row-availability hook: unpack_cb is
// invoked immediately before a source row is first read, pack_cb
// immediately after a sink row's writes are complete. Returning a non-nil
// error aborts the Process call with that error (wrapped as
// UserCallbackFailed if it is not already a *zerror.Error).
type Callback func(row, left, right uint32) error

// TmpSize returns the byte size Process requires for its tmp argument.
func (g *Graph) TmpSize() int { return g.tmpSize }

// InputBuffering returns the maximum number of simultaneous source rows
// the graph may hold live, informing callers how large an unpack_cb-backed
// circular source buffer must be.
func (g *Graph) InputBuffering() uint32 {
	max := uint32(0)
	for _, id := range g.sourceIDs {
		if id == invalidNode {
			continue
		}
		if c := g.nodes[id].cacheLines; c > max {
			max = c
		}
	}
	return max
}

// OutputBuffering returns the maximum number of simultaneous sink rows the
// graph may hold live (spec.md §8 invariant 2: never less than the
// feeding filter's max_buffering()).
func (g *Graph) OutputBuffering() uint32 {
	sink := g.nodes[g.sinkID]
	max := uint32(0)
	for _, e := range sink.Inputs {
		if e.Parent == invalidNode {
			continue
		}
		n := g.nodes[e.Parent]
		if n.cacheLines > max {
			max = n.cacheLines
		}
		if n.Filt == nil {
			continue
		}
		if mb := n.Filt.MaxBuffering(); mb != filter.BufferMax && mb > max {
			max = mb
		}
	}
	return max
}

// hasEntireRowFilter reports whether any filter node requires whole-row
// processing, forcing a single full-width tile (spec.md §4.4.4).
func (g *Graph) hasEntireRowFilter() bool {
	for _, n := range g.nodes {
		if n.Filt == nil {
			continue
		}
		f := n.Filt.GetFlags()
		if f.EntireRow || f.EntirePlane {
			return true
		}
	}
	return false
}

// tileColumns computes the horizontal tile boundaries for an output of
// the given width, per the cost model in spec.md §4.4.4.
func (g *Graph) tileColumns(outWidth, inWidth uint32) []uint32 {
	if outWidth == 0 {
		return []uint32{0}
	}
	if g.hasEntireRowFilter() {
		return []uint32{0, outWidth}
	}

	step := tileBase
	if inWidth > 0 {
		step = int(float64(tileBase) * float64(outWidth) / float64(inWidth))
	}
	step = alignUp(step, tileAlign)
	if step < tileAlign {
		step = tileAlign
	}
	if step > int(outWidth) {
		step = int(outWidth)
	}

	var bounds []uint32
	j := uint32(0)
	for j < outWidth {
		next := j + uint32(step)
		if next > outWidth {
			next = outWidth
		}
		if outWidth-next < tileMin && next != outWidth {
			next = outWidth
		}
		bounds = append(bounds, j)
		j = next
	}
	bounds = append(bounds, outWidth)
	return bounds
}

type nodeRuntime struct {
	cursor uint32
	ctx    []byte
	out    []linebuffer.Buffer // len == NumOutputs for self-owning filter nodes, else nil
}

// Process runs one full conversion: it partitions tmp into per-node
// context and cache storage, then repeatedly demands rows from the sink,
// tile by tile, invoking unpack/pack callbacks as rows become available.
// A nil callback means "the corresponding buffer already holds the whole
// plane" (mask == linebuffer.AllOnes is required in that case).
func (g *Graph) Process(src, dst PlaneBuffers, tmp []byte, unpack, pack Callback) error {
	if !g.completed {
		if err := g.Complete(); err != nil {
			return err
		}
	}

	ar := newArena(tmp)
	rt := make([]nodeRuntime, len(g.nodes))

	for id, n := range g.nodes {
		if n.Kind != KindFilter {
			continue
		}
		ctxSize := g.arenaPlan.nodeContext[id]
		if ctxSize > 0 {
			buf, err := ar.alloc(alignUp(ctxSize, defaultAlignment))
			if err != nil {
				return err
			}
			rt[id].ctx = buf[:ctxSize]
		}
		if n.cacheID == NodeID(id) {
			rows := n.cacheLines
			if n.cacheMask == linebuffer.AllOnes {
				rows = n.Height
			}
			stride := alignUp(int(n.Width)*pixel.ByteSize(n.Type), defaultAlignment)
			cacheBytes, err := ar.alloc(alignUp(n.NumOutputs*int(rows)*stride, defaultAlignment))
			if err != nil {
				return err
			}
			rt[id].out = make([]linebuffer.Buffer, n.NumOutputs)
			for o := 0; o < n.NumOutputs; o++ {
				planeBytes := cacheBytes[o*int(rows)*stride : (o+1)*int(rows)*stride]
				rt[id].out[o] = linebuffer.New(planeBytes, stride, n.cacheMask, n.Type)
			}
		}
	}

	var scratch []byte
	if g.arenaPlan.scratch > 0 {
		b, err := ar.alloc(alignUp(g.arenaPlan.scratch, defaultAlignment))
		if err != nil {
			return err
		}
		scratch = b
	}

	sink := g.nodes[g.sinkID]
	height := sinkHeight(g, sink)
	widestOut := uint32(0)
	for _, e := range sink.Inputs {
		if e.Parent != invalidNode {
			if w := g.nodes[e.Parent].Width; w > widestOut {
				widestOut = w
			}
		}
	}
	tiles := g.tileColumns(widestOut, widestOut)

	bufferOf := func(id NodeID, output int) linebuffer.Buffer {
		if id == invalidNode {
			return linebuffer.Buffer{}
		}
		n := g.nodes[id]
		if n.Kind == KindSource {
			return src[sourcePlaneIndex(g, id)]
		}
		phys := g.physicalNode(id)
		return rt[phys.cacheID].out[output]
	}

	var procErr error
	var demand func(id NodeID, row, left, right uint32)
	demand = func(id NodeID, row, left, right uint32) {
		if procErr != nil {
			return
		}
		n := g.nodes[id]
		r := &rt[id]
		if n.Kind == KindSource {
			for r.cursor <= row {
				if unpack != nil {
					if err := unpack(r.cursor, left, right); err != nil {
						procErr = wrapCallbackErr(err)
						return
					}
				}
				r.cursor++
			}
			return
		}
		// Cursor and context are always tracked per node id: an in_place
		// merge only redirects where this node's OUTPUT bytes live (its
		// parent's cache), not when it runs or what state it keeps.
		for r.cursor <= row {
			_, last := rowDeps(n, r.cursor)
			// Remap [left,right) through this node's own ColDeps before
			// asking its parents for columns: a node whose own Width
			// differs from its consumer's (a resize filter, or simply a
			// chroma-subsampled plane feeding a luma-width tile range)
			// must request its own, correctly-scaled input column range
			// rather than forwarding the consumer's range unchanged
			// (spec.md §4.4.4; mirrors original_source's per-node
			// node_state{left,right} in graph/graphnode.h).
			depsLeft, depsRight := left, right
			if n.Filt != nil {
				depsLeft, depsRight = n.Filt.ColDeps(left, right)
			}
			ins := make([]linebuffer.Buffer, len(n.Inputs))
			for k, e := range n.Inputs {
				demand(e.Parent, last-1, depsLeft, depsRight)
				if procErr != nil {
					return
				}
				ins[k] = bufferOf(e.Parent, e.Output)
			}
			phys := g.physicalNode(id)
			outs := rt[phys.cacheID].out
			n.Filt.Process(r.ctx, ins, outs, scratch, r.cursor, left, right)
			r.cursor = advance(n, r.cursor)
		}
	}

	for ti := 0; ti+1 < len(tiles); ti++ {
		left, right := tiles[ti], tiles[ti+1]

		for id, n := range g.nodes {
			if n.Kind != KindFilter {
				continue
			}
			rt[id].cursor = 0
			if n.Filt.ContextSize() > 0 {
				n.Filt.InitContext(rt[id].ctx)
			}
		}
		for id, n := range g.nodes {
			if n.Kind == KindSource {
				rt[id].cursor = 0
			}
		}

		for r := uint32(0); r < height; r++ {
			for i, e := range sink.Inputs {
				if e.Parent == invalidNode {
					continue
				}
				row := sinkRowForPlane(g, i, r)
				// A sink plane narrower than widestOut (chroma under
				// subsampling) must be demanded and copied over its own
				// column range, not the widest plane's — otherwise
				// RowRange slices past a buffer sized for this plane's
				// own stride (spec.md §3 subsample_w/h; §8 scenario 2).
				planeLeft, planeRight := sinkColsForPlane(g, i, left, right, widestOut)
				demand(e.Parent, row, planeLeft, planeRight)
				if procErr != nil {
					return procErr
				}
				buf := bufferOf(e.Parent, e.Output)
				copyRow(dst[i], buf, row, planeLeft, planeRight)
			}
			if pack != nil {
				if err := pack(r, left, right); err != nil {
					return wrapCallbackErr(err)
				}
			}
		}
	}

	return nil
}

func wrapCallbackErr(err error) error {
	if _, ok := err.(*zerror.Error); ok {
		return err
	}
	return zerror.New(zerror.UserCallbackFailed, "%v", err)
}

func copyRow(dst, src linebuffer.Buffer, row, left, right uint32) {
	if dst.Bytes == nil {
		return
	}
	copy(dst.RowRange(row, left, right), src.RowRange(row, left, right))
}

// sinkColsForPlane maps a tile's [left,right) column range, computed
// against the widest sink plane, down to plane i's own column range, by
// the ratio of plane i's Width to the widest plane's — the column
// analogue of sinkRowForPlane. Needed because chroma planes under
// subsampling have a narrower Width than luma, so the shared tile bounds
// must be rescaled before they index that plane's own buffer.
func sinkColsForPlane(g *Graph, planeSlot int, left, right, widest uint32) (uint32, uint32) {
	n := g.nodes[g.nodes[g.sinkID].Inputs[planeSlot].Parent]
	if n.Width == widest || widest == 0 {
		return left, right
	}
	l := uint32(uint64(left) * uint64(n.Width) / uint64(widest))
	r := uint32(uint64(right) * uint64(n.Width) / uint64(widest))
	if r <= l {
		r = l + 1
	}
	if r > n.Width {
		r = n.Width
	}
	return l, r
}

func sourcePlaneIndex(g *Graph, id NodeID) int {
	for i, sid := range g.sourceIDs {
		if sid == id {
			return i
		}
	}
	return -1
}
