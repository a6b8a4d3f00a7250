package graph

import (
	"github.com/deepteams/zimg/filter"
	"github.com/deepteams/zimg/linebuffer"
	"github.com/deepteams/zimg/pixel"
	"github.com/deepteams/zimg/zerror"
)

// Tiling constants from spec.md §4.4.4.
const (
	tileBase  = 512
	tileAlign = 32
	tileMin   = 64
)

// Complete freezes the graph: it first validates every filter's flag
// consistency, then runs the inplace-merge pass and the demand-driven
// simulation pass that sizes every node's circular cache (spec.md §4.3,
// §4.4.2). A completed Graph may be Process()ed any number of times, and
// concurrently, since Process allocates all of its mutable state fresh
// from the caller-supplied temporary buffer.
func (g *Graph) Complete() error {
	if g.completed {
		return nil
	}
	if g.sinkID == invalidNode {
		return zerror.New(zerror.InternalError, "graph has no sink")
	}

	for _, n := range g.nodes {
		if n.Kind != KindFilter {
			continue
		}
		if err := filter.CheckConsistency(n.Filt); err != nil {
			return zerror.New(zerror.InternalError, "%v", err)
		}
	}

	g.mergeInplace()
	g.simulate()

	plan := arenaPlan{
		nodeContext:   make([]int, len(g.nodes)),
		nodeCacheRows: make([]int, len(g.nodes)),
	}
	for id, n := range g.nodes {
		if n.Kind != KindFilter {
			continue
		}
		plan.nodeContext[id] = n.Filt.ContextSize()
		if n.cacheID == NodeID(id) {
			stride := alignUp(int(n.Width)*pixel.ByteSize(n.Type), defaultAlignment)
			rows := n.cacheLines
			if n.cacheMask == linebuffer.AllOnes {
				rows = n.Height
			}
			plan.nodeCacheRows[id] = n.NumOutputs * int(rows) * stride
		}
		if tmp := n.Filt.TmpSize(0, n.Width); tmp > plan.scratch {
			plan.scratch = tmp
		}
	}
	g.arenaPlan = plan

	total := alignUp(plan.scratch, defaultAlignment)
	for _, c := range plan.nodeContext {
		total += alignUp(c, defaultAlignment)
	}
	for _, c := range plan.nodeCacheRows {
		total += alignUp(c, defaultAlignment)
	}
	g.tmpSize = total

	g.completed = true
	return nil
}

// mergeInplace collapses an in_place, single-input filter node's cache into
// its parent's, provided the parent has no consumer other than this node
// and is itself a cache
// owner (a Filter node, not a Source — sources are externally supplied
// buffers, not arena caches, so there is nothing to merge into).
func (g *Graph) mergeInplace() {
	for _, n := range g.nodes {
		if n.Kind != KindFilter {
			continue
		}
		if !n.Filt.GetFlags().InPlace {
			continue
		}
		if len(n.Inputs) != 1 {
			continue
		}
		parent := g.nodes[n.Inputs[0].Parent]
		if parent.Kind != KindFilter {
			continue
		}
		if len(parent.consumerFloors) != 1 {
			continue // parent has more than one consumer; cannot safely alias
		}
		n.cacheID = parent.cacheID
	}
}

// simulate walks the full output height through the sink exactly as
// Process's execution loop will, but without invoking any filter's
// Process: it tracks, for every node, the high-water mark of
// (producedRows - earliestRowAnyConsumerStillNeeds), which is the number
// of live rows that node's cache must hold (spec.md §4.4.2 step 2).
//
// When IsPlanar reports true (spec.md §4.4.2 step 3), each sink plane's
// dependency chain is driven straight through its own Height, one plane
// after another, rather than through a shared tallest-plane loop reindexed
// per plane by sinkRowForPlane. IsPlanar does not check that the chains
// are disjoint: a node that feeds more than one sink plane's chain is
// sized while the other chains' consumer floors have not advanced, which
// can give it a larger cache than the shared loop would.
func (g *Graph) simulate() {
	for _, n := range g.nodes {
		n.cacheLines = 0
		for i := range n.consumerFloors {
			n.consumerFloors[i] = 0
		}
	}

	sink := g.nodes[g.sinkID]
	cursors := make([]uint32, len(g.nodes))

	var demand func(id NodeID, row uint32)
	demand = func(id NodeID, row uint32) {
		n := g.nodes[id]
		if n.Kind == KindSource {
			if cursors[id] <= row {
				cursors[id] = row + 1
				recordCache(n, cursors[id])
			}
			return
		}
		for cursors[id] <= row {
			first, last := rowDeps(n, cursors[id])
			for _, e := range n.Inputs {
				if e.Parent == invalidNode {
					continue
				}
				parent := g.nodes[e.Parent]
				parent.consumerFloors[e.ConsumerSlot] = first
				demand(e.Parent, last-1)
			}
			cursors[id] = advance(n, cursors[id])
			recordCache(n, cursors[id])
		}
	}

	if g.IsPlanar() {
		for _, e := range sink.Inputs {
			if e.Parent == invalidNode {
				continue
			}
			height := g.nodes[e.Parent].Height
			for r := uint32(0); r < height; r++ {
				demand(e.Parent, r)
			}
		}
		return
	}

	height := sinkHeight(g, sink)
	for r := uint32(0); r < height; r++ {
		for i, e := range sink.Inputs {
			if e.Parent == invalidNode {
				continue
			}
			row := sinkRowForPlane(g, i, r)
			demand(e.Parent, row)
		}
	}
}

// recordCache updates n's high-water cache requirement given its cursor
// has just advanced to producedUpTo, using the minimum outstanding
// consumer floor at this instant.
func recordCache(n *Node, producedUpTo uint32) {
	if n.Filt != nil && n.Filt.GetFlags().EntirePlane {
		n.cacheMask = linebuffer.AllOnes
		n.cacheLines = n.Height
		return
	}
	floor := producedUpTo
	for _, f := range n.consumerFloors {
		if f < floor {
			floor = f
		}
	}
	if len(n.consumerFloors) == 0 {
		floor = 0
		if producedUpTo > 0 {
			floor = producedUpTo - 1
		}
	}
	need := producedUpTo - floor
	if need > n.cacheLines {
		n.cacheLines = need
	}
	if n.cacheLines >= n.Height {
		n.cacheMask = linebuffer.AllOnes
	} else {
		n.cacheMask = linebuffer.MaskFor(n.cacheLines)
	}
}

// rowDeps returns the input row range a node needs to produce the group
// starting at its own row `cursor`, treating entire_plane filters as
// needing the whole plane in one call and sources as trivial identity
// producers.
func rowDeps(n *Node, cursor uint32) (uint32, uint32) {
	if n.Filt == nil {
		return cursor, cursor + 1
	}
	if n.Filt.GetFlags().EntirePlane {
		return 0, n.Height
	}
	return n.Filt.RowDeps(cursor)
}

func advance(n *Node, cursor uint32) uint32 {
	if n.Filt == nil {
		return cursor + 1
	}
	step := n.Filt.Step()
	if step == filter.BufferMax {
		return n.Height
	}
	return cursor + step
}

// sinkHeight returns the tallest plane height among the sink's active
// inputs, used as the outer loop bound: luma drives the loop and chroma
// is sampled at its own subsampled rate within it.
func sinkHeight(g *Graph, sink *Node) uint32 {
	h := uint32(0)
	for _, e := range sink.Inputs {
		if e.Parent == invalidNode {
			continue
		}
		if ph := g.nodes[e.Parent].Height; ph > h {
			h = ph
		}
	}
	return h
}

// sinkRowForPlane maps the outer (tallest-plane) loop index r down to
// plane i's own row index, by the ratio of plane i's height to the
// tallest plane's height. This lets a single outer loop drive luma, a
// subsampled chroma pair, and full-resolution alpha together.
func sinkRowForPlane(g *Graph, planeSlot int, r uint32) uint32 {
	n := g.nodes[g.nodes[g.sinkID].Inputs[planeSlot].Parent]
	tallest := sinkHeight(g, g.nodes[g.sinkID])
	if n.Height == tallest || tallest == 0 {
		return r
	}
	return uint32(uint64(r) * uint64(n.Height) / uint64(tallest))
}
