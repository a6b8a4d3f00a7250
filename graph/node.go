// Package graph implements the tiled, circular-buffer execution engine and
// the DAG of nodes it schedules (spec.md §4.4). A Graph is built by
// appending nodes (the builder package is the only intended caller),
// frozen with Complete, and then reused for any number of Process calls.
package graph

import (
	"fmt"
	"strings"

	"github.com/deepteams/zimg/filter"
	"github.com/deepteams/zimg/pixel"
)

// NodeID is a dense integer handle into a Graph's node table.
type NodeID int

const invalidNode NodeID = -1

// Kind distinguishes the three node shapes spec.md §3 defines.
type Kind int

const (
	KindSource Kind = iota
	KindFilter
	KindSink
)

// Edge is one filter input slot: it reads output plane Output of node
// Parent. ConsumerSlot indexes into Parent's consumerFloors, letting the
// engine track how far behind this particular consumer is for cache
// sizing (§4.4.2) without caring which other consumers exist.
type Edge struct {
	Parent       NodeID
	Output       int
	ConsumerSlot int
}

// Node is one entry in the graph's node table. Source and Sink nodes carry
// no Filt; Filter nodes wrap exactly one filter.Filter instance, which may
// be shared by several nodes (e.g. a depth converter applied identically
// to R, G, and B).
type Node struct {
	Kind Kind
	Filt filter.Filter

	// Inputs lists one Edge per input slot, in the order the filter
	// expects them (e.g. [color, alpha] for Premultiply; [Y,U,V] for a
	// colorspace matrix).
	Inputs []Edge

	// NumOutputs is 1 for ordinary filters and sources, 3 for a Color
	// filter that emits Y/U/V or R/G/B simultaneously, 0 for Sink.
	NumOutputs int

	// Width/Height/Type describe this node's own output
	// geometry (identical across all NumOutputs planes, per the Color
	// filter contract that all three share one attributes() value).
	Width, Height uint32
	Type          pixel.Type

	// consumerFloors tracks, per registered consumer edge, the lowest
	// row index that consumer still needs from this node going forward.
	// The values are used only by Complete()'s simulation pass, which
	// zeroes them before it starts; the slice length (the consumer count)
	// is also read by the inplace-merge pass.
	consumerFloors []uint32

	// cacheID is the node whose physical buffer this node's output
	// actually lives in. Usually itself; a single-input in_place filter
	// whose parent is a filter node with no other consumer has its
	// cacheID repointed to that parent's cache (the inplace-merge pass,
	// spec.md §4.4.2 step 1).
	cacheID NodeID

	// Plan, filled by Complete()'s simulation pass:
	cacheLines uint32 // rows of live buffer this node's cache holds
	cacheMask  uint32 // linebuffer.AllOnes or a power-of-two-minus-one
	// contextSize and refCountSink are not written by Complete; the
	// per-node context size is kept in arenaPlan.nodeContext instead.
	contextSize  int
	refCountSink int // number of Sink input slots referencing this node
}

func (n *Node) registerConsumer() int {
	n.consumerFloors = append(n.consumerFloors, 0)
	return len(n.consumerFloors) - 1
}

// Graph is a DAG of Nodes, built by append-only construction (the builder
// package), then frozen by Complete and reused across any number of
// Process calls.
type Graph struct {
	nodes     []*Node
	sourceIDs [4]NodeID // plane id -> source node, invalidNode if unused
	sinkID    NodeID

	completed bool
	tmpSize   int
	arenaPlan arenaPlan
}

// New creates an empty graph under construction.
func New() *Graph {
	g := &Graph{sinkID: invalidNode}
	for i := range g.sourceIDs {
		g.sourceIDs[i] = invalidNode
	}
	return g
}

func (g *Graph) addNode(n *Node) NodeID {
	n.cacheID = NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	return n.cacheID
}

// AddSource registers a node that exposes the caller-supplied source
// buffer for one plane. planeID is 0..3 (Y/G, U/B, V/R, A).
func (g *Graph) AddSource(planeID int, width, height uint32, typ pixel.Type) NodeID {
	id := g.addNode(&Node{Kind: KindSource, NumOutputs: 1, Width: width, Height: height, Type: typ})
	g.sourceIDs[planeID] = id
	return id
}

// AddFilter appends a filter node reading from the given producer
// (node,output) pairs, in the order f expects its inputs.
func (g *Graph) AddFilter(f filter.Filter, inputs []struct {
	Node   NodeID
	Output int
}) NodeID {
	attr := f.Attributes()
	numOut := 1
	if f.GetFlags().Color {
		numOut = 3
	}
	n := &Node{Kind: KindFilter, Filt: f, NumOutputs: numOut, Width: attr.Width, Height: attr.Height, Type: attr.Type}
	for _, in := range inputs {
		parent := g.nodes[in.Node]
		slot := parent.registerConsumer()
		n.Inputs = append(n.Inputs, Edge{Parent: in.Node, Output: in.Output, ConsumerSlot: slot})
	}
	return g.addNode(n)
}

// SetSink registers the output marker referencing one producer
// (node,output) per active plane. planeNodes[i] == invalidNode for
// inactive planes.
func (g *Graph) SetSink(planeNodes [4]NodeID, planeOutputs [4]int) {
	n := &Node{Kind: KindSink}
	for i, id := range planeNodes {
		if id == invalidNode {
			n.Inputs = append(n.Inputs, Edge{Parent: invalidNode, Output: -1})
			continue
		}
		parent := g.nodes[id]
		slot := parent.registerConsumer()
		n.Inputs = append(n.Inputs, Edge{Parent: id, Output: planeOutputs[i], ConsumerSlot: slot})
	}
	g.sinkID = g.addNode(n)
}

// physicalNode returns the physical-cache-resolved node for id: if id's cache was
// merged into a parent by the inplace pass, this follows that chain.
func (g *Graph) physicalNode(id NodeID) *Node {
	n := g.nodes[id]
	for n.cacheID != id {
		id = n.cacheID
		n = g.nodes[id]
	}
	return n
}

// IsPlanar reports whether every filter node's input mask equals its
// output mask, where both masks are built from output slot indices (bit k
// for output k), not from plane ids. Any Color filter, which reads output
// 0 of three nodes and produces three outputs, makes the graph non-planar.
// A single-output filter reading single-output parents of different planes
// (Premultiply's color and alpha inputs) still counts as planar, and no
// check is made that the sink planes' dependency chains are disjoint.
// Complete's simulation pass (engine.go) calls this to choose between
// driving each sink plane's dependency chain over its own Height (planar)
// or through one shared tallest-plane loop reindexed per plane
// (non-planar) — spec.md §4.4.2 step 3.
func (g *Graph) IsPlanar() bool {
	for _, n := range g.nodes {
		if n.Kind != KindFilter {
			continue
		}
		inMask := uint8(0)
		for _, e := range n.Inputs {
			inMask |= planeMaskOfOutput(g, e.Parent, e.Output)
		}
		outMask := outputPlaneMask(n)
		if inMask != outMask {
			return false
		}
	}
	return true
}

// FilterTypeNames returns the concrete Go type name of every filter node's
// Filt, in construction order, with the package qualifier and any pointer
// sigil stripped (e.g. "*refimpl.hresize" -> "hresize"). This exists for
// tests that assert the builder emitted the expected filter sequence
// (spec.md §8 boundary scenario 5) without reaching into unexported graph
// state.
func (g *Graph) FilterTypeNames() []string {
	names := make([]string, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n.Kind != KindFilter {
			continue
		}
		name := fmt.Sprintf("%T", n.Filt)
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		names = append(names, name)
	}
	return names
}

// outputPlaneMask is a conservative bitmask for a node's own output slots
// (bit k set for output index k); used only by IsPlanar.
func outputPlaneMask(n *Node) uint8 {
	mask := uint8(0)
	for i := 0; i < n.NumOutputs; i++ {
		mask |= 1 << uint(i)
	}
	return mask
}

// planeMaskOfOutput mirrors outputPlaneMask for an arbitrary (node,output)
// reference, used when computing a consumer's input mask.
func planeMaskOfOutput(g *Graph, id NodeID, output int) uint8 {
	if id == invalidNode || output < 0 {
		return 0
	}
	return 1 << uint(output)
}
