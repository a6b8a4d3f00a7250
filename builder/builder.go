// Package builder implements the graph planner: given a source and target
// ImageState, it synthesizes the minimum sequence of per-plane filter
// nodes that converts one into the other, attaching them to a graph.Graph
// in the fixed pass order spec.md §4.5.1 specifies (grounded on
// original_source/src/zimg/graph/graphbuilder2.cpp, re-expressed as a
// residual-driven sequence of idempotent Go methods rather than the
// original's single monolithic member function).
package builder

import (
	"math"

	"github.com/deepteams/zimg/filter"
	"github.com/deepteams/zimg/graph"
	"github.com/deepteams/zimg/kernel"
	"github.com/deepteams/zimg/pixel"
	"github.com/deepteams/zimg/zerror"
)

// noNode mirrors graph's own "no producer" sentinel (-1); graph.NodeID's
// underlying type is a plain int, so the value is reproducible here
// without graph exporting it.
const noNode = graph.NodeID(-1)

type planeRef struct {
	node   graph.NodeID
	output int
}

func (p planeRef) valid() bool { return p.node != noNode }

// filterInput is the anonymous struct shape graph.AddFilter expects;
// declared once here so call sites read as ordinary values.
type filterInput = struct {
	Node   graph.NodeID
	Output int
}

func in(p planeRef) filterInput { return filterInput{Node: p.node, Output: p.output} }

// builder carries the planner's mutable walk state: the graph under
// construction, the kernel factory passes consult for concrete filters,
// the current vs. target ImageState, and which node currently produces
// each of the four plane ids.
type builder struct {
	g       *graph.Graph
	factory kernel.KernelFactory
	params  Params

	current pixel.ImageState
	target  pixel.ImageState

	plane [4]planeRef
	err   error
}

// Build synthesizes a graph converting source into target under params,
// using factory for every concrete resize/colorspace/depth filter. Source
// and target are validated first (spec.md §3); factory must not be nil —
// the root façade package supplies refimpl's DefaultFactory when the
// caller doesn't provide one, keeping this package's own dependency graph
// free of any concrete kernel implementation.
func Build(source, target pixel.ImageState, params Params, factory kernel.KernelFactory) (*graph.Graph, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, zerror.New(zerror.InternalError, "build_graph requires a non-nil KernelFactory")
	}

	b := &builder{
		g:       graph.New(),
		factory: factory,
		params:  params.Normalize(),
		current: source.WithDefaultActiveWindow(),
		target:  target.WithDefaultActiveWindow(),
	}
	for i := range b.plane {
		b.plane[i] = planeRef{node: noNode}
	}
	b.addSources()

	b.passAlphaUnstraighten()
	b.passColorspace()
	b.passChromaDiscard()
	b.passResize()
	b.passDepth()
	b.passAddFakeChroma()
	b.passAlphaRestraighten()
	b.passAddOpaqueAlpha()

	if b.current.Alpha != pixel.AlphaNone && b.target.Alpha == pixel.AlphaNone {
		b.plane[3] = planeRef{node: noNode}
		b.current.Alpha = pixel.AlphaNone
	}

	if b.err != nil {
		return nil, b.err
	}

	var planeNodes [4]graph.NodeID
	var planeOutputs [4]int
	for i, p := range b.plane {
		if p.valid() {
			planeNodes[i] = p.node
			planeOutputs[i] = p.output
		} else {
			planeNodes[i] = noNode
			planeOutputs[i] = -1
		}
	}
	b.g.SetSink(planeNodes, planeOutputs)
	if err := b.g.Complete(); err != nil {
		return nil, err
	}
	return b.g, nil
}

func (b *builder) addSources() {
	s := b.current
	w, h := s.PlaneDims(0)
	b.plane[0] = planeRef{node: b.g.AddSource(0, w, h, s.Type)}
	if s.Color != pixel.Grey {
		cw, ch := s.PlaneDims(1)
		b.plane[1] = planeRef{node: b.g.AddSource(1, cw, ch, s.Type)}
		b.plane[2] = planeRef{node: b.g.AddSource(2, cw, ch, s.Type)}
	}
	if s.HasAlpha() {
		b.plane[3] = planeRef{node: b.g.AddSource(3, w, h, s.Type)}
	}
}

func (b *builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// activeColorPlanes returns the color plane ids currently populated (0 alone
// for Grey, 0/1/2 otherwise).
func (b *builder) activeColorPlanes() []int {
	if b.current.Color == pixel.Grey {
		return []int{0}
	}
	return []int{0, 1, 2}
}

// --- pass 1: alpha unstraighten -------------------------------------------

func (b *builder) colorspacePending() bool {
	if b.current.Color != b.target.Color {
		return true
	}
	if b.target.Color == pixel.Grey {
		return !b.current.Colorspace.EquivalentForGrey(b.target.Colorspace, b.current.Color)
	}
	return !b.current.Colorspace.Equal(b.target.Colorspace)
}

func (b *builder) resizePending() bool {
	return b.current.Width != b.target.Width ||
		b.current.Height != b.target.Height ||
		b.current.SubsampleW != b.target.SubsampleW ||
		b.current.SubsampleH != b.target.SubsampleH ||
		b.current.ActiveLeft != b.target.ActiveLeft ||
		b.current.ActiveTop != b.target.ActiveTop ||
		b.current.ActiveWidth != float64(b.current.Width) ||
		b.current.ActiveHeight != float64(b.current.Height)
}

// passAlphaUnstraighten implements spec.md §4.5.1 step 1. Premultiply and
// Unpremultiply already operate generically over every pixel.Type via
// linebuffer.GetSample/SetSample (filter/premultiply.go), so unlike the
// step's literal wording this does not force an intermediate FLOAT
// conversion: doing so would insert depth-convert nodes spec.md §8
// scenario 5's filter list ("premultiply ; resize(color) ; resize(alpha) ;
// unpremultiply") does not show. See DESIGN.md.
func (b *builder) passAlphaUnstraighten() {
	if b.err != nil || b.current.Alpha != pixel.AlphaStraight {
		return
	}
	alphaDropPending := b.target.Alpha == pixel.AlphaNone
	if !b.colorspacePending() && !b.resizePending() && !alphaDropPending {
		return
	}
	if !b.plane[3].valid() {
		return
	}
	if b.current.Color == pixel.YUV && (b.current.SubsampleW > 0 || b.current.SubsampleH > 0) {
		b.upsampleChromaTo444()
		if b.err != nil {
			return
		}
	}
	w, h := b.current.PlaneDims(0)
	for _, i := range b.activeColorPlanes() {
		pw, ph := w, h
		if i != 0 {
			pw, ph = b.current.PlaneDims(i)
		}
		f := filter.NewPremultiply(pw, ph, b.current.Type)
		id := b.g.AddFilter(f, []filterInput{in(b.plane[i]), in(b.plane[3])})
		b.plane[i] = planeRef{node: id}
	}
	b.current.Alpha = pixel.AlphaPremultiplied
}

// --- pass 2: colorspace conversion -----------------------------------------

func (b *builder) passColorspace() {
	if b.err != nil || !b.colorspacePending() {
		return
	}

	if b.current.Color == pixel.YUV && (b.current.SubsampleW > 0 || b.current.SubsampleH > 0) {
		b.upsampleChromaTo444()
		if b.err != nil {
			return
		}
	}

	if b.current.Color == pixel.Grey {
		b.plane[1] = b.plane[0]
		b.plane[2] = b.plane[0]
		b.current.Color = pixel.RGB
		b.current.Colorspace.Matrix = pixel.MatrixRGB
	}

	dstFamily := b.target.Color
	dstColorspace := b.target.Colorspace
	if dstFamily == pixel.Grey {
		dstFamily = pixel.YUV
		if dstColorspace.Matrix == pixel.MatrixUnspecified {
			dstColorspace.Matrix = pixel.MatrixREC709
		}
	}

	w, h := b.current.PlaneDims(0)
	spec := kernel.ColorspaceSpec{
		SrcFamily:        b.current.Color,
		DstFamily:        dstFamily,
		Src:              b.current.Colorspace,
		Dst:              dstColorspace,
		SrcFormat:        b.current.Format(),
		DstFormat:        b.current.Format(),
		PeakLuminance:    b.params.PeakLuminance,
		ApproximateGamma: b.params.ApproximateGamma,
		SceneReferred:    b.params.SceneReferred,
	}
	f, err := b.factory.ColorspaceFilter(spec, w, h, b.current.Type)
	if err != nil {
		b.fail(err)
		return
	}
	id := b.g.AddFilter(f, []filterInput{in(b.plane[0]), in(b.plane[1]), in(b.plane[2])})
	b.plane[0] = planeRef{node: id, output: 0}
	b.plane[1] = planeRef{node: id, output: 1}
	b.plane[2] = planeRef{node: id, output: 2}
	b.current.Color = dstFamily
	b.current.Colorspace = dstColorspace
}

// upsampleChromaTo444 is the "unify Y/UV resolution to 4:4:4" sub-step
// shared by the alpha and colorspace passes: a plain 1:1-shift resize of
// the chroma planes up to luma resolution.
func (b *builder) upsampleChromaTo444() {
	w, h := b.current.PlaneDims(0)
	cfg := b.params.ResizeFilterChroma
	for _, i := range []int{1, 2} {
		cw, ch := b.current.PlaneDims(i)
		p, err := b.resizePlane(b.plane[i], cw, ch, w, h, 0, 0, cfg, b.current.Type)
		if err != nil {
			b.fail(err)
			return
		}
		b.plane[i] = p
	}
	b.current.SubsampleW, b.current.SubsampleH = 0, 0
}

// --- pass 3: chroma discard -------------------------------------------------

func (b *builder) passChromaDiscard() {
	if b.err != nil {
		return
	}
	if b.current.Color != pixel.Grey && b.target.Color == pixel.Grey {
		b.plane[1] = planeRef{node: noNode}
		b.plane[2] = planeRef{node: noNode}
		b.current.Color = pixel.Grey
		b.current.SubsampleW, b.current.SubsampleH = 0, 0
		b.current.Colorspace.Matrix = pixel.MatrixUnspecified
	}
}

// --- pass 4: resize ----------------------------------------------------------

// resizePlane attaches one or two resize filters to p, choosing
// horizontal-first or vertical-first by the cost model of spec.md §4.5.1
// step 4. Either axis is skipped entirely when it is already a no-op
// (matching dimension and zero shift).
func (b *builder) resizePlane(p planeRef, srcW, srcH, dstW, dstH uint32, shiftW, shiftH float64, cfg ResizeConfig, typ pixel.Type) (planeRef, error) {
	xscale := float64(dstW) / float64(srcW)
	yscale := float64(dstH) / float64(srcH)
	hFirstCost := math.Max(xscale, 1)*2 + xscale*math.Max(yscale, 1)
	vFirstCost := math.Max(yscale, 1) + yscale*math.Max(xscale, 1)*2

	spec := func(srcDim, dstDim uint32, shift float64) kernel.ResizeSpec {
		return kernel.ResizeSpec{
			Kind: cfg.Kind, BicubicB: cfg.BicubicB, BicubicC: cfg.BicubicC, LanczosTaps: cfg.LanczosTaps,
			SrcDim: srcDim, DstDim: dstDim, Shift: shift, Unresize: b.params.Unresize,
		}
	}
	doH := func(cur planeRef, height uint32) (planeRef, error) {
		if srcW == dstW && shiftW == 0 {
			return cur, nil
		}
		f, err := b.factory.ResizeFilter(kernel.Horizontal, spec(srcW, dstW, shiftW), dstW, height, typ)
		if err != nil {
			return planeRef{}, err
		}
		id := b.g.AddFilter(f, []filterInput{in(cur)})
		return planeRef{node: id}, nil
	}
	doV := func(cur planeRef, width uint32) (planeRef, error) {
		if srcH == dstH && shiftH == 0 {
			return cur, nil
		}
		f, err := b.factory.ResizeFilter(kernel.Vertical, spec(srcH, dstH, shiftH), width, dstH, typ)
		if err != nil {
			return planeRef{}, err
		}
		id := b.g.AddFilter(f, []filterInput{in(cur)})
		return planeRef{node: id}, nil
	}

	if hFirstCost <= vFirstCost {
		p, err := doH(p, srcH)
		if err != nil {
			return planeRef{}, err
		}
		return doV(p, dstW)
	}
	p, err := doV(p, srcW)
	if err != nil {
		return planeRef{}, err
	}
	return doH(p, dstH)
}

// promoteForResize implements spec.md §4.5.1 step 4's "convert to a
// compatible pixel type" sub-step (original_source/graphbuilder2.cpp
// lines 707-718, simplified to this module's four-type system): resizing
// an 8-bit integer plane directly loses precision in the resampling
// arithmetic, so BYTE is always promoted to a 16-bit limited-range
// intermediate first; the existing depth pass (pass 5) then converts back
// down to the target format after resizing. Every other pixel type
// resizes directly in its own type.
func (b *builder) promoteForResize() {
	if b.err != nil || b.current.Type != pixel.U8 {
		return
	}
	spec := kernel.DepthSpec{
		SrcFormat: b.current.Format(),
		DstFormat: pixel.Format{Type: pixel.U16, Depth: 16, FullRange: false},
		Dither:    b.params.Dither,
	}
	apply := func(p planeRef, w, h uint32) (planeRef, error) {
		f, err := b.factory.DepthFilter(spec, w, h)
		if err != nil {
			return planeRef{}, err
		}
		id := b.g.AddFilter(f, []filterInput{in(p)})
		return planeRef{node: id}, nil
	}
	for _, i := range b.activeColorPlanes() {
		w, h := b.current.PlaneDims(i)
		p, err := apply(b.plane[i], w, h)
		if err != nil {
			b.fail(err)
			return
		}
		b.plane[i] = p
	}
	if b.plane[3].valid() {
		w, h := b.current.PlaneDims(0)
		p, err := apply(b.plane[3], w, h)
		if err != nil {
			b.fail(err)
			return
		}
		b.plane[3] = p
	}
	b.current.Type = pixel.U16
	b.current.Depth = 16
	b.current.FullRange = false
}

func (b *builder) passResize() {
	if b.err != nil || !b.resizePending() {
		return
	}
	b.promoteForResize()
	if b.err != nil {
		return
	}

	srcW, srcH := b.current.PlaneDims(0)
	dstW, dstH := b.target.PlaneDims(0)
	lShift := lumaShift(b.current.Parity, srcH, dstH)

	p, err := b.resizePlane(b.plane[0], srcW, srcH, dstW, dstH, 0, lShift, b.params.ResizeFilter, b.current.Type)
	if err != nil {
		b.fail(err)
		return
	}
	b.plane[0] = p

	if b.current.Color != pixel.Grey {
		csrcW, csrcH := b.current.PlaneDims(1)
		cdstW, cdstH := b.target.PlaneDims(1)
		shiftW := extraShiftW(b.current.ChromaLocationW, b.target.ChromaLocationW, b.current.SubsampleW, b.target.SubsampleW, csrcW, cdstW)
		shiftH := extraShiftH(b.current.ChromaLocationH, b.target.ChromaLocationH, b.current.Parity, b.current.SubsampleH, b.target.SubsampleH, csrcH, cdstH)
		for _, i := range []int{1, 2} {
			p, err := b.resizePlane(b.plane[i], csrcW, csrcH, cdstW, cdstH, shiftW, shiftH, b.params.ResizeFilterChroma, b.current.Type)
			if err != nil {
				b.fail(err)
				return
			}
			b.plane[i] = p
		}
	}

	if b.plane[3].valid() {
		p, err := b.resizePlane(b.plane[3], srcW, srcH, dstW, dstH, 0, 0, b.params.ResizeFilter, b.current.Type)
		if err != nil {
			b.fail(err)
			return
		}
		b.plane[3] = p
	}

	b.current.Width, b.current.Height = b.target.Width, b.target.Height
	b.current.SubsampleW, b.current.SubsampleH = b.target.SubsampleW, b.target.SubsampleH
	b.current.ChromaLocationW, b.current.ChromaLocationH = b.target.ChromaLocationW, b.target.ChromaLocationH
	b.current.ActiveLeft, b.current.ActiveTop = 0, 0
	b.current.ActiveWidth, b.current.ActiveHeight = float64(b.target.Width), float64(b.target.Height)
}

// --- pass 5: depth / range ---------------------------------------------------

func (b *builder) passDepth() {
	if b.err != nil {
		return
	}
	if b.current.Format().Equal(b.target.Format()) {
		return
	}
	spec := kernel.DepthSpec{SrcFormat: b.current.Format(), DstFormat: b.target.Format(), Dither: b.params.Dither}

	apply := func(p planeRef, w, h uint32) (planeRef, error) {
		f, err := b.factory.DepthFilter(spec, w, h)
		if err != nil {
			return planeRef{}, err
		}
		id := b.g.AddFilter(f, []filterInput{in(p)})
		return planeRef{node: id}, nil
	}

	for _, i := range b.activeColorPlanes() {
		w, h := b.current.PlaneDims(i)
		p, err := apply(b.plane[i], w, h)
		if err != nil {
			b.fail(err)
			return
		}
		b.plane[i] = p
	}
	if b.plane[3].valid() {
		w, h := b.current.PlaneDims(0)
		p, err := apply(b.plane[3], w, h)
		if err != nil {
			b.fail(err)
			return
		}
		b.plane[3] = p
	}

	b.current.Type = b.target.Type
	b.current.Depth = b.target.Depth
	b.current.FullRange = b.target.FullRange
}

// --- pass 6: add fake chroma --------------------------------------------------

func (b *builder) passAddFakeChroma() {
	if b.err != nil || b.current.Color != pixel.Grey || b.target.Color == pixel.Grey {
		return
	}
	if b.target.Color == pixel.RGB {
		b.plane[1] = b.plane[0]
		b.plane[2] = b.plane[0]
		b.current.Colorspace.Matrix = pixel.MatrixRGB
	} else {
		w, h := b.current.PlaneDims(1)
		mid := filter.MidGreyValue(b.current.Format())
		for _, i := range []int{1, 2} {
			f := filter.NewValueInit(w, h, b.current.Type, mid)
			id := b.g.AddFilter(f, nil)
			b.plane[i] = planeRef{node: id}
		}
		b.current.Colorspace = b.target.Colorspace
	}
	b.current.Color = b.target.Color
	b.current.SubsampleW, b.current.SubsampleH = b.target.SubsampleW, b.target.SubsampleH
}

// --- pass 7: alpha restraighten -----------------------------------------------

func (b *builder) passAlphaRestraighten() {
	if b.err != nil || b.current.Alpha != pixel.AlphaPremultiplied || b.target.Alpha != pixel.AlphaStraight {
		return
	}
	if !b.plane[3].valid() {
		return
	}
	for _, i := range b.activeColorPlanes() {
		w, h := b.current.PlaneDims(i)
		f := filter.NewUnpremultiply(w, h, b.current.Type)
		id := b.g.AddFilter(f, []filterInput{in(b.plane[i]), in(b.plane[3])})
		b.plane[i] = planeRef{node: id}
	}
	b.current.Alpha = pixel.AlphaStraight
}

// --- pass 8: add opaque alpha --------------------------------------------------

func (b *builder) passAddOpaqueAlpha() {
	if b.err != nil {
		return
	}
	if b.target.Alpha == pixel.AlphaNone || b.current.Alpha != pixel.AlphaNone {
		return
	}
	w, h := b.current.PlaneDims(0)
	val := filter.OpaqueAlphaValue(b.current.Format())
	f := filter.NewValueInit(w, h, b.current.Type, val)
	id := b.g.AddFilter(f, nil)
	b.plane[3] = planeRef{node: id}
	b.current.Alpha = b.target.Alpha
}
