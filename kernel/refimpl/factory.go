package refimpl

import "github.com/deepteams/zimg/kernel"

// DefaultFactory is the pure-Go KernelFactory every Builder uses unless a
// caller supplies its own, mirroring the teacher's internal/dsp.Init()
// pattern of resolving a table of function implementations once at
// construction time rather than branching on CPU features inline at every
// call site. A caller wanting SIMD or vendor kernels implements
// kernel.KernelFactory directly; the graph and builder packages are
// agnostic to which one they were given.
type DefaultFactory struct{}

// NewDefaultFactory constructs the reference KernelFactory.
func NewDefaultFactory() *DefaultFactory { return &DefaultFactory{} }

var _ kernel.KernelFactory = (*DefaultFactory)(nil)
