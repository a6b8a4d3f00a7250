package graph

import "github.com/deepteams/zimg/zerror"

// defaultAlignment is the byte alignment the arena hands out sub-slices
// at. It matches the "typically 32 or 64 bytes" alignment spec.md §6
// expects kernels to declare; 64 covers both AVX2 and cache-line cases
// without the opaque kernel factory having to ask for more.
const defaultAlignment = 64

// arena is the single bump allocator a Process call partitions its
// caller-supplied temporary buffer with (spec.md §5: per-node context
// memory, per-node cache line storage, and a shared scratch region, never
// aliased). It is grounded on the teacher's internal/pool bucketed
// sync.Pool idiom of rounding allocation requests to fixed classes, but is
// a single-shot bump allocator rather than a reusable pool: a Process call
// allocates once from a caller-owned slice and never frees individual
// pieces, discarding the whole arena when the call returns.
type arena struct {
	buf []byte
	off int
}

func newArena(buf []byte) *arena { return &arena{buf: buf} }

func alignUp(n, align int) int { return (n + align - 1) &^ (align - 1) }

// alloc returns a zeroed, aligned sub-slice of size bytes, or an
// OutOfMemory error if the arena is exhausted.
func (a *arena) alloc(size int) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	start := alignUp(a.off, defaultAlignment)
	end := start + size
	if end > len(a.buf) {
		return nil, zerror.New(zerror.OutOfMemory, "arena exhausted: need %d bytes, have %d remaining", size, len(a.buf)-start)
	}
	a.off = end
	s := a.buf[start:end]
	for i := range s {
		s[i] = 0
	}
	return s, nil
}

// arenaPlan records, per node, the byte sizes Complete() computed so that
// Process can partition a fresh arena identically on every call without
// re-deriving the plan.
type arenaPlan struct {
	nodeContext   []int // indexed by NodeID
	nodeCacheRows []int // indexed by NodeID; bytes for ONE output plane row * cacheLines, times NumOutputs
	scratch       int   // max over all filters of tmp_size(left,right) for the widest tile
}
