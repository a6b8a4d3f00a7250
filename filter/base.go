package filter

// Base supplies the default member behaviors from the original contract's
// ImageFilterBase: same-row dependency ranges, a simultaneous-line count
// of one, and zero-size context/scratch. Concrete filters embed Base and
// override only what differs (mirrors the Filter interface, minus
// GetFlags/Attributes/Process which every filter must define itself).
type Base struct{}

func (Base) RowDeps(i uint32) (uint32, uint32) { return i, i + 1 }

func (Base) ColDeps(left, right uint32) (uint32, uint32) { return left, right }

func (Base) Step() uint32 { return 1 }

func (Base) MaxBuffering() uint32 { return 1 }

func (Base) ContextSize() int { return 0 }

func (Base) TmpSize(uint32, uint32) int { return 0 }

func (Base) InitContext([]byte) {}
