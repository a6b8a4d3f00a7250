package builder

import "github.com/deepteams/zimg/pixel"

// chromaShiftW and chromaShiftH implement spec.md §4.5.2's shift formulas
// verbatim, grounded on original_source/src/zimg/graph/graphbuilder2.cpp's
// chroma_shift_raw/chroma_shift_factor (lines 27-63).
func chromaShiftW(loc pixel.ChromaLocationW) float64 {
	if loc == pixel.ChromaLeft {
		return -0.5
	}
	return 0
}

func chromaShiftH(loc pixel.ChromaLocationH, parity pixel.FieldParity) float64 {
	base := 0.0
	switch loc {
	case pixel.ChromaTop:
		base = -0.5
	case pixel.ChromaBottom:
		base = 0.5
	}
	switch parity {
	case pixel.Top:
		return (base - 0.5) / 2
	case pixel.Bottom:
		return (base + 0.5) / 2
	default:
		return base
	}
}

// extraShiftW/extraShiftH apply the chroma_shift to a resize's sampling
// center, per spec.md §4.5.2: both terms divide by 2^subsample_in, even
// the output-side term, exactly as the formula states.
func extraShiftW(locIn, locOut pixel.ChromaLocationW, subIn, subOut uint32, srcDim, dstDim uint32) float64 {
	shift := 0.0
	if subIn > 0 {
		shift -= (1 / float64(uint32(1)<<subIn)) * chromaShiftW(locIn)
	}
	if subOut > 0 {
		shift += (1 / float64(uint32(1)<<subIn)) * chromaShiftW(locOut) * float64(srcDim) / float64(dstDim)
	}
	return shift
}

func extraShiftH(locIn, locOut pixel.ChromaLocationH, parity pixel.FieldParity, subIn, subOut uint32, srcDim, dstDim uint32) float64 {
	shift := 0.0
	if subIn > 0 {
		shift -= (1 / float64(uint32(1)<<subIn)) * chromaShiftH(locIn, parity)
	}
	if subOut > 0 {
		shift += (1 / float64(uint32(1)<<subIn)) * chromaShiftH(locOut, parity) * float64(srcDim) / float64(dstDim)
	}
	return shift
}

// lumaShift computes the field-parity subpixel correction a vertical resize
// of an interlaced plane needs (spec.md §4.5.1 step 4).
func lumaShift(parity pixel.FieldParity, srcHeight, dstHeight uint32) float64 {
	var sign float64
	switch parity {
	case pixel.Top:
		sign = 1
	case pixel.Bottom:
		sign = -1
	default:
		return 0
	}
	return sign*0.25*float64(srcHeight)/float64(dstHeight) - sign*0.25
}
