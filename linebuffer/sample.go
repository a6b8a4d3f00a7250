package linebuffer

import (
	"encoding/binary"
	"math"

	"github.com/deepteams/zimg/pixel"
)

// GetSample reads the sample at column col of row i as a float64,
// regardless of the buffer's underlying storage type. Filters that need
// numeric access (value-init, premultiply) use this instead of switching
// on pixel.Type themselves.
func GetSample(b Buffer, i, col uint32) float64 {
	row := b.Row(i)
	sz := pixel.ByteSize(b.Type)
	off := int(col) * sz
	switch b.Type {
	case pixel.U8:
		return float64(row[off])
	case pixel.U16:
		return float64(binary.LittleEndian.Uint16(row[off : off+2]))
	case pixel.F16:
		return float64(pixel.HalfToFloat32(binary.LittleEndian.Uint16(row[off : off+2])))
	case pixel.F32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(row[off : off+4])))
	default:
		panic("linebuffer: unknown pixel type")
	}
}

// SetSample writes v into column col of row i, converting to the buffer's
// underlying storage type. Integer types clamp and round; float types
// store directly.
func SetSample(b Buffer, i, col uint32, v float64) {
	row := b.Row(i)
	sz := pixel.ByteSize(b.Type)
	off := int(col) * sz
	switch b.Type {
	case pixel.U8:
		row[off] = uint8(clampRound(v, 0, 255))
	case pixel.U16:
		binary.LittleEndian.PutUint16(row[off:off+2], uint16(clampRound(v, 0, 65535)))
	case pixel.F16:
		binary.LittleEndian.PutUint16(row[off:off+2], pixel.Float32ToHalf(float32(v)))
	case pixel.F32:
		binary.LittleEndian.PutUint32(row[off:off+4], math.Float32bits(float32(v)))
	default:
		panic("linebuffer: unknown pixel type")
	}
}

func clampRound(v, lo, hi float64) float64 {
	v = math.Round(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
