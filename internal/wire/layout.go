// Package wire encodes and decodes the fixed-layout interop structs exchanged
// with the native imgdoc2 engine.
//
// Every layout is written out field by field: field order, width and padding
// follow the engine's C headers, which pack structs to 4-byte boundaries.
// Multi-byte fields use the host byte order because the buffers never leave
// the process.
//
//	TileCoordinate        i32 count, count x {u8 dim, 3 pad, i32 value}
//	DimensionQueryClause  i32 count, count x {u8 dim, 3 pad, i32 start, i32 end}
//	TileInfoQueryClause   i32 count, count x {u8 logical, u8 cmp, 2 pad, i32 value}
//	QueryResult           u32 count, u32 more, count x i64
//	LogicalPosition2D     f64 x, y, w, h, i32 level
//	LogicalPosition3D     f64 x, y, z, w, h, d, i32 level
//	TileCountPerLayer     u32 allocated, u32 available, n x {i32 level, u64 count}
//
// Decoders check every declared count against the buffer length before
// touching a record.
package wire

import (
	"encoding/binary"
	"errors"
	"math"
	"unsafe"
)

var order = binary.NativeEndian

const (
	countHeaderSize = 4

	CoordinateRecordSize       = 8
	RangeConditionRecordSize   = 12
	PyramidConditionRecordSize = 8

	QueryResultHeaderSize = 8
	QueryResultKeySize    = 8

	LogicalPosition2DSize = 4*8 + 4
	LogicalPosition3DSize = 6*8 + 4
	RectangleSize         = 4 * 8
	CuboidSize            = 6 * 8
	PlaneSize             = 4 * 8

	TileBaseInfoSize  = 12
	BrickBaseInfoSize = 16
	TileBlobInfoSize  = TileBaseInfoSize + 4
	BrickBlobInfoSize = BrickBaseInfoSize + 4

	Int32IntervalSize = 8

	LayerCountHeaderSize = 8
	LayerCountRecordSize = 12

	StatisticsSize = 8 * 4
)

// MaxDimensions is the number of distinct dimension letters.
const MaxDimensions = 52

var (
	ErrTruncated          = errors.New("wire: buffer truncated")
	ErrInvalidDimension   = errors.New("wire: invalid dimension")
	ErrDuplicateDimension = errors.New("wire: duplicate dimension")
	ErrInvalidCount       = errors.New("wire: invalid element count")
	ErrInvalidUTF8        = errors.New("wire: invalid UTF-8")
	ErrInvalidQuery       = errors.New("wire: malformed query")
	ErrInvalidOperator    = errors.New("wire: invalid operator")
	ErrSizeUnstable       = errors.New("wire: native side kept growing the required size")
)

// Pointer returns the address of the first byte of b, or nil for an empty
// slice. The caller must keep b alive for as long as the native side may
// read it.
func Pointer(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

// readCount returns the count header of a count-prefixed array after checking
// that the buffer holds that many records.
func readCount(b []byte, recordSize int) (int, error) {
	if len(b) < countHeaderSize {
		return 0, ErrTruncated
	}
	n := int32(order.Uint32(b))
	if n < 0 {
		return 0, ErrInvalidCount
	}
	if (len(b)-countHeaderSize)/recordSize < int(n) {
		return 0, ErrTruncated
	}
	return int(n), nil
}

func putFloat(b []byte, v float64) {
	order.PutUint64(b, math.Float64bits(v))
}

func getFloat(b []byte) float64 {
	return math.Float64frombits(order.Uint64(b))
}

func putFloats(b []byte, vs ...float64) {
	for i, v := range vs {
		putFloat(b[i*8:], v)
	}
}
