// Package imgdoc drives the imgdoc2 image-document engine, a native shared
// library, from Go. Documents, readers and writers are thin owners of engine
// handles: every value returned by a constructor must be closed exactly once.
//
// The engine library is located on first use. Set IMGDOC2_LIBRARY to its
// path, or register directories with AddSearchPath before the first call.
package imgdoc

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/tinyrange/imgdoc/internal/blob"
	"github.com/tinyrange/imgdoc/internal/native"
	"github.com/tinyrange/imgdoc/internal/wire"
)

// -----------------------------------------------------------------------------
// Type Aliases - These re-export types from internal/wire and internal/native
// -----------------------------------------------------------------------------

// Dimension is a single letter naming a coordinate axis.
type Dimension = wire.Dimension

// TileCoordinate maps dimensions to values.
type TileCoordinate = wire.TileCoordinate

// CoordinateEntry is one (dimension, value) pair of a TileCoordinate.
type CoordinateEntry = wire.CoordinateEntry

// DimensionQueryClause restricts dimensions to inclusive ranges.
type DimensionQueryClause = wire.DimensionQueryClause

// RangeCondition is one term of a DimensionQueryClause.
type RangeCondition = wire.RangeCondition

// TileInfoQueryClause filters on pyramid level.
type TileInfoQueryClause = wire.TileInfoQueryClause

// PyramidLevelCondition is one predicate of a TileInfoQueryClause.
type PyramidLevelCondition = wire.PyramidLevelCondition

type (
	LogicalOperator    = wire.LogicalOperator
	ComparisonOperator = wire.ComparisonOperator
	LogicalPosition2D  = wire.LogicalPosition2D
	LogicalPosition3D  = wire.LogicalPosition3D
	Rectangle          = wire.Rectangle
	Cuboid             = wire.Cuboid
	Plane              = wire.Plane
	TileBaseInfo       = wire.TileBaseInfo
	BrickBaseInfo      = wire.BrickBaseInfo
	TileBlobInfo       = wire.TileBlobInfo
	BrickBlobInfo      = wire.BrickBlobInfo
	PixelType          = wire.PixelType
	DataType           = wire.DataType
	Int32Interval      = wire.Int32Interval
	LayerCount         = wire.LayerCount
	QueryResult        = wire.QueryResult
	Statistics         = wire.Statistics
)

// NativeError is an error reported by the engine, carrying its status code
// and message.
type NativeError = native.Error

// Code is an engine status code.
type Code = native.Code

const (
	LogicalNone = wire.LogicalNone
	LogicalAnd  = wire.LogicalAnd
	LogicalOr   = wire.LogicalOr

	CompareEqual          = wire.CompareEqual
	CompareNotEqual       = wire.CompareNotEqual
	CompareLess           = wire.CompareLess
	CompareLessOrEqual    = wire.CompareLessOrEqual
	CompareGreater        = wire.CompareGreater
	CompareGreaterOrEqual = wire.CompareGreaterOrEqual

	PixelGray8       = wire.PixelGray8
	PixelGray16      = wire.PixelGray16
	PixelGray32Float = wire.PixelGray32Float
	PixelBgr24       = wire.PixelBgr24
	PixelBgr48       = wire.PixelBgr48

	DataZero                  = wire.DataZero
	DataUncompressedBitmap    = wire.DataUncompressedBitmap
	DataJpgXrCompressedBitmap = wire.DataJpgXrCompressedBitmap
	DataZstd0CompressedBitmap = wire.DataZstd0CompressedBitmap
	DataZstd1CompressedBitmap = wire.DataZstd1CompressedBitmap
	DataUncompressedBrick     = wire.DataUncompressedBrick
)

// DocumentType selects between tile (2D) and brick (3D) documents.
type DocumentType uint8

const (
	DocumentTypeInvalid DocumentType = DocumentType(native.DocumentTypeInvalid)
	DocumentType2d      DocumentType = DocumentType(native.DocumentTypeImage2d)
	DocumentType3d      DocumentType = DocumentType(native.DocumentTypeImage3d)
)

func (t DocumentType) String() string {
	switch t {
	case DocumentType2d:
		return "image2d"
	case DocumentType3d:
		return "image3d"
	default:
		return fmt.Sprintf("DocumentType(%d)", uint8(t))
	}
}

// Common sentinel errors.
var (
	ErrAlreadyClosed   = errors.New("imgdoc: already closed")
	ErrInvalidArgument = errors.New("imgdoc: invalid argument")
	ErrProtocol        = errors.New("imgdoc: engine violated the blob protocol")

	// ErrNotOperational is returned by every call once loading the engine
	// library has failed.
	ErrNotOperational = native.ErrNotOperational

	// Code sentinels; use errors.Is to test a NativeError's code.
	ErrInvalidHandle    = native.ErrInvalidHandle
	ErrInvalidPixelType = native.ErrInvalidPixelType
	ErrIndexOutOfRange  = native.ErrIndexOutOfRange
)

// ParsePixelType accepts the names PixelType.String prints, e.g. "gray8".
func ParsePixelType(s string) (PixelType, error) { return wire.ParsePixelType(s) }

// NewDimension validates r as a dimension letter.
func NewDimension(r rune) (Dimension, error) { return wire.NewDimension(r) }

// ParseDimensions parses a string of dimension letters such as "CTZ".
func ParseDimensions(s string) ([]Dimension, error) { return wire.ParseDimensions(s) }

// NewTileCoordinate builds a coordinate from entries.
func NewTileCoordinate(entries ...CoordinateEntry) (TileCoordinate, error) {
	return wire.NewTileCoordinate(entries...)
}

// ParseTileCoordinate parses the compact coordinate form, for example "C1T2".
func ParseTileCoordinate(s string) (TileCoordinate, error) { return wire.ParseTileCoordinate(s) }

// ParseDimensionQuery parses the compact query syntax, for example
// "A3,5C3,9X-1,-3".
func ParseDimensionQuery(s string) (DimensionQueryClause, error) {
	return wire.ParseDimensionQuery(s)
}

// FormatDimensionQuery is the inverse of ParseDimensionQuery.
func FormatDimensionQuery(q DimensionQueryClause) string { return wire.FormatDimensionQuery(q) }

// AddSearchPath adds a directory to look for the engine library in. It has
// no effect once the library is loaded.
func AddSearchPath(dir string) { native.AddSearchPath(dir) }

// LibraryEnv names the environment variable that, when set, is the first
// path tried when loading the engine library.
const LibraryEnv = native.LibraryEnv

// -----------------------------------------------------------------------------
// Engine access
// -----------------------------------------------------------------------------

// Replaced by tests to run against an in-memory engine.
var (
	loadExports     = native.Load
	blobTrampolines = blob.Trampolines
	logTrampolines  = environmentTrampolines
)

// GetStatistics returns the engine's counts of live objects per kind.
func GetStatistics() (Statistics, error) {
	ex, err := loadExports()
	if err != nil {
		return Statistics{}, err
	}
	buf := make([]byte, wire.StatisticsSize)
	if err := native.Check("GetStatistics", ex.GetStatistics(wire.Pointer(buf)), nil); err != nil {
		return Statistics{}, err
	}
	var s Statistics
	if err := s.UnmarshalBinary(buf); err != nil {
		return Statistics{}, err
	}
	return s, nil
}

// call runs one fallible export and translates its status.
func call(op string, fn func(info *native.ErrorInfo) int32) error {
	var info native.ErrorInfo
	return native.Check(op, fn(&info), &info)
}

func invalidArgument(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
}

func invalidHandle(op string) error {
	return &NativeError{Op: op, Code: native.CodeUnspecified, Message: "engine returned an invalid handle"}
}

// first returns a pointer to b's first byte, or nil if b is empty.
func first(b []byte) *byte {
	if len(b) == 0 {
		return nil
	}
	return &b[0]
}

// handle owns one engine object and destroys it exactly once.
type handle struct {
	ex      *native.Exports
	h       native.Handle
	destroy func(native.Handle, *native.ErrorInfo) int32
	op      string
	closed  atomic.Bool
}

func (h *handle) init(ex *native.Exports, nh native.Handle, op string, destroy func(native.Handle, *native.ErrorInfo) int32) {
	h.ex = ex
	h.h = nh
	h.op = op
	h.destroy = destroy
}

// get returns the native handle unless the owner has been closed.
func (h *handle) get() (native.Handle, error) {
	if h.closed.Load() {
		return native.InvalidHandle, ErrAlreadyClosed
	}
	return h.h, nil
}

// close destroys the object. A failed destroy is reported but the handle is
// still forgotten.
func (h *handle) close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return ErrAlreadyClosed
	}
	return call(h.op, func(info *native.ErrorInfo) int32 {
		return h.destroy(h.h, info)
	})
}

// Handle returns the engine handle, for diagnostics.
func (h *handle) Handle() uintptr { return uintptr(h.h) }
