package imgdoc

import (
	"fmt"
	"unsafe"

	"github.com/tinyrange/imgdoc/internal/blob"
	"github.com/tinyrange/imgdoc/internal/native"
	"github.com/tinyrange/imgdoc/internal/wire"
)

// DefaultMaxResults is the result capacity used by the CLI and tests when
// no limit is given.
const DefaultMaxResults = 1000

// initialLayerCapacity is the first guess for per-layer count queries.
const initialLayerCapacity = 8

// encodeClauses encodes the optional query clauses. A nil clause is passed
// to the engine as a null pointer.
func encodeClauses(op string, dims *DimensionQueryClause, tileInfo *TileInfoQueryClause) (d, t []byte, err error) {
	if dims != nil {
		if d, err = dims.MarshalBinary(); err != nil {
			return nil, nil, invalidArgument(op, err)
		}
	}
	if tileInfo != nil {
		if t, err = tileInfo.MarshalBinary(); err != nil {
			return nil, nil, invalidArgument(op, err)
		}
	}
	return d, t, nil
}

// runQuery allocates a result buffer for up to maxResults keys, runs fn and
// decodes what the engine wrote.
func runQuery(op string, maxResults int, fn func(result unsafe.Pointer, info *native.ErrorInfo) int32) (QueryResult, error) {
	buf, err := wire.NewQueryResultBuffer(maxResults)
	if err != nil {
		return QueryResult{}, invalidArgument(op, err)
	}
	if err := call(op, func(info *native.ErrorInfo) int32 {
		return fn(wire.Pointer(buf), info)
	}); err != nil {
		return QueryResult{}, err
	}
	res, err := wire.DecodeQueryResult(buf)
	if err != nil {
		return QueryResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// query runs one of the query exports taking a spatial argument (which may
// be nil) followed by the two clauses and the result buffer.
func query(op string, h *handle, spatial []byte, dims *DimensionQueryClause, tileInfo *TileInfoQueryClause, maxResults int,
	fn func(h native.Handle, spatial, dims, tileInfo, result unsafe.Pointer, info *native.ErrorInfo) int32) (QueryResult, error) {
	nh, err := h.get()
	if err != nil {
		return QueryResult{}, err
	}
	d, t, err := encodeClauses(op, dims, tileInfo)
	if err != nil {
		return QueryResult{}, err
	}
	return runQuery(op, maxResults, func(result unsafe.Pointer, info *native.ErrorInfo) int32 {
		return fn(nh, wire.Pointer(spatial), wire.Pointer(d), wire.Pointer(t), result, info)
	})
}

// readBlob runs a data export with the blob callbacks and returns the blob.
// A protocol violation is reported even when the engine claims success.
func readBlob(op string, fn func(tok, setSize, setData uintptr, info *native.ErrorInfo) int32) ([]byte, error) {
	var out blob.Output
	tok := blob.Register(&out)
	setSize, setData := blobTrampolines()

	var info native.ErrorInfo
	code := fn(tok, setSize, setData, &info)
	if err := blob.Unregister(tok); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrProtocol, err)
	}

	if err := out.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrProtocol, err)
	}
	if err := native.Check(op, code, &info); err != nil {
		return nil, err
	}
	if !out.Sized() {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrProtocol, blob.ErrSizeNotSet)
	}
	return out.Bytes(), nil
}

// docInfo holds the document-information exports of a reader kind.
type docInfo struct {
	dims     func(native.Handle, *byte, *uint32, *native.ErrorInfo) int32
	minMax   func(native.Handle, *byte, uint32, unsafe.Pointer, *native.ErrorInfo) int32
	total    func(native.Handle, *uint64, *native.ErrorInfo) int32
	perLayer func(native.Handle, unsafe.Pointer, *native.ErrorInfo) int32
	prefix   string
}

func info2d(ex *native.Exports) docInfo {
	return docInfo{
		dims:     ex.Info2dGetTileDimensions,
		minMax:   ex.Info2dGetMinMaxForTileDimensions,
		total:    ex.Info2dGetTotalTileCount,
		perLayer: ex.Info2dGetTileCountPerLayer,
		prefix:   "IDocInfo_",
	}
}

func info3d(ex *native.Exports) docInfo {
	return docInfo{
		dims:     ex.Info3dGetTileDimensions,
		minMax:   ex.Info3dGetMinMaxForTileDimensions,
		total:    ex.Info3dGetTotalTileCount,
		perLayer: ex.Info3dGetTileCountPerLayer,
		prefix:   "IDocInfo3d_",
	}
}

func (di docInfo) tileDimensions(h *handle) ([]Dimension, error) {
	return getDimensions(di.prefix+"GetTileDimensions", h, di.dims)
}

func (di docInfo) minMaxForTileDimensions(h *handle, dims []Dimension) ([]Int32Interval, error) {
	op := di.prefix + "GetMinMaxForTileDimensions"
	nh, err := h.get()
	if err != nil {
		return nil, err
	}
	encoded, err := wire.EncodeDimensions(dims)
	if err != nil {
		return nil, invalidArgument(op, err)
	}
	result := wire.NewIntervalBuffer(len(dims))
	err = call(op, func(info *native.ErrorInfo) int32 {
		return di.minMax(nh, first(encoded), uint32(len(encoded)), wire.Pointer(result), info)
	})
	if err != nil {
		return nil, err
	}
	return wire.DecodeIntervals(result, len(dims))
}

func (di docInfo) totalTileCount(h *handle) (uint64, error) {
	nh, err := h.get()
	if err != nil {
		return 0, err
	}
	var n uint64
	err = call(di.prefix+"GetTotalTileCount", func(info *native.ErrorInfo) int32 {
		return di.total(nh, &n, info)
	})
	return n, err
}

// tileCountPerLayer grows the result buffer until every layer fits.
func (di docInfo) tileCountPerLayer(h *handle) ([]LayerCount, error) {
	op := di.prefix + "GetTileCountPerLayer"
	nh, err := h.get()
	if err != nil {
		return nil, err
	}
	capacity := initialLayerCapacity
	for attempt := 0; attempt < 4; attempt++ {
		buf := wire.NewLayerCountBuffer(capacity)
		err := call(op, func(info *native.ErrorInfo) int32 {
			return di.perLayer(nh, wire.Pointer(buf), info)
		})
		if err != nil {
			return nil, err
		}
		counts, available, err := wire.DecodeLayerCounts(buf)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if available <= capacity {
			return counts, nil
		}
		capacity = available
	}
	return nil, fmt.Errorf("%s: %w", op, wire.ErrSizeUnstable)
}
