package fakeengine

import (
	"fmt"
	"slices"
	"unsafe"

	"github.com/tinyrange/imgdoc/internal/native"
	"github.com/tinyrange/imgdoc/internal/wire"
)

// filter is the decoded form of a query's clause arguments.
type filter struct {
	dims  wire.DimensionQueryClause
	level wire.TileInfoQueryClause
}

func (f filter) matches(t *tile, is3d bool) bool {
	return f.dims.Matches(t.coord) && f.level.Matches(t.level(is3d))
}

func decodeFilter(d *document, dimClause, tileInfoClause unsafe.Pointer, info *native.ErrorInfo) (filter, int32) {
	var f filter
	if dimClause != nil {
		if err := f.dims.UnmarshalBinary(prefixed(dimClause, 4, wire.RangeConditionRecordSize)); err != nil {
			return f, status(info, native.CodeInvalidArgument, "dimension clause: %v", err)
		}
		for _, c := range f.dims.Conditions {
			if !d.hasDimension(c.Dimension) {
				return f, status(info, native.CodeInvalidArgument, "dimension %s is not used by the document", c.Dimension)
			}
		}
	}
	if tileInfoClause != nil {
		if err := f.level.UnmarshalBinary(prefixed(tileInfoClause, 4, wire.PyramidConditionRecordSize)); err != nil {
			return f, status(info, native.CodeInvalidArgument, "tile info clause: %v", err)
		}
	}
	return f, 0
}

func fillResult(result unsafe.Pointer, keys []int64, info *native.ErrorInfo) int32 {
	if result == nil {
		return status(info, native.CodeInvalidArgument, "result buffer is null")
	}
	if err := wire.FillQueryResult(prefixed(result, wire.QueryResultHeaderSize, wire.QueryResultKeySize), keys); err != nil {
		return status(info, native.CodeInvalidArgument, "result buffer: %v", err)
	}
	return 0
}

// search runs a query on the reader h of kind k. extra further narrows the
// tiles; it may be nil.
func (e *Engine) search(export string, k native.Kind, h native.Handle, dimClause, tileInfoClause, result unsafe.Pointer, info *native.ErrorInfo, extra func(*tile) bool) int32 {
	rc := e.enter(export, info)
	defer e.mu.Unlock()
	if rc != 0 {
		return rc
	}
	v, rc := e.lookup(h, k, info)
	if rc != 0 {
		return rc
	}
	d := v.(*access).doc

	f, rc := decodeFilter(d, dimClause, tileInfoClause, info)
	if rc != 0 {
		return rc
	}
	var keys []int64
	for _, t := range d.tiles {
		if f.matches(t, d.is3d) && (extra == nil || extra(t)) {
			keys = append(keys, t.pk)
		}
	}
	return fillResult(result, keys, info)
}

func (e *Engine) query2d(h native.Handle, dimClause, tileInfoClause, result unsafe.Pointer, info *native.ErrorInfo) int32 {
	return e.search("IDocRead2d_Query", native.KindReader2d, h, dimClause, tileInfoClause, result, info, nil)
}

func (e *Engine) query3d(h native.Handle, dimClause, tileInfoClause, result unsafe.Pointer, info *native.ErrorInfo) int32 {
	return e.search("IDocRead3d_Query", native.KindReader3d, h, dimClause, tileInfoClause, result, info, nil)
}

func (e *Engine) tilesIntersectingRect(h native.Handle, rect, dimClause, tileInfoClause, result unsafe.Pointer, info *native.ErrorInfo) int32 {
	var r wire.Rectangle
	if err := r.UnmarshalBinary(view(rect, wire.RectangleSize)); err != nil {
		return status(info, native.CodeInvalidArgument, "rectangle: %v", err)
	}
	return e.search("IDocRead2d_GetTilesIntersectingRect", native.KindReader2d, h, dimClause, tileInfoClause, result, info, func(t *tile) bool {
		return t.pos2d.Rect().Intersects(r)
	})
}

func (e *Engine) bricksIntersectingCuboid(h native.Handle, cuboid, dimClause, tileInfoClause, result unsafe.Pointer, info *native.ErrorInfo) int32 {
	var c wire.Cuboid
	if err := c.UnmarshalBinary(view(cuboid, wire.CuboidSize)); err != nil {
		return status(info, native.CodeInvalidArgument, "cuboid: %v", err)
	}
	return e.search("IDocRead3d_GetBricksIntersectingCuboid", native.KindReader3d, h, dimClause, tileInfoClause, result, info, func(t *tile) bool {
		return t.pos3d.Cuboid().Intersects(c)
	})
}

func (e *Engine) bricksIntersectingPlane(h native.Handle, plane, dimClause, tileInfoClause, result unsafe.Pointer, info *native.ErrorInfo) int32 {
	var p wire.Plane
	if err := p.UnmarshalBinary(view(plane, wire.PlaneSize)); err != nil {
		return status(info, native.CodeInvalidArgument, "plane: %v", err)
	}
	return e.search("IDocRead3d_GetBricksIntersectingPlane", native.KindReader3d, h, dimClause, tileInfoClause, result, info, func(t *tile) bool {
		return p.IntersectsCuboid(t.pos3d.Cuboid())
	})
}

// reader resolves a reader handle and the tile with key pk. Callers hold e.mu.
func (e *Engine) reader(k native.Kind, h native.Handle, pk int64, info *native.ErrorInfo) (*tile, int32) {
	v, rc := e.lookup(h, k, info)
	if rc != 0 {
		return nil, rc
	}
	t := v.(*access).doc.find(pk)
	if t == nil {
		return nil, status(info, native.CodeInvalidArgument, "no tile with key %d", pk)
	}
	return t, 0
}

func (e *Engine) dataReader(export string, k native.Kind) func(native.Handle, int64, uintptr, uintptr, uintptr, *native.ErrorInfo) int32 {
	return func(h native.Handle, pk int64, tok, setSize, setData uintptr, info *native.ErrorInfo) int32 {
		rc := e.enter(export, info)
		defer e.mu.Unlock()
		if rc != 0 {
			return rc
		}
		t, rc := e.reader(k, h, pk, info)
		if rc != 0 {
			return rc
		}
		if setSize == 0 || setData == 0 {
			return status(info, native.CodeInvalidArgument, "blob callbacks are null")
		}
		return e.deliver(t.data, tok, setSize, setData, info)
	}
}

// deliver hands data to the caller through the blob callbacks.
func (e *Engine) deliver(data []byte, tok, setSize, setData uintptr, info *native.ErrorInfo) int32 {
	size := uint64(len(data))
	switch e.BlobFault {
	case BlobFaultSetSizeTwice:
		e.Invoker.SetSize(setSize, tok, size)
		e.Invoker.SetSize(setSize, tok, size)
		return 0
	case BlobFaultOverrun:
		e.Invoker.SetSize(setSize, tok, size)
		e.Invoker.SetData(setData, tok, size, []byte{0})
		return 0
	case BlobFaultDataBeforeSize:
		e.Invoker.SetData(setData, tok, 0, data)
		return 0
	}

	if !e.Invoker.SetSize(setSize, tok, size) {
		return status(info, native.CodeUnspecified, "caller rejected a blob of %d bytes", size)
	}
	chunk := e.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	for off := 0; off < len(data); off += chunk {
		end := min(off+chunk, len(data))
		if !e.Invoker.SetData(setData, tok, uint64(off), data[off:end]) {
			return status(info, native.CodeUnspecified, "caller rejected blob data at offset %d", off)
		}
	}
	return 0
}

func writeCoordinate(p unsafe.Pointer, coord wire.TileCoordinate, info *native.ErrorInfo) int32 {
	if p == nil {
		return 0
	}
	buf := prefixed(p, 4, wire.CoordinateRecordSize)
	capacity, err := wire.CoordinateCapacity(buf)
	if err != nil {
		return status(info, native.CodeInvalidArgument, "coordinate buffer: %v", err)
	}
	if coord.Len() > capacity {
		return status(info, native.CodeIndexOutOfRange, "coordinate has %d entries, buffer holds %d", coord.Len(), capacity)
	}
	b, err := coord.MarshalBinary()
	if err != nil {
		return status(info, native.CodeUnspecified, "%v", err)
	}
	copy(buf, b)
	return 0
}

func (e *Engine) readTileInfo(h native.Handle, pk int64, coord, pos, blobInfo unsafe.Pointer, info *native.ErrorInfo) int32 {
	rc := e.enter("IDocRead2d_ReadTileInfo", info)
	defer e.mu.Unlock()
	if rc != 0 {
		return rc
	}
	t, rc := e.reader(native.KindReader2d, h, pk, info)
	if rc != 0 {
		return rc
	}
	if rc := writeCoordinate(coord, t.coord, info); rc != 0 {
		return rc
	}
	if pos != nil {
		b, _ := t.pos2d.MarshalBinary()
		copy(view(pos, wire.LogicalPosition2DSize), b)
	}
	if blobInfo != nil {
		b, _ := wire.TileBlobInfo{Base: t.base2d, DataType: t.dataType}.MarshalBinary()
		copy(view(blobInfo, wire.TileBlobInfoSize), b)
	}
	return 0
}

func (e *Engine) readBrickInfo(h native.Handle, pk int64, coord, pos, blobInfo unsafe.Pointer, info *native.ErrorInfo) int32 {
	rc := e.enter("IDocRead3d_ReadBrickInfo", info)
	defer e.mu.Unlock()
	if rc != 0 {
		return rc
	}
	t, rc := e.reader(native.KindReader3d, h, pk, info)
	if rc != 0 {
		return rc
	}
	if rc := writeCoordinate(coord, t.coord, info); rc != 0 {
		return rc
	}
	if pos != nil {
		b, _ := t.pos3d.MarshalBinary()
		copy(view(pos, wire.LogicalPosition3DSize), b)
	}
	if blobInfo != nil {
		b, _ := wire.BrickBlobInfo{Base: t.base3d, DataType: t.dataType}.MarshalBinary()
		copy(view(blobInfo, wire.BrickBlobInfoSize), b)
	}
	return 0
}

// withReader runs fn on the document behind reader h of kind k.
func (e *Engine) withReader(export string, k native.Kind, h native.Handle, info *native.ErrorInfo, fn func(*document) int32) int32 {
	rc := e.enter(export, info)
	defer e.mu.Unlock()
	if rc != 0 {
		return rc
	}
	v, rc := e.lookup(h, k, info)
	if rc != 0 {
		return rc
	}
	return fn(v.(*access).doc)
}

func (e *Engine) tileDimensions(export string, k native.Kind) func(native.Handle, *byte, *uint32, *native.ErrorInfo) int32 {
	return func(h native.Handle, dims *byte, count *uint32, info *native.ErrorInfo) int32 {
		return e.withReader(export, k, h, info, func(d *document) int32 {
			return fillDimensions(dims, count, d.dims, info)
		})
	}
}

func (e *Engine) minMax(export string, k native.Kind) func(native.Handle, *byte, uint32, unsafe.Pointer, *native.ErrorInfo) int32 {
	return func(h native.Handle, dims *byte, count uint32, result unsafe.Pointer, info *native.ErrorInfo) int32 {
		return e.withReader(export, k, h, info, func(d *document) int32 {
			if count > 0 && (dims == nil || result == nil) {
				return status(info, native.CodeInvalidArgument, "dimension list or result is null")
			}
			requested := view(unsafe.Pointer(dims), int(count))
			intervals := make([]wire.Int32Interval, count)
			for i, raw := range requested {
				dim := wire.Dimension(raw)
				if !d.hasDimension(dim) {
					return status(info, native.CodeInvalidArgument, "dimension %q is not used by the document", rune(raw))
				}
				iv := wire.Indeterminate
				for _, t := range d.tiles {
					if v, ok := t.coord.Get(dim); ok {
						iv = iv.Extend(v)
					}
				}
				intervals[i] = iv
			}
			if err := wire.PutIntervals(view(result, int(count)*wire.Int32IntervalSize), intervals); err != nil {
				return status(info, native.CodeInvalidArgument, "%v", err)
			}
			return 0
		})
	}
}

func (e *Engine) boundingBox2d(h native.Handle, rect unsafe.Pointer, info *native.ErrorInfo) int32 {
	return e.withReader("IDocInfo_GetBoundingBoxForTiles", native.KindReader2d, h, info, func(d *document) int32 {
		if rect == nil {
			return status(info, native.CodeInvalidArgument, "output is null")
		}
		var box wire.Rectangle
		for i, t := range d.tiles {
			if i == 0 {
				box = t.pos2d.Rect()
				continue
			}
			box = box.Union(t.pos2d.Rect())
		}
		b, _ := box.MarshalBinary()
		copy(view(rect, wire.RectangleSize), b)
		return 0
	})
}

func (e *Engine) boundingBox3d(h native.Handle, cuboid unsafe.Pointer, info *native.ErrorInfo) int32 {
	return e.withReader("IDocInfo3d_GetBoundingBoxForBricks", native.KindReader3d, h, info, func(d *document) int32 {
		if cuboid == nil {
			return status(info, native.CodeInvalidArgument, "output is null")
		}
		var box wire.Cuboid
		for i, t := range d.tiles {
			if i == 0 {
				box = t.pos3d.Cuboid()
				continue
			}
			box = box.Union(t.pos3d.Cuboid())
		}
		b, _ := box.MarshalBinary()
		copy(view(cuboid, wire.CuboidSize), b)
		return 0
	})
}

func (e *Engine) totalCount(export string, k native.Kind) func(native.Handle, *uint64, *native.ErrorInfo) int32 {
	return func(h native.Handle, count *uint64, info *native.ErrorInfo) int32 {
		return e.withReader(export, k, h, info, func(d *document) int32 {
			if count == nil {
				return status(info, native.CodeInvalidArgument, "output is null")
			}
			*count = uint64(len(d.tiles))
			return 0
		})
	}
}

func (e *Engine) countPerLayer(export string, k native.Kind) func(native.Handle, unsafe.Pointer, *native.ErrorInfo) int32 {
	return func(h native.Handle, result unsafe.Pointer, info *native.ErrorInfo) int32 {
		return e.withReader(export, k, h, info, func(d *document) int32 {
			if result == nil {
				return status(info, native.CodeInvalidArgument, "output is null")
			}
			perLevel := map[int32]uint64{}
			for _, t := range d.tiles {
				perLevel[t.level(d.is3d)]++
			}
			counts := make([]wire.LayerCount, 0, len(perLevel))
			for level, n := range perLevel {
				counts = append(counts, wire.LayerCount{PyramidLevel: level, Count: n})
			}
			slices.SortFunc(counts, func(a, b wire.LayerCount) int {
				return int(a.PyramidLevel) - int(b.PyramidLevel)
			})
			buf := prefixed(result, wire.LayerCountHeaderSize, wire.LayerCountRecordSize)
			if err := wire.FillLayerCounts(buf, counts); err != nil {
				return status(info, native.CodeInvalidArgument, "%v", err)
			}
			return 0
		})
	}
}

// String describes the engine's live objects, for test failure messages.
func (e *Engine) String() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fmt.Sprintf("fakeengine{objects: %d, documents: %d}", len(e.objects), len(e.files))
}
