package imgdoc

import (
	"unsafe"

	"github.com/tinyrange/imgdoc/internal/native"
	"github.com/tinyrange/imgdoc/internal/wire"
)

// TileInfo is what ReadTileInfo reports about a tile.
type TileInfo struct {
	Coordinate TileCoordinate
	Position   LogicalPosition2D
	Blob       TileBlobInfo
}

// BrickInfo is what ReadBrickInfo reports about a brick.
type BrickInfo struct {
	Coordinate TileCoordinate
	Position   LogicalPosition3D
	Blob       BrickBlobInfo
}

// Reader2d queries and reads the tiles of a 2D document.
type Reader2d struct {
	handle
}

// Close releases the reader.
func (r *Reader2d) Close() error { return r.close() }

// Query returns the keys of tiles matching both clauses, at most maxResults of
// them. Either clause may be nil.
func (r *Reader2d) Query(dims *DimensionQueryClause, tileInfo *TileInfoQueryClause, maxResults int) (QueryResult, error) {
	return query("IDocRead2d_Query", &r.handle, nil, dims, tileInfo, maxResults,
		func(h native.Handle, _, d, t, result unsafe.Pointer, info *native.ErrorInfo) int32 {
			return r.ex.Read2dQuery(h, d, t, result, info)
		})
}

// TilesIntersectingRect is like Query but only returns tiles whose logical
// extent intersects rect.
func (r *Reader2d) TilesIntersectingRect(rect Rectangle, dims *DimensionQueryClause, tileInfo *TileInfoQueryClause, maxResults int) (QueryResult, error) {
	spatial, _ := rect.MarshalBinary()
	return query("IDocRead2d_GetTilesIntersectingRect", &r.handle, spatial, dims, tileInfo, maxResults, r.ex.Read2dGetTilesIntersectingRect)
}

// ReadTileData returns the stored data of the tile with key pk.
func (r *Reader2d) ReadTileData(pk int64) ([]byte, error) {
	h, err := r.get()
	if err != nil {
		return nil, err
	}
	return readBlob("IDocRead2d_ReadTileData", func(tok, setSize, setData uintptr, info *native.ErrorInfo) int32 {
		return r.ex.Read2dReadTileData(h, pk, tok, setSize, setData, info)
	})
}

// ReadTileInfo returns the coordinate, position and blob description of the
// tile with key pk.
func (r *Reader2d) ReadTileInfo(pk int64) (TileInfo, error) {
	h, err := r.get()
	if err != nil {
		return TileInfo{}, err
	}
	coord := wire.NewCoordinateBuffer(wire.MaxDimensions)
	pos := make([]byte, wire.LogicalPosition2DSize)
	blobInfo := make([]byte, wire.TileBlobInfoSize)
	err = call("IDocRead2d_ReadTileInfo", func(info *native.ErrorInfo) int32 {
		return r.ex.Read2dReadTileInfo(h, pk, wire.Pointer(coord), wire.Pointer(pos), wire.Pointer(blobInfo), info)
	})
	if err != nil {
		return TileInfo{}, err
	}

	var ti TileInfo
	if err := ti.Coordinate.UnmarshalBinary(coord); err != nil {
		return TileInfo{}, err
	}
	if err := ti.Position.UnmarshalBinary(pos); err != nil {
		return TileInfo{}, err
	}
	if err := ti.Blob.UnmarshalBinary(blobInfo); err != nil {
		return TileInfo{}, err
	}
	return ti, nil
}

// TileDimensions returns the dimensions used by the document.
func (r *Reader2d) TileDimensions() ([]Dimension, error) {
	return info2d(r.ex).tileDimensions(&r.handle)
}

// MinMaxForTileDimensions returns the range of coordinate values per
// dimension. An interval with Min > Max means the document has no tiles.
func (r *Reader2d) MinMaxForTileDimensions(dims []Dimension) ([]Int32Interval, error) {
	return info2d(r.ex).minMaxForTileDimensions(&r.handle, dims)
}

// BoundingBox returns the union of the logical extents of all tiles. It is
// the zero rectangle for an empty document.
func (r *Reader2d) BoundingBox() (Rectangle, error) {
	h, err := r.get()
	if err != nil {
		return Rectangle{}, err
	}
	buf := make([]byte, wire.RectangleSize)
	err = call("IDocInfo_GetBoundingBoxForTiles", func(info *native.ErrorInfo) int32 {
		return r.ex.Info2dGetBoundingBox(h, wire.Pointer(buf), info)
	})
	if err != nil {
		return Rectangle{}, err
	}
	var rect Rectangle
	err = rect.UnmarshalBinary(buf)
	return rect, err
}

// TotalTileCount returns the number of tiles in the document.
func (r *Reader2d) TotalTileCount() (uint64, error) {
	return info2d(r.ex).totalTileCount(&r.handle)
}

// TileCountPerLayer returns the number of tiles on each pyramid level.
func (r *Reader2d) TileCountPerLayer() ([]LayerCount, error) {
	return info2d(r.ex).tileCountPerLayer(&r.handle)
}

// Reader3d queries and reads the bricks of a 3D document.
type Reader3d struct {
	handle
}

// Close releases the reader.
func (r *Reader3d) Close() error { return r.close() }

// Query returns the keys of bricks matching both clauses, at most maxResults of
// them. Either clause may be nil.
func (r *Reader3d) Query(dims *DimensionQueryClause, tileInfo *TileInfoQueryClause, maxResults int) (QueryResult, error) {
	return query("IDocRead3d_Query", &r.handle, nil, dims, tileInfo, maxResults,
		func(h native.Handle, _, d, t, result unsafe.Pointer, info *native.ErrorInfo) int32 {
			return r.ex.Read3dQuery(h, d, t, result, info)
		})
}

// BricksIntersectingCuboid returns bricks whose extent intersects c.
func (r *Reader3d) BricksIntersectingCuboid(c Cuboid, dims *DimensionQueryClause, tileInfo *TileInfoQueryClause, maxResults int) (QueryResult, error) {
	spatial, _ := c.MarshalBinary()
	return query("IDocRead3d_GetBricksIntersectingCuboid", &r.handle, spatial, dims, tileInfo, maxResults, r.ex.Read3dGetBricksIntersectingCuboid)
}

// BricksIntersectingPlane returns bricks the plane p passes through.
func (r *Reader3d) BricksIntersectingPlane(p Plane, dims *DimensionQueryClause, tileInfo *TileInfoQueryClause, maxResults int) (QueryResult, error) {
	spatial, _ := p.MarshalBinary()
	return query("IDocRead3d_GetBricksIntersectingPlane", &r.handle, spatial, dims, tileInfo, maxResults, r.ex.Read3dGetBricksIntersectingPlane)
}

// ReadBrickData returns the stored data of the brick with key pk.
func (r *Reader3d) ReadBrickData(pk int64) ([]byte, error) {
	h, err := r.get()
	if err != nil {
		return nil, err
	}
	return readBlob("IDocRead3d_ReadBrickData", func(tok, setSize, setData uintptr, info *native.ErrorInfo) int32 {
		return r.ex.Read3dReadBrickData(h, pk, tok, setSize, setData, info)
	})
}

// ReadBrickInfo returns the coordinate, position and blob description of the
// brick with key pk.
func (r *Reader3d) ReadBrickInfo(pk int64) (BrickInfo, error) {
	h, err := r.get()
	if err != nil {
		return BrickInfo{}, err
	}
	coord := wire.NewCoordinateBuffer(wire.MaxDimensions)
	pos := make([]byte, wire.LogicalPosition3DSize)
	blobInfo := make([]byte, wire.BrickBlobInfoSize)
	err = call("IDocRead3d_ReadBrickInfo", func(info *native.ErrorInfo) int32 {
		return r.ex.Read3dReadBrickInfo(h, pk, wire.Pointer(coord), wire.Pointer(pos), wire.Pointer(blobInfo), info)
	})
	if err != nil {
		return BrickInfo{}, err
	}

	var bi BrickInfo
	if err := bi.Coordinate.UnmarshalBinary(coord); err != nil {
		return BrickInfo{}, err
	}
	if err := bi.Position.UnmarshalBinary(pos); err != nil {
		return BrickInfo{}, err
	}
	if err := bi.Blob.UnmarshalBinary(blobInfo); err != nil {
		return BrickInfo{}, err
	}
	return bi, nil
}

// TileDimensions returns the dimensions used by the document.
func (r *Reader3d) TileDimensions() ([]Dimension, error) {
	return info3d(r.ex).tileDimensions(&r.handle)
}

// MinMaxForTileDimensions returns the range of coordinate values per
// dimension. An interval with Min > Max means the document has no bricks.
func (r *Reader3d) MinMaxForTileDimensions(dims []Dimension) ([]Int32Interval, error) {
	return info3d(r.ex).minMaxForTileDimensions(&r.handle, dims)
}

// BoundingBox returns the union of the extents of all bricks.
func (r *Reader3d) BoundingBox() (Cuboid, error) {
	h, err := r.get()
	if err != nil {
		return Cuboid{}, err
	}
	buf := make([]byte, wire.CuboidSize)
	err = call("IDocInfo3d_GetBoundingBoxForBricks", func(info *native.ErrorInfo) int32 {
		return r.ex.Info3dGetBoundingBox(h, wire.Pointer(buf), info)
	})
	if err != nil {
		return Cuboid{}, err
	}
	var c Cuboid
	err = c.UnmarshalBinary(buf)
	return c, err
}

// TotalTileCount returns the number of bricks in the document.
func (r *Reader3d) TotalTileCount() (uint64, error) {
	return info3d(r.ex).totalTileCount(&r.handle)
}

// TileCountPerLayer returns the number of bricks on each pyramid level.
func (r *Reader3d) TileCountPerLayer() ([]LayerCount, error) {
	return info3d(r.ex).tileCountPerLayer(&r.handle)
}
