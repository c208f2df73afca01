package imgdoc

import (
	"github.com/tinyrange/imgdoc/internal/native"
	"github.com/tinyrange/imgdoc/internal/wire"
)

// Writer2d adds tiles to a 2D document.
type Writer2d struct {
	handle
}

// Close releases the writer.
func (w *Writer2d) Close() error { return w.close() }

// AddTile stores a tile and returns its key.
func (w *Writer2d) AddTile(coord TileCoordinate, pos LogicalPosition2D, base TileBaseInfo, dataType DataType, data []byte) (int64, error) {
	const op = "IDocWrite2d_AddTile"
	h, err := w.get()
	if err != nil {
		return 0, err
	}
	c, err := coord.MarshalBinary()
	if err != nil {
		return 0, invalidArgument(op, err)
	}
	p, _ := pos.MarshalBinary()
	b, _ := base.MarshalBinary()

	var pk int64
	err = call(op, func(info *native.ErrorInfo) int32 {
		return w.ex.Write2dAddTile(h, wire.Pointer(c), wire.Pointer(p), wire.Pointer(b), uint8(dataType), wire.Pointer(data), uint64(len(data)), &pk, info)
	})
	return pk, err
}

// BeginTransaction starts a transaction. Tiles added until Commit or
// Rollback become visible together.
func (w *Writer2d) BeginTransaction() error {
	return transact("IDocWrite2d_BeginTransaction", &w.handle, w.ex.Write2dBeginTransaction)
}

// CommitTransaction commits the pending transaction.
func (w *Writer2d) CommitTransaction() error {
	return transact("IDocWrite2d_CommitTransaction", &w.handle, w.ex.Write2dCommitTransaction)
}

// RollbackTransaction discards the tiles added in the pending transaction.
func (w *Writer2d) RollbackTransaction() error {
	return transact("IDocWrite2d_RollbackTransaction", &w.handle, w.ex.Write2dRollbackTransaction)
}

// Writer3d adds bricks to a 3D document.
type Writer3d struct {
	handle
}

// Close releases the writer.
func (w *Writer3d) Close() error { return w.close() }

// AddBrick stores a brick and returns its key.
func (w *Writer3d) AddBrick(coord TileCoordinate, pos LogicalPosition3D, base BrickBaseInfo, dataType DataType, data []byte) (int64, error) {
	const op = "IDocWrite3d_AddBrick"
	h, err := w.get()
	if err != nil {
		return 0, err
	}
	c, err := coord.MarshalBinary()
	if err != nil {
		return 0, invalidArgument(op, err)
	}
	p, _ := pos.MarshalBinary()
	b, _ := base.MarshalBinary()

	var pk int64
	err = call(op, func(info *native.ErrorInfo) int32 {
		return w.ex.Write3dAddBrick(h, wire.Pointer(c), wire.Pointer(p), wire.Pointer(b), uint8(dataType), wire.Pointer(data), uint64(len(data)), &pk, info)
	})
	return pk, err
}

// BeginTransaction starts a transaction.
func (w *Writer3d) BeginTransaction() error {
	return transact("IDocWrite3d_BeginTransaction", &w.handle, w.ex.Write3dBeginTransaction)
}

// CommitTransaction commits the pending transaction.
func (w *Writer3d) CommitTransaction() error {
	return transact("IDocWrite3d_CommitTransaction", &w.handle, w.ex.Write3dCommitTransaction)
}

// RollbackTransaction discards the bricks added in the pending transaction.
func (w *Writer3d) RollbackTransaction() error {
	return transact("IDocWrite3d_RollbackTransaction", &w.handle, w.ex.Write3dRollbackTransaction)
}

func transact(op string, w *handle, fn func(native.Handle, *native.ErrorInfo) int32) error {
	h, err := w.get()
	if err != nil {
		return err
	}
	return call(op, func(info *native.ErrorInfo) int32 {
		return fn(h, info)
	})
}
