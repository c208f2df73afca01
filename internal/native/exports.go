package native

import "unsafe"

// Exports is the engine's exported function table, bound to typed Go
// functions. Buffers are passed as unsafe.Pointer to byte slices encoded by
// package wire; the caller keeps them alive across the call.
//
// Every function returning int32 returns a status code and fills the
// trailing *ErrorInfo when that code is non-zero.
type Exports struct {
	GetStatistics func(out unsafe.Pointer) int32

	CreateEnvironmentObject  func(userParam, log, isLevelActive, fatal uintptr) Handle
	DestroyEnvironmentObject func(h Handle, info *ErrorInfo) int32

	CreateCreateOptions        func() Handle
	DestroyCreateOptions       func(h Handle, info *ErrorInfo) int32
	CreateOpenExistingOptions  func() Handle
	DestroyOpenExistingOptions func(h Handle, info *ErrorInfo) int32

	CreateOptionsSetFilename          func(h Handle, filename *byte, info *ErrorInfo) int32
	CreateOptionsGetFilename          func(h Handle, buf *byte, size *uintptr, info *ErrorInfo) int32
	CreateOptionsSetDocumentType      func(h Handle, docType uint8, info *ErrorInfo) int32
	CreateOptionsGetDocumentType      func(h Handle, docType *uint8, info *ErrorInfo) int32
	CreateOptionsSetUseSpatialIndex   func(h Handle, use bool, info *ErrorInfo) int32
	CreateOptionsGetUseSpatialIndex   func(h Handle, use *bool, info *ErrorInfo) int32
	CreateOptionsSetUseBlobTable      func(h Handle, use bool, info *ErrorInfo) int32
	CreateOptionsGetUseBlobTable      func(h Handle, use *bool, info *ErrorInfo) int32
	CreateOptionsAddDimension         func(h Handle, dim uint8, info *ErrorInfo) int32
	CreateOptionsAddIndexedDimension  func(h Handle, dim uint8, info *ErrorInfo) int32
	CreateOptionsGetDimensions        func(h Handle, dims *byte, count *uint32, info *ErrorInfo) int32
	CreateOptionsGetIndexedDimensions func(h Handle, dims *byte, count *uint32, info *ErrorInfo) int32
	OpenExistingOptionsSetFilename    func(h Handle, filename *byte, info *ErrorInfo) int32
	OpenExistingOptionsGetFilename    func(h Handle, buf *byte, size *uintptr, info *ErrorInfo) int32

	CreateNewDocument    func(opts, env Handle, doc *Handle, info *ErrorInfo) int32
	OpenExistingDocument func(opts, env Handle, doc *Handle, info *ErrorInfo) int32
	DestroyDocument      func(h Handle, info *ErrorInfo) int32

	DocGetReader2d  func(doc Handle, reader *Handle, info *ErrorInfo) int32
	DestroyReader2d func(h Handle, info *ErrorInfo) int32
	DocGetWriter2d  func(doc Handle, writer *Handle, info *ErrorInfo) int32
	DestroyWriter2d func(h Handle, info *ErrorInfo) int32
	DocGetReader3d  func(doc Handle, reader *Handle, info *ErrorInfo) int32
	DestroyReader3d func(h Handle, info *ErrorInfo) int32
	DocGetWriter3d  func(doc Handle, writer *Handle, info *ErrorInfo) int32
	DestroyWriter3d func(h Handle, info *ErrorInfo) int32

	Write2dAddTile             func(h Handle, coord, pos, baseInfo unsafe.Pointer, dataType uint8, data unsafe.Pointer, size uint64, pk *int64, info *ErrorInfo) int32
	Write2dBeginTransaction    func(h Handle, info *ErrorInfo) int32
	Write2dCommitTransaction   func(h Handle, info *ErrorInfo) int32
	Write2dRollbackTransaction func(h Handle, info *ErrorInfo) int32

	Write3dAddBrick            func(h Handle, coord, pos, baseInfo unsafe.Pointer, dataType uint8, data unsafe.Pointer, size uint64, pk *int64, info *ErrorInfo) int32
	Write3dBeginTransaction    func(h Handle, info *ErrorInfo) int32
	Write3dCommitTransaction   func(h Handle, info *ErrorInfo) int32
	Write3dRollbackTransaction func(h Handle, info *ErrorInfo) int32

	Read2dQuery                    func(h Handle, dimClause, tileInfoClause, result unsafe.Pointer, info *ErrorInfo) int32
	Read2dGetTilesIntersectingRect func(h Handle, rect, dimClause, tileInfoClause, result unsafe.Pointer, info *ErrorInfo) int32
	Read2dReadTileData             func(h Handle, pk int64, token, setSize, setData uintptr, info *ErrorInfo) int32
	Read2dReadTileInfo             func(h Handle, pk int64, coord, pos, blobInfo unsafe.Pointer, info *ErrorInfo) int32

	Read3dQuery                       func(h Handle, dimClause, tileInfoClause, result unsafe.Pointer, info *ErrorInfo) int32
	Read3dGetBricksIntersectingCuboid func(h Handle, cuboid, dimClause, tileInfoClause, result unsafe.Pointer, info *ErrorInfo) int32
	Read3dGetBricksIntersectingPlane  func(h Handle, plane, dimClause, tileInfoClause, result unsafe.Pointer, info *ErrorInfo) int32
	Read3dReadBrickData               func(h Handle, pk int64, token, setSize, setData uintptr, info *ErrorInfo) int32
	Read3dReadBrickInfo               func(h Handle, pk int64, coord, pos, blobInfo unsafe.Pointer, info *ErrorInfo) int32

	Info2dGetTileDimensions          func(h Handle, dims *byte, count *uint32, info *ErrorInfo) int32
	Info2dGetMinMaxForTileDimensions func(h Handle, dims *byte, count uint32, result unsafe.Pointer, info *ErrorInfo) int32
	Info2dGetBoundingBox             func(h Handle, rect unsafe.Pointer, info *ErrorInfo) int32
	Info2dGetTotalTileCount          func(h Handle, count *uint64, info *ErrorInfo) int32
	Info2dGetTileCountPerLayer       func(h Handle, result unsafe.Pointer, info *ErrorInfo) int32

	Info3dGetTileDimensions          func(h Handle, dims *byte, count *uint32, info *ErrorInfo) int32
	Info3dGetMinMaxForTileDimensions func(h Handle, dims *byte, count uint32, result unsafe.Pointer, info *ErrorInfo) int32
	Info3dGetBoundingBox             func(h Handle, cuboid unsafe.Pointer, info *ErrorInfo) int32
	Info3dGetTotalTileCount          func(h Handle, count *uint64, info *ErrorInfo) int32
	Info3dGetTileCountPerLayer       func(h Handle, result unsafe.Pointer, info *ErrorInfo) int32
}

// binding pairs an exported symbol name with the Exports field it binds to.
type binding struct {
	name string
	fn   any
}

func (e *Exports) bindings() []binding {
	return []binding{
		{"GetStatistics", &e.GetStatistics},

		{"CreateEnvironmentObject", &e.CreateEnvironmentObject},
		{"DestroyEnvironmentObject", &e.DestroyEnvironmentObject},

		{"CreateCreateOptions", &e.CreateCreateOptions},
		{"DestroyCreateOptions", &e.DestroyCreateOptions},
		{"CreateOpenExistingOptions", &e.CreateOpenExistingOptions},
		{"DestroyOpenExistingOptions", &e.DestroyOpenExistingOptions},

		{"CreateOptions_SetFilename", &e.CreateOptionsSetFilename},
		{"CreateOptions_GetFilename", &e.CreateOptionsGetFilename},
		{"CreateOptions_SetDocumentType", &e.CreateOptionsSetDocumentType},
		{"CreateOptions_GetDocumentType", &e.CreateOptionsGetDocumentType},
		{"CreateOptions_SetUseSpatialIndex", &e.CreateOptionsSetUseSpatialIndex},
		{"CreateOptions_GetUseSpatialIndex", &e.CreateOptionsGetUseSpatialIndex},
		{"CreateOptions_SetUseBlobTable", &e.CreateOptionsSetUseBlobTable},
		{"CreateOptions_GetUseBlobTable", &e.CreateOptionsGetUseBlobTable},
		{"CreateOptions_AddDimension", &e.CreateOptionsAddDimension},
		{"CreateOptions_AddIndexedDimension", &e.CreateOptionsAddIndexedDimension},
		{"CreateOptions_GetDimensions", &e.CreateOptionsGetDimensions},
		{"CreateOptions_GetIndexedDimensions", &e.CreateOptionsGetIndexedDimensions},
		{"OpenExistingOptions_SetFilename", &e.OpenExistingOptionsSetFilename},
		{"OpenExistingOptions_GetFilename", &e.OpenExistingOptionsGetFilename},

		{"CreateNewDocument", &e.CreateNewDocument},
		{"OpenExistingDocument", &e.OpenExistingDocument},
		{"DestroyDocument", &e.DestroyDocument},

		{"IDoc_GetReader2d", &e.DocGetReader2d},
		{"DestroyReader2d", &e.DestroyReader2d},
		{"IDoc_GetWriter2d", &e.DocGetWriter2d},
		{"DestroyWriter2d", &e.DestroyWriter2d},
		{"IDoc_GetReader3d", &e.DocGetReader3d},
		{"DestroyReader3d", &e.DestroyReader3d},
		{"IDoc_GetWriter3d", &e.DocGetWriter3d},
		{"DestroyWriter3d", &e.DestroyWriter3d},

		{"IDocWrite2d_AddTile", &e.Write2dAddTile},
		{"IDocWrite2d_BeginTransaction", &e.Write2dBeginTransaction},
		{"IDocWrite2d_CommitTransaction", &e.Write2dCommitTransaction},
		{"IDocWrite2d_RollbackTransaction", &e.Write2dRollbackTransaction},

		{"IDocWrite3d_AddBrick", &e.Write3dAddBrick},
		{"IDocWrite3d_BeginTransaction", &e.Write3dBeginTransaction},
		{"IDocWrite3d_CommitTransaction", &e.Write3dCommitTransaction},
		{"IDocWrite3d_RollbackTransaction", &e.Write3dRollbackTransaction},

		{"IDocRead2d_Query", &e.Read2dQuery},
		{"IDocRead2d_GetTilesIntersectingRect", &e.Read2dGetTilesIntersectingRect},
		{"IDocRead2d_ReadTileData", &e.Read2dReadTileData},
		{"IDocRead2d_ReadTileInfo", &e.Read2dReadTileInfo},

		{"IDocRead3d_Query", &e.Read3dQuery},
		{"IDocRead3d_GetBricksIntersectingCuboid", &e.Read3dGetBricksIntersectingCuboid},
		{"IDocRead3d_GetBricksIntersectingPlane", &e.Read3dGetBricksIntersectingPlane},
		{"IDocRead3d_ReadBrickData", &e.Read3dReadBrickData},
		{"IDocRead3d_ReadBrickInfo", &e.Read3dReadBrickInfo},

		{"IDocInfo_GetTileDimensions", &e.Info2dGetTileDimensions},
		{"IDocInfo_GetMinMaxForTileDimensions", &e.Info2dGetMinMaxForTileDimensions},
		{"IDocInfo_GetBoundingBoxForTiles", &e.Info2dGetBoundingBox},
		{"IDocInfo_GetTotalTileCount", &e.Info2dGetTotalTileCount},
		{"IDocInfo_GetTileCountPerLayer", &e.Info2dGetTileCountPerLayer},

		{"IDocInfo3d_GetTileDimensions", &e.Info3dGetTileDimensions},
		{"IDocInfo3d_GetMinMaxForTileDimensions", &e.Info3dGetMinMaxForTileDimensions},
		{"IDocInfo3d_GetBoundingBoxForBricks", &e.Info3dGetBoundingBox},
		{"IDocInfo3d_GetTotalTileCount", &e.Info3dGetTotalTileCount},
		{"IDocInfo3d_GetTileCountPerLayer", &e.Info3dGetTileCountPerLayer},
	}
}

// ExportNames lists every symbol the engine library must export.
func ExportNames() []string {
	var e Exports
	bs := e.bindings()
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = b.name
	}
	return names
}
