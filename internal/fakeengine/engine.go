// Package fakeengine is an in-memory stand-in for the imgdoc2 engine. It
// implements the exported function table in Go so the binding layer can be
// exercised without the native library.
//
// The engine follows the native contracts closely: handles are opaque
// integers, stale or wrong-kind handles are rejected with an error record,
// buffers are decoded from raw pointers and blobs are delivered through the
// caller's callbacks.
package fakeengine

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/tinyrange/imgdoc/internal/native"
	"github.com/tinyrange/imgdoc/internal/wire"
)

// DefaultChunkSize is how many bytes each SetData callback carries.
const DefaultChunkSize = 4096

// BlobFault makes ReadTileData/ReadBrickData misuse the blob callbacks
// while still reporting success.
type BlobFault int

const (
	BlobFaultNone BlobFault = iota
	BlobFaultSetSizeTwice
	BlobFaultOverrun
	BlobFaultDataBeforeSize
)

type fault struct {
	code native.Code
	msg  string
}

type object struct {
	kind  native.Kind
	value any
}

// Engine is a fake engine instance. Its zero value is not usable; use New.
type Engine struct {
	mu      sync.Mutex
	next    native.Handle
	objects map[native.Handle]*object
	live    [native.KindWriter3d + 1]uint32
	files   map[string]*document
	faults  map[string]fault

	// Invoker calls the callbacks handed to the engine.
	Invoker Invoker
	// ChunkSize limits the bytes per SetData callback.
	ChunkSize int
	// BlobFault selects a blob protocol violation to commit.
	BlobFault BlobFault
}

// New returns an empty engine.
func New() *Engine {
	return &Engine{
		next:      0x1000,
		objects:   make(map[native.Handle]*object),
		files:     make(map[string]*document),
		faults:    make(map[string]fault),
		Invoker:   SyscallInvoker{},
		ChunkSize: DefaultChunkSize,
	}
}

// Fail makes the next call to the named export fail with code and msg.
func (e *Engine) Fail(export string, code native.Code, msg string) {
	e.mu.Lock()
	e.faults[export] = fault{code: code, msg: msg}
	e.mu.Unlock()
}

// Live returns the number of live objects of kind k.
func (e *Engine) Live(k native.Kind) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return int(e.live[k])
}

// RaiseFatal reports a fatal error through the environment env.
func (e *Engine) RaiseFatal(env native.Handle, msg string) error {
	e.mu.Lock()
	obj, ok := e.objects[env]
	e.mu.Unlock()
	if !ok || obj.kind != native.KindEnvironment {
		return fmt.Errorf("fakeengine: %#x is not an environment", uintptr(env))
	}
	ev := obj.value.(*environment)
	if ev.fatal != 0 {
		e.Invoker.Fatal(ev.fatal, ev.userParam, msg)
	}
	return nil
}

// Exports returns a function table bound to e.
func (e *Engine) Exports() *native.Exports {
	return &native.Exports{
		GetStatistics: e.getStatistics,

		CreateEnvironmentObject:  e.createEnvironment,
		DestroyEnvironmentObject: e.destroyer("DestroyEnvironmentObject", native.KindEnvironment),

		CreateCreateOptions:        e.createCreateOptions,
		DestroyCreateOptions:       e.destroyer("DestroyCreateOptions", native.KindCreateOptions),
		CreateOpenExistingOptions:  e.createOpenExistingOptions,
		DestroyOpenExistingOptions: e.destroyer("DestroyOpenExistingOptions", native.KindOpenExistingOptions),

		CreateOptionsSetFilename:          e.createOptionsSetFilename,
		CreateOptionsGetFilename:          e.createOptionsGetFilename,
		CreateOptionsSetDocumentType:      e.createOptionsSetDocumentType,
		CreateOptionsGetDocumentType:      e.createOptionsGetDocumentType,
		CreateOptionsSetUseSpatialIndex:   e.createOptionsSetUseSpatialIndex,
		CreateOptionsGetUseSpatialIndex:   e.createOptionsGetUseSpatialIndex,
		CreateOptionsSetUseBlobTable:      e.createOptionsSetUseBlobTable,
		CreateOptionsGetUseBlobTable:      e.createOptionsGetUseBlobTable,
		CreateOptionsAddDimension:         e.createOptionsAddDimension,
		CreateOptionsAddIndexedDimension:  e.createOptionsAddIndexedDimension,
		CreateOptionsGetDimensions:        e.createOptionsGetDimensions,
		CreateOptionsGetIndexedDimensions: e.createOptionsGetIndexedDimensions,
		OpenExistingOptionsSetFilename:    e.openOptionsSetFilename,
		OpenExistingOptionsGetFilename:    e.openOptionsGetFilename,

		CreateNewDocument:    e.createNewDocument,
		OpenExistingDocument: e.openExistingDocument,
		DestroyDocument:      e.destroyer("DestroyDocument", native.KindDocument),

		DocGetReader2d:  e.accessor("IDoc_GetReader2d", native.KindReader2d),
		DestroyReader2d: e.destroyer("DestroyReader2d", native.KindReader2d),
		DocGetWriter2d:  e.accessor("IDoc_GetWriter2d", native.KindWriter2d),
		DestroyWriter2d: e.destroyer("DestroyWriter2d", native.KindWriter2d),
		DocGetReader3d:  e.accessor("IDoc_GetReader3d", native.KindReader3d),
		DestroyReader3d: e.destroyer("DestroyReader3d", native.KindReader3d),
		DocGetWriter3d:  e.accessor("IDoc_GetWriter3d", native.KindWriter3d),
		DestroyWriter3d: e.destroyer("DestroyWriter3d", native.KindWriter3d),

		Write2dAddTile:             e.addTile,
		Write2dBeginTransaction:    e.transaction("IDocWrite2d_BeginTransaction", native.KindWriter2d, (*document).begin),
		Write2dCommitTransaction:   e.transaction("IDocWrite2d_CommitTransaction", native.KindWriter2d, (*document).commit),
		Write2dRollbackTransaction: e.transaction("IDocWrite2d_RollbackTransaction", native.KindWriter2d, (*document).rollback),

		Write3dAddBrick:            e.addBrick,
		Write3dBeginTransaction:    e.transaction("IDocWrite3d_BeginTransaction", native.KindWriter3d, (*document).begin),
		Write3dCommitTransaction:   e.transaction("IDocWrite3d_CommitTransaction", native.KindWriter3d, (*document).commit),
		Write3dRollbackTransaction: e.transaction("IDocWrite3d_RollbackTransaction", native.KindWriter3d, (*document).rollback),

		Read2dQuery:                    e.query2d,
		Read2dGetTilesIntersectingRect: e.tilesIntersectingRect,
		Read2dReadTileData:             e.dataReader("IDocRead2d_ReadTileData", native.KindReader2d),
		Read2dReadTileInfo:             e.readTileInfo,

		Read3dQuery:                       e.query3d,
		Read3dGetBricksIntersectingCuboid: e.bricksIntersectingCuboid,
		Read3dGetBricksIntersectingPlane:  e.bricksIntersectingPlane,
		Read3dReadBrickData:               e.dataReader("IDocRead3d_ReadBrickData", native.KindReader3d),
		Read3dReadBrickInfo:               e.readBrickInfo,

		Info2dGetTileDimensions:          e.tileDimensions("IDocInfo_GetTileDimensions", native.KindReader2d),
		Info2dGetMinMaxForTileDimensions: e.minMax("IDocInfo_GetMinMaxForTileDimensions", native.KindReader2d),
		Info2dGetBoundingBox:             e.boundingBox2d,
		Info2dGetTotalTileCount:          e.totalCount("IDocInfo_GetTotalTileCount", native.KindReader2d),
		Info2dGetTileCountPerLayer:       e.countPerLayer("IDocInfo_GetTileCountPerLayer", native.KindReader2d),

		Info3dGetTileDimensions:          e.tileDimensions("IDocInfo3d_GetTileDimensions", native.KindReader3d),
		Info3dGetMinMaxForTileDimensions: e.minMax("IDocInfo3d_GetMinMaxForTileDimensions", native.KindReader3d),
		Info3dGetBoundingBox:             e.boundingBox3d,
		Info3dGetTotalTileCount:          e.totalCount("IDocInfo3d_GetTotalTileCount", native.KindReader3d),
		Info3dGetTileCountPerLayer:       e.countPerLayer("IDocInfo3d_GetTileCountPerLayer", native.KindReader3d),
	}
}

// status fills info and returns code.
func status(info *native.ErrorInfo, code native.Code, format string, args ...any) int32 {
	if info != nil {
		info.Set(fmt.Sprintf(format, args...))
	}
	return int32(code)
}

// enter takes the engine lock and applies a pending fault for export. The
// lock is held on return; a non-zero code means the call must fail.
func (e *Engine) enter(export string, info *native.ErrorInfo) int32 {
	e.mu.Lock()
	if f, ok := e.faults[export]; ok {
		delete(e.faults, export)
		return status(info, f.code, "%s", f.msg)
	}
	return 0
}

func (e *Engine) add(kind native.Kind, value any) native.Handle {
	h := e.next
	e.next++
	e.objects[h] = &object{kind: kind, value: value}
	e.live[kind]++
	return h
}

// lookup resolves h, which must be of kind k. Callers hold e.mu.
func (e *Engine) lookup(h native.Handle, k native.Kind, info *native.ErrorInfo) (any, int32) {
	obj, ok := e.objects[h]
	if !ok {
		return nil, status(info, native.CodeInvalidHandle, "unknown handle %#x", uintptr(h))
	}
	if obj.kind != k {
		return nil, status(info, native.CodeInvalidHandle, "handle %#x is a %s, not a %s", uintptr(h), obj.kind, k)
	}
	return obj.value, 0
}

func (e *Engine) destroyer(export string, k native.Kind) func(native.Handle, *native.ErrorInfo) int32 {
	return func(h native.Handle, info *native.ErrorInfo) int32 {
		rc := e.enter(export, info)
		defer e.mu.Unlock()
		if rc != 0 {
			return rc
		}

		if _, rc := e.lookup(h, k, info); rc != 0 {
			return rc
		}
		delete(e.objects, h)
		e.live[k]--
		return 0
	}
}

func (e *Engine) getStatistics(out unsafe.Pointer) int32 {
	e.mu.Lock()
	stats := wire.Statistics{
		EnvironmentObjects:         e.live[native.KindEnvironment],
		CreateOptionsObjects:       e.live[native.KindCreateOptions],
		OpenExistingOptionsObjects: e.live[native.KindOpenExistingOptions],
		DocumentObjects:            e.live[native.KindDocument],
		Reader2dObjects:            e.live[native.KindReader2d],
		Reader3dObjects:            e.live[native.KindReader3d],
		Writer2dObjects:            e.live[native.KindWriter2d],
		Writer3dObjects:            e.live[native.KindWriter3d],
	}
	e.mu.Unlock()

	if out == nil {
		return int32(native.CodeInvalidArgument)
	}
	b, _ := stats.MarshalBinary()
	copy(view(out, wire.StatisticsSize), b)
	return 0
}

// view exposes n bytes at p.
func view(p unsafe.Pointer, n int) []byte {
	if p == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), n)
}

// prefixed exposes a count-prefixed buffer at p: a 4-byte count followed by
// count records of recordSize bytes.
func prefixed(p unsafe.Pointer, headerSize, recordSize int) []byte {
	if p == nil {
		return nil
	}
	n := int(*(*uint32)(p))
	return unsafe.Slice((*byte)(p), headerSize+n*recordSize)
}
