package fakeengine

import (
	"fmt"
	"slices"
	"unsafe"

	"github.com/tinyrange/imgdoc/internal/native"
	"github.com/tinyrange/imgdoc/internal/wire"
)

type tile struct {
	pk       int64
	coord    wire.TileCoordinate
	pos2d    wire.LogicalPosition2D
	pos3d    wire.LogicalPosition3D
	base2d   wire.TileBaseInfo
	base3d   wire.BrickBaseInfo
	dataType wire.DataType
	data     []byte
}

func (t *tile) level(is3d bool) int32 {
	if is3d {
		return t.pos3d.PyramidLevel
	}
	return t.pos2d.PyramidLevel
}

type document struct {
	filename string
	is3d     bool
	dims     []wire.Dimension
	tiles    []*tile
	nextPK   int64

	inTransaction bool
	mark          int
}

// access is what document, reader and writer handles resolve to.
type access struct {
	doc *document
	env *environment
}

func (d *document) begin() (native.Code, string) {
	if d.inTransaction {
		return native.CodeInvalidArgument, "a transaction is already pending"
	}
	d.inTransaction = true
	d.mark = len(d.tiles)
	return native.CodeOK, ""
}

func (d *document) commit() (native.Code, string) {
	if !d.inTransaction {
		return native.CodeInvalidArgument, "no transaction is pending"
	}
	d.inTransaction = false
	return native.CodeOK, ""
}

func (d *document) rollback() (native.Code, string) {
	if !d.inTransaction {
		return native.CodeInvalidArgument, "no transaction is pending"
	}
	d.tiles = d.tiles[:d.mark]
	d.inTransaction = false
	return native.CodeOK, ""
}

func (d *document) find(pk int64) *tile {
	for _, t := range d.tiles {
		if t.pk == pk {
			return t
		}
	}
	return nil
}

func (d *document) hasDimension(dim wire.Dimension) bool {
	return slices.Contains(d.dims, dim)
}

// resolveEnv looks up an optional environment handle. Callers hold e.mu.
func (e *Engine) resolveEnv(h native.Handle, info *native.ErrorInfo) (*environment, int32) {
	if h == native.InvalidHandle {
		return nil, 0
	}
	v, rc := e.lookup(h, native.KindEnvironment, info)
	if rc != 0 {
		return nil, rc
	}
	return v.(*environment), 0
}

func (e *Engine) createNewDocument(opts, env native.Handle, doc *native.Handle, info *native.ErrorInfo) int32 {
	rc := e.enter("CreateNewDocument", info)
	defer e.mu.Unlock()
	if rc != 0 {
		return rc
	}
	if doc == nil {
		return status(info, native.CodeInvalidArgument, "document output is null")
	}
	v, rc := e.lookup(opts, native.KindCreateOptions, info)
	if rc != 0 {
		return rc
	}
	ev, rc := e.resolveEnv(env, info)
	if rc != 0 {
		return rc
	}

	o := v.(*createOptions)
	if o.filename == "" {
		return status(info, native.CodeInvalidArgument, "no filename given")
	}
	if len(o.dims) == 0 {
		return status(info, native.CodeInvalidArgument, "document needs at least one dimension")
	}
	for _, d := range o.indexed {
		if !slices.Contains(o.dims, d) {
			return status(info, native.CodeInvalidArgument, "indexed dimension %s is not a document dimension", d)
		}
	}

	d := &document{
		filename: o.filename,
		is3d:     o.docType == native.DocumentTypeImage3d,
		dims:     slices.Clone(o.dims),
		nextPK:   1,
	}
	e.files[o.filename] = d
	*doc = e.add(native.KindDocument, &access{doc: d, env: ev})
	e.logf(ev, native.LogInfo, fmt.Sprintf("created document %q", o.filename))
	return 0
}

func (e *Engine) openExistingDocument(opts, env native.Handle, doc *native.Handle, info *native.ErrorInfo) int32 {
	rc := e.enter("OpenExistingDocument", info)
	defer e.mu.Unlock()
	if rc != 0 {
		return rc
	}
	if doc == nil {
		return status(info, native.CodeInvalidArgument, "document output is null")
	}
	v, rc := e.lookup(opts, native.KindOpenExistingOptions, info)
	if rc != 0 {
		return rc
	}
	ev, rc := e.resolveEnv(env, info)
	if rc != 0 {
		return rc
	}

	o := v.(*openOptions)
	d, ok := e.files[o.filename]
	if !ok {
		return status(info, native.CodeInvalidArgument, "no such document %q", o.filename)
	}
	*doc = e.add(native.KindDocument, &access{doc: d, env: ev})
	e.logf(ev, native.LogInfo, fmt.Sprintf("opened document %q", o.filename))
	return 0
}

// accessor returns an IDoc_Get* export creating an object of kind k.
func (e *Engine) accessor(export string, k native.Kind) func(native.Handle, *native.Handle, *native.ErrorInfo) int32 {
	want3d := k == native.KindReader3d || k == native.KindWriter3d
	return func(doc native.Handle, out *native.Handle, info *native.ErrorInfo) int32 {
		rc := e.enter(export, info)
		defer e.mu.Unlock()
		if rc != 0 {
			return rc
		}
		if out == nil {
			return status(info, native.CodeInvalidArgument, "output is null")
		}
		v, rc := e.lookup(doc, native.KindDocument, info)
		if rc != 0 {
			return rc
		}
		a := v.(*access)
		if a.doc.is3d != want3d {
			return status(info, native.CodeInvalidArgument, "document %q does not support a %s", a.doc.filename, k)
		}
		*out = e.add(k, &access{doc: a.doc, env: a.env})
		return 0
	}
}

func (e *Engine) transaction(export string, k native.Kind, op func(*document) (native.Code, string)) func(native.Handle, *native.ErrorInfo) int32 {
	return func(h native.Handle, info *native.ErrorInfo) int32 {
		rc := e.enter(export, info)
		defer e.mu.Unlock()
		if rc != 0 {
			return rc
		}
		v, rc := e.lookup(h, k, info)
		if rc != 0 {
			return rc
		}
		if code, msg := op(v.(*access).doc); code != native.CodeOK {
			return status(info, code, "%s", msg)
		}
		return 0
	}
}

func (e *Engine) decodeCoordinate(d *document, p unsafe.Pointer, info *native.ErrorInfo) (wire.TileCoordinate, int32) {
	var coord wire.TileCoordinate
	if p == nil {
		return coord, status(info, native.CodeInvalidArgument, "coordinate is null")
	}
	if err := coord.UnmarshalBinary(prefixed(p, 4, wire.CoordinateRecordSize)); err != nil {
		return coord, status(info, native.CodeInvalidArgument, "coordinate: %v", err)
	}
	for _, entry := range coord.Entries() {
		if !d.hasDimension(entry.Dimension) {
			return coord, status(info, native.CodeInvalidArgument, "dimension %s is not used by the document", entry.Dimension)
		}
	}
	if coord.Len() != len(d.dims) {
		return coord, status(info, native.CodeInvalidArgument, "coordinate %s does not cover all %d dimensions", coord, len(d.dims))
	}
	return coord, 0
}

func checkData(dataType uint8, size, uncompressed uint64, info *native.ErrorInfo) int32 {
	switch wire.DataType(dataType) {
	case wire.DataZero:
		if size != 0 {
			return status(info, native.CodeInvalidArgument, "zero tile carries %d bytes", size)
		}
	case wire.DataUncompressedBitmap, wire.DataUncompressedBrick:
		if size != uncompressed {
			return status(info, native.CodeInvalidArgument, "expected %d bytes of pixel data, got %d", uncompressed, size)
		}
	case wire.DataJpgXrCompressedBitmap, wire.DataZstd0CompressedBitmap, wire.DataZstd1CompressedBitmap:
	default:
		return status(info, native.CodeInvalidArgument, "unknown data type %d", dataType)
	}
	return 0
}

func (e *Engine) store(a *access, t *tile, pk *int64) {
	d := a.doc
	t.pk = d.nextPK
	d.nextPK++
	d.tiles = append(d.tiles, t)
	if pk != nil {
		*pk = t.pk
	}
	e.logf(a.env, native.LogDebug, fmt.Sprintf("added tile %d at %s", t.pk, t.coord))
}

func (e *Engine) addTile(h native.Handle, coord, pos, baseInfo unsafe.Pointer, dataType uint8, data unsafe.Pointer, size uint64, pk *int64, info *native.ErrorInfo) int32 {
	rc := e.enter("IDocWrite2d_AddTile", info)
	defer e.mu.Unlock()
	if rc != 0 {
		return rc
	}
	v, rc := e.lookup(h, native.KindWriter2d, info)
	if rc != 0 {
		return rc
	}
	a := v.(*access)

	t := &tile{dataType: wire.DataType(dataType)}
	if t.coord, rc = e.decodeCoordinate(a.doc, coord, info); rc != 0 {
		return rc
	}
	if pos == nil || baseInfo == nil {
		return status(info, native.CodeInvalidArgument, "position and base info are required")
	}
	if err := t.pos2d.UnmarshalBinary(view(pos, wire.LogicalPosition2DSize)); err != nil {
		return status(info, native.CodeInvalidArgument, "position: %v", err)
	}
	if err := t.base2d.UnmarshalBinary(view(baseInfo, wire.TileBaseInfoSize)); err != nil {
		return status(info, native.CodeInvalidArgument, "base info: %v", err)
	}
	if t.base2d.PixelType.BytesPerPixel() == 0 {
		return status(info, native.CodeInvalidPixelType, "pixel type %d", uint8(t.base2d.PixelType))
	}
	if rc := checkData(dataType, size, t.base2d.UncompressedSize(), info); rc != 0 {
		return rc
	}
	t.data = slices.Clone(view(data, int(size)))
	e.store(a, t, pk)
	return 0
}

func (e *Engine) addBrick(h native.Handle, coord, pos, baseInfo unsafe.Pointer, dataType uint8, data unsafe.Pointer, size uint64, pk *int64, info *native.ErrorInfo) int32 {
	rc := e.enter("IDocWrite3d_AddBrick", info)
	defer e.mu.Unlock()
	if rc != 0 {
		return rc
	}
	v, rc := e.lookup(h, native.KindWriter3d, info)
	if rc != 0 {
		return rc
	}
	a := v.(*access)

	t := &tile{dataType: wire.DataType(dataType)}
	if t.coord, rc = e.decodeCoordinate(a.doc, coord, info); rc != 0 {
		return rc
	}
	if pos == nil || baseInfo == nil {
		return status(info, native.CodeInvalidArgument, "position and base info are required")
	}
	if err := t.pos3d.UnmarshalBinary(view(pos, wire.LogicalPosition3DSize)); err != nil {
		return status(info, native.CodeInvalidArgument, "position: %v", err)
	}
	if err := t.base3d.UnmarshalBinary(view(baseInfo, wire.BrickBaseInfoSize)); err != nil {
		return status(info, native.CodeInvalidArgument, "base info: %v", err)
	}
	if t.base3d.PixelType.BytesPerPixel() == 0 {
		return status(info, native.CodeInvalidPixelType, "pixel type %d", uint8(t.base3d.PixelType))
	}
	if rc := checkData(dataType, size, t.base3d.UncompressedSize(), info); rc != 0 {
		return rc
	}
	t.data = slices.Clone(view(data, int(size)))
	e.store(a, t, pk)
	return 0
}
