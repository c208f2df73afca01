package imgdoc

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/tinyrange/imgdoc/internal/blob"
	"github.com/tinyrange/imgdoc/internal/fakeengine"
	"github.com/tinyrange/imgdoc/internal/native"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Addresses handed to the fake engine in place of real trampolines.
const (
	fakeSetSize uintptr = 0x51
	fakeSetData uintptr = 0x52
	fakeLog     uintptr = 0x61
	fakeActive  uintptr = 0x62
	fakeFatal   uintptr = 0x63
)

// directInvoker dispatches the fake engine's callbacks straight to the Go
// callback bodies.
type directInvoker struct{}

func (directInvoker) SetSize(fn, tok uintptr, size uint64) bool {
	return fn == fakeSetSize && blob.OnSetSize(tok, uintptr(size)) != 0
}

func (directInvoker) SetData(fn, tok uintptr, offset uint64, data []byte) bool {
	return fn == fakeSetData && blob.OnSetData(tok, uintptr(offset), uintptr(len(data)), first(data)) != 0
}

func (directInvoker) Log(fn, userParam uintptr, level native.LogLevel, msg string) {
	if fn == fakeLog {
		onLog(userParam, uintptr(level), first(append([]byte(msg), 0)))
	}
}

func (directInvoker) IsLevelActive(fn, userParam uintptr, level native.LogLevel) bool {
	return fn == fakeActive && onIsLevelActive(userParam, uintptr(level)) != 0
}

func (directInvoker) Fatal(fn, userParam uintptr, msg string) {
	if fn == fakeFatal {
		onFatal(userParam, first(append([]byte(msg), 0)))
	}
}

func newFake(t *testing.T) *fakeengine.Engine {
	t.Helper()

	eng := fakeengine.New()
	eng.Invoker = directInvoker{}
	eng.ChunkSize = 7
	ex := eng.Exports()

	oldLoad, oldBlob, oldLog := loadExports, blobTrampolines, logTrampolines
	loadExports = func() (*native.Exports, error) { return ex, nil }
	blobTrampolines = func() (uintptr, uintptr) { return fakeSetSize, fakeSetData }
	logTrampolines = func() (uintptr, uintptr, uintptr) { return fakeLog, fakeActive, fakeFatal }
	t.Cleanup(func() {
		loadExports, blobTrampolines, logTrampolines = oldLoad, oldBlob, oldLog
	})
	return eng
}

func newDocument(t *testing.T, name, dims string, typ DocumentType, env *Environment) *Document {
	t.Helper()

	opts, err := NewCreateOptions()
	if err != nil {
		t.Fatalf("NewCreateOptions: %v", err)
	}
	defer opts.Close()

	if err := opts.SetFilename(name); err != nil {
		t.Fatalf("SetFilename: %v", err)
	}
	if err := opts.SetDocumentType(typ); err != nil {
		t.Fatalf("SetDocumentType: %v", err)
	}
	parsed, err := ParseDimensions(dims)
	if err != nil {
		t.Fatalf("ParseDimensions: %v", err)
	}
	for _, d := range parsed {
		if err := opts.AddDimension(d); err != nil {
			t.Fatalf("AddDimension(%s): %v", d, err)
		}
	}

	doc, err := CreateNew(opts, env)
	if err != nil {
		t.Fatalf("CreateNew: %v", err)
	}
	return doc
}

func mustClose(t *testing.T, c interface{ Close() error }) {
	t.Helper()
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestStatisticsReturnToBaseline(t *testing.T) {
	newFake(t)

	before, err := GetStatistics()
	if err != nil {
		t.Fatalf("GetStatistics: %v", err)
	}
	if before != (Statistics{}) {
		t.Fatalf("fresh engine has live objects: %+v", before)
	}

	env, err := NewEnvironment(nil)
	if err != nil {
		t.Fatalf("NewEnvironment: %v", err)
	}
	doc := newDocument(t, "stats.db", "CT", DocumentType2d, env)
	r, err := doc.Reader2d()
	if err != nil {
		t.Fatalf("Reader2d: %v", err)
	}
	w, err := doc.Writer2d()
	if err != nil {
		t.Fatalf("Writer2d: %v", err)
	}

	during, err := GetStatistics()
	if err != nil {
		t.Fatalf("GetStatistics: %v", err)
	}
	want := Statistics{EnvironmentObjects: 1, DocumentObjects: 1, Reader2dObjects: 1, Writer2dObjects: 1}
	if during != want {
		t.Fatalf("during = %+v, want %+v", during, want)
	}

	mustClose(t, w)
	mustClose(t, r)
	mustClose(t, doc)
	mustClose(t, env)

	after, err := GetStatistics()
	if err != nil {
		t.Fatalf("GetStatistics: %v", err)
	}
	if after != before {
		t.Fatalf("after = %+v, want %+v", after, before)
	}
}

func TestCloseTwice(t *testing.T) {
	eng := newFake(t)

	opts, err := NewCreateOptions()
	if err != nil {
		t.Fatal(err)
	}
	mustClose(t, opts)
	if err := opts.Close(); !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("second Close = %v, want ErrAlreadyClosed", err)
	}
	if err := opts.SetFilename("x.db"); !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("SetFilename after Close = %v, want ErrAlreadyClosed", err)
	}
	if n := eng.Live(native.KindCreateOptions); n != 0 {
		t.Fatalf("%d create options alive", n)
	}
}

func TestDestroyWrongKind(t *testing.T) {
	eng := newFake(t)
	doc := newDocument(t, "kind.db", "C", DocumentType2d, nil)
	defer mustClose(t, doc)

	// A reader that actually holds a document handle.
	fake := &Reader2d{}
	fake.init(doc.ex, doc.h, "DestroyReader2d", doc.ex.DestroyReader2d)

	err := fake.Close()
	if !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("Close = %v, want ErrInvalidHandle", err)
	}
	var nerr *NativeError
	if !errors.As(err, &nerr) || nerr.Op != "DestroyReader2d" || nerr.Message == "" {
		t.Fatalf("error = %#v", err)
	}
	if n := eng.Live(native.KindDocument); n != 1 {
		t.Fatalf("document count = %d, want 1", n)
	}
}

func TestDestroyFailureForgetsHandle(t *testing.T) {
	eng := newFake(t)
	doc := newDocument(t, "fail.db", "C", DocumentType2d, nil)

	eng.Fail("DestroyDocument", native.CodeUnspecified, "disk full")
	err := doc.Close()
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("Close = %v, want the engine's message", err)
	}
	if err := doc.Close(); !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("second Close = %v, want ErrAlreadyClosed", err)
	}
}

func TestNotOperational(t *testing.T) {
	newFake(t)
	loadExports = func() (*native.Exports, error) {
		return nil, fmt.Errorf("%w: %w", native.ErrNotOperational, native.ErrLibraryNotFound)
	}

	if _, err := NewCreateOptions(); !errors.Is(err, ErrNotOperational) {
		t.Fatalf("NewCreateOptions = %v, want ErrNotOperational", err)
	}
	if _, err := NewEnvironment(nil); !errors.Is(err, ErrNotOperational) {
		t.Fatalf("NewEnvironment = %v, want ErrNotOperational", err)
	}
	if _, err := GetStatistics(); !errors.Is(err, ErrNotOperational) {
		t.Fatalf("GetStatistics = %v, want ErrNotOperational", err)
	}
}

func TestCreateOptionsProperties(t *testing.T) {
	newFake(t)

	opts, err := NewCreateOptions()
	if err != nil {
		t.Fatal(err)
	}
	defer mustClose(t, opts)

	// Longer than the first buffer guess, with multi-byte runes.
	name := strings.Repeat("ü", 200) + ".db"
	if err := opts.SetFilename(name); err != nil {
		t.Fatalf("SetFilename: %v", err)
	}
	got, err := opts.Filename()
	if err != nil || got != name {
		t.Fatalf("Filename = %q, %v", got, err)
	}

	if err := opts.SetDocumentType(DocumentType3d); err != nil {
		t.Fatal(err)
	}
	if typ, err := opts.DocumentType(); err != nil || typ != DocumentType3d {
		t.Fatalf("DocumentType = %v, %v", typ, err)
	}

	if err := opts.SetUseSpatialIndex(true); err != nil {
		t.Fatal(err)
	}
	if use, err := opts.UseSpatialIndex(); err != nil || !use {
		t.Fatalf("UseSpatialIndex = %v, %v", use, err)
	}
	if use, err := opts.UseBlobTable(); err != nil || use {
		t.Fatalf("UseBlobTable = %v, %v", use, err)
	}

	dims, _ := ParseDimensions("ZCT")
	for _, d := range dims {
		if err := opts.AddDimension(d); err != nil {
			t.Fatal(err)
		}
	}
	if err := opts.AddIndexedDimension(dims[1]); err != nil {
		t.Fatal(err)
	}
	gotDims, err := opts.Dimensions()
	if err != nil || fmt.Sprint(gotDims) != fmt.Sprint(dims) {
		t.Fatalf("Dimensions = %v, %v", gotDims, err)
	}
	indexed, err := opts.IndexedDimensions()
	if err != nil || len(indexed) != 1 || indexed[0] != dims[1] {
		t.Fatalf("IndexedDimensions = %v, %v", indexed, err)
	}

	if err := opts.AddDimension(dims[0]); !errors.Is(err, native.ErrInvalidArgument) {
		t.Fatalf("duplicate AddDimension = %v", err)
	}
	if err := opts.AddDimension(Dimension('1')); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("AddDimension('1') = %v", err)
	}
	if err := opts.SetFilename("a\x00b"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("SetFilename with NUL = %v", err)
	}
}

func TestNilOptions(t *testing.T) {
	newFake(t)

	if _, err := CreateNew(nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("CreateNew(nil) = %v, want ErrInvalidArgument", err)
	}
	if _, err := OpenExisting(nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("OpenExisting(nil) = %v, want ErrInvalidArgument", err)
	}
}

func TestOpenExisting(t *testing.T) {
	newFake(t)

	doc := newDocument(t, "reopen.db", "C", DocumentType2d, nil)
	mustClose(t, doc)

	opts, err := NewOpenExistingOptions()
	if err != nil {
		t.Fatal(err)
	}
	defer mustClose(t, opts)

	if err := opts.SetFilename("reopen.db"); err != nil {
		t.Fatal(err)
	}
	if name, err := opts.Filename(); err != nil || name != "reopen.db" {
		t.Fatalf("Filename = %q, %v", name, err)
	}
	again, err := OpenExisting(opts, nil)
	if err != nil {
		t.Fatalf("OpenExisting: %v", err)
	}
	mustClose(t, again)

	if err := opts.SetFilename("missing.db"); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenExisting(opts, nil); !errors.Is(err, native.ErrInvalidArgument) {
		t.Fatalf("OpenExisting(missing) = %v", err)
	}
}

func TestReaderKindMismatch(t *testing.T) {
	eng := newFake(t)
	doc := newDocument(t, "flat.db", "C", DocumentType2d, nil)
	defer mustClose(t, doc)

	if _, err := doc.Reader3d(); err == nil {
		t.Fatal("Reader3d on a 2D document succeeded")
	}
	if n := eng.Live(native.KindReader3d); n != 0 {
		t.Fatalf("%d 3D readers leaked", n)
	}
}
