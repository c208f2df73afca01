package fakeengine

import (
	"strings"
	"testing"
	"unsafe"

	"github.com/tinyrange/imgdoc/internal/native"
	"github.com/tinyrange/imgdoc/internal/wire"
)

func cstr(t *testing.T, s string) *byte {
	t.Helper()
	b, err := wire.CString(s)
	if err != nil {
		t.Fatal(err)
	}
	return &b[0]
}

func TestDestroyRejectsStaleHandle(t *testing.T) {
	e := New()
	ex := e.Exports()

	h := ex.CreateCreateOptions()
	if got := e.Live(native.KindCreateOptions); got != 1 {
		t.Fatalf("live = %d, want 1", got)
	}

	var info native.ErrorInfo
	if rc := ex.DestroyCreateOptions(h, &info); rc != 0 {
		t.Fatalf("destroy: rc=%d %s", rc, info.Text())
	}
	rc := ex.DestroyCreateOptions(h, &info)
	if native.Code(rc) != native.CodeInvalidHandle {
		t.Fatalf("second destroy: rc=%d, want invalid handle", rc)
	}
	if !strings.Contains(info.Text(), "unknown handle") {
		t.Fatalf("message = %q", info.Text())
	}
	if got := e.Live(native.KindCreateOptions); got != 0 {
		t.Fatalf("live = %d after destroy", got)
	}
}

func TestDestroyRejectsWrongKind(t *testing.T) {
	e := New()
	ex := e.Exports()

	h := ex.CreateOpenExistingOptions()
	var info native.ErrorInfo
	if rc := ex.DestroyCreateOptions(h, &info); native.Code(rc) != native.CodeInvalidHandle {
		t.Fatalf("rc = %d, want invalid handle", rc)
	}
	if e.Live(native.KindOpenExistingOptions) != 1 {
		t.Fatal("wrong-kind destroy released the object")
	}
}

func TestFailIsOneShot(t *testing.T) {
	e := New()
	ex := e.Exports()
	h := ex.CreateCreateOptions()

	e.Fail("CreateOptions_SetFilename", native.CodeUnspecified, "disk on fire")

	var info native.ErrorInfo
	rc := ex.CreateOptionsSetFilename(h, cstr(t, "a.db"), &info)
	if native.Code(rc) != native.CodeUnspecified || info.Text() != "disk on fire" {
		t.Fatalf("rc=%d msg=%q", rc, info.Text())
	}
	if rc := ex.CreateOptionsSetFilename(h, cstr(t, "a.db"), &info); rc != 0 {
		t.Fatalf("second call: rc=%d %s", rc, info.Text())
	}
}

func TestStatistics(t *testing.T) {
	e := New()
	ex := e.Exports()

	ex.CreateCreateOptions()
	ex.CreateCreateOptions()
	ex.CreateOpenExistingOptions()

	buf := make([]byte, wire.StatisticsSize)
	if rc := ex.GetStatistics(unsafe.Pointer(&buf[0])); rc != 0 {
		t.Fatalf("rc = %d", rc)
	}
	var stats wire.Statistics
	if err := stats.UnmarshalBinary(buf); err != nil {
		t.Fatal(err)
	}
	if stats.CreateOptionsObjects != 2 || stats.OpenExistingOptionsObjects != 1 || stats.DocumentObjects != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if rc := ex.GetStatistics(nil); native.Code(rc) != native.CodeInvalidArgument {
		t.Fatalf("nil output: rc = %d", rc)
	}
}

func TestCreateDocumentNeedsDimension(t *testing.T) {
	e := New()
	ex := e.Exports()
	opts := ex.CreateCreateOptions()

	var info native.ErrorInfo
	if rc := ex.CreateOptionsSetFilename(opts, cstr(t, "a.db"), &info); rc != 0 {
		t.Fatal(info.Text())
	}
	var doc native.Handle
	rc := ex.CreateNewDocument(opts, native.InvalidHandle, &doc, &info)
	if native.Code(rc) != native.CodeInvalidArgument {
		t.Fatalf("rc = %d, want invalid argument", rc)
	}

	if rc := ex.CreateOptionsAddDimension(opts, 'C', &info); rc != 0 {
		t.Fatal(info.Text())
	}
	if rc := ex.CreateNewDocument(opts, native.InvalidHandle, &doc, &info); rc != 0 {
		t.Fatalf("rc=%d %s", rc, info.Text())
	}
	if doc == native.InvalidHandle || e.Live(native.KindDocument) != 1 {
		t.Fatalf("doc = %#x, live = %d", uintptr(doc), e.Live(native.KindDocument))
	}
}
