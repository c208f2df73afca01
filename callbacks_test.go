package imgdoc

import (
	"bytes"
	"errors"
	"log/slog"
	"runtime"
	"strings"
	"testing"

	"github.com/tinyrange/imgdoc/internal/blob"
	"github.com/tinyrange/imgdoc/internal/fakeengine"
	"github.com/tinyrange/imgdoc/internal/native"
)

// newCallbackEngine returns a fake engine that calls back through the real
// process-wide trampolines with its default invoker.
func newCallbackEngine(t *testing.T) *fakeengine.Engine {
	t.Helper()
	if runtime.GOARCH != "amd64" && runtime.GOARCH != "arm64" {
		t.Skipf("native callbacks are not supported on %s", runtime.GOARCH)
	}

	eng := fakeengine.New()
	if _, ok := eng.Invoker.(fakeengine.SyscallInvoker); !ok {
		t.Fatalf("default invoker is %T", eng.Invoker)
	}
	ex := eng.Exports()

	oldLoad := loadExports
	loadExports = func() (*native.Exports, error) { return ex, nil }
	t.Cleanup(func() { loadExports = oldLoad })
	return eng
}

func TestReadTileDataThroughTrampolines(t *testing.T) {
	newCallbackEngine(t)
	r, w := open2d(t, "trampoline.db", "C")

	const width, height = 50, 100
	data := make([]byte, width*height*3)
	for i := range data {
		data[i] = byte(i * 7)
	}
	pk, err := w.AddTile(mustCoordinate(t, "C0"), LogicalPosition2D{Width: width, Height: height},
		TileBaseInfo{PixelWidth: width, PixelHeight: height, PixelType: PixelBgr24}, DataUncompressedBitmap, data)
	if err != nil {
		t.Fatal(err)
	}

	got, err := r.ReadTileData(pk)
	if err != nil {
		t.Fatalf("ReadTileData: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("read %d bytes, want the %d bytes written", len(got), len(data))
	}
	if n := blob.Pending(); n != 0 {
		t.Fatalf("%d blob outputs still registered", n)
	}
}

func TestBlobOverrunThroughTrampolines(t *testing.T) {
	eng := newCallbackEngine(t)
	r, w := open2d(t, "trampoline-overrun.db", "C")
	pk := addGrayTile(t, w, "C0", LogicalPosition2D{Width: 1, Height: 1})

	eng.BlobFault = fakeengine.BlobFaultOverrun
	_, err := r.ReadTileData(pk)
	if !errors.Is(err, ErrProtocol) || !errors.Is(err, blob.ErrOutOfBounds) {
		t.Fatalf("ReadTileData = %v, want protocol error", err)
	}
}

func TestEnvironmentThroughTrampolines(t *testing.T) {
	eng := newCallbackEngine(t)

	var buf bytes.Buffer
	env, err := NewEnvironment(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	if err != nil {
		t.Fatal(err)
	}
	defer mustClose(t, env)

	doc := newDocument(t, "trampoline-log.db", "C", DocumentType2d, env)
	mustClose(t, doc)
	if !strings.Contains(buf.String(), `created document \"trampoline-log.db\"`) {
		t.Fatalf("engine log record missing:\n%s", buf.String())
	}

	var fatal string
	env.OnFatal = func(msg string) { fatal = msg }
	if err := eng.RaiseFatal(env.h, "disk gone"); err != nil {
		t.Fatal(err)
	}
	if fatal != "disk gone" {
		t.Fatalf("OnFatal got %q", fatal)
	}
}
