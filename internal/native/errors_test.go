package native

import (
	"errors"
	"strings"
	"testing"
)

func TestCheckOK(t *testing.T) {
	var info ErrorInfo
	info.Set("stale text that must not be read")
	if err := Check("op", 0, &info); err != nil {
		t.Fatalf("Check(0) = %v", err)
	}
}

func TestCheckReportsMessage(t *testing.T) {
	var info ErrorInfo
	info.Set("handle 7 is not a reader")

	err := Check("IDocRead2d_Query", int32(CodeInvalidHandle), &info)
	if err == nil {
		t.Fatal("expected error")
	}
	var nerr *Error
	if !errors.As(err, &nerr) {
		t.Fatalf("error %T is not *Error", err)
	}
	if nerr.Code != CodeInvalidHandle || nerr.Message != "handle 7 is not a reader" {
		t.Fatalf("got %+v", nerr)
	}
	if !errors.Is(err, ErrInvalidHandle) {
		t.Fatal("errors.Is(err, ErrInvalidHandle) = false")
	}
	if errors.Is(err, ErrInvalidArgument) {
		t.Fatal("errors.Is(err, ErrInvalidArgument) = true")
	}
	if want := "imgdoc2: IDocRead2d_Query: handle 7 is not a reader (invalid handle)"; err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorInfoFullBuffer(t *testing.T) {
	var info ErrorInfo
	for i := range info.Message {
		info.Message[i] = 'x'
	}
	if got := info.Text(); len(got) != ErrorMessageSize {
		t.Fatalf("len(Text()) = %d, want %d", len(got), ErrorMessageSize)
	}
}

func TestErrorInfoTrimsPartialRune(t *testing.T) {
	var info ErrorInfo
	// 198 ASCII bytes, then the first two bytes of a three byte rune.
	copy(info.Message[:], strings.Repeat("a", 198))
	copy(info.Message[198:], "€"[:2])

	got := info.Text()
	if got != strings.Repeat("a", 198) {
		t.Fatalf("Text() kept a partial rune: %q", got[190:])
	}
}

func TestErrorInfoReplacesInvalidBytes(t *testing.T) {
	var info ErrorInfo
	copy(info.Message[:], []byte{'o', 'k', 0xff, '!', 0})
	if got := info.Text(); got != "ok�!" {
		t.Fatalf("Text() = %q", got)
	}
}

func TestErrorInfoSetTruncatesOnRuneBoundary(t *testing.T) {
	var info ErrorInfo
	msg := strings.Repeat("ü", 150) // 300 bytes
	info.Set(msg)

	got := info.Text()
	if len(got) > ErrorMessageSize-1 {
		t.Fatalf("len = %d", len(got))
	}
	if !strings.HasPrefix(msg, got) {
		t.Fatal("truncated message is not a prefix of the original")
	}
	if len(got)%2 != 0 {
		t.Fatalf("truncation split a rune: len %d", len(got))
	}
}

func TestCodeString(t *testing.T) {
	for code, want := range map[Code]string{
		CodeInvalidArgument: "invalid argument",
		CodeUnspecified:     "unspecified error",
		Code(77):            "code 77",
	} {
		if got := code.String(); got != want {
			t.Errorf("Code(%d).String() = %q, want %q", int32(code), got, want)
		}
	}
}

func TestGoString(t *testing.T) {
	b := []byte("engine ready\x00trailing")
	if got := GoString(&b[0]); got != "engine ready" {
		t.Fatalf("GoString = %q", got)
	}
	if got := GoString(nil); got != "" {
		t.Fatalf("GoString(nil) = %q", got)
	}
}
