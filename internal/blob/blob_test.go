package blob

import (
	"errors"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestOutputSetSizeOnce(t *testing.T) {
	var o Output
	if err := o.SetSize(8); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	if err := o.SetSize(8); !errors.Is(err, ErrSizeAlreadySet) {
		t.Fatalf("second SetSize = %v, want ErrSizeAlreadySet", err)
	}
	if len(o.Bytes()) != 8 {
		t.Fatalf("len = %d, want 8", len(o.Bytes()))
	}
	if !errors.Is(o.Err(), ErrSizeAlreadySet) {
		t.Fatalf("Err = %v", o.Err())
	}
}

func TestOutputDataBeforeSize(t *testing.T) {
	var o Output
	if err := o.SetData(0, []byte{1}); !errors.Is(err, ErrSizeNotSet) {
		t.Fatalf("SetData = %v, want ErrSizeNotSet", err)
	}
}

func TestOutputBounds(t *testing.T) {
	tests := []struct {
		name   string
		offset uint64
		n      int
		ok     bool
	}{
		{"start", 0, 4, true},
		{"tail", 6, 4, true},
		{"full", 0, 10, true},
		{"empty at end", 10, 0, true},
		{"one past", 7, 4, false},
		{"offset past", 11, 0, false},
		{"huge offset", ^uint64(0), 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Output
			if err := o.SetSize(10); err != nil {
				t.Fatal(err)
			}
			err := o.SetData(tt.offset, make([]byte, tt.n))
			if tt.ok && err != nil {
				t.Fatalf("SetData: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrOutOfBounds) {
				t.Fatalf("SetData = %v, want ErrOutOfBounds", err)
			}
		})
	}
}

func TestOutputRejectsMoreDataThanSize(t *testing.T) {
	var o Output
	if err := o.SetSize(4); err != nil {
		t.Fatal(err)
	}
	if err := o.SetData(0, []byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	if err := o.SetData(0, []byte{5, 6, 7, 8}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("rewrite = %v, want ErrOutOfBounds", err)
	}
	if err := o.SetData(3, []byte{9}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("third write = %v, want ErrOutOfBounds", err)
	}
	if o.Written() != 4 {
		t.Fatalf("Written = %d, want 4", o.Written())
	}
	if string(o.Bytes()) != string([]byte{1, 2, 3, 4}) {
		t.Fatalf("Bytes = %v", o.Bytes())
	}
	if !errors.Is(o.Err(), ErrOutOfBounds) {
		t.Fatalf("Err = %v", o.Err())
	}
}

func TestOutputPartialFill(t *testing.T) {
	var o Output
	if err := o.SetSize(6); err != nil {
		t.Fatal(err)
	}
	if err := o.SetData(2, []byte{7, 8}); err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 0, 7, 8, 0, 0}
	if string(o.Bytes()) != string(want) {
		t.Fatalf("Bytes = %v, want %v", o.Bytes(), want)
	}
	if o.Written() != 2 {
		t.Fatalf("Written = %d", o.Written())
	}
	if o.Err() != nil {
		t.Fatalf("Err = %v", o.Err())
	}
}

func TestCallbacksRouteByToken(t *testing.T) {
	var a, b Output
	ta := Register(&a)
	tb := Register(&b)
	defer Unregister(ta)
	defer Unregister(tb)

	if OnSetSize(ta, 3) != callbackTrue || OnSetSize(tb, 2) != callbackTrue {
		t.Fatal("OnSetSize returned false")
	}
	src := []byte("xyz")
	if OnSetData(ta, 0, 3, &src[0]) != callbackTrue {
		t.Fatal("OnSetData returned false")
	}
	if OnSetData(tb, 1, 3, &src[0]) != callbackFalse {
		t.Fatal("out of bounds OnSetData returned true")
	}
	if string(a.Bytes()) != "xyz" {
		t.Fatalf("a = %q", a.Bytes())
	}
	if !errors.Is(b.Err(), ErrOutOfBounds) {
		t.Fatalf("b.Err = %v", b.Err())
	}
}

func TestCallbacksUnknownToken(t *testing.T) {
	var o Output
	tok := Register(&o)
	if err := Unregister(tok); err != nil {
		t.Fatal(err)
	}
	if OnSetSize(tok, 4) != callbackFalse {
		t.Fatal("OnSetSize accepted a released token")
	}
	if o.Sized() {
		t.Fatal("released output was sized")
	}
	if err := Unregister(tok); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("second Unregister = %v, want ErrUnknownToken", err)
	}
	if OnSetSize(0, 4) != callbackFalse {
		t.Fatal("OnSetSize accepted token 0")
	}
}

func TestCallbackNilSource(t *testing.T) {
	var o Output
	tok := Register(&o)
	defer Unregister(tok)

	OnSetSize(tok, 4)
	if OnSetData(tok, 0, 2, nil) != callbackFalse {
		t.Fatal("nil source accepted")
	}
	if OnSetData(tok, 0, 0, nil) != callbackTrue {
		t.Fatal("empty write rejected")
	}
}
