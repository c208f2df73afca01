package wire

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultStringSize is the first guess for strings read back from the engine.
const DefaultStringSize = 256

const maxSizedCallAttempts = 4

// CString returns s as NUL-terminated UTF-8.
func CString(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, ErrInvalidUTF8
	}
	if strings.IndexByte(s, 0) >= 0 {
		return nil, fmt.Errorf("%w: embedded NUL", ErrInvalidUTF8)
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b, nil
}

// ReadString implements the two-call pattern for strings. call receives a
// buffer and a size that holds the buffer length on entry; the native side
// stores the size it needs, terminator included. When that exceeds the
// buffer the call is repeated with a buffer of the reported size, so a
// truncated (and possibly split) first result is never used.
func ReadString(call func(buf []byte, size *uintptr) error) (string, error) {
	size := uintptr(DefaultStringSize)
	for attempt := 0; attempt < maxSizedCallAttempts; attempt++ {
		buf := make([]byte, size)
		required := size
		if err := call(buf, &required); err != nil {
			return "", err
		}
		if required > size {
			size = required
			continue
		}
		s := buf[:required]
		if i := bytes.IndexByte(s, 0); i >= 0 {
			s = s[:i]
		}
		if !utf8.Valid(s) {
			return "", ErrInvalidUTF8
		}
		return string(s), nil
	}
	return "", ErrSizeUnstable
}

// FillString is the native half of ReadString: it copies as much of s as
// fits into buf and reports the size required for all of it.
func FillString(buf []byte, size *uintptr, s string) {
	required := uintptr(len(s) + 1)
	if len(buf) > 0 {
		n := copy(buf[:len(buf)-1], s)
		buf[n] = 0
	}
	*size = required
}

// ReadDimensions applies the two-call pattern to a dimension list. count
// holds the buffer capacity on entry and the number available on return.
func ReadDimensions(call func(buf []byte, count *uint32) error) ([]Dimension, error) {
	capacity := uint32(16)
	for attempt := 0; attempt < maxSizedCallAttempts; attempt++ {
		buf := make([]byte, capacity)
		count := capacity
		if err := call(buf, &count); err != nil {
			return nil, err
		}
		if count > capacity {
			capacity = count
			continue
		}
		dims := make([]Dimension, count)
		for i := range dims {
			d := Dimension(buf[i])
			if !d.Valid() {
				return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidDimension, buf[i])
			}
			dims[i] = d
		}
		return dims, nil
	}
	return nil, ErrSizeUnstable
}

// FillDimensions is the native half of ReadDimensions.
func FillDimensions(buf []byte, count *uint32, dims []Dimension) {
	for i := 0; i < len(dims) && i < len(buf); i++ {
		buf[i] = byte(dims[i])
	}
	*count = uint32(len(dims))
}
