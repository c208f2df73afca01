package native

import (
	"strings"
	"unsafe"
)

// maxCStringLen bounds the scan for a terminator in strings the engine
// passes to callbacks.
const maxCStringLen = 64 << 10

// GoString copies the NUL-terminated string at p. Invalid UTF-8 is
// replaced.
func GoString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for n < maxCStringLen && *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return strings.ToValidUTF8(string(unsafe.Slice(p, n)), "�")
}
